package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/rshade/entitydeck/internal/cli/pagination"
	"github.com/rshade/entitydeck/internal/source"
)

// Output formats of the scripted commands.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"

	// tabwriterPadding is the minimum padding between table columns.
	tabwriterPadding = 2
	jsonIndent       = "  "
	yamlIndent       = 2
)

// errUnsupportedFormat is returned for an unknown --output value.
var errUnsupportedFormat = fmt.Errorf("output must be one of %s, %s, %s", outputTable, outputJSON, outputYAML)

func validateOutputFormat(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("%w: got %q", errUnsupportedFormat, format)
	}
}

// listing is the structured result of the pages command.
type listing struct {
	Entities []source.Entity `json:"entities"   yaml:"entities"`
	Meta     pagination.Meta `json:"pagination" yaml:"pagination"`
}

func encodeStructured(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", jsonIndent)
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(yamlIndent)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: got %q", errUnsupportedFormat, format)
	}
}

// renderListing writes l in format.
func renderListing(w io.Writer, format string, l listing) error {
	if format != outputTable {
		return encodeStructured(w, format, l)
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEXTRA")
	for _, e := range l.Entities {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Name, formatExtra(e.Extra))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	more := "end of collection"
	if l.Meta.HasMore {
		more = "more available"
	}
	_, err := fmt.Fprintf(w, "\n%d of %d entities from %d pages (%s)\n",
		l.Meta.Returned, l.Meta.ItemsFetched, l.Meta.PagesFetched, more)
	return err
}

// formatExtra renders extra fields as sorted key=value pairs.
func formatExtra(extra map[string]any) string {
	if len(extra) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, extra[k]))
	}
	return strings.Join(parts, " ")
}

// renderDetailRecord writes rec in format.
func renderDetailRecord(w io.Writer, format string, rec source.DetailRecord) error {
	if format != outputTable {
		return encodeStructured(w, format, rec)
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	rows := [][2]string{
		{"ID", rec.ID},
		{"Name", rec.Name},
		{"Description", rec.Description},
		{"Extra 1", rec.ExtraField1},
		{"Extra 2", rec.ExtraField2},
		{"Created", rec.CreatedAt.Format(dateTimeLayout)},
		{"Updated", rec.UpdatedAt.Format(dateTimeLayout)},
	}
	if rec.Metadata != nil {
		rows = append(rows,
			[2]string{"Views", fmt.Sprint(rec.Metadata.Views)},
			[2]string{"Likes", fmt.Sprint(rec.Metadata.Likes)},
			[2]string{"Category", rec.Metadata.Category},
		)
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

const dateTimeLayout = "2006-01-02 15:04:05 MST"
