package pagination

import (
	"errors"
	"fmt"
	"strings"
)

// Flag defaults and sort orders.
const (
	DefaultMaxPages  = 1
	DefaultSortField = ""
	DefaultSortOrder = "asc"
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"
)

// Common validation errors.
var (
	ErrInvalidMaxPages   = errors.New("max-pages cannot be negative")
	ErrInvalidLimit      = errors.New("limit cannot be negative")
	ErrInvalidOffset     = errors.New("offset cannot be negative")
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'name:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrInvalidSortField  = errors.New("invalid sort field")
)

// Params holds the listing flags.
//
// MaxPages bounds how many pages are fetched from the source (0 walks to the end).
// Offset and Limit then select a window of the fetched entities, after sorting.
type Params struct {
	MaxPages  int
	Offset    int
	Limit     int
	SortField string
	SortOrder string
}

// NewParams creates Params with default values.
func NewParams() *Params {
	return &Params{
		MaxPages:  DefaultMaxPages,
		SortField: DefaultSortField,
		SortOrder: DefaultSortOrder,
	}
}

// Validate checks the bounds of the numeric flags.
func (p Params) Validate() error {
	if p.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if p.Limit < 0 {
		return ErrInvalidLimit
	}
	if p.Offset < 0 {
		return ErrInvalidOffset
	}
	return nil
}

// Window returns the items selected by Offset and Limit. A zero Limit means no limit.
func Window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// ParseSort parses a sort string in the format "field" or "field:order".
// Examples: "name", "id:desc"
// Returns the field name and order, or an error if invalid.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (field, order string, err error) {
	if sortStr == "" {
		return DefaultSortField, DefaultSortOrder, nil
	}

	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		order = DefaultSortOrder
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", "", ErrEmptySortField
	}

	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}

	return field, order, nil
}
