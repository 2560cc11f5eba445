package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/entitydeck/internal/source"
)

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr error
	}{
		{name: "valid default", params: *NewParams()},
		{name: "walk to end", params: Params{MaxPages: 0, Limit: 10, Offset: 5}},
		{name: "negative max pages", params: Params{MaxPages: -1}, wantErr: ErrInvalidMaxPages},
		{name: "negative limit", params: Params{Limit: -1}, wantErr: ErrInvalidLimit},
		{name: "negative offset", params: Params{Offset: -3}, wantErr: ErrInvalidOffset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		input     string
		wantField string
		wantOrder string
		wantErr   error
	}{
		{input: "", wantField: DefaultSortField, wantOrder: DefaultSortOrder},
		{input: "name", wantField: "name", wantOrder: SortOrderAsc},
		{input: "id:desc", wantField: "id", wantOrder: SortOrderDesc},
		{input: " name : DESC ", wantField: "name", wantOrder: SortOrderDesc},
		{input: "name:sideways", wantErr: ErrInvalidSortOrder},
		{input: ":asc", wantErr: ErrEmptySortField},
		{input: "a:b:c", wantErr: ErrInvalidSortFormat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			field, order, err := ParseSort(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, field)
			assert.Equal(t, tt.wantOrder, order)
		})
	}
}

func TestWindow(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	assert.Equal(t, items, Window(items, 0, 0))
	assert.Equal(t, []int{2, 3, 4}, Window(items, 2, 3))
	assert.Equal(t, []int{8, 9}, Window(items, 8, 5))
	assert.Empty(t, Window(items, 10, 1))
	assert.Empty(t, Window(items, 42, 0))
}

func TestNewMeta(t *testing.T) {
	params := Params{MaxPages: 2, Offset: 5}

	meta := NewMeta(params, 2, 40, 35, true, "40")
	assert.Equal(t, Meta{PagesFetched: 2, ItemsFetched: 40, Returned: 35, Offset: 5, HasMore: true, Next: "40"}, meta)

	end := NewMeta(params, 3, 50, 45, false, "stale")
	assert.False(t, end.HasMore)
	assert.Empty(t, end.Next, "no cursor at the end of the collection")
}

func TestEntitySorter(t *testing.T) {
	entities := []source.Entity{
		{ID: "entity-2", Name: "Bravo"},
		{ID: "entity-3", Name: "Alpha"},
		{ID: "entity-1", Name: "Charlie"},
	}
	s := NewEntitySorter()

	assert.Equal(t, []string{"id", "name"}, s.GetValidFields())
	assert.True(t, s.IsValidField("name"))
	assert.False(t, s.IsValidField("views"))

	byName := s.Sort(entities, "name", SortOrderAsc)
	assert.Equal(t, "Alpha", byName[0].Name)
	assert.Equal(t, "Charlie", byName[2].Name)

	byIDDesc := s.Sort(entities, "id", SortOrderDesc)
	assert.Equal(t, "entity-3", byIDDesc[0].ID)
	assert.Equal(t, "entity-1", byIDDesc[2].ID)

	assert.Equal(t, "entity-2", entities[0].ID, "input is not modified")
	assert.Equal(t, entities, s.Sort(entities, "views", SortOrderAsc))
}
