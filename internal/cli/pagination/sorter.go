package pagination

import (
	"sort"

	"github.com/rshade/entitydeck/internal/source"
)

// Sorter defines the interface for sorting fetched entities.
type Sorter interface {
	// Sort sorts a slice of entities by the specified field and order.
	Sort(entities []source.Entity, field, order string) []source.Entity
	// IsValidField checks if the given field name is valid for sorting.
	IsValidField(field string) bool
	// GetValidFields returns a list of valid field names for sorting.
	GetValidFields() []string
}

// EntitySorter implements Sorter for source.Entity.
type EntitySorter struct {
	validFields map[string]bool
}

// NewEntitySorter creates a new EntitySorter with valid sort fields.
func NewEntitySorter() *EntitySorter {
	return &EntitySorter{
		validFields: map[string]bool{
			"id":   true,
			"name": true,
		},
	}
}

// IsValidField checks if the field is valid for sorting.
func (s *EntitySorter) IsValidField(field string) bool {
	return s.validFields[field]
}

// GetValidFields returns all valid sort fields.
func (s *EntitySorter) GetValidFields() []string {
	fields := make([]string, 0, len(s.validFields))
	for field := range s.validFields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Sort sorts entities by the specified field and order.
// Returns a new sorted slice; does not modify the original.
// If field is invalid, returns the original slice unchanged.
func (s *EntitySorter) Sort(entities []source.Entity, field, order string) []source.Entity {
	if !s.IsValidField(field) {
		return entities
	}

	sorted := make([]source.Entity, len(entities))
	copy(sorted, entities)

	sort.SliceStable(sorted, func(i, j int) bool {
		// For descending order, swap i and j in comparisons to maintain stability
		if order == SortOrderDesc {
			i, j = j, i
		}

		switch field {
		case "id":
			return sorted[i].ID < sorted[j].ID
		case "name":
			return sorted[i].Name < sorted[j].Name
		default:
			return false
		}
	})

	return sorted
}
