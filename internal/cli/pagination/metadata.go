package pagination

// Meta summarizes a walk over a paginated source.
type Meta struct {
	PagesFetched int  `json:"pages_fetched" yaml:"pages_fetched"`
	ItemsFetched int  `json:"items_fetched" yaml:"items_fetched"`
	Returned     int  `json:"returned"      yaml:"returned"`
	Offset       int  `json:"offset"        yaml:"offset"`
	HasMore      bool `json:"has_more"      yaml:"has_more"`

	// Next is the raw cursor token to resume from. Empty at the end of the collection.
	Next string `json:"next,omitempty" yaml:"next,omitempty"`
}

// NewMeta builds the metadata of a walk that fetched pages pages and itemsFetched items,
// of which returned were selected by params.
func NewMeta(params Params, pages, itemsFetched, returned int, hasMore bool, next string) Meta {
	if !hasMore {
		next = ""
	}
	return Meta{
		PagesFetched: pages,
		ItemsFetched: itemsFetched,
		Returned:     returned,
		Offset:       params.Offset,
		HasMore:      hasMore,
		Next:         next,
	}
}
