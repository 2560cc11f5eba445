package fetch

// Status is the pagination state of a panel.
type Status int

const (
	// StatusIdle means no fetch is running.
	StatusIdle Status = iota
	// StatusFetching means a page fetch is in flight.
	StatusFetching
	// StatusError means the last page fetch failed.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusFetching:
		return "fetching"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// DuplicatePolicy decides what happens to entities whose id is already listed.
type DuplicatePolicy string

const (
	// KeepFirst drops later duplicates and logs a warning.
	KeepFirst DuplicatePolicy = "keep-first"
	// AllowDuplicates appends pages exactly as received.
	AllowDuplicates DuplicatePolicy = "allow"
)

// Valid reports whether p is a known policy.
func (p DuplicatePolicy) Valid() bool {
	return p == KeepFirst || p == AllowDuplicates
}
