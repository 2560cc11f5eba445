package window

import (
	"math"
	"sort"
)

// DefaultNearEndFraction is the reference threshold for requesting the next page.
const DefaultNearEndFraction = 0.9

// Range is a half-open interval [Start, End) of row indices.
type Range struct {
	Start int
	End   int
}

// Len returns the number of rows in the range.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Empty reports whether the range holds no rows.
func (r Range) Empty() bool { return r.Len() == 0 }

// Contains reports whether row i lies in the range.
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

// Layout stores row heights as prefix sums. prefix[i] is the top line of row i and
// prefix[len] is the total height. The zero value is an empty layout.
type Layout struct {
	prefix []int
}

// NewLayout builds a layout from measured heights. Heights below one line count as one.
func NewLayout(heights ...int) *Layout {
	l := &Layout{}
	l.Append(heights...)
	return l
}

// NewFixed builds a layout of n rows that are all rowHeight lines tall.
func NewFixed(n, rowHeight int) *Layout {
	l := &Layout{}
	l.AppendFixed(n, rowHeight)
	return l
}

// Append adds rows at the tail. Existing offsets do not move.
func (l *Layout) Append(heights ...int) {
	if len(l.prefix) == 0 {
		l.prefix = append(l.prefix, 0)
	}
	for _, h := range heights {
		l.prefix = append(l.prefix, l.prefix[len(l.prefix)-1]+max(h, 1))
	}
}

// AppendFixed adds n rows of the same height at the tail.
func (l *Layout) AppendFixed(n, rowHeight int) {
	if len(l.prefix) == 0 {
		l.prefix = append(l.prefix, 0)
	}
	rowHeight = max(rowHeight, 1)
	for range n {
		l.prefix = append(l.prefix, l.prefix[len(l.prefix)-1]+rowHeight)
	}
}

// Reset drops every row.
func (l *Layout) Reset() {
	l.prefix = l.prefix[:0]
}

// Len returns the number of rows.
func (l *Layout) Len() int {
	if len(l.prefix) == 0 {
		return 0
	}
	return len(l.prefix) - 1
}

// Total returns the height of all rows in lines.
func (l *Layout) Total() int {
	if len(l.prefix) == 0 {
		return 0
	}
	return l.prefix[len(l.prefix)-1]
}

// Top returns the first line of row i.
func (l *Layout) Top(i int) int {
	if i <= 0 || len(l.prefix) == 0 {
		return 0
	}
	if i >= len(l.prefix) {
		return l.Total()
	}
	return l.prefix[i]
}

// Height returns the height of row i, or zero when i is out of range.
func (l *Layout) Height(i int) int {
	if i < 0 || i >= l.Len() {
		return 0
	}
	return l.prefix[i+1] - l.prefix[i]
}

// RowAt returns the row covering line y, or -1 when y is outside the list.
func (l *Layout) RowAt(y int) int {
	if y < 0 || y >= l.Total() {
		return -1
	}
	return sort.Search(len(l.prefix), func(i int) bool { return l.prefix[i] > y }) - 1
}

// MaxOffset returns the largest scroll offset that still fills the viewport.
func (l *Layout) MaxOffset(viewport int) int {
	return max(l.Total()-max(viewport, 0), 0)
}

// ClampOffset bounds offset to [0, MaxOffset(viewport)].
func (l *Layout) ClampOffset(offset, viewport int) int {
	return min(max(offset, 0), l.MaxOffset(viewport))
}

// Visible returns the minimal contiguous range of rows that intersect the viewport
// [offset, offset+viewport).
func (l *Layout) Visible(offset, viewport int) Range {
	n := l.Len()
	if n == 0 || viewport <= 0 {
		return Range{}
	}
	offset = min(max(offset, 0), l.Total()-1)
	bottom := offset + viewport

	start := l.RowAt(offset)
	end := sort.Search(len(l.prefix), func(i int) bool { return l.prefix[i] >= bottom })
	return Range{Start: start, End: min(end, n)}
}

// Rendered widens the visible range by overscan rows on each side.
func (l *Layout) Rendered(offset, viewport, overscan int) Range {
	r := l.Visible(offset, viewport)
	if r.Empty() {
		return r
	}
	overscan = max(overscan, 0)
	return Range{
		Start: max(r.Start-overscan, 0),
		End:   min(r.End+overscan, l.Len()),
	}
}

// NearEnd reports whether the last visible row has reached floor(total*fraction).
// An empty list is never near its end.
func NearEnd(visible Range, total int, fraction float64) bool {
	if total <= 0 || visible.Empty() {
		return false
	}
	threshold := int(math.Floor(float64(total) * fraction))
	return visible.End-1 >= threshold
}
