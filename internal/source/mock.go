package source

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Reference values of the mock backend.
const (
	DefaultMockTotal         = 500
	DefaultMockPageSize      = 20
	DefaultMockPageLatency   = 300 * time.Millisecond
	DefaultMockDetailLatency = 1500 * time.Millisecond

	mockIDPrefix     = "entity-"
	viewsPerEntity   = 10
	likesDivisor     = 2
	hoursPerDay      = 24
	categoryModulo   = 2
	categoryEvenName = "Category A"
	categoryOddName  = "Category B"
)

// errInjected is returned by fault injection in MockSource.
var errInjected = errors.New("injected failure")

// MockOptions configures a MockSource. Zero Total and PageSize fall back to the
// reference values; latencies are taken as given.
type MockOptions struct {
	Total         int
	PageSize      int
	PageLatency   time.Duration
	DetailLatency time.Duration

	// FailPageEvery makes every Nth page fetch fail with a TransportError (0 disables).
	FailPageEvery int

	// Now overrides the clock used for detail timestamps.
	Now func() time.Time
}

// MockSource is an in-memory Backend holding entities entity-1..entity-N.
// Its cursor token is the decimal zero-based offset of the next page.
type MockSource struct {
	opts       MockOptions
	pageCalls  atomic.Int64
	detailCall atomic.Int64
}

// NewMockSource builds a mock backend. Negative latencies are treated as zero.
func NewMockSource(opts MockOptions) *MockSource {
	if opts.Total <= 0 {
		opts.Total = DefaultMockTotal
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultMockPageSize
	}
	if opts.PageLatency < 0 {
		opts.PageLatency = 0
	}
	if opts.DetailLatency < 0 {
		opts.DetailLatency = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &MockSource{opts: opts}
}

// PageCalls returns how many FetchPage calls reached the backend.
func (s *MockSource) PageCalls() int { return int(s.pageCalls.Load()) }

// DetailCalls returns how many FetchDetail calls reached the backend.
func (s *MockSource) DetailCalls() int { return int(s.detailCall.Load()) }

// FetchPage implements PaginatedSource.
func (s *MockSource) FetchPage(ctx context.Context, cursor Cursor) (Page, error) {
	n := s.pageCalls.Add(1)

	if err := sleepCtx(ctx, s.opts.PageLatency); err != nil {
		return Page{}, &TransportError{Op: "fetch page", Err: err}
	}
	if s.opts.FailPageEvery > 0 && n%int64(s.opts.FailPageEvery) == 0 {
		return Page{}, &TransportError{Op: "fetch page", Err: errInjected}
	}

	start := 0
	if !cursor.IsZero() {
		offset, err := strconv.Atoi(cursor.Token())
		if err != nil || offset < 0 {
			return Page{}, &DecodeError{Op: "cursor", Err: fmt.Errorf("invalid offset %q", cursor.Token())}
		}
		start = offset
	}

	end := min(start+s.opts.PageSize, s.opts.Total)
	page := Page{}
	for i := start; i < end; i++ {
		page.Items = append(page.Items, mockEntity(i+1))
	}
	if end < s.opts.Total {
		page.Next = MakeCursor(strconv.Itoa(end))
		page.HasMore = true
	}
	return page, nil
}

// FetchDetail implements DetailSource.
func (s *MockSource) FetchDetail(ctx context.Context, entityID string) (DetailRecord, error) {
	s.detailCall.Add(1)

	if err := sleepCtx(ctx, s.opts.DetailLatency); err != nil {
		return DetailRecord{}, &TransportError{Op: "fetch detail", Err: err}
	}

	num, ok := parseMockID(entityID)
	if !ok || num > s.opts.Total {
		return DetailRecord{}, &NotFoundError{EntityID: entityID}
	}

	now := s.opts.Now().UTC()
	category := categoryOddName
	if num%categoryModulo == 0 {
		category = categoryEvenName
	}
	return DetailRecord{
		ID:          entityID,
		Name:        fmt.Sprintf("Entity %d", num),
		Description: fmt.Sprintf("This is entity number %d in the list", num),
		ExtraField1: fmt.Sprintf("Extra data field 1 for entity %d", num),
		ExtraField2: fmt.Sprintf("Extra data field 2 for entity %d", num),
		CreatedAt:   now.Add(-time.Duration(num) * hoursPerDay * time.Hour),
		UpdatedAt:   now,
		Metadata: &Metadata{
			Views:    num * viewsPerEntity,
			Likes:    num / likesDivisor,
			Category: category,
		},
	}, nil
}

func mockEntity(num int) Entity {
	return Entity{
		ID:   fmt.Sprintf("%s%d", mockIDPrefix, num),
		Name: fmt.Sprintf("Entity %d", num),
		Extra: map[string]any{
			"description": fmt.Sprintf("This is entity number %d in the list", num),
		},
	}
}

func parseMockID(id string) (int, bool) {
	raw, found := strings.CutPrefix(id, mockIDPrefix)
	if !found {
		return 0, false
	}
	num, err := strconv.Atoi(raw)
	if err != nil || num < 1 {
		return 0, false
	}
	return num, true
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
