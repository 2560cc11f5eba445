package batch

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Batch size limits.
const (
	DefaultBatchSize = 500
	MinBatchSize     = 1
	MaxBatchSize     = 10000

	percentMultiplier = 100
)

// Common batch processing errors.
var (
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 10000")
	ErrNilCallback      = errors.New("batch callback cannot be nil")
)

// Func processes one batch. index is the 0-based batch number.
type Func[T any] func(ctx context.Context, batch []T, index int) error

// Progress describes how far a Process call has come.
type Progress struct {
	TotalItems   int
	DoneItems    int
	TotalBatches int
	DoneBatches  int
	Started      time.Time
}

// Percent returns the completion percentage (0-100).
func (p Progress) Percent() float64 {
	if p.TotalItems == 0 {
		return percentMultiplier
	}
	return float64(p.DoneItems) / float64(p.TotalItems) * percentMultiplier
}

// Complete reports whether every item was processed.
func (p Progress) Complete() bool {
	return p.DoneItems >= p.TotalItems
}

// Elapsed returns the time since processing started.
func (p Progress) Elapsed() time.Duration {
	return time.Since(p.Started)
}

// ItemsPerSecond returns the processing rate.
func (p Progress) ItemsPerSecond() float64 {
	elapsed := p.Elapsed().Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(p.DoneItems) / elapsed
}

// Processor runs a Func over consecutive batches of a slice.
type Processor[T any] struct {
	batchSize  int
	onProgress func(Progress)
}

// NewProcessor creates a processor with the given batch size.
func NewProcessor[T any](batchSize int) (*Processor[T], error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	return &Processor[T]{batchSize: batchSize}, nil
}

// WithProgress sets a callback invoked after each successful batch.
func (p *Processor[T]) WithProgress(fn func(Progress)) *Processor[T] {
	p.onProgress = fn
	return p
}

// BatchSize returns the configured batch size.
func (p *Processor[T]) BatchSize() int { return p.batchSize }

// Process runs fn over items batch by batch and stops on the first error or when ctx is
// done. An empty slice is a no-op.
func (p *Processor[T]) Process(ctx context.Context, items []T, fn Func[T]) error {
	if fn == nil {
		return ErrNilCallback
	}

	ranges := p.Ranges(len(items))
	progress := Progress{TotalItems: len(items), TotalBatches: len(ranges), Started: time.Now()}

	for i, r := range ranges {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, items[r[0]:r[1]], i); err != nil {
			return fmt.Errorf("batch %d failed: %w", i, err)
		}
		progress.DoneItems += r[1] - r[0]
		progress.DoneBatches++
		if p.onProgress != nil {
			p.onProgress(progress)
		}
	}
	return nil
}

// Ranges returns the [start, end) bounds of the batches covering total items.
func (p *Processor[T]) Ranges(total int) [][2]int {
	if total <= 0 {
		return nil
	}
	n := (total + p.batchSize - 1) / p.batchSize
	out := make([][2]int, n)
	for i := range n {
		start := i * p.batchSize
		out[i] = [2]int{start, min(start+p.batchSize, total)}
	}
	return out
}
