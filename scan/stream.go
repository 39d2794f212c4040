package scan

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vortex-db/vortex/array"
)

// StreamOptions configures a Stream's concurrency (§5 "independent scans
// may run on independent workers").
type StreamOptions struct {
	// Concurrency bounds how many splits are materialized at once. Zero or
	// negative means 1 (sequential).
	Concurrency int
	// Ordered, when true, emits splits in split order even if a later
	// split finishes first. When false (the zero value), splits are emitted in
	// completion order, which can reduce tail latency at the cost of a
	// result ordering callers must not depend on.
	Ordered bool
}

// Stream is a pull-style iterator over a Scanner's surviving splits
// (§6.3, grounded on the reference Python binding's record-batch reader):
// Next blocks until the next array is ready, or returns done=true once
// every split has been consumed.
type Stream struct {
	cancel context.CancelFunc
	out    chan streamItem
	once   sync.Once
}

type streamItem struct {
	arr *array.Array
	err error
}

// NewStream launches background workers that materialize s's surviving
// splits and feed them to the returned Stream in the order StreamOptions
// requests.
func NewStream(ctx context.Context, s *Scanner, opts StreamOptions) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	splits := s.SurvivingSplits()

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	st := &Stream{cancel: cancel, out: make(chan streamItem, concurrency)}

	go func() {
		defer close(st.out)
		if opts.Ordered {
			st.runOrdered(ctx, s, splits, concurrency)
		} else {
			st.runUnordered(ctx, s, splits, concurrency)
		}
	}()

	return st
}

func (st *Stream) runUnordered(ctx context.Context, s *Scanner, splits [][2]int, concurrency int) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, r := range splits {
		r := r
		g.Go(func() error {
			a, err := s.ReadSplit(gctx, r[0], r[1])
			select {
			case st.out <- streamItem{arr: a, err: err}:
			case <-ctx.Done():
			}
			if err != nil {
				return err
			}
			return nil
		})
	}
	_ = g.Wait()
}

// runOrdered materializes splits with the same bounded concurrency but
// hands results to st.out in split order: each split owns a dedicated
// slot, and a forwarding goroutine drains slots left to right so a slow
// early split never gets skipped past by a fast later one.
func (st *Stream) runOrdered(ctx context.Context, s *Scanner, splits [][2]int, concurrency int) {
	slots := make([]chan streamItem, len(splits))
	for i := range slots {
		slots[i] = make(chan streamItem, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, r := range splits {
		i, r := i, r
		g.Go(func() error {
			a, err := s.ReadSplit(gctx, r[0], r[1])
			slots[i] <- streamItem{arr: a, err: err}
			return err
		})
	}

	forwardDone := make(chan struct{})
	go func() {
		defer close(forwardDone)
		for _, slot := range slots {
			select {
			case item := <-slot:
				select {
				case st.out <- item:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	_ = g.Wait()
	<-forwardDone
}

// Next returns the next materialized split array. done is true once every
// split has been delivered; a non-nil error aborts the stream early.
func (st *Stream) Next(ctx context.Context) (a *array.Array, done bool, err error) {
	select {
	case item, ok := <-st.out:
		if !ok {
			return nil, true, nil
		}
		return item.arr, false, item.err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Close cancels any outstanding segment requests driving this stream and
// releases its background workers (§5 "dropping the output stream cancels
// outstanding segment requests").
func (st *Stream) Close() {
	st.once.Do(st.cancel)
}
