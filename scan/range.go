package scan

import (
	"context"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/compute"
	"github.com/vortex-db/vortex/expr"
	"github.com/vortex-db/vortex/layout"
	"github.com/vortex-db/vortex/segment"
)

// PollResult is the outcome of one RangeScanner.Poll call (§4.7 "poll
// protocol"): either the range's array, fully materialized, or the set of
// segment IDs still outstanding.
type PollResult struct {
	Array    *array.Array
	NeedMore []segment.ID
}

// Done reports whether the poll produced a materialized array.
func (r PollResult) Done() bool { return r.Array != nil }

// RangeScanner drives a single [RowStart, RowEnd) split through the
// segment poll protocol: every required segment is requested once, up
// front, and Poll is non-blocking, re-checking each outstanding future
// without ever parking a goroutine (§4.7 "poll(segments) -> Some(array) |
// NeedMore(segment_ids)"). This lets a caller interleave many in-flight
// splits over a small number of goroutines instead of dedicating one
// blocked goroutine per split.
type RangeScanner struct {
	reader      layout.Reader
	arrCtx      *array.Context
	filter      expr.Expr
	rowStart    int
	rowEnd      int
	outstanding map[segment.ID]*segment.Future
}

// NewRangeScanner issues requests for every segment [rowStart, rowEnd)
// needs and returns a scanner that can be polled to completion.
func NewRangeScanner(ctx context.Context, src segment.Source, reader layout.Reader, arrCtx *array.Context, filter expr.Expr, rowStart, rowEnd int) *RangeScanner {
	ids := reader.RequiredSegments(rowStart, rowEnd)
	outstanding := make(map[segment.ID]*segment.Future, len(ids))
	for _, id := range ids {
		outstanding[id] = src.Request(ctx, id, segment.PriorityNormal)
	}
	return &RangeScanner{
		reader:      reader,
		arrCtx:      arrCtx,
		filter:      filter,
		rowStart:    rowStart,
		rowEnd:      rowEnd,
		outstanding: outstanding,
	}
}

// Poll checks every outstanding segment without blocking. Once all have
// resolved it materializes the range (applying the filter, if any) and
// returns it; until then it reports which segment IDs are still pending.
func (r *RangeScanner) Poll(ctx context.Context) (PollResult, error) {
	var pending []segment.ID
	for id, fut := range r.outstanding {
		if _, ready, err := fut.Poll(); err != nil {
			return PollResult{}, err
		} else if !ready {
			pending = append(pending, id)
		}
	}
	if len(pending) > 0 {
		return PollResult{NeedMore: pending}, nil
	}

	a, err := r.reader.Read(ctx, r.rowStart, r.rowEnd)
	if err != nil {
		return PollResult{}, err
	}
	if r.filter == nil {
		return PollResult{Array: a}, nil
	}
	mask, err := expr.Evaluate(r.arrCtx, a, r.filter)
	if err != nil {
		return PollResult{}, err
	}
	filtered, err := compute.Filter(r.arrCtx, a, mask)
	if err != nil {
		return PollResult{}, err
	}
	return PollResult{Array: filtered}, nil
}

// Wait blocks until every outstanding segment resolves, then returns the
// same materialized result Poll would once it reports Done. It exists for
// callers that would rather park a goroutine than loop Poll themselves.
func (r *RangeScanner) Wait(ctx context.Context) (*array.Array, error) {
	for _, fut := range r.outstanding {
		if _, err := fut.Wait(ctx); err != nil {
			return nil, err
		}
	}
	res, err := r.Poll(ctx)
	if err != nil {
		return nil, err
	}
	return res.Array, nil
}
