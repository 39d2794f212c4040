package segment

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// request is one pending ask fed into a Channel by an evaluator thread.
type request struct {
	id       ID
	priority Priority
	future   *Future
}

// Channel funnels segment requests from (possibly many) evaluator threads
// into one stream: requests wait in a pending batch for up to a time
// window, then are dispatched to the underlying Source in byte-offset
// order. Requests are not merged: each one becomes its own
// Source.Request, however close their byte ranges lie. Dispatch is
// throttled by a golang.org/x/time/rate.Limiter, bounding how many I/Os a
// scan issues per second regardless of how bursty the evaluator's
// requests are.
type Channel struct {
	source  Source
	gap     int64
	window  time.Duration
	limiter *rate.Limiter

	mu      sync.Mutex
	pending []request
	timer   *time.Timer
}

// NewChannel constructs a Channel in front of source. gap is stored on
// the Channel but not read when dispatching; window is the time a batch
// waits after its first request before it is flushed; limiter bounds the dispatch rate (pass rate.NewLimiter(rate.Inf, 0)
// to disable throttling).
func NewChannel(source Source, gap int64, window time.Duration, limiter *rate.Limiter) *Channel {
	return &Channel{source: source, gap: gap, window: window, limiter: limiter}
}

// Request enqueues a segment request, returning a future the caller polls
// or waits on exactly as if it had called the underlying Source directly.
func (c *Channel) Request(ctx context.Context, id ID, priority Priority) *Future {
	f := NewFuture()
	c.mu.Lock()
	c.pending = append(c.pending, request{id: id, priority: priority, future: f})
	if c.timer == nil {
		c.timer = time.AfterFunc(c.window, func() { c.flush(ctx) })
	}
	c.mu.Unlock()
	return f
}

// flush dispatches every pending request in ascending byte-offset order,
// one underlying Source.Request per request; a request whose descriptor
// lookup fails resolves with that error.
func (c *Channel) flush(ctx context.Context) {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.timer = nil
	c.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	type scored struct {
		req request
		off int64
	}
	scoredBatch := make([]scored, 0, len(batch))
	for _, r := range batch {
		d, err := c.source.Descriptor(r.id)
		if err != nil {
			r.future.Resolve(nil, err)
			continue
		}
		scoredBatch = append(scoredBatch, scored{req: r, off: d.Offset})
	}
	sort.Slice(scoredBatch, func(i, j int) bool { return scoredBatch[i].off < scoredBatch[j].off })

	for _, s := range scoredBatch {
		if c.limiter != nil {
			_ = c.limiter.Wait(ctx)
		}
		inner := c.source.Request(ctx, s.req.id, s.req.priority)
		go func(f, inner *Future) {
			buf, err := inner.Wait(ctx)
			f.Resolve(buf, err)
		}(s.req.future, inner)
	}
}
