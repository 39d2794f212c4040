package scan

import (
	"context"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/expr"
	"github.com/vortex-db/vortex/internal/metrics"
	"github.com/vortex-db/vortex/layout"
	"github.com/vortex-db/vortex/segment"
	"github.com/vortex-db/vortex/stats"
)

// Options configures a Scanner (§4.7).
type Options struct {
	// Filter restricts rows. Nil means every row passes.
	Filter expr.Expr
	// Mask restricts which struct fields Splits considers. It does not
	// narrow RequiredSegments or ReadSplit, which cover every field. Nil
	// means every field.
	Mask *layout.FieldMask
	// Stats provides, per top-level struct field name, the StatsLayout
	// whose per-chunk statistics prune splits before any data segment is
	// requested. A field absent from Stats is never pruned.
	Stats map[string]*layout.StatsLayout
}

// Scanner computes a root layout's splits once, then serves row-range
// reads over them, skipping any split the pruning predicate rules out
// from column statistics alone (§4.7).
type Scanner struct {
	ctx    *array.Context
	src    segment.Source
	reader layout.Reader
	filter expr.Expr
	pred   *Predicate
	stats  map[string]*layout.StatsLayout
	ranges [][2]int
}

// NewScanner builds a Scanner over root, resolving segments through src
// and decoding arrays through ctx.
func NewScanner(ctx *array.Context, src segment.Source, root layout.Layout, opts Options) (*Scanner, error) {
	mask := layout.AllFields()
	if opts.Mask != nil {
		mask = *opts.Mask
	}
	out := layout.NewSplitSet()
	root.Splits(mask, 0, out)
	ranges := out.Ranges()
	if len(ranges) == 0 && root.RowCount() > 0 {
		ranges = [][2]int{{0, root.RowCount()}}
	}

	reader, err := root.Reader(src, ctx)
	if err != nil {
		return nil, err
	}

	return &Scanner{
		ctx:    ctx,
		src:    src,
		reader: reader,
		filter: opts.Filter,
		pred:   BuildPruningPredicate(opts.Filter),
		stats:  opts.Stats,
		ranges: ranges,
	}, nil
}

// Splits returns the scanner's row ranges in ascending order, including
// ranges later found prunable (callers that only want survivors should
// use SurvivingSplits, or drive the scanner through Stream).
func (s *Scanner) Splits() [][2]int { return s.ranges }

// SurvivingSplits filters Splits down to ranges the pruning predicate
// cannot rule out.
func (s *Scanner) SurvivingSplits() [][2]int {
	out := make([][2]int, 0, len(s.ranges))
	for _, r := range s.ranges {
		if s.isPruned(r[0]) {
			metrics.SplitsPruned.Inc()
			continue
		}
		metrics.SplitsScanned.Inc()
		out = append(out, r)
	}
	return out
}

// isPruned reports whether the split starting at row is ruled out by
// statistics alone. Any field the predicate needs but that has no
// StatsLayout registered leaves the split unprunable (conservative).
func (s *Scanner) isPruned(row int) bool {
	if len(s.pred.RequiredStats()) == 0 {
		return false
	}
	return !s.pred.MayMatch(s.statsForRow(row))
}

func (s *Scanner) statsForRow(row int) map[string]*stats.Set {
	out := make(map[string]*stats.Set, len(s.stats))
	for name, sl := range s.stats {
		idx, err := sl.ChunkForRow(row)
		if err != nil {
			continue
		}
		out[name] = sl.ChunkStats(idx)
	}
	return out
}

// ReadSplit materializes one [start, end) split and applies the scanner's
// filter, if any, by driving a RangeScanner to completion.
func (s *Scanner) ReadSplit(ctx context.Context, start, end int) (*array.Array, error) {
	rs := NewRangeScanner(ctx, s.src, s.reader, s.ctx, s.filter, start, end)
	return rs.Wait(ctx)
}

// RequiredSegments lists the segments ReadSplit(start, end) would need.
func (s *Scanner) RequiredSegments(start, end int) []segment.ID {
	return s.reader.RequiredSegments(start, end)
}
