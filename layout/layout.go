// Package layout implements Vortex's on-disk layout tree (§4.5): the
// persistent analogue of array, describing how a logical dtype and row
// count are spread across segments without itself holding decoded data.
package layout

import (
	"context"
	"sort"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/expr"
	"github.com/vortex-db/vortex/segment"
)

// Layout is the structural contract every layout encoding implements
// (§4.5): row count, dtype, directly-owned segments, child layouts, split
// points, and a runtime reader.
type Layout interface {
	RowCount() int
	DType() dtype.DType
	// SegmentIDs returns segments owned directly by this node; child
	// segments belong to the children and are not repeated here.
	SegmentIDs() []segment.ID
	Children() []Layout
	// Splits inserts row boundaries into out, considering only fields
	// passing mask, offsetting every boundary by offset (the node's
	// position within some enclosing layout).
	Splits(mask FieldMask, offset int, out *SplitSet)
	// Reader constructs a runtime reader resolving this layout's segments
	// through src and decoding arrays through ctx.
	Reader(src segment.Source, ctx *array.Context) (Reader, error)
}

// Reader is a layout's runtime counterpart (§4.5 "a runtime reader that can
// evaluate expressions over row ranges").
type Reader interface {
	// RequiredSegments lists every segment a read of [rowStart, rowEnd)
	// would need, for prefetching ahead of a blocking Read/Evaluate.
	RequiredSegments(rowStart, rowEnd int) []segment.ID
	// Read materializes the row range as a single array.
	Read(ctx context.Context, rowStart, rowEnd int) (*array.Array, error)
	// Evaluate reads the row range and evaluates e over it.
	Evaluate(ctx context.Context, rowStart, rowEnd int, e expr.Expr) (*array.Array, error)
}

func evaluate(ctx context.Context, r Reader, arrCtx *array.Context, rowStart, rowEnd int, e expr.Expr) (*array.Array, error) {
	a, err := r.Read(ctx, rowStart, rowEnd)
	if err != nil {
		return nil, err
	}
	return expr.Evaluate(arrCtx, a, e)
}

// FieldMask restricts Splits to a subset of a struct's fields. AllFields
// returns a mask that passes every field; the zero value passes none.
type FieldMask struct {
	all    bool
	fields map[string]bool
}

// AllFields constructs a mask that includes every field.
func AllFields() FieldMask { return FieldMask{all: true} }

// Fields constructs a mask including only the named fields.
func Fields(names ...string) FieldMask {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return FieldMask{fields: m}
}

// Includes reports whether name passes the mask.
func (m FieldMask) Includes(name string) bool {
	if m.all {
		return true
	}
	return m.fields[name]
}

// SplitSet accumulates row boundaries, matching the spec's `BTreeSet<u64>`
// out-parameter with a Go map-plus-sort since the standard library has no
// ordered set.
type SplitSet struct {
	set map[int]struct{}
}

// NewSplitSet constructs an empty split set.
func NewSplitSet() *SplitSet { return &SplitSet{set: make(map[int]struct{})} }

// Insert records row boundary v.
func (s *SplitSet) Insert(v int) { s.set[v] = struct{}{} }

// Sorted returns the recorded boundaries in ascending order.
func (s *SplitSet) Sorted() []int {
	out := make([]int, 0, len(s.set))
	for v := range s.set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Ranges converts a sorted split set into half-open [start, end) row
// ranges, the shape the scan engine consumes directly.
func (s *SplitSet) Ranges() [][2]int {
	bounds := s.Sorted()
	if len(bounds) < 2 {
		return nil
	}
	ranges := make([][2]int, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		ranges = append(ranges, [2]int{bounds[i], bounds[i+1]})
	}
	return ranges
}
