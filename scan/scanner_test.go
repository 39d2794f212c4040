package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/compute"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/expr"
	"github.com/vortex-db/vortex/layout"
	"github.com/vortex-db/vortex/scalar"
)

func TestNewScannerSplitsFollowChunkBoundaries(t *testing.T) {
	root, src, _ := twoFieldStruct(t)
	ctx := array.DefaultContext()

	s, err := NewScanner(ctx, src, root, Options{})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 3}, {3, 5}}, s.Splits())
}

func TestScannerSurvivingSplitsPrunesByStats(t *testing.T) {
	root, src, aStats := twoFieldStruct(t)
	ctx := array.DefaultContext()

	lit, err := scalar.NewPrimitive(dtype.I32, int64(10), false)
	require.NoError(t, err)
	filter := &expr.Comparison{Op: compute.Ge, Left: &expr.Column{Name: "a"}, Right: &expr.Literal{Value: lit}}

	s, err := NewScanner(ctx, src, root, Options{
		Filter: filter,
		Stats:  map[string]*layout.StatsLayout{"a": aStats},
	})
	require.NoError(t, err)

	surviving := s.SurvivingSplits()
	assert.Equal(t, [][2]int{{3, 5}}, surviving)
}

func TestScannerReadSplitAppliesFilter(t *testing.T) {
	root, src, _ := twoFieldStruct(t)
	ctx := array.DefaultContext()

	lit, err := scalar.NewPrimitive(dtype.I32, int64(2), false)
	require.NoError(t, err)
	filter := &expr.Comparison{Op: compute.Gt, Left: &expr.Column{Name: "a"}, Right: &expr.Literal{Value: lit}}

	s, err := NewScanner(ctx, src, root, Options{Filter: filter})
	require.NoError(t, err)

	a, err := s.ReadSplit(context.Background(), 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Len())

	fieldA := array.FieldAt(a, 0)
	assert.Equal(t, int64(3), array.Int64ValueAt(fieldA, 0))
}

func TestScannerReadSplitProjectsAllFieldsWithoutMask(t *testing.T) {
	root, src, _ := twoFieldStruct(t)
	ctx := array.DefaultContext()

	s, err := NewScanner(ctx, src, root, Options{})
	require.NoError(t, err)

	a, err := s.ReadSplit(context.Background(), 3, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())

	fieldB := array.FieldAt(a, 1)
	assert.Equal(t, int64(400), array.Int64ValueAt(fieldB, 0))
}
