package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/compute"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/expr"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/stats"
)

func litI32(t *testing.T, v int64) *expr.Literal {
	t.Helper()
	s, err := scalar.NewPrimitive(dtype.I32, v, false)
	require.NoError(t, err)
	return &expr.Literal{Value: s}
}

func statsWithMinMax(t *testing.T, min, max int64) map[string]*stats.Set {
	t.Helper()
	mn, err := scalar.NewPrimitive(dtype.I32, min, false)
	require.NoError(t, err)
	mx, err := scalar.NewPrimitive(dtype.I32, max, false)
	require.NoError(t, err)
	s := stats.NewSet()
	s.Set(stats.Min, stats.Value{Precision: stats.Exact, Scalar: mn})
	s.Set(stats.Max, stats.Value{Precision: stats.Exact, Scalar: mx})
	return map[string]*stats.Set{"a": s}
}

func TestBuildPruningPredicateGreaterEqual(t *testing.T) {
	filter := &expr.Comparison{Op: compute.Ge, Left: &expr.Column{Name: "a"}, Right: litI32(t, 10)}
	pred := BuildPruningPredicate(filter)

	assert.False(t, pred.MayMatch(statsWithMinMax(t, 1, 3)))
	assert.True(t, pred.MayMatch(statsWithMinMax(t, 10, 20)))
	assert.True(t, pred.MayMatch(statsWithMinMax(t, 5, 15)))
}

func TestBuildPruningPredicateLessThanFlippedOperands(t *testing.T) {
	// 10 > a  ==  a < 10
	filter := &expr.Comparison{Op: compute.Gt, Left: litI32(t, 10), Right: &expr.Column{Name: "a"}}
	pred := BuildPruningPredicate(filter)

	assert.True(t, pred.MayMatch(statsWithMinMax(t, 1, 3)))
	assert.False(t, pred.MayMatch(statsWithMinMax(t, 10, 20)))
}

func TestBuildPruningPredicateEquality(t *testing.T) {
	filter := &expr.Comparison{Op: compute.Eq, Left: &expr.Column{Name: "a"}, Right: litI32(t, 15)}
	pred := BuildPruningPredicate(filter)

	assert.False(t, pred.MayMatch(statsWithMinMax(t, 1, 3)))
	assert.True(t, pred.MayMatch(statsWithMinMax(t, 10, 20)))
}

func TestBuildPruningPredicateBetween(t *testing.T) {
	filter := &expr.Between{
		Child: &expr.Column{Name: "a"}, Lower: litI32(t, 5), Upper: litI32(t, 15),
		LowerInclusive: true, UpperInclusive: true,
	}
	pred := BuildPruningPredicate(filter)

	assert.False(t, pred.MayMatch(statsWithMinMax(t, 1, 3)))
	assert.True(t, pred.MayMatch(statsWithMinMax(t, 10, 20)))
}

func TestBuildPruningPredicateAndOr(t *testing.T) {
	ge10 := &expr.Comparison{Op: compute.Ge, Left: &expr.Column{Name: "a"}, Right: litI32(t, 10)}
	le2 := &expr.Comparison{Op: compute.Le, Left: &expr.Column{Name: "a"}, Right: litI32(t, 2)}

	and := BuildPruningPredicate(&expr.BinaryBool{Op: expr.And, Left: ge10, Right: le2})
	assert.False(t, and.MayMatch(statsWithMinMax(t, 1, 3)))

	or := BuildPruningPredicate(&expr.BinaryBool{Op: expr.Or, Left: ge10, Right: le2})
	assert.True(t, or.MayMatch(statsWithMinMax(t, 1, 3)))
	assert.True(t, or.MayMatch(statsWithMinMax(t, 10, 20)))
	assert.False(t, or.MayMatch(statsWithMinMax(t, 5, 9)))
}

func TestBuildPruningPredicateRowFilterConjoinsChildren(t *testing.T) {
	ge10 := &expr.Comparison{Op: compute.Ge, Left: &expr.Column{Name: "a"}, Right: litI32(t, 10)}
	le100 := &expr.Comparison{Op: compute.Le, Left: &expr.Column{Name: "a"}, Right: litI32(t, 100)}
	pred := BuildPruningPredicate(&expr.RowFilter{Children: []expr.Expr{ge10, le100}})

	assert.False(t, pred.MayMatch(statsWithMinMax(t, 1, 3)))
	assert.True(t, pred.MayMatch(statsWithMinMax(t, 10, 20)))
}

func TestBuildPruningPredicateNotEqualNeverPrunes(t *testing.T) {
	filter := &expr.Comparison{Op: compute.Ne, Left: &expr.Column{Name: "a"}, Right: litI32(t, 2)}
	pred := BuildPruningPredicate(filter)
	assert.True(t, pred.MayMatch(statsWithMinMax(t, 1, 3)))
}

func TestBuildPruningPredicateUnsupportedShapeAlwaysMatches(t *testing.T) {
	filter := &expr.Like{Child: &expr.Column{Name: "a"}, Pattern: "foo%"}
	pred := BuildPruningPredicate(filter)
	assert.Empty(t, pred.RequiredStats())
	assert.True(t, pred.MayMatch(nil))
}

func TestBuildPruningPredicateNilFilterAlwaysMatches(t *testing.T) {
	pred := BuildPruningPredicate(nil)
	assert.True(t, pred.MayMatch(nil))
}

func TestRequiredStatsNamesColumnAndKind(t *testing.T) {
	filter := &expr.Comparison{Op: compute.Ge, Left: &expr.Column{Name: "a"}, Right: litI32(t, 10)}
	pred := BuildPruningPredicate(filter)
	req := pred.RequiredStats()
	require.Contains(t, req, "a")
	assert.Contains(t, req["a"], stats.Max)
}
