// Package scan implements Vortex's scan engine (§4.7): turning a root
// layout and a filter/projection pair into a pull-style stream of row
// batches, skipping whole splits whose column statistics already rule
// out any matching row.
package scan

import (
	"github.com/vortex-db/vortex/compute"
	"github.com/vortex-db/vortex/expr"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/stats"
)

// Predicate decides, from column statistics alone, whether a split might
// contain a row matching the filter it was built from (§4.7 "a filter
// expression is converted into a pruning predicate that mentions only
// column statistics"). A false verdict is authoritative: the split can be
// skipped outright. A true verdict only means "cannot rule out" — the
// split still has to be read and the original filter re-applied.
type Predicate struct {
	required map[string]map[stats.Kind]struct{}
	eval     func(cols map[string]*stats.Set) bool
}

// RequiredStats reports, per column name, which statistics the predicate
// needs in order to evaluate. A scan only has to load the StatsLayout
// chunks for these kinds.
func (p *Predicate) RequiredStats() map[string][]stats.Kind {
	out := make(map[string][]stats.Kind, len(p.required))
	for col, kinds := range p.required {
		list := make([]stats.Kind, 0, len(kinds))
		for k := range kinds {
			list = append(list, k)
		}
		out[col] = list
	}
	return out
}

// MayMatch evaluates the predicate against one split's per-column
// statistics. Columns the predicate never asked about are absent from
// cols; a column it did ask about but that has no recorded value for the
// requested kind degrades the verdict to "might match" (handled by the
// comparison closures themselves).
func (p *Predicate) MayMatch(cols map[string]*stats.Set) bool {
	return p.eval(cols)
}

// BuildPruningPredicate converts a row filter into a Predicate. Expression
// shapes it does not recognize (anything other than column/literal
// comparisons, Between, and conjunctions/disjunctions of those) degrade to
// an unconditional "might match", never to a wrong skip: pruning must only
// ever be a performance optimization, never a correctness hazard.
func BuildPruningPredicate(filter expr.Expr) *Predicate {
	if filter == nil {
		return alwaysMatch()
	}
	return build(filter)
}

func build(e expr.Expr) *Predicate {
	switch n := e.(type) {
	case *expr.Comparison:
		return buildComparison(n)
	case *expr.Between:
		return buildBetween(n)
	case *expr.BinaryBool:
		left := build(n.Left)
		right := build(n.Right)
		merged := mergeRequired(left.required, right.required)
		switch n.Op {
		case expr.And:
			return &Predicate{required: merged, eval: func(cols map[string]*stats.Set) bool {
				return left.eval(cols) && right.eval(cols)
			}}
		default: // Or
			return &Predicate{required: merged, eval: func(cols map[string]*stats.Set) bool {
				return left.eval(cols) || right.eval(cols)
			}}
		}
	case *expr.RowFilter:
		p := alwaysMatch()
		for _, child := range n.Children {
			cp := build(child)
			p = &Predicate{
				required: mergeRequired(p.required, cp.required),
				eval: func(pEval, cpEval func(map[string]*stats.Set) bool) func(map[string]*stats.Set) bool {
					return func(cols map[string]*stats.Set) bool { return pEval(cols) && cpEval(cols) }
				}(p.eval, cp.eval),
			}
		}
		return p
	default:
		return alwaysMatch()
	}
}

func alwaysMatch() *Predicate {
	return &Predicate{required: map[string]map[stats.Kind]struct{}{}, eval: func(map[string]*stats.Set) bool { return true }}
}

func buildBetween(b *expr.Between) *Predicate {
	col, ok := b.Child.(*expr.Column)
	if !ok {
		return alwaysMatch()
	}
	lower, lowOK := literalValue(b.Lower)
	upper, upOK := literalValue(b.Upper)
	if !lowOK || !upOK {
		return alwaysMatch()
	}
	lowOp := compute.Ge
	if !b.LowerInclusive {
		lowOp = compute.Gt
	}
	upOp := compute.Le
	if !b.UpperInclusive {
		upOp = compute.Lt
	}
	left := comparisonPredicate(col.Name, lower, lowOp)
	right := comparisonPredicate(col.Name, upper, upOp)
	return &Predicate{
		required: mergeRequired(left.required, right.required),
		eval: func(cols map[string]*stats.Set) bool {
			return left.eval(cols) && right.eval(cols)
		},
	}
}

func buildComparison(c *expr.Comparison) *Predicate {
	col, lit, op, ok := columnLiteral(c.Left, c.Right, c.Op)
	if !ok {
		return alwaysMatch()
	}
	return comparisonPredicate(col, lit, op)
}

// columnLiteral normalizes `column <op> literal` and `literal <op> column`
// into a single (column, literal, op) triple, flipping op when the literal
// appeared on the left (§4.8 comparisons are symmetric in source order).
func columnLiteral(left, right expr.Expr, op compute.CompareOp) (string, scalar.Scalar, compute.CompareOp, bool) {
	if col, ok := left.(*expr.Column); ok {
		if lit, ok := literalValue(right); ok {
			return col.Name, lit, op, true
		}
	}
	if col, ok := right.(*expr.Column); ok {
		if lit, ok := literalValue(left); ok {
			return col.Name, lit, flip(op), true
		}
	}
	return "", scalar.Scalar{}, 0, false
}

func literalValue(e expr.Expr) (scalar.Scalar, bool) {
	lit, ok := e.(*expr.Literal)
	if !ok {
		return scalar.Scalar{}, false
	}
	return lit.Value, true
}

func flip(op compute.CompareOp) compute.CompareOp {
	switch op {
	case compute.Lt:
		return compute.Gt
	case compute.Le:
		return compute.Ge
	case compute.Gt:
		return compute.Lt
	case compute.Ge:
		return compute.Le
	default:
		return op
	}
}

// comparisonPredicate builds the Min/Max check for `col <op> lit` (§4.7
// "e.g. a >= 10 -> requires max(a) >= 10"). Eq additionally needs both
// bounds since a value can only be present when it falls within [min,max].
// Ne is never prunable from min/max alone and degrades to alwaysMatch.
func comparisonPredicate(col string, lit scalar.Scalar, op compute.CompareOp) *Predicate {
	switch op {
	case compute.Ge, compute.Gt:
		return &Predicate{
			required: required(col, stats.Max),
			eval: func(cols map[string]*stats.Set) bool {
				mx, ok := statScalar(cols, col, stats.Max)
				if !ok {
					return true
				}
				c, err := scalar.Compare(mx, lit)
				if err != nil {
					return true
				}
				if op == compute.Ge {
					return c >= 0
				}
				return c > 0
			},
		}
	case compute.Le, compute.Lt:
		return &Predicate{
			required: required(col, stats.Min),
			eval: func(cols map[string]*stats.Set) bool {
				mn, ok := statScalar(cols, col, stats.Min)
				if !ok {
					return true
				}
				c, err := scalar.Compare(mn, lit)
				if err != nil {
					return true
				}
				if op == compute.Le {
					return c <= 0
				}
				return c < 0
			},
		}
	case compute.Eq:
		return &Predicate{
			required: required(col, stats.Min, stats.Max),
			eval: func(cols map[string]*stats.Set) bool {
				mn, mnOK := statScalar(cols, col, stats.Min)
				mx, mxOK := statScalar(cols, col, stats.Max)
				if !mnOK || !mxOK {
					return true
				}
				lo, err := scalar.Compare(mn, lit)
				if err != nil {
					return true
				}
				hi, err := scalar.Compare(mx, lit)
				if err != nil {
					return true
				}
				return lo <= 0 && hi >= 0
			},
		}
	default: // Ne and anything unrecognized: never prunable from bounds alone
		return alwaysMatch()
	}
}

func statScalar(cols map[string]*stats.Set, col string, kind stats.Kind) (scalar.Scalar, bool) {
	set, ok := cols[col]
	if !ok {
		return scalar.Scalar{}, false
	}
	v, ok := set.Get(kind)
	return v.Scalar, ok
}

func required(col string, kinds ...stats.Kind) map[string]map[stats.Kind]struct{} {
	set := make(map[stats.Kind]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return map[string]map[stats.Kind]struct{}{col: set}
}

func mergeRequired(a, b map[string]map[stats.Kind]struct{}) map[string]map[stats.Kind]struct{} {
	out := make(map[string]map[stats.Kind]struct{}, len(a)+len(b))
	for col, kinds := range a {
		dst := make(map[stats.Kind]struct{}, len(kinds))
		for k := range kinds {
			dst[k] = struct{}{}
		}
		out[col] = dst
	}
	for col, kinds := range b {
		dst, ok := out[col]
		if !ok {
			dst = make(map[stats.Kind]struct{}, len(kinds))
			out[col] = dst
		}
		for k := range kinds {
			dst[k] = struct{}{}
		}
	}
	return out
}
