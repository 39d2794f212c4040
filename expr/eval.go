package expr

import (
	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/compute"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/validity"
)

// Evaluate walks e against scope, producing an array of scope.Len() rows
// (§4.8 "evaluation"). Most operators fall back to a row-by-row scalar
// evaluation built from compute.ScalarAt/compute kernels; a null operand
// propagates to a null result except where Kleene logic says otherwise.
func Evaluate(ctx *array.Context, scope *array.Array, e Expr) (*array.Array, error) {
	switch node := e.(type) {
	case *Literal:
		return array.NewConstant(node.Value, scope.Len()), nil
	case *Identity:
		return scope, nil
	case *Column:
		return evalColumn(scope, node.Name)
	case *GetItem:
		child, err := Evaluate(ctx, scope, node.Child)
		if err != nil {
			return nil, err
		}
		return evalColumn(child, node.Field)
	case *Unary:
		child, err := Evaluate(ctx, scope, node.Child)
		if err != nil {
			return nil, err
		}
		return compute.Invert(ctx, child)
	case *BinaryNumeric:
		return evalBinaryNumeric(ctx, scope, node)
	case *BinaryBool:
		return evalBinaryBool(ctx, scope, node)
	case *Comparison:
		return evalComparison(ctx, scope, node)
	case *Between:
		return evalBetween(ctx, scope, node)
	case *Like:
		child, err := Evaluate(ctx, scope, node.Child)
		if err != nil {
			return nil, err
		}
		return compute.Like(ctx, child, node.Pattern, compute.LikeOptions{
			Negated:         node.Negated,
			CaseInsensitive: node.CaseInsensitive,
		})
	case *Select:
		return Evaluate(ctx, scope, simplifySelect(node))
	case *Pack:
		return evalPack(ctx, scope, node)
	case *RowFilter:
		return evalRowFilter(ctx, scope, node)
	default:
		return nil, verrors.NotImplemented("expr.evaluate", "unknown node type")
	}
}

// simplifySelect rewrites a Select into the Pack-of-GetItems it denotes
// (§4.8 "simplification"): projecting fields a, b from Child is the same
// as packing get_item(a, Child), get_item(b, Child) under names a, b.
func simplifySelect(s *Select) Expr {
	children := make([]Expr, len(s.Fields))
	for i, name := range s.Fields {
		children[i] = &GetItem{Field: name, Child: s.Child}
	}
	return &Pack{Names: s.Fields, Children: children}
}

func evalColumn(scope *array.Array, name string) (*array.Array, error) {
	if scope.DType().Kind() != dtype.KindStruct {
		return nil, verrors.MismatchedTypes("expr.column", "struct", scope.DType().String())
	}
	for i, f := range scope.DType().Fields() {
		if f.Name == name {
			return array.FieldAt(scope, i), nil
		}
	}
	return nil, verrors.InvalidArgument("expr.column", "no such field: "+name)
}

func evalPack(ctx *array.Context, scope *array.Array, p *Pack) (*array.Array, error) {
	fields := make([]*array.Array, len(p.Children))
	for i, c := range p.Children {
		v, err := Evaluate(ctx, scope, c)
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}
	dt, err := p.ReturnDType(scope.DType())
	if err != nil {
		return nil, err
	}
	return array.NewStruct(dt, fields, validity.AllValid(scope.Len()))
}

func evalRowFilter(ctx *array.Context, scope *array.Array, r *RowFilter) (*array.Array, error) {
	if len(r.Children) == 0 {
		return array.NewConstant(scalar.NewBool(true, false), scope.Len()), nil
	}
	acc, err := Evaluate(ctx, scope, r.Children[0])
	if err != nil {
		return nil, err
	}
	for _, c := range r.Children[1:] {
		if allFalse(acc) {
			break
		}
		next, err := Evaluate(ctx, scope, c)
		if err != nil {
			return nil, err
		}
		acc, err = kleeneAnd(acc, next)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func allFalse(a *array.Array) bool {
	for i := 0; i < a.Len(); i++ {
		if !a.IsValid(i) {
			continue
		}
		if _, v := boolAt(a, i); v {
			return false
		}
	}
	return true
}

func evalBinaryNumeric(ctx *array.Context, scope *array.Array, node *BinaryNumeric) (*array.Array, error) {
	lhs, err := Evaluate(ctx, scope, node.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := Evaluate(ctx, scope, node.Right)
	if err != nil {
		return nil, err
	}
	n := scope.Len()
	out := make([]scalar.Scalar, n)
	pt := lhs.DType().PType()
	for i := 0; i < n; i++ {
		lv, err := compute.ScalarAt(ctx, lhs, i)
		if err != nil {
			return nil, err
		}
		rv, err := compute.ScalarAt(ctx, rhs, i)
		if err != nil {
			return nil, err
		}
		out[i], err = arithmetic(node.Op, lv, rv, pt)
		if err != nil {
			return nil, err
		}
	}
	return arrayFromScalars(pt, out, n)
}

func arithmetic(op NumericOp, lv, rv scalar.Scalar, pt dtype.PType) (scalar.Scalar, error) {
	if lv.IsNull() || rv.IsNull() {
		return scalar.Null(dtype.Primitive(pt, true)), nil
	}
	if pt.IsFloat() {
		l, r := asFloat(lv), asFloat(rv)
		var v float64
		switch op {
		case Add:
			v = l + r
		case Sub:
			v = l - r
		case Mul:
			v = l * r
		case Div:
			v = l / r
		case RSub:
			v = r - l
		case RDiv:
			v = r / l
		}
		return scalar.NewPrimitive(pt, v, true)
	}
	if pt.IsSigned() {
		l, r := asInt(lv), asInt(rv)
		var v int64
		switch op {
		case Add:
			v = l + r
		case Sub:
			v = l - r
		case Mul:
			v = l * r
		case Div:
			v = l / r
		case RSub:
			v = r - l
		case RDiv:
			v = r / l
		}
		return scalar.NewPrimitive(pt, v, true)
	}
	l, r := asUint(lv), asUint(rv)
	var v uint64
	switch op {
	case Add:
		v = l + r
	case Sub:
		v = l - r
	case Mul:
		v = l * r
	case Div:
		v = l / r
	case RSub:
		v = r - l
	case RDiv:
		v = r / l
	}
	return scalar.NewPrimitive(pt, v, true)
}

func asFloat(s scalar.Scalar) float64 {
	switch s.DType().PType() {
	case dtype.F32, dtype.F64:
		return s.AsFloat64()
	}
	if s.DType().PType().IsSigned() {
		return float64(s.AsInt64())
	}
	return float64(s.AsUint64())
}

func asInt(s scalar.Scalar) int64 {
	if s.DType().PType().IsFloat() {
		return int64(s.AsFloat64())
	}
	if s.DType().PType().IsSigned() {
		return s.AsInt64()
	}
	return int64(s.AsUint64())
}

func asUint(s scalar.Scalar) uint64 {
	if s.DType().PType().IsFloat() {
		return uint64(s.AsFloat64())
	}
	if s.DType().PType().IsSigned() {
		return uint64(s.AsInt64())
	}
	return s.AsUint64()
}

func arrayFromScalars(pt dtype.PType, values []scalar.Scalar, n int) (*array.Array, error) {
	validBits := make([]bool, n)
	if pt.IsFloat() {
		xs := make([]float64, n)
		for i, v := range values {
			if v.IsValid() {
				xs[i] = v.AsFloat64()
				validBits[i] = true
			}
		}
		return array.NewPrimitive(pt, n, array.EncodeFloat64s(pt, xs), validity.FromBits(validBits))
	}
	if pt.IsSigned() {
		xs := make([]int64, n)
		for i, v := range values {
			if v.IsValid() {
				xs[i] = v.AsInt64()
				validBits[i] = true
			}
		}
		return array.NewPrimitive(pt, n, array.EncodeInt64s(pt, xs), validity.FromBits(validBits))
	}
	xs := make([]uint64, n)
	for i, v := range values {
		if v.IsValid() {
			xs[i] = v.AsUint64()
			validBits[i] = true
		}
	}
	return array.NewPrimitive(pt, n, array.EncodeUint64s(pt, xs), validity.FromBits(validBits))
}

func evalComparison(ctx *array.Context, scope *array.Array, node *Comparison) (*array.Array, error) {
	lhs, err := Evaluate(ctx, scope, node.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := Evaluate(ctx, scope, node.Right)
	if err != nil {
		return nil, err
	}
	n := scope.Len()
	bits := make([]bool, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		lv, err := compute.ScalarAt(ctx, lhs, i)
		if err != nil {
			return nil, err
		}
		rv, err := compute.ScalarAt(ctx, rhs, i)
		if err != nil {
			return nil, err
		}
		if lv.IsNull() || rv.IsNull() {
			continue
		}
		c, err := scalar.Compare(lv, rv)
		if err != nil {
			return nil, err
		}
		valid[i] = true
		switch node.Op {
		case compute.Eq:
			bits[i] = c == 0
		case compute.Ne:
			bits[i] = c != 0
		case compute.Lt:
			bits[i] = c < 0
		case compute.Le:
			bits[i] = c <= 0
		case compute.Gt:
			bits[i] = c > 0
		case compute.Ge:
			bits[i] = c >= 0
		}
	}
	return array.NewBool(n, array.PackBools(bits), validity.FromBits(valid))
}

func evalBetween(ctx *array.Context, scope *array.Array, node *Between) (*array.Array, error) {
	child, err := Evaluate(ctx, scope, node.Child)
	if err != nil {
		return nil, err
	}
	lower, err := Evaluate(ctx, scope, node.Lower)
	if err != nil {
		return nil, err
	}
	upper, err := Evaluate(ctx, scope, node.Upper)
	if err != nil {
		return nil, err
	}
	n := scope.Len()
	bits := make([]bool, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		cv, err := compute.ScalarAt(ctx, child, i)
		if err != nil {
			return nil, err
		}
		lv, err := compute.ScalarAt(ctx, lower, i)
		if err != nil {
			return nil, err
		}
		uv, err := compute.ScalarAt(ctx, upper, i)
		if err != nil {
			return nil, err
		}
		if cv.IsNull() || lv.IsNull() || uv.IsNull() {
			continue
		}
		cl, err := scalar.Compare(cv, lv)
		if err != nil {
			return nil, err
		}
		cu, err := scalar.Compare(cv, uv)
		if err != nil {
			return nil, err
		}
		loOK := cl > 0 || (node.LowerInclusive && cl == 0)
		hiOK := cu < 0 || (node.UpperInclusive && cu == 0)
		valid[i] = true
		bits[i] = loOK && hiOK
	}
	return array.NewBool(n, array.PackBools(bits), validity.FromBits(valid))
}

func evalBinaryBool(ctx *array.Context, scope *array.Array, node *BinaryBool) (*array.Array, error) {
	lhs, err := Evaluate(ctx, scope, node.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := Evaluate(ctx, scope, node.Right)
	if err != nil {
		return nil, err
	}
	if node.Op == And {
		return kleeneAnd(lhs, rhs)
	}
	return kleeneOr(lhs, rhs)
}

// kleeneAnd implements three-valued AND: false dominates regardless of the
// other operand's nullity; otherwise a null operand makes the result null.
func kleeneAnd(lhs, rhs *array.Array) (*array.Array, error) {
	n := lhs.Len()
	bits := make([]bool, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		lValid, lTrue := boolAt(lhs, i)
		rValid, rTrue := boolAt(rhs, i)
		switch {
		case lValid && !lTrue, rValid && !rTrue:
			valid[i] = true
			bits[i] = false
		case lValid && rValid:
			valid[i] = true
			bits[i] = lTrue && rTrue
		}
	}
	return array.NewBool(n, array.PackBools(bits), validity.FromBits(valid))
}

// kleeneOr implements three-valued OR: true dominates regardless of the
// other operand's nullity; otherwise a null operand makes the result null.
func kleeneOr(lhs, rhs *array.Array) (*array.Array, error) {
	n := lhs.Len()
	bits := make([]bool, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		lValid, lTrue := boolAt(lhs, i)
		rValid, rTrue := boolAt(rhs, i)
		switch {
		case lValid && lTrue, rValid && rTrue:
			valid[i] = true
			bits[i] = true
		case lValid && rValid:
			valid[i] = true
			bits[i] = false
		}
	}
	return array.NewBool(n, array.PackBools(bits), validity.FromBits(valid))
}

func boolAt(a *array.Array, i int) (valid bool, value bool) {
	if !a.IsValid(i) {
		return false, false
	}
	if a.Encoding() == array.EncodingConstant {
		return true, array.ConstantValue(a).AsBool()
	}
	return true, array.BoolValueAt(a, i)
}
