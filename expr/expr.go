// Package expr implements Vortex's predicate/projection expression trees
// (§4.8): a small tree of literals, column references, struct-navigation,
// unary/binary operators and aggregating combinators, evaluated against an
// array (typically a Struct array representing a row batch).
package expr

import (
	"fmt"

	"github.com/vortex-db/vortex/compute"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/scalar"
)

// Expr is one node of an expression tree.
type Expr interface {
	// ReturnDType computes the expression's output dtype given the dtype
	// of the scope it will be evaluated against, without touching data
	// (§4.8 "type inference").
	ReturnDType(scope dtype.DType) (dtype.DType, error)
	String() string
}

// Literal is a constant value, independent of the evaluation scope.
type Literal struct{ Value scalar.Scalar }

func (l *Literal) ReturnDType(dtype.DType) (dtype.DType, error) { return l.Value.DType(), nil }
func (l *Literal) String() string                               { return fmt.Sprintf("lit(%v)", l.Value) }

// Column references a struct field by name (§4.8 "column reference").
type Column struct{ Name string }

func (c *Column) ReturnDType(scope dtype.DType) (dtype.DType, error) {
	if scope.Kind() != dtype.KindStruct {
		return dtype.DType{}, verrors.MismatchedTypes("expr.column", "struct", scope.String())
	}
	f, ok := scope.FieldByName(c.Name)
	if !ok {
		return dtype.DType{}, verrors.InvalidArgument("expr.column", "no such field: "+c.Name)
	}
	return f.Type, nil
}
func (c *Column) String() string { return c.Name }

// Identity returns the scope array unchanged.
type Identity struct{}

func (Identity) ReturnDType(scope dtype.DType) (dtype.DType, error) { return scope, nil }
func (Identity) String() string                                    { return "$" }

// GetItem accesses a named field of Child's result (§4.8 get_item),
// distinct from Column in that Child may itself be a computed expression
// rather than the top-level scope.
type GetItem struct {
	Field string
	Child Expr
}

func (g *GetItem) ReturnDType(scope dtype.DType) (dtype.DType, error) {
	childDT, err := g.Child.ReturnDType(scope)
	if err != nil {
		return dtype.DType{}, err
	}
	if childDT.Kind() != dtype.KindStruct {
		return dtype.DType{}, verrors.MismatchedTypes("expr.get_item", "struct", childDT.String())
	}
	f, ok := childDT.FieldByName(g.Field)
	if !ok {
		return dtype.DType{}, verrors.InvalidArgument("expr.get_item", "no such field: "+g.Field)
	}
	return f.Type, nil
}
func (g *GetItem) String() string { return fmt.Sprintf("get_item(%s, %s)", g.Field, g.Child) }

// UnaryOp names a unary expression operator (§4.8 "unary (not, invert)").
type UnaryOp uint8

const (
	Not UnaryOp = iota
	Invert
)

// Unary applies a boolean negation to Child's result.
type Unary struct {
	Op    UnaryOp
	Child Expr
}

func (u *Unary) ReturnDType(scope dtype.DType) (dtype.DType, error) { return u.Child.ReturnDType(scope) }
func (u *Unary) String() string {
	name := "not"
	if u.Op == Invert {
		name = "invert"
	}
	return fmt.Sprintf("%s(%s)", name, u.Child)
}

// NumericOp names a binary numeric expression operator (§4.8 "binary
// numeric (add/sub/mul/div/rsub/rdiv)"). RSub/RDiv flip operand order
// (b - a / b / a) for expression trees built with a constant on the left.
type NumericOp uint8

const (
	Add NumericOp = iota
	Sub
	Mul
	Div
	RSub
	RDiv
)

func (op NumericOp) String() string {
	return [...]string{"add", "sub", "mul", "div", "rsub", "rdiv"}[op]
}

// BinaryNumeric evaluates Left <op> Right elementwise.
type BinaryNumeric struct {
	Op          NumericOp
	Left, Right Expr
}

func (b *BinaryNumeric) ReturnDType(scope dtype.DType) (dtype.DType, error) {
	return b.Left.ReturnDType(scope)
}
func (b *BinaryNumeric) String() string { return fmt.Sprintf("%s(%s, %s)", b.Op, b.Left, b.Right) }

// BoolOp names a binary boolean expression operator (§4.8 "binary boolean
// (and/or, Kleene variants)").
type BoolOp uint8

const (
	And BoolOp = iota
	Or
)

// BinaryBool evaluates Left <op> Right with three-valued (Kleene) logic:
// a null operand only forces a null result when the other operand does
// not already determine the outcome (e.g. false AND null == false).
type BinaryBool struct {
	Op          BoolOp
	Left, Right Expr
}

func (b *BinaryBool) ReturnDType(scope dtype.DType) (dtype.DType, error) {
	return dtype.Bool(true), nil
}
func (b *BinaryBool) String() string { return fmt.Sprintf("%v(%s, %s)", b.Op, b.Left, b.Right) }

// Comparison evaluates Left <op> Right (§4.8 "comparison (eq/ne/lt/le/gt/
// ge)").
type Comparison struct {
	Op          compute.CompareOp
	Left, Right Expr
}

func (c *Comparison) ReturnDType(scope dtype.DType) (dtype.DType, error) { return dtype.Bool(true), nil }
func (c *Comparison) String() string { return fmt.Sprintf("cmp(%s, %s)", c.Left, c.Right) }

// Between evaluates Lower <op_lo> Child <op_hi> Upper (§4.8 "between (with
// per-side strictness)").
type Between struct {
	Child                          Expr
	Lower, Upper                   Expr
	LowerInclusive, UpperInclusive bool
}

func (b *Between) ReturnDType(dtype.DType) (dtype.DType, error) { return dtype.Bool(true), nil }
func (b *Between) String() string {
	return fmt.Sprintf("between(%s, %s, %s)", b.Child, b.Lower, b.Upper)
}

// Like evaluates a SQL-LIKE pattern against Child's result (§4.8 "like
// (negated/case-insensitive)").
type Like struct {
	Child           Expr
	Pattern         string
	Negated         bool
	CaseInsensitive bool
}

func (l *Like) ReturnDType(dtype.DType) (dtype.DType, error) { return dtype.Bool(true), nil }
func (l *Like) String() string                               { return fmt.Sprintf("like(%s, %q)", l.Child, l.Pattern) }

// Select projects a subset of Child's struct fields, in the given order
// (§4.8 select). Evaluation rewrites this into a Pack of GetItems before
// execution (§4.8 "simplification").
type Select struct {
	Fields []string
	Child  Expr
}

func (s *Select) ReturnDType(scope dtype.DType) (dtype.DType, error) {
	childDT, err := s.Child.ReturnDType(scope)
	if err != nil {
		return dtype.DType{}, err
	}
	fields := make([]dtype.Field, len(s.Fields))
	for i, name := range s.Fields {
		f, ok := childDT.FieldByName(name)
		if !ok {
			return dtype.DType{}, verrors.InvalidArgument("expr.select", "no such field: "+name)
		}
		fields[i] = f
	}
	return dtype.Struct(fields, childDT.Nullable())
}
func (s *Select) String() string { return fmt.Sprintf("select(%v, %s)", s.Fields, s.Child) }

// Pack constructs a struct from named child expressions (§4.8 pack).
type Pack struct {
	Names    []string
	Children []Expr
}

func (p *Pack) ReturnDType(scope dtype.DType) (dtype.DType, error) {
	fields := make([]dtype.Field, len(p.Names))
	for i, c := range p.Children {
		dt, err := c.ReturnDType(scope)
		if err != nil {
			return dtype.DType{}, err
		}
		fields[i] = dtype.Field{Name: p.Names[i], Type: dt}
	}
	return dtype.Struct(fields, false)
}
func (p *Pack) String() string { return fmt.Sprintf("pack(%v)", p.Names) }

// RowFilter is the conjunction of its subexpressions (§4.8 row-filter),
// short-circuiting during evaluation as soon as the partial mask becomes
// all-false.
type RowFilter struct {
	Children []Expr
}

func (r *RowFilter) ReturnDType(dtype.DType) (dtype.DType, error) { return dtype.Bool(true), nil }
func (r *RowFilter) String() string                               { return fmt.Sprintf("row_filter(%v)", r.Children) }
