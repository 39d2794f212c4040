// Package dtype implements Vortex's logical type system (§3): a closed sum
// type describing the shape of an array independent of its physical
// encoding.
package dtype

import (
	"fmt"
	"strings"

	verrors "github.com/vortex-db/vortex/internal/errors"
)

// Kind discriminates the DType sum type's variants.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindPrimitive
	KindDecimal
	KindUtf8
	KindBinary
	KindStruct
	KindList
	KindExtension
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindPrimitive:
		return "primitive"
	case KindDecimal:
		return "decimal"
	case KindUtf8:
		return "utf8"
	case KindBinary:
		return "binary"
	case KindStruct:
		return "struct"
	case KindList:
		return "list"
	case KindExtension:
		return "extension"
	default:
		return "unknown"
	}
}

// PType enumerates the primitive physical types a Primitive DType carries.
type PType uint8

const (
	U8 PType = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F16
	F32
	F64
)

// ByteWidth returns the in-memory size of a single value of this ptype.
func (p PType) ByteWidth() int {
	switch p {
	case U8, I8:
		return 1
	case U16, I16, F16:
		return 2
	case U32, I32, F32:
		return 4
	case U64, I64, F64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether p is a floating-point ptype.
func (p PType) IsFloat() bool { return p == F16 || p == F32 || p == F64 }

// IsSigned reports whether p is a signed integral ptype.
func (p PType) IsSigned() bool {
	switch p {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

func (p PType) String() string {
	names := [...]string{"u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64", "f16", "f32", "f64"}
	if int(p) < len(names) {
		return names[p]
	}
	return "unknown"
}

// Field is one named, ordered member of a Struct DType.
type Field struct {
	Name string
	Type DType
}

// DType is Vortex's logical type: a closed sum over the variants in §3.
// Only the fields relevant to Kind are meaningful; accessors panic if
// called against the wrong Kind, mirroring a sum-type match in the source
// language.
type DType struct {
	kind      Kind
	nullable  bool
	ptype     PType
	precision uint8 // Decimal
	scale     uint8 // Decimal
	fields    []Field
	elem      *DType // List
	extID     string // Extension
	extMeta   []byte
	extStore  *DType
}

// Null is the singleton null dtype (always nullable, trivially).
func Null() DType { return DType{kind: KindNull} }

// Bool constructs a Bool(nullable) dtype.
func Bool(nullable bool) DType { return DType{kind: KindBool, nullable: nullable} }

// Primitive constructs a Primitive(ptype, nullable) dtype.
func Primitive(ptype PType, nullable bool) DType {
	return DType{kind: KindPrimitive, ptype: ptype, nullable: nullable}
}

// Decimal constructs a Decimal(precision, scale, nullable) dtype. Precision
// and scale must each be within [0, 76].
func Decimal(precision, scale uint8, nullable bool) (DType, error) {
	if precision > 76 {
		return DType{}, verrors.InvalidArgument("dtype.decimal", fmt.Sprintf("precision %d exceeds 76", precision))
	}
	if scale > 76 {
		return DType{}, verrors.InvalidArgument("dtype.decimal", fmt.Sprintf("scale %d exceeds 76", scale))
	}
	return DType{kind: KindDecimal, precision: precision, scale: scale, nullable: nullable}, nil
}

// Utf8 constructs a Utf8(nullable) dtype.
func Utf8(nullable bool) DType { return DType{kind: KindUtf8, nullable: nullable} }

// Binary constructs a Binary(nullable) dtype.
func Binary(nullable bool) DType { return DType{kind: KindBinary, nullable: nullable} }

// Struct constructs a Struct dtype from an ordered, name-unique field list.
func Struct(fields []Field, nullable bool) (DType, error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return DType{}, verrors.InvalidArgument("dtype.struct", fmt.Sprintf("duplicate field name %q", f.Name))
		}
		seen[f.Name] = struct{}{}
	}
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return DType{kind: KindStruct, fields: cp, nullable: nullable}, nil
}

// List constructs a List(element, nullable) dtype.
func List(elem DType, nullable bool) DType {
	e := elem
	return DType{kind: KindList, elem: &e, nullable: nullable}
}

// Extension constructs an Extension(id, metadata, storage) dtype. The
// storage type must not itself be an extension.
func Extension(id string, metadata []byte, storage DType) (DType, error) {
	if storage.kind == KindExtension {
		return DType{}, verrors.InvalidArgument("dtype.extension", "extension storage type must not itself be an extension")
	}
	s := storage
	return DType{kind: KindExtension, extID: id, extMeta: metadata, extStore: &s}, nil
}

// Kind returns the dtype's variant.
func (d DType) Kind() Kind { return d.kind }

// Nullable reports whether this dtype admits nulls. Null is trivially
// nullable; Struct/List/Extension report their own nullable flag, but
// per-field/element nullability is carried by the child dtypes themselves.
func (d DType) Nullable() bool {
	if d.kind == KindNull {
		return true
	}
	return d.nullable
}

// PType returns the primitive physical type; only meaningful for
// Kind == KindPrimitive.
func (d DType) PType() PType { return d.ptype }

// DecimalPrecision returns the decimal precision; only meaningful for
// Kind == KindDecimal.
func (d DType) DecimalPrecision() uint8 { return d.precision }

// DecimalScale returns the decimal scale; only meaningful for
// Kind == KindDecimal.
func (d DType) DecimalScale() uint8 { return d.scale }

// Fields returns the struct's field list; only meaningful for
// Kind == KindStruct.
func (d DType) Fields() []Field { return d.fields }

// FieldByName looks up a struct field by name.
func (d DType) FieldByName(name string) (Field, bool) {
	for _, f := range d.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Element returns the list's element dtype; only meaningful for
// Kind == KindList.
func (d DType) Element() DType { return *d.elem }

// ExtensionID returns the extension's stable identifier.
func (d DType) ExtensionID() string { return d.extID }

// ExtensionMetadata returns the extension's opaque metadata.
func (d DType) ExtensionMetadata() []byte { return d.extMeta }

// ExtensionStorage returns the extension's underlying storage dtype.
func (d DType) ExtensionStorage() DType { return *d.extStore }

// AsNullable returns a copy of d with nullability set to true.
func (d DType) AsNullable() DType {
	d.nullable = true
	return d
}

// AsNonNullable returns a copy of d with nullability set to false.
func (d DType) AsNonNullable() DType {
	d.nullable = false
	return d
}

// Equal reports structural equality, ignoring nothing: nullability,
// precision/scale, field names and order, and extension identity all
// participate.
func (d DType) Equal(o DType) bool {
	if d.kind != o.kind {
		return false
	}
	switch d.kind {
	case KindNull:
		return true
	case KindBool, KindUtf8, KindBinary:
		return d.nullable == o.nullable
	case KindPrimitive:
		return d.nullable == o.nullable && d.ptype == o.ptype
	case KindDecimal:
		return d.nullable == o.nullable && d.precision == o.precision && d.scale == o.scale
	case KindStruct:
		if d.nullable != o.nullable || len(d.fields) != len(o.fields) {
			return false
		}
		for i := range d.fields {
			if d.fields[i].Name != o.fields[i].Name || !d.fields[i].Type.Equal(o.fields[i].Type) {
				return false
			}
		}
		return true
	case KindList:
		return d.nullable == o.nullable && d.elem.Equal(*o.elem)
	case KindExtension:
		return d.extID == o.extID && d.extStore.Equal(*o.extStore)
	default:
		return false
	}
}

// IsNumeric reports whether d is a Primitive or Decimal dtype.
func (d DType) IsNumeric() bool {
	return d.kind == KindPrimitive || d.kind == KindDecimal
}

func (d DType) String() string {
	switch d.kind {
	case KindNull:
		return "null"
	case KindBool:
		return nullableSuffix("bool", d.nullable)
	case KindPrimitive:
		return nullableSuffix(d.ptype.String(), d.nullable)
	case KindDecimal:
		return nullableSuffix(fmt.Sprintf("decimal(%d,%d)", d.precision, d.scale), d.nullable)
	case KindUtf8:
		return nullableSuffix("utf8", d.nullable)
	case KindBinary:
		return nullableSuffix("binary", d.nullable)
	case KindStruct:
		parts := make([]string, len(d.fields))
		for i, f := range d.fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type.String())
		}
		return nullableSuffix(fmt.Sprintf("struct{%s}", strings.Join(parts, ", ")), d.nullable)
	case KindList:
		return nullableSuffix(fmt.Sprintf("list<%s>", d.elem.String()), d.nullable)
	case KindExtension:
		return fmt.Sprintf("ext<%s, %s>", d.extID, d.extStore.String())
	default:
		return "invalid"
	}
}

func nullableSuffix(base string, nullable bool) string {
	if nullable {
		return base + "?"
	}
	return base
}
