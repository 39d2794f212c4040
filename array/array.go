// Package array implements Vortex's polymorphic array abstraction (§3, §4.2):
// a 4-tuple of (dtype, length, encoding, payload) where encoding is a small
// numeric ID resolved through a registry into a vtable of kernels.
package array

import (
	"fmt"

	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/validity"
)

// EncodingID is the 16-bit stable code identifying an array's physical
// representation.
type EncodingID uint16

// Canonical encoding IDs, stable across the wire format (§4.2, §6.2).
const (
	EncodingNull EncodingID = iota
	EncodingBool
	EncodingPrimitive
	EncodingDecimal
	EncodingVarBinView
	EncodingStruct
	EncodingList
	EncodingExtension
	EncodingChunked
	EncodingConstant
	// Compressed/approximate encodings carried by this implementation,
	// beyond the canonical set required by §3; their bit layouts are not
	// specified by spec (Non-goals), only their contracts.
	EncodingDict
	EncodingRunEnd
	// EncodingVarBin is a non-canonical offsets+bytes representation of
	// Utf8/Binary that canonicalizes to VarBinView (§8 scenario 1).
	EncodingVarBin

	// EncodingOpaque is never assigned to a real array; it is the
	// synthetic vtable installed for unknown IDs encountered on read.
	EncodingOpaque EncodingID = 0xFFFF
)

func (id EncodingID) String() string {
	switch id {
	case EncodingNull:
		return "null"
	case EncodingBool:
		return "bool"
	case EncodingPrimitive:
		return "primitive"
	case EncodingDecimal:
		return "decimal"
	case EncodingVarBinView:
		return "varbinview"
	case EncodingStruct:
		return "struct"
	case EncodingList:
		return "list"
	case EncodingExtension:
		return "extension"
	case EncodingChunked:
		return "chunked"
	case EncodingConstant:
		return "constant"
	case EncodingDict:
		return "dict"
	case EncodingRunEnd:
		return "runend"
	case EncodingVarBin:
		return "varbin"
	case EncodingOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("encoding(%d)", uint16(id))
	}
}

// Array is the structural 4-tuple: dtype, logical length, encoding ID and
// payload (children arrays, byte buffers, opaque metadata). Validity is
// promoted to a first-class field here (rather than threaded through
// children by positional convention) since every encoding needs it and Go
// favors an explicit field over an implicit layout contract.
type Array struct {
	dt       dtype.DType
	length   int
	encoding EncodingID
	metadata []byte
	buffers  []*buffer.Buffer
	children []*Array
	valid    validity.Validity

	// constVal holds the repeated scalar for EncodingConstant arrays. It
	// is unset for every other encoding.
	constVal *scalar.Scalar
}

// New constructs a generic Array. Canonical-encoding constructors
// (NewBool, NewPrimitive, ...) call this after validating their own
// buffer/child-count invariants (§4.2 "in-memory constructor").
func New(dt dtype.DType, length int, encoding EncodingID, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) *Array {
	return &Array{dt: dt, length: length, encoding: encoding, metadata: metadata, buffers: buffers, children: children, valid: valid}
}

// DType returns the array's logical type.
func (a *Array) DType() dtype.DType { return a.dt }

// Len returns the array's logical element count.
func (a *Array) Len() int { return a.length }

// Encoding returns the array's encoding ID.
func (a *Array) Encoding() EncodingID { return a.encoding }

// Metadata returns the encoding-opaque metadata byte string.
func (a *Array) Metadata() []byte { return a.metadata }

// Buffers returns the array's owned byte buffers, in encoding-defined order.
func (a *Array) Buffers() []*buffer.Buffer { return a.buffers }

// Children returns the array's child arrays, in encoding-defined order.
func (a *Array) Children() []*Array { return a.children }

// Validity returns the array's null mask.
func (a *Array) Validity() validity.Validity { return a.valid }

// IsValid reports whether element i is present.
func (a *Array) IsValid(i int) bool { return a.valid.IsValid(i) }

// NullCount returns the number of invalid elements.
func (a *Array) NullCount() int { return a.valid.NullCount() }

// Context is a mapping from encoding ID to encoding vtable (§4.2). A
// default context carries the canonical encodings; callers may register
// additional encodings before opening any file (§9 "no lazy mutation of
// registries during a scan").
type Context struct {
	encodings map[EncodingID]Encoding
}

// NewContext constructs an empty context.
func NewContext() *Context {
	return &Context{encodings: make(map[EncodingID]Encoding)}
}

// DefaultContext returns a context carrying every canonical encoding plus
// Dict, RunEnd and VarBin.
func DefaultContext() *Context {
	ctx := NewContext()
	for _, e := range []Encoding{
		nullEncoding{}, boolEncoding{}, primitiveEncoding{}, decimalEncoding{},
		varBinViewEncoding{}, structEncoding{}, listEncoding{}, extensionEncoding{},
		chunkedEncoding{}, constantEncoding{}, dictEncoding{}, runEndEncoding{}, varBinEncoding{},
	} {
		ctx.Register(e)
	}
	return ctx
}

// Register installs e into the context, keyed by its ID.
func (c *Context) Register(e Encoding) {
	c.encodings[e.ID()] = e
}

// Lookup resolves id to its vtable. An unknown ID never fails: it resolves
// to a synthetic opaque encoding supporting only structural traversal
// (§4.2).
func (c *Context) Lookup(id EncodingID) Encoding {
	if e, ok := c.encodings[id]; ok {
		return e
	}
	return opaqueEncoding{id: id}
}

// Encoding is the vtable every physical representation provides: an
// identity, a parts constructor used during deserialization, a canonical
// conversion, and (via optional interfaces kernels type-assert for in the
// compute package) specialized compute kernels.
type Encoding interface {
	ID() EncodingID
	Name() string
	// FromParts validates and builds an array from deserialized parts
	// (§4.2 "parts constructor"): mismatched buffer/child counts fail with
	// a structured error.
	FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error)
	// Canonicalize converts a onto a canonical encoding equivalent by
	// value (§3 "any array can be canonicalized").
	Canonicalize(ctx *Context, a *Array) (*Array, error)
}

// Canonicalize converts a to its canonical encoding equivalent, resolving
// a's vtable through ctx.
func Canonicalize(ctx *Context, a *Array) (*Array, error) {
	e := ctx.Lookup(a.Encoding())
	return e.Canonicalize(ctx, a)
}

// IsCanonical reports whether id names one of the canonical encodings that
// every array can be converted into (§3, §GLOSSARY).
func IsCanonical(id EncodingID) bool {
	switch id {
	case EncodingNull, EncodingBool, EncodingPrimitive, EncodingDecimal,
		EncodingVarBinView, EncodingStruct, EncodingList, EncodingExtension,
		EncodingChunked, EncodingConstant:
		return true
	default:
		return false
	}
}

// opaqueEncoding is installed for unknown IDs (§4.2). It supports
// structural traversal only; everything else fails with NotImplemented so
// tools can still inspect files containing unknown extensions.
type opaqueEncoding struct{ id EncodingID }

func (o opaqueEncoding) ID() EncodingID { return o.id }
func (o opaqueEncoding) Name() string   { return "opaque" }

func (o opaqueEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	return New(dt, length, o.id, metadata, buffers, children, valid), nil
}

func (o opaqueEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	return nil, verrors.NotImplemented("canonicalize", "opaque")
}

func checkPartsShape(encodingName string, buffers []*buffer.Buffer, wantBuffers int, children []*Array, wantChildren int) error {
	if len(buffers) != wantBuffers {
		return verrors.InvalidArgument("array.from_parts",
			fmt.Sprintf("%s expects %d buffers, got %d", encodingName, wantBuffers, len(buffers)))
	}
	if len(children) != wantChildren {
		return verrors.InvalidArgument("array.from_parts",
			fmt.Sprintf("%s expects %d children, got %d", encodingName, wantChildren, len(children)))
	}
	return nil
}
