package vfile

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
)

// Field table vtable slots.
const (
	fieldVTName = iota
	fieldVTDType
)

// DType table vtable slots.
const (
	dtVTKind = iota
	dtVTNullable
	dtVTPType
	dtVTDecimalPrecision
	dtVTDecimalScale
	dtVTFields
	dtVTElement
	dtVTExtID
	dtVTExtMetadata
	dtVTExtStorage
)

// writeDType serializes dt as a DType table, recursing into struct
// fields, list elements and extension storage.
func writeDType(b *flatbuffers.Builder, dt dtype.DType) flatbuffers.UOffsetT {
	var fieldsOff, elemOff, extIDOff, extMetaOff, extStoreOff flatbuffers.UOffsetT

	switch dt.Kind() {
	case dtype.KindStruct:
		fields := dt.Fields()
		offs := make([]flatbuffers.UOffsetT, len(fields))
		for i, f := range fields {
			nameOff := b.CreateString(f.Name)
			fdtOff := writeDType(b, f.Type)
			b.StartObject(2)
			b.PrependUOffsetTSlot(fieldVTName, nameOff, 0)
			b.PrependUOffsetTSlot(fieldVTDType, fdtOff, 0)
			offs[i] = b.EndObject()
		}
		fieldsOff = offsetVector(b, offs)
	case dtype.KindList:
		elem := dt.Element()
		elemOff = writeDType(b, elem)
	case dtype.KindExtension:
		extIDOff = b.CreateString(dt.ExtensionID())
		if meta := dt.ExtensionMetadata(); meta != nil {
			extMetaOff = b.CreateByteVector(meta)
		}
		storage := dt.ExtensionStorage()
		extStoreOff = writeDType(b, storage)
	}

	b.StartObject(10)
	b.PrependByteSlot(dtVTKind, byte(dt.Kind()), 0)
	b.PrependBoolSlot(dtVTNullable, dt.Nullable(), false)
	if dt.Kind() == dtype.KindPrimitive {
		b.PrependByteSlot(dtVTPType, byte(dt.PType()), 0)
	}
	if dt.Kind() == dtype.KindDecimal {
		b.PrependByteSlot(dtVTDecimalPrecision, dt.DecimalPrecision(), 0)
		b.PrependByteSlot(dtVTDecimalScale, dt.DecimalScale(), 0)
	}
	if fieldsOff != 0 {
		b.PrependUOffsetTSlot(dtVTFields, fieldsOff, 0)
	}
	if elemOff != 0 {
		b.PrependUOffsetTSlot(dtVTElement, elemOff, 0)
	}
	if extIDOff != 0 {
		b.PrependUOffsetTSlot(dtVTExtID, extIDOff, 0)
	}
	if extMetaOff != 0 {
		b.PrependUOffsetTSlot(dtVTExtMetadata, extMetaOff, 0)
	}
	if extStoreOff != 0 {
		b.PrependUOffsetTSlot(dtVTExtStorage, extStoreOff, 0)
	}
	return b.EndObject()
}

// EncodeDType serializes dt into a standalone flatbuffer.
func EncodeDType(dt dtype.DType) []byte {
	b := flatbuffers.NewBuilder(256)
	root := writeDType(b, dt)
	b.Finish(root)
	return append([]byte(nil), b.FinishedBytes()...)
}

func readDType(t *flatbuffers.Table) (dtype.DType, error) {
	kind := dtype.Kind(uint8Field(t, dtVTKind))
	nullable := boolField(t, dtVTNullable)

	switch kind {
	case dtype.KindNull:
		return dtype.Null(), nil
	case dtype.KindBool:
		return dtype.Bool(nullable), nil
	case dtype.KindPrimitive:
		return dtype.Primitive(dtype.PType(uint8Field(t, dtVTPType)), nullable), nil
	case dtype.KindDecimal:
		return dtype.Decimal(uint8Field(t, dtVTDecimalPrecision), uint8Field(t, dtVTDecimalScale), nullable)
	case dtype.KindUtf8:
		return dtype.Utf8(nullable), nil
	case dtype.KindBinary:
		return dtype.Binary(nullable), nil
	case dtype.KindStruct:
		n := vectorLen(t, dtVTFields)
		fields := make([]dtype.Field, n)
		for i := 0; i < n; i++ {
			fo := vectorTableAt(t, dtVTFields, i)
			ft := &flatbuffers.Table{Bytes: t.Bytes, Pos: fo}
			name := stringField(ft, fieldVTName)
			fdtOff := tableOffset(ft, fieldVTDType)
			fdt, err := readDType(&flatbuffers.Table{Bytes: t.Bytes, Pos: fdtOff})
			if err != nil {
				return dtype.DType{}, err
			}
			fields[i] = dtype.Field{Name: name, Type: fdt}
		}
		return dtype.Struct(fields, nullable)
	case dtype.KindList:
		elemOff := tableOffset(t, dtVTElement)
		elem, err := readDType(&flatbuffers.Table{Bytes: t.Bytes, Pos: elemOff})
		if err != nil {
			return dtype.DType{}, err
		}
		return dtype.List(elem, nullable), nil
	case dtype.KindExtension:
		id := stringField(t, dtVTExtID)
		meta := byteVector(t, dtVTExtMetadata)
		storeOff := tableOffset(t, dtVTExtStorage)
		storage, err := readDType(&flatbuffers.Table{Bytes: t.Bytes, Pos: storeOff})
		if err != nil {
			return dtype.DType{}, err
		}
		return dtype.Extension(id, meta, storage)
	default:
		return dtype.DType{}, verrors.NotImplemented("vfile.dtype.read", kind.String())
	}
}

// DecodeDType parses a standalone DType flatbuffer produced by EncodeDType.
func DecodeDType(buf []byte) (dtype.DType, error) {
	return readDType(rootTable(buf))
}
