package vfile

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/stats"
)

// StatValue table vtable slots.
const (
	svVTKind = iota
	svVTPrecision
	svVTHasScalar
	svVTScalarValid
	svVTScalarBytes
	svVTIntVal
	svVTBoolVal
	svVTIntFreq
)

// StatsSet table vtable slots.
const statsSetVTValues = 0

// encodeScalarValue flattens a scalar's payload to raw bytes, without its
// dtype tag: the dtype is always recoverable from context (the column or
// field the stats belong to), so a StatValue need only carry the bytes.
func encodeScalarValue(s scalar.Scalar) ([]byte, error) {
	if !s.IsValid() {
		return nil, nil
	}
	switch s.DType().Kind() {
	case dtype.KindBool:
		if s.AsBool() {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case dtype.KindPrimitive:
		raw := make([]byte, 8)
		switch {
		case s.DType().PType().IsFloat():
			putFloat64(raw, s.AsFloat64())
		case s.DType().PType().IsSigned():
			putInt64(raw, s.AsInt64())
		default:
			putUint64(raw, s.AsUint64())
		}
		return raw, nil
	case dtype.KindUtf8:
		return []byte(s.AsString()), nil
	case dtype.KindBinary:
		return s.AsBytes(), nil
	default:
		return nil, verrors.NotImplemented("vfile.stats.encode_scalar", s.DType().Kind().String())
	}
}

func decodeScalarValue(dt dtype.DType, valid bool, raw []byte) (scalar.Scalar, error) {
	if !valid {
		return scalar.Null(dt), nil
	}
	switch dt.Kind() {
	case dtype.KindBool:
		return scalar.NewBool(len(raw) > 0 && raw[0] != 0, dt.Nullable()), nil
	case dtype.KindPrimitive:
		switch {
		case dt.PType().IsFloat():
			return scalar.NewPrimitive(dt.PType(), getFloat64(raw), dt.Nullable())
		case dt.PType().IsSigned():
			return scalar.NewPrimitive(dt.PType(), getInt64(raw), dt.Nullable())
		default:
			return scalar.NewPrimitive(dt.PType(), getUint64(raw), dt.Nullable())
		}
	case dtype.KindUtf8:
		return scalar.NewUtf8(string(raw), dt.Nullable()), nil
	case dtype.KindBinary:
		return scalar.NewBinary(raw, dt.Nullable()), nil
	default:
		return scalar.Scalar{}, verrors.NotImplemented("vfile.stats.decode_scalar", dt.Kind().String())
	}
}

func writeStatValue(b *flatbuffers.Builder, k stats.Kind, v stats.Value) (flatbuffers.UOffsetT, error) {
	hasScalar := k == stats.Min || k == stats.Max || k == stats.Sum
	var scalarBytesOff flatbuffers.UOffsetT
	if hasScalar {
		raw, err := encodeScalarValue(v.Scalar)
		if err != nil {
			return 0, err
		}
		if raw != nil {
			scalarBytesOff = b.CreateByteVector(raw)
		}
	}
	var freqOff flatbuffers.UOffsetT
	if len(v.IntFreq) > 0 {
		freqOff = int64Vector(b, v.IntFreq)
	}

	b.StartObject(8)
	b.PrependByteSlot(svVTKind, byte(k), 0)
	b.PrependByteSlot(svVTPrecision, byte(v.Precision), 0)
	b.PrependBoolSlot(svVTHasScalar, hasScalar, false)
	b.PrependBoolSlot(svVTScalarValid, v.Scalar.IsValid(), false)
	if scalarBytesOff != 0 {
		b.PrependUOffsetTSlot(svVTScalarBytes, scalarBytesOff, 0)
	}
	b.PrependInt64Slot(svVTIntVal, v.Int, 0)
	b.PrependBoolSlot(svVTBoolVal, v.Bool, false)
	if freqOff != 0 {
		b.PrependUOffsetTSlot(svVTIntFreq, freqOff, 0)
	}
	return b.EndObject(), nil
}

func readStatValue(t *flatbuffers.Table, dt dtype.DType) (stats.Kind, stats.Value, error) {
	k := stats.Kind(uint8Field(t, svVTKind))
	prec := stats.Precision(uint8Field(t, svVTPrecision))
	v := stats.Value{Precision: prec, Int: int64Field(t, svVTIntVal), Bool: boolField(t, svVTBoolVal)}
	if boolField(t, svVTHasScalar) {
		raw := byteVector(t, svVTScalarBytes)
		s, err := decodeScalarValue(dt, boolField(t, svVTScalarValid), raw)
		if err != nil {
			return 0, stats.Value{}, err
		}
		v.Scalar = s
	}
	v.IntFreq = int64VectorAt(t, svVTIntFreq)
	return k, v, nil
}

// EncodeStatsSet serializes set as a StatsSet flatbuffer table (standalone
// root), assuming every scalar-valued stat in set belongs to dt.
func EncodeStatsSet(b *flatbuffers.Builder, dt dtype.DType, set *stats.Set) (flatbuffers.UOffsetT, error) {
	kinds := set.Kinds()
	offs := make([]flatbuffers.UOffsetT, len(kinds))
	for i, k := range kinds {
		v, _ := set.Get(k)
		off, err := writeStatValue(b, k, v)
		if err != nil {
			return 0, err
		}
		offs[i] = off
	}
	vecOff := offsetVector(b, offs)
	b.StartObject(1)
	b.PrependUOffsetTSlot(statsSetVTValues, vecOff, 0)
	return b.EndObject(), nil
}

// DecodeStatsSet reads a StatsSet table at off, resolving Min/Max/Sum
// scalars against dt.
func DecodeStatsSet(t *flatbuffers.Table, off flatbuffers.UOffsetT, dt dtype.DType) (*stats.Set, error) {
	sub := &flatbuffers.Table{Bytes: t.Bytes, Pos: off}
	n := vectorLen(sub, statsSetVTValues)
	out := stats.NewSet()
	for i := 0; i < n; i++ {
		vo := vectorTableAt(sub, statsSetVTValues, i)
		vt := &flatbuffers.Table{Bytes: sub.Bytes, Pos: vo}
		k, v, err := readStatValue(vt, dt)
		if err != nil {
			return nil, err
		}
		out.Set(k, v)
	}
	return out, nil
}

// FileStatistics table vtable slots.
const fileStatsVTFields = 0

// EncodeFileStatistics serializes one StatsSet per struct field, in field
// order, positionally (§6.1 "file statistics: a vector of StatsSet, one
// per top-level struct field").
func EncodeFileStatistics(structDT dtype.DType, perField map[string]*stats.Set) []byte {
	b := flatbuffers.NewBuilder(512)
	fields := structDT.Fields()
	offs := make([]flatbuffers.UOffsetT, len(fields))
	for i, f := range fields {
		set, ok := perField[f.Name]
		if !ok {
			set = stats.NewSet()
		}
		off, err := EncodeStatsSet(b, f.Type, set)
		if err != nil {
			// Stats that cannot be encoded (non-orderable dtypes) are
			// simply omitted rather than failing the whole file write.
			off, _ = EncodeStatsSet(b, f.Type, stats.NewSet())
		}
		offs[i] = off
	}
	vecOff := offsetVector(b, offs)
	b.StartObject(1)
	b.PrependUOffsetTSlot(fileStatsVTFields, vecOff, 0)
	root := b.EndObject()
	b.Finish(root)
	return append([]byte(nil), b.FinishedBytes()...)
}

// DecodeFileStatistics parses a FileStatistics flatbuffer against
// structDT's field order.
func DecodeFileStatistics(buf []byte, structDT dtype.DType) (map[string]*stats.Set, error) {
	t := rootTable(buf)
	fields := structDT.Fields()
	n := vectorLen(t, fileStatsVTFields)
	out := make(map[string]*stats.Set, n)
	for i := 0; i < n && i < len(fields); i++ {
		off := vectorTableAt(t, fileStatsVTFields, i)
		set, err := DecodeStatsSet(t, off, fields[i].Type)
		if err != nil {
			return nil, err
		}
		out[fields[i].Name] = set
	}
	return out, nil
}
