// Package stats implements Vortex's per-array statistics model (§3
// Statistics, §4.5 stats layouts): a closed set of computable metrics,
// each carrying an Exact/Inexact precision tag, accumulated per-chunk by
// the writer and consulted by the reader for pruning without touching
// data segments.
package stats

import (
	"math"
	"math/bits"

	"github.com/cespare/xxhash/v2"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/compute"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/scalar"
)

// Kind names one of the statistics §3 defines.
type Kind uint8

const (
	Min Kind = iota
	Max
	NullCount
	TrueCount
	RunCount
	IsSorted
	IsStrictSorted
	IsConstant
	BitWidthFreq
	TrailingZeroFreq
	UncompressedSizeInBytes
	NaNCount
	Sum
)

func (k Kind) String() string {
	names := [...]string{"min", "max", "null_count", "true_count", "run_count",
		"is_sorted", "is_strict_sorted", "is_constant", "bit_width_freq",
		"trailing_zero_freq", "uncompressed_size_in_bytes", "nan_count", "sum"}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// Precision tags whether a recorded value is known exactly or only
// bounded (e.g. a Min/Max surviving a partial computation, or a RunCount
// upper bound estimated from a compressed encoding without expansion).
type Precision uint8

const (
	Exact Precision = iota
	Inexact
)

// Value is one recorded statistic: either a scalar (Min/Max/Sum) or an
// integer count/flag (everything else), tagged with its precision.
type Value struct {
	Precision Precision
	Scalar    scalar.Scalar // meaningful for Min, Max, Sum
	Int       int64         // meaningful for count-shaped stats
	Bool      bool          // meaningful for IsSorted/IsStrictSorted/IsConstant
	IntFreq   []int64       // meaningful for BitWidthFreq/TrailingZeroFreq
}

// Set is an array's (or a file field's) collection of computed statistics.
type Set struct {
	values map[Kind]Value
}

// NewSet constructs an empty stats set.
func NewSet() *Set { return &Set{values: make(map[Kind]Value)} }

// Get returns the recorded value for k, if present.
func (s *Set) Get(k Kind) (Value, bool) {
	v, ok := s.values[k]
	return v, ok
}

// Set records v for k, overwriting any prior value.
func (s *Set) Set(k Kind, v Value) { s.values[k] = v }

// Kinds returns the set's recorded statistic kinds, in no particular order.
func (s *Set) Kinds() []Kind {
	out := make([]Kind, 0, len(s.values))
	for k := range s.values {
		out = append(out, k)
	}
	return out
}

// Compute derives the requested statistics for array a, using compute
// kernels where an operation already exists (min_max, sum, is_sorted,
// is_strict_sorted) and a dedicated scan for the rest (is_constant, run
// count, NaN count, bit width and trailing zero frequency).
func Compute(ctx *array.Context, a *array.Array, want []Kind) (*Set, error) {
	acc := NewAccumulator(a.DType())
	if err := acc.Push(ctx, a); err != nil {
		return nil, err
	}
	full := acc.Finalize()
	if want == nil {
		return full, nil
	}
	out := NewSet()
	for _, k := range want {
		if v, ok := full.Get(k); ok {
			out.Set(k, v)
		}
	}
	return out, nil
}

// Accumulator incrementally folds per-chunk arrays into a running Set,
// used by the writer's per-chunk and file-level statistics layouts (§4.5
// Stats, File-level stats). Pushing chunks one at a time lets the writer
// never hold more than one chunk's worth of source data in memory for
// stats purposes.
type Accumulator struct {
	dt dtype.DType

	haveMinMax bool
	min, max   scalar.Scalar
	minMaxExact bool

	nullCount int64
	trueCount int64
	haveTrue  bool

	sumValid    bool
	sumOverflow bool
	sumF        float64
	sumI        int64
	sumU        uint64

	sortedKnown   bool
	isSorted      bool
	isStrictSort  bool
	lastScalar    scalar.Scalar
	haveLast      bool

	constantKnown bool
	isConstant    bool
	firstHash     uint64
	firstScalar   scalar.Scalar
	haveFirst     bool

	runCount  int64
	haveRun   bool
	prevHash  uint64
	havePrevV bool
	prevV     scalar.Scalar

	bitWidthFreq     [65]int64
	trailingZeroFreq [65]int64

	nanCount int64

	uncompressedBytes int64
}

// NewAccumulator constructs an accumulator for arrays of dtype dt.
func NewAccumulator(dt dtype.DType) *Accumulator {
	return &Accumulator{dt: dt}
}

// Push folds one chunk's statistics into the running accumulation.
func (acc *Accumulator) Push(ctx *array.Context, a *array.Array) error {
	acc.nullCount += int64(a.NullCount())
	acc.uncompressedBytes += estimateUncompressedBytes(a)

	if a.DType().Kind() == dtype.KindBool {
		acc.haveTrue = true
		canon, err := array.Canonicalize(ctx, a)
		if err != nil {
			return err
		}
		for i := 0; i < canon.Len(); i++ {
			if canon.IsValid(i) && array.BoolValueAt(canon, i) {
				acc.trueCount++
			}
		}
	}

	if a.Len() > 0 {
		mn, mx, err := compute.MinMax(ctx, a)
		if err != nil {
			return err
		}
		acc.foldMinMax(mn, mx)
	}

	if a.DType().IsNumeric() {
		if sum, err := compute.Sum(ctx, a); err == nil {
			acc.foldSum(sum)
		} else {
			acc.sumOverflow = true
		}
	}

	sorted, err := compute.IsSorted(ctx, a)
	if err != nil {
		return err
	}
	strict, err := compute.IsStrictSorted(ctx, a)
	if err != nil {
		return err
	}
	acc.sortedKnown = true
	if !acc.haveLast {
		acc.isSorted, acc.isStrictSort = sorted, strict
	} else {
		acc.isSorted = acc.isSorted && sorted
		acc.isStrictSort = acc.isStrictSort && strict
	}

	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return err
	}
	if n := canon.Len(); n > 0 {
		first, last := scalar.Null(canon.DType()), scalar.Null(canon.DType())
		if canon.IsValid(0) {
			first, _ = scalarAt(canon, 0)
		}
		if canon.IsValid(n - 1) {
			last, _ = scalarAt(canon, n-1)
		}
		if c, err := scalar.Compare(acc.lastScalar, first); acc.haveLast && err == nil {
			acc.isSorted = acc.isSorted && c <= 0
			acc.isStrictSort = acc.isStrictSort && (c < 0 || (c == 0 && first.IsNull()))
		}
		acc.lastScalar, acc.haveLast = last, true
	}
	for i := 0; i < canon.Len(); i++ {
		if !canon.IsValid(i) {
			acc.havePrevV = false
			continue
		}
		v, err := scalarAt(canon, i)
		if err != nil {
			return err
		}
		h := hashScalar(v)
		if !acc.haveFirst {
			acc.haveFirst = true
			acc.firstHash = h
			acc.firstScalar = v
			acc.isConstant = true
		} else if acc.isConstant && h != acc.firstHash {
			acc.isConstant = false
		} else if acc.isConstant {
			if c, err := scalar.Compare(v, acc.firstScalar); err != nil || c != 0 {
				acc.isConstant = false
			}
		}
		acc.constantKnown = true

		if !acc.havePrevV || h != acc.prevHash {
			acc.runCount++
		} else if c, err := scalar.Compare(v, acc.prevV); err != nil || c != 0 {
			acc.runCount++
		}
		acc.prevHash, acc.prevV = h, v
		acc.havePrevV = true
		acc.haveRun = true

		if a.DType().Kind() == dtype.KindPrimitive && a.DType().PType().IsFloat() {
			f := v.AsFloat64()
			if f != f { // NaN
				acc.nanCount++
			}
		}
		if a.DType().Kind() == dtype.KindPrimitive && !a.DType().PType().IsFloat() {
			u := uintBits(v, a.DType())
			w := bits.Len64(u)
			acc.bitWidthFreq[w]++
			tz := 64
			if u != 0 {
				tz = bits.TrailingZeros64(u)
			}
			if tz > 64 {
				tz = 64
			}
			acc.trailingZeroFreq[tz]++
		}
	}
	return nil
}

func (acc *Accumulator) foldMinMax(mn, mx scalar.Scalar) {
	if !acc.haveMinMax {
		acc.haveMinMax = true
		acc.min, acc.max = mn, mx
		acc.minMaxExact = true
		return
	}
	if mn.IsValid() {
		if c, err := scalar.Compare(mn, acc.min); err == nil && c < 0 {
			acc.min = mn
		}
	}
	if mx.IsValid() {
		if c, err := scalar.Compare(mx, acc.max); err == nil && c > 0 {
			acc.max = mx
		}
	}
}

func (acc *Accumulator) foldSum(s scalar.Scalar) {
	acc.sumValid = true
	switch {
	case s.DType().PType().IsFloat():
		acc.sumF += s.AsFloat64()
	case s.DType().PType().IsSigned():
		next := acc.sumI + s.AsInt64()
		if (s.AsInt64() > 0 && next < acc.sumI) || (s.AsInt64() < 0 && next > acc.sumI) {
			acc.sumOverflow = true
			return
		}
		acc.sumI = next
	default:
		next := acc.sumU + s.AsUint64()
		if next < acc.sumU {
			acc.sumOverflow = true
			return
		}
		acc.sumU = next
	}
}

// Finalize materializes the running accumulation into a Set. NullCount,
// UncompressedSizeInBytes and BitWidthFreq/TrailingZeroFreq are always
// Exact (computed from the pushed data directly); Min/Max/Sum/IsSorted/
// IsConstant/RunCount are Exact only if every pushed chunk was itself
// fully materialized (always true here, since Push canonicalizes).
func (acc *Accumulator) Finalize() *Set {
	s := NewSet()
	s.Set(NullCount, Value{Precision: Exact, Int: acc.nullCount})
	s.Set(UncompressedSizeInBytes, Value{Precision: Exact, Int: acc.uncompressedBytes})
	if acc.haveTrue {
		s.Set(TrueCount, Value{Precision: Exact, Int: acc.trueCount})
	}
	if acc.haveMinMax {
		prec := Exact
		if !acc.minMaxExact {
			prec = Inexact
		}
		s.Set(Min, Value{Precision: prec, Scalar: acc.min})
		s.Set(Max, Value{Precision: prec, Scalar: acc.max})
	}
	if acc.sumValid {
		prec := Exact
		if acc.sumOverflow {
			prec = Inexact
		}
		switch {
		case acc.dt.Kind() == dtype.KindPrimitive && acc.dt.PType().IsFloat():
			v, _ := scalar.NewPrimitive(dtype.F64, acc.sumF, false)
			s.Set(Sum, Value{Precision: prec, Scalar: v})
		case acc.dt.Kind() == dtype.KindPrimitive && acc.dt.PType().IsSigned():
			v, _ := scalar.NewPrimitive(dtype.I64, acc.sumI, false)
			s.Set(Sum, Value{Precision: prec, Scalar: v})
		default:
			v, _ := scalar.NewPrimitive(dtype.U64, acc.sumU, false)
			s.Set(Sum, Value{Precision: prec, Scalar: v})
		}
	}
	if acc.sortedKnown {
		s.Set(IsSorted, Value{Precision: Exact, Bool: acc.isSorted})
		s.Set(IsStrictSorted, Value{Precision: Exact, Bool: acc.isStrictSort})
	}
	if acc.constantKnown {
		s.Set(IsConstant, Value{Precision: Exact, Bool: acc.isConstant})
	}
	if acc.haveRun {
		s.Set(RunCount, Value{Precision: Exact, Int: acc.runCount})
	}
	if acc.dt.Kind() == dtype.KindPrimitive && acc.dt.PType().IsFloat() {
		s.Set(NaNCount, Value{Precision: Exact, Int: acc.nanCount})
	}
	if acc.dt.Kind() == dtype.KindPrimitive && !acc.dt.PType().IsFloat() {
		bw := make([]int64, len(acc.bitWidthFreq))
		copy(bw, acc.bitWidthFreq[:])
		tz := make([]int64, len(acc.trailingZeroFreq))
		copy(tz, acc.trailingZeroFreq[:])
		s.Set(BitWidthFreq, Value{Precision: Exact, IntFreq: bw})
		s.Set(TrailingZeroFreq, Value{Precision: Exact, IntFreq: tz})
	}
	return s
}

// Merge folds another Set (e.g. a sibling chunk's previously-finalized
// stats) into a running file-level Set, widening Min/Max, summing
// NullCount/TrueCount/RunCount/UncompressedSizeInBytes/NaNCount and the
// BitWidthFreq/TrailingZeroFreq histograms, and ANDing IsSorted/
// IsStrictSorted/IsConstant. A merged value is Inexact whenever either
// side is Inexact, and the ANDed flags are always Inexact. Sum is not
// added: the merged Set keeps other's Sum value. This is what the file-level stats writer uses to fold
// per-chunk Stats-layout rows into the footer's per-field StatsSet without
// re-reading the chunks.
func Merge(into *Set, other *Set) {
	for _, k := range other.Kinds() {
		ov, _ := other.Get(k)
		iv, ok := into.Get(k)
		if !ok {
			into.Set(k, ov)
			continue
		}
		into.Set(k, mergeValue(k, iv, ov))
	}
}

func mergeValue(k Kind, a, b Value) Value {
	prec := Exact
	if a.Precision == Inexact || b.Precision == Inexact {
		prec = Inexact
	}
	switch k {
	case Min:
		if c, err := scalar.Compare(b.Scalar, a.Scalar); err == nil && c < 0 {
			return Value{Precision: prec, Scalar: b.Scalar}
		}
		return Value{Precision: prec, Scalar: a.Scalar}
	case Max:
		if c, err := scalar.Compare(b.Scalar, a.Scalar); err == nil && c > 0 {
			return Value{Precision: prec, Scalar: b.Scalar}
		}
		return Value{Precision: prec, Scalar: a.Scalar}
	case NullCount, TrueCount, RunCount, UncompressedSizeInBytes, NaNCount:
		return Value{Precision: prec, Int: a.Int + b.Int}
	case IsSorted, IsStrictSorted, IsConstant:
		return Value{Precision: Inexact, Bool: a.Bool && b.Bool}
	case BitWidthFreq, TrailingZeroFreq:
		out := make([]int64, len(a.IntFreq))
		for i := range out {
			out[i] = a.IntFreq[i] + b.IntFreq[i]
		}
		return Value{Precision: prec, IntFreq: out}
	case Sum:
		// Sum's dtype varies (I64/U64/F64); numeric addition is left to
		// the caller's own accumulator, since Merge only sees finalized
		// scalars here. Callers that need a running file-level sum should
		// feed raw chunks through one shared Accumulator instead.
		return b
	default:
		return b
	}
}

func scalarAt(a *array.Array, i int) (scalar.Scalar, error) {
	dt := a.DType()
	switch dt.Kind() {
	case dtype.KindBool:
		return scalar.NewBool(array.BoolValueAt(a, i), dt.Nullable()), nil
	case dtype.KindPrimitive:
		pt := dt.PType()
		switch {
		case pt.IsFloat():
			return scalar.NewPrimitive(pt, array.Float64ValueAt(a, i), dt.Nullable())
		case pt.IsSigned():
			return scalar.NewPrimitive(pt, array.Int64ValueAt(a, i), dt.Nullable())
		default:
			return scalar.NewPrimitive(pt, array.Uint64ValueAt(a, i), dt.Nullable())
		}
	case dtype.KindUtf8:
		return scalar.NewUtf8(string(array.BytesAt(a, i)), dt.Nullable()), nil
	case dtype.KindBinary:
		return scalar.NewBinary(array.BytesAt(a, i), dt.Nullable()), nil
	default:
		return scalar.Null(dt), nil
	}
}

// hashScalar produces a fast dedup key for a scalar value, used as a
// cheap pre-filter before the authoritative scalar.Compare check in
// IsConstant/RunCount tracking — two different values only rarely collide,
// but a collision is never trusted on its own.
func hashScalar(v scalar.Scalar) uint64 {
	if v.IsNull() {
		return 0
	}
	h := xxhash.New()
	switch v.DType().Kind() {
	case dtype.KindBool:
		if v.AsBool() {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	case dtype.KindPrimitive:
		pt := v.DType().PType()
		var buf [8]byte
		switch {
		case pt.IsFloat():
			putU64(&buf, uintBits(v, v.DType()))
		case pt.IsSigned():
			putU64(&buf, uint64(v.AsInt64()))
		default:
			putU64(&buf, v.AsUint64())
		}
		h.Write(buf[:])
	case dtype.KindUtf8:
		h.Write([]byte(v.AsString()))
	case dtype.KindBinary:
		h.Write(v.AsBytes())
	}
	return h.Sum64()
}

func putU64(buf *[8]byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

// uintBits reinterprets a numeric scalar's bit pattern as a uint64, used
// for both hashing and the bit-width/trailing-zero frequency stats.
func uintBits(v scalar.Scalar, dt dtype.DType) uint64 {
	pt := dt.PType()
	switch {
	case pt.IsFloat():
		return floatBitsAsUint(v.AsFloat64())
	case pt.IsSigned():
		return uint64(v.AsInt64())
	default:
		return v.AsUint64()
	}
}

func floatBitsAsUint(f float64) uint64 {
	return math.Float64bits(f)
}

func estimateUncompressedBytes(a *array.Array) int64 {
	switch a.DType().Kind() {
	case dtype.KindPrimitive:
		return int64(a.Len() * a.DType().PType().ByteWidth())
	case dtype.KindBool:
		return int64((a.Len() + 7) / 8)
	default:
		total := int64(0)
		for _, b := range a.Buffers() {
			total += int64(b.Len())
		}
		for _, c := range a.Children() {
			total += estimateUncompressedBytes(c)
		}
		return total
	}
}
