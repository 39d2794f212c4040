package vfile

import (
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/stats"
)

// DefaultChunkRows is the row-count threshold a resolved Chunked strategy
// buffers to before materializing a chunk, when the caller does not name
// one explicitly (§6.4 "buffer until a chunk size threshold").
const DefaultChunkRows = 8192

type strategyKind uint8

const (
	stratFlat strategyKind = iota
	stratChunked
	stratStruct
	stratStats
	stratVortexDefault
)

// Strategy selects how a Writer lays out pushed arrays of one dtype
// (§6.4): Flat writes each push as its own array; Chunked batches pushes
// by row count; Struct recurses per field; Stats wraps an inner strategy
// with recorded per-chunk statistics; VortexDefault picks Struct for
// struct dtypes and Chunked(Flat) otherwise.
type Strategy struct {
	kind       strategyKind
	chunkRows  int
	sub        *Strategy
	fields     map[string]*Strategy
	statsKinds []stats.Kind
	inner      *Strategy
}

// FlatStrategy writes every pushed array as its own Flat layout node.
func FlatStrategy() Strategy { return Strategy{kind: stratFlat} }

// ChunkedStrategy batches pushed arrays until chunkRows rows have
// accumulated, materializing each batch through sub.
func ChunkedStrategy(sub Strategy, chunkRows int) Strategy {
	if chunkRows <= 0 {
		chunkRows = DefaultChunkRows
	}
	s := sub
	return Strategy{kind: stratChunked, sub: &s, chunkRows: chunkRows}
}

// StructStrategy recurses into a struct dtype's fields, each with its own
// strategy.
func StructStrategy(perField map[string]Strategy) Strategy {
	fields := make(map[string]*Strategy, len(perField))
	for name, s := range perField {
		v := s
		fields[name] = &v
	}
	return Strategy{kind: stratStruct, fields: fields}
}

// StatsStrategy wraps inner (resolved to a chunked shape if it is not
// already one) and records the named statistic kinds per chunk.
func StatsStrategy(inner Strategy, kinds []stats.Kind) Strategy {
	in := inner
	return Strategy{kind: stratStats, inner: &in, statsKinds: append([]stats.Kind(nil), kinds...)}
}

// VortexDefaultStrategy defers the choice to the column's dtype at
// resolution time.
func VortexDefaultStrategy() Strategy { return Strategy{kind: stratVortexDefault} }

// resolve expands VortexDefault (and normalizes Stats' inner strategy)
// against dt, producing a strategy tree with no remaining VortexDefault
// nodes.
func resolve(dt dtype.DType, s Strategy) Strategy {
	switch s.kind {
	case stratVortexDefault:
		if dt.Kind() == dtype.KindStruct {
			fields := make(map[string]*Strategy, len(dt.Fields()))
			for _, f := range dt.Fields() {
				r := resolve(f.Type, VortexDefaultStrategy())
				fields[f.Name] = &r
			}
			return Strategy{kind: stratStruct, fields: fields}
		}
		return ChunkedStrategy(FlatStrategy(), DefaultChunkRows)
	case stratStruct:
		fields := make(map[string]*Strategy, len(s.fields))
		for _, f := range dt.Fields() {
			sub, ok := s.fields[f.Name]
			r := FlatStrategy()
			if ok {
				r = resolve(f.Type, *sub)
			}
			fields[f.Name] = &r
		}
		return Strategy{kind: stratStruct, fields: fields}
	case stratChunked:
		r := resolve(dt, *s.sub)
		return Strategy{kind: stratChunked, sub: &r, chunkRows: s.chunkRows}
	case stratStats:
		inner := resolve(dt, *s.inner)
		if inner.kind != stratChunked {
			inner = ChunkedStrategy(inner, DefaultChunkRows)
		}
		return Strategy{kind: stratStats, inner: &inner, statsKinds: s.statsKinds}
	default:
		return s
	}
}
