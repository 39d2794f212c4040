package segment

import (
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/vortex-db/vortex/buffer"
	verrors "github.com/vortex-db/vortex/internal/errors"
)

// Codec identifies the compression, if any, a Writer applied to a
// segment's bytes before writing them. It is opt-in per Writer (§6.4):
// a file either compresses every payload segment it writes or none of
// them, recorded per segment in Descriptor.Compressed so a reader never
// has to guess.
type Codec uint8

const (
	// CodecNone writes segment bytes as-is.
	CodecNone Codec = iota
	// CodecZstd compresses each segment independently with zstd,
	// falling back to the raw bytes when compression does not shrink
	// them (small or already-dense buffers, e.g. validity bitmaps).
	CodecZstd
)

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdInit    sync.Once
)

// zstdCodec lazily constructs the package-wide encoder/decoder pair.
// Both are safe for concurrent use across goroutines (klauspost/compress
// documents EncodeAll/DecodeAll as reentrant), so one pair serves every
// Writer and Source in the process.
func zstdCodec() (*zstd.Encoder, *zstd.Decoder) {
	zstdInit.Do(func() {
		zstdEncoder, _ = zstd.NewWriter(nil)
		zstdDecoder, _ = zstd.NewReader(nil)
	})
	return zstdEncoder, zstdDecoder
}

// compressSegment applies codec to raw, returning the bytes to write and
// whether compression was actually used. It declines to compress when
// the result would not be smaller, so a segment full of incompressible
// data (or too small to amortize the zstd frame header) is stored as-is.
func compressSegment(codec Codec, raw []byte) (out []byte, compressed bool) {
	if codec != CodecZstd || len(raw) == 0 {
		return raw, false
	}
	enc, _ := zstdCodec()
	out = enc.EncodeAll(raw, nil)
	if len(out) >= len(raw) {
		return raw, false
	}
	return out, true
}

// decompressSegment reverses compressSegment when d.Compressed is set,
// then wraps the result at d.Alignment() the same way every other
// segment source does for uncompressed payloads.
func decompressSegment(d Descriptor, raw []byte) (*buffer.Buffer, error) {
	if !d.Compressed {
		return buffer.NewAligned(raw, d.Alignment())
	}
	_, dec := zstdCodec()
	plain, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, verrors.Serialization("segment.decompress", err.Error())
	}
	return buffer.NewAligned(plain, d.Alignment())
}
