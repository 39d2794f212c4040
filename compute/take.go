package compute

import "github.com/vortex-db/vortex/array"

// Take gathers a's elements at indices (§4.3 take). array.CanonicalTake
// already special-cases Constant (O(1)) and recursively expands every
// other encoding through canonicalization, so dispatch here is a direct
// delegation; a dedicated Chunked fast path would only save the cost of
// Chunked's own Canonicalize (which is itself cheap — chunk-wise, not a
// full materialization), so it is not special-cased separately.
func Take(ctx *array.Context, a *array.Array, indices []int) (*array.Array, error) {
	return array.CanonicalTake(ctx, a, indices)
}
