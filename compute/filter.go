package compute

import (
	"github.com/vortex-db/vortex/array"
	verrors "github.com/vortex-db/vortex/internal/errors"
)

// Filter keeps only the elements of a where mask is true (§4.3 filter). A
// null mask entry is treated as false (row dropped), matching SQL filter
// semantics for three-valued predicates.
func Filter(ctx *array.Context, a *array.Array, mask *array.Array) (*array.Array, error) {
	if mask.Len() != a.Len() {
		return nil, verrors.InvalidArgument("compute.filter", "mask length must equal array length")
	}
	canonMask, err := array.Canonicalize(ctx, mask)
	if err != nil {
		return nil, err
	}
	indices := make([]int, 0, a.Len())
	for i := 0; i < canonMask.Len(); i++ {
		if canonMask.IsValid(i) && array.BoolValueAt(canonMask, i) {
			indices = append(indices, i)
		}
	}
	return array.CanonicalTake(ctx, a, indices)
}
