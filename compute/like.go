package compute

import (
	"strings"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/validity"
)

// LikeOptions configures SQL-LIKE matching (§4.3 like): `%` matches any
// run of bytes, `_` matches exactly one byte (a multi-byte UTF-8 character
// is not matched by a single `_`), with optional negation and
// case-insensitive comparison.
type LikeOptions struct {
	Negated         bool
	CaseInsensitive bool
}

// Like evaluates a SQL-LIKE pattern against every element of a Utf8 array
// (§4.3 like), producing a nullable Bool array: null input produces a null
// result.
func Like(ctx *array.Context, a *array.Array, pattern string, opts LikeOptions) (*array.Array, error) {
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return nil, err
	}
	if canon.DType().Kind() != dtype.KindUtf8 {
		return nil, verrors.MismatchedTypes("compute.like", "utf8", canon.DType().String())
	}
	matcher := compileLikePattern(pattern, opts.CaseInsensitive)
	bitsOut := make([]bool, canon.Len())
	validOut := make([]bool, canon.Len())
	for i := 0; i < canon.Len(); i++ {
		if !canon.IsValid(i) {
			continue
		}
		validOut[i] = true
		s := string(array.BytesAt(canon, i))
		if opts.CaseInsensitive {
			s = strings.ToLower(s)
		}
		ok := matcher(s)
		if opts.Negated {
			ok = !ok
		}
		bitsOut[i] = ok
	}
	return array.NewBool(canon.Len(), array.PackBools(bitsOut), validity.FromBits(validOut))
}

// compileLikePattern turns a SQL-LIKE pattern into a matcher function over
// already-case-folded input, by splitting on `%` into literal segments
// joined by "any run of characters", each segment itself matched
// character-by-character honoring `_` as a single-character wildcard.
func compileLikePattern(pattern string, caseInsensitive bool) func(string) bool {
	if caseInsensitive {
		pattern = strings.ToLower(pattern)
	}
	segments := strings.Split(pattern, "%")
	anchoredStart := !strings.HasPrefix(pattern, "%")
	anchoredEnd := !strings.HasSuffix(pattern, "%")
	return func(s string) bool {
		pos := 0
		for i, seg := range segments {
			if seg == "" {
				continue
			}
			if i == 0 && anchoredStart {
				if !matchAt(s, pos, seg) {
					return false
				}
				pos += len(seg)
				continue
			}
			if i == len(segments)-1 && anchoredEnd {
				if pos > len(s)-len(seg) {
					return false
				}
				return matchAt(s, len(s)-len(seg), seg)
			}
			idx := findSegment(s, pos, seg)
			if idx < 0 {
				return false
			}
			pos = idx + len(seg)
		}
		if anchoredEnd && len(segments) == 1 {
			return pos == len(s)
		}
		return true
	}
}

// matchAt reports whether seg matches s starting at pos, treating '_' in
// seg as a single-byte wildcard.
func matchAt(s string, pos int, seg string) bool {
	if pos < 0 || pos+len(seg) > len(s) {
		return false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] == '_' {
			continue
		}
		if seg[i] != s[pos+i] {
			return false
		}
	}
	return true
}

// findSegment finds the first position >= from where seg matches,
// honoring '_' wildcards within seg.
func findSegment(s string, from int, seg string) int {
	for start := from; start+len(seg) <= len(s); start++ {
		if matchAt(s, start, seg) {
			return start
		}
	}
	return -1
}
