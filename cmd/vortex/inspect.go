package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/internal/common/resources"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/stats"
	"github.com/vortex-db/vortex/vfile"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print a Vortex file's dtype, row count and file-level statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogging(cmd)
		f, err := vfile.OpenFile(args[0], vfile.OpenOptions{})
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer resources.SafeClose(f, "vortex file")

		fmt.Printf("dtype:     %s\n", f.DType().String())
		fmt.Printf("row count: %d\n", f.RowCount())

		sets := f.Stats()
		if len(sets) == 0 {
			fmt.Println("stats:     (none recorded)")
			return nil
		}
		names := make([]string, 0, len(sets))
		for name := range sets {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println("stats:")
		for _, name := range names {
			printFieldStats(name, sets[name])
		}
		return nil
	},
}

func printFieldStats(field string, set *stats.Set) {
	fmt.Printf("  %s:\n", field)
	for _, k := range set.Kinds() {
		v, _ := set.Get(k)
		fmt.Printf("    %-26s %s%s\n", k.String()+":", formatStatValue(k, v), precisionSuffix(v.Precision))
	}
}

func precisionSuffix(p stats.Precision) string {
	if p == stats.Inexact {
		return " (inexact)"
	}
	return ""
}

func formatStatValue(k stats.Kind, v stats.Value) string {
	switch k {
	case stats.Min, stats.Max, stats.Sum:
		return formatScalar(v.Scalar)
	case stats.IsSorted, stats.IsStrictSorted, stats.IsConstant:
		return fmt.Sprintf("%t", v.Bool)
	case stats.BitWidthFreq, stats.TrailingZeroFreq:
		return fmt.Sprintf("%v", v.IntFreq)
	default:
		return fmt.Sprintf("%d", v.Int)
	}
}

// formatScalar renders a scalar for display; it does not attempt to
// round-trip, only to be readable.
func formatScalar(s scalar.Scalar) string {
	if s.IsNull() {
		return "null"
	}
	switch s.DType().Kind() {
	case dtype.KindBool:
		return fmt.Sprintf("%t", s.AsBool())
	case dtype.KindPrimitive:
		pt := s.DType().PType()
		switch {
		case pt.IsFloat():
			return fmt.Sprintf("%g", s.AsFloat64())
		case pt.IsSigned():
			return fmt.Sprintf("%d", s.AsInt64())
		default:
			return fmt.Sprintf("%d", s.AsUint64())
		}
	case dtype.KindUtf8:
		return s.AsString()
	case dtype.KindBinary:
		return fmt.Sprintf("%x", s.AsBytes())
	default:
		return "?"
	}
}
