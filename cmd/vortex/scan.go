package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/compute"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/expr"
	"github.com/vortex-db/vortex/internal/common/resources"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/scan"
	"github.com/vortex-db/vortex/vfile"
)

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Stream a file's rows, optionally filtered by a single comparison",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogging(cmd)

		filterStr, _ := cmd.Flags().GetString("filter")
		limit, _ := cmd.Flags().GetInt("limit")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		unordered, _ := cmd.Flags().GetBool("unordered")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		f, err := vfile.OpenFile(args[0], vfile.OpenOptions{})
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer resources.SafeClose(f, "vortex file")

		var filter expr.Expr
		if filterStr != "" {
			filter, err = parseComparison(filterStr, f.DType())
			if err != nil {
				return fmt.Errorf("parse filter %q: %w", filterStr, err)
			}
		}

		streamOpts := scan.StreamOptions{Concurrency: concurrency, Ordered: !unordered}
		run := func(ctx context.Context) error {
			return runScan(ctx, cmd, f, filter, streamOpts, limit)
		}
		if timeout > 0 {
			return resources.WithTimeout(context.Background(), timeout, run)
		}
		return run(context.Background())
	},
}

// runScan streams a file's scan and prints each row, stopping at limit (if
// positive) or when the stream is exhausted.
func runScan(ctx context.Context, cmd *cobra.Command, f *vfile.File, filter expr.Expr, streamOpts scan.StreamOptions, limit int) error {
	st, err := f.Scan(ctx, scan.Options{Filter: filter}, streamOpts)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	defer st.Close()

	arrCtx := array.DefaultContext()
	printed := 0
	chunks := 0
	for {
		a, done, err := st.Next(ctx)
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if done {
			break
		}
		chunks++
		for i := 0; i < a.Len(); i++ {
			if limit > 0 && printed >= limit {
				fmt.Fprintf(cmd.OutOrStdout(), "... (limit %d rows reached)\n", limit)
				return nil
			}
			s, err := compute.ScalarAt(arrCtx, a, i)
			if err != nil {
				return fmt.Errorf("scalar_at: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatRow(s))
			printed++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d row(s) across %d chunk(s)\n", printed, chunks)
	return nil
}

func formatRow(s scalar.Scalar) string {
	if s.DType().Kind() != dtype.KindStruct {
		return formatScalar(s)
	}
	fields := s.DType().Fields()
	values := s.AsList()
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + "=" + formatScalar(values[i])
	}
	return strings.Join(parts, " ")
}

// parseComparison parses a minimal "<field><op><value>" expression, where
// op is one of ==, !=, <=, >=, <, > and value is a column reference's
// literal (numeric, or quoted string). It exists so the CLI can exercise
// scan.Options.Filter without pulling in a full expression parser.
func parseComparison(s string, rootDT dtype.DType) (expr.Expr, error) {
	ops := []struct {
		token string
		op    compute.CompareOp
	}{
		{"==", compute.Eq}, {"!=", compute.Ne},
		{"<=", compute.Le}, {">=", compute.Ge},
		{"<", compute.Lt}, {">", compute.Gt},
	}
	for _, o := range ops {
		idx := strings.Index(s, o.token)
		if idx < 0 {
			continue
		}
		field := strings.TrimSpace(s[:idx])
		rawVal := strings.TrimSpace(s[idx+len(o.token):])
		if field == "" || rawVal == "" {
			continue
		}
		var fieldDT dtype.DType
		if rootDT.Kind() == dtype.KindStruct {
			fd, ok := rootDT.FieldByName(field)
			if !ok {
				return nil, fmt.Errorf("no such field: %s", field)
			}
			fieldDT = fd.Type
		} else {
			fieldDT = rootDT
		}
		lit, err := parseLiteral(rawVal, fieldDT)
		if err != nil {
			return nil, err
		}
		return &expr.Comparison{
			Op:    o.op,
			Left:  &expr.Column{Name: field},
			Right: &expr.Literal{Value: lit},
		}, nil
	}
	return nil, fmt.Errorf("no comparison operator found in %q", s)
}

func parseLiteral(raw string, dt dtype.DType) (scalar.Scalar, error) {
	if strings.HasPrefix(raw, "\"") && strings.HasSuffix(raw, "\"") && len(raw) >= 2 {
		return scalar.NewUtf8(raw[1:len(raw)-1], dt.Nullable()), nil
	}
	switch dt.Kind() {
	case dtype.KindPrimitive:
		if dt.PType().IsFloat() {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return scalar.Scalar{}, err
			}
			return scalar.NewPrimitive(dt.PType(), v, dt.Nullable())
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return scalar.Scalar{}, err
		}
		return scalar.NewPrimitive(dt.PType(), v, dt.Nullable())
	case dtype.KindUtf8:
		return scalar.NewUtf8(raw, dt.Nullable()), nil
	default:
		return scalar.Scalar{}, fmt.Errorf("unsupported literal dtype: %s", dt.String())
	}
}

func init() {
	scanCmd.Flags().String("filter", "", `comparison to apply, e.g. "x>=10"`)
	scanCmd.Flags().Int("limit", 0, "stop after printing this many rows (0 = unlimited)")
	scanCmd.Flags().Int("concurrency", 1, "number of splits to materialize concurrently")
	scanCmd.Flags().Bool("unordered", false, "emit splits in completion order instead of split order")
	scanCmd.Flags().Duration("timeout", 0, "abort the scan if it hasn't finished within this duration (0 = no limit)")
}
