package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/internal/common/progress"
	"github.com/vortex-db/vortex/internal/common/resources"
	"github.com/vortex-db/vortex/stats"
	"github.com/vortex-db/vortex/validity"
	"github.com/vortex-db/vortex/vfile"
)

var writeCmd = &cobra.Command{
	Use:   "write <file>",
	Short: "Write a single nullable I64 column file from newline-separated stdin values",
	Long: `write reads one value per line from stdin (an empty line means null),
batches them into chunks of --chunk-rows, and writes them to <file> using
the Stats(Chunked(Flat)) strategy so the result carries per-chunk
statistics a later "vortex scan --filter" can prune against.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogging(cmd)
		chunkRows, _ := cmd.Flags().GetInt("chunk-rows")
		if chunkRows <= 0 {
			chunkRows = vfile.DefaultChunkRows
		}
		statKinds, _ := cmd.Flags().GetStringSlice("stats")
		compress, _ := cmd.Flags().GetBool("compress")
		showProgress, _ := cmd.Flags().GetBool("progress")

		values, valid, err := readInt64Lines(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}

		kinds, err := parseStatKinds(statKinds)
		if err != nil {
			return err
		}

		dt := dtype.Primitive(dtype.I64, true)
		strategy := vfile.StatsStrategy(vfile.ChunkedStrategy(vfile.FlatStrategy(), chunkRows), kinds)

		out, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create %s: %w", args[0], err)
		}
		rm := resources.NewResourceManager()
		rm.RegisterFunc(out.Close)
		defer rm.Close()

		var writerOpts []vfile.Option
		if compress {
			writerOpts = append(writerOpts, vfile.WithCompression())
		}
		w, err := vfile.NewWriter(out, dt, strategy, array.DefaultContext(), writerOpts...)
		if err != nil {
			return fmt.Errorf("new writer: %w", err)
		}

		numChunks := (len(values) + chunkRows - 1) / chunkRows
		tracker := progress.NewSilent(numChunks, "write")
		if showProgress {
			tracker = progress.New(numChunks, "write")
		}

		for start := 0; start < len(values); start += chunkRows {
			end := start + chunkRows
			if end > len(values) {
				end = len(values)
			}
			a, err := buildPrimitiveI64(values[start:end], valid[start:end])
			if err != nil {
				tracker.Error(err)
				return fmt.Errorf("build chunk: %w", err)
			}
			if err := w.Push(a); err != nil {
				tracker.Error(err)
				return fmt.Errorf("push chunk: %w", err)
			}
			tracker.Step(fmt.Sprintf("rows %d-%d", start, end))
		}
		if err := w.Flush(); err != nil {
			tracker.Error(err)
			return fmt.Errorf("flush: %w", err)
		}
		if err := w.Finish(); err != nil {
			tracker.Error(err)
			return fmt.Errorf("finish: %w", err)
		}
		tracker.Finish()

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d row(s) to %s\n", len(values), args[0])
		return nil
	},
}

func buildPrimitiveI64(values []int64, valid []bool) (*array.Array, error) {
	raw := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(raw[i*8:], uint64(v))
	}
	buf, err := buffer.NewAligned(raw, 8)
	if err != nil {
		return nil, err
	}
	return array.NewPrimitive(dtype.I64, len(values), buf, validity.FromBits(valid))
}

func readInt64Lines(r *os.File) (values []int64, valid []bool, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			values = append(values, 0)
			valid = append(valid, false)
			continue
		}
		v, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid int64 %q: %w", line, err)
		}
		values = append(values, v)
		valid = append(valid, true)
	}
	return values, valid, scanner.Err()
}

func parseStatKinds(names []string) ([]stats.Kind, error) {
	if len(names) == 0 {
		return []stats.Kind{stats.Min, stats.Max, stats.NullCount}, nil
	}
	all := map[string]stats.Kind{
		"min": stats.Min, "max": stats.Max, "null_count": stats.NullCount,
		"true_count": stats.TrueCount, "run_count": stats.RunCount,
		"is_sorted": stats.IsSorted, "is_strict_sorted": stats.IsStrictSorted,
		"is_constant": stats.IsConstant, "bit_width_freq": stats.BitWidthFreq,
		"trailing_zero_freq": stats.TrailingZeroFreq,
		"uncompressed_size_in_bytes": stats.UncompressedSizeInBytes,
		"nan_count": stats.NaNCount, "sum": stats.Sum,
	}
	out := make([]stats.Kind, 0, len(names))
	for _, n := range names {
		k, ok := all[n]
		if !ok {
			return nil, fmt.Errorf("unknown stat kind: %s", n)
		}
		out = append(out, k)
	}
	return out, nil
}

func init() {
	writeCmd.Flags().Int("chunk-rows", 1024, "rows per chunk")
	writeCmd.Flags().StringSlice("stats", nil, "stat kinds to record per chunk (default min,max,null_count)")
	writeCmd.Flags().Bool("compress", false, "zstd-compress each segment, skipping segments it doesn't shrink")
	writeCmd.Flags().Bool("progress", false, "log progress after every chunk pushed")
}
