package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
)

func TestRangeScannerPollResolvesOnceSegmentsReady(t *testing.T) {
	root, src, _ := twoFieldStruct(t)
	ctx := array.DefaultContext()
	reader, err := root.Reader(src, ctx)
	require.NoError(t, err)

	rs := NewRangeScanner(context.Background(), src, reader, ctx, nil, 0, 3)

	res, err := rs.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Done())
	assert.Equal(t, 3, res.Array.Len())
}

func TestRangeScannerWaitBlocksUntilResolved(t *testing.T) {
	root, src, _ := twoFieldStruct(t)
	ctx := array.DefaultContext()
	reader, err := root.Reader(src, ctx)
	require.NoError(t, err)

	rs := NewRangeScanner(context.Background(), src, reader, ctx, nil, 3, 5)
	a, err := rs.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())
}
