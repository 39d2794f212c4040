package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/stats"
)

func TestReadInt64Lines(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "in")
	require.NoError(t, err)
	_, err = f.WriteString("1\n\n3\n")
	require.NoError(t, err)
	_, err = f.Seek(0, 0)
	require.NoError(t, err)

	values, valid, err := readInt64Lines(f)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 0, 3}, values)
	assert.Equal(t, []bool{true, false, true}, valid)
}

func TestParseStatKindsDefault(t *testing.T) {
	kinds, err := parseStatKinds(nil)
	require.NoError(t, err)
	assert.Equal(t, []stats.Kind{stats.Min, stats.Max, stats.NullCount}, kinds)
}

func TestParseStatKindsUnknown(t *testing.T) {
	_, err := parseStatKinds([]string{"bogus"})
	assert.Error(t, err)
}

func TestBuildPrimitiveI64(t *testing.T) {
	a, err := buildPrimitiveI64([]int64{1, 2, 3}, []bool{true, true, false})
	require.NoError(t, err)
	assert.Equal(t, 3, a.Len())
	assert.False(t, a.IsValid(2))
}
