package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/validity"
)

func TestBoolPackAndReadRoundTrips(t *testing.T) {
	bits := []bool{true, false, false, true, true, false, true, false, true}
	a, err := NewBool(len(bits), PackBools(bits), validity.AllValid(len(bits)))
	require.NoError(t, err)
	for i, want := range bits {
		assert.Equal(t, want, BoolValueAt(a, i))
	}
}

func TestBoolFromPartsRejectsShortBitmap(t *testing.T) {
	_, err := NewBool(100, PackBools([]bool{true}), validity.AllValid(100))
	assert.Error(t, err)
}
