package array

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/validity"
)

func TestDecimalRoundTripsNegativeAndPositive(t *testing.T) {
	values := []*big.Int{big.NewInt(-12345), big.NewInt(0), big.NewInt(987654321)}
	a, err := NewDecimal(18, 2, values, validity.AllValid(len(values)))
	require.NoError(t, err)
	for i, want := range values {
		assert.Equal(t, 0, want.Cmp(DecimalValueAt(a, i)))
	}
}

func TestDecimalRejectsPrecisionAboveI128(t *testing.T) {
	_, err := NewDecimal(39, 0, []*big.Int{big.NewInt(1)}, validity.AllValid(1))
	assert.Error(t, err)
}
