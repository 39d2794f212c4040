package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutOfBounds(t *testing.T) {
	err := OutOfBounds("scalar_at", 5, 0, 5)
	require.Error(t, err)
	assert.Equal(t, ErrorTypeOutOfBounds, err.Type)
	assert.Contains(t, err.Error(), "5")
	assert.True(t, Is(err, ErrorTypeOutOfBounds))
}

func TestMismatchedTypes(t *testing.T) {
	err := MismatchedTypes("cast", "i32", "utf8")
	assert.Equal(t, "i32", err.Context["expected"])
	assert.Equal(t, "utf8", err.Context["actual"])
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(cause, ErrorTypeIO, "READ_FAILED", "segment read failed")
	require.Error(t, wrapped)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestIs(t *testing.T) {
	a := New(ErrorTypeInvalidArgument, "BAD", "bad")
	b := New(ErrorTypeInvalidArgument, "BAD", "other message")
	c := New(ErrorTypeOverflow, "BAD", "bad")
	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestMultiError(t *testing.T) {
	m := NewMultiError()
	assert.False(t, m.HasErrors())
	assert.Nil(t, m.ToError())

	m.Add(nil)
	assert.False(t, m.HasErrors())

	m.Add(errors.New("split 0 failed"))
	m.Add(errors.New("split 2 failed"))
	require.True(t, m.HasErrors())
	assert.Contains(t, m.ToError().Error(), "2 errors")
}
