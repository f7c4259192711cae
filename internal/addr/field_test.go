package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldEncodeRoundTrip(t *testing.T) {
	f := NewField(12, 4)
	for v := uint32(0); v < 1<<(12-4+1); v++ {
		encoded := f.Encode(v)
		assert.Equal(t, v, (encoded>>f.Lo)&f.unshiftedMask())
		assert.Zero(t, encoded & ^f.Mask())
	}
}

func TestBitFieldIsSingleBit(t *testing.T) {
	f := Bit(31)
	assert.Equal(t, uint32(1), f.unshiftedMask())
	assert.Equal(t, uint32(1<<31), f.Mask())
	assert.Equal(t, uint32(1<<31), f.Encode(1))
	assert.Equal(t, uint32(0), f.Encode(0))
}

func TestFieldsCombineWithOr(t *testing.T) {
	lenField := NewField(12, 0)
	validBit := Bit(31)
	abModeBit := Bit(30)

	reg := lenField.Encode(63) | validBit.Encode(1) | abModeBit.Encode(1)
	assert.Equal(t, uint32(63), reg&lenField.Mask())
	assert.NotZero(t, reg&validBit.Mask())
	assert.NotZero(t, reg&abModeBit.Mask())
}

func TestNewFieldPanicsOnBadBounds(t *testing.T) {
	assert.Panics(t, func() { NewField(3, 5) })
	assert.Panics(t, func() { NewField(32, 0) })
}
