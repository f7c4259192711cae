package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullAddressBijective(t *testing.T) {
	for array := uint64(0); array < 3; array++ {
		for col := uint8(0); col < 1<<ColWidth; col += 7 {
			for row := uint8(0); row < 1<<RowWidth; row++ {
				ta := NewTileAddress(array, col, row)
				off := uint32(0x2A5A)
				full := ta.FullAddress(off)

				gotOff := uint32(full & ((1 << TileOffsetWidth) - 1))
				gotRow := uint8((full >> rowShift) & ((1 << RowWidth) - 1))
				gotCol := uint8((full >> colShift) & ((1 << ColWidth) - 1))
				gotArray := full >> arrayShift

				assert.Equal(t, off, gotOff)
				assert.Equal(t, row, gotRow)
				assert.Equal(t, col, gotCol)
				assert.Equal(t, array, gotArray)
			}
		}
	}
}

func TestIsShim(t *testing.T) {
	require.True(t, NewTileAddress(0, 3, 0).IsShim())
	require.False(t, NewTileAddress(0, 3, 1).IsShim())
}

func TestKeyIgnoresArray(t *testing.T) {
	a1 := NewTileAddress(0, 4, 5)
	a2 := NewTileAddress(7, 4, 5)
	assert.Equal(t, a1.Key(), a2.Key())
}

func TestNewTileAddressPanicsOnOutOfRange(t *testing.T) {
	assert.Panics(t, func() { NewTileAddress(0, 1<<ColWidth, 0) })
	assert.Panics(t, func() { NewTileAddress(0, 0, 1<<RowWidth) })
}

func TestAddressFull(t *testing.T) {
	a := Address{Tile: NewTileAddress(2, 1, 1), Offset: 0x20000}
	assert.Equal(t, a.Tile.FullAddress(0x20000), a.Full())
}

func TestTileDMABDAddrLastSlotAndOutOfRange(t *testing.T) {
	assert.Equal(t, uint32(0x1D1E0), TileDMABDAddr(15))
	assert.Panics(t, func() { TileDMABDAddr(16) })
}
