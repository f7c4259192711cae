// Package addr models the tile address space used by the AIRBIN
// generator: the (array, column, row, offset) tuple that every register
// write ultimately resolves to, and the compile-time bitfield helpers
// used to build 32-bit register values.
package addr

import "fmt"

// Bit widths and shifts fixed by the tile address layout (spec §4.1).
const (
	TileOffsetWidth = 18
	RowWidth        = 5
	ColWidth        = 7

	rowShift   = TileOffsetWidth
	colShift   = rowShift + RowWidth
	arrayShift = colShift + ColWidth
)

// TileAddress identifies one tile in the device grid: an array offset
// (meaningful only to the runtime loader, carried through untouched by
// this generator), a column, and a row. Row 0 is always a shim tile.
type TileAddress struct {
	Array  uint64
	Column uint8
	Row    uint8
}

// NewTileAddress builds a TileAddress, asserting the column and row fit
// their bitfields. Violating this is a programmer error: every tile
// emitted by the front-end dialect is expected to already respect these
// bounds.
func NewTileAddress(array uint64, column, row uint8) TileAddress {
	if column >= 1<<ColWidth {
		panic(fmt.Sprintf("addr: column %d exceeds %d-bit field", column, ColWidth))
	}
	if row >= 1<<RowWidth {
		panic(fmt.Sprintf("addr: row %d exceeds %d-bit field", row, RowWidth))
	}
	return TileAddress{Array: array, Column: column, Row: row}
}

// FullAddress computes the 64-bit device address for a register offset
// within this tile. offset must fit in TileOffsetWidth bits; neither
// this method nor the write store checks that, so the caller is
// responsible for it.
func (t TileAddress) FullAddress(offset uint32) uint64 {
	return (t.Array << arrayShift) |
		(uint64(t.Column) << colShift) |
		(uint64(t.Row) << rowShift) |
		uint64(offset)
}

// IsShim reports whether this tile sits in row 0, the shim row.
func (t TileAddress) IsShim() bool {
	return t.Row == 0
}

// Key returns the 16-bit (column, row) identity used wherever the array
// offset is irrelevant — e.g. as a map key grouping per-tile state
// during one translation.
func (t TileAddress) Key() uint16 {
	return (uint16(t.Column) << RowWidth) | uint16(t.Row)
}

func (t TileAddress) String() string {
	return fmt.Sprintf("tile(array=%d,col=%d,row=%d)", t.Array, t.Column, t.Row)
}

// Address is a fully resolved register address: a tile plus an offset
// within that tile's register space.
type Address struct {
	Tile   TileAddress
	Offset uint32
}

// Full converts the Address to its 64-bit device address.
func (a Address) Full() uint64 {
	return a.Tile.FullAddress(a.Offset)
}

func (a Address) String() string {
	return fmt.Sprintf("%s+0x%x", a.Tile, a.Offset)
}
