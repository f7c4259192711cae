package addr

// Register region bases and strides (spec §4.1). All offsets are
// per-tile and fit within the 18-bit tile offset field.
const (
	// Tile (compute) DMA block-descriptor bank.
	TileDMABDBase   = 0x1D000
	TileDMABDStride = 0x20
	TileDMABDCount  = 16

	// DMA S2MM / MM2S control+queue register pairs.
	DMAS2MMBase   = 0x1DE00
	DMAMM2SBase   = 0x1DE10
	DMAChanStride = 0x08
	DMAChanCount  = 2

	// Shim DMA block-descriptor bank (shim-NOC tiles only).
	ShimDMABDBase   = 0x1D000
	ShimDMABDStride = 0x14
	ShimDMABDCount  = 16

	// Shim mux/demux registers.
	ShimMuxBase   = 0x1F000
	ShimDemuxAddr = ShimMuxBase + 0x4

	// Stream switch register banks; block sizes differ between compute
	// (ME) and shim tiles.
	SSMasterBase = 0x3F000
	SSSlaveBase  = 0x3F100
	SSSlotBase   = 0x3F200
	SSSlotStride = 0x10

	MESSMasterCount = 0x64
	MESSSlaveCount  = 0x6C
	MESlotCount     = 26

	ShimSSMasterCount = 0x5C
	ShimSSSlaveCount  = 0x60
	ShimSlotCount     = 24

	// Program and data memory.
	ProgMemOffset = 0x20000
	ProgMemSize   = 0x4000
	DataMemOffset = 0x00000
	DataMemSize   = 0x8000
)

// TileDMABDAddr returns the base register address of BD slot n
// (0 <= n < TileDMABDCount) within a compute tile's DMA BD bank.
func TileDMABDAddr(n int) uint32 {
	if n < 0 || n >= TileDMABDCount {
		panic("addr: BD slot out of range")
	}
	return TileDMABDBase + uint32(n)*TileDMABDStride
}

// ShimDMABDAddr returns the base register address of BD slot n within a
// shim-NOC tile's DMA BD bank.
func ShimDMABDAddr(n int) uint32 {
	if n < 0 || n >= ShimDMABDCount {
		panic("addr: BD slot out of range")
	}
	return ShimDMABDBase + uint32(n)*ShimDMABDStride
}
