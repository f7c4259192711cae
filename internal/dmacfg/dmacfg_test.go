package dmacfg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aie-tools/airbingen/internal/addr"
	"github.com/aie-tools/airbingen/internal/ir"
	"github.com/aie-tools/airbingen/internal/wstore"
)

type staticNetlist struct {
	bases map[ir.BufferID]uint64
}

func (n *staticNetlist) BufferBaseAddress(buf ir.BufferID) uint64 { return n.bases[buf] }

type fakeDevice struct {
	memoryOps []*ir.MemoryOp
	netlist   ir.NetlistAnalysis
}

func (d *fakeDevice) Tiles() []ir.Tile                 { return nil }
func (d *fakeDevice) MemoryOps() []*ir.MemoryOp        { return d.memoryOps }
func (d *fakeDevice) Switchboxes() []*ir.Switchbox     { return nil }
func (d *fakeDevice) ShimMuxes() []*ir.ShimMux         { return nil }
func (d *fakeDevice) Netlist() ir.NetlistAnalysis      { return d.netlist }

func TestConfigureSingleBDWithLockAndPacket(t *testing.T) {
	block := &ir.Block{ID: 0, Ops: []ir.Op{
		{Kind: ir.OpKindBD, BD: &ir.BDOp{IsA: true, Buffer: "buf", Offset: 0, Length: 64, ElemBits: 32}},
		{Kind: ir.OpKindLockUse, Lock: &ir.LockUseOp{Acquire: true, Value: 1}},
		{Kind: ir.OpKindPacket, Packet: &ir.PacketOp{PacketType: 3, PacketID: 5}},
	}}
	mo := &ir.MemoryOp{Col: 1, Row: 1, Blocks: []*ir.Block{block}}
	dev := &fakeDevice{
		memoryOps: []*ir.MemoryOp{mo},
		netlist:   &staticNetlist{bases: map[ir.BufferID]uint64{"buf": 0x400}},
	}

	store := wstore.New()
	Configure(store, dev, 0, nil)

	ta := addr.NewTileAddress(0, 1, 1)
	base := addr.TileDMABDAddr(0)

	addrA := store.Read32(addr.Address{Tile: ta, Offset: base + regAddrA}.Full())
	want := fieldBaseWord.Encode(0x100) | fieldAcqEnable.Encode(1) | fieldAcqValEn.Encode(1) | fieldAcqVal.Encode(1)
	require.Equal(t, want, addrA)

	control := store.Read32(addr.Address{Tile: ta, Offset: base + regControl}.Full())
	wantControl := fieldLength.Encode(63) | fieldEnablePkt.Encode(1) | fieldValid.Encode(1)
	require.Equal(t, wantControl, control)

	packet := store.Read32(addr.Address{Tile: ta, Offset: base + regPacket}.Full())
	wantPacket := fieldPacketID.Encode(5) | fieldPacketType.Encode(3)
	require.Equal(t, wantPacket, packet)
}

func TestConfigureChainedBlocksSetNextBD(t *testing.T) {
	blockB := &ir.Block{ID: 1, Ops: []ir.Op{
		{Kind: ir.OpKindBD, BD: &ir.BDOp{IsA: true, Buffer: "buf", Length: 16, ElemBits: 32}},
	}}
	blockA := &ir.Block{ID: 0, Successor: blockB, Ops: []ir.Op{
		{Kind: ir.OpKindBD, BD: &ir.BDOp{IsA: true, Buffer: "buf", Length: 16, ElemBits: 32}},
	}}
	mo := &ir.MemoryOp{Col: 2, Row: 2, Blocks: []*ir.Block{blockA, blockB}}
	dev := &fakeDevice{
		memoryOps: []*ir.MemoryOp{mo},
		netlist:   &staticNetlist{bases: map[ir.BufferID]uint64{"buf": 0}},
	}

	store := wstore.New()
	Configure(store, dev, 0, nil)

	ta := addr.NewTileAddress(0, 2, 2)
	control := store.Read32(addr.Address{Tile: ta, Offset: addr.TileDMABDAddr(0) + regControl}.Full())
	require.NotZero(t, control&fieldEnableNext.Mask())
	require.Equal(t, uint32(1), (control&fieldNextBD.Mask())>>fieldNextBD.Lo)
}

func TestConfigureChannelStartProgramsQueueAndEnable(t *testing.T) {
	block := &ir.Block{ID: 0, Ops: []ir.Op{
		{Kind: ir.OpKindBD, BD: &ir.BDOp{IsA: true, Buffer: "buf", Length: 16, ElemBits: 32}},
	}}
	start := &ir.ChannelStartOp{Direction: ir.DirS2MM, Channel: 1, Dest: block}
	block.Ops = append(block.Ops, ir.Op{Kind: ir.OpKindChannelStart, ChanStart: start})

	mo := &ir.MemoryOp{Col: 3, Row: 3, Blocks: []*ir.Block{block}}
	dev := &fakeDevice{
		memoryOps: []*ir.MemoryOp{mo},
		netlist:   &staticNetlist{bases: map[ir.BufferID]uint64{"buf": 0}},
	}

	store := wstore.New()
	Configure(store, dev, 0, nil)

	ta := addr.NewTileAddress(0, 3, 3)
	chanBase := addr.DMAS2MMBase + 1*addr.DMAChanStride
	ctrl := store.Read32(addr.Address{Tile: ta, Offset: chanBase + 0x00}.Full())
	queue := store.Read32(addr.Address{Tile: ta, Offset: chanBase + 0x04}.Full())
	require.Equal(t, uint32(1), ctrl)
	require.Equal(t, uint32(0), queue)
}

func TestConfigurePanicsOnConflictingLocks(t *testing.T) {
	block := &ir.Block{ID: 0, Ops: []ir.Op{
		{Kind: ir.OpKindBD, BD: &ir.BDOp{IsA: true, Buffer: "buf", Length: 16, ElemBits: 32}},
		{Kind: ir.OpKindLockUse, Lock: &ir.LockUseOp{LockID: 1, Acquire: true, Value: 1}},
		{Kind: ir.OpKindLockUse, Lock: &ir.LockUseOp{LockID: 2, Acquire: false, Value: 0}},
	}}
	mo := &ir.MemoryOp{Col: 4, Row: 4, Blocks: []*ir.Block{block}}
	dev := &fakeDevice{
		memoryOps: []*ir.MemoryOp{mo},
		netlist:   &staticNetlist{bases: map[ir.BufferID]uint64{"buf": 0}},
	}

	store := wstore.New()
	require.Panics(t, func() { Configure(store, dev, 0, nil) })
}

func TestConfigureClearsChannelRegisters(t *testing.T) {
	mo := &ir.MemoryOp{Col: 5, Row: 5}
	dev := &fakeDevice{memoryOps: []*ir.MemoryOp{mo}, netlist: &staticNetlist{bases: map[ir.BufferID]uint64{}}}

	store := wstore.New()
	Configure(store, dev, 0, nil)

	ta := addr.NewTileAddress(0, 5, 5)
	require.Equal(t, uint32(0), store.Read32(addr.Address{Tile: ta, Offset: addr.DMAS2MMBase}.Full()))
	require.Equal(t, uint32(0), store.Read32(addr.Address{Tile: ta, Offset: addr.DMAMM2SBase}.Full()))
}

func TestConfigurePanicsOnColumnZero(t *testing.T) {
	mo := &ir.MemoryOp{Col: 0, Row: 5}
	dev := &fakeDevice{memoryOps: []*ir.MemoryOp{mo}, netlist: &staticNetlist{bases: map[ir.BufferID]uint64{}}}

	store := wstore.New()
	require.Panics(t, func() { Configure(store, dev, 0, nil) })
}
