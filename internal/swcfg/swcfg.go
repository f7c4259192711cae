// Package swcfg implements the switchbox configurator (spec §4.6): it
// resolves logical (bundle, index) pairs to physical stream-switch
// ports and programs connect, master-set, and packet-rules ops, plus
// the shim mux/demux accumulating masks.
package swcfg

import (
	"github.com/aie-tools/airbingen/internal/addr"
	"github.com/aie-tools/airbingen/internal/aierr"
	"github.com/aie-tools/airbingen/internal/ir"
	"github.com/aie-tools/airbingen/internal/wstore"
)

var (
	fieldEnable       = addr.Bit(31)
	fieldPacketEnable = addr.Bit(30)
	fieldDropHeader   = addr.Bit(7)
	fieldSlaveConfig  = addr.NewField(6, 0)

	fieldSlotID     = addr.NewField(28, 24)
	fieldSlotMask   = addr.NewField(20, 16)
	fieldSlotEnable = addr.Bit(8)
	fieldSlotMsel   = addr.NewField(5, 4)
	fieldSlotArb    = addr.NewField(2, 0)
)

// Configure programs every switchbox and shim mux dev exposes. array is
// the generator's configured array_offset, folded into every address
// this pass writes.
func Configure(store *wstore.Store, dev ir.Device, array uint64) {
	for _, sb := range dev.Switchboxes() {
		configureSwitchbox(store, sb, array)
	}
	for _, sm := range dev.ShimMuxes() {
		configureShimMux(store, sm, array)
	}
}

func configureSwitchbox(store *wstore.Store, sb *ir.Switchbox, array uint64) {
	if sb.Col == 0 {
		aierr.Raise("switchbox(%d,%d): column 0 may not be written", sb.Col, sb.Row)
	}
	ta := addr.NewTileAddress(array, sb.Col, sb.Row)
	shim := ta.IsShim()

	for _, c := range sb.Connects {
		masterPort := resolvePort(c.DestBundle, c.DestIndex, shim, true)
		slavePort := resolvePort(c.SourceBundle, c.SourceIndex, shim, false)

		masterVal := fieldEnable.Encode(1) | fieldSlaveConfig.Encode(slavePort) | fieldDropHeader.Encode((slavePort>>7)&1)
		store.Write32(addr.Address{Tile: ta, Offset: addr.SSMasterBase + masterPort*4}.Full(), masterVal)

		slaveVal := fieldEnable.Encode(1)
		store.Write32(addr.Address{Tile: ta, Offset: addr.SSSlaveBase + slavePort*4}.Full(), slaveVal)
	}

	for _, ms := range sb.MasterSets {
		configureMasterSet(store, ta, shim, ms)
	}

	for _, pr := range sb.PacketRules {
		configurePacketRules(store, ta, shim, pr)
	}
}

func configureMasterSet(store *wstore.Store, ta addr.TileAddress, shim bool, ms ir.MasterSetOp) {
	masterPort := resolvePort(ms.DestBundle, ms.DestIndex, shim, true)

	var mask uint32
	var arbiter uint8
	for _, a := range ms.Amsels {
		mask |= 1 << a.Msel
		arbiter = a.Arbiter
	}
	dropHeader := ms.DestBundle == ir.BundleDMA

	// streamMasterConfig already folds the mask and arbiter together;
	// ORing it into the enable/packet-enable/drop-header bits preserves
	// the source's double-encoding rather than resolving it.
	config := (mask << 3) | uint32(arbiter)

	val := fieldEnable.Encode(1) | fieldPacketEnable.Encode(1)
	if dropHeader {
		val |= fieldDropHeader.Encode(1)
	}
	val |= config

	masterAddr := addr.Address{Tile: ta, Offset: addr.SSMasterBase + masterPort*4}.Full()
	store.Write32(masterAddr, store.Read32(masterAddr)|val)
}

func configurePacketRules(store *wstore.Store, ta addr.TileAddress, shim bool, pr ir.PacketRulesOp) {
	slavePort := resolvePort(pr.SourceBundle, pr.SourceIndex, shim, false)

	for k, rule := range pr.Rules {
		slotVal := fieldSlotID.Encode(uint32(rule.SlotID)) |
			fieldSlotMask.Encode(uint32(rule.SlotMask)) |
			fieldSlotEnable.Encode(1) |
			fieldSlotMsel.Encode(uint32(rule.Msel)) |
			fieldSlotArb.Encode(uint32(rule.Arbiter))
		store.Write32(addr.Address{Tile: ta, Offset: addr.SSSlotBase + uint32(4*slavePort) + uint32(k)}.Full(), slotVal)
	}

	slaveVal := fieldEnable.Encode(1) | fieldPacketEnable.Encode(0)
	slaveAddr := addr.Address{Tile: ta, Offset: addr.SSSlaveBase + slavePort*4}.Full()
	store.Write32(slaveAddr, store.Read32(slaveAddr)|slaveVal)
}

// shimMuxDemuxShift maps a North-facing bundle index to its shift amount
// in the demux (source-is-North) register, and shimMuxMuxShift does the
// same for the mux (dest-is-North) register; only these four indices are
// valid (spec §4.6, §9 design note (c)).
var shimMuxDemuxShift = map[uint8]uint8{2: 4, 3: 6, 6: 8, 7: 10}
var shimMuxMuxShift = map[uint8]uint8{2: 8, 3: 10, 6: 12, 7: 14}

func shimMuxBundleCode(b ir.WireBundle) uint32 {
	switch b {
	case ir.BundlePLIO:
		return 0
	case ir.BundleDMA:
		return 1
	case ir.BundleNOC:
		return 2
	default:
		aierr.Raise("shim mux: unsupported bundle %v", b)
		return 0
	}
}

func configureShimMux(store *wstore.Store, sm *ir.ShimMux, array uint64) {
	if sm.Col == 0 {
		aierr.Raise("shim mux(%d,%d): column 0 may not be written", sm.Col, sm.Row)
	}
	ta := addr.NewTileAddress(array, sm.Col, sm.Row)

	for _, c := range sm.Connects {
		switch {
		case c.SourceBundle == ir.BundleNorth:
			shift, ok := shimMuxDemuxShift[c.SourceIndex]
			if !ok {
				aierr.Raise("shim mux: unsupported demux index %d", c.SourceIndex)
			}
			code := shimMuxBundleCode(c.DestBundle)
			a := addr.Address{Tile: ta, Offset: addr.ShimDemuxAddr}.Full()
			store.Write32(a, store.Read32(a)|(code<<shift))

		case c.DestBundle == ir.BundleNorth:
			shift, ok := shimMuxMuxShift[c.DestIndex]
			if !ok {
				aierr.Raise("shim mux: unsupported mux index %d", c.DestIndex)
			}
			code := shimMuxBundleCode(c.SourceBundle)
			a := addr.Address{Tile: ta, Offset: addr.ShimMuxBase}.Full()
			store.Write32(a, store.Read32(a)|(code<<shift))
		}
	}
}
