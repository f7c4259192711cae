// Package tilecfg implements the tile configurator (spec §4.4): it
// resets each tile's register ranges and, for compute tiles carrying a
// core, invokes the executable loader.
package tilecfg

import (
	"fmt"

	"github.com/aie-tools/airbingen/internal/addr"
	"github.com/aie-tools/airbingen/internal/aierr"
	"github.com/aie-tools/airbingen/internal/elfload"
	"github.com/aie-tools/airbingen/internal/ir"
	"github.com/aie-tools/airbingen/internal/wstore"
)

// Logger receives non-fatal diagnostics (spec §7's "I/O failure
// (non-fatal for one tile)" class).
type Logger interface {
	Diagnosef(format string, args ...any)
}

// Configure resets tile t's register ranges and, for a compute tile with
// a core, loads its executable. array is the generator's configured
// array_offset, folded into every address this tile writes. log may be
// nil, in which case diagnostics are discarded.
func Configure(store *wstore.Store, t ir.Tile, array uint64, log Logger) {
	if t.Col == 0 {
		aierr.Raise("tile(%d,%d): column 0 may not be written", t.Col, t.Row)
	}
	ta := addr.NewTileAddress(array, t.Col, t.Row)

	if t.IsShimTile() {
		configureShim(store, ta, t)
		return
	}
	configureCompute(store, ta, t, log)
}

func configureShim(store *wstore.Store, ta addr.TileAddress, t ir.Tile) {
	if t.IsShimNOCTile() {
		clearRegion(store, ta, addr.ShimDMABDBase, addr.ShimDMABDStride*addr.ShimDMABDCount)
	}
	clearStreamSwitch(store, ta, addr.ShimSSMasterCount, addr.ShimSSSlaveCount, addr.ShimSlotCount)
}

func configureCompute(store *wstore.Store, ta addr.TileAddress, t ir.Tile, log Logger) {
	clearRegion(store, ta, addr.ProgMemOffset, addr.ProgMemSize)
	clearRegion(store, ta, addr.DataMemOffset, addr.DataMemSize)
	clearRegion(store, ta, addr.TileDMABDBase, addr.TileDMABDStride*addr.TileDMABDCount)
	clearRegion(store, ta, addr.DMAS2MMBase, addr.DMAChanStride*addr.DMAChanCount)
	clearRegion(store, ta, addr.DMAMM2SBase, addr.DMAChanStride*addr.DMAChanCount)
	clearStreamSwitch(store, ta, addr.MESSMasterCount, addr.MESSSlaveCount, addr.MESlotCount)

	core, ok := t.HasCore()
	if !ok {
		return
	}

	filename := core.ELFFile
	if !core.HasELF {
		filename = fmt.Sprintf("core_%d_%d.elf", t.Col, t.Row)
	}

	if err := elfload.LoadCoreExecutable(store, ta, filename); err != nil {
		if log != nil {
			log.Diagnosef("tilecfg: tile(%d,%d): %v", t.Col, t.Row, err)
		}
	}
}

func clearRegion(store *wstore.Store, ta addr.TileAddress, base uint32, length uint32) {
	start := addr.Address{Tile: ta, Offset: base}.Full()
	store.ClearRange(start, uint64(length))
}

// clearStreamSwitch clears the master, slave, and packet-slot register
// banks sized by the tile kind (spec §4.1's block-size table).
func clearStreamSwitch(store *wstore.Store, ta addr.TileAddress, masterBytes, slaveBytes, slotCount uint32) {
	clearRegion(store, ta, addr.SSMasterBase, masterBytes)
	clearRegion(store, ta, addr.SSSlaveBase, slaveBytes)
	clearRegion(store, ta, addr.SSSlotBase, addr.SSSlotStride*slotCount)
}
