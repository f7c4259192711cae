package tilecfg

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aie-tools/airbingen/internal/addr"
	"github.com/aie-tools/airbingen/internal/ir"
	"github.com/aie-tools/airbingen/internal/wstore"
)

type fakeLog struct {
	messages []string
}

func (l *fakeLog) Diagnosef(format string, args ...any) {
	l.messages = append(l.messages, fmt.Sprintf(format, args...))
}

func TestConfigureComputeTileClearsMemoryAndDMARegions(t *testing.T) {
	store := wstore.New()
	tile := ir.Tile{Col: 3, Row: 2}

	Configure(store, tile, 0, nil)

	ta := addr.NewTileAddress(0, 3, 2)
	progBase := addr.Address{Tile: ta, Offset: addr.ProgMemOffset}.Full()
	dataBase := addr.Address{Tile: ta, Offset: addr.DataMemOffset}.Full()
	bdBase := addr.Address{Tile: ta, Offset: addr.TileDMABDAddr(0)}.Full()

	require.Equal(t, uint32(0), store.Read32(progBase))
	require.Equal(t, uint32(0), store.Read32(dataBase))
	require.Equal(t, uint32(0), store.Read32(bdBase))
}

func TestConfigureComputeTileWithoutCoreSkipsLoad(t *testing.T) {
	store := wstore.New()
	tile := ir.Tile{Col: 1, Row: 1}
	log := &fakeLog{}

	Configure(store, tile, 0, log)

	require.Empty(t, log.messages)
}

func TestConfigureComputeTileWithCoreDiagnosesMissingFile(t *testing.T) {
	store := wstore.New()
	tile := ir.Tile{Col: 4, Row: 1, CoreValue: &ir.Core{ELFFile: "/nonexistent/core.elf", HasELF: true}}
	log := &fakeLog{}

	Configure(store, tile, 0, log)

	require.Len(t, log.messages, 1)
}

func TestConfigureShimTileClearsStreamSwitchOnly(t *testing.T) {
	store := wstore.New()
	tile := ir.Tile{Col: 5, Row: 0, ShimTile: true, ShimNOC: false}

	Configure(store, tile, 0, nil)

	ta := addr.NewTileAddress(0, 5, 0)
	masterBase := addr.Address{Tile: ta, Offset: addr.SSMasterBase}.Full()
	require.Equal(t, uint32(0), store.Read32(masterBase))

	wantLen := int(addr.ShimSSMasterCount/4) + int(addr.ShimSSSlaveCount/4) + int(addr.ShimSlotCount*addr.SSSlotStride/4)
	require.Equal(t, wantLen, store.Len())
}

func TestConfigureShimNOCTileAlsoClearsDMABDBank(t *testing.T) {
	store := wstore.New()
	tile := ir.Tile{Col: 6, Row: 0, ShimTile: true, ShimNOC: true}

	Configure(store, tile, 0, nil)

	ta := addr.NewTileAddress(0, 6, 0)
	bdBase := addr.Address{Tile: ta, Offset: addr.ShimDMABDAddr(0)}.Full()
	require.Equal(t, uint32(0), store.Read32(bdBase))
}

func TestConfigurePanicsOnColumnZero(t *testing.T) {
	store := wstore.New()
	tile := ir.Tile{Col: 0, Row: 1}
	require.Panics(t, func() { Configure(store, tile, 0, nil) })
}
