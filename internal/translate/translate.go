// Package translate implements the Translator context (spec §5, §9
// design note on global state): an explicit object threading the write
// store through configure_cores, configure_switchboxes, and
// configure_dmas in fixed order, rather than module-level mutable
// state.
package translate

import (
	"fmt"
	"io"

	"github.com/aie-tools/airbingen/internal/aierr"
	"github.com/aie-tools/airbingen/internal/airbin"
	"github.com/aie-tools/airbingen/internal/dmacfg"
	"github.com/aie-tools/airbingen/internal/ir"
	"github.com/aie-tools/airbingen/internal/swcfg"
	"github.com/aie-tools/airbingen/internal/tilecfg"
	"github.com/aie-tools/airbingen/internal/wstore"
)

// Logger receives the non-fatal diagnostics every pass can emit: a
// missing core ELF (tilecfg) and an A/B-mode mismatch (dmacfg).
type Logger interface {
	Diagnosef(format string, args ...any)
}

// NopLogger discards every diagnostic.
type NopLogger struct{}

func (NopLogger) Diagnosef(string, ...any) {}

// Translator owns one write store for the duration of one translation.
// It is not safe to reuse across translations or to share across
// goroutines — spec §5 scopes the write store's lifetime to exactly one
// translation.
type Translator struct {
	store       *wstore.Store
	log         Logger
	arrayOffset uint64
}

// New returns a Translator ready to configure a single device. A nil
// logger is replaced with NopLogger. arrayOffset is folded into every
// tile address this translation writes (spec §3's
// TileAddress.array_offset) — it is meaningful only to the runtime
// loader, and carried through untouched by every configuration pass.
func New(log Logger, arrayOffset uint64) *Translator {
	if log == nil {
		log = NopLogger{}
	}
	return &Translator{store: wstore.New(), log: log, arrayOffset: arrayOffset}
}

// Run executes the fixed pass order — tile configuration (which loads
// core executables), then switchbox configuration, then DMA
// configuration — against dev, and returns the resulting write store.
// A ProgrammerError raised by any pass is recovered here and returned
// as an error so callers don't need to install their own recover.
func (t *Translator) Run(dev ir.Device) (store *wstore.Store, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*aierr.ProgrammerError); ok {
				err = pe
				return
			}
			panic(r)
		}
	}()

	for _, tile := range dev.Tiles() {
		tilecfg.Configure(t.store, tile, t.arrayOffset, t.log)
	}
	swcfg.Configure(t.store, dev, t.arrayOffset)
	dmacfg.Configure(t.store, dev, t.arrayOffset, t.log)

	return t.store, nil
}

// Emit groups the translator's accumulated writes and streams an
// AIRBIN to w. Call it only after Run has succeeded.
func (t *Translator) Emit(w io.Writer) error {
	if err := airbin.Write(w, t.store); err != nil {
		return fmt.Errorf("translate: emitting AIRBIN: %w", err)
	}
	return nil
}
