// Package elfload implements the core executable loader (spec §4.3): it
// reads a 32-bit little-endian ELF core executable and records its
// PT_LOAD segments into a tile's program/data memory via the write
// store. Parsing uses the standard library's debug/elf — the same
// package the teacher's own elf_test.go uses to read back ELF files —
// since this is read-only work debug/elf already does correctly; only
// writing an AIRBIN (internal/airbin) needs a hand-rolled writer,
// because debug/elf has no writer half.
package elfload

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/aie-tools/airbingen/internal/addr"
	"github.com/aie-tools/airbingen/internal/wstore"
)

// LoadError reports that a core executable could not be loaded. Per
// spec §7, this is an I/O failure that is fatal for one tile only —
// translation continues with that tile's program/data memory left at
// whatever the preceding reset pass wrote (normally all zero).
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("elfload: %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadCoreExecutable parses the 32-bit ELF at path and records every
// PT_LOAD segment's loadable bytes into store at the given tile's
// program or data memory, selected by whether the segment is marked
// executable (spec §4.3).
func LoadCoreExecutable(store *wstore.Store, tile addr.TileAddress, path string) error {
	f, err := elf.Open(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return &LoadError{Path: path, Err: fmt.Errorf("expected ELFCLASS32, got %s", f.Class)}
	}
	if f.Data != elf.ELFDATA2LSB {
		return &LoadError{Path: path, Err: fmt.Errorf("expected ELFDATA2LSB, got %s", f.Data)}
	}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		if err := loadSegment(store, tile, f, prog); err != nil {
			return &LoadError{Path: path, Err: err}
		}
	}
	return nil
}

func loadSegment(store *wstore.Store, tile addr.TileAddress, f *elf.File, prog *elf.Prog) error {
	var base uint32
	if prog.Flags&elf.PF_X != 0 {
		base = addr.ProgMemOffset + uint32(prog.Vaddr)
	} else {
		base = addr.DataMemOffset + uint32(uint64(prog.Vaddr)%addr.DataMemSize)
	}

	data := make([]byte, prog.Filesz)
	if _, err := io.ReadFull(prog.Open(), data); err != nil {
		return fmt.Errorf("reading PT_LOAD segment: %w", err)
	}

	for off := uint64(0); off+4 <= uint64(len(data)); off += 4 {
		word := binary.LittleEndian.Uint32(data[off : off+4])
		a := addr.Address{Tile: tile, Offset: base + uint32(off)}
		store.Write32(a.Full(), word)
	}
	return nil
}
