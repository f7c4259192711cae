// Package airbin implements the AIRBIN emitter (spec §4.7): it takes
// the grouped contents of a write store and streams a 64-bit
// little-endian ELF container directly to an io.Writer, classifying
// each section's base address into one of the named AIRBIN sections
// (spec §6.3).
//
// debug/elf can only read ELF files, so this writer is hand-rolled the
// way the teacher's own elf_sections.go builds its dynamic-linking
// sections: bytes.Buffer plus encoding/binary.Write for every
// fixed-width field, rather than byte-by-byte literal packing.
package airbin

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/aie-tools/airbingen/internal/wstore"
)

const (
	elfMagic0 = 0x7f

	elfClass64    = 2
	elfData2LSB   = 1
	elfVersionEV  = 1
	elfOSABIGNU   = 3
	elfTypeNone   = 0
	elfMachineAIR = 0xAE00 // reserved for AI Engine hardware; not in the public ELF machine registry

	ehdrSize = 64
	shdrSize = 64

	shtNull     = 0
	shtProgbits = 1
	shtStrtab   = 3

	shfAlloc = 0x2
)

// sectionNames lists the 11 named AIRBIN sections (spec §3's Section
// index, indices 1..11), pre-registered into .shstrtab regardless of
// whether classify ever produces them. "deprecated" and ".tdma.bd" are
// carried for format compatibility; classify never emits them.
var sectionNames = []string{
	".ssmast", ".ssslve", ".sspckt", ".sdma.bd", ".shmmux",
	".sdma.ctl", ".prgm.mem", ".tdma.bd", ".tdma.ctl", "deprecated", ".data.mem",
}

// classifyBoundary is one (boundary, name) pair in the address
// classification table (spec §6.3), sorted ascending by boundary.
type classifyBoundary struct {
	low  uint64
	name string
}

var classifyTable = func() []classifyBoundary {
	t := []classifyBoundary{
		{0x00000, ".data.mem"},
		{0x1D000, ".sdma.bd"},
		{0x1D140, ".sdma.ctl"},
		{0x1DE00, ".tdma.ctl"},
		{0x1F000, ".shmmux"},
		{0x20000, ".prgm.mem"},
		{0x3F000, ".ssmast"},
		{0x3F100, ".ssslve"},
		{0x3F200, ".sspckt"},
	}
	sort.Slice(t, func(i, j int) bool { return t[i].low < t[j].low })
	return t
}()

// classify maps a section's base device address to its AIRBIN section
// name by finding the greatest classification boundary not exceeding
// low = addr mod 2^18.
func classify(base uint64) string {
	low := base & 0x3FFFF
	name := "null"
	for _, b := range classifyTable {
		if b.low > low {
			break
		}
		name = b.name
	}
	return name
}

// Write groups store's contents and streams an AIRBIN ELF to w.
func Write(w io.Writer, store *wstore.Store) error {
	sections := wstore.GroupSections(store)
	return WriteSections(w, sections)
}

// WriteSections streams an AIRBIN ELF built from already-grouped
// sections to w, without re-deriving them from a store. Exposed
// separately so a caller can drive section layout directly.
func WriteSections(w io.Writer, sections []wstore.Section) error {
	shstrtab, nameOffset := buildShstrtab()

	type shdr struct {
		name      uint32
		shType    uint32
		flags     uint64
		addr      uint64
		offset    uint64
		size      uint64
		addralign uint64
	}

	headers := make([]shdr, 0, 2+len(sections))
	headers = append(headers, shdr{}) // SHT_NULL
	headers = append(headers, shdr{
		name:      nameOffset[".shstrtab"],
		shType:    shtStrtab,
		offset:    ehdrSize,
		size:      uint64(len(shstrtab)),
		addralign: 1,
	})

	dataOffset := uint64(ehdrSize) + uint64(len(shstrtab))
	var payload bytes.Buffer
	for _, sec := range sections {
		bs := sec.PayloadBytes()
		name := classify(sec.Base)
		headers = append(headers, shdr{
			name:      nameOffset[name],
			shType:    shtProgbits,
			flags:     shfAlloc,
			addr:      sec.Base,
			offset:    dataOffset + uint64(payload.Len()),
			size:      uint64(len(bs)),
			addralign: 1,
		})
		payload.Write(bs)
	}

	shoff := dataOffset + uint64(payload.Len())
	shnum := uint16(len(headers))

	var out bytes.Buffer
	if err := writeEHdr(&out, shoff, shnum); err != nil {
		return fmt.Errorf("airbin: writing ELF header: %w", err)
	}
	out.Write(shstrtab)
	out.Write(payload.Bytes())

	for _, h := range headers {
		fields := []any{h.name, h.shType, h.flags, h.addr, h.offset, h.size, uint32(0), uint32(0), h.addralign, uint64(0)}
		for _, f := range fields {
			if err := binary.Write(&out, binary.LittleEndian, f); err != nil {
				return fmt.Errorf("airbin: writing section header: %w", err)
			}
		}
	}

	_, err := w.Write(out.Bytes())
	return err
}

func buildShstrtab() ([]byte, map[string]uint32) {
	var buf bytes.Buffer
	offsets := make(map[string]uint32)

	buf.WriteByte(0) // empty string at offset 0
	offsets[""] = 0

	add := func(s string) {
		offsets[s] = uint32(buf.Len())
		buf.WriteString(s)
		buf.WriteByte(0)
	}
	add(".shstrtab")
	for _, n := range sectionNames {
		add(n)
	}
	return buf.Bytes(), offsets
}

func writeEHdr(out *bytes.Buffer, shoff uint64, shnum uint16) error {
	ident := [16]byte{elfMagic0, 'E', 'L', 'F', elfClass64, elfData2LSB, elfVersionEV, elfOSABIGNU}
	out.Write(ident[:])

	fields := []any{
		uint16(elfTypeNone),
		uint16(elfMachineAIR),
		uint32(elfVersionEV),
		uint64(0), // e_entry
		uint64(0), // e_phoff
		shoff,
		uint32(0), // e_flags
		uint16(ehdrSize),
		uint16(0), // e_phentsize
		uint16(0), // e_phnum
		uint16(shdrSize),
		shnum,
		uint16(1), // e_shstrndx
	}
	for _, f := range fields {
		if err := binary.Write(out, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}
