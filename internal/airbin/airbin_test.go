package airbin

import (
	"bytes"
	"debug/elf"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aie-tools/airbingen/internal/wstore"
)

func TestClassifyKnownBoundaries(t *testing.T) {
	cases := []struct {
		addr uint64
		want string
	}{
		{0x00000, ".data.mem"},
		{0x00010, ".data.mem"},
		{0x1D000, ".sdma.bd"},
		{0x1D140, ".sdma.ctl"},
		{0x1DE00, ".tdma.ctl"},
		{0x1F000, ".shmmux"},
		{0x20000, ".prgm.mem"},
		{0x3F000, ".ssmast"},
		{0x3F100, ".ssslve"},
		{0x3F200, ".sspckt"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, classify(c.addr))
	}
}

func TestWriteProducesReadableELF64(t *testing.T) {
	store := wstore.New()
	store.Write32(0x20000, 0xDEADBEEF)
	store.Write32(0x20004, 0xCAFEBABE)
	store.Write32(0x1D000, 0x1)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, store))

	f, err := elf.NewFile(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, elf.ELFCLASS64, f.Class)
	require.Equal(t, elf.ELFDATA2LSB, f.Data)
	require.Equal(t, elf.ET_NONE, f.Type)

	var foundProg, foundData bool
	for _, sec := range f.Sections {
		switch sec.Name {
		case ".prgm.mem":
			foundProg = true
			require.Equal(t, uint64(0x20000), sec.Addr)
		case ".sdma.bd":
			foundData = true
			require.Equal(t, uint64(0x1D000), sec.Addr)
		}
	}
	require.True(t, foundProg)
	require.True(t, foundData)
}

func TestWriteEmptyStoreProducesValidELF(t *testing.T) {
	store := wstore.New()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, store))

	f, err := elf.NewFile(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	require.Len(t, f.Sections, 2) // null + .shstrtab
}
