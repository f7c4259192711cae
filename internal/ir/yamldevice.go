package ir

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLDevice is a Device backed by a YAML document. It stands in for
// the front-end dialect spec §1 declares out of scope: the CLI's
// `generate` subcommand reads one of these, and this module's
// end-to-end tests build them directly to exercise the scenarios in
// spec §8.
type YAMLDevice struct {
	tiles       []Tile
	memoryOps   []*MemoryOp
	switchboxes []*Switchbox
	shimMuxes   []*ShimMux
	netlist     *staticNetlist
}

func (d *YAMLDevice) Tiles() []Tile                 { return d.tiles }
func (d *YAMLDevice) MemoryOps() []*MemoryOp         { return d.memoryOps }
func (d *YAMLDevice) Switchboxes() []*Switchbox      { return d.switchboxes }
func (d *YAMLDevice) ShimMuxes() []*ShimMux          { return d.shimMuxes }
func (d *YAMLDevice) Netlist() NetlistAnalysis       { return d.netlist }

type staticNetlist struct {
	bases map[BufferID]uint64
}

func (n *staticNetlist) BufferBaseAddress(buf BufferID) uint64 {
	return n.bases[buf]
}

// --- raw YAML document shape ---

type yamlDoc struct {
	Tiles       []yamlTile       `yaml:"tiles"`
	MemoryOps   []yamlMemoryOp   `yaml:"memory_ops"`
	Switchboxes []yamlSwitchbox  `yaml:"switchboxes"`
	ShimMuxes   []yamlShimMux    `yaml:"shim_muxes"`
	Netlist     yamlNetlist      `yaml:"netlist"`
}

type yamlTile struct {
	Col     uint8  `yaml:"col"`
	Row     uint8  `yaml:"row"`
	Shim    bool   `yaml:"shim"`
	ShimNOC bool   `yaml:"shim_noc"`
	Core    bool   `yaml:"core"`
	ELFFile string `yaml:"elf_file"`
}

type yamlMemoryOp struct {
	Col    uint8       `yaml:"col"`
	Row    uint8       `yaml:"row"`
	Blocks []yamlBlock `yaml:"blocks"`
}

type yamlBlock struct {
	ID        int      `yaml:"id"`
	Successor *int     `yaml:"successor"`
	Ops       []yamlOp `yaml:"ops"`
}

type yamlOp struct {
	Kind string `yaml:"kind"` // "bd", "lock", "packet", "channel_start"

	// bd
	IsA      bool    `yaml:"is_a"`
	IsB      bool    `yaml:"is_b"`
	Buffer   string  `yaml:"buffer"`
	Offset   uint32  `yaml:"offset"`
	Length   uint32  `yaml:"length"`
	ElemBits uint8   `yaml:"elem_bits"`

	// lock
	LockID  uint8 `yaml:"lock_id"`
	Acquire bool  `yaml:"acquire"`
	Value   uint8 `yaml:"value"`

	// packet
	PacketType uint8 `yaml:"packet_type"`
	PacketID   uint8 `yaml:"packet_id"`

	// channel_start
	Direction string `yaml:"direction"` // "mm2s" / "s2mm"
	Channel   uint8  `yaml:"channel"`
	DestBlock int    `yaml:"dest_block"`
}

type yamlSwitchbox struct {
	Col         uint8              `yaml:"col"`
	Row         uint8              `yaml:"row"`
	Connects    []yamlConnect      `yaml:"connects"`
	MasterSets  []yamlMasterSet    `yaml:"master_sets"`
	PacketRules []yamlPacketRules  `yaml:"packet_rules"`
}

type yamlShimMux struct {
	Col      uint8         `yaml:"col"`
	Row      uint8         `yaml:"row"`
	Connects []yamlConnect `yaml:"connects"`
}

type yamlConnect struct {
	SourceBundle string `yaml:"source_bundle"`
	SourceIndex  uint8  `yaml:"source_index"`
	DestBundle   string `yaml:"dest_bundle"`
	DestIndex    uint8  `yaml:"dest_index"`
}

type yamlMasterSet struct {
	DestBundle string      `yaml:"dest_bundle"`
	DestIndex  uint8       `yaml:"dest_index"`
	Amsels     []yamlAmsel `yaml:"amsels"`
}

type yamlAmsel struct {
	Msel    uint8 `yaml:"msel"`
	Arbiter uint8 `yaml:"arbiter"`
}

type yamlPacketRules struct {
	SourceBundle string           `yaml:"source_bundle"`
	SourceIndex  uint8            `yaml:"source_index"`
	Rules        []yamlPacketRule `yaml:"rules"`
}

type yamlPacketRule struct {
	SlotID   uint8 `yaml:"slot_id"`
	SlotMask uint8 `yaml:"slot_mask"`
	Msel     uint8 `yaml:"msel"`
	Arbiter  uint8 `yaml:"arbiter"`
}

type yamlNetlist struct {
	Buffers map[string]uint64 `yaml:"buffers"`
}

// LoadYAMLDeviceFile reads and decodes a YAML device description from
// path.
func LoadYAMLDeviceFile(path string) (*YAMLDevice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ir: reading device description %s: %w", path, err)
	}
	return LoadYAMLDevice(data)
}

// LoadYAMLDevice decodes a YAML device description from raw bytes.
func LoadYAMLDevice(data []byte) (*YAMLDevice, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ir: parsing device description: %w", err)
	}
	return buildDevice(doc)
}

func buildDevice(doc yamlDoc) (*YAMLDevice, error) {
	d := &YAMLDevice{
		netlist: &staticNetlist{bases: make(map[BufferID]uint64, len(doc.Netlist.Buffers))},
	}
	for name, base := range doc.Netlist.Buffers {
		d.netlist.bases[BufferID(name)] = base
	}

	for _, t := range doc.Tiles {
		tile := Tile{Col: t.Col, Row: t.Row, ShimTile: t.Shim, ShimNOC: t.ShimNOC}
		if t.Core {
			tile.CoreValue = &Core{ELFFile: t.ELFFile, HasELF: t.ELFFile != ""}
		}
		d.tiles = append(d.tiles, tile)
	}

	for _, m := range doc.MemoryOps {
		mo, err := buildMemoryOp(m)
		if err != nil {
			return nil, err
		}
		d.memoryOps = append(d.memoryOps, mo)
	}

	for _, sb := range doc.Switchboxes {
		built, err := buildSwitchbox(sb)
		if err != nil {
			return nil, err
		}
		d.switchboxes = append(d.switchboxes, built)
	}

	for _, sm := range doc.ShimMuxes {
		connects, err := buildConnects(sm.Connects)
		if err != nil {
			return nil, err
		}
		d.shimMuxes = append(d.shimMuxes, &ShimMux{Col: sm.Col, Row: sm.Row, Connects: connects})
	}

	return d, nil
}

func buildMemoryOp(m yamlMemoryOp) (*MemoryOp, error) {
	byID := make(map[int]*Block, len(m.Blocks))
	mo := &MemoryOp{Col: m.Col, Row: m.Row}

	for _, yb := range m.Blocks {
		b := &Block{ID: yb.ID}
		byID[yb.ID] = b
		mo.Blocks = append(mo.Blocks, b)
	}

	for i, yb := range m.Blocks {
		b := mo.Blocks[i]
		for _, yo := range yb.Ops {
			op, err := buildOp(yo, byID)
			if err != nil {
				return nil, fmt.Errorf("ir: tile(%d,%d) block %d: %w", m.Col, m.Row, yb.ID, err)
			}
			b.Ops = append(b.Ops, op)
		}
		if yb.Successor != nil {
			succ, ok := byID[*yb.Successor]
			if !ok {
				return nil, fmt.Errorf("ir: tile(%d,%d) block %d: unknown successor %d", m.Col, m.Row, yb.ID, *yb.Successor)
			}
			b.Successor = succ
		}
	}

	return mo, nil
}

func buildOp(yo yamlOp, byID map[int]*Block) (Op, error) {
	switch yo.Kind {
	case "bd":
		return Op{Kind: OpKindBD, BD: &BDOp{
			IsA:      yo.IsA,
			IsB:      yo.IsB,
			Buffer:   BufferID(yo.Buffer),
			Offset:   yo.Offset,
			Length:   yo.Length,
			ElemBits: yo.ElemBits,
		}}, nil
	case "lock":
		return Op{Kind: OpKindLockUse, Lock: &LockUseOp{LockID: yo.LockID, Acquire: yo.Acquire, Value: yo.Value}}, nil
	case "packet":
		return Op{Kind: OpKindPacket, Packet: &PacketOp{PacketType: yo.PacketType, PacketID: yo.PacketID}}, nil
	case "channel_start":
		dir, err := parseDirection(yo.Direction)
		if err != nil {
			return Op{}, err
		}
		dest, ok := byID[yo.DestBlock]
		if !ok {
			return Op{}, fmt.Errorf("channel_start: unknown dest_block %d", yo.DestBlock)
		}
		return Op{Kind: OpKindChannelStart, ChanStart: &ChannelStartOp{Direction: dir, Channel: yo.Channel, Dest: dest}}, nil
	default:
		return Op{}, fmt.Errorf("unknown op kind %q", yo.Kind)
	}
}

func buildSwitchbox(sb yamlSwitchbox) (*Switchbox, error) {
	connects, err := buildConnects(sb.Connects)
	if err != nil {
		return nil, err
	}

	built := &Switchbox{Col: sb.Col, Row: sb.Row, Connects: connects}

	for _, ms := range sb.MasterSets {
		destBundle, err := parseBundle(ms.DestBundle)
		if err != nil {
			return nil, err
		}
		mset := MasterSetOp{DestBundle: destBundle, DestIndex: ms.DestIndex}
		for _, a := range ms.Amsels {
			mset.Amsels = append(mset.Amsels, Amsel{Msel: a.Msel, Arbiter: a.Arbiter})
		}
		built.MasterSets = append(built.MasterSets, mset)
	}

	for _, pr := range sb.PacketRules {
		srcBundle, err := parseBundle(pr.SourceBundle)
		if err != nil {
			return nil, err
		}
		prop := PacketRulesOp{SourceBundle: srcBundle, SourceIndex: pr.SourceIndex}
		for _, r := range pr.Rules {
			prop.Rules = append(prop.Rules, PacketRule{SlotID: r.SlotID, SlotMask: r.SlotMask, Msel: r.Msel, Arbiter: r.Arbiter})
		}
		built.PacketRules = append(built.PacketRules, prop)
	}

	return built, nil
}

func buildConnects(raw []yamlConnect) ([]ConnectOp, error) {
	var out []ConnectOp
	for _, c := range raw {
		src, err := parseBundle(c.SourceBundle)
		if err != nil {
			return nil, err
		}
		dst, err := parseBundle(c.DestBundle)
		if err != nil {
			return nil, err
		}
		out = append(out, ConnectOp{SourceBundle: src, SourceIndex: c.SourceIndex, DestBundle: dst, DestIndex: c.DestIndex})
	}
	return out, nil
}

func parseBundle(s string) (WireBundle, error) {
	switch s {
	case "dma":
		return BundleDMA, nil
	case "south":
		return BundleSouth, nil
	case "west":
		return BundleWest, nil
	case "north":
		return BundleNorth, nil
	case "east":
		return BundleEast, nil
	case "plio":
		return BundlePLIO, nil
	case "noc":
		return BundleNOC, nil
	default:
		return 0, fmt.Errorf("unknown wire bundle %q", s)
	}
}

func parseDirection(s string) (Direction, error) {
	switch s {
	case "s2mm":
		return DirS2MM, nil
	case "mm2s":
		return DirMM2S, nil
	default:
		return 0, fmt.Errorf("unknown channel direction %q", s)
	}
}
