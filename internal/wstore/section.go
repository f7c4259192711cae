package wstore

import "encoding/binary"

// Section is a maximal run of addresses base, base+4, base+8, ... all
// present in the write store, represented as its base device address
// and the sequence of 32-bit words at that run.
type Section struct {
	Base uint64
	Data []uint32
}

// Bytes returns the section's length in bytes (4 * len(Data)).
func (s Section) Bytes() int {
	return 4 * len(s.Data)
}

// PayloadBytes serializes Data as little-endian bytes, the form the
// AIRBIN emitter writes as one PROGBITS section's raw contents.
func (s Section) PayloadBytes() []byte {
	out := make([]byte, 4*len(s.Data))
	for i, v := range s.Data {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// GroupSections scans the store in ascending address order and splits
// it into maximal contiguous sections on a 4-byte grid: a new section
// starts whenever the next address is not exactly 4 past the last one
// seen. The result partitions every write in the store (spec §8,
// invariant 3).
func GroupSections(s *Store) []Section {
	var sections []Section
	var cur *Section
	var lastAddr uint64
	haveLast := false

	s.IterAscending(func(addr uint64, value uint32) {
		if haveLast && addr == lastAddr+4 {
			cur.Data = append(cur.Data, value)
		} else {
			if cur != nil {
				sections = append(sections, *cur)
			}
			cur = &Section{Base: addr, Data: []uint32{value}}
		}
		lastAddr = addr
		haveLast = true
	})

	if cur != nil {
		sections = append(sections, *cur)
	}
	return sections
}
