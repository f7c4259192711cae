// Package wstore implements the write-coalescing model shared by every
// configuration pass: an order-invariant, address-keyed store where a
// later write to an address replaces an earlier one, and a grouper that
// turns the final contents into maximal contiguous sections.
package wstore

import (
	"sort"

	"github.com/aie-tools/airbingen/internal/aierr"
)

// Store is an address -> 32-bit-value map with upsert semantics and
// ascending iteration. It is owned by exactly one Translator for the
// duration of one translation (spec §5) — there is no synchronization
// here because there is no sharing.
type Store struct {
	values map[uint64]uint32
}

// New returns an empty Store.
func New() *Store {
	return &Store{values: make(map[uint64]uint32)}
}

// Write32 upserts value at addr. Callers are responsible for the
// column>0 precondition (spec §4.2) — enforcing it here would require
// the store to know about tile addressing, which is layered above it.
func (s *Store) Write32(addr uint64, value uint32) {
	s.values[addr] = value
}

// Read32 returns the value stored at addr, or 0 if nothing has been
// written there yet.
func (s *Store) Read32(addr uint64) uint32 {
	return s.values[addr]
}

// ClearRange zeroes every 4-byte-aligned address in [start, start+length).
// start and length must both be multiples of 4; violating that is a
// programmer error in the caller's pass, not a recoverable condition.
func (s *Store) ClearRange(start, length uint64) {
	if start%4 != 0 || length%4 != 0 {
		aierr.Raise("wstore: ClearRange requires 4-byte-aligned start and length")
	}
	for a := start; a < start+length; a += 4 {
		s.values[a] = 0
	}
}

// Len returns the number of distinct addresses currently written.
func (s *Store) Len() int {
	return len(s.values)
}

// IterAscending calls fn for every (address, value) pair in strictly
// increasing address order, as required by the section grouper.
func (s *Store) IterAscending(fn func(addr uint64, value uint32)) {
	addrs := make([]uint64, 0, len(s.values))
	for a := range s.values {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	for _, a := range addrs {
		fn(a, s.values[a])
	}
}
