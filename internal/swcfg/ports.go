package swcfg

import (
	"github.com/aie-tools/airbingen/internal/aierr"
	"github.com/aie-tools/airbingen/internal/ir"
)

// maxIndex is the precondition bound on a bundle index: 0 <= index <
// math.MaxUint8 - 21.
const maxIndex = 255 - 21

// resolvePort maps a (bundle, index) pair to a physical port number,
// using the table that differs by tile kind and by slave/master
// direction (spec §4.6).
func resolvePort(bundle ir.WireBundle, index uint8, shim, master bool) uint32 {
	if index >= maxIndex {
		aierr.Raise("wire bundle index %d out of range", index)
	}
	i := uint32(index)

	switch bundle {
	case ir.BundleDMA:
		return 2 + i
	case ir.BundleSouth:
		if shim {
			return 3 + i
		}
		return 7 + i
	case ir.BundleWest:
		if shim {
			if master {
				return 9 + i
			}
			return 11 + i
		}
		if master {
			return 11 + i
		}
		return 13 + i
	case ir.BundleNorth:
		if shim {
			if master {
				return 13 + i
			}
			return 15 + i
		}
		if master {
			return 15 + i
		}
		return 17 + i
	case ir.BundleEast:
		if shim {
			return 19 + i
		}
		return 21 + i
	default:
		aierr.Raise("unknown wire bundle %v", bundle)
		return 0
	}
}
