package addr

import "fmt"

// Field describes a closed bit range [Lo, Hi] within a 32-bit register.
// It is built once (typically as a package-level value next to the
// register layout it belongs to) and applied many times via Encode.
// Most register values in this generator are the bitwise-OR of one or
// more Field.Encode calls; the master-set configuration bits and the
// shim mux masks in internal/swcfg are composed with plain shifts.
type Field struct {
	Hi, Lo uint8
}

// NewField validates hi >= lo and hi < 32, matching spec §3's invariant
// for Field<hi,lo>. A violation here means the register layout table
// itself is wrong, so it panics rather than returning an error — there
// is no recovery path for a miscompiled bitfield table.
func NewField(hi, lo uint8) Field {
	if hi < lo {
		panic(fmt.Sprintf("addr: field hi=%d < lo=%d", hi, lo))
	}
	if hi >= 32 {
		panic(fmt.Sprintf("addr: field hi=%d out of range for a 32-bit register", hi))
	}
	return Field{Hi: hi, Lo: lo}
}

// width returns the number of bits the field spans.
func (f Field) width() uint8 {
	return f.Hi - f.Lo + 1
}

// unshiftedMask is the field's mask before shifting into place, e.g. a
// single-bit field always has unshiftedMask() == 1.
func (f Field) unshiftedMask() uint32 {
	if f.width() == 32 {
		return 0xFFFFFFFF
	}
	return (uint32(1) << f.width()) - 1
}

// Mask returns the field's bits already shifted into register position.
func (f Field) Mask() uint32 {
	return f.unshiftedMask() << f.Lo
}

// Encode maps a logical value into its shifted, masked position within
// a 32-bit register. The result is meant to be combined with other
// Encode results (and any base constant) via bitwise OR.
func (f Field) Encode(v uint32) uint32 {
	return (v << f.Lo) & f.Mask()
}

// Bit is a convenience constructor for a single-bit field at position b.
func Bit(b uint8) Field {
	return NewField(b, b)
}
