package space

import (
	"fmt"
	"math"
	"strings"
)

const (
	// MaxZBits is the maximum number of bits in a z-value bit-string.
	MaxZBits = 57

	// MaxDimensions is the maximum number of dimensions of a Space.
	MaxDimensions = 6

	lengthBits = 6
	lengthMask = uint64(1)<<lengthBits - 1

	// payloadMask covers bits 6..62.
	payloadMask = (uint64(1)<<MaxZBits - 1) << lengthBits
)

// NoRegion marks an unused decomposition slot. It has bit 63 set, so it is
// never a valid z-value, and it compares above every valid z-value and every
// Hi bound. The join uses it as +infinity.
const NoRegion ZValue = math.MaxUint64

// ZValue identifies a region of a Space.
//
// Layout: bit 63 is always zero, bits 6..62 hold a left-justified bit-string
// and the low 6 bits hold its length. Unsigned comparison of z-values follows
// a pre-order walk of the bisection tree.
type ZValue uint64

// Z builds a z-value from a bit-string left-justified at bit 63. Bits beyond
// length are discarded.
func Z(bits uint64, length int) ZValue {
	checkLength(length)
	return ZValue((bits>>1)&prefixMask(length) | uint64(length))
}

// Length returns the number of bits in the z-value's bit-string.
func (z ZValue) Length() int {
	return int(uint64(z) & lengthMask)
}

// Bits returns the bit-string left-justified at bit 63.
func (z ZValue) Bits() uint64 {
	return (uint64(z) & payloadMask) << 1
}

// Parent returns the z-value of the enclosing region, one bit shorter.
// It panics on the root.
func (z ZValue) Parent() ZValue {
	length := z.Length()
	if length == 0 {
		panic("space: parent of root z-value")
	}
	payload := uint64(z) &^ lengthMask &^ bitAt(length-1)
	return ZValue(payload | uint64(length-1))
}

// Contains reports whether z is an ancestor of, or equal to, other.
func (z ZValue) Contains(other ZValue) bool {
	length := z.Length()
	return length <= other.Length() && (uint64(z)^uint64(other))&prefixMask(length) == 0
}

// Overlaps reports whether either region contains the other.
func (z ZValue) Overlaps(other ZValue) bool {
	return z.Contains(other) || other.Contains(z)
}

// Lo returns the smallest z-value among z and its descendants, which is z.
func (z ZValue) Lo() ZValue {
	return z
}

// Hi returns an upper bound for z and all of its descendants: every payload
// bit below the length is set, and so is every length bit. Any z-value v
// satisfies z <= v <= z.Hi() exactly when z.Contains(v).
//
// The result is only a bound to compare against. Its length field reads 63,
// so it is not itself a z-value: do not store it or call other methods on
// it. Since no real z-value equals a Hi bound, an exit at z.Hi() never ties
// with an entry.
func (z ZValue) Hi() ZValue {
	return ZValue(uint64(z) | payloadMask&^prefixMask(z.Length()) | lengthMask)
}

// Siblings reports whether a and b are the two halves of the same parent.
func Siblings(a, b ZValue) bool {
	length := a.Length()
	return length > 0 && length == b.Length() && uint64(a)^uint64(b) == bitAt(length-1)
}

// Ancestor returns the prefix of z with the given length.
func (z ZValue) Ancestor(length int) ZValue {
	if length > z.Length() || length < 0 {
		panic(fmt.Sprintf("space: ancestor length %d of %s", length, z))
	}
	return ZValue(uint64(z)&prefixMask(length) | uint64(length))
}

// String renders the bit-string, e.g. "z(0110/4)".
func (z ZValue) String() string {
	if z == NoRegion {
		return "z(none)"
	}
	length := z.Length()
	var sb strings.Builder
	sb.Grow(length + 8)
	sb.WriteString("z(")
	for i := 0; i < length; i++ {
		if uint64(z)&bitAt(i) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	fmt.Fprintf(&sb, "/%d)", length)
	return sb.String()
}

// bitAt returns the payload bit for position p (0 = most significant).
func bitAt(p int) uint64 {
	return uint64(1) << (62 - p)
}

// prefixMask covers the first length payload bits.
func prefixMask(length int) uint64 {
	return (uint64(1)<<length - 1) << (63 - length)
}

func checkLength(length int) {
	if length < 0 || length > MaxZBits {
		panic(fmt.Sprintf("space: invalid z-value length %d", length))
	}
}
