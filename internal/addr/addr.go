// Package addr provides pure conversions between IP address representations.
//
// Addresses are passed around either as strings ("192.168.1.1", "fe80::1")
// or as tuples: a 4-element byte tuple for IPv4 or an 8-element 16-bit group
// tuple for IPv6. The configuration compiler depends on these helpers for
// subnet arithmetic; nothing here touches the network.
package addr

import (
	"fmt"
	"net"
	"strings"

	"github.com/netcfgd/netcfgd/internal/errors"
)

// Family identifies an IP address family.
type Family uint8

const (
	FamilyInet  Family = 4
	FamilyInet6 Family = 6
)

// Tuple is an IP address in tuple form: 4 byte-sized elements for IPv4
// or 8 group-sized (16-bit) elements for IPv6.
type Tuple []int

// bitWidth returns the total address width in bits for the family.
func (f Family) bitWidth() int {
	if f == FamilyInet6 {
		return 128
	}
	return 32
}

// IPToString renders an address as a string. Tuple forms render as a
// dotted-quad or colon-compressed hex string; string input is returned
// unchanged without validation.
func IPToString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case Tuple:
		return tupleToString(v)
	case []int:
		return tupleToString(Tuple(v))
	default:
		return fmt.Sprintf("%v", value)
	}
}

func tupleToString(t Tuple) string {
	switch len(t) {
	case 4:
		return fmt.Sprintf("%d.%d.%d.%d", t[0], t[1], t[2], t[3])
	case 8:
		ip := make(net.IP, net.IPv6len)
		for i, group := range t {
			ip[2*i] = byte(group >> 8)
			ip[2*i+1] = byte(group)
		}
		return ip.String()
	default:
		return fmt.Sprintf("%v", []int(t))
	}
}

// IPToTuple converts an address to tuple form. It accepts already-valid
// tuples (range-checked) and numeric-dotted or colon-hex strings. Any
// other shape yields an INVALID_ADDRESS error carrying the original value.
func IPToTuple(value interface{}) (Tuple, error) {
	switch v := value.(type) {
	case Tuple:
		return checkTuple(v)
	case []int:
		return checkTuple(Tuple(v))
	case string:
		return parseTuple(v)
	default:
		return nil, errors.NewInvalidAddressError(value)
	}
}

func checkTuple(t Tuple) (Tuple, error) {
	var limit int
	switch len(t) {
	case 4:
		limit = 0xFF
	case 8:
		limit = 0xFFFF
	default:
		return nil, errors.NewInvalidAddressError([]int(t))
	}
	for _, elem := range t {
		if elem < 0 || elem > limit {
			return nil, errors.NewInvalidAddressError([]int(t))
		}
	}
	out := make(Tuple, len(t))
	copy(out, t)
	return out, nil
}

func parseTuple(s string) (Tuple, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, errors.NewInvalidAddressError(s)
	}

	if !strings.Contains(s, ":") {
		ip4 := ip.To4()
		if ip4 == nil {
			return nil, errors.NewInvalidAddressError(s)
		}
		return Tuple{int(ip4[0]), int(ip4[1]), int(ip4[2]), int(ip4[3])}, nil
	}

	ip16 := ip.To16()
	if ip16 == nil {
		return nil, errors.NewInvalidAddressError(s)
	}
	t := make(Tuple, 8)
	for i := 0; i < 8; i++ {
		t[i] = int(ip16[2*i])<<8 | int(ip16[2*i+1])
	}
	return t, nil
}

// PrefixLengthToSubnetMask builds the subnet mask for a prefix length:
// length leading one-bits, zero-padded to the family's total width, in
// the family's tuple shape. Lengths outside [0, width] are rejected.
func PrefixLengthToSubnetMask(family Family, length int) (Tuple, error) {
	width := family.bitWidth()
	if length < 0 || length > width {
		return nil, errors.New(errors.ErrCodeInvalidAddress,
			fmt.Sprintf("prefix length %d out of range [0, %d]", length, width))
	}

	if family == FamilyInet {
		bits := uint32(0xFFFFFFFF) << (32 - uint(length))
		if length == 0 {
			bits = 0
		}
		return Tuple{
			int(bits >> 24 & 0xFF),
			int(bits >> 16 & 0xFF),
			int(bits >> 8 & 0xFF),
			int(bits & 0xFF),
		}, nil
	}

	mask := make(Tuple, 8)
	remaining := length
	for i := range mask {
		take := remaining
		if take > 16 {
			take = 16
		}
		if take > 0 {
			mask[i] = (0xFFFF << (16 - uint(take))) & 0xFFFF
		}
		remaining -= take
	}
	return mask, nil
}

// SubnetMaskToPrefixLength returns the prefix length for a canonical IPv4
// subnet mask tuple. A mask with non-contiguous one-bits yields a
// NOT_A_CANONICAL_MASK error.
func SubnetMaskToPrefixLength(mask Tuple) (int, error) {
	if len(mask) != 4 {
		return 0, errors.NewInvalidAddressError([]int(mask))
	}
	for length := 0; length <= 32; length++ {
		candidate, err := PrefixLengthToSubnetMask(FamilyInet, length)
		if err != nil {
			return 0, err
		}
		if tuplesEqual(candidate, mask) {
			return length, nil
		}
	}
	return 0, errors.NewNotACanonicalMaskError([]int(mask))
}

// ToSubnet zeroes the host bits of an IPv4 address, keeping the top
// prefixLength bits.
func ToSubnet(ip Tuple, prefixLength int) (Tuple, error) {
	checked, err := checkTuple(ip)
	if err != nil {
		return nil, err
	}
	if len(checked) != 4 {
		return nil, errors.NewInvalidAddressError([]int(ip))
	}
	mask, err := PrefixLengthToSubnetMask(FamilyInet, prefixLength)
	if err != nil {
		return nil, err
	}
	subnet := make(Tuple, 4)
	for i := range subnet {
		subnet[i] = checked[i] & mask[i]
	}
	return subnet, nil
}

func tuplesEqual(a, b Tuple) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
