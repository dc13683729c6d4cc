// Package netaddr converts between the textual and fixed-width binary
// forms of hardware and IPv4/IPv6 addresses used by the device registry.
// All conversions are pure; the binary forms are the canonical encodings
// stored in the database.
package netaddr

import (
	"fmt"
	"strconv"
	"strings"
)

// MAC is a 6-byte hardware address in network byte order.
type MAC [6]byte

// IPv4 is a 4-byte address in network byte order.
type IPv4 [4]byte

// IPv6 is a 16-byte address in network byte order. The zero value means unset.
type IPv6 [16]byte

// FormatError reports malformed address text. It is always client-caused.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed address %q: %s", e.Input, e.Reason)
}

// ParseMAC parses a colon- or dot-delimited hardware address
// ("88:66:5A:06:7F:10" or "88.66.5a.06.7f.10") into its 6-byte form.
func ParseMAC(s string) (MAC, error) {
	var mac MAC
	normalized := strings.ReplaceAll(s, ".", ":")
	groups := strings.Split(normalized, ":")
	if len(groups) != 6 {
		return MAC{}, &FormatError{Input: s, Reason: "expected 6 hex octets"}
	}
	for i, g := range groups {
		if len(g) != 2 {
			return MAC{}, &FormatError{Input: s, Reason: "octet must be two hex digits"}
		}
		v, err := strconv.ParseUint(g, 16, 8)
		if err != nil {
			return MAC{}, &FormatError{Input: s, Reason: "octet is not hex"}
		}
		mac[i] = byte(v)
	}
	return mac, nil
}

// ParseIPv4 parses dotted-decimal notation into its 4-byte form.
// Leading zeros are accepted ("192.168.0.01" parses as 192.168.0.1).
func ParseIPv4(s string) (IPv4, error) {
	var ip IPv4
	octets := strings.Split(s, ".")
	if len(octets) != 4 {
		return IPv4{}, &FormatError{Input: s, Reason: "expected 4 decimal octets"}
	}
	for i, o := range octets {
		if o == "" {
			return IPv4{}, &FormatError{Input: s, Reason: "empty octet"}
		}
		v, err := strconv.ParseUint(o, 10, 64)
		if err != nil {
			return IPv4{}, &FormatError{Input: s, Reason: "octet is not decimal"}
		}
		if v > 255 {
			return IPv4{}, &FormatError{Input: s, Reason: "octet out of range"}
		}
		ip[i] = byte(v)
	}
	return ip, nil
}

// String renders the address as uppercase hex octets joined by colons,
// e.g. "88:66:5A:06:7F:10".
func (m MAC) String() string {
	parts := make([]string, len(m))
	for i, b := range m {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

// String renders the address in dotted-decimal notation.
func (ip IPv4) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}

// String renders the address as 8 groups of 4 uppercase hex digits
// joined by colons. No zero-compression is applied.
func (ip IPv6) String() string {
	parts := make([]string, 8)
	for i := 0; i < 8; i++ {
		parts[i] = fmt.Sprintf("%02X%02X", ip[2*i], ip[2*i+1])
	}
	return strings.Join(parts, ":")
}

// IsZero reports whether the address is all-zero (unset).
func (ip IPv6) IsZero() bool {
	return ip == IPv6{}
}

// MACFromBytes converts a raw database value into a MAC. A wrong-length
// slice indicates corrupted stored data, not user input.
func MACFromBytes(b []byte) (MAC, error) {
	var mac MAC
	if len(b) != len(mac) {
		return MAC{}, fmt.Errorf("invalid stored mac length %d", len(b))
	}
	copy(mac[:], b)
	return mac, nil
}

// IPv4FromBytes converts a raw database value into an IPv4 address.
func IPv4FromBytes(b []byte) (IPv4, error) {
	var ip IPv4
	if len(b) != len(ip) {
		return IPv4{}, fmt.Errorf("invalid stored ipv4 length %d", len(b))
	}
	copy(ip[:], b)
	return ip, nil
}

// IPv6FromBytes converts a raw database value into an IPv6 address.
// An empty slice is treated as unset.
func IPv6FromBytes(b []byte) (IPv6, error) {
	var ip IPv6
	if len(b) == 0 {
		return IPv6{}, nil
	}
	if len(b) != len(ip) {
		return IPv6{}, fmt.Errorf("invalid stored ipv6 length %d", len(b))
	}
	copy(ip[:], b)
	return ip, nil
}
