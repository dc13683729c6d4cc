package netaddr

import (
	"errors"
	"testing"
)

func TestParseMAC(t *testing.T) {
	tests := []struct {
		in   string
		want MAC
	}{
		{"88:66:5A:06:7F:10", MAC{0x88, 0x66, 0x5A, 0x06, 0x7F, 0x10}},
		{"88.66.5a.06.7f.10", MAC{0x88, 0x66, 0x5A, 0x06, 0x7F, 0x10}},
		{"00:00:00:00:00:00", MAC{}},
		{"ff:ff:ff:ff:ff:ff", MAC{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tt := range tests {
		got, err := ParseMAC(tt.in)
		if err != nil {
			t.Errorf("ParseMAC(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMAC(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseMAC_malformed(t *testing.T) {
	inputs := []string{
		"",
		"88:66:5A:06:7F",
		"88:66:5A:06:7F:10:22",
		"88:66:5A:06:7F:GG",
		"886:6:5A:06:7F:10",
		"8:66:5A:06:7F:10",
		"88-66-5A-06-7F-10",
	}
	for _, in := range inputs {
		_, err := ParseMAC(in)
		if err == nil {
			t.Errorf("ParseMAC(%q) should fail", in)
			continue
		}
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("ParseMAC(%q) error should be *FormatError, got %T", in, err)
		}
	}
}

func TestParseIPv4(t *testing.T) {
	tests := []struct {
		in   string
		want IPv4
	}{
		{"192.168.0.1", IPv4{192, 168, 0, 1}},
		{"192.168.0.01", IPv4{192, 168, 0, 1}},
		{"0.0.0.0", IPv4{}},
		{"255.255.255.255", IPv4{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		got, err := ParseIPv4(tt.in)
		if err != nil {
			t.Errorf("ParseIPv4(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseIPv4(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseIPv4_malformed(t *testing.T) {
	inputs := []string{
		"",
		"192.168.0",
		"192.168.0.1.5",
		"192.168.0.256",
		"192.168.0.-1",
		"192.168.0.abc",
		"192.168..1",
	}
	for _, in := range inputs {
		_, err := ParseIPv4(in)
		if err == nil {
			t.Errorf("ParseIPv4(%q) should fail", in)
			continue
		}
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("ParseIPv4(%q) error should be *FormatError, got %T", in, err)
		}
	}
}

func TestMACRoundTrip(t *testing.T) {
	inputs := []string{"88:66:5A:06:7F:10", "00:1A:2B:3C:4D:5E", "FF:FF:FF:FF:FF:FF"}
	for _, in := range inputs {
		mac, err := ParseMAC(in)
		if err != nil {
			t.Fatalf("ParseMAC(%q): %v", in, err)
		}
		if mac.String() != in {
			t.Errorf("round trip %q -> %q", in, mac.String())
		}
	}
	// lowercase input normalizes to uppercase
	mac, err := ParseMAC("aa.bb.cc.dd.ee.ff")
	if err != nil {
		t.Fatalf("ParseMAC: %v", err)
	}
	if mac.String() != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("lowercase input should format uppercase, got %q", mac.String())
	}
}

func TestIPv4RoundTrip(t *testing.T) {
	inputs := []string{"192.168.0.1", "10.0.0.254", "0.0.0.0"}
	for _, in := range inputs {
		ip, err := ParseIPv4(in)
		if err != nil {
			t.Fatalf("ParseIPv4(%q): %v", in, err)
		}
		if ip.String() != in {
			t.Errorf("round trip %q -> %q", in, ip.String())
		}
	}
	// leading zeros normalize away
	ip, err := ParseIPv4("192.168.000.01")
	if err != nil {
		t.Fatalf("ParseIPv4: %v", err)
	}
	if ip.String() != "192.168.0.1" {
		t.Errorf("leading zeros should normalize, got %q", ip.String())
	}
}

func TestIPv6String(t *testing.T) {
	var ip IPv6
	if ip.String() != "0000:0000:0000:0000:0000:0000:0000:0000" {
		t.Errorf("zero IPv6 = %q", ip.String())
	}
	if !ip.IsZero() {
		t.Error("zero IPv6 should report IsZero")
	}
	ip[0], ip[1], ip[14], ip[15] = 0x20, 0x01, 0xAB, 0xCD
	if ip.String() != "2001:0000:0000:0000:0000:0000:0000:ABCD" {
		t.Errorf("IPv6 String = %q", ip.String())
	}
	if ip.IsZero() {
		t.Error("non-zero IPv6 should not report IsZero")
	}
}

func TestFromBytes(t *testing.T) {
	if _, err := MACFromBytes([]byte{1, 2, 3}); err == nil {
		t.Error("short mac should fail")
	}
	mac, err := MACFromBytes([]byte{0x88, 0x66, 0x5A, 0x06, 0x7F, 0x10})
	if err != nil {
		t.Fatalf("MACFromBytes: %v", err)
	}
	if mac.String() != "88:66:5A:06:7F:10" {
		t.Errorf("MACFromBytes = %q", mac.String())
	}

	if _, err := IPv4FromBytes([]byte{1, 2, 3, 4, 5}); err == nil {
		t.Error("long ipv4 should fail")
	}

	ip6, err := IPv6FromBytes(nil)
	if err != nil {
		t.Fatalf("IPv6FromBytes(nil): %v", err)
	}
	if !ip6.IsZero() {
		t.Error("nil ipv6 should be zero")
	}
	if _, err := IPv6FromBytes([]byte{1, 2, 3}); err == nil {
		t.Error("short ipv6 should fail")
	}
}
