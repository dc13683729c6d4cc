package model

import (
	"github.com/inhome/registry/internal/netaddr"
)

// Device represents a registered network endpoint, keyed by hardware address.
type Device struct {
	MAC       netaddr.MAC
	Name      string
	IPv4      netaddr.IPv4
	IPv6      netaddr.IPv6
	DateAdded int64 // seconds since epoch, UTC
	IsTrusted bool
}

// Policy is an access relationship between two devices. Storage is
// positional (from/to) but lookups treat the pair as unordered.
type Policy struct {
	ID         int64
	DeviceFrom netaddr.MAC
	DeviceTo   netaddr.MAC
}

// PolicyView is a policy with both endpoints resolved to device names,
// as returned by listing endpoints.
type PolicyView struct {
	ID       int64
	NameFrom string
	NameTo   string
}

// PolicyPeer identifies the device on the other end of a policy.
type PolicyPeer struct {
	Name string
	MAC  netaddr.MAC
	IPv4 netaddr.IPv4
}

// User holds stored credentials. PasswordHash is SHA3-512(password + salt).
type User struct {
	Username     string
	Salt         string
	PasswordHash []byte
}
