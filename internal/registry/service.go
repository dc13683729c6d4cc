// Package registry validates and translates external input before
// delegating to the transactional store. It is the façade the HTTP layer
// calls.
package registry

import (
	"context"
	"fmt"

	"github.com/inhome/registry/internal/model"
	"github.com/inhome/registry/internal/netaddr"
)

// maxNameLength is the longest device name accepted.
const maxNameLength = 30

// ValidationError reports a missing or oversized input field. It is
// always client-caused.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Store is the persistence the service needs, implemented by store.Store.
type Store interface {
	AddDevice(ctx context.Context, name string, mac netaddr.MAC, ipv4 netaddr.IPv4) (bool, error)
	RemoveDevice(ctx context.Context, mac netaddr.MAC) (bool, error)
	RenameDevice(ctx context.Context, oldName, newName string) (bool, error)
	GetAllDevices(ctx context.Context) ([]model.Device, error)
	GetOneDevice(ctx context.Context, mac netaddr.MAC) (model.Device, bool, error)
	AddPolicy(ctx context.Context, nameFrom, nameTo string) (bool, error)
	RemovePolicyByID(ctx context.Context, policyID int64) (bool, error)
	GetAllPolicies(ctx context.Context) ([]model.PolicyView, error)
	GetPoliciesForDeviceName(ctx context.Context, name string) ([]model.PolicyPeer, bool, error)
	CountRevisions(ctx context.Context) (int64, error)
}

// Service implements the device and policy use cases over the store.
type Service struct {
	store Store
}

// NewService creates the registry service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

func validateName(field, name string) error {
	if name == "" {
		return &ValidationError{Field: field, Reason: "required"}
	}
	if len([]rune(name)) > maxNameLength {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("longer than %d characters", maxNameLength)}
	}
	return nil
}

// AddDevice registers a device. Returns false without error when the
// insert was rejected by the store as a soft failure.
func (s *Service) AddDevice(ctx context.Context, name, macText, ipText string) (bool, error) {
	if err := validateName("name", name); err != nil {
		return false, err
	}
	if macText == "" {
		return false, &ValidationError{Field: "mac", Reason: "required"}
	}
	if ipText == "" {
		return false, &ValidationError{Field: "ip", Reason: "required"}
	}
	mac, err := netaddr.ParseMAC(macText)
	if err != nil {
		return false, err
	}
	ipv4, err := netaddr.ParseIPv4(ipText)
	if err != nil {
		return false, err
	}
	return s.store.AddDevice(ctx, name, mac, ipv4)
}

// RemoveDevice deletes a device and its policies. Returns false without
// error when no device has that hardware address.
func (s *Service) RemoveDevice(ctx context.Context, macText string) (bool, error) {
	if macText == "" {
		return false, &ValidationError{Field: "mac", Reason: "required"}
	}
	mac, err := netaddr.ParseMAC(macText)
	if err != nil {
		return false, err
	}
	return s.store.RemoveDevice(ctx, mac)
}

// RenameDevice changes a device name. Returns false without error when
// the old name does not match exactly one device.
func (s *Service) RenameDevice(ctx context.Context, oldName, newName string) (bool, error) {
	if oldName == "" {
		return false, &ValidationError{Field: "old", Reason: "required"}
	}
	if err := validateName("new", newName); err != nil {
		return false, err
	}
	return s.store.RenameDevice(ctx, oldName, newName)
}

// ListDevices returns every registered device.
func (s *Service) ListDevices(ctx context.Context) ([]model.Device, error) {
	return s.store.GetAllDevices(ctx)
}

// GetDevice returns one device by hardware address text. The second
// return value is false when no such device exists.
func (s *Service) GetDevice(ctx context.Context, macText string) (model.Device, bool, error) {
	if macText == "" {
		return model.Device{}, false, &ValidationError{Field: "mac", Reason: "required"}
	}
	mac, err := netaddr.ParseMAC(macText)
	if err != nil {
		return model.Device{}, false, err
	}
	return s.store.GetOneDevice(ctx, mac)
}

// AddPolicy creates a policy between two devices identified by name.
// Returns false without error when either name does not resolve to
// exactly one device.
func (s *Service) AddPolicy(ctx context.Context, nameFrom, nameTo string) (bool, error) {
	if nameFrom == "" {
		return false, &ValidationError{Field: "from", Reason: "required"}
	}
	if nameTo == "" {
		return false, &ValidationError{Field: "to", Reason: "required"}
	}
	return s.store.AddPolicy(ctx, nameFrom, nameTo)
}

// RemovePolicy deletes a policy by id. Returns false without error when
// no such policy exists.
func (s *Service) RemovePolicy(ctx context.Context, policyID int64) (bool, error) {
	return s.store.RemovePolicyByID(ctx, policyID)
}

// ListPolicies returns every policy with endpoint names resolved.
func (s *Service) ListPolicies(ctx context.Context) ([]model.PolicyView, error) {
	return s.store.GetAllPolicies(ctx)
}

// ListPoliciesForDevice returns the peers of every policy referencing a
// device with the given name. The second return value is false when no
// device has that name.
func (s *Service) ListPoliciesForDevice(ctx context.Context, name string) ([]model.PolicyPeer, bool, error) {
	if name == "" {
		return nil, false, &ValidationError{Field: "name", Reason: "required"}
	}
	return s.store.GetPoliciesForDeviceName(ctx, name)
}

// RevisionCount reports how many mutations have been committed.
func (s *Service) RevisionCount(ctx context.Context) (int64, error) {
	return s.store.CountRevisions(ctx)
}
