package registry

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inhome/registry/internal/model"
	"github.com/inhome/registry/internal/netaddr"
)

// fakeStore records calls and returns canned results.
type fakeStore struct {
	addDeviceCalled bool
	lastName        string
	lastMAC         netaddr.MAC
	lastIPv4        netaddr.IPv4
	result          bool
	err             error
}

func (f *fakeStore) AddDevice(_ context.Context, name string, mac netaddr.MAC, ipv4 netaddr.IPv4) (bool, error) {
	f.addDeviceCalled = true
	f.lastName, f.lastMAC, f.lastIPv4 = name, mac, ipv4
	return f.result, f.err
}

func (f *fakeStore) RemoveDevice(_ context.Context, mac netaddr.MAC) (bool, error) {
	f.lastMAC = mac
	return f.result, f.err
}

func (f *fakeStore) RenameDevice(_ context.Context, oldName, newName string) (bool, error) {
	f.lastName = newName
	return f.result, f.err
}

func (f *fakeStore) GetAllDevices(_ context.Context) ([]model.Device, error) {
	return nil, f.err
}

func (f *fakeStore) GetOneDevice(_ context.Context, mac netaddr.MAC) (model.Device, bool, error) {
	f.lastMAC = mac
	return model.Device{MAC: mac}, f.result, f.err
}

func (f *fakeStore) AddPolicy(_ context.Context, nameFrom, nameTo string) (bool, error) {
	return f.result, f.err
}

func (f *fakeStore) RemovePolicyByID(_ context.Context, policyID int64) (bool, error) {
	return f.result, f.err
}

func (f *fakeStore) GetAllPolicies(_ context.Context) ([]model.PolicyView, error) {
	return nil, f.err
}

func (f *fakeStore) GetPoliciesForDeviceName(_ context.Context, name string) ([]model.PolicyPeer, bool, error) {
	return nil, f.result, f.err
}

func (f *fakeStore) CountRevisions(_ context.Context) (int64, error) {
	return 0, f.err
}

func TestAddDeviceValidation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		label string
		name  string
		mac   string
		ip    string
		field string
	}{
		{"missing name", "", "88:66:5A:06:7F:10", "192.168.0.1", "name"},
		{"missing mac", "lamp", "", "192.168.0.1", "mac"},
		{"missing ip", "lamp", "88:66:5A:06:7F:10", "", "ip"},
		{"oversized name", strings.Repeat("x", 31), "88:66:5A:06:7F:10", "192.168.0.1", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			fake := &fakeStore{}
			svc := NewService(fake)
			_, err := svc.AddDevice(ctx, tt.name, tt.mac, tt.ip)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.False(t, fake.addDeviceCalled, "store must not be reached on bad input")
		})
	}
}

func TestAddDeviceMalformedAddresses(t *testing.T) {
	ctx := context.Background()
	fake := &fakeStore{}
	svc := NewService(fake)

	_, err := svc.AddDevice(ctx, "lamp", "not-a-mac", "192.168.0.1")
	var fe *netaddr.FormatError
	require.ErrorAs(t, err, &fe)

	_, err = svc.AddDevice(ctx, "lamp", "88:66:5A:06:7F:10", "999.0.0.1")
	require.ErrorAs(t, err, &fe)

	assert.False(t, fake.addDeviceCalled, "store must not be reached on malformed input")
}

func TestAddDevicePassesParsedAddresses(t *testing.T) {
	ctx := context.Background()
	fake := &fakeStore{result: true}
	svc := NewService(fake)

	ok, err := svc.AddDevice(ctx, "lamp", "88.66.5a.06.7f.10", "192.168.0.01")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, netaddr.MAC{0x88, 0x66, 0x5A, 0x06, 0x7F, 0x10}, fake.lastMAC)
	assert.Equal(t, netaddr.IPv4{192, 168, 0, 1}, fake.lastIPv4)
	assert.Equal(t, "lamp", fake.lastName)
}

func TestRemoveDeviceNotFoundIsSoft(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeStore{result: false})

	ok, err := svc.RemoveDevice(ctx, "88:66:5A:06:7F:10")
	require.NoError(t, err)
	assert.False(t, ok, "missing device is a soft outcome, not an error")
}

func TestRenameDeviceValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeStore{})

	_, err := svc.RenameDevice(ctx, "", "new")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = svc.RenameDevice(ctx, "old", strings.Repeat("y", 31))
	require.ErrorAs(t, err, &ve)
}

func TestAddPolicyValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeStore{})

	var ve *ValidationError
	_, err := svc.AddPolicy(ctx, "", "b")
	require.ErrorAs(t, err, &ve)
	_, err = svc.AddPolicy(ctx, "a", "")
	require.ErrorAs(t, err, &ve)
}

func TestStoreErrorPassesThrough(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection reset")
	svc := NewService(&fakeStore{err: storeErr})

	_, err := svc.RemoveDevice(ctx, "88:66:5A:06:7F:10")
	require.ErrorIs(t, err, storeErr)
}

func TestGetDeviceMalformedMAC(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeStore{})

	_, _, err := svc.GetDevice(ctx, "zz:zz")
	var fe *netaddr.FormatError
	require.ErrorAs(t, err, &fe)
}
