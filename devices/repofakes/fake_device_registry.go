package fakedeviceregistry

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-oauth-grants/devices"
)

var _ devices.Registry = (*FakeDeviceRegistry)(nil)

type FakeDeviceRegistry struct {
	devices map[string][]*devices.Device
	lock    sync.RWMutex

	// Failure injection
	ListErr   error
	UpsertErr error
}

func NewFakeDeviceRegistry() *FakeDeviceRegistry {
	return &FakeDeviceRegistry{devices: make(map[string][]*devices.Device)}
}

func (r *FakeDeviceRegistry) List(_ context.Context, uid string) ([]*devices.Device, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	return append([]*devices.Device(nil), r.devices[uid]...), nil
}

func (r *FakeDeviceRegistry) Upsert(_ context.Context, device *devices.Device) (*devices.Device, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.UpsertErr != nil {
		return nil, r.UpsertErr
	}
	stored := *device
	for i, d := range r.devices[stored.UID] {
		if (stored.ID != "" && d.ID == stored.ID) ||
			(stored.RefreshTokenID != "" && d.RefreshTokenID == stored.RefreshTokenID) ||
			(stored.SessionTokenID != "" && d.SessionTokenID == stored.SessionTokenID) {
			stored.ID = d.ID
			r.devices[stored.UID][i] = &stored
			return &stored, nil
		}
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	r.devices[stored.UID] = append(r.devices[stored.UID], &stored)
	return &stored, nil
}
