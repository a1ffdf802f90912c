package device

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository is an in-memory implementation of Repository used in
// tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	devices map[string]*Device // keyed by tenant + "/" + id
}

// NewInMemoryRepository creates a new in-memory device repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{devices: make(map[string]*Device)}
}

func memKey(tenant, id string) string {
	return strings.ToLower(tenant) + "/" + id
}

// Get retrieves a device by tenant and id.
func (r *InMemoryRepository) Get(_ context.Context, tenant, id string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[memKey(tenant, id)]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	cp := *d
	return &cp, nil
}

// List retrieves devices matching the options.
func (r *InMemoryRepository) List(_ context.Context, tenant string, opts ListOptions) ([]*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Device
	for _, d := range r.devices {
		if !strings.EqualFold(d.Tenant, tenant) {
			continue
		}
		if opts.SiteID != "" && d.SiteID != opts.SiteID {
			continue
		}
		if opts.Status != "" && d.Status != opts.Status {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// Insert persists a new device, assigning an id when absent.
func (r *InMemoryRepository) Insert(_ context.Context, d *Device) (*Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *d
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	now := time.Now()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.devices[memKey(cp.Tenant, cp.ID)] = &cp

	out := cp
	return &out, nil
}

// Update replaces the stored record.
func (r *InMemoryRepository) Update(_ context.Context, d *Device) (*Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memKey(d.Tenant, d.ID)
	if _, ok := r.devices[key]; !ok {
		return nil, ErrDeviceNotFound
	}
	cp := *d
	cp.UpdatedAt = time.Now()
	r.devices[key] = &cp

	out := cp
	return &out, nil
}

// Delete removes a device.
func (r *InMemoryRepository) Delete(_ context.Context, tenant, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memKey(tenant, id)
	if _, ok := r.devices[key]; !ok {
		return ErrDeviceNotFound
	}
	delete(r.devices, key)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
