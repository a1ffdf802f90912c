package airqloud

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for AirQloud persistence.
type Repository interface {
	// List retrieves all AirQlouds for a tenant.
	List(ctx context.Context, tenant string) ([]*AirQloud, error)

	// Insert persists a new AirQloud.
	Insert(ctx context.Context, a *AirQloud) (*AirQloud, error)
}

// InMemoryRepository is an in-memory implementation of Repository used in
// tests.
type InMemoryRepository struct {
	mu        sync.RWMutex
	airqlouds map[string]*AirQloud
}

// NewInMemoryRepository creates a new in-memory AirQloud repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{airqlouds: make(map[string]*AirQloud)}
}

// List retrieves all AirQlouds for a tenant.
func (r *InMemoryRepository) List(_ context.Context, tenant string) ([]*AirQloud, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*AirQloud
	for _, a := range r.airqlouds {
		if strings.EqualFold(a.Tenant, tenant) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Insert persists a new AirQloud, assigning an id when absent.
func (r *InMemoryRepository) Insert(_ context.Context, a *AirQloud) (*AirQloud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *a
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	now := time.Now()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.airqlouds[cp.Tenant+"/"+cp.ID] = &cp

	out := cp
	return &out, nil
}
