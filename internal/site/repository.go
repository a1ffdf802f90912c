package site

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Filter narrows site lookups. Zero-value fields are ignored.
type Filter struct {
	ID            string
	Name          string
	GeneratedName string
	LatLong       string
	Limit         int
	Skip          int
}

// Repository defines the interface for site persistence. Implementations
// are tenant scoped: every call carries the tenant explicitly.
type Repository interface {
	// Insert persists a new site.
	Insert(ctx context.Context, s *Site) (*Site, error)

	// Update replaces the stored record for the site's tenant and id.
	Update(ctx context.Context, s *Site) (*Site, error)

	// List retrieves sites matching the filter, unfiltered by sentinel.
	List(ctx context.Context, tenant string, f Filter) ([]*Site, error)
}

// InMemoryRepository is an in-memory implementation of Repository used in
// tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	sites map[string]*Site // keyed by tenant + "/" + id
}

// NewInMemoryRepository creates a new in-memory site repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{sites: make(map[string]*Site)}
}

func memKey(tenant, id string) string {
	return strings.ToLower(tenant) + "/" + id
}

// Insert persists a new site, assigning an id when absent.
func (r *InMemoryRepository) Insert(_ context.Context, s *Site) (*Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	now := time.Now()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.sites[memKey(cp.Tenant, cp.ID)] = &cp

	out := cp
	return &out, nil
}

// Update replaces the stored record.
func (r *InMemoryRepository) Update(_ context.Context, s *Site) (*Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memKey(s.Tenant, s.ID)
	if _, ok := r.sites[key]; !ok {
		return nil, ErrSiteNotFound
	}
	cp := *s
	cp.UpdatedAt = time.Now()
	r.sites[key] = &cp

	out := cp
	return &out, nil
}

// List retrieves sites matching the filter.
func (r *InMemoryRepository) List(_ context.Context, tenant string, f Filter) ([]*Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Site
	for _, s := range r.sites {
		if !strings.EqualFold(s.Tenant, tenant) {
			continue
		}
		if f.ID != "" && s.ID != f.ID {
			continue
		}
		if f.Name != "" && s.Name != f.Name {
			continue
		}
		if f.GeneratedName != "" && s.GeneratedName != f.GeneratedName {
			continue
		}
		if f.LatLong != "" && s.LatLong != f.LatLong {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}

	if f.Skip > 0 {
		if f.Skip >= len(out) {
			return nil, nil
		}
		out = out[f.Skip:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
