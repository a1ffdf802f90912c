// Package counter provides the per-tenant monotonic counter used to mint
// sequential site names. Exactly one increment happens per successful name
// generation; the counter is never decremented or reset on this path.
package counter

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// CounterName is the fixed identity of the site-name counter document.
const CounterName = "site_0"

// ErrCounterNotFound is returned when the tenant's counter document has
// not been provisioned.
var ErrCounterNotFound = errors.New("counter not found")

// Repository defines the interface for counter persistence.
type Repository interface {
	// Next atomically increments the tenant's counter and returns the
	// new value.
	Next(ctx context.Context, tenant string) (int64, error)
}

// InMemoryRepository is an in-memory implementation of Repository used in
// tests. Counters must be seeded with Seed before use, mirroring the
// provisioning requirement of the persistent implementation.
type InMemoryRepository struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewInMemoryRepository creates a new in-memory counter repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{counts: make(map[string]int64)}
}

// Seed provisions the tenant's counter at the given value.
func (r *InMemoryRepository) Seed(tenant string, value int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[strings.ToLower(tenant)] = value
}

// Next atomically increments the tenant's counter.
func (r *InMemoryRepository) Next(_ context.Context, tenant string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(tenant)
	count, ok := r.counts[key]
	if !ok {
		return 0, ErrCounterNotFound
	}
	count++
	r.counts[key] = count
	return count, nil
}
