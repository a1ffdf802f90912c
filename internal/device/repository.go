package device

import "context"

// Repository defines the interface for device persistence. Implementations
// are tenant scoped: every call carries the tenant explicitly.
type Repository interface {
	// Get retrieves a device by tenant and id.
	Get(ctx context.Context, tenant, id string) (*Device, error)

	// List retrieves devices matching the options.
	List(ctx context.Context, tenant string, opts ListOptions) ([]*Device, error)

	// Insert persists a new device.
	Insert(ctx context.Context, d *Device) (*Device, error)

	// Update replaces the stored record for the device's tenant and id.
	Update(ctx context.Context, d *Device) (*Device, error)

	// Delete removes a device.
	Delete(ctx context.Context, tenant, id string) error
}
