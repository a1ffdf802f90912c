package device

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/airsight/airsight/internal/apperr"
)

// RegisterRequest is the payload for registering a monitor.
type RegisterRequest struct {
	Name    string `json:"name"`
	SiteID  string `json:"site_id,omitempty"`
	Network string `json:"network,omitempty"`
	Status  Status `json:"status,omitempty"`
}

// UpdateRequest carries the mutable monitor fields. Nil pointers leave
// the stored value untouched.
type UpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	SiteID *string `json:"site_id,omitempty"`
	Status *Status `json:"status,omitempty"`
}

// Service provides monitor registry operations.
type Service struct {
	repo Repository
}

// NewService creates a new device service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves devices matching the options.
func (s *Service) List(ctx context.Context, tenant string, opts ListOptions) ([]*Device, error) {
	devices, err := s.repo.List(ctx, tenant, opts)
	if err != nil {
		return nil, apperr.Internal("unable to list devices", err)
	}
	if devices == nil {
		devices = []*Device{}
	}
	return devices, nil
}

// Register creates a new monitor record.
func (s *Service) Register(ctx context.Context, tenant string, req RegisterRequest) (*Device, error) {
	if req.Name == "" {
		return nil, apperr.Validation("device name is required")
	}

	status := req.Status
	if status == "" {
		status = StatusNotDeployed
	}

	now := time.Now()
	created, err := s.repo.Insert(ctx, &Device{
		ID:        uuid.New().String(),
		Tenant:    tenant,
		Name:      req.Name,
		SiteID:    req.SiteID,
		Network:   req.Network,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, apperr.Internal("unable to register device", err)
	}
	return created, nil
}

// Update modifies an existing monitor record.
func (s *Service) Update(ctx context.Context, tenant, id string, req UpdateRequest) (*Device, error) {
	existing, err := s.repo.Get(ctx, tenant, id)
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			return nil, apperr.NotFound("device not found")
		}
		return nil, apperr.Internal("unable to update device", err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.SiteID != nil {
		existing.SiteID = *req.SiteID
	}
	if req.Status != nil {
		existing.Status = *req.Status
	}
	existing.UpdatedAt = time.Now()

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			return nil, apperr.NotFound("device not found")
		}
		return nil, apperr.Internal("unable to update device", err)
	}
	return updated, nil
}

// Delete removes a monitor record. Unlike sites, monitors can be retired.
func (s *Service) Delete(ctx context.Context, tenant, id string) error {
	if err := s.repo.Delete(ctx, tenant, id); err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			return apperr.NotFound("device not found")
		}
		return apperr.Internal("unable to delete device", err)
	}
	return nil
}
