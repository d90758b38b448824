package device

import (
	"context"
	"errors"
	"time"

	"github.com/kidtunes/kidtunes/internal/api/models"
)

// WhitelistProvisioner creates a whitelist for a device when it becomes a
// parent. Implemented by the whitelist service.
type WhitelistProvisioner interface {
	EnsureForParent(ctx context.Context, parentDeviceID string) error
}

// Service provides device operations.
type Service struct {
	repo       Repository
	whitelists WhitelistProvisioner
}

// NewService creates a new device service.
func NewService(repo Repository, whitelists WhitelistProvisioner) *Service {
	return &Service{repo: repo, whitelists: whitelists}
}

// Register creates a device for an account. The role is optional; devices
// registered without one stay unset until the role-selection step. A device
// registered directly as a parent gets its whitelist immediately.
//
// Whether the account already has a device is the caller's concern: login
// flows probe for an existing device before registering.
func (s *Service) Register(ctx context.Context, input *models.DeviceRegisterRequest) (*models.Device, error) {
	if input.UserID == "" {
		return nil, ErrUserIDRequired
	}

	role := RoleUnset
	if input.DeviceType != nil {
		if !input.DeviceType.Valid() {
			return nil, ErrInvalidRole
		}
		role = Role(*input.DeviceType)
	}

	now := time.Now()
	device := &Device{
		ID:        NewID(),
		Name:      defaultName(role),
		Role:      role,
		UserID:    input.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, device); err != nil {
		return nil, err
	}

	if device.IsParent() {
		if err := s.whitelists.EnsureForParent(ctx, device.ID); err != nil {
			return nil, err
		}
	}

	result := s.toAPIDevice(device, []string{})
	return &result, nil
}

// Get retrieves a device by ID, including its current child device IDs when
// it is a parent.
func (s *Service) Get(ctx context.Context, deviceID string) (*models.Device, error) {
	device, err := s.repo.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	childIDs, err := s.childIDs(ctx, device)
	if err != nil {
		return nil, err
	}

	result := s.toAPIDevice(device, childIDs)
	return &result, nil
}

// LatestForUser retrieves the most recently created device for an account.
func (s *Service) LatestForUser(ctx context.Context, userID string) (*models.Device, error) {
	device, err := s.repo.GetLatestByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	childIDs, err := s.childIDs(ctx, device)
	if err != nil {
		return nil, err
	}

	result := s.toAPIDevice(device, childIDs)
	return &result, nil
}

// Update renames a device and/or assigns its role. Both fields are optional;
// absent fields are left unchanged. Assigning the parent role provisions the
// device's whitelist; the operation is idempotent and safe to repeat.
func (s *Service) Update(ctx context.Context, deviceID string, input *models.DeviceUpdateRequest) (*models.Device, error) {
	device, err := s.repo.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != "" {
		device.Name = *input.Name
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return nil, ErrInvalidRole
		}
		device.Role = Role(*input.Type)
	}
	device.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, device); err != nil {
		return nil, err
	}

	if input.Type != nil && device.IsParent() {
		if err := s.whitelists.EnsureForParent(ctx, device.ID); err != nil {
			return nil, err
		}
	}

	childIDs, err := s.childIDs(ctx, device)
	if err != nil {
		return nil, err
	}

	result := s.toAPIDevice(device, childIDs)
	return &result, nil
}

// Linked retrieves the devices linked to the given device: for a parent, its
// children plus any other parents linked to those children; for a child, its
// parent. Devices with no links get an empty list.
func (s *Service) Linked(ctx context.Context, deviceID string) ([]models.Device, error) {
	device, err := s.repo.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	linked := []models.Device{}

	switch {
	case device.IsParent():
		children, err := s.repo.ListByParent(ctx, deviceID)
		if err != nil {
			return nil, err
		}
		coParents, err := s.repo.ListCoParents(ctx, deviceID)
		if err != nil {
			return nil, err
		}
		for _, d := range append(children, coParents...) {
			linked = append(linked, s.toAPIDevice(d, []string{}))
		}

	case device.IsChild() && device.ParentDeviceID != nil:
		parent, err := s.repo.Get(ctx, *device.ParentDeviceID)
		if err != nil {
			if errors.Is(err, ErrDeviceNotFound) {
				return linked, nil
			}
			return nil, err
		}
		linked = append(linked, s.toAPIDevice(parent, []string{}))
	}

	return linked, nil
}

// childIDs resolves a parent device's children; non-parents get an empty
// list.
func (s *Service) childIDs(ctx context.Context, device *Device) ([]string, error) {
	if !device.IsParent() {
		return []string{}, nil
	}

	ids, err := s.repo.ListChildIDs(ctx, device.ID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// toAPIDevice converts a domain Device to an API Device.
func (s *Service) toAPIDevice(d *Device, childIDs []string) models.Device {
	var role *models.DeviceRole
	if d.Role != RoleUnset {
		r := models.DeviceRole(d.Role)
		role = &r
	}

	return models.Device{
		ID:             d.ID,
		Name:           d.Name,
		Type:           role,
		UserID:         d.UserID,
		CreatedAt:      models.Timestamp(d.CreatedAt),
		UpdatedAt:      models.Timestamp(d.UpdatedAt),
		ParentDeviceID: d.ParentDeviceID,
		ChildDeviceIDs: childIDs,
	}
}

func defaultName(role Role) string {
	switch role {
	case RoleParent:
		return "Parent Device"
	case RoleChild:
		return "Child Device"
	default:
		return "My Device"
	}
}
