package device

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use the PostgreSQL
// implementation.
type InMemoryRepository struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewInMemoryRepository creates a new in-memory device repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{devices: make(map[string]*Device)}
}

// Get retrieves a device by ID.
func (r *InMemoryRepository) Get(_ context.Context, deviceID string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[deviceID]
	if !ok {
		return nil, ErrDeviceNotFound
	}

	return copyDevice(device), nil
}

// GetLatestByUser retrieves the most recently created device for an account.
func (r *InMemoryRepository) GetLatestByUser(_ context.Context, userID string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *Device
	for _, device := range r.devices {
		if device.UserID != userID {
			continue
		}
		if latest == nil || device.CreatedAt.After(latest.CreatedAt) {
			latest = device
		}
	}

	if latest == nil {
		return nil, ErrDeviceNotFound
	}

	return copyDevice(latest), nil
}

// Create creates a new device.
func (r *InMemoryRepository) Create(_ context.Context, device *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices[device.ID] = copyDevice(device)
	return nil
}

// Update updates an existing device's name and role.
func (r *InMemoryRepository) Update(_ context.Context, device *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.devices[device.ID]
	if !ok {
		return ErrDeviceNotFound
	}

	existing.Name = device.Name
	existing.Role = device.Role
	existing.UpdatedAt = device.UpdatedAt
	return nil
}

// SetParent sets a child device's parent reference.
func (r *InMemoryRepository) SetParent(_ context.Context, childDeviceID, parentDeviceID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	child, ok := r.devices[childDeviceID]
	if !ok {
		return ErrDeviceNotFound
	}

	parentID := parentDeviceID
	child.ParentDeviceID = &parentID
	child.UpdatedAt = now
	return nil
}

// ListByParent retrieves all devices whose parent reference equals the given
// device ID.
func (r *InMemoryRepository) ListByParent(_ context.Context, parentDeviceID string) ([]*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var children []*Device
	for _, device := range r.devices {
		if device.ParentDeviceID != nil && *device.ParentDeviceID == parentDeviceID {
			children = append(children, copyDevice(device))
		}
	}

	sortByCreation(children)
	return children, nil
}

// ListChildIDs retrieves the IDs of all devices whose parent reference equals
// the given device ID.
func (r *InMemoryRepository) ListChildIDs(ctx context.Context, parentDeviceID string) ([]string, error) {
	children, err := r.ListByParent(ctx, parentDeviceID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(children))
	for _, child := range children {
		ids = append(ids, child.ID)
	}
	return ids, nil
}

// ListCoParents retrieves other parent-role devices linked to any of the
// given device's children, excluding the device itself.
func (r *InMemoryRepository) ListCoParents(_ context.Context, parentDeviceID string) ([]*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var coParents []*Device

	for _, child := range r.devices {
		if child.ParentDeviceID == nil || *child.ParentDeviceID != parentDeviceID {
			continue
		}
		for _, other := range r.devices {
			if other.ID == parentDeviceID || other.Role != RoleParent || seen[other.ID] {
				continue
			}
			if other.ParentDeviceID != nil && *other.ParentDeviceID == child.ID {
				seen[other.ID] = true
				coParents = append(coParents, copyDevice(other))
			}
		}
	}

	sortByCreation(coParents)
	return coParents, nil
}

func sortByCreation(devices []*Device) {
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].CreatedAt.Equal(devices[j].CreatedAt) {
			return devices[i].ID < devices[j].ID
		}
		return devices[i].CreatedAt.Before(devices[j].CreatedAt)
	})
}

// copyDevice creates a deep copy of a device.
func copyDevice(d *Device) *Device {
	if d == nil {
		return nil
	}

	deviceCopy := &Device{
		ID:        d.ID,
		Name:      d.Name,
		Role:      d.Role,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}

	if d.ParentDeviceID != nil {
		val := *d.ParentDeviceID
		deviceCopy.ParentDeviceID = &val
	}

	return deviceCopy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
