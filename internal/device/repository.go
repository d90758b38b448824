package device

import (
	"context"
	"time"
)

// Repository defines the interface for device persistence.
type Repository interface {
	// Get retrieves a device by ID.
	Get(ctx context.Context, deviceID string) (*Device, error)

	// GetLatestByUser retrieves the most recently created device for an
	// account, or ErrDeviceNotFound if the account has none.
	GetLatestByUser(ctx context.Context, userID string) (*Device, error)

	// Create creates a new device.
	Create(ctx context.Context, device *Device) error

	// Update updates an existing device.
	Update(ctx context.Context, device *Device) error

	// SetParent sets a child device's parent reference.
	SetParent(ctx context.Context, childDeviceID, parentDeviceID string, now time.Time) error

	// ListByParent retrieves all devices whose parent reference equals the
	// given device ID, oldest first.
	ListByParent(ctx context.Context, parentDeviceID string) ([]*Device, error)

	// ListChildIDs retrieves the IDs of all devices whose parent reference
	// equals the given device ID, oldest first.
	ListChildIDs(ctx context.Context, parentDeviceID string) ([]string, error)

	// ListCoParents retrieves other parent-role devices linked to any of the
	// given device's children, excluding the device itself.
	ListCoParents(ctx context.Context, parentDeviceID string) ([]*Device, error)
}
