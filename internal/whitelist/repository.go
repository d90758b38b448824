package whitelist

import "context"

// Repository defines the interface for whitelist persistence.
type Repository interface {
	// GetByParent retrieves the whitelist owned by a parent device.
	GetByParent(ctx context.Context, parentDeviceID string) (*Whitelist, error)

	// Ensure creates the whitelist if it does not already exist. An
	// existing row is left untouched, making the call safe to repeat.
	Ensure(ctx context.Context, wl *Whitelist) error

	// Update writes all three collections and the update timestamp.
	Update(ctx context.Context, wl *Whitelist) error
}
