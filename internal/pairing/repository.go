package pairing

import "context"

// Repository defines the interface for pairing request persistence.
type Repository interface {
	// Get retrieves a request by ID. Returns ErrRequestNotFound if no
	// request exists.
	Get(ctx context.Context, requestID string) (*Request, error)

	// GetPending returns the pending request for a (child, parent) pair,
	// or ErrRequestNotFound if none exists.
	GetPending(ctx context.Context, childDeviceID, parentDeviceID string) (*Request, error)

	// Create stores a new request.
	Create(ctx context.Context, req *Request) error

	// Resolve transitions a request from pending to the given terminal
	// status. Returns false if the request was not pending, so concurrent
	// responders cannot both win.
	Resolve(ctx context.Context, requestID string, status Status) (bool, error)

	// ListByParent returns all requests addressed to a parent device,
	// most recent first.
	ListByParent(ctx context.Context, parentDeviceID string) ([]*Request, error)
}
