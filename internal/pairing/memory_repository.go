package pairing

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use the PostgreSQL
// implementation.
type InMemoryRepository struct {
	mu       sync.RWMutex
	requests map[string]*Request
}

// NewInMemoryRepository creates a new in-memory pairing repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{requests: make(map[string]*Request)}
}

// Get retrieves a request by ID.
func (r *InMemoryRepository) Get(_ context.Context, requestID string) (*Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[requestID]
	if !ok {
		return nil, ErrRequestNotFound
	}

	return copyRequest(req), nil
}

// GetPending returns the pending request for a (child, parent) pair.
func (r *InMemoryRepository) GetPending(_ context.Context, childDeviceID, parentDeviceID string) (*Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *Request
	for _, req := range r.requests {
		if req.ChildDeviceID != childDeviceID || req.ParentDeviceID != parentDeviceID {
			continue
		}
		if req.Status != StatusPending {
			continue
		}
		if latest == nil || req.CreatedAt.After(latest.CreatedAt) {
			latest = req
		}
	}

	if latest == nil {
		return nil, ErrRequestNotFound
	}

	return copyRequest(latest), nil
}

// Create stores a new request.
func (r *InMemoryRepository) Create(_ context.Context, req *Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests[req.ID] = copyRequest(req)
	return nil
}

// Resolve transitions a request from pending to a terminal status.
func (r *InMemoryRepository) Resolve(_ context.Context, requestID string, status Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[requestID]
	if !ok {
		return false, ErrRequestNotFound
	}

	if req.Status != StatusPending {
		return false, nil
	}

	req.Status = status
	return true, nil
}

// ListByParent returns all requests addressed to a parent device, most
// recent first.
func (r *InMemoryRepository) ListByParent(_ context.Context, parentDeviceID string) ([]*Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var requests []*Request
	for _, req := range r.requests {
		if req.ParentDeviceID == parentDeviceID {
			requests = append(requests, copyRequest(req))
		}
	}

	sort.Slice(requests, func(i, j int) bool {
		if requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].ID > requests[j].ID
		}
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})

	return requests, nil
}

// copyRequest creates a copy of a request.
func copyRequest(req *Request) *Request {
	if req == nil {
		return nil
	}
	requestCopy := *req
	return &requestCopy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
