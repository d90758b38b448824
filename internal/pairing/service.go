package pairing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/device"
)

// DeviceStore is the subset of device persistence the pairing service needs:
// role checks on both ends of a request, and linking the child on approval.
// Implemented by the device repository.
type DeviceStore interface {
	Get(ctx context.Context, deviceID string) (*device.Device, error)
	SetParent(ctx context.Context, childDeviceID, parentDeviceID string, now time.Time) error
}

// Service provides pairing request operations.
type Service struct {
	repo    Repository
	devices DeviceStore
}

// NewService creates a new pairing service.
func NewService(repo Repository, devices DeviceStore) *Service {
	return &Service{repo: repo, devices: devices}
}

// Create validates both devices and opens a pairing request from a child
// device to a parent device. If a pending request for the pair already
// exists it is returned instead of creating a duplicate; the second return
// value reports whether a new request was created.
func (s *Service) Create(ctx context.Context, input *models.PairingCreateRequest) (*models.PairingRequest, bool, error) {
	if input.ChildDeviceID == "" || input.ParentDeviceID == "" {
		return nil, false, ErrMissingDeviceIDs
	}

	child, err := s.devices.Get(ctx, input.ChildDeviceID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return nil, false, ErrChildDeviceNotFound
		}
		return nil, false, err
	}
	if !child.IsChild() {
		return nil, false, ErrNotChildDevice
	}
	if child.ParentDeviceID != nil {
		return nil, false, ErrChildAlreadyPaired
	}

	parent, err := s.devices.Get(ctx, input.ParentDeviceID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return nil, false, ErrParentDeviceNotFound
		}
		return nil, false, err
	}
	if !parent.IsParent() {
		return nil, false, ErrNotParentDevice
	}

	existing, err := s.repo.GetPending(ctx, input.ChildDeviceID, input.ParentDeviceID)
	if err == nil {
		result := toAPIRequest(existing)
		return &result, false, nil
	}
	if !errors.Is(err, ErrRequestNotFound) {
		return nil, false, err
	}

	req := &Request{
		ID:             "pr_" + uuid.New().String()[:22],
		ChildDeviceID:  input.ChildDeviceID,
		ParentDeviceID: input.ParentDeviceID,
		Status:         StatusPending,
		CreatedAt:      time.Now(),
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, false, err
	}

	result := toAPIRequest(req)
	return &result, true, nil
}

// Respond resolves a pending request as approved or rejected. Approval links
// the child device to the parent and is only valid while the child is still
// unlinked. A request that has already been resolved cannot be resolved
// again, even to the same status.
func (s *Service) Respond(ctx context.Context, requestID string, input *models.PairingRespondRequest) (*models.PairingRequest, error) {
	status := Status(input.Status)
	if status != StatusApproved && status != StatusRejected {
		return nil, ErrInvalidDecision
	}

	req, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, ErrAlreadyResolved
	}

	// Creation rejects already-paired children, but the child may have been
	// linked through another pending request since. Approval is the
	// authoritative gate, so re-check before resolving.
	if status == StatusApproved {
		child, err := s.devices.Get(ctx, req.ChildDeviceID)
		if err != nil {
			return nil, err
		}
		if child.ParentDeviceID != nil {
			return nil, ErrChildAlreadyPaired
		}
	}

	resolved, err := s.repo.Resolve(ctx, requestID, status)
	if err != nil {
		return nil, err
	}
	if !resolved {
		// Another responder got there first.
		return nil, ErrAlreadyResolved
	}

	if status == StatusApproved {
		if err := s.devices.SetParent(ctx, req.ChildDeviceID, req.ParentDeviceID, time.Now()); err != nil {
			return nil, err
		}
	}

	req.Status = status
	result := toAPIRequest(req)
	return &result, nil
}

// ListForParent returns all requests addressed to a parent device, most
// recent first. The parent must exist and have the parent role.
func (s *Service) ListForParent(ctx context.Context, parentDeviceID string) ([]models.PairingRequest, error) {
	parent, err := s.devices.Get(ctx, parentDeviceID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return nil, ErrParentDeviceNotFound
		}
		return nil, err
	}
	if !parent.IsParent() {
		return nil, ErrNotParentDevice
	}

	requests, err := s.repo.ListByParent(ctx, parentDeviceID)
	if err != nil {
		return nil, err
	}

	results := make([]models.PairingRequest, 0, len(requests))
	for _, req := range requests {
		results = append(results, toAPIRequest(req))
	}
	return results, nil
}

// toAPIRequest converts a domain Request to an API PairingRequest.
func toAPIRequest(req *Request) models.PairingRequest {
	return models.PairingRequest{
		ID:             req.ID,
		ChildDeviceID:  req.ChildDeviceID,
		ParentDeviceID: req.ParentDeviceID,
		Status:         models.PairingStatus(req.Status),
		CreatedAt:      models.Timestamp(req.CreatedAt),
	}
}
