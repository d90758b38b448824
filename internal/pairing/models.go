// Package pairing implements the request/approval state machine that links
// a child device to a parent device.
//
// A request moves from pending to exactly one of approved or rejected;
// terminal states are immutable. At most one pending request exists per
// (child, parent) pair: re-creating one returns the existing request.
package pairing

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrRequestNotFound = errors.New("pairing request not found")
)

// Service errors. Each maps to a distinct user-facing failure; validation
// stops at the first match.
var (
	ErrMissingDeviceIDs     = errors.New("child and parent device IDs required")
	ErrChildDeviceNotFound  = errors.New("child device not found")
	ErrNotChildDevice       = errors.New("device is not a child device")
	ErrChildAlreadyPaired   = errors.New("child device already has a parent")
	ErrParentDeviceNotFound = errors.New("parent device not found")
	ErrNotParentDevice      = errors.New("device is not a parent device")
	ErrAlreadyResolved      = errors.New("request already processed")
	ErrInvalidDecision      = errors.New("valid status required (approved/rejected)")
)

// Status represents the state of a pairing request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is a proposal to link a child device to a parent device.
type Request struct {
	ID             string
	ChildDeviceID  string
	ParentDeviceID string
	Status         Status
	CreatedAt      time.Time
}
