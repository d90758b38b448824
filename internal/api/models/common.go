// Package models provides request and response models for the KidTunes API.
// Field names match the wire contract consumed by the client application.
package models

import (
	"encoding/json"
	"time"
)

// DeviceRole represents the role assigned to a device.
// A device with no assigned role is represented as a nil *DeviceRole.
type DeviceRole string

const (
	RoleParent DeviceRole = "parent"
	RoleChild  DeviceRole = "child"
)

// Valid reports whether the role is one of the assignable roles.
func (r DeviceRole) Valid() bool {
	return r == RoleParent || r == RoleChild
}

// PairingStatus represents the state of a pairing request.
type PairingStatus string

const (
	PairingPending  PairingStatus = "pending"
	PairingApproved PairingStatus = "approved"
	PairingRejected PairingStatus = "rejected"
)

// Message is the body of every error response.
type Message struct {
	Message string `json:"message"`
}

// Timestamp is a helper type for time.Time with custom JSON formatting.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
