// Package device provides device identity issuance, role assignment and
// linked-device queries.
package device

import (
	"crypto/rand"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Repository errors.
var (
	ErrDeviceNotFound = errors.New("device not found")
)

// Service errors.
var (
	ErrUserIDRequired = errors.New("user ID required")
	ErrInvalidRole    = errors.New("invalid device role")
)

// Role represents a device's assigned role. The zero value means no role has
// been selected yet.
type Role string

const (
	RoleUnset  Role = ""
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// Device represents a registered endpoint belonging to one account.
// ParentDeviceID is set only once a pairing request targeting this device
// has been approved.
type Device struct {
	ID             string
	Name           string
	Role           Role
	UserID         string
	ParentDeviceID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsParent reports whether the device has the parent role.
func (d *Device) IsParent() bool { return d.Role == RoleParent }

// IsChild reports whether the device has the child role.
func (d *Device) IsChild() bool { return d.Role == RoleChild }

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a fresh device id: the base36 millisecond timestamp, a dash,
// and eight random base36 characters, upper-cased for manual entry. The time
// prefix keeps ids roughly sortable; the suffix makes collisions
// implausible in practice.
func NewID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return strings.ToUpper(ts + "-" + randBase36(8))
}

func randBase36(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	for i := range buf {
		buf[i] = idAlphabet[int(buf[i])%len(idAlphabet)]
	}
	return string(buf)
}
