package models

// Device represents a registered device.
type Device struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Type           *DeviceRole `json:"type"`
	UserID         string      `json:"userId"`
	CreatedAt      Timestamp   `json:"createdAt"`
	UpdatedAt      Timestamp   `json:"updatedAt"`
	ParentDeviceID *string     `json:"parentDeviceId"`
	ChildDeviceIDs []string    `json:"childDeviceIds"`
}

// DeviceRegisterRequest is the body of POST /api/device/register.
// DeviceType is optional; omitted means the device starts without a role.
type DeviceRegisterRequest struct {
	UserID     string      `json:"userId"`
	DeviceType *DeviceRole `json:"deviceType,omitempty"`
}

// DeviceUpdateRequest is the body of PATCH /api/device/{id}.
// Absent fields are left unchanged.
type DeviceUpdateRequest struct {
	Name *string     `json:"name,omitempty"`
	Type *DeviceRole `json:"type,omitempty"`
}

// DeviceResponse wraps a single device.
type DeviceResponse struct {
	Device Device `json:"device"`
}

// DevicesResponse wraps a list of devices.
type DevicesResponse struct {
	Devices []Device `json:"devices"`
}
