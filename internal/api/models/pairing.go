package models

// PairingRequest represents a proposal to link a child device to a parent
// device.
type PairingRequest struct {
	ID             string        `json:"id"`
	ChildDeviceID  string        `json:"childDeviceId"`
	ParentDeviceID string        `json:"parentDeviceId"`
	Status         PairingStatus `json:"status"`
	CreatedAt      Timestamp     `json:"createdAt"`
}

// PairingCreateRequest is the body of POST /api/pairing/request.
type PairingCreateRequest struct {
	ChildDeviceID  string `json:"childDeviceId"`
	ParentDeviceID string `json:"parentDeviceId"`
}

// PairingRespondRequest is the body of POST /api/pairing/respond/{requestId}.
type PairingRespondRequest struct {
	Status PairingStatus `json:"status"`
}

// PairingRequestResponse wraps a single pairing request.
type PairingRequestResponse struct {
	Request PairingRequest `json:"request"`
}

// PairingRequestsResponse wraps a list of pairing requests.
type PairingRequestsResponse struct {
	Requests []PairingRequest `json:"requests"`
}
