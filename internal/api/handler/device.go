package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/api/response"
	"github.com/kidtunes/kidtunes/internal/device"
)

// DeviceHandler handles device endpoints.
type DeviceHandler struct {
	service *device.Service
	logger  zerolog.Logger
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(service *device.Service, logger zerolog.Logger) *DeviceHandler {
	return &DeviceHandler{service: service, logger: logger}
}

// Register handles POST /api/device/register.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input models.DeviceRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	result, err := h.service.Register(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrUserIDRequired),
			errors.Is(err, device.ErrInvalidRole):
			response.BadRequest(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Msg("device registration failed")
			response.InternalError(w, r, "failed to register device")
		}
		return
	}

	response.Created(w, r, "/api/device/"+result.ID, models.DeviceResponse{Device: *result})
}

// Get handles GET /api/device/{deviceId}.
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")

	result, err := h.service.Get(r.Context(), deviceID)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceNotFound):
			response.NotFound(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Str("device_id", deviceID).Msg("device lookup failed")
			response.InternalError(w, r, "failed to get device")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.DeviceResponse{Device: *result})
}

// Update handles PATCH /api/device/{deviceId} - rename and/or assign a role.
func (h *DeviceHandler) Update(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")

	var input models.DeviceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	result, err := h.service.Update(r.Context(), deviceID, &input)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceNotFound):
			response.NotFound(w, r, err.Error())
		case errors.Is(err, device.ErrInvalidRole):
			response.BadRequest(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Str("device_id", deviceID).Msg("device update failed")
			response.InternalError(w, r, "failed to update device")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.DeviceResponse{Device: *result})
}

// Linked handles GET /api/device/{deviceId}/linked.
func (h *DeviceHandler) Linked(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")

	results, err := h.service.Linked(r.Context(), deviceID)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceNotFound):
			response.NotFound(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Str("device_id", deviceID).Msg("linked device lookup failed")
			response.InternalError(w, r, "failed to get linked devices")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.DevicesResponse{Devices: results})
}
