package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/api/response"
	"github.com/kidtunes/kidtunes/internal/whitelist"
)

// WhitelistHandler handles whitelist endpoints.
type WhitelistHandler struct {
	service *whitelist.Service
	logger  zerolog.Logger
}

// NewWhitelistHandler creates a new WhitelistHandler.
func NewWhitelistHandler(service *whitelist.Service, logger zerolog.Logger) *WhitelistHandler {
	return &WhitelistHandler{service: service, logger: logger}
}

// Get handles GET /api/whitelist/{parentDeviceId}.
func (h *WhitelistHandler) Get(w http.ResponseWriter, r *http.Request) {
	parentDeviceID := chi.URLParam(r, "parentDeviceId")

	result, err := h.service.GetByParent(r.Context(), parentDeviceID)
	if err != nil {
		switch {
		case errors.Is(err, whitelist.ErrWhitelistNotFound):
			response.NotFound(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Str("parent_device_id", parentDeviceID).Msg("whitelist lookup failed")
			response.InternalError(w, r, "failed to get whitelist")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.WhitelistResponse{Whitelist: *result})
}

// Update handles PUT /api/whitelist/{parentDeviceId} - whole-collection
// replacement, absent collections unchanged.
func (h *WhitelistHandler) Update(w http.ResponseWriter, r *http.Request) {
	parentDeviceID := chi.URLParam(r, "parentDeviceId")

	var input models.WhitelistUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	result, err := h.service.Replace(r.Context(), parentDeviceID, &input)
	if err != nil {
		switch {
		case errors.Is(err, whitelist.ErrWhitelistNotFound):
			response.NotFound(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Str("parent_device_id", parentDeviceID).Msg("whitelist update failed")
			response.InternalError(w, r, "failed to update whitelist")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.WhitelistResponse{Whitelist: *result})
}
