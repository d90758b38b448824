package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/api/response"
	"github.com/kidtunes/kidtunes/internal/pairing"
)

// PairingHandler handles pairing request endpoints.
type PairingHandler struct {
	service *pairing.Service
	logger  zerolog.Logger
}

// NewPairingHandler creates a new PairingHandler.
func NewPairingHandler(service *pairing.Service, logger zerolog.Logger) *PairingHandler {
	return &PairingHandler{service: service, logger: logger}
}

// Create handles POST /api/pairing/request. Re-requesting an already-pending
// pair answers 200 with the existing request instead of 201.
func (h *PairingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.PairingCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	result, created, err := h.service.Create(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, pairing.ErrMissingDeviceIDs),
			errors.Is(err, pairing.ErrNotChildDevice),
			errors.Is(err, pairing.ErrChildAlreadyPaired),
			errors.Is(err, pairing.ErrNotParentDevice):
			response.BadRequest(w, r, err.Error())
		case errors.Is(err, pairing.ErrChildDeviceNotFound),
			errors.Is(err, pairing.ErrParentDeviceNotFound):
			response.NotFound(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Msg("pairing request creation failed")
			response.InternalError(w, r, "failed to create pairing request")
		}
		return
	}

	body := models.PairingRequestResponse{Request: *result}
	if created {
		response.Created(w, r, "/api/pairing/requests/"+result.ParentDeviceID, body)
		return
	}
	response.JSON(w, r, http.StatusOK, body)
}

// List handles GET /api/pairing/requests/{parentDeviceId}.
func (h *PairingHandler) List(w http.ResponseWriter, r *http.Request) {
	parentDeviceID := chi.URLParam(r, "parentDeviceId")

	results, err := h.service.ListForParent(r.Context(), parentDeviceID)
	if err != nil {
		switch {
		case errors.Is(err, pairing.ErrParentDeviceNotFound):
			response.NotFound(w, r, err.Error())
		case errors.Is(err, pairing.ErrNotParentDevice):
			response.BadRequest(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Str("parent_device_id", parentDeviceID).Msg("pairing request list failed")
			response.InternalError(w, r, "failed to list pairing requests")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.PairingRequestsResponse{Requests: results})
}

// Respond handles POST /api/pairing/respond/{requestId}.
func (h *PairingHandler) Respond(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestId")

	var input models.PairingRespondRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	result, err := h.service.Respond(r.Context(), requestID, &input)
	if err != nil {
		switch {
		case errors.Is(err, pairing.ErrInvalidDecision),
			errors.Is(err, pairing.ErrAlreadyResolved):
			response.BadRequest(w, r, err.Error())
		case errors.Is(err, pairing.ErrRequestNotFound):
			response.NotFound(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Str("request_id", requestID).Msg("pairing response failed")
			response.InternalError(w, r, "failed to respond to pairing request")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.PairingRequestResponse{Request: *result})
}
