package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/api/response"
	"github.com/kidtunes/kidtunes/internal/identity"
)

// AuthHandler handles identity gateway endpoints.
type AuthHandler struct {
	service *identity.Service
	logger  zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *identity.Service, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// AuthURL handles GET /api/auth/google - return the consent URL.
func (h *AuthHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.service.AuthURL())
}

// Callback handles POST /api/auth/callback - complete a login.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var input models.AuthCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	result, err := h.service.Callback(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrCodeRequired),
			errors.Is(err, identity.ErrExchangeFailed):
			response.BadRequest(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Msg("auth callback failed")
			response.InternalError(w, r, "failed to complete sign-in")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// CheckMusicAccess handles POST /api/auth/check-music-access.
func (h *AuthHandler) CheckMusicAccess(w http.ResponseWriter, r *http.Request) {
	var input models.MusicAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	result, err := h.service.CheckMusicAccess(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrTokenRequired):
			response.BadRequest(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Msg("music access check failed")
			response.BadGateway(w, r, "failed to check music access")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}
