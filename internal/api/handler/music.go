package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/api/response"
	"github.com/kidtunes/kidtunes/internal/catalog"
)

// MusicHandler handles catalog search endpoints.
type MusicHandler struct {
	service *catalog.Service
	logger  zerolog.Logger
}

// NewMusicHandler creates a new MusicHandler.
func NewMusicHandler(service *catalog.Service, logger zerolog.Logger) *MusicHandler {
	return &MusicHandler{service: service, logger: logger}
}

// Search handles POST /api/music/search.
func (h *MusicHandler) Search(w http.ResponseWriter, r *http.Request) {
	var input models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	results, err := h.service.Search(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrQueryRequired),
			errors.Is(err, catalog.ErrTokenRequired),
			errors.Is(err, catalog.ErrInvalidType):
			response.BadRequest(w, r, err.Error())
		case errors.Is(err, catalog.ErrUpstream):
			response.BadGateway(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Msg("music search failed")
			response.InternalError(w, r, "music search failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, results)
}
