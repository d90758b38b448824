package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/api/response"
	"github.com/kidtunes/kidtunes/internal/playlist"
)

// PlaylistHandler handles playlist endpoints.
type PlaylistHandler struct {
	service *playlist.Service
	logger  zerolog.Logger
}

// NewPlaylistHandler creates a new PlaylistHandler.
func NewPlaylistHandler(service *playlist.Service, logger zerolog.Logger) *PlaylistHandler {
	return &PlaylistHandler{service: service, logger: logger}
}

// Create handles POST /api/playlists.
func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.PlaylistCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	result, err := h.service.Create(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, playlist.ErrNameRequired),
			errors.Is(err, playlist.ErrOwnerRequired):
			response.BadRequest(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Msg("playlist create failed")
			response.InternalError(w, r, "failed to create playlist")
		}
		return
	}

	location := fmt.Sprintf("/api/playlists/item/%s", result.ID)
	response.Created(w, r, location, models.PlaylistResponse{Playlist: *result})
}

// ListForDevice handles GET /api/playlists/{deviceId}.
func (h *PlaylistHandler) ListForDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")

	playlists, err := h.service.ListForDevice(r.Context(), deviceID)
	if err != nil {
		switch {
		case errors.Is(err, playlist.ErrDeviceIDMissing):
			response.BadRequest(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Str("device_id", deviceID).Msg("playlist list failed")
			response.InternalError(w, r, "failed to list playlists")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.PlaylistsResponse{Playlists: playlists})
}

// ListForChildren handles GET /api/playlists/children/{parentDeviceId} -
// playlists owned by any child paired to the parent.
func (h *PlaylistHandler) ListForChildren(w http.ResponseWriter, r *http.Request) {
	parentDeviceID := chi.URLParam(r, "parentDeviceId")

	playlists, err := h.service.ListForChildren(r.Context(), parentDeviceID)
	if err != nil {
		switch {
		case errors.Is(err, playlist.ErrDeviceIDMissing):
			response.BadRequest(w, r, err.Error())
		default:
			h.logger.Error().Err(err).Str("parent_device_id", parentDeviceID).Msg("children playlist list failed")
			response.InternalError(w, r, "failed to list playlists")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.PlaylistsResponse{Playlists: playlists})
}

// Get handles GET /api/playlists/item/{playlistId}?deviceId=...
func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistId")
	deviceID := r.URL.Query().Get("deviceId")

	result, err := h.service.Get(r.Context(), playlistID, deviceID)
	if err != nil {
		h.writeItemError(w, r, playlistID, err, "playlist lookup failed", "failed to get playlist")
		return
	}

	response.JSON(w, r, http.StatusOK, models.PlaylistResponse{Playlist: *result})
}

// Update handles PUT /api/playlists/item/{playlistId}.
func (h *PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistId")

	var input models.PlaylistUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	result, err := h.service.Update(r.Context(), playlistID, &input)
	if err != nil {
		h.writeItemError(w, r, playlistID, err, "playlist update failed", "failed to update playlist")
		return
	}

	response.JSON(w, r, http.StatusOK, models.PlaylistResponse{Playlist: *result})
}

// Delete handles DELETE /api/playlists/item/{playlistId}?deviceId=...
func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistId")
	deviceID := r.URL.Query().Get("deviceId")

	if err := h.service.Delete(r.Context(), playlistID, deviceID); err != nil {
		h.writeItemError(w, r, playlistID, err, "playlist delete failed", "failed to delete playlist")
		return
	}

	response.NoContent(w, r)
}

func (h *PlaylistHandler) writeItemError(w http.ResponseWriter, r *http.Request, playlistID string, err error, logMsg, fallback string) {
	switch {
	case errors.Is(err, playlist.ErrDeviceIDMissing):
		response.BadRequest(w, r, err.Error())
	case errors.Is(err, playlist.ErrPlaylistNotFound):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, playlist.ErrNotOwner):
		response.Forbidden(w, r, err.Error())
	default:
		h.logger.Error().Err(err).Str("playlist_id", playlistID).Msg(logMsg)
		response.InternalError(w, r, fallback)
	}
}
