package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidtunes/kidtunes/internal/api"
	"github.com/kidtunes/kidtunes/internal/api/models"
	"github.com/kidtunes/kidtunes/internal/auth"
	"github.com/kidtunes/kidtunes/internal/catalog"
	"github.com/kidtunes/kidtunes/internal/device"
	"github.com/kidtunes/kidtunes/internal/pairing"
	"github.com/kidtunes/kidtunes/internal/playlist"
	"github.com/kidtunes/kidtunes/internal/whitelist"
)

// fakeSearchProvider serves canned catalog results.
type fakeSearchProvider struct{}

func (p *fakeSearchProvider) SearchArtists(_ context.Context, _, query string) ([]models.Artist, error) {
	return []models.Artist{{ID: "ch_1", Name: "Artist for " + query}}, nil
}

func (p *fakeSearchProvider) SearchTracks(_ context.Context, _, _ string) ([]models.Track, error) {
	return []models.Track{{ID: "vid_1", Title: "Track One", ArtistName: "Artist", ArtistID: "ch_1"}}, nil
}

func (p *fakeSearchProvider) SearchPlaylists(_ context.Context, _, _ string) ([]models.Playlist, error) {
	return []models.Playlist{}, nil
}

func testSessions() *auth.Sessions {
	return auth.NewSessions(auth.SessionsConfig{
		SigningKey: "test-secret-key-for-testing-only",
	})
}

func newTestRouter(requireSession bool) http.Handler {
	logger := zerolog.New(io.Discard)

	deviceRepo := device.NewInMemoryRepository()
	whitelistService := whitelist.NewService(whitelist.NewInMemoryRepository(), deviceRepo)
	deviceService := device.NewService(deviceRepo, whitelistService)
	pairingService := pairing.NewService(pairing.NewInMemoryRepository(), deviceRepo)
	playlistService := playlist.NewService(playlist.NewInMemoryRepository(), deviceRepo)
	catalogService := catalog.NewService(&fakeSearchProvider{}, nil, nil, logger)

	return api.NewRouter(api.RouterConfig{
		Version:          "test",
		BuildTime:        "2025-01-01T00:00:00Z",
		Logger:           logger,
		CatalogService:   catalogService,
		DeviceService:    deviceService,
		PairingService:   pairingService,
		WhitelistService: whitelistService,
		PlaylistService:  playlistService,
		Sessions:         testSessions(),
		RequireSession:   requireSession,
	})
}

// doJSON performs a request with an optional JSON body and decodes the
// response into out when it is non-nil.
func doJSON(t *testing.T, router http.Handler, method, path string, body, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
	}
	return w
}

// registerDevice creates a device with the given role through the API.
func registerDevice(t *testing.T, router http.Handler, userID string, role models.DeviceRole) models.Device {
	t.Helper()

	var resp models.DeviceResponse
	w := doJSON(t, router, http.MethodPost, "/api/device/register", models.DeviceRegisterRequest{
		UserID:     userID,
		DeviceType: &role,
	}, &resp)
	require.Equal(t, http.StatusCreated, w.Code)
	return resp.Device
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/api/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter(false)

	// No database configured: readiness reports ok unconditionally
	var health models.Health
	w := doJSON(t, router, http.MethodGet, "/api/ops/ready", nil, &health)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_DeviceLifecycle(t *testing.T) {
	router := newTestRouter(false)

	parent := registerDevice(t, router, "user123", models.RoleParent)
	assert.NotEmpty(t, parent.ID)
	require.NotNil(t, parent.Type)
	assert.Equal(t, models.RoleParent, *parent.Type)

	var got models.DeviceResponse
	w := doJSON(t, router, http.MethodGet, "/api/device/"+parent.ID, nil, &got)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, parent.ID, got.Device.ID)

	name := "Kitchen iPad"
	var updated models.DeviceResponse
	w = doJSON(t, router, http.MethodPatch, "/api/device/"+parent.ID, models.DeviceUpdateRequest{
		Name: &name,
	}, &updated)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Kitchen iPad", updated.Device.Name)

	w = doJSON(t, router, http.MethodGet, "/api/device/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_PairingFlow(t *testing.T) {
	router := newTestRouter(false)

	parent := registerDevice(t, router, "parentuser", models.RoleParent)
	child := registerDevice(t, router, "childuser", models.RoleChild)

	createBody := models.PairingCreateRequest{
		ChildDeviceID:  child.ID,
		ParentDeviceID: parent.ID,
	}

	var created models.PairingRequestResponse
	w := doJSON(t, router, http.MethodPost, "/api/pairing/request", createBody, &created)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.PairingPending, created.Request.Status)

	// Duplicate create returns the existing pending request with 200
	var repeat models.PairingRequestResponse
	w = doJSON(t, router, http.MethodPost, "/api/pairing/request", createBody, &repeat)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.Request.ID, repeat.Request.ID)

	var list models.PairingRequestsResponse
	w = doJSON(t, router, http.MethodGet, "/api/pairing/requests/"+parent.ID, nil, &list)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, list.Requests, 1)

	var resolved models.PairingRequestResponse
	w = doJSON(t, router, http.MethodPost, "/api/pairing/respond/"+created.Request.ID, models.PairingRespondRequest{
		Status: models.PairingApproved,
	}, &resolved)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PairingApproved, resolved.Request.Status)

	// Approval links the child and surfaces it in the parent whitelist
	var got models.DeviceResponse
	doJSON(t, router, http.MethodGet, "/api/device/"+child.ID, nil, &got)
	require.NotNil(t, got.Device.ParentDeviceID)
	assert.Equal(t, parent.ID, *got.Device.ParentDeviceID)

	var wl models.WhitelistResponse
	w = doJSON(t, router, http.MethodGet, "/api/whitelist/"+parent.ID, nil, &wl)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{child.ID}, wl.Whitelist.ChildDeviceIDs)

	// Terminal states are immutable
	w = doJSON(t, router, http.MethodPost, "/api/pairing/respond/"+created.Request.ID, models.PairingRespondRequest{
		Status: models.PairingRejected,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_WhitelistUpdate(t *testing.T) {
	router := newTestRouter(false)

	parent := registerDevice(t, router, "parentuser", models.RoleParent)

	artists := []models.Artist{{ID: "ch_1", Name: "The Wiggles"}}
	var wl models.WhitelistResponse
	w := doJSON(t, router, http.MethodPut, "/api/whitelist/"+parent.ID, models.WhitelistUpdateRequest{
		Artists: &artists,
	}, &wl)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, wl.Whitelist.Artists, 1)
	assert.Equal(t, "The Wiggles", wl.Whitelist.Artists[0].Name)
	assert.Empty(t, wl.Whitelist.Tracks)

	w = doJSON(t, router, http.MethodGet, "/api/whitelist/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_PlaylistOwnership(t *testing.T) {
	router := newTestRouter(false)

	child := registerDevice(t, router, "childuser", models.RoleChild)
	stranger := registerDevice(t, router, "otheruser", models.RoleChild)

	var created models.PlaylistResponse
	w := doJSON(t, router, http.MethodPost, "/api/playlists", models.PlaylistCreateRequest{
		Name:          "Road Trip",
		OwnerID:       "childuser",
		OwnerDeviceID: child.ID,
	}, &created)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Header().Get("Location"), created.Playlist.ID)

	item := fmt.Sprintf("/api/playlists/item/%s", created.Playlist.ID)

	var got models.PlaylistResponse
	w = doJSON(t, router, http.MethodGet, item+"?deviceId="+child.ID, nil, &got)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Road Trip", got.Playlist.Name)

	w = doJSON(t, router, http.MethodGet, item+"?deviceId="+stranger.ID, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var list models.PlaylistsResponse
	w = doJSON(t, router, http.MethodGet, "/api/playlists/"+child.ID, nil, &list)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, list.Playlists, 1)

	w = doJSON(t, router, http.MethodDelete, item+"?deviceId="+child.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, item+"?deviceId="+child.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_MusicSearch(t *testing.T) {
	router := newTestRouter(false)

	var results models.SearchResults
	w := doJSON(t, router, http.MethodPost, "/api/music/search", models.SearchRequest{
		Query:       "wheels on the bus",
		AccessToken: "ya29.token",
	}, &results)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, results.Artists, 1)
	assert.Len(t, results.Tracks, 1)
	assert.Empty(t, results.Playlists)

	w = doJSON(t, router, http.MethodPost, "/api/music/search", models.SearchRequest{
		AccessToken: "ya29.token",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_SessionEnforcement(t *testing.T) {
	router := newTestRouter(true)

	// Device routes reject anonymous callers when sessions are enforced
	w := doJSON(t, router, http.MethodPost, "/api/device/register", models.DeviceRegisterRequest{
		UserID: "user123",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Ops stays open
	w = doJSON(t, router, http.MethodGet, "/api/ops/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// A valid session token passes
	token, err := testSessions().Issue("acc_1", "DEVICE-ABCD1234")
	require.NoError(t, err)

	data, err := json.Marshal(models.DeviceRegisterRequest{UserID: "user123"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/device/register", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(false)

	req := httptest.NewRequest(http.MethodOptions, "/api/playlists", http.NoBody)
	req.Header.Set("Origin", "https://app.kidtunes.example")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
