// Package api provides the HTTP API for KidTunes.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/api/handler"
	"github.com/kidtunes/kidtunes/internal/api/middleware"
	"github.com/kidtunes/kidtunes/internal/auth"
	"github.com/kidtunes/kidtunes/internal/catalog"
	"github.com/kidtunes/kidtunes/internal/device"
	"github.com/kidtunes/kidtunes/internal/identity"
	"github.com/kidtunes/kidtunes/internal/pairing"
	"github.com/kidtunes/kidtunes/internal/playlist"
	"github.com/kidtunes/kidtunes/internal/whitelist"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// DB backs the readiness probe; nil reports ready unconditionally.
	DB handler.Pinger

	IdentityService  *identity.Service
	CatalogService   *catalog.Service
	DeviceService    *device.Service
	PairingService   *pairing.Service
	WhitelistService *whitelist.Service
	PlaylistService  *playlist.Service

	// Sessions verifies bearer tokens on the device-facing routes when
	// RequireSession is set (REQUIRE_SESSION=true). Auth and ops routes
	// stay open either way.
	Sessions       *auth.Sessions
	RequireSession bool

	// AllowedOrigin for CORS; empty allows any origin.
	AllowedOrigin string
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "kidtunes-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))      // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))    // Panic recovery
	r.Use(chimiddleware.RealIP)               // Real IP extraction
	r.Use(middleware.CORS(cfg.AllowedOrigin)) // CORS + preflight
	r.Use(middleware.ContentTypeJSON)         // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB)
	authHandler := handler.NewAuthHandler(cfg.IdentityService, cfg.Logger)
	musicHandler := handler.NewMusicHandler(cfg.CatalogService, cfg.Logger)
	deviceHandler := handler.NewDeviceHandler(cfg.DeviceService, cfg.Logger)
	pairingHandler := handler.NewPairingHandler(cfg.PairingService, cfg.Logger)
	whitelistHandler := handler.NewWhitelistHandler(cfg.WhitelistService, cfg.Logger)
	playlistHandler := handler.NewPlaylistHandler(cfg.PlaylistService, cfg.Logger)

	// Session middleware for device-facing routes; a no-op unless enabled
	sessionMiddleware := passthrough
	if cfg.RequireSession && cfg.Sessions != nil {
		sessionMiddleware = middleware.RequireSession(cfg.Sessions)
	}

	// Rate limit middleware for the different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)         // 10 req/min
	searchRateLimit := middleware.RateLimitByIP(middleware.SearchRateLimit)     // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	r.Route("/api", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit)
			r.Get("/google", authHandler.AuthURL)
			r.Post("/callback", authHandler.Callback)
			r.Post("/check-music-access", authHandler.CheckMusicAccess)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Catalog search - every call fans out to the provider
		r.Route("/music", func(r chi.Router) {
			r.Use(sessionMiddleware)
			r.Use(searchRateLimit)
			r.Post("/search", musicHandler.Search)
		})

		// Device registration and lookup
		r.Route("/device", func(r chi.Router) {
			r.Use(sessionMiddleware)
			r.Use(standardRateLimit)
			r.Post("/register", deviceHandler.Register)
			r.Route("/{deviceId}", func(r chi.Router) {
				r.Get("/", deviceHandler.Get)
				r.Patch("/", deviceHandler.Update)
				r.Get("/linked", deviceHandler.Linked)
			})
		})

		// Pairing flow
		r.Route("/pairing", func(r chi.Router) {
			r.Use(sessionMiddleware)
			r.Use(standardRateLimit)
			r.Post("/request", pairingHandler.Create)
			r.Get("/requests/{parentDeviceId}", pairingHandler.List)
			r.Post("/respond/{requestId}", pairingHandler.Respond)
		})

		// Whitelist curation
		r.Route("/whitelist/{parentDeviceId}", func(r chi.Router) {
			r.Use(sessionMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", whitelistHandler.Get)
			r.Put("/", whitelistHandler.Update)
		})

		// Playlists
		r.Route("/playlists", func(r chi.Router) {
			r.Use(sessionMiddleware)
			r.Use(standardRateLimit)
			r.Post("/", playlistHandler.Create)
			r.Get("/{deviceId}", playlistHandler.ListForDevice)
			r.Get("/children/{parentDeviceId}", playlistHandler.ListForChildren)
			r.Route("/item/{playlistId}", func(r chi.Router) {
				r.Get("/", playlistHandler.Get)
				r.Put("/", playlistHandler.Update)
				r.Delete("/", playlistHandler.Delete)
			})
		})
	})

	return r
}

func passthrough(next http.Handler) http.Handler { return next }
