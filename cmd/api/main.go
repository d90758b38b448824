// Package main provides the entrypoint for the KidTunes API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kidtunes/kidtunes/internal/account"
	"github.com/kidtunes/kidtunes/internal/api"
	"github.com/kidtunes/kidtunes/internal/api/middleware"
	"github.com/kidtunes/kidtunes/internal/auth"
	"github.com/kidtunes/kidtunes/internal/catalog"
	"github.com/kidtunes/kidtunes/internal/catalog/youtube"
	"github.com/kidtunes/kidtunes/internal/database"
	"github.com/kidtunes/kidtunes/internal/device"
	"github.com/kidtunes/kidtunes/internal/identity"
	"github.com/kidtunes/kidtunes/internal/identity/google"
	"github.com/kidtunes/kidtunes/internal/pairing"
	"github.com/kidtunes/kidtunes/internal/playlist"
	"github.com/kidtunes/kidtunes/internal/telemetry"
	"github.com/kidtunes/kidtunes/internal/whitelist"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "kidtunes-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting KidTunes API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Setup(ctx, telemetry.Config{
		Service:     serviceName,
		Version:     Version,
		Environment: env,
		Endpoint:    otlpEndpoint,
		Enabled:     telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	gatewayMetrics, err := middleware.NewGatewayMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize gateway metrics")
		os.Exit(1)
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Redis cache for catalog search (optional)
	var cache *redis.Client
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			log.Fatal().Err(parseErr).Msg("invalid REDIS_URL")
		}
		cache = redis.NewClient(opts)
		if pingErr := cache.Ping(ctx).Err(); pingErr != nil {
			log.Warn().Err(pingErr).Msg("redis unreachable, search cache degraded")
		} else {
			log.Info().Msg("redis connected")
		}
	} else {
		log.Warn().Msg("REDIS_URL not set - search caching disabled")
	}

	// Session signing
	signingKey := os.Getenv("SESSION_SIGNING_KEY")
	if signingKey == "" {
		signingKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default session signing key - not secure for production")
	}
	sessions := auth.NewSessions(auth.SessionsConfig{
		SigningKey: signingKey,
	})

	// Google identity provider
	googleClient := google.NewClient(google.ClientConfig{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURI:  os.Getenv("GOOGLE_REDIRECT_URI"),
		Logger:       log,
	})
	if os.Getenv("GOOGLE_CLIENT_ID") == "" {
		log.Warn().Msg("Google OAuth not configured - auth endpoints will fail")
	}

	// Core repositories and services
	accountRepo := account.NewPostgresRepository(pool)
	deviceRepo := device.NewPostgresRepository(pool)
	whitelistRepo := whitelist.NewPostgresRepository(pool)
	pairingRepo := pairing.NewPostgresRepository(pool)
	playlistRepo := playlist.NewPostgresRepository(pool)

	whitelistService := whitelist.NewService(whitelistRepo, deviceRepo)
	deviceService := device.NewService(deviceRepo, whitelistService)
	pairingService := pairing.NewService(pairingRepo, deviceRepo)
	playlistService := playlist.NewService(playlistRepo, deviceRepo)
	identityService := identity.NewService(googleClient, accountRepo, deviceService, sessions, log)

	youtubeClient := youtube.NewClient(youtube.ClientConfig{
		Logger: log,
	})
	catalogService := catalog.NewService(youtubeClient, cache, gatewayMetrics, log)
	log.Info().Msg("services initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:          Version,
		BuildTime:        BuildTime,
		Logger:           log,
		ServiceName:      serviceName,
		Metrics:          metrics,
		DB:               pool,
		IdentityService:  identityService,
		CatalogService:   catalogService,
		DeviceService:    deviceService,
		PairingService:   pairingService,
		WhitelistService: whitelistService,
		PlaylistService:  playlistService,
		Sessions:         sessions,
		RequireSession:   os.Getenv("REQUIRE_SESSION") == "true",
		AllowedOrigin:    os.Getenv("ALLOWED_ORIGIN"),
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
