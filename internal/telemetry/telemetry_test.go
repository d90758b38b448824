package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidtunes/kidtunes/internal/telemetry"
)

func TestSetup_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Setup(ctx, telemetry.Config{
		Service:     "kidtunes-test",
		Version:     "0.0.0",
		Environment: "test",
		Endpoint:    "localhost:4317",
		Enabled:     false,
	})

	require.NoError(t, err)
	require.NotNil(t, provider)

	// Disabled setup still hands out usable (no-op) instruments.
	assert.NotNil(t, provider.Tracer)
	assert.NotNil(t, provider.Meter)

	assert.NoError(t, provider.Shutdown(ctx))
}

func TestProvider_Shutdown_ZeroValue(t *testing.T) {
	var provider telemetry.Provider
	assert.NoError(t, provider.Shutdown(context.Background()))
}
