package observability

import (
	"testing"

	"github.com/mingchang/meatshop/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(config.Config{
		Environment: "production",
		AppVersion:  "1.2.0",
		Observability: config.ObservabilityConfig{
			LogLevel:      "info",
			SamplingRatio: 7,
		},
	})

	require.Equal(t, "meatshop", cfg.ServiceName)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 0.1, cfg.OtelSamplingRatio)
	require.False(t, cfg.Debug())

	tc := TracingConfig(cfg)
	require.Equal(t, "1.2.0", tc.ServiceVersion)
	require.False(t, tc.Enabled)
}

func TestLoadConfigDebug(t *testing.T) {
	cfg := LoadConfig(config.Config{AppName: "shop", Environment: "development", Debug: true})
	require.Equal(t, "console", cfg.LogFormat)
	require.True(t, cfg.Debug())
	require.True(t, LoggerConfig(cfg).IncludeStackOnError)

	cfg = LoadConfig(config.Config{Environment: "production", Observability: config.ObservabilityConfig{LogLevel: "DEBUG"}})
	require.True(t, cfg.Debug())
}
