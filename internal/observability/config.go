package observability

import (
	"strings"

	"github.com/mingchang/meatshop/internal/config"
)

// Config is the slice of application settings the logger, tracer and meter
// providers are built from.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	obs := cfg.Observability

	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "meatshop"
	}
	logFormat := strings.TrimSpace(obs.LogFormat)
	if logFormat == "" {
		logFormat = "json"
		if cfg.Debug {
			logFormat = "console"
		}
	}
	ratio := obs.SamplingRatio
	if ratio < 0 || ratio > 1 {
		ratio = 0.1
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             strings.TrimSpace(obs.LogLevel),
		LogFormat:            logFormat,
		OtelEnabled:          obs.OtelEnabled,
		OtelExporterEndpoint: strings.TrimSpace(obs.OTLPEndpoint),
		OtelExporterProtocol: strings.TrimSpace(obs.OTLPProtocol),
		OtelSamplingRatio:    ratio,
	}
}

// Debug reports whether verbose request logging is wanted.
func (c Config) Debug() bool {
	if strings.EqualFold(c.LogLevel, "debug") {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "development", "local", "test":
		return true
	}
	return false
}
