package config

import (
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewNotificationConfigHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Debug       bool
	SecretKey   string
	HTTPAddr    string
	BaseURL     string

	AllowedHosts     []string
	TimeZone         string
	GoogleMapsAPIKey string

	DatabaseURL       string
	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Email         EmailConfig
	Storage       StorageConfig
	RateLimit     RateLimitConfig
	Bootstrap     BootstrapConfig
	Observability ObservabilityConfig
}

// ObservabilityConfig feeds logging, tracing and metrics. OTLP export stays
// off unless OTEL_ENABLED is set.
type ObservabilityConfig struct {
	LogLevel      string
	LogFormat     string
	OtelEnabled   bool
	OTLPEndpoint  string
	OTLPProtocol  string
	SamplingRatio float64
}

type EmailConfig struct {
	Backend  string
	Host     string
	Port     int
	UseTLS   bool
	Username string
	Password string
	From     string
}

type StorageConfig struct {
	Provider  string
	MediaRoot string
	MediaURL  string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ContactRate   float64
	ContactBurst  int
}

type BootstrapConfig struct {
	AdminUsername string
	AdminPassword string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	cfg := Config{
		AppName:          getenv("APP_SERVICE", "meatshop"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      environment,
		Debug:            getenvBool("DEBUG", environment != "production"),
		SecretKey:        strings.TrimSpace(getenv("SECRET_KEY", "")),
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		BaseURL:          strings.TrimRight(getenv("BASE_URL", "http://localhost:8080"), "/"),
		AllowedHosts:     parseList(getenv("ALLOWED_HOSTS", "localhost,127.0.0.1")),
		TimeZone:         getenv("TIME_ZONE", "Asia/Taipei"),
		GoogleMapsAPIKey: strings.TrimSpace(getenv("GOOGLE_MAPS_API_KEY", "")),

		DatabaseURL:       strings.TrimSpace(getenv("DATABASE_URL", "")),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "meatshop"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		Email: EmailConfig{
			Backend:  strings.ToLower(getenv("EMAIL_BACKEND", defaultEmailBackend(environment))),
			Host:     getenv("EMAIL_HOST", "smtp.gmail.com"),
			Port:     getenvInt("EMAIL_PORT", 587),
			UseTLS:   getenvBool("EMAIL_USE_TLS", true),
			Username: strings.TrimSpace(getenv("EMAIL_HOST_USER", "")),
			Password: getenv("EMAIL_HOST_PASSWORD", ""),
			From:     getenv("DEFAULT_FROM_EMAIL", "noreply@mingchang-meat.com"),
		},
		Storage: StorageConfig{
			Provider:  strings.ToLower(getenv("STORAGE_PROVIDER", "local")),
			MediaRoot: getenv("MEDIA_ROOT", "media"),
			MediaURL:  getenv("MEDIA_URL", "/media/"),
			Bucket:    strings.TrimSpace(getenv("STORAGE_BUCKET", "")),
			Region:    getenv("STORAGE_REGION", "ap-northeast-1"),
			Endpoint:  strings.TrimSpace(getenv("STORAGE_ENDPOINT", "")),
			AccessKey: strings.TrimSpace(getenv("STORAGE_ACCESS_KEY", "")),
			SecretKey: strings.TrimSpace(getenv("STORAGE_SECRET_KEY", "")),
			PublicURL: strings.TrimRight(getenv("STORAGE_PUBLIC_URL", ""), "/"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			RedisPassword: getenv("REDIS_PASSWORD", ""),
			RedisDB:       getenvInt("REDIS_DB", 0),
			ContactRate:   getenvFloat("RATE_LIMIT_CONTACT_RATE", 0.05),
			ContactBurst:  getenvInt("RATE_LIMIT_CONTACT_BURST", 5),
		},
		Bootstrap: BootstrapConfig{
			AdminUsername: strings.TrimSpace(getenv("ADMIN_USERNAME", "")),
			AdminPassword: getenv("ADMIN_PASSWORD", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:      strings.ToLower(getenv("LOG_LEVEL", "info")),
			LogFormat:     strings.ToLower(getenv("LOG_FORMAT", "json")),
			OtelEnabled:   getenvBool("OTEL_ENABLED", false),
			OTLPEndpoint:  getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			OTLPProtocol:  strings.ToLower(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
			SamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// HostAllowed reports whether host (without port) matches ALLOWED_HOSTS.
// A leading dot matches the domain and its subdomains.
func (c Config) HostAllowed(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	for _, allowed := range c.AllowedHosts {
		allowed = strings.ToLower(allowed)
		switch {
		case allowed == "*":
			return true
		case strings.HasPrefix(allowed, "."):
			if host == allowed[1:] || strings.HasSuffix(host, allowed) {
				return true
			}
		case host == allowed:
			return true
		}
	}
	return false
}

func defaultEmailBackend(environment string) string {
	if environment == "production" {
		return "smtp"
	}
	return "console"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
