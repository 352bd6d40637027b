package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	StoreDriver string
	TokenStore  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	TokenTTLMinutes int

	AdminName     string
	AdminPassword string
	SeedDemo      bool

	MigrateOnStart bool

	TracingEnabled  bool
	OTELEndpoint    string
	OTELServiceName string

	AllowedOrigins        []string
	AuthRateLimit         int
	WriteRateLimit        int
	AuthRateWindowSeconds int
	MaxBodyBytes          int64
}

// Load reads the configuration from the environment. A .env file in the
// working directory, if present, is loaded first without overriding
// variables that are already set.
func Load() Config {
	_ = godotenv.Load()

	storeDriver := getEnv("STORE_DRIVER", DriverPostgres)

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		StoreDriver: storeDriver,
		TokenStore:  getEnv("TOKEN_STORE", storeDriver),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 24*60),

		AdminName:     getEnv("ADMIN_NAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		SeedDemo:      getEnvBool("SEED_DEMO", false),

		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		TracingEnabled:  getEnvBool("TRACING_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELServiceName: getEnv("OTEL_SERVICE_NAME", "roster-api"),

		AllowedOrigins:        getEnvList("CORS_ALLOWED_ORIGINS"),
		AuthRateLimit:         getEnvInt("AUTH_RATE_LIMIT", 10),
		WriteRateLimit:        getEnvInt("WRITE_RATE_LIMIT", 120),
		AuthRateWindowSeconds: getEnvInt("AUTH_RATE_WINDOW_SECONDS", 60),
		MaxBodyBytes:          int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

func (c Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.TokenStore {
	case DriverPostgres, DriverRedis, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown TOKEN_STORE %q", c.TokenStore))
	}

	if c.TokenStore == DriverPostgres && c.StoreDriver != DriverPostgres {
		errs = append(errs, errors.New("TOKEN_STORE=postgres requires STORE_DRIVER=postgres"))
	}

	if c.Env == "prod" && (c.JWTSecret == "" || c.JWTSecret == "dev-secret-change-me") {
		errs = append(errs, errors.New("JWT_SECRET must be set in prod"))
	}

	if c.TokenTTLMinutes <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL_MINUTES must be positive"))
	}

	return errors.Join(errs...)
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func (c Config) AuthRateWindow() time.Duration {
	return time.Duration(c.AuthRateWindowSeconds) * time.Second
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "roster")
	pass := getEnv("DB_PASSWORD", "roster")
	name := getEnv("DB_NAME", "roster")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
