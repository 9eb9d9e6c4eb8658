package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlibekovAA/task-manager/backend/internal/common/constants"
)

var (
	ErrMissingRequiredEnv   = errors.New("missing required environment variable")
	ErrInvalidJWTSecret     = fmt.Errorf("JWT_SECRET must be at least %d bytes", constants.JWTSecretMinLength)
	ErrInvalidStorageDriver = errors.New("unsupported STORAGE_DRIVER")
)

type StorageDriver string

const (
	StoragePostgres StorageDriver = "postgres"
	StorageMemory   StorageDriver = "memory"
)

type AppConfig struct {
	HTTPPort           string
	StorageDriver      StorageDriver
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	TokenTTL           time.Duration
	BcryptCost         int
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
	LogDir             string
	LogLevel           string
}

type LookupFunc func(key string) (string, bool)

func Load() (AppConfig, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads the configuration through lookup. The signing secret has no
// default: a missing or short JWT_SECRET fails the load.
func LoadFrom(lookup LookupFunc) (AppConfig, error) {
	env := envReader{lookup: lookup}

	jwtSecret, err := env.must("JWT_SECRET")
	if err != nil {
		return AppConfig{}, err
	}
	if err := validateJWTSecret(jwtSecret); err != nil {
		return AppConfig{}, err
	}

	driver := StorageDriver(strings.ToLower(env.get("STORAGE_DRIVER", string(StoragePostgres))))
	cfg := AppConfig{
		HTTPPort:           env.get("PORT", constants.DefaultHTTPPort),
		StorageDriver:      driver,
		RedisURL:           env.get("REDIS_URL", ""),
		JWTSecret:          jwtSecret,
		TokenTTL:           env.duration("TOKEN_TTL", constants.DefaultTokenTTL),
		BcryptCost:         env.int("BCRYPT_COST", constants.DefaultBcryptCost),
		RequestTimeout:     env.duration("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		CORSAllowedOrigins: env.list("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LogDir:             env.get("LOG_DIR", ""),
		LogLevel:           env.get("LOG_LEVEL", "info"),
	}

	switch driver {
	case StoragePostgres:
		cfg.DatabaseURL, err = env.must("DATABASE_URL")
		if err != nil {
			return AppConfig{}, err
		}
	case StorageMemory:
	default:
		return AppConfig{}, fmt.Errorf("%w: %q", ErrInvalidStorageDriver, driver)
	}

	return cfg, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

type envReader struct {
	lookup LookupFunc
}

func (e envReader) get(key, fallback string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return fallback
}

func (e envReader) must(key string) (string, error) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func (e envReader) duration(key string, fallback time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func (e envReader) int(key string, fallback int) int {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func (e envReader) list(key string, fallback []string) []string {
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
