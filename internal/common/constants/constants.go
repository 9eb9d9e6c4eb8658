package constants

import "time"

const (
	UsernameMinLength  = 3
	UsernameMaxLength  = 30
	PasswordMinLength  = 6
	PasswordMaxLength  = 72
	EmailMaxLength     = 255
	JWTSecretMinLength = 32

	TaskTitleMaxLength       = 100
	TaskDescriptionMaxLength = 500

	DefaultBcryptCost     = 12
	DefaultTokenTTL       = 7 * 24 * time.Hour
	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBMigrationTimeout    = time.Minute

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "5000"
	DefaultRequestTimeout = 5 * time.Second
	DefaultServiceName    = "task-manager"

	RateLimitGeneralRequestsPerSecond  = 20
	RateLimitGeneralBurst              = 40
	RateLimitLoginRequestsPerSecond    = 1
	RateLimitLoginBurst                = 5
	RateLimitRegisterRequestsPerSecond = 0.5
	RateLimitRegisterBurst             = 3
	RateLimitCacheSize                 = 10000
	RateLimitIdleTTL                   = 10 * time.Minute

	RateLimitWindow                    = time.Minute
	RateLimitGeneralRequestsPerWindow  = 600
	RateLimitLoginRequestsPerWindow    = 30
	RateLimitRegisterRequestsPerWindow = 10

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
