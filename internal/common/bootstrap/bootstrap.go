package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/task-manager/backend/internal/auth/gate"
	authservice "github.com/AlibekovAA/task-manager/backend/internal/auth/service"
	"github.com/AlibekovAA/task-manager/backend/internal/auth/token"
	"github.com/AlibekovAA/task-manager/backend/internal/common/clock"
	"github.com/AlibekovAA/task-manager/backend/internal/common/config"
	"github.com/AlibekovAA/task-manager/backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/task-manager/backend/internal/common/crypto"
	"github.com/AlibekovAA/task-manager/backend/internal/common/db"
	commonhttp "github.com/AlibekovAA/task-manager/backend/internal/common/http"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	"github.com/AlibekovAA/task-manager/backend/internal/common/server"
	taskrepo "github.com/AlibekovAA/task-manager/backend/internal/task/repository"
	taskservice "github.com/AlibekovAA/task-manager/backend/internal/task/service"
	userrepo "github.com/AlibekovAA/task-manager/backend/internal/user/repository"
)

type App struct {
	Config   config.AppConfig
	Log      *logger.Logger
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	UserRepo userrepo.Repository
	TaskRepo taskrepo.Repository
	Tokens   *token.Service
	Auth     *authservice.AuthService
	Tasks    *taskservice.TaskService
	Gate     *gate.Gate
	Limiters commonhttp.RateLimiters

	hooks []server.ShutdownHook
}

// NewApp opens the stores selected by cfg.StorageDriver and wires the
// services on top of them. Resources opened here are released by the hooks
// from ShutdownHooks.
func NewApp(ctx context.Context, cfg config.AppConfig, log *logger.Logger) (*App, error) {
	clk := clock.NewRealClock()

	tokens, err := token.NewService(cfg.JWTSecret, cfg.TokenTTL, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	app := &App{Config: cfg, Log: log, Tokens: tokens}

	if err := app.initStorage(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	app.initRedis(ctx)

	idGenerator := commoncrypto.NewUUIDGenerator()
	hasher := commoncrypto.NewBcryptHasher(cfg.BcryptCost)

	app.Auth = authservice.NewAuthService(app.UserRepo, hasher, idGenerator, tokens, clk, log)
	app.Tasks = taskservice.NewTaskService(app.TaskRepo, idGenerator, clk, log)
	app.Gate = gate.New(tokens, app.UserRepo, log)
	app.Limiters = commonhttp.NewRateLimiters(app.Redis)

	return app, nil
}

func (a *App) initStorage(ctx context.Context) error {
	switch a.Config.StorageDriver {
	case config.StorageMemory:
		a.Log.Warn("using in-memory storage: data is lost on restart")
		a.UserRepo = userrepo.NewMemoryRepository()
		a.TaskRepo = taskrepo.NewMemoryRepository()
		return nil

	case config.StoragePostgres:
		pool, err := db.NewPool(ctx, a.Log, a.Config.DatabaseURL)
		if err != nil {
			return err
		}
		a.Pool = pool

		metricsCtx, stopMetrics := context.WithCancel(context.Background())
		db.StartPoolMetrics(metricsCtx, pool, constants.DBPoolMetricsInterval)
		a.hooks = append(a.hooks, func(context.Context) error {
			stopMetrics()
			a.Log.Info("closing database pool")
			pool.Close()
			return nil
		})

		if err := db.Migrate(ctx, a.Log, a.Config.DatabaseURL); err != nil {
			return err
		}

		a.UserRepo = userrepo.NewPgRepository(pool, a.Log)
		a.TaskRepo = taskrepo.NewPgRepository(pool, a.Log)
		return nil

	default:
		return fmt.Errorf("%w: %q", config.ErrInvalidStorageDriver, a.Config.StorageDriver)
	}
}

// initRedis connects the shared rate limit store. An unreachable Redis is not
// fatal: limits fall back to per-process buckets.
func (a *App) initRedis(ctx context.Context) {
	if a.Config.RedisURL == "" {
		return
	}

	opts, err := redis.ParseURL(a.Config.RedisURL)
	if err != nil {
		a.Log.Warnf("invalid REDIS_URL, using in-process rate limits: %v", err)
		return
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, constants.DBPoolConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		a.Log.Warnf("redis unreachable, using in-process rate limits: %v", err)
		_ = client.Close()
		return
	}

	a.Log.Infof("rate limits shared through redis at %s", opts.Addr)
	a.Redis = client
	a.hooks = append(a.hooks, func(context.Context) error {
		a.Log.Info("closing redis client")
		return client.Close()
	})
}

func (a *App) ShutdownHooks() []server.ShutdownHook {
	return a.hooks
}

// Handler returns the router wrapped in the common middleware chain.
func (a *App) Handler() http.Handler {
	return commonhttp.BuildBaseHandler(commonhttp.BaseHandlerOptions{
		AllowedOrigins: a.Config.CORSAllowedOrigins,
		MaxRequestSize: constants.DefaultMaxRequestSize,
		GeneralLimiter: a.Limiters.General,
	}, a.Log, NewRouter(a))
}

func (a *App) close(ctx context.Context) {
	for _, hook := range a.hooks {
		_ = hook(ctx)
	}
	a.hooks = nil
}
