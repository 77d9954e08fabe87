package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resume-builder/internal/ai"
	"resume-builder/internal/ai/gemini"
	"resume-builder/internal/ai/openrouter"
	"resume-builder/internal/applications"
	"resume-builder/internal/assistant"
	"resume-builder/internal/branding"
	"resume-builder/internal/certificates"
	"resume-builder/internal/credits"
	"resume-builder/internal/dashboard"
	"resume-builder/internal/notifications"
	"resume-builder/internal/profiles"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	miniostore "resume-builder/internal/shared/storage/object/minio"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
)

// App holds shared dependencies and the assembled router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	AI            *ai.Service
	Assister      assistant.Assister
	Resumes       *resumes.Service
	Profiles      *profiles.Service
	Certificates  *certificates.Service
	Applications  *applications.Service
	Branding      *branding.Service
	Credits       *credits.Service
	Notifications *notifications.Service
	Dashboard     *dashboard.Service
	Redis         *redis.Client

	closers []io.Closer
}

// Build wires repositories, services and handlers for cfg.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB, Store: store}
	rdb, err := buildRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		app.Redis = rdb
		app.closers = append(app.closers, rdb)
	}
	if err := app.buildAI(ctx); err != nil {
		return nil, err
	}
	app.buildServices()
	app.Router = app.buildRouter()
	return app, nil
}

// Close releases provider clients and the database pool.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	if a.DB != nil && !db.IsLambdaRuntime() {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

// buildRedis connects the shared rate-limit backend. Without REDIS_URL the
// router keeps its in-process limiter.
func buildRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.redis.skipped", map[string]any{"reason": err.Error()})
			return nil, nil
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "minio":
		st, err := miniostore.New(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return st, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// BuildProviders creates AI providers in configured precedence order.
func BuildProviders(ctx context.Context, cfg config.AIConfig) ([]ai.Provider, []io.Closer, error) {
	var (
		providers []ai.Provider
		closers   []io.Closer
	)
	for _, pc := range cfg.Providers {
		switch pc.Name {
		case gemini.ProviderName:
			c, err := gemini.New(ctx, pc.APIKey, pc.Model)
			if err != nil {
				return nil, closers, err
			}
			providers = append(providers, c)
			closers = append(closers, c)
		case openrouter.ProviderName:
			c, err := openrouter.New(pc.APIKey, pc.Model, pc.BaseURL)
			if err != nil {
				return nil, closers, err
			}
			providers = append(providers, c)
		default:
			return nil, closers, fmt.Errorf("unknown AI provider %q", pc.Name)
		}
	}
	return providers, closers, nil
}

func (a *App) buildAI(ctx context.Context) error {
	providers, closers, err := BuildProviders(ctx, a.Config.AI)
	a.closers = append(a.closers, closers...)
	if err != nil {
		return err
	}
	timeout := time.Duration(a.Config.AI.TimeoutSeconds) * time.Second
	a.AI = ai.NewService(providers, timeout)
	if len(providers) == 0 {
		telemetry.Warn("bootstrap.ai.no_provider", map[string]any{"env": a.Config.Env})
	}

	a.Assister = a.AI
	if url := strings.TrimSpace(a.Config.FunctionURL); url != "" {
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		a.Assister = assistant.NewFunctionClient(url, a.Config.FunctionAnonKey, timeout)
	}
	telemetry.Info("bootstrap.ai.ready", map[string]any{
		"providers": a.AI.Providers(),
		"remote":    a.Config.FunctionURL != "",
	})
	return nil
}

func (a *App) buildServices() {
	var (
		resumeRepo  resumes.Repo
		profileRepo profiles.Repo
		certRepo    certificates.Repo
		appRepo     applications.Repo
		brandRepo   branding.Repo
		noteRepo    notifications.Repo
	)
	if a.DB != nil {
		resumeRepo = &resumes.PGRepo{DB: a.DB}
		profileRepo = &profiles.PGRepo{DB: a.DB}
		certRepo = &certificates.PGRepo{DB: a.DB}
		appRepo = &applications.PGRepo{DB: a.DB}
		brandRepo = &branding.PGRepo{DB: a.DB}
		noteRepo = &notifications.PGRepo{DB: a.DB}
		a.Credits = credits.NewPostgresService(credits.NewPGStore(a.DB))
	} else {
		resumeRepo = resumes.NewMemoryRepo()
		profileRepo = profiles.NewMemoryRepo()
		certRepo = certificates.NewMemoryRepo()
		appRepo = applications.NewMemoryRepo()
		brandRepo = branding.NewMemoryRepo()
		noteRepo = notifications.NewMemoryRepo()
		a.Credits = credits.NewService()
	}

	a.Resumes = resumes.NewService(resumeRepo)
	a.Profiles = profiles.NewService(profileRepo, a.Store)
	a.Certificates = certificates.NewService(certRepo, a.Store)
	a.Applications = applications.NewService(appRepo, a.Resumes)
	a.Branding = branding.NewService(brandRepo, a.Store)
	a.Notifications = notifications.NewService(noteRepo)
	a.Credits.SetNotifier(a.Notifications)
	a.Dashboard = &dashboard.Service{
		Resumes:       a.Resumes,
		Certificates:  a.Certificates,
		Applications:  a.Applications,
		Credits:       a.Credits,
		Notifications: a.Notifications,
	}
}

func (a *App) buildRouter() *gin.Engine {
	facade := assistant.NewFacade(a.Assister)
	aiHandler := ai.NewHandler(a.AI)
	aiHandler.Credits = a.Credits
	creditsHandler := credits.NewHandler(a.Credits)

	var readiness func(ctx context.Context) error
	if a.DB != nil {
		readiness = a.DB.PingContext
	}
	var limiter middleware.Limiter
	if a.Redis != nil {
		limiter = middleware.NewRedisLimiter(a.Redis)
	}

	return server.NewRouter(server.RouterDeps{
		Config:   a.Config,
		Function: aiHandler,
		Handlers: []server.RouteRegistrar{
			aiHandler,
			profiles.NewHandler(a.Profiles),
			resumes.NewHandler(a.Resumes),
			certificates.NewHandler(a.Certificates),
			applications.NewHandler(a.Applications),
			branding.NewHandler(a.Branding),
			creditsHandler,
			notifications.NewHandler(a.Notifications),
			dashboard.NewHandler(a.Dashboard),
			assistant.NewHandler(facade, assistant.NewCVAnalyzer(facade), a.Credits),
		},
		Dev:       []server.DevRouteRegistrar{creditsHandler},
		Readiness: readiness,
		Limiter:   limiter,
	})
}
