// Package app wires configuration into the store, cache, services and HTTP
// modules shared by the public and admin binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"freelance-market/internal/core/auth"
	"freelance-market/internal/core/cache"
	"freelance-market/internal/core/config"
	"freelance-market/internal/core/database"
	"freelance-market/internal/domain"
	"freelance-market/internal/repo"
	"freelance-market/internal/service"
	"freelance-market/internal/transport/http/handler"
	"freelance-market/internal/transport/http/router"
	"freelance-market/pkg/utils"
)

type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB // nil when built over another UnitOfWork
	Cache *cache.Cache

	Identity     *service.IdentityService
	Users        *service.UserService
	Projects     *service.ProjectService
	Applications *service.ApplicationService
	Reviews      *service.ReviewService
	UserReviews  *service.UserReviewService

	Registry *router.Registry
}

// Open connects to the database (migrating when configured) and redis, then
// builds the services on top.
func Open(cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             log,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}

	var c *cache.Cache
	if cfg.Redis.Enable {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := c.Ping(ctx); err != nil {
			log.Warn("redis unreachable, continuing without cache", zap.Error(err))
			_ = c.Close()
			c = nil
		}
	}

	a := New(cfg, log, repo.NewStore(db), c)
	a.DB = db
	return a, nil
}

// New builds the services over any UnitOfWork.
func New(cfg *config.Config, log *zap.Logger, uow domain.UnitOfWork, c *cache.Cache) *App {
	deps := service.Deps{
		UoW:   uow,
		Cache: c,
		Log:   log,
		TTL: service.CacheTTL{
			Profile: time.Duration(cfg.Cache.ProfileTTLSec) * time.Second,
			Stats:   time.Duration(cfg.Cache.StatsTTLSec) * time.Second,
		},
	}
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		Leeway: time.Duration(cfg.JWT.LeewaySec) * time.Second,
	}
	hasher := utils.Bcrypt{Cost: cfg.Security.BcryptCost}

	a := &App{Cfg: cfg, Log: log, Cache: c}
	a.Identity = service.NewIdentityService(deps, hasher, jwter)
	a.Users = service.NewUserService(deps, hasher)
	a.Projects = service.NewProjectService(deps)
	a.Applications = service.NewApplicationService(deps)
	a.Reviews = service.NewReviewService(deps)
	a.UserReviews = service.NewUserReviewService(deps)

	a.Registry = router.NewRegistry(
		handler.UserHandler{Users: a.Users, Identity: a.Identity, Reviews: a.UserReviews},
		handler.ProjectHandler{Projects: a.Projects, Applications: a.Applications},
		handler.ApplicationHandler{Applications: a.Applications, Reviews: a.Reviews},
		handler.AdminHandler{Users: a.Users, Applications: a.Applications},
	)
	return a
}

// RouterOptions is the engine configuration for either server.
func (a *App) RouterOptions() router.Options {
	return router.Options{
		Log:      a.Log,
		Limits:   a.Cfg.Limits,
		Resolver: a.Identity,
		Registry: a.Registry,
		Health:   a.Health,
	}
}

// Health pings the database and, when enabled, redis.
func (a *App) Health(ctx context.Context) error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := a.Cache.Ping(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

func (a *App) Close() {
	_ = a.Cache.Close()
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
