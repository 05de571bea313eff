package main

import (
	"context"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"freelance-market/internal/app"
	"freelance-market/internal/core/config"
	"freelance-market/internal/core/logger"
	"freelance-market/internal/core/server"
	"freelance-market/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	a, err := app.Open(cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	if b := cfg.Bootstrap; b.AdminEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		u, created, err := a.Users.EnsureAdmin(ctx, b.AdminEmail, b.AdminPassword)
		cancel()
		if err != nil {
			log.Fatal("bootstrap admin failed", zap.Error(err))
		}
		log.Info("bootstrap admin ready", zap.Uint("user_id", u.ID), zap.Bool("created", created))
	}

	r := router.NewAdminEngine(a.RouterOptions())

	ad := cfg.App.Admin
	srv := server.BuildServer(server.Addr(ad.Host, ad.Port), r, 5*time.Second, 10*time.Second, 60*time.Second)
	base := server.BaseURL(ad.Host, ad.Port)
	log.Info("admin api starting",
		zap.String("open", base),
		zap.String("health", base+"/health"),
		zap.String("admin_v1", base+"/admin/v1"),
	)
	server.Run(srv, log, "admin api", 10*time.Second)
}
