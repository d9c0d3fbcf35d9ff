package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/acervohq/acervo-backend/api/routes"
	"github.com/acervohq/acervo-backend/internal/dashboard"
	"github.com/acervohq/acervo-backend/internal/identity"
	"github.com/acervohq/acervo-backend/internal/inventory"
	"github.com/acervohq/acervo-backend/internal/loans"
	"github.com/acervohq/acervo-backend/internal/notifications"
	"github.com/acervohq/acervo-backend/internal/processes"
	"github.com/acervohq/acervo-backend/pkg/auth/session"
	"github.com/acervohq/acervo-backend/pkg/config"
	"github.com/acervohq/acervo-backend/pkg/db"
	"github.com/acervohq/acervo-backend/pkg/logger"
	"github.com/acervohq/acervo-backend/pkg/migrate"
	"github.com/acervohq/acervo-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	identityRepo := identity.NewRepository(dbClient.DB())
	identityService, err := identity.NewService(identityRepo, dbClient, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	inventoryService, err := inventory.NewService(inventoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	loanService, err := loans.NewService(loans.NewRepository(dbClient.DB()), inventoryRepo, identityRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create loan service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	processService, err := processes.NewService(processes.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create process service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Identity:      identityService,
			Inventory:     inventoryService,
			Loans:         loanService,
			Notifications: notificationService,
			Processes:     processService,
			Dashboard:     dashboardService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
