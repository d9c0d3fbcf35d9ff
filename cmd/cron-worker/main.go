package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acervohq/acervo-backend/internal/cron"
	"github.com/acervohq/acervo-backend/internal/identity"
	"github.com/acervohq/acervo-backend/internal/inventory"
	"github.com/acervohq/acervo-backend/internal/loans"
	"github.com/acervohq/acervo-backend/internal/notifications"
	"github.com/acervohq/acervo-backend/pkg/config"
	"github.com/acervohq/acervo-backend/pkg/db"
	"github.com/acervohq/acervo-backend/pkg/enums"
	"github.com/acervohq/acervo-backend/pkg/logger"
	"github.com/acervohq/acervo-backend/pkg/metrics"
	"github.com/acervohq/acervo-backend/pkg/migrate"
	"github.com/acervohq/acervo-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	identityRepo := identity.NewRepository(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())
	loanService, err := loans.NewService(loans.NewRepository(dbClient.DB()), inventoryRepo, identityRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create loan service", err)
		os.Exit(1)
	}

	notificationRepo := notifications.NewRepository(dbClient.DB())
	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	senders := notifications.NewSenderRegistry()
	emailSender, err := notifications.NewLogSender(enums.NotificationChannelEmail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create email sender", err)
		os.Exit(1)
	}
	whatsappSender, err := notifications.NewLogSender(enums.NotificationChannelWhatsApp, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create whatsapp sender", err)
		os.Exit(1)
	}
	senders.Register(enums.NotificationChannelEmail, emailSender)
	senders.Register(enums.NotificationChannelWhatsApp, whatsappSender)

	overdueJob, err := cron.NewLoanOverdueJob(cron.LoanOverdueJobParams{
		Logger: logg,
		Loans:  loanService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create loan overdue job", err)
		os.Exit(1)
	}
	reminderJob, err := cron.NewLoanReminderJob(cron.LoanReminderJobParams{
		Logger:        logg,
		Loans:         loanService,
		Notifications: notificationService,
		Existing:      notificationRepo,
		DaysAhead:     cfg.Notify.ReminderDaysAhead,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create loan reminder job", err)
		os.Exit(1)
	}
	dispatchJob, err := cron.NewNotificationDispatchJob(cron.NotificationDispatchJobParams{
		Logger:        logg,
		Notifications: notificationService,
		Sender:        senders,
		MaxAttempts:   cfg.Notify.MaxAttempts,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatch job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cfg.Cron.LockKey), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(overdueJob, reminderJob, dispatchJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		addr := ":" + cfg.Cron.Port
		logg.Info(logg.WithField(ctx, "addr", addr), "serving cron metrics")
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
