package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/netumo/internal/alerting"
	"github.com/hamed0406/netumo/internal/config"
	"github.com/hamed0406/netumo/internal/httpapi"
	"github.com/hamed0406/netumo/internal/logging"
	"github.com/hamed0406/netumo/internal/monitor"
	"github.com/hamed0406/netumo/internal/notify"
	"github.com/hamed0406/netumo/internal/probe"
	"github.com/hamed0406/netumo/internal/repo"
	"github.com/hamed0406/netumo/internal/repo/memory"
	"github.com/hamed0406/netumo/internal/repo/postgres"
	"github.com/hamed0406/netumo/internal/scheduler"
	"github.com/hamed0406/netumo/internal/uptime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	targets, alerts, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store_init_failed", zap.Error(err))
	}

	var channels []notify.Channel
	if email, err := notify.NewEmail(cfg.Mail); err != nil {
		logger.Fatal("mail_init_failed", zap.Error(err))
	} else if email != nil {
		channels = append(channels, email)
	}
	channels = append(channels, notify.NewWebhook(cfg.SlackWebhookURL))
	dispatcher := notify.NewDispatcher(logger, channels...)

	manager := alerting.NewManager(logger, alerts, dispatcher)
	engine := monitor.NewEngine(logger, targets, manager,
		probe.NewHTTPChecker(cfg.CheckTimeout, cfg.VerifyTLS),
		probe.NewTLSChecker(cfg.CheckTimeout, cfg.SSLExpiryThresholdDays),
		probe.NewDomainChecker(probe.NewWhoisClient(cfg.CheckTimeout), cfg.DomainExpiryThresholdDays),
	)

	sched := scheduler.New(logger, engine, scheduler.Options{
		Concurrency:  cfg.Concurrency,
		QueueSize:    cfg.QueueSize,
		MaxAttempts:  cfg.JobMaxAttempts,
		RetryBackoff: cfg.JobRetryBackoff,
	})
	sched.Start(ctx)
	defer sched.Stop()

	// re-register every active target after a restart
	active, err := targets.ListActive(ctx)
	if err != nil {
		logger.Fatal("list_active_failed", zap.Error(err))
	}
	for i := range active {
		sched.ScheduleTarget(&active[i])
	}
	logger.Info("targets_rescheduled", zap.Int("count", len(active)))

	api := httpapi.NewServer(logger, targets, alerts, manager,
		uptime.NewService(targets, alerts), sched, cfg.RateLimitPerMin)

	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router()}
	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("api_serve_failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api_shutdown_failed", zap.Error(err))
	}
}

func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.TargetStore, repo.AlertStore, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("using_memory_stores")
		return memory.New(), memory.NewAlerts(), nil
	}
	pg, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		return nil, nil, err
	}
	logger.Info("using_postgres_stores")
	return pg, pg.Alerts(), nil
}
