package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/service-desk/internal/api/http"
	"github.com/spec-kit/service-desk/internal/api/http/handlers"
	"github.com/spec-kit/service-desk/internal/auth"
	"github.com/spec-kit/service-desk/internal/chat"
	"github.com/spec-kit/service-desk/internal/classify"
	"github.com/spec-kit/service-desk/internal/config"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/numbering"
	"github.com/spec-kit/service-desk/internal/observability"
	"github.com/spec-kit/service-desk/internal/persistence"
	"github.com/spec-kit/service-desk/internal/repository"
	"github.com/spec-kit/service-desk/internal/resolve"
	"github.com/spec-kit/service-desk/internal/scheduler"
	"github.com/spec-kit/service-desk/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	orderRepo := repository.NewOrderRepository(pool)
	catalogRepo := repository.NewCatalogRepository(pool)

	ruleset, err := classify.LoadRuleset(cfg.Catalog.RulesetPath)
	if err != nil {
		logger.Fatal("failed to load classifier ruleset", zap.Error(err))
	}
	classifier := classify.NewClassifier(ruleset)
	catalog := resolve.NewLoader(catalogRepo, redis.ClientHandle(), cfg.Catalog.CacheTTL(), logger)
	numbers := numbering.NewService(orderRepo, logger)

	var transport chat.Transport
	if cfg.Chat.GatewayURL != "" {
		transport = chat.NewHTTPGateway(cfg.Chat.GatewayURL, cfg.Chat.SendTimeout(), logger)
	} else {
		transport = chat.LogTransport{Logger: logger}
	}
	router := chat.NewRouter(cfg.Chat)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, transport, router, logger)
	notifications.RegisterHandlers()

	intake := service.NewIntakeService(service.IntakeDependencies{
		Classifier:        classifier,
		Catalog:           catalog,
		Numbers:           numbers,
		OrderRepo:         orderRepo,
		Dispatcher:        dispatcher,
		Metrics:           metrics,
		Logger:            logger,
		DefaultTechnician: cfg.Chat.DefaultTechnician,
	})
	lifecycle := service.NewLifecycleService(service.LifecycleDependencies{
		OrderRepo:  orderRepo,
		Dispatcher: dispatcher,
		Transport:  transport,
		Metrics:    metrics,
		Logger:     logger,
	})
	reminders := service.NewReminderService(service.ReminderDependencies{
		OrderRepo:  orderRepo,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		Config:     cfg.Reminder,
	})

	sched := scheduler.NewCronScheduler(logger)
	if err := sched.EveryAt(cfg.Reminder.SweepTimes, func() {
		if err := reminders.Sweep(context.Background()); err != nil {
			logger.Error("reminder sweep failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("failed to schedule reminder sweeps", zap.Error(err))
	}
	if err := sched.DailyAt(cfg.Reminder.SummaryTime, func() {
		if err := reminders.DailySummary(context.Background()); err != nil {
			logger.Error("daily summary failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("failed to schedule daily summary", zap.Error(err))
	}
	if err := sched.EveryInterval(time.Hour, func() {
		reminders.Heartbeat(context.Background())
	}); err != nil {
		logger.Fatal("failed to schedule heartbeat", zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Webhook:        handlers.NewWebhookHandler(intake, lifecycle, cfg.Auth.GatewaySecretHash, logger),
		Status:         handlers.NewStatusHandler(lifecycle, tokens, cfg.Auth.GatewaySecretHash),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	sched.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
