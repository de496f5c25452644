package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/gym-platform/internal/api/http"
	"github.com/spec-kit/gym-platform/internal/api/http/handlers"
	"github.com/spec-kit/gym-platform/internal/auth"
	"github.com/spec-kit/gym-platform/internal/config"
	"github.com/spec-kit/gym-platform/internal/events"
	"github.com/spec-kit/gym-platform/internal/observability"
	"github.com/spec-kit/gym-platform/internal/persistence"
	"github.com/spec-kit/gym-platform/internal/realtime"
	"github.com/spec-kit/gym-platform/internal/repository"
	"github.com/spec-kit/gym-platform/internal/service"
	"github.com/spec-kit/gym-platform/internal/worker"
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

	pool := pg.PoolHandle()
	memberRepo := repository.NewMemberRepository(pool)
	operatorRepo := repository.NewOperatorRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	metrics := observability.NewMetrics()
	hub := realtime.NewHub(cfg.Realtime.WriteTimeout(), logger, metrics)
	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		MemberRepo:   memberRepo,
		OperatorRepo: operatorRepo,
		Dispatcher:   dispatcher,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Notifications: notificationRepo,
		Members:       memberRepo,
		Operators:     operatorRepo,
		Broadcaster:   hub,
		Cache:         redis,
	}, logger)

	worker.StartNotificationWorker(notificationService, dispatcher)

	resolver := auth.NewResolver(authService.TokenManager(), memberRepo, operatorRepo, auth.CookieNames{
		Member:   cfg.Auth.MemberCookieName,
		Operator: cfg.Auth.OperatorCookieName,
	})
	authMiddleware := auth.NewMiddleware(resolver)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Members:        handlers.NewMembersHandler(authService, cfg.Auth),
		Operators:      handlers.NewOperatorsHandler(authService, cfg.Auth),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
		Hub:            hub,
		RealtimePath:   cfg.Realtime.Path,
		Logger:         logger,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
