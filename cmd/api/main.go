package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/site-api/internal/api/http"
	"github.com/spec-kit/site-api/internal/api/http/handlers"
	"github.com/spec-kit/site-api/internal/auth"
	"github.com/spec-kit/site-api/internal/config"
	"github.com/spec-kit/site-api/internal/events"
	"github.com/spec-kit/site-api/internal/mail"
	"github.com/spec-kit/site-api/internal/observability"
	"github.com/spec-kit/site-api/internal/persistence"
	"github.com/spec-kit/site-api/internal/repository"
	"github.com/spec-kit/site-api/internal/service"
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
	contactRepo := repository.NewContactRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	mailer := mail.NewClient(cfg.Mail, logger)

	contactService := service.NewContactService(service.ContactDependencies{
		ContactRepo: contactRepo,
		Mailer:      mailer,
		Dispatcher:  dispatcher,
		Logger:      logger,
		MailConfig:  cfg.Mail,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		UserRepo:    userRepo,
		Mailer:      mailer,
		Dispatcher:  dispatcher,
		Logger:      logger,
		MailConfig:  cfg.Mail,
		SiteBaseURL: cfg.App.SiteBaseURL,
	})
	adminService := service.NewAdminService(cfg.Auth, adminRepo)

	notificationService := service.NewNotificationService(dispatcher, logger, metrics)
	notificationService.RegisterHandlers()

	adminMiddleware := auth.NewAdminMiddleware(adminService.TokenManager(), adminRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Contact:         handlers.NewContactHandler(contactService),
		Support:         handlers.NewSupportHandler(ticketService),
		Webhook:         handlers.NewWebhookHandler(contactService, redis, logger, cfg.Mail.WebhookSecret),
		AdminContacts:   handlers.NewAdminContactsHandler(contactService),
		AdminSupport:    handlers.NewAdminSupportHandler(ticketService),
		AdminAccounts:   handlers.NewAdminAccountsHandler(adminService),
		AdminMiddleware: adminMiddleware,
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
