package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"runhub/internal/config"
	"runhub/internal/httpserver"
	"runhub/internal/logging"
	"runhub/internal/observability"
	"runhub/internal/security"
	"runhub/internal/service"
	"runhub/internal/store/memory"
	mongostore "runhub/internal/store/mongo"
	"runhub/internal/ws"
)

// @title           runhub messaging API
// @version         1.0
// @description     Conversations, messages, blast messages and notifications for runhub.

// @contact.name    API Support

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host            localhost:8000
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	metrics := observability.NewMetrics("runhub")

	// Real-time fan-out
	hub := ws.NewHub(metrics, logger)
	defer hub.Close()

	var publisher service.EventPublisher = hub
	var relay *ws.RedisRelay
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		relay = ws.NewRedisRelay(rdb, cfg.RedisChannel, hub, metrics, logger)
		publisher = relay
	}

	var tokens *security.TokenService
	if cfg.JWTSecret != "" {
		tokens = security.NewTokenService(cfg.JWTSecret, 24*time.Hour)
	}

	// Services
	convSvc := service.NewConversationService(repos, metrics, logger)
	msgSvc := service.NewMessageService(repos, publisher, metrics, logger)
	blastSvc := service.NewBlastService(repos, convSvc, msgSvc, publisher, cfg.BlastConcurrency, metrics, logger)
	notifSvc := service.NewNotificationService(repos, publisher, logger)

	router := httpserver.NewRouter(cfg, httpserver.Services{
		Conversations: convSvc,
		Messages:      msgSvc,
		Blast:         blastSvc,
		Notifications: notifSvc,
		Users:         repos.Users,
	}, hub, tokens, metrics, logger)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server",
			zap.String("addr", cfg.HTTPAddr()),
			zap.String("store", cfg.StoreDriver),
			zap.Bool("redis_relay", relay != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if relay != nil {
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil {
				// Local fan-out keeps working without the relay.
				logger.Error("redis relay stopped", zap.Error(err))
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openStore returns the repositories for the configured driver and a cleanup
// function.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Repositories, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		db := memory.NewDB()
		return service.Repositories{
			Users:         memory.NewUserRepo(db),
			Conversations: memory.NewConversationRepo(db),
			Messages:      memory.NewMessageRepo(db),
			Notifications: memory.NewNotificationRepo(db),
		}, func() {}, nil

	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := mongostore.Open(connectCtx, cfg.MongoURI)
		if err != nil {
			return service.Repositories{}, nil, err
		}
		db := client.Database(cfg.MongoDB)
		if err := mongostore.Migrate(connectCtx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return service.Repositories{}, nil, fmt.Errorf("migrate: %w", err)
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("disconnect mongo", zap.Error(err))
			}
		}
		return service.Repositories{
			Users:         mongostore.NewUserRepo(db),
			Conversations: mongostore.NewConversationRepo(db),
			Messages:      mongostore.NewMessageRepo(db),
			Notifications: mongostore.NewNotificationRepo(db),
		}, closeFn, nil
	}
}
