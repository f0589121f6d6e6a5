package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/septivank/energy-metering-api/internal/auth"
	"github.com/septivank/energy-metering-api/internal/config"
	"github.com/septivank/energy-metering-api/internal/db"
	"github.com/septivank/energy-metering-api/internal/httpapi"
	"github.com/septivank/energy-metering-api/internal/mq"
	"github.com/septivank/energy-metering-api/internal/repository"
	"github.com/septivank/energy-metering-api/internal/series"
	"github.com/septivank/energy-metering-api/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func startServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, router *httpapi.Router) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServicePort),
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting https server",
				zap.String("addr", srv.Addr),
				zap.String("cert_file", cfg.TLS.CertFile))
			go func() {
				err := srv.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("failed to shut down server", zap.Error(err))
				return err
			}
			logger.Info("server stopped gracefully")
			return nil
		},
	})
}

func runMigrations(logger *zap.Logger, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return db.RunMigrations(ctx, logger, cfg.Database.URL)
}

// ProvideDBPool creates a new database pool instance
func ProvideDBPool(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*db.Pool, error) {
	return db.NewPool(lc, logger, cfg.Database.URL)
}

// ProvideRepository creates a new repository instance
func ProvideRepository(pool *db.Pool) *repository.Repository {
	return repository.NewRepository(pool)
}

// ProvideCredentialVerifier creates a new credential verifier instance
func ProvideCredentialVerifier(repo *repository.Repository, cfg *config.Config) *auth.Verifier {
	return auth.NewVerifier(repo, cfg.Session.PasswordSalt)
}

// ProvideSessionStore creates a new session store instance
func ProvideSessionStore(repo *repository.Repository, cfg *config.Config) *session.Store {
	return session.NewStore(repo,
		time.Duration(cfg.Session.DefaultDurationHours)*time.Hour,
		time.Duration(cfg.Session.MaxDurationHours)*time.Hour)
}

// ProvideSeriesEngine creates a new series query engine instance
func ProvideSeriesEngine(repo *repository.Repository) *series.Engine {
	return series.NewEngine(repo)
}

// ProvideMQConnection creates the RabbitMQ connection, or nil when no
// broker is configured.
func ProvideMQConnection(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*mq.Connection, error) {
	if cfg.RabbitMQ.URL == "" {
		logger.Info("no RABBITMQ_URL configured, session events disabled")
		return nil, nil
	}
	return mq.NewConnection(lc, logger, cfg.RabbitMQ.URL)
}

// ProvideEventPublisher creates the session event publisher, or nil when
// events are disabled.
func ProvideEventPublisher(conn *mq.Connection, cfg *config.Config, logger *zap.Logger) (*mq.Publisher, error) {
	if conn == nil {
		return nil, nil
	}
	return mq.NewPublisher(conn, cfg.RabbitMQ.EventsExchange, logger)
}

// ProvideHandlers creates the endpoint handlers
func ProvideHandlers(
	verifier *auth.Verifier,
	sessions *session.Store,
	engine *series.Engine,
	publisher *mq.Publisher,
	cfg *config.Config,
	logger *zap.Logger,
) *httpapi.Handlers {
	return httpapi.NewHandlers(verifier, sessions, engine, publisher, cfg.RabbitMQ.EventsRoutingKey, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(handlers *httpapi.Handlers, logger *zap.Logger) *httpapi.Router {
	return httpapi.NewRouter(handlers, logger)
}
