package gymmembership

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/yonasmekonnen/gym-membership/internal/cache"
	"github.com/yonasmekonnen/gym-membership/internal/config"
	"github.com/yonasmekonnen/gym-membership/internal/lib/jwt"
	"github.com/yonasmekonnen/gym-membership/internal/migrations"
	authservice "github.com/yonasmekonnen/gym-membership/internal/services/auth"
	attendanceservice "github.com/yonasmekonnen/gym-membership/internal/services/attendance"
	"github.com/yonasmekonnen/gym-membership/internal/services/countdown"
	extensionservice "github.com/yonasmekonnen/gym-membership/internal/services/extension"
	membershipservice "github.com/yonasmekonnen/gym-membership/internal/services/membership"
	"github.com/yonasmekonnen/gym-membership/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New собирает приложение: хранилище, миграции, кэш, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	engine := countdown.New(db, cacheRedis, logger)
	membershipService := membershipservice.New(db, engine, logger)
	attendanceService := attendanceservice.New(db, engine, logger)
	extensionService := extensionservice.New(db, logger)
	authService := authservice.NewAuthService(db, jwtMaker)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, membershipService, attendanceService, extensionService, authService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
