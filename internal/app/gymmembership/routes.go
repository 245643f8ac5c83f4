// Package gymmembership предоставляет сборку и маршруты основного приложения.
package gymmembership

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/yonasmekonnen/gym-membership/internal/http/handlers/auth/login"
	"github.com/yonasmekonnen/gym-membership/internal/http/handlers/extension/extensionlist"
	"github.com/yonasmekonnen/gym-membership/internal/http/handlers/extension/extensionrequest"
	"github.com/yonasmekonnen/gym-membership/internal/http/handlers/extension/extensionresolve"
	"github.com/yonasmekonnen/gym-membership/internal/http/handlers/extension/extensionstatus"
	"github.com/yonasmekonnen/gym-membership/internal/http/handlers/health"
	"github.com/yonasmekonnen/gym-membership/internal/http/handlers/member/attendance"
	"github.com/yonasmekonnen/gym-membership/internal/http/handlers/member/profile"
	"github.com/yonasmekonnen/gym-membership/internal/http/handlers/member/renew"
	"github.com/yonasmekonnen/gym-membership/internal/http/handlers/member/status"
	"github.com/yonasmekonnen/gym-membership/internal/http/middlewarectx"
	authservice "github.com/yonasmekonnen/gym-membership/internal/services/auth"
	attendanceservice "github.com/yonasmekonnen/gym-membership/internal/services/attendance"
	extensionservice "github.com/yonasmekonnen/gym-membership/internal/services/extension"
	membershipservice "github.com/yonasmekonnen/gym-membership/internal/services/membership"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	membershipService *membershipservice.Service,
	attendanceService *attendanceservice.Service,
	extensionService *extensionservice.Service,
	authService *authservice.AuthService,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/members/{id}", profile.New(logger, membershipService).ServeHTTP)
			r.Patch("/members/{id}/status", status.New(logger, membershipService).ServeHTTP)
			r.Post("/members/{id}/renew", renew.New(logger, membershipService).ServeHTTP)
			r.Post("/members/{id}/attendance", attendance.New(logger, attendanceService).ServeHTTP)

			r.Post("/members/{id}/extensions", extensionrequest.New(logger, extensionService).ServeHTTP)
			r.Get("/members/{id}/extensions/latest", extensionstatus.New(logger, extensionService).ServeHTTP)

			// Решение и просмотр заявок доступны только администраторам
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RoleMiddleware(logger, "admin"))
				r.Get("/extensions", extensionlist.New(logger, extensionService).ServeHTTP)
				r.Patch("/extensions/{id}", extensionresolve.New(logger, extensionService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
