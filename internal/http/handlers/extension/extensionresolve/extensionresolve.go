// Package extensionresolve реализует HTTP-обработчик решения персонала по заявке.
//
// Одобрение заявки продлевает абонемент участника с зачётом просроченных дней,
// отклонение оставляет участника без изменений.
package extensionresolve

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/yonasmekonnen/gym-membership/internal/apperr"
	"github.com/yonasmekonnen/gym-membership/internal/http/response"
	"github.com/yonasmekonnen/gym-membership/internal/lib/sl"
	"github.com/yonasmekonnen/gym-membership/internal/models"
)

// Handler управляет HTTP-запросами решения по заявкам на продление.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики решения по заявкам.
type Service interface {
	Resolve(ctx context.Context, requestID, resolution, startDate string) (*models.ExtensionRequest, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Решить заявку на продление
// @Description Одобряет или отклоняет pending-заявку. При одобрении абонемент участника продлевается с зачётом просрочки.
// @Tags Extensions
// @Accept  json
// @Produce  json
// @Param id path string true "ID заявки"
// @Param request body models.ExtensionResolveRequest true "Решение и опциональная дата начала"
// @Success 200 {object} response.Response "Заявка решена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или решение"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 409 {object} response.ErrorResponse "Заявка уже решена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /extensions/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.extension.resolve"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		log.Error("extension request id is empty")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid extension request id"))
		return
	}

	var req models.ExtensionResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	result, err := h.service.Resolve(r.Context(), requestID, req.Status, req.StartDate)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			log.Error("extension request not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("extension request not found"))
		case errors.Is(err, apperr.ErrInvalidState):
			log.Error("extension request already resolved", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, apperr.ErrInvalidArgument):
			log.Error("invalid resolution", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to resolve extension request", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not resolve extension request"))
		}
		return
	}

	log.Info("extension request resolved",
		slog.String("extension_id", requestID), slog.String("status", string(result.Status)))
	render.JSON(w, r, response.OKWithData("extension request resolved", result))
}
