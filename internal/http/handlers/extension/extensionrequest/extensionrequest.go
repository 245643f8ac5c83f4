// Package extensionrequest реализует HTTP-обработчик подачи заявки на продление.
//
// Заявка создаётся в статусе pending; база гарантирует не больше одной
// pending-заявки на пару участник+план.
package extensionrequest

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

// Handler управляет HTTP-запросами подачи заявок на продление.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики заявок на продление.
type Service interface {
	Request(ctx context.Context, memberID, planID string) (string, error)
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
// @Summary Подать заявку на продление
// @Description Создает pending-заявку на продление абонемента участника по выбранному тарифному плану.
// @Tags Extensions
// @Accept  json
// @Produce  json
// @Param id path string true "ID участника"
// @Param request body models.ExtensionCreateRequest true "Тарифный план для продления"
// @Success 200 {object} response.Response "Заявка создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Участник или план не найден"
// @Failure 409 {object} response.ErrorResponse "Pending-заявка уже существует"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /members/{id}/extensions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.extension.request"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	memberID := chi.URLParam(r, "id")
	if memberID == "" {
		log.Error("member id is empty")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid member id"))
		return
	}

	var req models.ExtensionCreateRequest
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

	requestID, err := h.service.Request(r.Context(), memberID, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			log.Error("member or plan not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("member or plan not found"))
		case errors.Is(err, apperr.ErrConflict):
			log.Error("pending extension already exists", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("pending extension request already exists"))
		default:
			log.Error("failed to create extension request", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create extension request"))
		}
		return
	}

	log.Info("extension request created", slog.String("request_id", requestID))
	render.JSON(w, r, response.OKWithData("extension request created", map[string]any{
		"request_id": requestID,
	}))
}
