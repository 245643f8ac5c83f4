// Package extensionstatus реализует HTTP-обработчик чтения последней заявки участника.
package extensionstatus

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/yonasmekonnen/gym-membership/internal/apperr"
	"github.com/yonasmekonnen/gym-membership/internal/http/response"
	"github.com/yonasmekonnen/gym-membership/internal/lib/sl"
	"github.com/yonasmekonnen/gym-membership/internal/models"
)

// Handler управляет HTTP-запросами чтения статуса последней заявки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения заявок.
type Service interface {
	LatestStatus(ctx context.Context, memberID string) (*models.ExtensionRequest, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статус последней заявки участника
// @Description Возвращает последнюю по времени заявку участника на продление.
// @Tags Extensions
// @Produce  json
// @Param id path string true "ID участника"
// @Success 200 {object} response.Response "Последняя заявка"
// @Failure 404 {object} response.ErrorResponse "Заявок не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /members/{id}/extensions/latest [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.extension.status"
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

	result, err := h.service.LatestStatus(r.Context(), memberID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Error("no extension requests found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no extension requests found"))
			return
		}
		log.Error("failed to read extension status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read extension status"))
		return
	}

	log.Info("extension status read", slog.String("member_id", memberID))
	render.JSON(w, r, response.OKWithData("latest extension request", result))
}
