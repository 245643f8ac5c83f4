// Package extensionlist реализует HTTP-обработчик списка заявок для персонала.
package extensionlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/yonasmekonnen/gym-membership/internal/http/response"
	"github.com/yonasmekonnen/gym-membership/internal/lib/sl"
	"github.com/yonasmekonnen/gym-membership/internal/models"
)

// Handler управляет HTTP-запросами списка заявок на продление.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка заявок.
type Service interface {
	List(ctx context.Context) ([]*models.ExtensionRequestInfo, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список заявок на продление
// @Description Возвращает все заявки, развёрнутые данными участника и тарифного плана, от новых к старым.
// @Tags Extensions
// @Produce  json
// @Success 200 {object} response.Response "Список заявок"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /extensions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.extension.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list extension requests", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list extension requests"))
		return
	}

	log.Info("extension requests listed", slog.Int("count", len(result)))
	render.JSON(w, r, response.OKWithData("extension requests", result))
}
