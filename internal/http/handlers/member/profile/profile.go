// Package profile реализует HTTP-обработчик чтения профиля участника.
//
// Перед отдачей профиля отсчёт участника пересчитывается на текущий момент,
// чтобы данные в ответе не зависели от времени последней ночной сверки.
package profile

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

// Handler управляет HTTP-запросами чтения профиля участника.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики профиля.
type Service interface {
	Profile(ctx context.Context, memberID string) (*models.Member, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Профиль участника
// @Description Возвращает профиль участника с пересчитанным на текущий момент отсчётом.
// @Tags Members
// @Produce  json
// @Param id path string true "ID участника"
// @Success 200 {object} response.Response "Профиль участника"
// @Failure 404 {object} response.ErrorResponse "Участник не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /members/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.profile"
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

	member, err := h.service.Profile(r.Context(), memberID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Error("member not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("member not found"))
			return
		}
		log.Error("failed to read member profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read member profile"))
		return
	}

	log.Info("member profile read", slog.String("member_id", memberID))
	render.JSON(w, r, response.OKWithData("member profile", member))
}
