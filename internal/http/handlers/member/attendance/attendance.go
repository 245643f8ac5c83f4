// Package attendance реализует HTTP-обработчик регистрации посещения.
//
// Посещение записывается не более одного раза в календарный день; после записи
// отсчёт участника пересчитывается и возвращается в ответе вместе с итогами.
package attendance

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

// Handler управляет HTTP-запросами регистрации посещения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики регистрации посещений.
type Service interface {
	Record(ctx context.Context, memberID string) (*models.AttendanceResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Зарегистрировать посещение
// @Description Записывает посещение участника за сегодня и возвращает пересчитанный отсчёт.
// @Tags Attendance
// @Produce  json
// @Param id path string true "ID участника"
// @Success 200 {object} response.Response "Посещение записано"
// @Failure 404 {object} response.ErrorResponse "Участник не найден"
// @Failure 409 {object} response.ErrorResponse "Повторное посещение или недопустимый статус"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /members/{id}/attendance [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.attendance"
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

	result, err := h.service.Record(r.Context(), memberID)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			log.Error("member or plan not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("member not found"))
		case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrInvalidState):
			log.Error("attendance rejected", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to record attendance", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not record attendance"))
		}
		return
	}

	log.Info("attendance recorded",
		slog.String("member_id", memberID), slog.Int("days_left", result.DaysLeft))
	render.JSON(w, r, response.OKWithData(result.Message, result))
}
