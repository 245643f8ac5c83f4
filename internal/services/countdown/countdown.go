// Package countdown реализует движок обратного отсчёта абонемента.
// Отсчёт — это единственный источник истины для daysLeft: меньшее из
// дней до истечения периода и остатка лимита посещений. Все пути,
// меняющие статус участника, считают отсчёт только здесь.
package countdown

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yonasmekonnen/gym-membership/internal/lib/dateutil"
	"github.com/yonasmekonnen/gym-membership/internal/models"
)

// Repository определяет методы хранилища, нужные движку.
type Repository interface {
	// GetServicePlan возвращает тарифный план по ID.
	GetServicePlan(ctx context.Context, id string) (*models.ServicePlan, error)
	// CountAttendanceSince считает посещения участника с указанной даты.
	CountAttendanceSince(ctx context.Context, memberID string, since time.Time) (int, error)
}

// Cache описывает методы для кэширования планов.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Engine — движок обратного отсчёта. Часы инъектируются для тестов.
type Engine struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// New создает новый Engine.
func New(repo Repository, cache Cache, log *slog.Logger) *Engine {
	return &Engine{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// PlanByID возвращает тарифный план, используя кеш. Планы почти не
// меняются, поэтому час жизни в кеше безопасен.
func (e *Engine) PlanByID(ctx context.Context, planID string) (*models.ServicePlan, error) {
	cacheKey := fmt.Sprintf("plan:%s", planID)
	var cached models.ServicePlan
	if e.cache != nil {
		if ok, err := e.cache.Get(cacheKey, &cached); err != nil {
			e.log.Warn("failed to read plan from cache", slog.String("key", cacheKey), slog.Any("err", err))
		} else if ok {
			return &cached, nil
		}
	}

	plan, err := e.repo.GetServicePlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(cacheKey, plan, time.Hour); err != nil {
			e.log.Warn("failed to cache plan", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}
	return plan, nil
}

// CountdownFor — чистый расчёт отсчёта по уже известным плану, якорной
// дате и числу посещений. Вынесен отдельно, чтобы рекордер посещений
// мог пересчитать отсчёт до и после вставки без повторных запросов.
func (e *Engine) CountdownFor(plan *models.ServicePlan, startDate time.Time, attendanceCount int) int {
	expirationDate := startDate.AddDate(0, 0, plan.Period)
	remainingAllowance := plan.MaxDays - attendanceCount
	return dateutil.ClampCountdown(e.now(), expirationDate, remainingAllowance)
}

// Degrade возвращает статус участника с учётом порогов просрочки:
// меньше -3 дней — inactive, от -3 до -1 — expired, иначе статус не меняется.
func Degrade(current models.MemberStatus, daysLeft int) models.MemberStatus {
	switch {
	case daysLeft < -3:
		return models.StatusInactive
	case daysLeft < 0:
		return models.StatusExpired
	default:
		return current
	}
}

// ComputeDaysLeft считает отсчёт участника: читает план и число посещений
// с якорной даты. Побочных эффектов нет. Отсутствие плана отдаёт
// apperr.ErrNotFound без перехвата — решает вызывающая сторона.
func (e *Engine) ComputeDaysLeft(ctx context.Context, planID string, startDate time.Time, memberID string) (int, error) {
	const op = "countdown.ComputeDaysLeft"

	plan, err := e.PlanByID(ctx, planID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	attendanceCount, err := e.repo.CountAttendanceSince(ctx, memberID, startDate)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return e.CountdownFor(plan, startDate, attendanceCount), nil
}
