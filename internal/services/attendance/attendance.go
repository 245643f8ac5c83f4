// Package attendance реализует отметку посещений: не больше одной за
// календарный день, с пересчётом отсчёта до и после вставки и
// автоматической деградацией статуса при серьёзной просрочке.
package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yonasmekonnen/gym-membership/internal/apperr"
	"github.com/yonasmekonnen/gym-membership/internal/lib/dateutil"
	"github.com/yonasmekonnen/gym-membership/internal/models"
)

// Repository определяет методы хранилища для отметки посещений.
type Repository interface {
	GetMember(ctx context.Context, id string) (*models.Member, error)
	UpdateStatus(ctx context.Context, id string, status models.MemberStatus) error
	CountAttendanceSince(ctx context.Context, memberID string, since time.Time) (int, error)
	AttendanceExists(ctx context.Context, memberID string, day time.Time) (bool, error)
	InsertAttendance(ctx context.Context, memberID string, day time.Time) error
	RecordVisit(ctx context.Context, id string, daysLeft int) (int, error)
}

// Engine описывает движок обратного отсчёта.
type Engine interface {
	PlanByID(ctx context.Context, planID string) (*models.ServicePlan, error)
	CountdownFor(plan *models.ServicePlan, startDate time.Time, attendanceCount int) int
}

// Service реализует отметку посещений.
type Service struct {
	repo   Repository
	engine Engine
	log    *slog.Logger
	now    func() time.Time
}

// New создает новый Service.
func New(repo Repository, engine Engine, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		log:    log,
		now:    time.Now,
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record отмечает посещение участника за сегодняшний день.
//
// Порядок проверок повторяет порядок на стойке регистрации: сначала
// дубликат за день, затем существование участника, затем статус.
// Отсчёт считается до вставки: просрочка ниже -3 переводит участника в
// inactive и посещение не записывается; просрочка до -3 переводит в
// expired, но посещение записывается. После вставки отсчёт пересчитывается
// с учётом новой отметки.
func (s *Service) Record(ctx context.Context, memberID string) (*models.AttendanceResult, error) {
	const op = "attendance.Record"

	today := dateutil.DayUTC(s.now())

	exists, err := s.repo.AttendanceExists(ctx, memberID, today)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil, fmt.Errorf("attendance already recorded for today: %w", apperr.ErrConflict)
	}

	member, err := s.repo.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch member.Status {
	case models.StatusFrozen:
		return nil, fmt.Errorf("%s is on freeze, unfreeze them to record attendance: %w",
			member.FullName, apperr.ErrInvalidState)
	case models.StatusInactive:
		return nil, fmt.Errorf("%s is inactive, renew their membership before recording attendance: %w",
			member.FullName, apperr.ErrInvalidState)
	case models.StatusPending:
		return nil, fmt.Errorf("%s is not approved yet, approve their membership before recording attendance: %w",
			member.FullName, apperr.ErrInvalidState)
	case models.StatusDormant:
		return nil, fmt.Errorf("%s is dormant, renew their membership before recording attendance: %w",
			member.FullName, apperr.ErrInvalidState)
	}

	if member.PlanID == nil {
		return nil, fmt.Errorf("%s: member has no service plan: %w", op, apperr.ErrNotFound)
	}
	plan, err := s.engine.PlanByID(ctx, *member.PlanID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	attendanceCount, err := s.repo.CountAttendanceSince(ctx, memberID, member.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	daysLeft := s.engine.CountdownFor(plan, member.StartDate, attendanceCount)
	if daysLeft < -3 {
		if err := s.repo.UpdateStatus(ctx, memberID, models.StatusInactive); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, fmt.Errorf("%s is inactive: %w", member.FullName, apperr.ErrInvalidState)
	}
	expired := false
	if daysLeft < 0 {
		if err := s.repo.UpdateStatus(ctx, memberID, models.StatusExpired); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		expired = true
	}

	if err := s.repo.InsertAttendance(ctx, memberID, today); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	daysLeftAfter := s.engine.CountdownFor(plan, member.StartDate, attendanceCount+1)
	total, err := s.repo.RecordVisit(ctx, memberID, daysLeftAfter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	message := fmt.Sprintf("attendance for %s recorded successfully", member.FullName)
	if expired {
		message = fmt.Sprintf("attendance recorded but %s's membership has expired, remind them to renew it", member.FullName)
	}

	s.log.Info("attendance recorded",
		slog.String("member_id", memberID),
		slog.Int("days_left", daysLeftAfter),
		slog.Bool("expired", expired))

	return &models.AttendanceResult{
		Message:         message,
		MemberName:      member.FullName,
		TotalAttendance: total,
		DaysLeft:        daysLeftAfter,
		Expired:         expired,
	}, nil
}
