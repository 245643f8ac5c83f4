// Package membership содержит бизнес-логику переходов статуса абонемента:
// активация, заморозка, разморозка, возобновление и профиль участника.
package membership

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yonasmekonnen/gym-membership/internal/apperr"
	"github.com/yonasmekonnen/gym-membership/internal/lib/dateutil"
	"github.com/yonasmekonnen/gym-membership/internal/models"
	"github.com/yonasmekonnen/gym-membership/internal/services/countdown"
)

// Repository определяет методы хранилища участников.
type Repository interface {
	GetMember(ctx context.Context, id string) (*models.Member, error)
	UpdateStatus(ctx context.Context, id string, status models.MemberStatus) error
	UpdateCountdown(ctx context.Context, id string, daysLeft int, status models.MemberStatus) error
	ApplyActivation(ctx context.Context, id string, startDate time.Time, daysLeft int) error
	ApplyFreeze(ctx context.Context, id string, freezeDate time.Time, freezeDuration, preFreezeAttendance, preFreezeDaysCount int) error
	ApplyUnfreeze(ctx context.Context, id string, startDate time.Time) error
	ApplyRenewal(ctx context.Context, id string, startDate time.Time) error
	CountAttendanceSince(ctx context.Context, memberID string, since time.Time) (int, error)
}

// Engine описывает движок обратного отсчёта.
type Engine interface {
	ComputeDaysLeft(ctx context.Context, planID string, startDate time.Time, memberID string) (int, error)
	PlanByID(ctx context.Context, planID string) (*models.ServicePlan, error)
}

// Service реализует переходы статуса участника.
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

// UpdateStatus применяет запрошенную персоналом смену статуса.
// Формат даты — 02-01-2006. Значение unfreeze трактуется как действие
// разморозки, остальные значения — как целевой статус.
func (s *Service) UpdateStatus(ctx context.Context, memberID string, req models.StatusUpdateRequest) (*models.Member, error) {
	const op = "membership.UpdateStatus"

	member, err := s.repo.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var explicitStart *time.Time
	if req.StartDate != "" {
		parsed, err := time.Parse("02-01-2006", req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid start date: %w", op, apperr.ErrInvalidArgument)
		}
		explicitStart = &parsed
	}

	switch req.Status {
	case "active":
		err = s.Activate(ctx, member, explicitStart)
	case "unfreeze":
		err = s.Unfreeze(ctx, member)
	case "frozen":
		err = s.Freeze(ctx, member, req.FreezeDuration)
	case "inactive", "pending", "dormant":
		err = s.repo.UpdateStatus(ctx, memberID, models.MemberStatus(req.Status))
	default:
		return nil, fmt.Errorf("%s: unknown status %q: %w", op, req.Status, apperr.ErrInvalidArgument)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("member status updated",
		slog.String("member_id", memberID), slog.String("status", string(updated.Status)))
	return updated, nil
}

// Activate делает участника активным. Если текущий отсчёт отрицательный,
// новая якорная дата отодвигается назад на величину просрочки, чтобы
// просроченные дни считались уже прошедшими.
func (s *Service) Activate(ctx context.Context, member *models.Member, explicitStart *time.Time) error {
	const op = "membership.Activate"

	if member.PlanID == nil {
		return fmt.Errorf("%s: member has no service plan: %w", op, apperr.ErrNotFound)
	}

	startDate := s.now()
	if explicitStart != nil {
		startDate = *explicitStart
	}
	if member.DaysLeft < 0 {
		startDate = s.now().AddDate(0, 0, member.DaysLeft)
	}

	daysLeft, err := s.engine.ComputeDaysLeft(ctx, *member.PlanID, startDate, member.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.repo.ApplyActivation(ctx, member.ID, startDate, daysLeft)
}

// Freeze приостанавливает абонемент, снимая снимок прошедших дней периода
// и числа посещений. Допустим только из active или expired.
func (s *Service) Freeze(ctx context.Context, member *models.Member, freezeDuration int) error {
	const op = "membership.Freeze"

	if freezeDuration <= 0 {
		return fmt.Errorf("%s: freeze duration is required: %w", op, apperr.ErrInvalidArgument)
	}
	if member.Status != models.StatusActive && member.Status != models.StatusExpired {
		return fmt.Errorf("%s: cannot freeze member in status %s: %w", op, member.Status, apperr.ErrInvalidState)
	}

	attendanceCount, err := s.repo.CountAttendanceSince(ctx, member.ID, member.StartDate)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	daysSinceStart := dateutil.DaysBetween(member.StartDate, s.now())

	return s.repo.ApplyFreeze(ctx, member.ID, s.now(), freezeDuration, attendanceCount, daysSinceStart)
}

// Unfreeze снимает заморозку: якорная дата отматывается на число дней,
// прошедших до заморозки, поэтому замороженное время не идёт в зачёт.
func (s *Service) Unfreeze(ctx context.Context, member *models.Member) error {
	const op = "membership.Unfreeze"

	if member.FreezeDate == nil {
		return fmt.Errorf("%s: member is not currently frozen: %w", op, apperr.ErrInvalidState)
	}

	startDate := s.now().AddDate(0, 0, -member.PreFreezeDaysCount)
	return s.repo.ApplyUnfreeze(ctx, member.ID, startDate)
}

// Renew сбрасывает абонемент после истечения: отсчёт и снимки заморозки
// обнуляются, участник уходит в pending до повторного одобрения.
func (s *Service) Renew(ctx context.Context, memberID string) (*models.Member, error) {
	const op = "membership.Renew"

	if _, err := s.repo.GetMember(ctx, memberID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.ApplyRenewal(ctx, memberID, s.now()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Profile возвращает участника, для active и expired пересчитывая отсчёт
// и применяя те же пороги деградации, что и ежедневная сверка.
func (s *Service) Profile(ctx context.Context, memberID string) (*models.Member, error) {
	const op = "membership.Profile"

	member, err := s.repo.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if member.PlanID == nil {
		return nil, fmt.Errorf("%s: member has no service plan: %w", op, apperr.ErrNotFound)
	}

	if member.Status != models.StatusActive && member.Status != models.StatusExpired {
		return member, nil
	}

	daysLeft, err := s.engine.ComputeDaysLeft(ctx, *member.PlanID, member.StartDate, member.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	newStatus := countdown.Degrade(member.Status, daysLeft)
	if err := s.repo.UpdateCountdown(ctx, member.ID, daysLeft, newStatus); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	member.DaysLeft = daysLeft
	member.Status = newStatus
	return member, nil
}
