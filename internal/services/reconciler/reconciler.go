// Package reconciler реализует ежедневную сверку статусов участников.
// Алгоритм одного участника вынесен в чистую функцию Reconcile, драйвер
// лишь читает состояние, сохраняет результат и рассылает события.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/yonasmekonnen/gym-membership/internal/apperr"
	"github.com/yonasmekonnen/gym-membership/internal/lib/dateutil"
	"github.com/yonasmekonnen/gym-membership/internal/lib/rabbitmq"
	"github.com/yonasmekonnen/gym-membership/internal/lib/sl"
	"github.com/yonasmekonnen/gym-membership/internal/models"
	"github.com/yonasmekonnen/gym-membership/internal/services/countdown"
)

// Repository определяет методы хранилища, нужные сверке.
type Repository interface {
	ListMembersByStatus(ctx context.Context, statuses []models.MemberStatus) ([]*models.Member, error)
	CountAttendanceSince(ctx context.Context, memberID string, since time.Time) (int, error)
	ApplyUnfreeze(ctx context.Context, id string, startDate time.Time) error
	UpdateCountdown(ctx context.Context, id string, daysLeft int, status models.MemberStatus) error
	CreateNotification(ctx context.Context, memberID, name, description string) error
}

// Engine описывает движок обратного отсчёта.
type Engine interface {
	PlanByID(ctx context.Context, planID string) (*models.ServicePlan, error)
	CountdownFor(plan *models.ServicePlan, startDate time.Time, attendanceCount int) int
}

// Marker ставит маркер идемпотентности: повторный прогон за тот же день
// становится no-op для уже обработанного участника.
type Marker interface {
	SetMarker(ctx context.Context, key string, expiration time.Duration) (bool, error)
}

// Outcome — результат чистой сверки одного участника.
type Outcome struct {
	Unfreeze        bool                  // Заморозка закончилась, участник возвращается в active
	UnfreezeStart   time.Time             // Новая якорная дата после разморозки
	UpdateCountdown bool                  // Отсчёт пересчитан и подлежит сохранению
	DaysLeft        int                   // Новое значение отсчёта
	NewStatus       models.MemberStatus   // Статус после применения порогов
	Events          []models.Notification // Уведомления о деградации статуса
}

// Reconcile — чистая сверка одного участника на момент now.
//
// Замороженный участник: если срок заморозки истёк, возвращается разморозка
// по тому же правилу, что и ручная; отсчёт в этом цикле не пересчитывается.
// Незамороженный: отсчёт пересчитывается и применяются пороги деградации,
// переход в expired или inactive порождает одно уведомление.
// attendanceCount используется только в незамороженной ветке.
func Reconcile(member *models.Member, plan *models.ServicePlan, attendanceCount int, now time.Time) Outcome {
	if member.Status == models.StatusFrozen {
		if member.FreezeDate == nil {
			return Outcome{}
		}
		freezeEnd := member.FreezeDate.AddDate(0, 0, member.FreezeDuration)
		if now.Before(freezeEnd) {
			return Outcome{}
		}
		return Outcome{
			Unfreeze:      true,
			UnfreezeStart: now.AddDate(0, 0, -member.PreFreezeDaysCount),
		}
	}

	expirationDate := member.StartDate.AddDate(0, 0, plan.Period)
	daysLeft := dateutil.ClampCountdown(now, expirationDate, plan.MaxDays-attendanceCount)
	newStatus := countdown.Degrade(member.Status, daysLeft)

	outcome := Outcome{
		UpdateCountdown: true,
		DaysLeft:        daysLeft,
		NewStatus:       newStatus,
	}
	if newStatus != member.Status &&
		(newStatus == models.StatusExpired || newStatus == models.StatusInactive) {
		outcome.Events = append(outcome.Events, models.Notification{
			MemberID:    member.ID,
			Name:        "Membership Status Update",
			Description: fmt.Sprintf("%s's membership has been marked as %s.", member.FullName, newStatus),
		})
	}
	return outcome
}

// Service — драйвер ежедневной сверки.
type Service struct {
	repo      Repository
	engine    Engine
	marker    Marker
	log       *slog.Logger
	now       func() time.Time
	opTimeout time.Duration
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, engine Engine, marker Marker, log *slog.Logger, opTimeout time.Duration) *Service {
	return &Service{
		repo:      repo,
		engine:    engine,
		marker:    marker,
		log:       log,
		now:       time.Now,
		opTimeout: opTimeout,
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run запускает сверку сразу и затем раз в interval.
func (s *Service) Run(ctx context.Context, channel *amqp.Channel, interval time.Duration) {
	s.RunDailyReconciliation(ctx, channel)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunDailyReconciliation(ctx, channel)
		case <-ctx.Done():
			return
		}
	}
}

// RunDailyReconciliation — один проход сверки по всем участникам со статусами
// active, expired и frozen. Ошибка одного участника логируется и не
// прерывает проход. Точка входа идемпотентна в пределах календарного дня.
func (s *Service) RunDailyReconciliation(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting daily membership reconciliation")

	members, err := s.repo.ListMembersByStatus(ctx, []models.MemberStatus{
		models.StatusActive, models.StatusExpired, models.StatusFrozen,
	})
	if err != nil {
		s.log.Error("failed to list members", sl.Err(err))
		return
	}
	if len(members) == 0 {
		s.log.Info("no members to reconcile")
		return
	}

	today := s.now().UTC().Format("2006-01-02")
	for _, member := range members {
		if err := s.reconcileMember(ctx, member, channel, today); err != nil {
			memberFailures.Inc()
			s.log.Error("failed to reconcile member",
				slog.String("member_id", member.ID), sl.Err(err))
			continue
		}
		membersProcessed.Inc()
	}
	s.log.Info("daily membership reconciliation completed", slog.Int("count", len(members)))
}

func (s *Service) reconcileMember(ctx context.Context, member *models.Member, channel *amqp.Channel, today string) error {
	mctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if s.marker != nil {
		key := fmt.Sprintf("reconciled:%s:%s", today, member.ID)
		fresh, err := s.marker.SetMarker(mctx, key, 48*time.Hour)
		if err != nil {
			s.log.Warn("failed to set reconciliation marker", sl.Err(err))
		} else if !fresh {
			return nil
		}
	}

	if member.PlanID == nil {
		s.log.Warn("member has no service plan, skipping",
			slog.String("member_id", member.ID))
		return nil
	}

	plan, err := s.engine.PlanByID(mctx, *member.PlanID)
	if errors.Is(err, apperr.ErrNotFound) {
		s.log.Warn("service plan not found, skipping",
			slog.String("member_id", member.ID), slog.String("plan_id", *member.PlanID))
		return nil
	}
	if err != nil {
		return err
	}

	attendanceCount := 0
	if member.Status != models.StatusFrozen {
		attendanceCount, err = s.repo.CountAttendanceSince(mctx, member.ID, member.StartDate)
		if err != nil {
			return err
		}
	}

	outcome := Reconcile(member, plan, attendanceCount, s.now())

	if outcome.Unfreeze {
		if err := s.repo.ApplyUnfreeze(mctx, member.ID, outcome.UnfreezeStart); err != nil {
			return err
		}
		statusTransitions.WithLabelValues(string(models.StatusActive)).Inc()
		s.log.Info("freeze period ended, member set to active",
			slog.String("member_id", member.ID))
		return nil
	}

	if outcome.UpdateCountdown {
		if err := s.repo.UpdateCountdown(mctx, member.ID, outcome.DaysLeft, outcome.NewStatus); err != nil {
			return err
		}
		if outcome.NewStatus != member.Status {
			statusTransitions.WithLabelValues(string(outcome.NewStatus)).Inc()
		}
	}

	for _, event := range outcome.Events {
		if err := s.repo.CreateNotification(mctx, event.MemberID, event.Name, event.Description); err != nil {
			return err
		}
		if channel != nil {
			if err := rabbitmq.PublishMessage(channel, "notifications", "member.status", event); err != nil {
				s.log.Error("failed to publish notification", sl.Err(err))
			}
		}
	}
	return nil
}
