// Package extension содержит бизнес-логику заявок на продление абонемента:
// создание участником и одобрение либо отклонение персоналом.
package extension

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yonasmekonnen/gym-membership/internal/apperr"
	"github.com/yonasmekonnen/gym-membership/internal/models"
)

// Repository определяет методы хранилища для заявок на продление.
type Repository interface {
	GetMember(ctx context.Context, id string) (*models.Member, error)
	GetServicePlan(ctx context.Context, id string) (*models.ServicePlan, error)
	CreateExtensionRequest(ctx context.Context, memberID, planID string) (string, error)
	GetExtensionRequest(ctx context.Context, id string) (*models.ExtensionRequest, error)
	UpdateExtensionStatus(ctx context.Context, id string, status models.ExtensionStatus) error
	FindPendingExtension(ctx context.Context, memberID, planID string) (*models.ExtensionRequest, error)
	LatestExtensionRequest(ctx context.Context, memberID string) (*models.ExtensionRequest, error)
	ListExtensionRequests(ctx context.Context) ([]*models.ExtensionRequestInfo, error)
	ApplyExtensionApproval(ctx context.Context, id string, startDate time.Time, daysLeft int) error
}

// Service реализует жизненный цикл заявок на продление.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New создает новый Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Request создает pending-заявку участника на продление плана.
// Повторная pending-заявка на ту же пару участник+план отклоняется с Conflict.
func (s *Service) Request(ctx context.Context, memberID, planID string) (string, error) {
	const op = "extension.Request"

	if _, err := s.repo.GetMember(ctx, memberID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.repo.GetServicePlan(ctx, planID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	existing, err := s.repo.FindPendingExtension(ctx, memberID, planID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return "", fmt.Errorf("%s: pending request already exists for this plan: %w", op, apperr.ErrConflict)
	}

	id, err := s.repo.CreateExtensionRequest(ctx, memberID, planID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("extension request created",
		slog.String("member_id", memberID), slog.String("request_id", id))
	return id, nil
}

// Resolve применяет решение персонала по заявке. При одобрении абонемент
// продлевается на период запрошенного плана; если текущий отсчёт участника
// отрицательный, просроченные дни списываются из нового периода, а якорная
// дата отодвигается назад на ту же величину.
func (s *Service) Resolve(ctx context.Context, requestID, resolution, startDate string) (*models.ExtensionRequest, error) {
	const op = "extension.Resolve"

	status, err := models.ParseExtensionResolution(resolution)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	request, err := s.repo.GetExtensionRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if request.Status != models.ExtensionPending {
		return nil, fmt.Errorf("%s: request already resolved as %s: %w", op, request.Status, apperr.ErrInvalidState)
	}
	member, err := s.repo.GetMember(ctx, request.MemberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	parsedStart := s.now()
	if startDate != "" {
		parsedStart, err = time.Parse("02-01-2006", startDate)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid start date: %w", op, apperr.ErrInvalidArgument)
		}
	}

	if err := s.repo.UpdateExtensionStatus(ctx, requestID, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	request.Status = status

	if status != models.ExtensionApproved {
		return request, nil
	}

	plan, err := s.repo.GetServicePlan(ctx, request.PlanID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serviceDays := plan.Period
	daysLeft := serviceDays
	if member.DaysLeft < 0 {
		parsedStart = parsedStart.AddDate(0, 0, member.DaysLeft)
		daysLeft = serviceDays + member.DaysLeft
	}

	if err := s.repo.ApplyExtensionApproval(ctx, member.ID, parsedStart, daysLeft); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("extension request approved",
		slog.String("member_id", member.ID), slog.Int("days_left", daysLeft))
	return request, nil
}

// LatestStatus возвращает последнюю заявку участника.
func (s *Service) LatestStatus(ctx context.Context, memberID string) (*models.ExtensionRequest, error) {
	const op = "extension.LatestStatus"

	request, err := s.repo.LatestExtensionRequest(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return request, nil
}

// List возвращает все заявки с данными участника и плана для панели персонала.
func (s *Service) List(ctx context.Context) ([]*models.ExtensionRequestInfo, error) {
	const op = "extension.List"

	requests, err := s.repo.ListExtensionRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return requests, nil
}
