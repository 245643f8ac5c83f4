package repository

import (
	"context"
	"fmt"

	"github.com/yonasmekonnen/gym-membership/internal/models"
)

// GetServicePlan возвращает тарифный план по ID.
func (s *Storage) GetServicePlan(ctx context.Context, id string) (*models.ServicePlan, error) {
	const op = "storage.GetServicePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price, period, max_days FROM service_plans WHERE id = $1`
	var plan models.ServicePlan
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&plan.ID, &plan.Name, &plan.Price, &plan.Period, &plan.MaxDays); err != nil {
		return nil, mapNoRows(op, err)
	}
	return &plan, nil
}
