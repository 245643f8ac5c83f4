package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yonasmekonnen/gym-membership/internal/models"
)

// CreateExtensionRequest создает pending-заявку на продление и возвращает её ID.
// Частичный уникальный индекс по pending-заявкам превращает дубликат в Conflict.
func (s *Storage) CreateExtensionRequest(ctx context.Context, memberID, planID string) (string, error) {
	const op = "storage.CreateExtensionRequest"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO extension_requests (id, member_id, plan_id, status)
			  VALUES ($1, $2, $3, 'pending')
			  RETURNING id`
	var id string
	if err := s.DB.QueryRowContext(ctx, query, uuid.New().String(), memberID, planID).Scan(&id); err != nil {
		return "", mapUnique(op, err)
	}
	return id, nil
}

// GetExtensionRequest возвращает заявку по ID.
func (s *Storage) GetExtensionRequest(ctx context.Context, id string) (*models.ExtensionRequest, error) {
	const op = "storage.GetExtensionRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, member_id, plan_id, status, request_date
			  FROM extension_requests WHERE id = $1`
	var req models.ExtensionRequest
	var status string
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.MemberID, &req.PlanID, &status, &req.RequestDate); err != nil {
		return nil, mapNoRows(op, err)
	}
	req.Status = models.ExtensionStatus(status)
	return &req, nil
}

// UpdateExtensionStatus переводит заявку в терминальный статус.
func (s *Storage) UpdateExtensionStatus(ctx context.Context, id string, status models.ExtensionStatus) error {
	const op = "storage.UpdateExtensionStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE extension_requests SET status = $1 WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(op, result)
}

// FindPendingExtension ищет pending-заявку пары участник+план.
// Возвращает nil без ошибки, если заявки нет.
func (s *Storage) FindPendingExtension(ctx context.Context, memberID, planID string) (*models.ExtensionRequest, error) {
	const op = "storage.FindPendingExtension"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, member_id, plan_id, status, request_date
			  FROM extension_requests
			  WHERE member_id = $1 AND plan_id = $2 AND status = 'pending'`
	var req models.ExtensionRequest
	var status string
	err := s.DB.QueryRowContext(ctx, query, memberID, planID).Scan(
		&req.ID, &req.MemberID, &req.PlanID, &status, &req.RequestDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Status = models.ExtensionStatus(status)
	return &req, nil
}

// LatestExtensionRequest возвращает последнюю заявку участника.
func (s *Storage) LatestExtensionRequest(ctx context.Context, memberID string) (*models.ExtensionRequest, error) {
	const op = "storage.LatestExtensionRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, member_id, plan_id, status, request_date
			  FROM extension_requests
			  WHERE member_id = $1
			  ORDER BY request_date DESC
			  LIMIT 1`
	var req models.ExtensionRequest
	var status string
	if err := s.DB.QueryRowContext(ctx, query, memberID).Scan(
		&req.ID, &req.MemberID, &req.PlanID, &status, &req.RequestDate); err != nil {
		return nil, mapNoRows(op, err)
	}
	req.Status = models.ExtensionStatus(status)
	return &req, nil
}

// ListExtensionRequests возвращает все заявки с данными участника и плана,
// свежие первыми.
func (s *Storage) ListExtensionRequests(ctx context.Context) ([]*models.ExtensionRequestInfo, error) {
	const op = "storage.ListExtensionRequests"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT r.id, r.member_id, m.full_name, p.name, p.price, r.status, r.request_date
			  FROM extension_requests r
			  JOIN members m ON m.id = r.member_id
			  JOIN service_plans p ON p.id = r.plan_id
			  ORDER BY r.request_date DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.ExtensionRequestInfo
	for rows.Next() {
		var item models.ExtensionRequestInfo
		var status string
		if err := rows.Scan(&item.ID, &item.MemberID, &item.MemberName, &item.PlanName,
			&item.PlanFee, &status, &item.RequestDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.Status = models.ExtensionStatus(status)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
