package repository

import (
	"context"
	"fmt"
)

// CreateNotification сохраняет уведомление о смене статуса участника.
func (s *Storage) CreateNotification(ctx context.Context, memberID, name, description string) error {
	const op = "storage.CreateNotification"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO notifications (member_id, name, description) VALUES ($1, $2, $3)`
	if _, err := s.DB.ExecContext(ctx, query, memberID, name, description); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
