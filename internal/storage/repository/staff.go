package repository

import (
	"context"
	"fmt"

	"github.com/yonasmekonnen/gym-membership/internal/models"
)

// GetStaffByUsername возвращает учётную запись сотрудника по логину.
func (s *Storage) GetStaffByUsername(ctx context.Context, username string) (*models.Staff, error) {
	const op = "storage.GetStaffByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, password_hash, role FROM staff WHERE username = $1`
	var staff models.Staff
	if err := s.DB.QueryRowContext(ctx, query, username).Scan(
		&staff.UID, &staff.Username, &staff.Email, &staff.PasswordHash, &staff.Role); err != nil {
		return nil, mapNoRows(op, err)
	}
	return &staff, nil
}

// CreateStaff создает учётную запись сотрудника.
func (s *Storage) CreateStaff(ctx context.Context, staff models.Staff) error {
	const op = "storage.CreateStaff"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO staff (uid, username, email, password_hash, role)
			  VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.DB.ExecContext(ctx, query,
		staff.UID, staff.Username, staff.Email, staff.PasswordHash, staff.Role); err != nil {
		return mapUnique(op, err)
	}
	return nil
}
