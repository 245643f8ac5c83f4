package repository

import (
	"context"
	"fmt"
	"time"
)

// CountAttendanceSince считает отметки посещений участника начиная с даты.
func (s *Storage) CountAttendanceSince(ctx context.Context, memberID string, since time.Time) (int, error) {
	const op = "storage.CountAttendanceSince"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM attendance WHERE member_id = $1 AND day >= $2`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, memberID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// AttendanceExists сообщает, есть ли уже отметка за календарный день.
func (s *Storage) AttendanceExists(ctx context.Context, memberID string, day time.Time) (bool, error) {
	const op = "storage.AttendanceExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (SELECT 1 FROM attendance WHERE member_id = $1 AND day = $2)`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, memberID, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// InsertAttendance вставляет отметку посещения. Уникальный индекс
// (member_id, day) превращает дубликат в apperr.ErrConflict.
func (s *Storage) InsertAttendance(ctx context.Context, memberID string, day time.Time) error {
	const op = "storage.InsertAttendance"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO attendance (member_id, day) VALUES ($1, $2)`
	if _, err := s.DB.ExecContext(ctx, query, memberID, day); err != nil {
		return mapUnique(op, err)
	}
	return nil
}
