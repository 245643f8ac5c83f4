package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yonasmekonnen/gym-membership/internal/models"
)

const memberColumns = `id, full_name, status, start_date, days_left, freeze_date,
	freeze_duration, pre_freeze_attendance, pre_freeze_days_count, total_attendance, plan_id`

func scanMember(row interface{ Scan(...any) error }) (*models.Member, error) {
	var m models.Member
	var status string
	var freezeDate sql.NullTime
	var planID sql.NullString
	if err := row.Scan(&m.ID, &m.FullName, &status, &m.StartDate, &m.DaysLeft, &freezeDate,
		&m.FreezeDuration, &m.PreFreezeAttendance, &m.PreFreezeDaysCount, &m.TotalAttendance, &planID); err != nil {
		return nil, err
	}
	m.Status = models.MemberStatus(status)
	if freezeDate.Valid {
		m.FreezeDate = &freezeDate.Time
	}
	if planID.Valid {
		m.PlanID = &planID.String
	}
	return &m, nil
}

// GetMember возвращает участника по ID.
func (s *Storage) GetMember(ctx context.Context, id string) (*models.Member, error) {
	const op = "storage.GetMember"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	m, err := scanMember(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapNoRows(op, err)
	}
	return m, nil
}

// ListMembersByStatus возвращает участников с любым из перечисленных статусов.
func (s *Storage) ListMembersByStatus(ctx context.Context, statuses []models.MemberStatus) ([]*models.Member, error) {
	const op = "storage.ListMembersByStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + memberColumns + ` FROM members WHERE status = ANY($1) ORDER BY id`
	raw := make([]string, 0, len(statuses))
	for _, st := range statuses {
		raw = append(raw, string(st))
	}
	rows, err := s.DB.QueryContext(ctx, query, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateStatus меняет только статус участника.
func (s *Storage) UpdateStatus(ctx context.Context, id string, status models.MemberStatus) error {
	const op = "storage.UpdateStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE members SET status = $1 WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(op, result)
}

// ApplyActivation делает участника активным: новая якорная дата, пересчитанный
// отсчёт, сброс полей заморозки.
func (s *Storage) ApplyActivation(ctx context.Context, id string, startDate time.Time, daysLeft int) error {
	const op = "storage.ApplyActivation"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE members
			  SET status = 'active', start_date = $1, days_left = $2, freeze_date = NULL,
			      pre_freeze_attendance = 0, pre_freeze_days_count = 0
			  WHERE id = $3`
	result, err := s.DB.ExecContext(ctx, query, startDate, daysLeft, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(op, result)
}

// ApplyFreeze замораживает абонемент, снимая снимок прошедших дней и посещений.
func (s *Storage) ApplyFreeze(ctx context.Context, id string, freezeDate time.Time,
	freezeDuration, preFreezeAttendance, preFreezeDaysCount int) error {
	const op = "storage.ApplyFreeze"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE members
			  SET status = 'frozen', freeze_date = $1, freeze_duration = $2,
			      pre_freeze_attendance = $3, pre_freeze_days_count = $4
			  WHERE id = $5`
	result, err := s.DB.ExecContext(ctx, query, freezeDate, freezeDuration,
		preFreezeAttendance, preFreezeDaysCount, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(op, result)
}

// ApplyUnfreeze возвращает участника в active, отматывая якорную дату так,
// чтобы замороженные дни не сгорели.
func (s *Storage) ApplyUnfreeze(ctx context.Context, id string, startDate time.Time) error {
	const op = "storage.ApplyUnfreeze"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE members
			  SET status = 'active', start_date = $1, freeze_date = NULL, freeze_duration = 0
			  WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, startDate, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(op, result)
}

// ApplyRenewal сбрасывает абонемент в pending до повторного одобрения персоналом.
func (s *Storage) ApplyRenewal(ctx context.Context, id string, startDate time.Time) error {
	const op = "storage.ApplyRenewal"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE members
			  SET status = 'pending', days_left = 0, start_date = $1, freeze_date = NULL,
			      pre_freeze_attendance = 0, pre_freeze_days_count = 0
			  WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, startDate, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(op, result)
}

// ApplyExtensionApproval продлевает абонемент одобренной заявкой.
func (s *Storage) ApplyExtensionApproval(ctx context.Context, id string, startDate time.Time, daysLeft int) error {
	const op = "storage.ApplyExtensionApproval"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE members
			  SET status = 'active', start_date = $1, days_left = $2, freeze_date = NULL,
			      pre_freeze_attendance = 0, pre_freeze_days_count = 0
			  WHERE id = $3`
	result, err := s.DB.ExecContext(ctx, query, startDate, daysLeft, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(op, result)
}

// UpdateCountdown сохраняет пересчитанный отсчёт и, при деградации, новый статус.
func (s *Storage) UpdateCountdown(ctx context.Context, id string, daysLeft int, status models.MemberStatus) error {
	const op = "storage.UpdateCountdown"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE members SET days_left = $1, status = $2 WHERE id = $3`
	result, err := s.DB.ExecContext(ctx, query, daysLeft, string(status), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(op, result)
}

// RecordVisit инкрементирует счётчик посещений, сохраняет отсчёт и
// возвращает новое значение счётчика.
func (s *Storage) RecordVisit(ctx context.Context, id string, daysLeft int) (int, error) {
	const op = "storage.RecordVisit"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE members
			  SET total_attendance = total_attendance + 1, days_left = $1
			  WHERE id = $2
			  RETURNING total_attendance`
	var total int
	if err := s.DB.QueryRowContext(ctx, query, daysLeft, id).Scan(&total); err != nil {
		return 0, mapNoRows(op, err)
	}
	return total, nil
}

func requireRow(op string, result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return mapNoRows(op, sql.ErrNoRows)
	}
	return nil
}
