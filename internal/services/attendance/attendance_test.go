package attendance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yonasmekonnen/gym-membership/internal/apperr"
	"github.com/yonasmekonnen/gym-membership/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetMember(ctx context.Context, id string) (*models.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *RepoMock) UpdateStatus(ctx context.Context, id string, status models.MemberStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *RepoMock) CountAttendanceSince(ctx context.Context, memberID string, since time.Time) (int, error) {
	args := m.Called(ctx, memberID, since)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) AttendanceExists(ctx context.Context, memberID string, day time.Time) (bool, error) {
	args := m.Called(ctx, memberID, day)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) InsertAttendance(ctx context.Context, memberID string, day time.Time) error {
	return m.Called(ctx, memberID, day).Error(0)
}

func (m *RepoMock) RecordVisit(ctx context.Context, id string, daysLeft int) (int, error) {
	args := m.Called(ctx, id, daysLeft)
	return args.Int(0), args.Error(1)
}

type EngineMock struct{ mock.Mock }

func (m *EngineMock) PlanByID(ctx context.Context, planID string) (*models.ServicePlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServicePlan), args.Error(1)
}

func (m *EngineMock) CountdownFor(plan *models.ServicePlan, startDate time.Time, attendanceCount int) int {
	args := m.Called(plan, startDate, attendanceCount)
	return args.Int(0)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
}

func todayUTC() time.Time {
	return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
}

const (
	memberID = "member-1"
	planID   = "3f0e9a1a-1111-2222-3333-444455556666"
)

func activeMember() *models.Member {
	id := planID
	return &models.Member{
		ID:        memberID,
		FullName:  "Ivan Petrov",
		Status:    models.StatusActive,
		StartDate: fixedNow().AddDate(0, 0, -10),
		PlanID:    &id,
	}
}

func TestAttendance_Record_Success(t *testing.T) {
	member := activeMember()
	plan := &models.ServicePlan{ID: planID, Period: 30, MaxDays: 15}

	repo := new(RepoMock)
	engine := new(EngineMock)
	repo.On("AttendanceExists", mock.Anything, memberID, todayUTC()).Return(false, nil).Once()
	repo.On("GetMember", mock.Anything, memberID).Return(member, nil).Once()
	engine.On("PlanByID", mock.Anything, planID).Return(plan, nil).Once()
	repo.On("CountAttendanceSince", mock.Anything, memberID, member.StartDate).Return(6, nil).Once()
	engine.On("CountdownFor", plan, member.StartDate, 6).Return(9).Once()
	repo.On("InsertAttendance", mock.Anything, memberID, todayUTC()).Return(nil).Once()
	engine.On("CountdownFor", plan, member.StartDate, 7).Return(8).Once()
	repo.On("RecordVisit", mock.Anything, memberID, 8).Return(42, nil).Once()

	svc := New(repo, engine, NewNoopLogger()).WithClock(fixedNow)
	result, err := svc.Record(context.Background(), memberID)

	require.NoError(t, err)
	assert.Equal(t, 8, result.DaysLeft)
	assert.Equal(t, 42, result.TotalAttendance)
	assert.False(t, result.Expired)
	assert.Contains(t, result.Message, "recorded successfully")
	repo.AssertExpectations(t)
	engine.AssertExpectations(t)
}

func TestAttendance_Record_AlreadyRecordedToday(t *testing.T) {
	repo := new(RepoMock)
	repo.On("AttendanceExists", mock.Anything, memberID, todayUTC()).Return(true, nil).Once()

	svc := New(repo, new(EngineMock), NewNoopLogger()).WithClock(fixedNow)
	_, err := svc.Record(context.Background(), memberID)

	assert.ErrorIs(t, err, apperr.ErrConflict)
	repo.AssertExpectations(t)
}

func TestAttendance_Record_StatusGate(t *testing.T) {
	tests := []struct {
		name   string
		status models.MemberStatus
	}{
		{"frozen member is rejected", models.StatusFrozen},
		{"inactive member is rejected", models.StatusInactive},
		{"pending member is rejected", models.StatusPending},
		{"dormant member is rejected", models.StatusDormant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member := activeMember()
			member.Status = tt.status

			repo := new(RepoMock)
			repo.On("AttendanceExists", mock.Anything, memberID, todayUTC()).Return(false, nil).Once()
			repo.On("GetMember", mock.Anything, memberID).Return(member, nil).Once()

			svc := New(repo, new(EngineMock), NewNoopLogger()).WithClock(fixedNow)
			_, err := svc.Record(context.Background(), memberID)

			assert.ErrorIs(t, err, apperr.ErrInvalidState)
			assert.Contains(t, err.Error(), member.FullName)
			repo.AssertExpectations(t)
		})
	}
}

func TestAttendance_Record_SevereOverdueBlocksAndDeactivates(t *testing.T) {
	member := activeMember()
	plan := &models.ServicePlan{ID: planID, Period: 30, MaxDays: 15}

	repo := new(RepoMock)
	engine := new(EngineMock)
	repo.On("AttendanceExists", mock.Anything, memberID, todayUTC()).Return(false, nil).Once()
	repo.On("GetMember", mock.Anything, memberID).Return(member, nil).Once()
	engine.On("PlanByID", mock.Anything, planID).Return(plan, nil).Once()
	repo.On("CountAttendanceSince", mock.Anything, memberID, member.StartDate).Return(15, nil).Once()
	engine.On("CountdownFor", plan, member.StartDate, 15).Return(-4).Once()
	repo.On("UpdateStatus", mock.Anything, memberID, models.StatusInactive).Return(nil).Once()

	svc := New(repo, engine, NewNoopLogger()).WithClock(fixedNow)
	_, err := svc.Record(context.Background(), memberID)

	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	repo.AssertExpectations(t)
	engine.AssertExpectations(t)
}

func TestAttendance_Record_MildOverdueRecordsButExpires(t *testing.T) {
	member := activeMember()
	plan := &models.ServicePlan{ID: planID, Period: 30, MaxDays: 15}

	repo := new(RepoMock)
	engine := new(EngineMock)
	repo.On("AttendanceExists", mock.Anything, memberID, todayUTC()).Return(false, nil).Once()
	repo.On("GetMember", mock.Anything, memberID).Return(member, nil).Once()
	engine.On("PlanByID", mock.Anything, planID).Return(plan, nil).Once()
	repo.On("CountAttendanceSince", mock.Anything, memberID, member.StartDate).Return(13, nil).Once()
	engine.On("CountdownFor", plan, member.StartDate, 13).Return(-2).Once()
	repo.On("UpdateStatus", mock.Anything, memberID, models.StatusExpired).Return(nil).Once()
	repo.On("InsertAttendance", mock.Anything, memberID, todayUTC()).Return(nil).Once()
	engine.On("CountdownFor", plan, member.StartDate, 14).Return(-3).Once()
	repo.On("RecordVisit", mock.Anything, memberID, -3).Return(50, nil).Once()

	svc := New(repo, engine, NewNoopLogger()).WithClock(fixedNow)
	result, err := svc.Record(context.Background(), memberID)

	require.NoError(t, err)
	assert.True(t, result.Expired)
	assert.Contains(t, result.Message, "expired")
	assert.Equal(t, -3, result.DaysLeft)
	repo.AssertExpectations(t)
	engine.AssertExpectations(t)
}

func TestAttendance_Record_NoPlan(t *testing.T) {
	member := activeMember()
	member.PlanID = nil

	repo := new(RepoMock)
	repo.On("AttendanceExists", mock.Anything, memberID, todayUTC()).Return(false, nil).Once()
	repo.On("GetMember", mock.Anything, memberID).Return(member, nil).Once()

	svc := New(repo, new(EngineMock), NewNoopLogger()).WithClock(fixedNow)
	_, err := svc.Record(context.Background(), memberID)

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	repo.AssertExpectations(t)
}
