package reconciler

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

func (m *RepoMock) ListMembersByStatus(ctx context.Context, statuses []models.MemberStatus) ([]*models.Member, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Member), args.Error(1)
}

func (m *RepoMock) CountAttendanceSince(ctx context.Context, memberID string, since time.Time) (int, error) {
	args := m.Called(ctx, memberID, since)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ApplyUnfreeze(ctx context.Context, id string, startDate time.Time) error {
	return m.Called(ctx, id, startDate).Error(0)
}

func (m *RepoMock) UpdateCountdown(ctx context.Context, id string, daysLeft int, status models.MemberStatus) error {
	return m.Called(ctx, id, daysLeft, status).Error(0)
}

func (m *RepoMock) CreateNotification(ctx context.Context, memberID, name, description string) error {
	return m.Called(ctx, memberID, name, description).Error(0)
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

type MarkerMock struct{ mock.Mock }

func (m *MarkerMock) SetMarker(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, expiration)
	return args.Bool(0), args.Error(1)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 3, 0, 0, 0, time.UTC)
}

const planID = "3f0e9a1a-1111-2222-3333-444455556666"

func TestReconcile(t *testing.T) {
	id := planID
	plan := &models.ServicePlan{ID: planID, Period: 30, MaxDays: 15}

	tests := []struct {
		name            string
		member          *models.Member
		attendanceCount int
		check           func(t *testing.T, outcome Outcome)
	}{
		{
			name: "active member keeps status with positive countdown",
			member: &models.Member{
				ID: "m1", Status: models.StatusActive,
				StartDate: fixedNow().AddDate(0, 0, -20), PlanID: &id,
			},
			attendanceCount: 5,
			check: func(t *testing.T, outcome Outcome) {
				assert.True(t, outcome.UpdateCountdown)
				assert.Equal(t, 10, outcome.DaysLeft)
				assert.Equal(t, models.StatusActive, outcome.NewStatus)
				assert.Empty(t, outcome.Events)
			},
		},
		{
			name: "mild overdue degrades to expired with event",
			member: &models.Member{
				ID: "m2", FullName: "Anna Sidorova", Status: models.StatusActive,
				StartDate: fixedNow().AddDate(0, 0, -32), PlanID: &id,
			},
			attendanceCount: 5,
			check: func(t *testing.T, outcome Outcome) {
				assert.Equal(t, -2, outcome.DaysLeft)
				assert.Equal(t, models.StatusExpired, outcome.NewStatus)
				require.Len(t, outcome.Events, 1)
				assert.Contains(t, outcome.Events[0].Description, "expired")
			},
		},
		{
			name: "deep overdue degrades to inactive with event",
			member: &models.Member{
				ID: "m3", FullName: "Petr Ivanov", Status: models.StatusExpired,
				StartDate: fixedNow().AddDate(0, 0, -40), PlanID: &id,
			},
			attendanceCount: 5,
			check: func(t *testing.T, outcome Outcome) {
				assert.Equal(t, -10, outcome.DaysLeft)
				assert.Equal(t, models.StatusInactive, outcome.NewStatus)
				require.Len(t, outcome.Events, 1)
				assert.Contains(t, outcome.Events[0].Description, "inactive")
			},
		},
		{
			name: "expired member staying expired emits no event",
			member: &models.Member{
				ID: "m4", Status: models.StatusExpired,
				StartDate: fixedNow().AddDate(0, 0, -32), PlanID: &id,
			},
			attendanceCount: 5,
			check: func(t *testing.T, outcome Outcome) {
				assert.Equal(t, models.StatusExpired, outcome.NewStatus)
				assert.Empty(t, outcome.Events)
			},
		},
		{
			name: "frozen member mid-freeze is untouched",
			member: func() *models.Member {
				freezeDate := fixedNow().AddDate(0, 0, -3)
				return &models.Member{
					ID: "m5", Status: models.StatusFrozen,
					FreezeDate: &freezeDate, FreezeDuration: 14,
					PreFreezeDaysCount: 10, PlanID: &id,
				}
			}(),
			check: func(t *testing.T, outcome Outcome) {
				assert.False(t, outcome.Unfreeze)
				assert.False(t, outcome.UpdateCountdown)
				assert.Empty(t, outcome.Events)
			},
		},
		{
			name: "frozen member past freeze end is unfrozen with rewound start",
			member: func() *models.Member {
				freezeDate := fixedNow().AddDate(0, 0, -15)
				return &models.Member{
					ID: "m6", Status: models.StatusFrozen,
					FreezeDate: &freezeDate, FreezeDuration: 14,
					PreFreezeDaysCount: 10, PlanID: &id,
				}
			}(),
			check: func(t *testing.T, outcome Outcome) {
				assert.True(t, outcome.Unfreeze)
				assert.Equal(t, fixedNow().AddDate(0, 0, -10), outcome.UnfreezeStart)
				assert.False(t, outcome.UpdateCountdown)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Reconcile(tt.member, plan, tt.attendanceCount, fixedNow())
			tt.check(t, outcome)
		})
	}
}

func TestReconciler_RunDailyReconciliation(t *testing.T) {
	id := planID
	plan := &models.ServicePlan{ID: planID, Period: 30, MaxDays: 15}
	overdue := &models.Member{
		ID: "m1", FullName: "Anna Sidorova", Status: models.StatusActive,
		StartDate: fixedNow().AddDate(0, 0, -32), PlanID: &id,
	}
	freezeDate := fixedNow().AddDate(0, 0, -20)
	thawed := &models.Member{
		ID: "m2", Status: models.StatusFrozen,
		FreezeDate: &freezeDate, FreezeDuration: 14,
		PreFreezeDaysCount: 8, PlanID: &id,
	}

	repo := new(RepoMock)
	engine := new(EngineMock)
	repo.On("ListMembersByStatus", mock.Anything, []models.MemberStatus{
		models.StatusActive, models.StatusExpired, models.StatusFrozen,
	}).Return([]*models.Member{overdue, thawed}, nil).Once()

	engine.On("PlanByID", mock.Anything, planID).Return(plan, nil).Twice()
	repo.On("CountAttendanceSince", mock.Anything, "m1", overdue.StartDate).Return(5, nil).Once()
	repo.On("UpdateCountdown", mock.Anything, "m1", -2, models.StatusExpired).Return(nil).Once()
	repo.On("CreateNotification", mock.Anything, "m1", "Membership Status Update", mock.Anything).Return(nil).Once()
	repo.On("ApplyUnfreeze", mock.Anything, "m2", fixedNow().AddDate(0, 0, -8)).Return(nil).Once()

	svc := NewService(repo, engine, nil, NewNoopLogger(), time.Second).WithClock(fixedNow)
	svc.RunDailyReconciliation(context.Background(), nil)

	repo.AssertExpectations(t)
	engine.AssertExpectations(t)
}

func TestReconciler_MarkerSkipsAlreadyProcessed(t *testing.T) {
	id := planID
	member := &models.Member{
		ID: "m1", Status: models.StatusActive,
		StartDate: fixedNow().AddDate(0, 0, -10), PlanID: &id,
	}

	repo := new(RepoMock)
	marker := new(MarkerMock)
	repo.On("ListMembersByStatus", mock.Anything, mock.Anything).
		Return([]*models.Member{member}, nil).Once()
	marker.On("SetMarker", mock.Anything, "reconciled:2024-06-15:m1", 48*time.Hour).
		Return(false, nil).Once()

	svc := NewService(repo, new(EngineMock), marker, NewNoopLogger(), time.Second).WithClock(fixedNow)
	svc.RunDailyReconciliation(context.Background(), nil)

	repo.AssertExpectations(t)
	marker.AssertExpectations(t)
}

func TestReconciler_MemberFailureDoesNotStopRun(t *testing.T) {
	id := planID
	plan := &models.ServicePlan{ID: planID, Period: 30, MaxDays: 15}
	broken := &models.Member{
		ID: "m1", Status: models.StatusActive,
		StartDate: fixedNow().AddDate(0, 0, -10), PlanID: &id,
	}
	healthy := &models.Member{
		ID: "m2", Status: models.StatusActive,
		StartDate: fixedNow().AddDate(0, 0, -10), PlanID: &id,
	}

	repo := new(RepoMock)
	engine := new(EngineMock)
	repo.On("ListMembersByStatus", mock.Anything, mock.Anything).
		Return([]*models.Member{broken, healthy}, nil).Once()
	engine.On("PlanByID", mock.Anything, planID).Return(plan, nil).Twice()
	repo.On("CountAttendanceSince", mock.Anything, "m1", broken.StartDate).
		Return(0, assert.AnError).Once()
	repo.On("CountAttendanceSince", mock.Anything, "m2", healthy.StartDate).Return(3, nil).Once()
	repo.On("UpdateCountdown", mock.Anything, "m2", 12, models.StatusActive).Return(nil).Once()

	svc := NewService(repo, engine, nil, NewNoopLogger(), time.Second).WithClock(fixedNow)
	svc.RunDailyReconciliation(context.Background(), nil)

	repo.AssertExpectations(t)
	engine.AssertExpectations(t)
}

func TestReconciler_SkipsMemberWithoutPlan(t *testing.T) {
	member := &models.Member{ID: "m1", Status: models.StatusActive}

	repo := new(RepoMock)
	repo.On("ListMembersByStatus", mock.Anything, mock.Anything).
		Return([]*models.Member{member}, nil).Once()

	svc := NewService(repo, new(EngineMock), nil, NewNoopLogger(), time.Second).WithClock(fixedNow)
	svc.RunDailyReconciliation(context.Background(), nil)

	repo.AssertExpectations(t)
}

func TestReconciler_SkipsMemberWithMissingPlan(t *testing.T) {
	id := planID
	member := &models.Member{
		ID: "m1", Status: models.StatusActive,
		StartDate: fixedNow().AddDate(0, 0, -10), PlanID: &id,
	}

	repo := new(RepoMock)
	engine := new(EngineMock)
	repo.On("ListMembersByStatus", mock.Anything, mock.Anything).
		Return([]*models.Member{member}, nil).Once()
	engine.On("PlanByID", mock.Anything, planID).Return(nil, apperr.ErrNotFound).Once()

	svc := NewService(repo, engine, nil, NewNoopLogger(), time.Second).WithClock(fixedNow)
	svc.RunDailyReconciliation(context.Background(), nil)

	repo.AssertExpectations(t)
	engine.AssertExpectations(t)
}
