package extensionresolve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yonasmekonnen/gym-membership/internal/apperr"
	"github.com/yonasmekonnen/gym-membership/internal/models"
)

// MockService реализует интерфейс extensionresolve.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Resolve(ctx context.Context, requestID, resolution, startDate string) (*models.ExtensionRequest, error) {
	args := m.Called(ctx, requestID, resolution, startDate)
	if request, ok := args.Get(0).(*models.ExtensionRequest); ok {
		return request, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestExtensionResolveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		requestID      string
		requestBody    interface{}
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "успешное одобрение заявки",
			requestID: "req-1",
			requestBody: models.ExtensionResolveRequest{
				Status: "approved",
			},
			setupMock: func(m *MockService) {
				m.On("Resolve", mock.Anything, "req-1", "approved", "").
					Return(&models.ExtensionRequest{
						ID:       "req-1",
						MemberID: "member-1",
						PlanID:   "plan-1",
						Status:   models.ExtensionApproved,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"approved"`,
		},
		{
			name:      "отклонение заявки",
			requestID: "req-1",
			requestBody: models.ExtensionResolveRequest{
				Status: "rejected",
			},
			setupMock: func(m *MockService) {
				m.On("Resolve", mock.Anything, "req-1", "rejected", "").
					Return(&models.ExtensionRequest{
						ID:     "req-1",
						Status: models.ExtensionRejected,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"rejected"`,
		},
		{
			name:           "некорректный JSON",
			requestID:      "req-1",
			requestBody:    "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"message":"invalid request body"`,
		},
		{
			name:           "ошибка валидации",
			requestID:      "req-1",
			requestBody:    models.ExtensionResolveRequest{},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Status is a required field`,
		},
		{
			name:      "заявка не найдена",
			requestID: "ghost",
			requestBody: models.ExtensionResolveRequest{
				Status: "approved",
			},
			setupMock: func(m *MockService) {
				m.On("Resolve", mock.Anything, "ghost", "approved", "").
					Return(nil, fmt.Errorf("services.extension.Resolve: %w", apperr.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"message":"extension request not found"`,
		},
		{
			name:      "заявка уже решена",
			requestID: "req-1",
			requestBody: models.ExtensionResolveRequest{
				Status: "approved",
			},
			setupMock: func(m *MockService) {
				m.On("Resolve", mock.Anything, "req-1", "approved", "").
					Return(nil, fmt.Errorf("services.extension.Resolve: request already resolved as approved: %w", apperr.ErrInvalidState))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "request already resolved",
		},
		{
			name:      "неизвестное решение",
			requestID: "req-1",
			requestBody: models.ExtensionResolveRequest{
				Status: "pending",
			},
			setupMock: func(m *MockService) {
				m.On("Resolve", mock.Anything, "req-1", "pending", "").
					Return(nil, fmt.Errorf("unknown extension resolution %q: %w", "pending", apperr.ErrInvalidArgument))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid argument",
		},
		{
			name:      "ошибка сервиса",
			requestID: "req-1",
			requestBody: models.ExtensionResolveRequest{
				Status: "approved",
			},
			setupMock: func(m *MockService) {
				m.On("Resolve", mock.Anything, "req-1", "approved", "").
					Return(nil, fmt.Errorf("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"message":"could not resolve extension request"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPatch, "/extensions/"+tt.requestID, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.requestID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
