package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"wishTracker/internal/filter"
	"wishTracker/internal/handlers"
	"wishTracker/internal/handlers/dto"
	"wishTracker/internal/models/wish"
	"wishTracker/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockWishService is a testify mock of the service
type MockWishService struct {
	mock.Mock
}

func (m *MockWishService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockWishService) Categories() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockWishService) AddWish(ctx context.Context, title, category string, status wish.Status) (*wish.Wish, error) {
	args := m.Called(ctx, title, category, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wish.Wish), args.Error(1)
}

func (m *MockWishService) GetWish(ctx context.Context, id uuid.UUID) (*wish.Wish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wish.Wish), args.Error(1)
}

func (m *MockWishService) ListWishes(ctx context.Context) ([]*wish.Wish, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wish.Wish), args.Error(1)
}

func (m *MockWishService) FilterWishes(ctx context.Context, c filter.Criteria) ([]*wish.Wish, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wish.Wish), args.Error(1)
}

func (m *MockWishService) SetStatus(ctx context.Context, id uuid.UUID, status wish.Status) (*wish.Wish, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wish.Wish), args.Error(1)
}

func (m *MockWishService) MoveToAchieved(ctx context.Context, id uuid.UUID) (*wish.Wish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wish.Wish), args.Error(1)
}

func (m *MockWishService) DeleteWish(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWishService) AddRemark(ctx context.Context, id uuid.UUID, content string) (*wish.Remark, error) {
	args := m.Called(ctx, id, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wish.Remark), args.Error(1)
}

var _ handlers.Service = (*MockWishService)(nil)

func serve(svc handlers.Service, method, target, body, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	handlers.NewWishHandler(svc).Routes().ServeHTTP(w, req)
	return w
}

func TestWishHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockWishService)
		expectedStatus int
	}{
		{
			name: "success - healthy",
			setupMock: func(m *MockWishService) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "error - unhealthy",
			setupMock: func(m *MockWishService) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("service unavailable"))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockWishService)
			tt.setupMock(mockService)

			w := serve(mockService, http.MethodGet, "/health", "", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), "wish-tracker")
			mockService.AssertExpectations(t)
		})
	}
}

func TestWishHandler_GetCategories(t *testing.T) {
	mockService := new(MockWishService)
	mockService.On("Categories").Return([]string{filter.AllCategories, "Travel"})

	w := serve(mockService, http.MethodGet, "/categories", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	var categories []string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&categories))
	assert.Equal(t, []string{filter.AllCategories, "Travel"}, categories)
	mockService.AssertExpectations(t)
}

func TestWishHandler_PostWish(t *testing.T) {
	wishID := uuid.New()
	paddedTitle := strings.Repeat("a", 250) + strings.Repeat(" ", 10)

	tests := []struct {
		name           string
		requestBody    string
		contentType    string
		setupMock      func(*MockWishService)
		expectedStatus int
	}{
		{
			name:        "success - create wish",
			requestBody: `{"title": "Trip to Japan", "category": "Travel", "status": "wish"}`,
			contentType: "application/json; charset=utf-8",
			setupMock: func(m *MockWishService) {
				m.On("AddWish", mock.Anything, "Trip to Japan", "Travel", wish.StatusWish).
					Return(&wish.Wish{
						UUID:      wishID,
						Title:     "Trip to Japan",
						Category:  "Travel",
						Status:    wish.StatusWish,
						CreatedAt: time.Now(),
						Remarks:   []wish.Remark{},
					}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - invalid content type",
			requestBody:    `{}`,
			contentType:    "text/plain",
			setupMock:      func(m *MockWishService) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "error - invalid JSON",
			requestBody:    `{invalid json}`,
			contentType:    "application/json",
			setupMock:      func(m *MockWishService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - missing title",
			requestBody:    `{"category": "Travel"}`,
			contentType:    "application/json",
			setupMock:      func(m *MockWishService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - unknown status",
			requestBody:    `{"title": "Trip", "status": "done"}`,
			contentType:    "application/json",
			setupMock:      func(m *MockWishService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "success - trailing spaces do not count against the title limit",
			requestBody: `{"title": "` + paddedTitle + `"}`,
			contentType: "application/json",
			setupMock: func(m *MockWishService) {
				m.On("AddWish", mock.Anything, paddedTitle, "", wish.Status("")).
					Return(&wish.Wish{
						UUID:      wishID,
						Title:     "Trip to Japan",
						Status:    wish.StatusWish,
						CreatedAt: time.Now(),
						Remarks:   []wish.Remark{},
					}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - trailing data after body",
			requestBody:    `{"title": "x"} {"junk": 1}`,
			contentType:    "application/json",
			setupMock:      func(m *MockWishService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - body too large",
			requestBody:    `{"title": "` + strings.Repeat("a", 2<<20) + `"}`,
			contentType:    "application/json",
			setupMock:      func(m *MockWishService) {},
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:        "error - blank title rejected by service",
			requestBody: `{"title": "   "}`,
			contentType: "application/json",
			setupMock: func(m *MockWishService) {
				m.On("AddWish", mock.Anything, "   ", "", wish.Status("")).
					Return(nil, service.NewValidationError("title", "must not be empty"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - service error",
			requestBody: `{"title": "Trip"}`,
			contentType: "application/json",
			setupMock: func(m *MockWishService) {
				m.On("AddWish", mock.Anything, "Trip", "", wish.Status("")).
					Return(nil, errors.New("service error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockWishService)
			tt.setupMock(mockService)

			w := serve(mockService, http.MethodPost, "/wishes", tt.requestBody, tt.contentType)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				var response dto.WishResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, wishID, response.UUID)
				assert.Equal(t, "Trip to Japan", response.Title)
				assert.Equal(t, 0, response.RemarkCount)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestWishHandler_GetFilteredWishes(t *testing.T) {
	mockService := new(MockWishService)
	expected := filter.Criteria{Status: wish.StatusWish, Search: " trip", Category: filter.AllCategories}
	mockService.On("FilterWishes", mock.Anything, expected).
		Return([]*wish.Wish{wish.New("Trip to Japan", wish.WithCategory("Travel"))}, nil)

	w := serve(mockService, http.MethodGet, "/wishes?status=wish&search=%20trip&category=All+Categories", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	var response []dto.WishResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response, 1)
	assert.Equal(t, "Trip to Japan", response[0].Title)
	mockService.AssertExpectations(t)
}

func TestWishHandler_GetFilteredWishes_InvalidStatus(t *testing.T) {
	mockService := new(MockWishService)
	mockService.On("FilterWishes", mock.Anything, filter.Criteria{Status: "archived"}).
		Return(nil, service.NewValidationError("status", "unknown status"))

	w := serve(mockService, http.MethodGet, "/wishes?status=archived", "", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), service.CodeValidation)
	mockService.AssertExpectations(t)
}

func TestWishHandler_GetFilteredWishes_EmptyIsArray(t *testing.T) {
	mockService := new(MockWishService)
	mockService.On("FilterWishes", mock.Anything, mock.Anything).Return([]*wish.Wish{}, nil)

	w := serve(mockService, http.MethodGet, "/wishes", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestWishHandler_GetAllWishes(t *testing.T) {
	mockService := new(MockWishService)
	mockService.On("ListWishes", mock.Anything).
		Return([]*wish.Wish{wish.New("One"), wish.New("Two", wish.WithStatus(wish.StatusAchieved))}, nil)

	w := serve(mockService, http.MethodGet, "/wishes/all", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	var response []dto.WishResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response, 2)
	assert.Equal(t, "achieved", response[1].Status)
	mockService.AssertExpectations(t)
}

func TestWishHandler_GetWishByID(t *testing.T) {
	wishID := uuid.New()

	tests := []struct {
		name           string
		wishID         string
		setupMock      func(*MockWishService)
		expectedStatus int
	}{
		{
			name:   "success - get wish",
			wishID: wishID.String(),
			setupMock: func(m *MockWishService) {
				m.On("GetWish", mock.Anything, wishID).
					Return(&wish.Wish{UUID: wishID, Title: "Wish list 1", Status: wish.StatusInProgress}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - invalid UUID",
			wishID:         "invalid-uuid",
			setupMock:      func(m *MockWishService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - nil UUID",
			wishID:         uuid.Nil.String(),
			setupMock:      func(m *MockWishService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "error - wish not found",
			wishID: wishID.String(),
			setupMock: func(m *MockWishService) {
				m.On("GetWish", mock.Anything, wishID).
					Return(nil, service.NewNotFound("wish", wishID.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "error - service error",
			wishID: wishID.String(),
			setupMock: func(m *MockWishService) {
				m.On("GetWish", mock.Anything, wishID).
					Return(nil, errors.New("internal error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockWishService)
			tt.setupMock(mockService)

			w := serve(mockService, http.MethodGet, "/wishes/"+tt.wishID, "", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var response dto.WishResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, wishID, response.UUID)
				assert.NotNil(t, response.Remarks)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestWishHandler_SetStatus(t *testing.T) {
	wishID := uuid.New()

	tests := []struct {
		name           string
		requestBody    string
		setupMock      func(*MockWishService)
		expectedStatus int
	}{
		{
			name:        "success - status updated",
			requestBody: `{"status": "in-progress"}`,
			setupMock: func(m *MockWishService) {
				m.On("SetStatus", mock.Anything, wishID, wish.StatusInProgress).
					Return(&wish.Wish{UUID: wishID, Status: wish.StatusInProgress}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - missing status",
			requestBody:    `{}`,
			setupMock:      func(m *MockWishService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - not found",
			requestBody: `{"status": "achieved"}`,
			setupMock: func(m *MockWishService) {
				m.On("SetStatus", mock.Anything, wishID, wish.StatusAchieved).
					Return(nil, service.NewNotFound("wish", wishID.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockWishService)
			tt.setupMock(mockService)

			w := serve(mockService, http.MethodPut, "/wishes/"+wishID.String()+"/status", tt.requestBody, "application/json")

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestWishHandler_Achieve(t *testing.T) {
	wishID := uuid.New()

	mockService := new(MockWishService)
	mockService.On("MoveToAchieved", mock.Anything, wishID).
		Return(&wish.Wish{UUID: wishID, Status: wish.StatusAchieved}, nil)

	w := serve(mockService, http.MethodPost, "/wishes/"+wishID.String()+"/achieve", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	var response dto.WishResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "achieved", response.Status)
	mockService.AssertExpectations(t)
}

func TestWishHandler_DeleteWish(t *testing.T) {
	wishID := uuid.New()

	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "success - deleted", expectedStatus: http.StatusNoContent},
		{name: "error - service error", serviceErr: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockWishService)
			mockService.On("DeleteWish", mock.Anything, wishID).Return(tt.serviceErr)

			w := serve(mockService, http.MethodDelete, "/wishes/"+wishID.String(), "", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestWishHandler_AddRemark(t *testing.T) {
	wishID := uuid.New()

	tests := []struct {
		name           string
		requestBody    string
		setupMock      func(*MockWishService)
		expectedStatus int
	}{
		{
			name:        "success - remark added",
			requestBody: `{"content": "book flights"}`,
			setupMock: func(m *MockWishService) {
				remark := wish.NewRemark("book flights", time.Now())
				m.On("AddRemark", mock.Anything, wishID, "book flights").Return(&remark, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - empty content",
			requestBody:    `{"content": ""}`,
			setupMock:      func(m *MockWishService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - whitespace content",
			requestBody: `{"content": "   "}`,
			setupMock: func(m *MockWishService) {
				m.On("AddRemark", mock.Anything, wishID, "   ").
					Return(nil, service.NewValidationError("content", "must not be empty"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - wish not found",
			requestBody: `{"content": "hello"}`,
			setupMock: func(m *MockWishService) {
				m.On("AddRemark", mock.Anything, wishID, "hello").
					Return(nil, service.NewNotFound("wish", wishID.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockWishService)
			tt.setupMock(mockService)

			w := serve(mockService, http.MethodPost, "/wishes/"+wishID.String()+"/remarks", tt.requestBody, "application/json")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				var response dto.RemarkResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, "book flights", response.Content)
			}
			mockService.AssertExpectations(t)
		})
	}
}
