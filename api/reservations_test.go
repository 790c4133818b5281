package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dvalenz/roomreserve/internal/availability"
	"github.com/dvalenz/roomreserve/internal/domain"
	"github.com/dvalenz/roomreserve/internal/service/reservation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockReservationUseCase is a mock implementation of reservation.ReservationUseCase
type MockReservationUseCase struct {
	mock.Mock
}

func (m *MockReservationUseCase) CreateReservation(ctx context.Context, input reservation.CreateReservationInput) (*domain.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) CancelReservation(ctx context.Context, id int64, actor reservation.Actor) (*domain.Reservation, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) ConfirmPayment(ctx context.Context, code string) (*domain.Reservation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) ExpirePendingReservations(ctx context.Context) ([]domain.Reservation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) ListByDate(ctx context.Context, date string) ([]domain.Reservation, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) ListForRoom(ctx context.Context, roomID int64, date string) ([]domain.Reservation, error) {
	args := m.Called(ctx, roomID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) Availability(ctx context.Context, roomID int64, date string) ([]availability.SlotStatus, error) {
	args := m.Called(ctx, roomID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]availability.SlotStatus), args.Error(1)
}

func TestReservationHandler_create(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	start := time.Date(2025, 4, 7, 14, 0, 0, 0, time.UTC)
	req := createReservationRequest{
		RoomID:     1,
		Date:       "2025-04-07",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		GuestName:  "Ada Lovelace",
		GuestEmail: "ada@example.com",
	}
	body, _ := json.Marshal(req)
	c.Request = httptest.NewRequest("POST", "/reservations", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	created := &domain.Reservation{
		ID:         1,
		RoomID:     1,
		Date:       "2025-04-07",
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		Status:     domain.ReservationStatusPendingPayment,
		Code:       "AB12CD34",
	}

	mockService.On("CreateReservation", c.Request.Context(), mock.AnythingOfType("reservation.CreateReservationInput")).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response domain.Reservation
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "AB12CD34", response.Code)
	assert.Equal(t, domain.ReservationStatusPendingPayment, response.Status)

	mockService.AssertExpectations(t)
}

func TestReservationHandler_create_Conflict(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(createReservationRequest{RoomID: 1, Date: "2025-04-07"})
	c.Request = httptest.NewRequest("POST", "/reservations", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateReservation", c.Request.Context(), mock.Anything).Return(nil, reservation.ErrSlotUnavailable)

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestReservationHandler_create_InvalidInput(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(createReservationRequest{RoomID: 1})
	c.Request = httptest.NewRequest("POST", "/reservations", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateReservation", c.Request.Context(), mock.Anything).Return(nil, reservation.ErrInvalidInput)

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationHandler_cancel(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "3"}}
	c.Request = httptest.NewRequest("POST", "/reservations/3/cancel", nil)
	c.Request.Header.Set("X-User-ID", "7")

	userID := int64(7)
	cancelled := &domain.Reservation{
		ID:     3,
		RoomID: 1,
		UserID: &userID,
		Status: domain.ReservationStatusCancelled,
	}

	mockService.On("CancelReservation", c.Request.Context(), int64(3), reservation.Actor{UserID: &userID}).Return(cancelled, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response domain.Reservation
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, response.Status)

	mockService.AssertExpectations(t)
}

func TestReservationHandler_cancel_NotAllowed(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "3"}}
	c.Request = httptest.NewRequest("POST", "/reservations/3/cancel", nil)

	mockService.On("CancelReservation", c.Request.Context(), int64(3), mock.Anything).Return(nil, reservation.ErrNotAllowed)

	handler.cancel(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReservationHandler_confirmPayment(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "code", Value: "AB12CD34"}}
	c.Request = httptest.NewRequest("POST", "/reservations/confirm/AB12CD34", nil)

	confirmed := &domain.Reservation{
		ID:     3,
		Code:   "AB12CD34",
		Status: domain.ReservationStatusConfirmed,
	}

	mockService.On("ConfirmPayment", c.Request.Context(), "AB12CD34").Return(confirmed, nil)

	handler.confirmPayment(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response domain.Reservation
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusConfirmed, response.Status)
}

func TestReservationHandler_listByDate(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/reservations?date=2025-04-07", nil)

	reservations := []domain.Reservation{
		{ID: 1, RoomID: 1, Date: "2025-04-07"},
		{ID: 2, RoomID: 2, Date: "2025-04-07"},
	}

	mockService.On("ListByDate", c.Request.Context(), "2025-04-07").Return(reservations, nil)

	handler.listByDate(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []domain.Reservation
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 2)
}
