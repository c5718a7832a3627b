package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jeni-t/flightbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockStatusUseCase struct {
	mock.Mock
}

func (m *MockStatusUseCase) Status(ctx context.Context, flightNumber, date string) domain.FlightStatusRecord {
	args := m.Called(ctx, flightNumber, date)
	return args.Get(0).(domain.FlightStatusRecord)
}

func TestStatusHandler_get(t *testing.T) {
	mockService := &MockStatusUseCase{}
	handler := NewStatusHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "flightNumber", Value: "AI202"}, {Key: "date", Value: "2025-04-05"}}
	c.Request = httptest.NewRequest("GET", "/api/flight-status/AI202/2025-04-05", nil)

	record := domain.FlightStatusRecord{FlightNumber: "AI202", Date: "2025-04-05", Status: domain.StatusDelayed}
	mockService.On("Status", c.Request.Context(), "AI202", "2025-04-05").Return(record)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var got domain.FlightStatusRecord
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.StatusDelayed, got.Status)

	mockService.AssertExpectations(t)
}

func TestStatusHandler_get_UnknownStatusIsStill200(t *testing.T) {
	mockService := &MockStatusUseCase{}
	handler := NewStatusHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "flightNumber", Value: "AI202"}, {Key: "date", Value: "2025-04-05"}}
	c.Request = httptest.NewRequest("GET", "/api/flight-status/AI202/2025-04-05", nil)

	mockService.On("Status", c.Request.Context(), "AI202", "2025-04-05").
		Return(domain.UnknownStatusRecord("AI202", "2025-04-05"))

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var got domain.FlightStatusRecord
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.StatusUnknown, got.Status)

	mockService.AssertExpectations(t)
}
