package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/seatbooking/config"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/Domenick1991/seatbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, input flights.CreateFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) ListSections(ctx context.Context) ([]domain.FlightSection, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.FlightSection), args.Error(1)
}

func (m *MockFlightUseCase) GetSection(ctx context.Context, id string) (*domain.FlightSection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightSection), args.Error(1)
}

func (m *MockFlightUseCase) CreateSection(ctx context.Context, input flights.CreateSectionInput) (*domain.FlightSection, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightSection), args.Error(1)
}

func testFlight() *domain.Flight {
	return &domain.Flight{
		ID:            1,
		FlightNumber:  "SB101",
		SectionIDs:    []string{"business"},
		FromAirport:   "SVO",
		ToAirport:     "LED",
		DepartureTime: time.Date(2026, 11, 2, 22, 30, 0, 0, time.UTC),
		Duration:      90 * time.Minute,
	}
}

func newTestRouter(flightSvc *MockFlightUseCase, seatMaps *MockSeatMapUseCase, bookings *MockBookingUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(config.HTTPConfig{}, logger.Discard(), flightSvc, seatMaps, bookings)
}

func serve(router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights", nil)

	mockService.On("List", c.Request.Context()).Return([]domain.Flight{*testFlight()}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body []flightResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "00:00", body[0].ArrivalTimeOfDay)
	assert.Equal(t, int64(90), body[0].DurationMinutes)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("GET", "/flights/1", nil)

	mockService.On("GetByID", c.Request.Context(), int64(1)).Return(testFlight(), nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightRoutes(t *testing.T) {
	flightSvc := &MockFlightUseCase{}
	router := newTestRouter(flightSvc, &MockSeatMapUseCase{}, &MockBookingUseCase{})

	flightSvc.On("GetByNumber", mock.Anything, "SB101").Return(testFlight(), nil).Once()
	flightSvc.On("GetByID", mock.Anything, int64(9)).Return(nil, fmt.Errorf("flight 9: %w", domain.ErrNotFound)).Once()

	w := serve(router, http.MethodGet, "/api/v1/flights?number=SB101", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"flight_number":"SB101"`)

	w = serve(router, http.MethodGet, "/api/v1/flights/9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"flight 9: not found","reason":"NOT_FOUND"}`, w.Body.String())

	w = serve(router, http.MethodGet, "/api/v1/flights/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	flightSvc.AssertExpectations(t)
}

func TestFlightRoutes_Create(t *testing.T) {
	flightSvc := &MockFlightUseCase{}
	router := newTestRouter(flightSvc, &MockSeatMapUseCase{}, &MockBookingUseCase{})

	flightSvc.On("Create", mock.Anything, mock.MatchedBy(func(in flights.CreateFlightInput) bool {
		return in.FlightNumber == "SB101" && in.Duration == 90*time.Minute && len(in.SectionIDs) == 1
	})).Return(testFlight(), nil).Once()
	flightSvc.On("Create", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: airport codes are three letters", domain.ErrInvalidInput)).Once()

	body := `{"flight_number":"SB101","from_airport":"SVO","to_airport":"LED","departure_time":"2026-11-02T22:30:00Z","duration_minutes":90,"section_ids":["business"]}`
	w := serve(router, http.MethodPost, "/api/v1/flights", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	bad := `{"flight_number":"SB102","from_airport":"SV","to_airport":"LED","departure_time":"2026-11-02T22:30:00Z","duration_minutes":90,"section_ids":["business"]}`
	w = serve(router, http.MethodPost, "/api/v1/flights", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"reason":"INVALID_INPUT"`)

	w = serve(router, http.MethodPost, "/api/v1/flights", `{"flight_number":"SB103"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	flightSvc.AssertExpectations(t)
}

func TestSectionRoutes(t *testing.T) {
	flightSvc := &MockFlightUseCase{}
	router := newTestRouter(flightSvc, &MockSeatMapUseCase{}, &MockBookingUseCase{})

	section := &domain.FlightSection{ID: "economy", SeatClass: "economy", Rows: 20, Cols: 6}
	flightSvc.On("CreateSection", mock.Anything, flights.CreateSectionInput{SeatClass: "economy", Rows: 20, Cols: 6}).Return(section, nil).Once()
	flightSvc.On("ListSections", mock.Anything).Return([]domain.FlightSection{*section}, nil).Once()
	flightSvc.On("GetSection", mock.Anything, "economy").Return(section, nil).Once()

	w := serve(router, http.MethodPost, "/api/v1/sections", `{"seat_class":"economy","rows":20,"cols":6}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"capacity":120`)

	w = serve(router, http.MethodGet, "/api/v1/sections", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodGet, "/api/v1/sections/economy", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodPost, "/api/v1/sections", `{"seat_class":"economy","rows":0,"cols":6}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	flightSvc.AssertExpectations(t)
}
