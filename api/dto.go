package api

import (
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
)

type flightResponse struct {
	ID               int64     `json:"id"`
	FlightNumber     string    `json:"flight_number"`
	SectionIDs       []string  `json:"section_ids"`
	FromAirport      string    `json:"from_airport"`
	ToAirport        string    `json:"to_airport"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	ArrivalTimeOfDay string    `json:"arrival_time_of_day"`
	DurationMinutes  int64     `json:"duration_minutes"`
	CreatedAt        time.Time `json:"created_at"`
}

func toFlightResponse(f domain.Flight) flightResponse {
	return flightResponse{
		ID:               f.ID,
		FlightNumber:     f.FlightNumber,
		SectionIDs:       f.SectionIDs,
		FromAirport:      f.FromAirport,
		ToAirport:        f.ToAirport,
		DepartureTime:    f.DepartureTime,
		ArrivalTime:      f.ArrivalTime(),
		ArrivalTimeOfDay: f.ArrivalTimeOfDay(),
		DurationMinutes:  int64(f.Duration / time.Minute),
		CreatedAt:        f.CreatedAt,
	}
}

type createFlightRequest struct {
	FlightNumber    string    `json:"flight_number" binding:"required"`
	FromAirport     string    `json:"from_airport" binding:"required"`
	ToAirport       string    `json:"to_airport" binding:"required"`
	DepartureTime   time.Time `json:"departure_time" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,gt=0"`
	SectionIDs      []string  `json:"section_ids" binding:"required,min=1"`
}

type sectionResponse struct {
	ID        string    `json:"id"`
	SeatClass string    `json:"seat_class"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

func toSectionResponse(s domain.FlightSection) sectionResponse {
	return sectionResponse{
		ID:        s.ID,
		SeatClass: s.SeatClass,
		Rows:      s.Rows,
		Cols:      s.Cols,
		Capacity:  s.Capacity(),
		CreatedAt: s.CreatedAt,
	}
}

type createSectionRequest struct {
	SeatClass string `json:"seat_class" binding:"required"`
	Rows      int    `json:"rows" binding:"required,gt=0"`
	Cols      int    `json:"cols" binding:"required,gt=0"`
}

type commitBookingRequest struct {
	SeatIDs []string `json:"seat_ids"`
}
