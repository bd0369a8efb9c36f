package client

import "time"

// Flight is the API's flight document.
type Flight struct {
	ID               int64     `json:"id"`
	FlightNumber     string    `json:"flight_number"`
	SectionIDs       []string  `json:"section_ids"`
	FromAirport      string    `json:"from_airport"`
	ToAirport        string    `json:"to_airport"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	ArrivalTimeOfDay string    `json:"arrival_time_of_day"`
	DurationMinutes  int64     `json:"duration_minutes"`
}
