package domain

import "time"

type Flight struct {
	ID            int64
	FlightNumber  string
	SectionIDs    []string
	FromAirport   string
	ToAirport     string
	DepartureTime time.Time
	Duration      time.Duration
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (f Flight) ArrivalTime() time.Time {
	return f.DepartureTime.Add(f.Duration)
}

// ArrivalTimeOfDay is the local wall-clock arrival in the departure's location.
func (f Flight) ArrivalTimeOfDay() string {
	return f.ArrivalTime().Format("15:04")
}
