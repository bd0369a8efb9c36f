package domain

type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatBooked    SeatStatus = "BOOKED"
)

type Seat struct {
	ID        string
	FlightID  int64
	SectionID string
	Row       int
	Col       int
	Status    SeatStatus
	// Holder is the booking attempt that moved the seat to BOOKED.
	Holder string `json:"-"`
}

func (s Seat) Available() bool {
	return s.Status == SeatAvailable
}
