package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/Domenick1991/seatbooking/internal/service/booking"
	"github.com/Domenick1991/seatbooking/internal/service/seatmaps"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader carries the optional key of POST .../bookings.
const IdempotencyKeyHeader = "Idempotency-Key"

type SeatHandler struct {
	seatMaps seatmaps.SeatMapUseCase
	bookings booking.BookingUseCase
}

func NewSeatHandler(seatMaps seatmaps.SeatMapUseCase, bookings booking.BookingUseCase) *SeatHandler {
	return &SeatHandler{seatMaps: seatMaps, bookings: bookings}
}

// Register mounts the routes under the flights group.
func (h *SeatHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id/seatmap", h.seatMap)
	router.POST("/:id/bookings", h.commit)
}

func (h *SeatHandler) seatMap(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	grid, err := h.seatMaps.ProjectSeatMap(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, grid)
}

// commit answers 200 for SUCCESS and 409 for CONFLICT; both carry the result.
func (h *SeatHandler) commit(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	var req commitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	result, err := h.bookings.CommitBooking(c.Request.Context(), booking.CommitInput{
		FlightID:       id,
		SeatIDs:        req.SeatIDs,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if !result.Succeeded() {
		status = http.StatusConflict
	}
	c.JSON(status, result)
}
