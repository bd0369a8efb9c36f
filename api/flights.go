package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/seatbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.GET("/:id", h.get)
}

// list answers GET /flights and GET /flights?number=SB101.
func (h *FlightHandler) list(c *gin.Context) {
	if number := c.Query("number"); number != "" {
		flight, err := h.service.GetByNumber(c.Request.Context(), number)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toFlightResponse(*flight))
		return
	}

	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]flightResponse, 0, len(list))
	for _, f := range list {
		resp = append(resp, toFlightResponse(f))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight))
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	flight, err := h.service.Create(c.Request.Context(), flights.CreateFlightInput{
		FlightNumber:  req.FlightNumber,
		FromAirport:   req.FromAirport,
		ToAirport:     req.ToAirport,
		DepartureTime: req.DepartureTime,
		Duration:      time.Duration(req.DurationMinutes) * time.Minute,
		SectionIDs:    req.SectionIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(*flight))
}

func flightID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id", Reason: "INVALID_INPUT"})
		return 0, false
	}
	return id, true
}
