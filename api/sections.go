package api

import (
	"net/http"

	"github.com/Domenick1991/seatbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type SectionHandler struct {
	service flights.FlightUseCase
}

func NewSectionHandler(service flights.FlightUseCase) *SectionHandler {
	return &SectionHandler{service: service}
}

func (h *SectionHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.GET("/:id", h.get)
}

func (h *SectionHandler) list(c *gin.Context) {
	sections, err := h.service.ListSections(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]sectionResponse, 0, len(sections))
	for _, s := range sections {
		resp = append(resp, toSectionResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SectionHandler) get(c *gin.Context) {
	section, err := h.service.GetSection(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSectionResponse(*section))
}

func (h *SectionHandler) create(c *gin.Context) {
	var req createSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	section, err := h.service.CreateSection(c.Request.Context(), flights.CreateSectionInput{
		SeatClass: req.SeatClass,
		Rows:      req.Rows,
		Cols:      req.Cols,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSectionResponse(*section))
}
