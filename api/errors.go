package api

import (
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/api/apierr"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(apierr.HTTPStatus(err), errorResponse{Error: apierr.Message(err), Reason: apierr.Reason(err)})
}

func badRequest(c *gin.Context, err error) {
	writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
}
