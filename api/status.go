package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jeni-t/flightbooking/internal/domain"
)

type StatusUseCase interface {
	Status(ctx context.Context, flightNumber, date string) domain.FlightStatusRecord
}

// StatusHandler serves on-demand flight status for non-persistent clients.
// Upstream failure still yields 200 with status "Unknown", keeping the response
// shape uniform.
type StatusHandler struct {
	service StatusUseCase
}

func NewStatusHandler(service StatusUseCase) *StatusHandler {
	return &StatusHandler{service: service}
}

func (h *StatusHandler) Register(router *gin.RouterGroup) {
	router.GET("/flight-status/:flightNumber/:date", h.get)
}

func (h *StatusHandler) get(c *gin.Context) {
	flightNumber := c.Param("flightNumber")
	date := c.Param("date")
	if flightNumber == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flight number and date are required"})
		return
	}

	record := h.service.Status(c.Request.Context(), flightNumber, date)
	c.JSON(http.StatusOK, record)
}
