package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jeni-t/flightbooking/internal/domain"
	"github.com/jeni-t/flightbooking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightNumber  string `json:"flight_number"`
	DepartureDate string `json:"departure_date"`
	Passenger     string `json:"passenger"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	AmountCents   int64  `json:"amount_cents"`
}

type bookingResponse struct {
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	FlightNumber  string `json:"flight_number"`
	DepartureDate string `json:"departure_date"`
	Passenger     string `json:"passenger"`
	Email         string `json:"email"`
	ExpiresAt     string `json:"expires_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.PUT("/:reference", h.confirm)
	router.DELETE("/:reference", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		FlightNumber:  req.FlightNumber,
		DepartureDate: req.DepartureDate,
		Passenger:     req.Passenger,
		Email:         req.Email,
		Phone:         req.Phone,
		AmountCents:   req.AmountCents,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) confirm(c *gin.Context) {
	confirmed, err := h.service.ConfirmBooking(c.Request.Context(), c.Param("reference"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(confirmed))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	cancelled, err := h.service.CancelBooking(c.Request.Context(), c.Param("reference"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		Reference:     b.Reference,
		Status:        string(b.Status),
		FlightNumber:  b.FlightNumber,
		DepartureDate: b.DepartureDate,
		Passenger:     b.Passenger,
		Email:         b.Email,
		ExpiresAt:     b.ExpiresAt.Format(time.RFC3339),
	}
}
