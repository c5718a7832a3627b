package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeni-t/flightbooking/api"
	"github.com/jeni-t/flightbooking/config"
	"github.com/jeni-t/flightbooking/internal/service/booking"
	"github.com/jeni-t/flightbooking/internal/service/flights"
	"github.com/jeni-t/flightbooking/internal/ws"
)

// Run starts the HTTP server (REST API plus websocket endpoint) and blocks
// until the context is canceled or the server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	statusSvc api.StatusUseCase,
	flightSvc flights.FlightUseCase,
	bookingSvc booking.BookingUseCase,
	gateway *ws.Gateway,
) error {
	router := newRouter(statusSvc, flightSvc, bookingSvc, gateway)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(
	statusSvc api.StatusUseCase,
	flightSvc flights.FlightUseCase,
	bookingSvc booking.BookingUseCase,
	gateway *ws.Gateway,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	apiGroup := router.Group("/api")
	api.NewStatusHandler(statusSvc).Register(apiGroup)
	api.NewFlightHandler(flightSvc).Register(apiGroup.Group("/airlines"))
	api.NewBookingHandler(bookingSvc).Register(apiGroup.Group("/bookings"))

	router.GET("/ws", gateway.Handle)

	return router
}
