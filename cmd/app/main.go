package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeni-t/flightbooking/config"
	"github.com/jeni-t/flightbooking/internal/amadeus"
	"github.com/jeni-t/flightbooking/internal/bootstrap"
	"github.com/jeni-t/flightbooking/internal/cache"
	"github.com/jeni-t/flightbooking/internal/kafka"
	"github.com/jeni-t/flightbooking/internal/notify"
	"github.com/jeni-t/flightbooking/internal/repository"
	"github.com/jeni-t/flightbooking/internal/service/booking"
	"github.com/jeni-t/flightbooking/internal/service/flights"
	"github.com/jeni-t/flightbooking/internal/tracking"
	"github.com/jeni-t/flightbooking/internal/ws"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.OffersCacheTTLSecs)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	amadeusClient := amadeus.NewClient(cfg.Amadeus)

	statusCache := tracking.NewStatusCache(time.Duration(cfg.Tracking.StatusCacheTTLSecs) * time.Second)
	statusService := tracking.NewStatusService(statusCache, amadeusClient.FlightStatus)
	registry := tracking.NewRegistry()
	gateway := ws.NewGateway(registry, statusService)

	dispatcher := notify.NewDispatcher(
		gateway,
		notify.NewTwilioSender(cfg.Twilio),
		notify.NewPostmarkSender(cfg.Postmark),
	)
	poller := tracking.NewPoller(registry, statusService, dispatcher, time.Duration(cfg.Tracking.PollIntervalSecs)*time.Second)
	poller.Start(ctx)
	defer poller.Stop()

	bookingRepo := repository.NewBookingRepository(pool)
	bookingService := booking.NewBookingService(
		bookingRepo,
		redisCache,
		producer,
		cfg.Kafka.NotificationsTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
	)
	flightService := flights.NewFlightService(amadeusClient, redisCache)

	if err := bootstrap.Run(ctx, cfg, statusService, flightService, bookingService, gateway); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
