package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/jeni-t/flightbooking/config"
	"github.com/jeni-t/flightbooking/internal/cache"
	"github.com/jeni-t/flightbooking/internal/kafka"
	"github.com/jeni-t/flightbooking/internal/notify"
	"github.com/jeni-t/flightbooking/internal/repository"
	"github.com/jeni-t/flightbooking/internal/service/booking"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.OffersCacheTTLSecs)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	bookingService := booking.NewBookingService(
		bookingRepo,
		redisCache,
		producer,
		cfg.Kafka.NotificationsTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
	)

	emailSender := notify.NewPostmarkSender(cfg.Postmark)
	smsSender := notify.NewTwilioSender(cfg.Twilio)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			handleBookingEvent(ctx, event, emailSender, smsSender)
			return nil
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expireTicker.C:
			expired, err := bookingService.ExpirePendingBookings(ctx)
			if err != nil {
				log.Printf("expire bookings error: %v", err)
				continue
			}
			if len(expired) > 0 {
				log.Printf("expired %d bookings", len(expired))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}

// handleBookingEvent notifies the passenger about a booking transition. Only
// confirmations go to SMS; everything else is email-only.
func handleBookingEvent(ctx context.Context, event kafka.BookingEvent, email notify.EmailSender, sms notify.SMSSender) {
	subject, body := bookingMessage(event)
	if subject == "" {
		return
	}

	if event.Email != "" {
		if err := email.SendEmail(ctx, event.Email, subject, body); err != nil {
			log.Printf("booking email to %s failed: %v", event.Email, err)
		}
	}
	if event.Type == "booking_confirmed" && event.Phone != "" {
		if err := sms.SendSMS(ctx, event.Phone, body); err != nil {
			log.Printf("booking sms to %s failed: %v", event.Phone, err)
		}
	}
}

func bookingMessage(event kafka.BookingEvent) (subject, body string) {
	switch event.Type {
	case "booking_created":
		return "Booking Received",
			fmt.Sprintf("Your booking %s for flight %s on %s is pending. Confirm before %s to keep it.",
				event.Reference, event.FlightNumber, event.DepartureDate, event.ExpiresAt.Format(time.RFC1123))
	case "booking_confirmed":
		return "Booking Confirmed",
			fmt.Sprintf("Your booking %s for flight %s on %s is confirmed. Have a good trip, %s!",
				event.Reference, event.FlightNumber, event.DepartureDate, event.Passenger)
	case "booking_cancelled":
		return "Booking Cancelled",
			fmt.Sprintf("Your booking %s for flight %s on %s has been cancelled.",
				event.Reference, event.FlightNumber, event.DepartureDate)
	case "booking_expired":
		return "Booking Expired",
			fmt.Sprintf("Your booking %s for flight %s on %s expired before confirmation.",
				event.Reference, event.FlightNumber, event.DepartureDate)
	default:
		return "", ""
	}
}
