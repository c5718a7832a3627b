package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jeni-t/flightbooking/internal/domain"
	"github.com/jeni-t/flightbooking/internal/kafka"
	"github.com/jeni-t/flightbooking/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, reference string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, reference string) (*domain.Booking, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
}

type Cache interface {
	AcquireBookingLock(ctx context.Context, flightNumber, date, email string, ttl time.Duration) (bool, error)
	ReleaseBookingLock(ctx context.Context, flightNumber, date, email string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	cache              Cache
	producer           Producer
	notificationsTopic string
	holdTTL            time.Duration
}

type CreateBookingInput struct {
	FlightNumber  string `json:"flight_number"`
	DepartureDate string `json:"departure_date"`
	Passenger     string `json:"passenger"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	AmountCents   int64  `json:"amount_cents"`
}

func NewBookingService(
	bookings repository.BookingRepository,
	cache Cache,
	producer Producer,
	notificationsTopic string,
	holdTTL time.Duration,
) *BookingService {
	return &BookingService{
		bookings:           bookings,
		cache:              cache,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		holdTTL:            holdTTL,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.FlightNumber == "" || input.DepartureDate == "" {
		return nil, errors.New("flight number and departure date are required")
	}
	if input.Email == "" {
		return nil, errors.New("email is required")
	}
	if input.Passenger == "" {
		return nil, errors.New("passenger name is required")
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireBookingLock(ctx, input.FlightNumber, input.DepartureDate, input.Email, s.holdTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("a booking for this flight is already pending")
		}
		locked = true
	}

	booking := &domain.Booking{
		Reference:     uuid.NewString(),
		FlightNumber:  input.FlightNumber,
		DepartureDate: input.DepartureDate,
		Passenger:     input.Passenger,
		Email:         input.Email,
		Phone:         input.Phone,
		AmountCents:   input.AmountCents,
		ExpiresAt:     time.Now().Add(s.holdTTL),
	}

	if err := s.bookings.CreatePending(ctx, booking); err != nil {
		if locked {
			_ = s.cache.ReleaseBookingLock(ctx, input.FlightNumber, input.DepartureDate, input.Email)
		}
		return nil, err
	}

	if err := s.publish(ctx, "booking_created", booking); err != nil {
		log.Printf("failed to publish booking_created event for %s: %v", booking.Reference, err)
	}
	return booking, nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	current, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, errors.New("booking is not pending")
	}

	updated, err := s.bookings.UpdateStatus(ctx, reference, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_confirmed", updated); err != nil {
		log.Printf("failed to publish booking_confirmed event for %s: %v", updated.Reference, err)
	}
	if s.cache != nil {
		_ = s.cache.ReleaseBookingLock(ctx, updated.FlightNumber, updated.DepartureDate, updated.Email)
	}
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	current, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled || current.Status == domain.BookingStatusExpired {
		return current, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, reference, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_cancelled", updated); err != nil {
		log.Printf("failed to publish booking_cancelled event for %s: %v", updated.Reference, err)
	}
	if s.cache != nil {
		_ = s.cache.ReleaseBookingLock(ctx, updated.FlightNumber, updated.DepartureDate, updated.Email)
	}
	return updated, nil
}

func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpirePendingBefore(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	for _, b := range expired {
		_ = s.publish(ctx, "booking_expired", &b)
		if s.cache != nil {
			_ = s.cache.ReleaseBookingLock(ctx, b.FlightNumber, b.DepartureDate, b.Email)
		}
	}
	return expired, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.notificationsTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:          eventType,
		Reference:     booking.Reference,
		FlightNumber:  booking.FlightNumber,
		DepartureDate: booking.DepartureDate,
		Passenger:     booking.Passenger,
		Email:         booking.Email,
		Phone:         booking.Phone,
		Status:        string(booking.Status),
		AmountCents:   booking.AmountCents,
		ExpiresAt:     booking.ExpiresAt,
	}
	return s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event)
}

var _ BookingUseCase = (*BookingService)(nil)
