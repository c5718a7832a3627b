package flights

import (
	"context"
	"errors"

	"github.com/jeni-t/flightbooking/internal/domain"
)

type FlightUseCase interface {
	Search(ctx context.Context, origin, destination, date string) ([]domain.FlightOffer, error)
}

// OffersSearcher is the upstream flight-offers capability (Amadeus).
type OffersSearcher interface {
	FlightOffers(ctx context.Context, origin, destination, date string) ([]domain.FlightOffer, error)
}

type OffersCache interface {
	GetOffers(ctx context.Context, origin, destination, date string) ([]domain.FlightOffer, error)
	SetOffers(ctx context.Context, origin, destination, date string, offers []domain.FlightOffer) error
}

type FlightService struct {
	searcher OffersSearcher
	cache    OffersCache
}

func NewFlightService(searcher OffersSearcher, cache OffersCache) *FlightService {
	return &FlightService{searcher: searcher, cache: cache}
}

func (s *FlightService) Search(ctx context.Context, origin, destination, date string) ([]domain.FlightOffer, error) {
	if origin == "" || destination == "" || date == "" {
		return nil, errors.New("origin, destination and date are required")
	}

	if s.cache != nil {
		if cached, err := s.cache.GetOffers(ctx, origin, destination, date); err == nil && cached != nil {
			return cached, nil
		}
	}

	offers, err := s.searcher.FlightOffers(ctx, origin, destination, date)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetOffers(ctx, origin, destination, date, offers)
	}
	return offers, nil
}

var _ FlightUseCase = (*FlightService)(nil)
