package flights

import (
	"context"
	"errors"
	"testing"

	"github.com/jeni-t/flightbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockOffersSearcher struct {
	mock.Mock
}

func (m *MockOffersSearcher) FlightOffers(ctx context.Context, origin, destination, date string) ([]domain.FlightOffer, error) {
	args := m.Called(ctx, origin, destination, date)
	return args.Get(0).([]domain.FlightOffer), args.Error(1)
}

type MockOffersCache struct {
	mock.Mock
}

func (m *MockOffersCache) GetOffers(ctx context.Context, origin, destination, date string) ([]domain.FlightOffer, error) {
	args := m.Called(ctx, origin, destination, date)
	return args.Get(0).([]domain.FlightOffer), args.Error(1)
}

func (m *MockOffersCache) SetOffers(ctx context.Context, origin, destination, date string, offers []domain.FlightOffer) error {
	args := m.Called(ctx, origin, destination, date, offers)
	return args.Error(0)
}

func testOffers() []domain.FlightOffer {
	return []domain.FlightOffer{
		{ID: "1", Carrier: "AI", FlightNumber: "AI202", Origin: "DEL", Destination: "BOM", PriceTotal: "120.40", Currency: "EUR"},
	}
}

func TestFlightService_Search_CacheMiss(t *testing.T) {
	mockSearcher := &MockOffersSearcher{}
	mockCache := &MockOffersCache{}
	service := NewFlightService(mockSearcher, mockCache)

	ctx := context.Background()
	offers := testOffers()

	mockCache.On("GetOffers", ctx, "DEL", "BOM", "2025-04-05").Return(([]domain.FlightOffer)(nil), nil).Once()
	mockSearcher.On("FlightOffers", ctx, "DEL", "BOM", "2025-04-05").Return(offers, nil).Once()
	mockCache.On("SetOffers", ctx, "DEL", "BOM", "2025-04-05", offers).Return(nil).Once()

	result, err := service.Search(ctx, "DEL", "BOM", "2025-04-05")

	assert.NoError(t, err)
	assert.Equal(t, offers, result)

	mockCache.AssertExpectations(t)
	mockSearcher.AssertExpectations(t)
}

func TestFlightService_Search_CacheHit(t *testing.T) {
	mockSearcher := &MockOffersSearcher{}
	mockCache := &MockOffersCache{}
	service := NewFlightService(mockSearcher, mockCache)

	ctx := context.Background()
	offers := testOffers()

	mockCache.On("GetOffers", ctx, "DEL", "BOM", "2025-04-05").Return(offers, nil).Once()

	result, err := service.Search(ctx, "DEL", "BOM", "2025-04-05")

	assert.NoError(t, err)
	assert.Equal(t, offers, result)

	mockCache.AssertExpectations(t)
	mockSearcher.AssertNotCalled(t, "FlightOffers")
	mockCache.AssertNotCalled(t, "SetOffers")
}

func TestFlightService_Search_CacheErrorFallsThrough(t *testing.T) {
	mockSearcher := &MockOffersSearcher{}
	mockCache := &MockOffersCache{}
	service := NewFlightService(mockSearcher, mockCache)

	ctx := context.Background()
	offers := testOffers()

	mockCache.On("GetOffers", ctx, "DEL", "BOM", "2025-04-05").Return(([]domain.FlightOffer)(nil), errors.New("cache error")).Once()
	mockSearcher.On("FlightOffers", ctx, "DEL", "BOM", "2025-04-05").Return(offers, nil).Once()
	mockCache.On("SetOffers", ctx, "DEL", "BOM", "2025-04-05", offers).Return(nil).Once()

	result, err := service.Search(ctx, "DEL", "BOM", "2025-04-05")

	assert.NoError(t, err)
	assert.Equal(t, offers, result)

	mockCache.AssertExpectations(t)
	mockSearcher.AssertExpectations(t)
}

func TestFlightService_Search_UpstreamError(t *testing.T) {
	mockSearcher := &MockOffersSearcher{}
	mockCache := &MockOffersCache{}
	service := NewFlightService(mockSearcher, mockCache)

	ctx := context.Background()
	expectedErr := errors.New("amadeus down")

	mockCache.On("GetOffers", ctx, "DEL", "BOM", "2025-04-05").Return(([]domain.FlightOffer)(nil), nil).Once()
	mockSearcher.On("FlightOffers", ctx, "DEL", "BOM", "2025-04-05").Return(([]domain.FlightOffer)(nil), expectedErr).Once()

	result, err := service.Search(ctx, "DEL", "BOM", "2025-04-05")

	assert.Error(t, err)
	assert.Nil(t, result)

	mockCache.AssertNotCalled(t, "SetOffers")
}

func TestFlightService_Search_MissingParams(t *testing.T) {
	mockSearcher := &MockOffersSearcher{}
	service := NewFlightService(mockSearcher, nil)

	_, err := service.Search(context.Background(), "", "BOM", "2025-04-05")

	assert.Error(t, err)
	mockSearcher.AssertNotCalled(t, "FlightOffers")
}

func TestFlightService_NoCache(t *testing.T) {
	mockSearcher := &MockOffersSearcher{}
	service := NewFlightService(mockSearcher, nil)

	ctx := context.Background()
	offers := testOffers()

	mockSearcher.On("FlightOffers", ctx, "DEL", "BOM", "2025-04-05").Return(offers, nil).Once()

	result, err := service.Search(ctx, "DEL", "BOM", "2025-04-05")

	assert.NoError(t, err)
	assert.Equal(t, offers, result)

	mockSearcher.AssertExpectations(t)
}
