package tracking

import (
	"context"

	"github.com/jeni-t/flightbooking/internal/domain"
)

// StatusService is the cache-fronted status lookup shared by the poller, the
// websocket gateway and the on-demand HTTP endpoint.
type StatusService struct {
	cache *StatusCache
	fetch FetchFunc
}

func NewStatusService(cache *StatusCache, fetch FetchFunc) *StatusService {
	return &StatusService{cache: cache, fetch: fetch}
}

func (s *StatusService) Status(ctx context.Context, flightNumber, date string) domain.FlightStatusRecord {
	return s.cache.GetOrFetch(ctx, flightNumber, date, s.fetch)
}
