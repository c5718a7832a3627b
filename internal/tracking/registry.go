package tracking

import (
	"sort"
	"sync"

	"github.com/jeni-t/flightbooking/internal/domain"
)

// Registry maps live tracking sessions to the flight each one watches. A session
// tracks at most one flight; entries live exactly as long as the connection.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]domain.TrackedSession
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]domain.TrackedSession)}
}

// Upsert registers a flight for a session, replacing any prior entry.
func (r *Registry) Upsert(sessionID, flightNumber, date string, contact domain.Contact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = domain.TrackedSession{
		SessionID:    sessionID,
		FlightNumber: flightNumber,
		Date:         date,
		Contact:      contact,
	}
}

// Remove drops a session's entry. Removing an unknown session is a no-op.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// List returns a point-in-time snapshot, so callers iterate unaffected by
// concurrent registrations.
func (r *Registry) List() []domain.TrackedSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make([]domain.TrackedSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].SessionID < snapshot[j].SessionID })
	return snapshot
}
