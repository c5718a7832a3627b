package tracking

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jeni-t/flightbooking/internal/domain"
	"github.com/jeni-t/flightbooking/internal/notify"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, session domain.TrackedSession, previous, current domain.FlightStatusRecord) notify.Outcome
}

// Poller drives the recurring status check over every tracked session. It owns
// the per-session last-seen record used for change detection; that state is
// separate from the cache's TTL-bound entries and survives cache expiry.
type Poller struct {
	registry   *Registry
	status     *StatusService
	dispatcher Dispatcher
	interval   time.Duration

	tickMu sync.Mutex

	mu       sync.Mutex
	lastSeen map[string]domain.FlightStatusRecord

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPoller(registry *Registry, status *StatusService, dispatcher Dispatcher, interval time.Duration) *Poller {
	return &Poller{
		registry:   registry,
		status:     status,
		dispatcher: dispatcher,
		interval:   interval,
		lastSeen:   make(map[string]domain.FlightStatusRecord),
	}
}

// Start launches the recurring tick. Stop cancels it and waits for the running
// tick, if any, to finish.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.RunOnce(ctx)
			}
		}
	}()
	log.Printf("flight status poller started, interval %s", p.interval)
}

func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	log.Printf("flight status poller stopped")
}

// RunOnce executes a single tick: snapshot the registry, look up each tracked
// flight through the cache, dispatch against the last-seen record and update
// it. At most one tick runs at a time; a tick arriving while the previous one
// is still in flight is skipped to bound upstream call volume.
func (p *Poller) RunOnce(ctx context.Context) {
	if !p.tickMu.TryLock() {
		log.Printf("previous poll tick still running, skipping")
		return
	}
	defer p.tickMu.Unlock()

	sessions := p.registry.List()
	live := make(map[string]struct{}, len(sessions))

	for _, session := range sessions {
		live[session.SessionID] = struct{}{}

		current := p.status.Status(ctx, session.FlightNumber, session.Date)
		previous := p.previousRecord(session)
		p.dispatcher.Dispatch(ctx, session, previous, current)
		p.setLastSeen(session.SessionID, current)

		if current.Status == domain.StatusUnknown {
			log.Printf("no status for flight %s on %s (session %s)", session.FlightNumber, session.Date, session.SessionID)
		}
	}

	p.pruneLastSeen(live)
}

// previousRecord returns the last record observed for the session. A session
// with no prior observation is treated as Unknown, so a first sighting of
// Delayed or Canceled notifies immediately.
func (p *Poller) previousRecord(session domain.TrackedSession) domain.FlightStatusRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	if record, ok := p.lastSeen[session.SessionID]; ok {
		return record
	}
	return domain.UnknownStatusRecord(session.FlightNumber, session.Date)
}

func (p *Poller) setLastSeen(sessionID string, record domain.FlightStatusRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen[sessionID] = record
}

func (p *Poller) pruneLastSeen(live map[string]struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id := range p.lastSeen {
		if _, ok := live[id]; !ok {
			delete(p.lastSeen, id)
		}
	}
}
