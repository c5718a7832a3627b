package ws

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jeni-t/flightbooking/internal/domain"
	"github.com/jeni-t/flightbooking/internal/tracking"
)

type StatusProvider interface {
	Status(ctx context.Context, flightNumber, date string) domain.FlightStatusRecord
}

// Gateway owns the live client connections. Each connection gets an opaque
// session id used as the registry key, so a dropped socket cleanly removes its
// tracking entry.
type Gateway struct {
	registry *tracking.Registry
	status   StatusProvider
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*client
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func NewGateway(registry *tracking.Registry, status StatusProvider) *Gateway {
	return &Gateway{
		registry: registry,
		status:   status,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[string]*client),
	}
}

type inboundEvent struct {
	Event        string `json:"event"`
	FlightNumber string `json:"flightNumber"`
	Date         string `json:"date"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

type outboundEvent struct {
	Event string                     `json:"event"`
	Data  *domain.FlightStatusRecord `json:"data,omitempty"`
	Error string                     `json:"error,omitempty"`
}

// Handle upgrades the request and services the connection until it closes.
func (g *Gateway) Handle(c *gin.Context) {
	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	sessionID := uuid.NewString()
	cl := &client{conn: conn}

	g.mu.Lock()
	g.conns[sessionID] = cl
	g.mu.Unlock()

	log.Printf("client connected: %s", sessionID)
	defer func() {
		g.mu.Lock()
		delete(g.conns, sessionID)
		g.mu.Unlock()
		g.registry.Remove(sessionID)
		conn.Close()
		log.Printf("client disconnected: %s", sessionID)
	}()

	ctx := c.Request.Context()
	for {
		var ev inboundEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("session %s read error: %v", sessionID, err)
			}
			return
		}
		g.handleEvent(ctx, sessionID, cl, ev)
	}
}

func (g *Gateway) handleEvent(ctx context.Context, sessionID string, cl *client, ev inboundEvent) {
	switch ev.Event {
	case "track-flight":
		if ev.FlightNumber == "" || ev.Date == "" {
			cl.writeJSON(outboundEvent{Event: "error", Error: "flightNumber and date are required"})
			return
		}
		g.registry.Upsert(sessionID, ev.FlightNumber, ev.Date, domain.Contact{
			UserID: sessionID,
			Email:  ev.Email,
			Phone:  ev.Phone,
		})
		log.Printf("session %s tracking flight %s on %s", sessionID, ev.FlightNumber, ev.Date)

	case "requestFlightStatus":
		if ev.FlightNumber == "" || ev.Date == "" {
			cl.writeJSON(outboundEvent{Event: "error", Error: "flightNumber and date are required"})
			return
		}
		record := g.status.Status(ctx, ev.FlightNumber, ev.Date)
		if err := cl.writeJSON(outboundEvent{Event: "flightStatusUpdate", Data: &record}); err != nil {
			log.Printf("session %s write failed: %v", sessionID, err)
		}

	default:
		cl.writeJSON(outboundEvent{Event: "error", Error: "unknown event: " + ev.Event})
	}
}

// PushToSession delivers a status record to a connected session. The send is
// best-effort: if the session is gone the record is dropped silently.
func (g *Gateway) PushToSession(sessionID string, record domain.FlightStatusRecord) {
	g.mu.Lock()
	cl, ok := g.conns[sessionID]
	g.mu.Unlock()
	if !ok {
		return
	}
	if err := cl.writeJSON(outboundEvent{Event: "flightStatusUpdate", Data: &record}); err != nil {
		log.Printf("push to session %s failed: %v", sessionID, err)
	}
}
