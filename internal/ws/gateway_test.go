package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jeni-t/flightbooking/internal/domain"
	"github.com/jeni-t/flightbooking/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStatus struct {
	record domain.FlightStatusRecord
}

func (s *stubStatus) Status(ctx context.Context, flightNumber, date string) domain.FlightStatusRecord {
	return s.record
}

func dialGateway(t *testing.T, gateway *Gateway) *websocket.Conn {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", gateway.Handle)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSessions(t *testing.T, registry *tracking.Registry, want int) []domain.TrackedSession {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sessions := registry.List(); len(sessions) == want {
			return sessions
		}
		time.Sleep(10 * time.Millisecond)
	}
	sessions := registry.List()
	require.Len(t, sessions, want)
	return sessions
}

func TestGateway_TrackFlightRegistersSession(t *testing.T) {
	registry := tracking.NewRegistry()
	gateway := NewGateway(registry, &stubStatus{})
	conn := dialGateway(t, gateway)

	err := conn.WriteJSON(map[string]string{
		"event":        "track-flight",
		"flightNumber": "AI202",
		"date":         "2025-04-05",
		"email":        "a@example.com",
		"phone":        "+15551234567",
	})
	require.NoError(t, err)

	sessions := waitForSessions(t, registry, 1)
	assert.Equal(t, "AI202", sessions[0].FlightNumber)
	assert.Equal(t, "2025-04-05", sessions[0].Date)
	assert.Equal(t, "a@example.com", sessions[0].Contact.Email)
	assert.Equal(t, "+15551234567", sessions[0].Contact.Phone)
}

func TestGateway_TrackFlightWithoutDateIsRejected(t *testing.T) {
	registry := tracking.NewRegistry()
	gateway := NewGateway(registry, &stubStatus{})
	conn := dialGateway(t, gateway)

	err := conn.WriteJSON(map[string]string{
		"event":        "track-flight",
		"flightNumber": "AI202",
	})
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply outboundEvent
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply.Event)
	assert.Empty(t, registry.List())
}

func TestGateway_RequestFlightStatusRepliesOnSameConnection(t *testing.T) {
	registry := tracking.NewRegistry()
	status := &stubStatus{record: domain.FlightStatusRecord{
		FlightNumber: "AI202",
		Date:         "2025-04-05",
		Status:       domain.StatusDelayed,
	}}
	gateway := NewGateway(registry, status)
	conn := dialGateway(t, gateway)

	err := conn.WriteJSON(map[string]string{
		"event":        "requestFlightStatus",
		"flightNumber": "AI202",
		"date":         "2025-04-05",
	})
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply outboundEvent
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "flightStatusUpdate", reply.Event)
	require.NotNil(t, reply.Data)
	assert.Equal(t, domain.StatusDelayed, reply.Data.Status)

	// A direct status request registers nothing.
	assert.Empty(t, registry.List())
}

func TestGateway_DisconnectRemovesSession(t *testing.T) {
	registry := tracking.NewRegistry()
	gateway := NewGateway(registry, &stubStatus{})
	conn := dialGateway(t, gateway)

	err := conn.WriteJSON(map[string]string{
		"event":        "track-flight",
		"flightNumber": "AI202",
		"date":         "2025-04-05",
	})
	require.NoError(t, err)
	waitForSessions(t, registry, 1)

	conn.Close()
	waitForSessions(t, registry, 0)
}

func TestGateway_PushToUnknownSessionIsDroppedSilently(t *testing.T) {
	registry := tracking.NewRegistry()
	gateway := NewGateway(registry, &stubStatus{})

	// Must not panic or block.
	gateway.PushToSession("no-such-session", domain.FlightStatusRecord{Status: domain.StatusDelayed})
}

func TestGateway_PushToSessionDeliversUpdate(t *testing.T) {
	registry := tracking.NewRegistry()
	gateway := NewGateway(registry, &stubStatus{})
	conn := dialGateway(t, gateway)

	err := conn.WriteJSON(map[string]string{
		"event":        "track-flight",
		"flightNumber": "AI202",
		"date":         "2025-04-05",
	})
	require.NoError(t, err)
	sessions := waitForSessions(t, registry, 1)

	gateway.PushToSession(sessions[0].SessionID, domain.FlightStatusRecord{
		FlightNumber: "AI202",
		Date:         "2025-04-05",
		Status:       domain.StatusCanceled,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply outboundEvent
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "flightStatusUpdate", reply.Event)
	require.NotNil(t, reply.Data)
	assert.Equal(t, domain.StatusCanceled, reply.Data.Status)
}
