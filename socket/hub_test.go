package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inkwell/internal/session"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to read events from a WebSocket connection with a timeout.
func readEvent(t *testing.T, conn *websocket.Conn) session.Event {
	var evt session.Event
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	require.NoError(t, json.Unmarshal(p, &evt), "Failed to unmarshal event JSON")
	return evt
}

func startHub(t *testing.T) (*Hub, string) {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The auth middleware is exercised elsewhere; tests pass the user directly.
		ServeWs(hub, w, r, r.URL.Query().Get("user_id"))
	}))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, hub *Hub, wsURL, userID string, want int) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws/auth?user_id="+userID, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.SubscriberCount(userID) == want }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHub_DeliversOnlyToThatUser(t *testing.T) {
	hub, wsURL := startHub(t)

	jane1 := dial(t, hub, wsURL, "jane", 1)
	jane2 := dial(t, hub, wsURL, "jane", 2)
	bob := dial(t, hub, wsURL, "bob", 1)

	hub.Publish(session.Event{
		Type:    session.TokenRefreshed,
		UserID:  "jane",
		Session: &session.Session{UserID: "jane", AccessToken: "new-token"},
	})

	for _, conn := range []*websocket.Conn{jane1, jane2} {
		evt := readEvent(t, conn)
		assert.Equal(t, session.TokenRefreshed, evt.Type)
		require.NotNil(t, evt.Session)
		assert.Equal(t, "new-token", evt.Session.AccessToken)
	}

	bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err, "bob must not receive jane's events")
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, wsURL := startHub(t)

	conn := dial(t, hub, wsURL, "jane", 1)
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.SubscriberCount("jane") == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_SignedOutHasNoSession(t *testing.T) {
	hub, wsURL := startHub(t)
	conn := dial(t, hub, wsURL, "jane", 1)

	hub.Publish(session.Event{Type: session.SignedOut, UserID: "jane"})

	evt := readEvent(t, conn)
	assert.Equal(t, session.SignedOut, evt.Type)
	assert.Nil(t, evt.Session)
}
