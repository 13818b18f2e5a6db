package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monocle-dev/bugtrack/internal/logging"
)

func newHubServer(t *testing.T, hub *Hub, projectID uint) string {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, projectID)
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestHubBroadcastsToProjectClients(t *testing.T) {
	hub := NewHub([]string{"http://localhost:3000"}, logging.Discard())
	t.Cleanup(hub.Close)

	url := newHubServer(t, hub, 7)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://localhost:3000"}})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "connected", msg.Type)
	assert.Equal(t, 1, hub.ClientCount(7))

	hub.BroadcastRefresh(8, EventBugCreated)
	hub.BroadcastRefresh(7, EventBugDeleted)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, Message{
		Type:      "refresh",
		Event:     EventBugDeleted,
		Message:   "Project data updated",
		ProjectID: 7,
	}, msg)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return hub.ClientCount(7) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHubRejectsUnknownOrigins(t *testing.T) {
	hub := NewHub([]string{"http://localhost:3000"}, logging.Discard())
	url := newHubServer(t, hub, 1)

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.test"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, hub.ClientCount(1))
}
