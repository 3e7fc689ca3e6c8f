package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/wumpus-api/domain"
	"github.com/beka-birhanu/wumpus-api/infrastruture/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub(t *testing.T) {
	hub := NewHub(log.NewNop())
	gameID := uuid.New()
	hub.Open(gameID)

	serveErrs := make(chan error, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveErrs <- hub.Serve(gameID, w, r)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Watchers(gameID) == 1 }, time.Second, 10*time.Millisecond)

	t.Run("delivers published events", func(t *testing.T) {
		hub.Publish(gameID, dmn.GameEvent{Type: dmn.EventTurn, GameID: gameID, Message: "You moved to room 6."})
		hub.Publish(uuid.New(), dmn.GameEvent{Type: dmn.EventTurn, Message: "someone else's game"})

		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event dmn.GameEvent
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, dmn.EventTurn, event.Type)
		assert.Equal(t, gameID, event.GameID)
		assert.Equal(t, "You moved to room 6.", event.Message)
	})

	t.Run("close disconnects watchers", func(t *testing.T) {
		hub.Close(gameID)
		assert.Equal(t, 0, hub.Watchers(gameID))

		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := conn.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
		assert.NoError(t, <-serveErrs)
	})

	t.Run("closed games refuse watchers", func(t *testing.T) {
		_, _, err := websocket.DefaultDialer.Dial(url, nil)
		assert.ErrorIs(t, err, websocket.ErrBadHandshake)
		assert.ErrorIs(t, <-serveErrs, ErrGameClosed)
		assert.Equal(t, 0, hub.Watchers(gameID))

		late := &watcher{send: make(chan []byte, 1)}
		assert.False(t, hub.add(gameID, late))
		assert.False(t, hub.add(uuid.New(), late))
	})
}
