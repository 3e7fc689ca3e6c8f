// Package notify streams game events to websocket watchers.
package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/wumpus-api/domain"
	"github.com/beka-birhanu/wumpus-api/service/i"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer     = 16
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
)

// ErrGameClosed is returned by Serve for a game that is not open.
var ErrGameClosed = errors.New("game is not open for watching")

type watcher struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (w *watcher) close() {
	w.once.Do(func() { close(w.send) })
}

// Hub fans game events out to the websocket connections watching each game.
// A game accepts watchers between Open and Close.
type Hub struct {
	upgrader websocket.Upgrader
	watchers map[uuid.UUID]map[*watcher]struct{} // open games and their watchers
	logger   i.Logger
	sync.RWMutex
}

// NewHub returns a Hub with no watchers.
func NewHub(logger i.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		watchers: make(map[uuid.UUID]map[*watcher]struct{}),
		logger:   logger,
	}
}

// Serve upgrades the request and streams the events of gameID until either side
// closes the connection.
func (h *Hub) Serve(gameID uuid.UUID, w http.ResponseWriter, r *http.Request) error {
	if !h.isOpen(gameID) {
		return ErrGameClosed
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	wt := &watcher{conn: conn, send: make(chan []byte, sendBuffer)}
	// the game may have closed while upgrading
	if !h.add(gameID, wt) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game closed"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return ErrGameClosed
	}
	go h.writeLoop(wt)
	h.readLoop(gameID, wt)
	return nil
}

// Open starts accepting watchers for a game. Opening an open game is a no-op.
func (h *Hub) Open(gameID uuid.UUID) {
	h.Lock()
	defer h.Unlock()
	if _, ok := h.watchers[gameID]; !ok {
		h.watchers[gameID] = make(map[*watcher]struct{})
	}
}

// Publish queues an event for every watcher of the game. Slow watchers miss events.
func (h *Hub) Publish(gameID uuid.UUID, event dmn.GameEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error(fmt.Sprintf("encoding %s event: %s", event.Type, err))
		return
	}

	h.RLock()
	defer h.RUnlock()
	for wt := range h.watchers[gameID] {
		select {
		case wt.send <- data:
		default:
			h.logger.Warning(fmt.Sprintf("dropping %s event for a slow watcher of game %s", event.Type, gameID))
		}
	}
}

// Close disconnects every watcher of the game and stops accepting new ones.
func (h *Hub) Close(gameID uuid.UUID) {
	h.Lock()
	defer h.Unlock()
	for wt := range h.watchers[gameID] {
		wt.close()
	}
	delete(h.watchers, gameID)
}

// Watchers counts the connections watching a game.
func (h *Hub) Watchers(gameID uuid.UUID) int {
	h.RLock()
	defer h.RUnlock()
	return len(h.watchers[gameID])
}

func (h *Hub) isOpen(gameID uuid.UUID) bool {
	h.RLock()
	defer h.RUnlock()
	_, ok := h.watchers[gameID]
	return ok
}

// add registers a watcher and reports false when the game is not open.
func (h *Hub) add(gameID uuid.UUID, wt *watcher) bool {
	h.Lock()
	defer h.Unlock()
	set, ok := h.watchers[gameID]
	if !ok {
		return false
	}
	set[wt] = struct{}{}
	return true
}

func (h *Hub) remove(gameID uuid.UUID, wt *watcher) {
	h.Lock()
	defer h.Unlock()
	if set, ok := h.watchers[gameID]; ok {
		delete(set, wt)
	}
	wt.close()
}

// readLoop discards client messages and keeps the read deadline alive on pongs.
func (h *Hub) readLoop(gameID uuid.UUID, wt *watcher) {
	defer h.remove(gameID, wt)

	wt.conn.SetReadLimit(maxMessageSize)
	_ = wt.conn.SetReadDeadline(time.Now().Add(pongWait))
	wt.conn.SetPongHandler(func(string) error {
		return wt.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := wt.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(wt *watcher) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = wt.conn.Close()
	}()

	for {
		select {
		case data, ok := <-wt.send:
			_ = wt.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = wt.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game closed"))
				return
			}
			if err := wt.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = wt.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wt.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
