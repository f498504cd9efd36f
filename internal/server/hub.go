package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/pokerstate/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	sendBuffer = 64
)

// StreamMessage is the frame pushed to websocket watchers.
type StreamMessage struct {
	Type     string        `json:"type"`
	GameID   string        `json:"gameId"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// Hub fans game snapshots out to websocket watchers, grouped by game.
type Hub struct {
	logger   *log.Logger
	mu       sync.RWMutex
	watchers map[string]map[*watcher]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger:   logger.WithPrefix("hub"),
		watchers: make(map[string]map[*watcher]struct{}),
	}
}

type watcher struct {
	hub       *Hub
	gameID    string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Watch registers conn as a watcher of gameID, queues the initial snapshot
// and starts the pumps.
func (h *Hub) Watch(conn *websocket.Conn, gameID string, initial game.Snapshot) error {
	data, err := encodeSnapshot(gameID, initial)
	if err != nil {
		return err
	}

	w := &watcher{
		hub:    h,
		gameID: gameID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	w.send <- data

	h.mu.Lock()
	if h.watchers[gameID] == nil {
		h.watchers[gameID] = make(map[*watcher]struct{})
	}
	h.watchers[gameID][w] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("Watcher registered", "game_id", gameID)

	go w.writePump()
	go w.readPump()
	return nil
}

// Broadcast pushes snapshot to every watcher of gameID. Watchers whose
// buffer is full are disconnected.
func (h *Hub) Broadcast(gameID string, snapshot game.Snapshot) {
	h.mu.RLock()
	if len(h.watchers[gameID]) == 0 {
		h.mu.RUnlock()
		return
	}
	h.mu.RUnlock()

	data, err := encodeSnapshot(gameID, snapshot)
	if err != nil {
		h.logger.Error("Failed to encode snapshot", "game_id", gameID, "error", err)
		return
	}

	var slow []*watcher
	h.mu.RLock()
	for w := range h.watchers[gameID] {
		select {
		case w.send <- data:
		default:
			slow = append(slow, w)
		}
	}
	h.mu.RUnlock()

	for _, w := range slow {
		h.logger.Warn("Watcher send buffer full, closing connection", "game_id", gameID)
		w.close()
	}
}

// CloseGame disconnects every watcher of gameID.
func (h *Hub) CloseGame(gameID string) {
	h.mu.Lock()
	set := h.watchers[gameID]
	delete(h.watchers, gameID)
	h.mu.Unlock()

	for w := range set {
		w.close()
	}
}

// Watchers reports how many connections are watching gameID.
func (h *Hub) Watchers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[gameID])
}

func (h *Hub) remove(w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.watchers[w.gameID]
	if !ok {
		return
	}
	delete(set, w)
	if len(set) == 0 {
		delete(h.watchers, w.gameID)
	}
}

func encodeSnapshot(gameID string, snapshot game.Snapshot) ([]byte, error) {
	return json.Marshal(StreamMessage{Type: "snapshot", GameID: gameID, Snapshot: snapshot})
}

func (w *watcher) close() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.hub.remove(w)
	})
}

// readPump discards client frames; it exists to process pongs and notice
// the peer going away.
func (w *watcher) readPump() {
	defer w.close()

	w.conn.SetReadLimit(maxMessageSize)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				w.hub.logger.Error("WebSocket error", "game_id", w.gameID, "error", err)
			}
			return
		}
	}
}

func (w *watcher) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		w.close()
		_ = w.conn.Close()
	}()

	for {
		select {
		case message := <-w.send:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				w.hub.logger.Error("Failed to write message", "game_id", w.gameID, "error", err)
				return
			}

		case <-ticker.C:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-w.done:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = w.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
