package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/hearthvale/internal/engine"
)

const maxStreamConns = 16

// TickSummary is the message pushed to stream clients after every tick.
type TickSummary struct {
	Tick    uint64         `json:"tick"`
	Clock   engine.Clock   `json:"clock"`
	Weather string         `json:"weather"`
	Stats   engine.Stats   `json:"stats"`
	Events  []engine.Event `json:"events"` // logged during this tick
}

// Summarize builds the tick summary for w. Call it between ticks.
func Summarize(w *engine.World) TickSummary {
	c := w.Clock()
	var fresh []engine.Event
	for _, e := range w.Events().Recent(50) {
		if e.Year != c.Year || e.Week != c.Week || e.Day != c.Day || e.Hour != c.Hour {
			break
		}
		fresh = append(fresh, e)
	}
	return TickSummary{
		Tick:    w.Ticks(),
		Clock:   c,
		Weather: w.Weather().String(),
		Stats:   w.Stats(),
		Events:  fresh,
	}
}

// Hub fans tick summaries out to websocket subscribers. Slow subscribers
// miss messages rather than stall the engine.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]chan []byte
	nextID uint64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]chan []byte)}
}

// Publish encodes w's tick summary and offers it to every subscriber.
// It is meant to run as the engine's OnTick callback.
func (h *Hub) Publish(w *engine.World) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) == 0 {
		return
	}
	b, err := json.Marshal(Summarize(w))
	if err != nil {
		slog.Error("encode tick summary", "error", err)
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- b:
		default:
		}
	}
}

// subscribe registers a subscriber; ok is false at the connection limit.
func (h *Hub) subscribe() (id uint64, ch chan []byte, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) >= maxStreamConns {
		return 0, nil, false
	}
	h.nextID++
	ch = make(chan []byte, 16)
	h.subs[h.nextID] = ch
	return h.nextID, ch, true
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id, ch, ok := s.hub.subscribe()
	if !ok {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}
	defer s.hub.unsubscribe(id)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	slog.Info("stream client connected", "sub_id", id)

	// The reader only watches for the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case b := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		case <-gone:
			slog.Info("stream client disconnected", "sub_id", id)
			return
		case <-r.Context().Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
			return
		}
	}
}
