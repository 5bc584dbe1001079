// Package stream broadcasts snapshots to websocket clients as JSON frames.
package stream

import (
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"heat2d/internal/core"
)

// Frame is one time level as sent on the wire. Values are row-major.
type Frame struct {
	Step   int       `json:"step"`
	Time   float64   `json:"time"`
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	Values []float64 `json:"values"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(f *Frame, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(f, timeout)
}

// write requires c.mu.
func (c *client) write(f *Frame, timeout time.Duration) error {
	if timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	return c.conn.WriteJSON(f)
}

// Hub is an http.Handler accepting websocket clients and a snapshot sink
// broadcasting every time level to them. Clients that fail a write are
// dropped; a late joiner first receives the most recent frame.
type Hub struct {
	dt           float64
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	logger       *log.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]*client
	last    *Frame
}

// NewHub returns a hub stamping frames with step*dt. A nil logger discards.
func NewHub(dt float64, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Hub{
		dt: dt,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		writeTimeout: 2 * time.Second,
		logger:       logger,
		clients:      make(map[*websocket.Conn]*client),
	}
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Println("websocket upgrade error:", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	defer h.drop(conn)
	if last := h.register(c); last != nil {
		err = c.write(last, h.writeTimeout)
	}
	c.mu.Unlock()
	if err != nil {
		return
	}

	// Clients only talk to close the connection.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// register adds c and returns the most recent frame. It returns with c.mu
// held and h.mu released, so a concurrent Snapshot queues behind the
// catch-up write instead of overtaking it.
func (h *Hub) register(c *client) *Frame {
	c.mu.Lock()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.conn] = c
	return h.last
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Snapshot copies v into a frame and sends it to every client. Client
// failures never surface as errors.
func (h *Hub) Snapshot(step int, v core.View) error {
	ext := v.Extent()
	f := &Frame{
		Step:   step,
		Time:   float64(step) * h.dt,
		Rows:   ext[0],
		Cols:   ext[1],
		Values: make([]float64, 0, ext.Prod()),
	}
	row := make([]float64, ext[1])
	for r := 0; r < ext[0]; r++ {
		row = v.RowTo(row, r)
		f.Values = append(f.Values, row...)
	}

	h.mu.Lock()
	h.last = f
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.send(f, h.writeTimeout); err != nil {
			h.logger.Printf("dropping client %s: %v", c.conn.RemoteAddr(), err)
			h.drop(c.conn)
			c.conn.Close()
		}
	}
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
