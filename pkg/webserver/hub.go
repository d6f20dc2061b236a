package webserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"f1pitwall/pkg/ingest"
	"f1pitwall/pkg/log"
	"f1pitwall/pkg/pubsub"
)

var upgrader = websocket.Upgrader{
	// viewers may be served from a different origin than the socket
	CheckOrigin: func(*http.Request) bool { return true },
}

const (
	writeWait        = 5 * time.Second
	viewerSendBuffer = 8
)

// Hub fans the snapshot stream out to every connected viewer. Each viewer
// gets its own buffered send queue; one that stops reading loses frames
// and eventually its connection, never slowing the others down.
type Hub struct {
	ps *pubsub.PubSub[string]

	mu      sync.Mutex
	viewers map[*viewer]struct{}
	last    string
}

type viewer struct {
	conn *websocket.Conn
	send chan string
}

func NewHub(ps *pubsub.PubSub[string]) *Hub {
	return &Hub{
		ps:      ps,
		viewers: make(map[*viewer]struct{}),
	}
}

// Run forwards published snapshots to the viewers until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	sub := h.ps.Subscribe(ingest.Topic)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case payload := <-sub:
			h.broadcast(payload)
		}
	}
}

func (h *Hub) broadcast(payload string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = payload
	for v := range h.viewers {
		select {
		case v.send <- payload:
		default:
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for v := range h.viewers {
		close(v.send)
		delete(h.viewers, v)
	}
}

// HandleViewer upgrades the request and streams snapshots. The latest
// snapshot is sent immediately so a new viewer never waits for the next
// packet to render a full picture.
func (h *Hub) HandleViewer(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	v := &viewer{conn: conn, send: make(chan string, viewerSendBuffer)}

	h.mu.Lock()
	h.viewers[v] = struct{}{}
	if h.last != "" {
		v.send <- h.last
	}
	h.mu.Unlock()
	log.L().Info("viewer connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(v)
	go h.readLoop(v)
}

func (h *Hub) writeLoop(v *viewer) {
	defer v.conn.Close()
	for payload := range v.send {
		v.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := v.conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
			h.drop(v)
			return
		}
	}
}

// readLoop exists only to notice the peer going away; viewers never send
// anything meaningful upstream.
func (h *Hub) readLoop(v *viewer) {
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			h.drop(v)
			return
		}
	}
}

func (h *Hub) drop(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.viewers[v]; ok {
		delete(h.viewers, v)
		close(v.send)
		log.L().Info("viewer disconnected", zap.String("remote", v.conn.RemoteAddr().String()))
	}
}
