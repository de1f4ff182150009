package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ErenVance/DoomsdayArk/internal/auth"
	"github.com/ErenVance/DoomsdayArk/internal/events"
)

// WSMessage is the envelope for all WebSocket communication.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client is one connected wallet.
type Client struct {
	Wallet string
	conn   *websocket.Conn
	send   chan WSMessage
}

// Hub fans engine events out to connected clients. Every committed
// operation is broadcast; clients filter on their own wallet.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	secret  string
	logger  *slog.Logger
}

func NewHub(secret string, logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		secret:  secret,
		logger:  logger,
	}
}

// Sink adapts the hub to the engine's event sink interface.
func (h *Hub) Sink() events.Sink {
	return events.SinkFunc(func(ev events.TransferEvent) {
		payload, err := json.Marshal(ev)
		if err != nil {
			h.logger.Error("marshal event", "err", err)
			return
		}
		h.Broadcast(WSMessage{Type: "event", Payload: payload})
	})
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	wallet, err := auth.Verify(token, h.secret, time.Now())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("ws accept", "err", err)
		return
	}

	client := &Client{
		Wallet: wallet,
		conn:   conn,
		send:   make(chan WSMessage, 64),
	}

	h.register(client)
	defer h.unregister(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.writePump(ctx, client)
	h.readPump(ctx, client)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.clients[c.Wallet]; ok {
		close(prev.send)
		prev.conn.Close(websocket.StatusPolicyViolation, "superseded")
	}
	h.clients[c.Wallet] = c
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.Wallet]; ok && cur == c {
		delete(h.clients, c.Wallet)
		close(c.send)
	}
}

// Broadcast sends a message to every connected client.
func (h *Hub) Broadcast(msg WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("client send buffer full", "wallet", c.Wallet)
		}
	}
}

// SendTo sends a message to one wallet if it is connected.
func (h *Hub) SendTo(wallet string, msg WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[wallet]
	if !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// Connected reports the number of open connections.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) readPump(ctx context.Context, c *Client) {
	defer func() {
		if err := c.conn.CloseNow(); err != nil {
			h.logger.Error("close conn", "err", err)
		}
	}()
	// Inbound traffic is drained; the stream is one-way.
	for {
		var msg WSMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(ctx context.Context, c *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := wsjson.Write(ctx, c.conn, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
