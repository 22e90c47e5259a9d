// Package hub owns the websocket connections: it registers them, writes frames to them and
// feeds their inbound events to an EventHandler.
package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gunagantinikhil/code-cast1/internal/dto"
)

// Package-level websocket timings.
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	defaultSendBuffer = 256
)

// EventHandler consumes the events read from connections. HandleEvent is called from the
// connection's read goroutine, so events of one connection are handled in the order they
// arrived. Disconnect is called exactly once when the connection goes away.
type EventHandler interface {
	HandleEvent(ctx context.Context, connID string, env dto.Envelope) error
	Disconnect(connID string)
}

// Config tunes per-connection limits.
type Config struct {
	MaxMessageBytes int64
	EventsPerSecond float64
	EventBurst      int
	SendBuffer      int
}

// HubMessage is a request to the hub's run loop.
type HubMessage struct {
	Type   string // "unregister"
	Client *Client
}

// Hub keeps the live connections keyed by connection id.
type Hub struct {
	messageChan chan HubMessage

	clients   map[string]*Client
	clientsMu sync.RWMutex

	handler EventHandler
	cfg     Config
	done    chan struct{}
}

// NewHub creates a Hub that routes inbound events to handler.
func NewHub(handler EventHandler, cfg Config) *Hub {
	if handler == nil {
		panic("EventHandler cannot be nil for Hub")
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		clients:     make(map[string]*Client),
		handler:     handler,
		cfg:         cfg,
		done:        make(chan struct{}),
	}
}

// Run processes unregister requests until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")
	defer close(h.done)

	for {
		select {
		case msg := <-h.messageChan:
			switch msg.Type {
			case "unregister":
				h.unregisterClient(msg.Client)
			default:
				log.Warnf("Hub: Received unknown message type: %s", msg.Type)
			}
		case <-ctx.Done():
			log.Info("Hub is shutting down...")
			h.closeAll()
			return
		}
	}
}

// Serve takes ownership of an upgraded connection: it assigns the connection id, registers
// it, greets the peer with a "connected" frame and starts its pumps.
func (h *Hub) Serve(conn *websocket.Conn) *Client {
	client := newClient(h, conn, uuid.NewString())
	h.register(client)

	frame, err := json.Marshal(dto.OutgoingEnvelope{
		Event: dto.EventConnected,
		Data:  dto.ConnectedPayload{SocketID: client.id},
	})
	if err == nil {
		client.send <- frame
	}
	client.Run()
	return client
}

// Deliver queues a frame for a connection without blocking. It reports false when the
// connection is unknown or its queue is full.
func (h *Hub) Deliver(connID string, frame []byte) bool {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	client, ok := h.clients[connID]
	if !ok {
		return false
	}
	select {
	case client.send <- frame:
		return true
	default:
		framesDropped.Inc()
		logrus.WithField("conn_id", connID).Warn("Client send channel full, frame dropped")
		return false
	}
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.id] = client
	n := len(h.clients)
	h.clientsMu.Unlock()
	connectionsActive.Set(float64(n))
	logrus.WithField("conn_id", client.id).Info("Client registered to Hub")
}

// queueUnregister hands the client to the run loop, or unregisters inline once the loop
// has stopped.
func (h *Hub) queueUnregister(client *Client) {
	select {
	case h.messageChan <- HubMessage{Type: "unregister", Client: client}:
	case <-h.done:
		h.unregisterClient(client)
	case <-time.After(time.Second):
		logrus.WithField("conn_id", client.id).Warn("Timeout sending unregister message to Hub channel")
		h.unregisterClient(client)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		return
	}
	h.clientsMu.Lock()
	current, ok := h.clients[client.id]
	if ok && current == client {
		delete(h.clients, client.id)
		close(client.send)
	}
	n := len(h.clients)
	h.clientsMu.Unlock()

	if ok {
		connectionsActive.Set(float64(n))
		logrus.WithField("conn_id", client.id).Info("Client unregistered from Hub")
	}
}

func (h *Hub) closeAll() {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()
	for _, c := range clients {
		c.CloseConn()
	}
}
