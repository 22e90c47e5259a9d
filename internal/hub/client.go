package hub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/gunagantinikhil/code-cast1/internal/dto"
	"github.com/gunagantinikhil/code-cast1/internal/service"
)

// Client is one websocket connection.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	id      string
	send    chan []byte
	limiter *rate.Limiter
	ctx     context.Context
	cancel  context.CancelFunc
}

func newClient(h *Hub, conn *websocket.Conn, id string) *Client {
	limit := rate.Inf
	if h.cfg.EventsPerSecond > 0 {
		limit = rate.Limit(h.cfg.EventsPerSecond)
	}
	burst := h.cfg.EventBurst
	if burst <= 0 {
		burst = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		hub:     h,
		conn:    conn,
		id:      id,
		send:    make(chan []byte, h.cfg.SendBuffer),
		limiter: rate.NewLimiter(limit, burst),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// ID returns the connection id, which is also the socketId seen by peers.
func (c *Client) ID() string { return c.id }

// Run starts the read and write goroutines.
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

// ReadPump reads frames and hands each decoded event to the hub's handler, in order.
// When the connection ends it reports the disconnect and unregisters the client.
func (c *Client) ReadPump() {
	logCtx := logrus.WithField("conn_id", c.id)
	defer func() {
		c.cancel()
		c.hub.handler.Disconnect(c.id)
		c.hub.queueUnregister(c)
		c.conn.Close()
		logCtx.Info("readPump exited, unregistered client")
	}()

	if c.hub.cfg.MaxMessageBytes > 0 {
		c.conn.SetReadLimit(c.hub.cfg.MaxMessageBytes)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.Debug("WebSocket connection closed normally or read error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			logCtx.Debugf("Received non-text message type: %d", messageType)
			continue
		}

		if err := c.limiter.Wait(c.ctx); err != nil {
			return
		}

		var env dto.Envelope
		if err := json.Unmarshal(message, &env); err != nil || env.Event == "" {
			inboundEvents.WithLabelValues("malformed").Inc()
			logCtx.Debugf("Dropping malformed frame (size: %d)", len(message))
			continue
		}
		if err := c.hub.handler.HandleEvent(c.ctx, c.id, env); err != nil {
			inboundEvents.WithLabelValues("rejected").Inc()
			entry := logCtx.WithError(err).WithField("event", env.Event)
			if service.IsProtocolError(err) {
				entry.Debug("Event dropped")
			} else {
				entry.Warn("Event rejected")
			}
			continue
		}
		inboundEvents.WithLabelValues("ok").Inc()
	}
}

// WritePump writes queued frames to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	logCtx := logrus.WithField("conn_id", c.id)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		logCtx.Debug("writePump exited")
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logCtx.WithError(err).Warn("Failed to write message to websocket")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logCtx.WithError(err).Warn("Failed to send ping message")
				return
			}
		}
	}
}

// CloseConn closes the underlying connection, which ends both pumps.
func (c *Client) CloseConn() { c.conn.Close() }
