package service

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/gunagantinikhil/code-cast1/internal/domain"
	"github.com/gunagantinikhil/code-cast1/internal/dto"
)

// Transport hands an encoded frame to one connection. It must not block: a full or
// vanished peer is reported by returning false and the frame is dropped.
type Transport interface {
	Deliver(connID string, frame []byte) bool
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(connID string, frame []byte) bool

func (f TransportFunc) Deliver(connID string, frame []byte) bool { return f(connID, frame) }

// Dispatcher routes outbound events to one connection, to a room except the sender, or to
// a whole room. Delivery is fire-and-forget.
type Dispatcher struct {
	transport Transport
}

// NewDispatcher creates a Dispatcher on top of transport.
func NewDispatcher(transport Transport) *Dispatcher {
	if transport == nil {
		panic("Transport cannot be nil for Dispatcher")
	}
	return &Dispatcher{transport: transport}
}

// ToConn sends an event to a single connection.
func (d *Dispatcher) ToConn(connID, event string, payload interface{}) {
	frame, ok := encodeFrame(event, payload)
	if !ok {
		return
	}
	d.deliver(connID, event, frame)
}

// ToRoomExcept sends an event to every member except the one with id except.
func (d *Dispatcher) ToRoomExcept(members []domain.Member, except, event string, payload interface{}) {
	frame, ok := encodeFrame(event, payload)
	if !ok {
		return
	}
	for _, m := range members {
		if m.SocketID == except {
			continue
		}
		d.deliver(m.SocketID, event, frame)
	}
}

// ToRoom sends an event to every member, sender included.
func (d *Dispatcher) ToRoom(members []domain.Member, event string, payload interface{}) {
	d.ToRoomExcept(members, "", event, payload)
}

func (d *Dispatcher) deliver(connID, event string, frame []byte) {
	if d.transport.Deliver(connID, frame) {
		eventsSent.WithLabelValues(event).Inc()
		return
	}
	eventsDropped.WithLabelValues(event).Inc()
	logrus.WithFields(logrus.Fields{"conn_id": connID, "event": event}).Debug("Frame not delivered, peer gone or too slow")
}

func encodeFrame(event string, payload interface{}) ([]byte, bool) {
	frame, err := json.Marshal(dto.OutgoingEnvelope{Event: event, Data: payload})
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Failed to marshal outbound event")
		return nil, false
	}
	return frame, true
}
