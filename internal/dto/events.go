package dto

import (
	"encoding/json"

	"github.com/gunagantinikhil/code-cast1/internal/domain"
)

// Event names on the wire. They are shared with existing clients and must not be renamed;
// the edit event really is spelled "conde-change".
const (
	EventConnected       = "connected"
	EventJoin            = "join"
	EventJoined          = "joined"
	EventDisconnected    = "disconnected"
	EventCodeChange      = "conde-change"
	EventCodeChangeAlias = "code-change"
	EventSyncCode        = "sync-code"
	EventLeave           = "leave"
	EventUserActivity    = "user-activity"
	EventCodeAuthorship  = "code-authorship"
	EventSyncAuthorship  = "sync-authorship"
)

// Envelope is one websocket text frame: an event name and its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutgoingEnvelope is the frame written to clients.
type OutgoingEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// --- inbound ---

// JoinRequest puts a connection into a room under a display name.
type JoinRequest struct {
	RoomID   string `json:"roomId" validate:"required"`
	Username string `json:"username" validate:"required"`
}

// CodeChangeRequest is an edit. Code is the sender's full document. Username and Timestamp
// are both needed for the edit to be attributed; Authorship is the optional client-asserted
// ledger fragment, kept raw so a malformed fragment does not reject the whole edit.
type CodeChangeRequest struct {
	RoomID     string          `json:"roomId" validate:"required"`
	Code       *string         `json:"code" validate:"required"`
	Username   string          `json:"username,omitempty"`
	Timestamp  string          `json:"timestamp,omitempty"`
	Authorship json.RawMessage `json:"authorship,omitempty"`
}

// Attributed reports whether the edit should be diffed and credited to a user.
func (r CodeChangeRequest) Attributed() bool {
	return r.Username != "" && r.Timestamp != ""
}

// SyncCodeRequest hydrates one connection with the sender's document.
type SyncCodeRequest struct {
	SocketID string  `json:"socketId" validate:"required"`
	Code     *string `json:"code" validate:"required"`
}

// SyncAuthorshipRequest asks for a room's ledger to be sent to one connection.
type SyncAuthorshipRequest struct {
	SocketID string `json:"socketId" validate:"required"`
	RoomID   string `json:"roomId" validate:"required"`
}

// --- outbound ---

type ConnectedPayload struct {
	SocketID string `json:"socketId"`
}

type JoinedPayload struct {
	Clients  []domain.Member `json:"clients"`
	Username string          `json:"username"`
	SocketID string          `json:"socketId"`
}

type CodePayload struct {
	Code string `json:"code"`
}

type AuthorshipPayload struct {
	Authorship domain.Ledger `json:"authorship"`
}

type DisconnectedPayload struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
}
