package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/gunagantinikhil/code-cast1/internal/diff"
	"github.com/gunagantinikhil/code-cast1/internal/domain"
	"github.com/gunagantinikhil/code-cast1/internal/dto"
	"github.com/gunagantinikhil/code-cast1/internal/registry"
)

// SyncService runs the room protocol: membership, edit propagation, authorship and
// activity. Every step that touches a room runs with that room locked, so edits of one
// room are applied strictly one after another while different rooms proceed in parallel.
type SyncService struct {
	rooms    *registry.Registry
	dispatch *Dispatcher
	validate *validator.Validate
}

// NewSyncService creates a SyncService.
func NewSyncService(rooms *registry.Registry, dispatch *Dispatcher) *SyncService {
	if rooms == nil || dispatch == nil {
		panic("Registry and Dispatcher must be non-nil for SyncService")
	}
	return &SyncService{
		rooms:    rooms,
		dispatch: dispatch,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HandleEvent decodes one inbound frame and routes it. Protocol errors are returned to the
// caller, which drops them; no room state is changed when an error is returned.
func (s *SyncService) HandleEvent(ctx context.Context, connID string, env dto.Envelope) error {
	switch env.Event {
	case dto.EventJoin:
		var req dto.JoinRequest
		if err := s.decode(env.Data, &req); err != nil {
			return err
		}
		return s.Join(ctx, connID, req)
	case dto.EventCodeChange, dto.EventCodeChangeAlias:
		var req dto.CodeChangeRequest
		if err := s.decode(env.Data, &req); err != nil {
			return err
		}
		return s.CodeChange(ctx, connID, req)
	case dto.EventSyncCode:
		var req dto.SyncCodeRequest
		if err := s.decode(env.Data, &req); err != nil {
			return err
		}
		return s.SyncCode(ctx, connID, req)
	case dto.EventSyncAuthorship:
		var req dto.SyncAuthorshipRequest
		if err := s.decode(env.Data, &req); err != nil {
			return err
		}
		return s.SyncAuthorship(ctx, connID, req)
	case dto.EventLeave:
		s.Disconnect(connID)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

func (s *SyncService) decode(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing data", ErrInvalidEvent)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := s.validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return nil
}

// Join adds the connection to a room and tells every member, the joiner included, who is
// now present. Repeating a join for the room the connection is already in does nothing.
func (s *SyncService) Join(ctx context.Context, connID string, req dto.JoinRequest) error {
	logCtx := logrus.WithFields(logrus.Fields{"conn_id": connID, "room_id": req.RoomID, "username": req.Username})

	room := s.rooms.Acquire(req.RoomID)
	defer s.rooms.Release(room)

	added, err := s.rooms.Attach(room, connID, req.Username)
	if err != nil {
		logCtx.WithError(err).Warn("Join rejected")
		return err
	}
	if !added {
		logCtx.Debug("Connection already in room, join ignored")
		return nil
	}

	members := room.Members()
	s.dispatch.ToRoom(members, dto.EventJoined, dto.JoinedPayload{
		Clients:  members,
		Username: req.Username,
		SocketID: connID,
	})
	logCtx.WithField("members", len(members)).Info("User joined room")
	return nil
}

// CodeChange applies one edit to its room. The previous snapshot is aligned with the new
// document first; then, in order:
//  1. a client-asserted ledger fragment is merged and the merged ledger sent to the others;
//  2. the code is relayed to the others as is;
//  3. an attributed edit (username and timestamp) is credited to its author;
//  4. the narrated activity, if any, goes to every member and into the room history;
//  5. the previous ledger is rebased onto the new document, the asserted entries are laid
//     over it, and the result is sent to the others if it changed;
//  6. the new document becomes the room snapshot.
//
// Fragment keys index the new document, so merging resolves original authors through the
// alignment rather than by raw index.
func (s *SyncService) CodeChange(ctx context.Context, connID string, req dto.CodeChangeRequest) error {
	logCtx := logrus.WithFields(logrus.Fields{"conn_id": connID, "room_id": req.RoomID})

	room, ok := s.rooms.Lookup(req.RoomID)
	if !ok {
		logCtx.Debug("Edit for unknown room dropped")
		return nil
	}
	defer s.rooms.Release(room)

	if _, member := room.Username(connID); !member {
		return ErrRoomMismatch
	}

	code := *req.Code
	members := room.Members()
	prevLines := room.Lines()
	newLines := diff.SplitLines(code)
	prior := room.Ledger()

	start := time.Now()
	matches := diff.Align(prevLines, newLines)
	alignDuration.Observe(time.Since(start).Seconds())
	changes := diff.Classify(prevLines, newLines, matches)

	// 1. merge
	ledger := prior
	var asserted domain.Ledger
	if frag, err := domain.ParseFragment(req.Authorship); err != nil {
		logCtx.WithError(err).Warn("Malformed authorship fragment ignored")
	} else if len(frag) > 0 {
		var skipped []string
		asserted, skipped = prior.Merge(frag, newLines, matches, changes.Modified)
		if len(skipped) > 0 {
			ledgerEntriesSkipped.Add(float64(len(skipped)))
			logCtx.WithField("keys", skipped).Warn("Skipped authorship entries outside the document")
		}
		ledger = prior.Rebase(matches, nil, nil, newLines, "", "").Overlay(asserted)
		room.SetLedger(ledger)
		s.dispatch.ToRoomExcept(members, connID, dto.EventCodeAuthorship, dto.AuthorshipPayload{Authorship: ledger})
	}

	// 2. relay
	s.dispatch.ToRoomExcept(members, connID, dto.EventCodeChange, dto.CodePayload{Code: code})

	var rebased domain.Ledger
	if req.Attributed() {
		editsProcessed.WithLabelValues("attributed").Inc()

		// 3, 4. credit and narrate
		if ev := Narrate(changes, prevLines, prior, req.Username, req.Timestamp); ev != nil {
			activitiesEmitted.WithLabelValues(activityKind(ev.Action)).Inc()
			room.RecordActivity(*ev)
			s.dispatch.ToRoom(members, dto.EventUserActivity, ev)
			logCtx.WithFields(logrus.Fields{
				"username": req.Username,
				"deleted":  len(changes.Deleted),
				"modified": len(changes.Modified),
				"added":    len(changes.Added),
			}).Debug(ev.Action)
		}

		// 5. rebase
		rebased = prior.Rebase(matches, changes.Added, changes.Modified, newLines, req.Username, req.Timestamp)
	} else {
		editsProcessed.WithLabelValues("silent").Inc()
		// Nobody is credited, but the ledger still has to follow the snapshot it describes:
		// matched lines move with the text and entries of lines changed silently are dropped.
		rebased = prior.Rebase(matches, nil, nil, newLines, "", "")
	}
	rebased = rebased.Overlay(asserted)
	if !rebased.Equal(ledger) {
		s.dispatch.ToRoomExcept(members, connID, dto.EventCodeAuthorship, dto.AuthorshipPayload{Authorship: rebased})
	}

	// 6. commit
	room.Commit(code, rebased)
	return nil
}

func activityKind(action string) string {
	switch {
	case strings.HasPrefix(action, "deleted"):
		return "deleted"
	case strings.HasPrefix(action, "modified"):
		return "modified"
	default:
		return "entered"
	}
}

// SyncCode sends the sender's document to one connection of the same room. It is how an
// existing member hydrates a newcomer.
func (s *SyncService) SyncCode(ctx context.Context, connID string, req dto.SyncCodeRequest) error {
	roomID, ok := s.rooms.RoomOf(connID)
	if !ok {
		return ErrUnknownConnection
	}
	target, ok := s.rooms.RoomOf(req.SocketID)
	if !ok {
		return ErrUnknownConnection
	}
	if target != roomID {
		return ErrRoomMismatch
	}
	s.dispatch.ToConn(req.SocketID, dto.EventCodeChange, dto.CodePayload{Code: *req.Code})
	return nil
}

// SyncAuthorship sends a room's full ledger to one connection. A room with no ledger yields
// an empty one.
func (s *SyncService) SyncAuthorship(ctx context.Context, connID string, req dto.SyncAuthorshipRequest) error {
	ledger := domain.Ledger{}
	if room, ok := s.rooms.Lookup(req.RoomID); ok {
		ledger = room.Ledger().Clone()
		s.rooms.Release(room)
	}
	s.dispatch.ToConn(req.SocketID, dto.EventCodeAuthorship, dto.AuthorshipPayload{Authorship: ledger})
	return nil
}

// Disconnect removes the connection from its room and tells the remaining members. The
// room is reclaimed once the notice is out if nobody is left. Unknown connections are
// ignored.
func (s *SyncService) Disconnect(connID string) {
	roomID, ok := s.rooms.RoomOf(connID)
	if !ok {
		return
	}
	room, ok := s.rooms.Lookup(roomID)
	if !ok {
		// Room reclaimed concurrently; only the connection mapping is left to drop.
		s.rooms.Leave(connID)
		return
	}
	defer s.rooms.Release(room)

	username, ok := s.rooms.Detach(room, connID)
	if !ok {
		return
	}
	s.dispatch.ToRoom(room.Members(), dto.EventDisconnected, dto.DisconnectedPayload{
		SocketID: connID,
		Username: username,
	})
	logrus.WithFields(logrus.Fields{"conn_id": connID, "room_id": roomID, "username": username}).Info("User left room")
}

// ListRooms summarises every live room, ordered by id.
func (s *SyncService) ListRooms() []domain.RoomSummary {
	ids := s.rooms.ActiveRoomIDs()
	out := make([]domain.RoomSummary, 0, len(ids))
	for _, id := range ids {
		members := s.rooms.MembersOf(id)
		if len(members) == 0 {
			// reclaimed since the ids were read
			continue
		}
		out = append(out, domain.RoomSummary{RoomID: id, Members: members})
	}
	return out
}

// RoomView returns a read-only copy of a room's state.
func (s *SyncService) RoomView(roomID string) domain.RoomView {
	return s.rooms.View(roomID)
}
