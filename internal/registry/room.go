package registry

import (
	"sync"

	"github.com/gunagantinikhil/code-cast1/internal/diff"
	"github.com/gunagantinikhil/code-cast1/internal/domain"
)

// Room is one collaboration session. It owns the document snapshot, the authorship ledger,
// the member list and the recent activity, and serializes every access to them behind a
// single mutex: an edit reads the snapshot left by the previous edit, so two edits of the
// same room must never run at the same time.
//
// Rooms are obtained locked from Registry.Acquire or Registry.Lookup and handed back with
// Registry.Release. Every method except ID requires the lock to be held.
type Room struct {
	mu sync.Mutex

	id       string
	members  map[string]string // conn id -> username
	order    []string          // conn ids in join order
	snapshot string
	lines    []string
	ledger   domain.Ledger
	activity *domain.ActivityLog
	closed   bool
}

func newRoom(id string, historyLimit int) *Room {
	return &Room{
		id:       id,
		members:  make(map[string]string),
		lines:    diff.SplitLines(""),
		ledger:   make(domain.Ledger),
		activity: domain.NewActivityLog(historyLimit),
	}
}

// ID returns the room id. It does not need the lock.
func (r *Room) ID() string { return r.id }

// Snapshot returns the last committed document text.
func (r *Room) Snapshot() string { return r.snapshot }

// Lines returns the line view of the snapshot. Callers must not modify it.
func (r *Room) Lines() []string { return r.lines }

// Ledger returns the live ledger. Callers must treat it as read-only and replace it
// through SetLedger or Commit.
func (r *Room) Ledger() domain.Ledger { return r.ledger }

// SetLedger replaces the ledger without touching the snapshot. It is used for the
// client-asserted merge stage that precedes the rebase of the same edit.
func (r *Room) SetLedger(l domain.Ledger) {
	if l == nil {
		l = make(domain.Ledger)
	}
	r.ledger = l
}

// Commit stores a new snapshot together with the ledger aligned to it.
func (r *Room) Commit(text string, l domain.Ledger) {
	r.snapshot = text
	r.lines = diff.SplitLines(text)
	r.SetLedger(l)
}

// Members returns the current members in join order.
func (r *Room) Members() []domain.Member {
	out := make([]domain.Member, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, domain.Member{SocketID: id, Username: r.members[id]})
	}
	return out
}

// Username returns the display name of a member connection.
func (r *Room) Username(connID string) (string, bool) {
	name, ok := r.members[connID]
	return name, ok
}

// Len returns the number of members.
func (r *Room) Len() int { return len(r.order) }

// RecordActivity appends ev to the bounded activity history.
func (r *Room) RecordActivity(ev domain.ActivityEvent) { r.activity.Append(ev) }

// Activity returns the retained activity history, oldest first.
func (r *Room) Activity() []domain.ActivityEvent { return r.activity.Recent() }

// View returns a copy of the room state that is safe to use after the lock is released.
func (r *Room) View() domain.RoomView {
	return domain.RoomView{
		RoomID:     r.id,
		Members:    r.Members(),
		LineCount:  len(r.lines),
		Authorship: r.ledger.Clone(),
		Activity:   r.Activity(),
	}
}

func (r *Room) addMember(connID, username string) {
	if _, ok := r.members[connID]; ok {
		return
	}
	r.members[connID] = username
	r.order = append(r.order, connID)
}

func (r *Room) removeMember(connID string) (string, bool) {
	name, ok := r.members[connID]
	if !ok {
		return "", false
	}
	delete(r.members, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return name, true
}
