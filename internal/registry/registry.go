// Package registry tracks which connection is in which room and owns the rooms themselves.
//
// Lock order: a room lock may be held while taking the registry lock, never the reverse.
package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gunagantinikhil/code-cast1/internal/domain"
)

// ErrAlreadyInRoom is returned when a connection tries to join a second room.
var ErrAlreadyInRoom = errors.New("connection already belongs to another room")

// Registry maps connections to rooms and creates and reclaims rooms on demand.
// A room exists while it has at least one member.
type Registry struct {
	mu           sync.Mutex
	rooms        map[string]*Room
	conns        map[string]string // conn id -> room id
	historyLimit int
}

// New creates an empty registry. historyLimit bounds each room's activity history.
func New(historyLimit int) *Registry {
	return &Registry{
		rooms:        make(map[string]*Room),
		conns:        make(map[string]string),
		historyLimit: historyLimit,
	}
}

// Acquire returns the room with its lock held, creating it if it does not exist.
func (g *Registry) Acquire(roomID string) *Room {
	for {
		g.mu.Lock()
		room, ok := g.rooms[roomID]
		if !ok {
			room = newRoom(roomID, g.historyLimit)
			g.rooms[roomID] = room
			roomsActive.Set(float64(len(g.rooms)))
			logrus.WithField("room_id", roomID).Info("Room created")
		}
		g.mu.Unlock()

		room.mu.Lock()
		if !room.closed {
			return room
		}
		// Lost a race with the last member leaving; the room is being reclaimed.
		room.mu.Unlock()
		g.forget(room)
	}
}

// Lookup returns the room with its lock held, or false if no live room has that id.
func (g *Registry) Lookup(roomID string) (*Room, bool) {
	g.mu.Lock()
	room, ok := g.rooms[roomID]
	g.mu.Unlock()
	if !ok {
		return nil, false
	}
	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, false
	}
	return room, true
}

// Release unlocks a room obtained from Acquire or Lookup. A room left without members is
// closed and removed, so the next join under the same id starts from empty state.
func (g *Registry) Release(room *Room) {
	empty := room.Len() == 0
	if empty {
		room.closed = true
	}
	room.mu.Unlock()
	if empty {
		g.forget(room)
	}
}

func (g *Registry) forget(room *Room) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rooms[room.id] == room {
		delete(g.rooms, room.id)
		roomsActive.Set(float64(len(g.rooms)))
		logrus.WithField("room_id", room.id).Info("Room empty, reclaimed")
	}
}

// Attach adds a connection to a locked room. Joining the room it is already in is a no-op
// and reports false; joining while in another room fails with ErrAlreadyInRoom.
func (g *Registry) Attach(room *Room, connID, username string) (bool, error) {
	g.mu.Lock()
	if current, ok := g.conns[connID]; ok {
		g.mu.Unlock()
		if current == room.id {
			return false, nil
		}
		return false, ErrAlreadyInRoom
	}
	g.conns[connID] = room.id
	g.mu.Unlock()

	room.addMember(connID, username)
	return true, nil
}

// Detach removes a connection from a locked room and returns its username.
func (g *Registry) Detach(room *Room, connID string) (string, bool) {
	g.mu.Lock()
	if g.conns[connID] == room.id {
		delete(g.conns, connID)
	}
	g.mu.Unlock()
	return room.removeMember(connID)
}

// RoomOf returns the room a connection is in.
func (g *Registry) RoomOf(connID string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	roomID, ok := g.conns[connID]
	return roomID, ok
}

// Leave removes a connection from its room. Unknown connections are ignored.
func (g *Registry) Leave(connID string) (roomID, username string, ok bool) {
	roomID, ok = g.RoomOf(connID)
	if !ok {
		return "", "", false
	}
	room, ok := g.Lookup(roomID)
	if !ok {
		g.mu.Lock()
		delete(g.conns, connID)
		g.mu.Unlock()
		return "", "", false
	}
	defer g.Release(room)
	username, ok = g.Detach(room, connID)
	return roomID, username, ok
}

// MembersOf lists the members of a room; an unknown room has none.
func (g *Registry) MembersOf(roomID string) []domain.Member {
	room, ok := g.Lookup(roomID)
	if !ok {
		return []domain.Member{}
	}
	defer g.Release(room)
	return room.Members()
}

// View returns a copy of a room's state; an unknown room yields an empty view.
func (g *Registry) View(roomID string) domain.RoomView {
	room, ok := g.Lookup(roomID)
	if !ok {
		return domain.RoomView{
			RoomID:     roomID,
			Members:    []domain.Member{},
			LineCount:  1,
			Authorship: domain.Ledger{},
			Activity:   []domain.ActivityEvent{},
		}
	}
	defer g.Release(room)
	return room.View()
}

// ActiveRoomIDs lists the ids of live rooms in sorted order.
func (g *Registry) ActiveRoomIDs() []string {
	g.mu.Lock()
	ids := make([]string, 0, len(g.rooms))
	for id := range g.rooms {
		ids = append(ids, id)
	}
	g.mu.Unlock()
	sort.Strings(ids)
	return ids
}
