package app

import (
	"context"
	"sync"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type set[K comparable] map[K]struct{}

type sessionEntry struct {
	Session core.Session
	Rooms   set[domain.RoomID]
	Cancel  context.CancelFunc
}

// Registry tracks live connections: which connections a user currently has,
// and which connections are subscribed to each room's broadcast channel.
// It is process-local and never persisted.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.ConnID]*sessionEntry
	users    map[domain.UserID]set[core.ConnID]
	rooms    map[domain.RoomID]set[core.ConnID]
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.ConnID]*sessionEntry),
		users:    make(map[domain.UserID]set[core.ConnID]),
		rooms:    make(map[domain.RoomID]set[core.ConnID]),
	}
}

// Track adds the connection to its user's live set. Tracking the same
// connection again refreshes its transport and keeps its subscriptions.
func (r *Registry) Track(sess core.Session, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sess.ID]; ok {
		e.Session.Signal = sess.Signal
		if cancel != nil {
			e.Cancel = cancel
		}
		return
	}
	r.sessions[sess.ID] = &sessionEntry{Session: sess, Rooms: make(set[domain.RoomID]), Cancel: cancel}
	conns, ok := r.users[sess.User.ID]
	if !ok {
		conns = make(set[core.ConnID])
		r.users[sess.User.ID] = conns
	}
	conns[sess.ID] = struct{}{}
	log.Info().Str("module", "app.registry").Str("conn", string(sess.ID)).Str("user", string(sess.User.ID)).Int("user_conns", len(conns)).Msg("tracked connection")
}

// Untrack forgets the connection and all of its subscriptions. It returns
// the rooms the connection was subscribed to; calling it twice is harmless.
func (r *Registry) Untrack(id core.ConnID) (core.Session, []domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return core.Session{}, nil, false
	}
	delete(r.sessions, id)
	rooms := lo.Keys(e.Rooms)
	for _, roomID := range rooms {
		r.removeSubscriber(roomID, id)
	}
	uid := e.Session.User.ID
	if conns, ok := r.users[uid]; ok {
		delete(conns, id)
		if len(conns) == 0 {
			delete(r.users, uid)
			log.Info().Str("module", "app.registry").Str("user", string(uid)).Msg("user offline")
		}
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("untracked connection")
	return e.Session, rooms, true
}

// ConnectionsOf returns the live connections of user; empty when offline.
func (r *Registry) ConnectionsOf(user domain.UserID) []core.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.users[user])
}

func (r *Registry) IsOnline(user domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[user]) > 0
}

func (r *Registry) GetSession(id core.ConnID) (core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[id]; ok {
		return e.Session, true
	}
	return core.Session{}, false
}

// Subscribe attaches a tracked connection to the room channel.
func (r *Registry) Subscribe(roomID domain.RoomID, id core.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return false
	}
	e.Rooms[roomID] = struct{}{}
	subs, ok := r.rooms[roomID]
	if !ok {
		subs = make(set[core.ConnID])
		r.rooms[roomID] = subs
	}
	subs[id] = struct{}{}
	return true
}

func (r *Registry) Unsubscribe(roomID domain.RoomID, id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		delete(e.Rooms, roomID)
	}
	r.removeSubscriber(roomID, id)
}

// UnsubscribeUser detaches every connection of user from the room channel.
func (r *Registry) UnsubscribeUser(roomID domain.RoomID, user domain.UserID) []core.ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []core.ConnID
	for id := range r.users[user] {
		e := r.sessions[id]
		if _, ok := e.Rooms[roomID]; !ok {
			continue
		}
		delete(e.Rooms, roomID)
		r.removeSubscriber(roomID, id)
		out = append(out, id)
	}
	return out
}

// removeSubscriber expects r.mu to be held.
func (r *Registry) removeSubscriber(roomID domain.RoomID, id core.ConnID) {
	subs, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(r.rooms, roomID)
	}
}

func (r *Registry) SubscribersOf(roomID domain.RoomID) []core.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.rooms[roomID])
}

// RoomsOf lists the room channels a connection listens on.
func (r *Registry) RoomsOf(id core.ConnID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[id]; ok {
		return lo.Keys(e.Rooms)
	}
	return nil
}

func (r *Registry) IsSubscribed(roomID domain.RoomID, id core.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID][id]
	return ok
}

// Signal resolves the transport of a connection for delivery.
func (r *Registry) Signal(id core.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[id]; ok && e.Session.Signal != nil {
		return e.Session.Signal, true
	}
	return nil, false
}

// Cancel stops the connection's pumps; cleanup happens through Untrack.
func (r *Registry) Cancel(id core.ConnID) bool {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled session")
	return true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
