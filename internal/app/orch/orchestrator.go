// Package orch coordinates real-time room operations. Every mutation of a
// room runs on that room's worker, so state changes and the events they
// produce are observed in the same order.
package orch

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

type Limits struct {
	MaxMessageLen int
	HistoryLimit  int
}

type Orchestrator struct {
	Registry   *app.Registry
	Rooms      *core.RoomManager
	Dispatcher *app.Dispatcher
	Store      core.RoomStore
	Messages   core.MessageStore
	Users      core.UserDirectory
	Limits     Limits

	now func() time.Time
}

func New(
	reg *app.Registry,
	rooms *core.RoomManager,
	dispatcher *app.Dispatcher,
	store core.RoomStore,
	messages core.MessageStore,
	users core.UserDirectory,
	limits Limits,
) *Orchestrator {
	if limits.MaxMessageLen <= 0 {
		limits.MaxMessageLen = domain.DefaultMaxMessageLen
	}
	if limits.HistoryLimit <= 0 {
		limits.HistoryLimit = DefaultHistoryLimit
	}
	return &Orchestrator{
		Registry:   reg,
		Rooms:      rooms,
		Dispatcher: dispatcher,
		Store:      store,
		Messages:   messages,
		Users:      users,
		Limits:     limits,
		now:        time.Now,
	}
}

// Connect registers an authenticated connection and remembers its identity
// so the user can later be targeted by username while offline.
func (o *Orchestrator) Connect(ctx context.Context, sess core.Session, cancel context.CancelFunc) {
	o.Registry.Track(sess, cancel)
	if err := o.Users.RememberUser(ctx, sess.User); err != nil {
		log.Warn().Str("module", "orch").Err(err).Str("user", string(sess.User.ID)).Msg("remember user")
	}
}

// Disconnect forgets the connection. Membership is untouched.
func (o *Orchestrator) Disconnect(conn core.ConnID) {
	if _, rooms, ok := o.Registry.Untrack(conn); ok {
		log.Info().Str("module", "orch").Str("conn", string(conn)).Int("rooms", len(rooms)).Msg("disconnected")
	}
}

func (o *Orchestrator) sessionUser(conn core.ConnID) (domain.User, error) {
	sess, ok := o.Registry.GetSession(conn)
	if !ok {
		return domain.User{}, domain.Authentication("Connection is not authenticated")
	}
	return sess.User, nil
}

// inRoom loads the room on its worker and hands it to fn.
func (o *Orchestrator) inRoom(ctx context.Context, roomID domain.RoomID, fn func(ctx context.Context, st *core.RoomState, room *domain.Room) error) error {
	if roomID == "" {
		return domain.Validation("Room id is required")
	}
	return o.Rooms.Do(ctx, roomID, func(ctx context.Context, st *core.RoomState) error {
		room, err := o.Store.LoadRoom(ctx, roomID)
		if err != nil {
			return err
		}
		return fn(ctx, st, room)
	})
}

// commit saves a changed transition and returns the authoritative room.
func (o *Orchestrator) commit(ctx context.Context, tr app.Transition) (*domain.Room, error) {
	if !tr.Changed {
		return tr.Room, nil
	}
	saved, err := o.Store.SaveRoom(ctx, tr.Room)
	if err != nil {
		return nil, fmt.Errorf("save room %s: %w", tr.Room.ID, err)
	}
	return saved, nil
}

// userRef resolves a display name, falling back to the id for users the
// directory has never seen.
func (o *Orchestrator) userRef(ctx context.Context, id domain.UserID) domain.UserRef {
	u, err := o.Users.LookupUser(ctx, id)
	if err != nil {
		return domain.UserRef{ID: id, Username: string(id)}
	}
	return u.Ref()
}

func (o *Orchestrator) userEvent(roomID domain.RoomID, format string, args ...any) {
	o.Dispatcher.Broadcast(roomID, core.Event{
		Type: core.EventUserEvent,
		Data: core.UserEventPayload{RoomID: roomID, Message: fmt.Sprintf(format, args...)},
	})
}

func newID() string { return uuid.NewString() }
