package orch

import (
	"context"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	StatusJoined  = "joined"
	StatusPending = "pending"
	StatusLeft    = "left"
	StatusSuccess = "success"
	StatusSent    = "sent"
)

// Status and Message travel in the acknowledgment envelope.
type JoinResult struct {
	Status  string         `json:"-"`
	Message string         `json:"-"`
	Room    *core.RoomView `json:"room,omitempty"`
}

// CreateRoom persists a new room owned by user.
func (o *Orchestrator) CreateRoom(ctx context.Context, user domain.User, name, description, visibility string) (core.RoomView, error) {
	v, err := domain.ParseVisibility(visibility)
	if err != nil {
		return core.RoomView{}, err
	}
	room, err := domain.NewRoom(domain.RoomID(newID()), name, description, v, user.ID, o.now())
	if err != nil {
		return core.RoomView{}, err
	}
	if err := o.Users.RememberUser(ctx, user); err != nil {
		log.Warn().Str("module", "orch").Err(err).Str("user", string(user.ID)).Msg("remember user")
	}
	created, err := o.Store.CreateRoom(ctx, room)
	if err != nil {
		return core.RoomView{}, err
	}
	log.Info().Str("module", "orch").Str("room", string(created.ID)).Str("name", string(created.Name)).Str("visibility", string(created.Visibility)).Msg("room created")
	return o.FormatRoom(ctx, created, user.ID), nil
}

// JoinRoom admits the connection's user according to the room visibility.
// Joined connections are subscribed to the room channel; approval rooms
// record a pending request and notify the room managers once.
func (o *Orchestrator) JoinRoom(ctx context.Context, conn core.ConnID, roomID domain.RoomID) (JoinResult, error) {
	user, err := o.sessionUser(conn)
	if err != nil {
		return JoinResult{}, err
	}
	var res JoinResult
	err = o.inRoom(ctx, roomID, func(ctx context.Context, _ *core.RoomState, room *domain.Room) error {
		tr, err := app.Join(room, user.ID)
		if err != nil {
			return err
		}
		saved, err := o.commit(ctx, tr)
		if err != nil {
			return err
		}
		view := o.FormatRoom(ctx, saved, user.ID)
		res.Room = &view

		if tr.After == domain.RolePending {
			res.Status = StatusPending
			res.Message = "Join request already pending"
			if tr.Changed {
				res.Message = "Join request sent to room owner"
				o.Dispatcher.EmitToUsers(saved.Managers(), core.Event{
					Type: core.EventRequestCreated,
					Data: core.RequestCreatedPayload{
						RoomID:       saved.ID,
						RoomName:     saved.Name,
						PendingCount: len(saved.PendingRequests),
						Request:      user.Ref(),
					},
				})
			}
			return nil
		}

		res.Status = StatusJoined
		already := o.Registry.IsSubscribed(saved.ID, conn)
		o.Registry.Subscribe(saved.ID, conn)
		if !already {
			o.userEvent(saved.ID, "%s joined the room", user.Username)
		}
		return nil
	})
	if err != nil {
		return JoinResult{}, err
	}
	log.Debug().Str("module", "orch").Str("conn", string(conn)).Str("room", string(roomID)).Str("status", res.Status).Msg("join")
	return res, nil
}

// LeaveRoom gives up the user's membership and detaches all of their
// connections from the room channel. The owner only stops listening on
// this connection.
func (o *Orchestrator) LeaveRoom(ctx context.Context, conn core.ConnID, roomID domain.RoomID) (JoinResult, error) {
	user, err := o.sessionUser(conn)
	if err != nil {
		return JoinResult{}, err
	}
	err = o.inRoom(ctx, roomID, func(ctx context.Context, _ *core.RoomState, room *domain.Room) error {
		tr := app.Leave(room, user.ID)
		if _, err := o.commit(ctx, tr); err != nil {
			return err
		}
		if !tr.Changed {
			o.Registry.Unsubscribe(roomID, conn)
			return nil
		}
		o.Registry.UnsubscribeUser(roomID, user.ID)
		if app.IsParticipant(tr.Before) {
			o.userEvent(roomID, "%s left the room", user.Username)
		}
		return nil
	})
	if err != nil {
		return JoinResult{}, err
	}
	return JoinResult{Status: StatusLeft}, nil
}

// Unsubscribe stops delivery of room events to one connection.
func (o *Orchestrator) Unsubscribe(conn core.ConnID, roomID domain.RoomID) {
	o.Registry.Unsubscribe(roomID, conn)
}
