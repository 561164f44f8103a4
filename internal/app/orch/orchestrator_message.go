package orch

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

type SendResult struct {
	Status    string           `json:"-"`
	ID        domain.MessageID `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
}

// SendMessage validates, authorizes against the room as it is right now,
// persists and broadcasts one message.
func (o *Orchestrator) SendMessage(ctx context.Context, conn core.ConnID, roomID domain.RoomID, text string) (SendResult, error) {
	user, err := o.sessionUser(conn)
	if err != nil {
		return SendResult{}, err
	}
	text, err = domain.NormalizeText(text, o.Limits.MaxMessageLen)
	if err != nil {
		return SendResult{}, err
	}
	var res SendResult
	err = o.inRoom(ctx, roomID, func(ctx context.Context, st *core.RoomState, room *domain.Room) error {
		role := app.RoleOf(room, user.ID)
		if role == domain.RoleBanned {
			return domain.Authorization("You are banned from this room")
		}
		if !app.CanSendMessage(room, role) {
			return domain.Authorization("You are not a member of this room")
		}

		// timestamps never go backwards within a room
		ts := o.now().UTC()
		if ts.Before(st.LastMessageAt) {
			ts = st.LastMessageAt
		}
		msg, err := o.Messages.AppendMessage(ctx, domain.Message{
			ID:         domain.MessageID(newID()),
			RoomID:     room.ID,
			SenderID:   user.ID,
			SenderName: user.Username,
			Text:       text,
			Timestamp:  ts,
		})
		if err != nil {
			return fmt.Errorf("append message: %w", err)
		}
		st.LastMessageAt = ts

		o.Dispatcher.Broadcast(room.ID, core.Event{Type: core.EventMessage, Data: core.NewMessagePayload(msg)})
		res = SendResult{Status: StatusSent, ID: msg.ID, Timestamp: msg.Timestamp}
		return nil
	})
	if err != nil {
		return SendResult{}, err
	}
	return res, nil
}

// History returns the newest messages of a room, oldest first. Closed rooms
// are only readable by their participants.
func (o *Orchestrator) History(ctx context.Context, user domain.UserID, roomID domain.RoomID, limit int) ([]core.MessagePayload, error) {
	room, err := o.Store.LoadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !app.CanReadHistory(room, app.RoleOf(room, user)) {
		return nil, domain.Authorization("You are not a member of this room")
	}
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = o.Limits.HistoryLimit
	}
	msgs, err := o.Messages.QueryHistory(ctx, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	out := make([]core.MessagePayload, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, core.NewMessagePayload(m))
	}
	return out, nil
}
