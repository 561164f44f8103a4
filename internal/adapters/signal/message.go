package signal

import (
	"context"

	"github.com/dkeye/Chat/internal/domain"
)

type sendPayload struct {
	Room domain.RoomID `json:"room" validate:"required,max=64"`
	Text string        `json:"text" validate:"required"`
}

type historyPayload struct {
	Room  domain.RoomID `json:"room" validate:"required,max=64"`
	Limit int           `json:"limit" validate:"gte=0"`
}

func (ctl *SignalWSController) handleSend(ctx context.Context, c *WsSignalConn, env envelope, data []byte) {
	var p sendPayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.fail(c, env, err)
		return
	}
	if sess, ok := ctl.Orch.Registry.GetSession(c.id); ok && ctl.Limiter != nil && !ctl.Limiter.Allow(sess.User.ID) {
		ctl.fail(c, env, domain.Validation("You are sending messages too fast"))
		return
	}
	res, err := ctl.Orch.SendMessage(ctx, c.id, p.Room, p.Text)
	if err != nil {
		ctl.fail(c, env, err)
		return
	}
	ctl.ok(c, env, res.Status, "", res)
}

func (ctl *SignalWSController) handleHistory(ctx context.Context, c *WsSignalConn, env envelope, data []byte) {
	var p historyPayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.fail(c, env, err)
		return
	}
	sess, ok := ctl.Orch.Registry.GetSession(c.id)
	if !ok {
		ctl.fail(c, env, domain.Authentication("Connection is not authenticated"))
		return
	}
	msgs, err := ctl.Orch.History(ctx, sess.User.ID, p.Room, p.Limit)
	if err != nil {
		ctl.fail(c, env, err)
		return
	}
	ctl.ok(c, env, "success", "", map[string]any{"room": p.Room, "messages": msgs})
}
