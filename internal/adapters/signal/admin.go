package signal

import (
	"context"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/domain"
)

type memberPayload struct {
	Room   domain.RoomID `json:"room" validate:"required,max=64"`
	User   domain.UserID `json:"user" validate:"required,max=36"`
	Action app.Action    `json:"action" validate:"required"`
}

type invitePayload struct {
	Room     domain.RoomID `json:"room" validate:"required,max=64"`
	Username string        `json:"username" validate:"required,max=36"`
}

func (ctl *SignalWSController) handleResolve(ctx context.Context, c *WsSignalConn, env envelope, data []byte) {
	var p memberPayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.fail(c, env, err)
		return
	}
	res, err := ctl.Orch.ResolveRequest(ctx, c.id, p.Room, p.User, p.Action)
	if err != nil {
		ctl.fail(c, env, err)
		return
	}
	ctl.ok(c, env, res.Status, res.Message, res)
}

func (ctl *SignalWSController) handleUpdate(ctx context.Context, c *WsSignalConn, env envelope, data []byte) {
	var p memberPayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.fail(c, env, err)
		return
	}
	res, err := ctl.Orch.UpdateMember(ctx, c.id, p.Room, p.User, p.Action)
	if err != nil {
		ctl.fail(c, env, err)
		return
	}
	ctl.ok(c, env, res.Status, res.Message, res)
}

func (ctl *SignalWSController) handleInvite(ctx context.Context, c *WsSignalConn, env envelope, data []byte) {
	var p invitePayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.fail(c, env, err)
		return
	}
	res, err := ctl.Orch.InviteUser(ctx, c.id, p.Room, p.Username)
	if err != nil {
		ctl.fail(c, env, err)
		return
	}
	ctl.ok(c, env, res.Status, res.Message, res)
}
