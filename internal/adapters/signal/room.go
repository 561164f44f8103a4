package signal

import (
	"context"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

type roomPayload struct {
	Room domain.RoomID `json:"room" validate:"required,max=64"`
}

func (ctl *SignalWSController) handleJoin(ctx context.Context, c *WsSignalConn, env envelope, data []byte) {
	var p roomPayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.fail(c, env, err)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Str("room_id", string(p.Room)).Msg("join")
	res, err := ctl.Orch.JoinRoom(ctx, c.id, p.Room)
	if err != nil {
		ctl.fail(c, env, err)
		return
	}
	ctl.ok(c, env, res.Status, res.Message, res)
}

// handleLeave gives up membership; the connection itself stays open.
func (ctl *SignalWSController) handleLeave(ctx context.Context, c *WsSignalConn, env envelope, data []byte) {
	var p roomPayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.fail(c, env, err)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Str("room_id", string(p.Room)).Msg("leave")
	res, err := ctl.Orch.LeaveRoom(ctx, c.id, p.Room)
	if env.Ref == "" {
		return
	}
	if err != nil {
		ctl.fail(c, env, err)
		return
	}
	ctl.ok(c, env, res.Status, "", nil)
}

func (ctl *SignalWSController) handleUnsubscribe(c *WsSignalConn, env envelope, data []byte) {
	var p roomPayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.fail(c, env, err)
		return
	}
	ctl.Orch.Unsubscribe(c.id, p.Room)
	ctl.ok(c, env, "unsubscribed", "", nil)
}
