package signal

import (
	"github.com/dkeye/Chat/internal/domain"
)

func (ctl *SignalWSController) handleWhoAmI(c *WsSignalConn, env envelope) {
	sess, ok := ctl.Orch.Registry.GetSession(c.id)
	if !ok {
		ctl.fail(c, env, domain.Authentication("Connection is not authenticated"))
		return
	}
	resp := struct {
		Type     string          `json:"type"`
		Ref      string          `json:"ref,omitempty"`
		ID       domain.UserID   `json:"id"`
		Username string          `json:"username"`
		Rooms    []domain.RoomID `json:"rooms"`
	}{
		Type:     "whoami",
		Ref:      env.Ref,
		ID:       sess.User.ID,
		Username: sess.User.Username,
		Rooms:    ctl.Orch.Registry.RoomsOf(c.id),
	}
	ctl.sendJSON(c, resp)
}
