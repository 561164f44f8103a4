package signal

func (ctl *SignalWSController) handlePing(c *WsSignalConn, env envelope) {
	resp := struct {
		Type string `json:"type"`
		Ref  string `json:"ref,omitempty"`
	}{
		Type: "pong",
		Ref:  env.Ref,
	}
	ctl.sendJSON(c, resp)
}
