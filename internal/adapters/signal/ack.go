package signal

import (
	"errors"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const statusError = "error"

// ackFrame answers one request. Data carries the operation result.
type ackFrame struct {
	Type    string `json:"type"`
	Ref     string `json:"ref,omitempty"`
	Request string `json:"request,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (ctl *SignalWSController) ok(c *WsSignalConn, env envelope, status, message string, data any) {
	ctl.sendJSON(c, ackFrame{Type: "ack", Ref: env.Ref, Request: env.Type, Status: status, Message: message, Data: data})
}

// fail turns err into an error ack. Business errors keep their message;
// anything else is logged and hidden behind a generic one.
func (ctl *SignalWSController) fail(c *WsSignalConn, env envelope, err error) {
	kind := domain.KindOf(err)
	msg := err.Error()
	if kind == domain.KindInternal {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(c.id)).Str("request", env.Type).Msg("request failed")
		msg = "Internal server error"
	}
	ctl.sendJSON(c, ackFrame{Type: "ack", Ref: env.Ref, Request: env.Type, Status: statusError, Message: msg, Kind: kind.String()})
}

// decode unmarshals and validates a request payload.
func (ctl *SignalWSController) decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return domain.Validation("Malformed request")
	}
	if err := ctl.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.Validation("Invalid field %s", verrs[0].Field())
		}
		return domain.Validation("Invalid request")
	}
	return nil
}
