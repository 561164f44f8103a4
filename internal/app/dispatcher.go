package app

import (
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// DeliveryResult reports how an event fared against the live connections.
type DeliveryResult struct {
	Delivered int
	Dropped   []core.ConnID
	Kicked    []core.ConnID
}

// Dispatcher fans events out to live connections. Delivery is at most once
// and never queued: offline users and slow connections simply miss events.
type Dispatcher struct {
	Registry *Registry
	Policy   Policy
}

func NewDispatcher(reg *Registry, policy Policy) *Dispatcher {
	if policy == nil {
		policy = SimplePolicy{}
	}
	return &Dispatcher{Registry: reg, Policy: policy}
}

// Broadcast sends evt to every connection subscribed to the room channel.
func (d *Dispatcher) Broadcast(roomID domain.RoomID, evt core.Event) DeliveryResult {
	return d.deliver(evt, d.Registry.SubscribersOf(roomID))
}

// EmitToUser sends evt to every live connection of user, subscribed or not.
func (d *Dispatcher) EmitToUser(user domain.UserID, evt core.Event) DeliveryResult {
	return d.deliver(evt, d.Registry.ConnectionsOf(user))
}

// EmitToUsers is EmitToUser over a recipient list, each event encoded once.
func (d *Dispatcher) EmitToUsers(users []domain.UserID, evt core.Event) DeliveryResult {
	var conns []core.ConnID
	for _, u := range users {
		conns = append(conns, d.Registry.ConnectionsOf(u)...)
	}
	return d.deliver(evt, conns)
}

func (d *Dispatcher) deliver(evt core.Event, conns []core.ConnID) DeliveryResult {
	var res DeliveryResult
	if len(conns) == 0 {
		return res
	}
	frame, err := json.Marshal(evt)
	if err != nil {
		log.Error().Str("module", "app.dispatcher").Err(err).Str("event", string(evt.Type)).Msg("encode event")
		return res
	}
	for _, id := range conns {
		sig, ok := d.Registry.Signal(id)
		if !ok {
			continue
		}
		if err := sig.TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, id)
			if d.Policy.OnBackPressure(id, err) == KickMember {
				d.kick(id, sig)
				res.Kicked = append(res.Kicked, id)
			}
			continue
		}
		res.Delivered++
	}
	if len(res.Dropped) > 0 {
		log.Warn().Str("module", "app.dispatcher").Str("event", string(evt.Type)).Int("dropped", len(res.Dropped)).Int("kicked", len(res.Kicked)).Msg("slow connections")
	}
	return res
}

func (d *Dispatcher) kick(id core.ConnID, sig core.SignalConnection) {
	d.Registry.Cancel(id)
	d.Registry.Untrack(id)
	sig.Close()
}
