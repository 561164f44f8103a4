package signal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Chat/internal/adapters/storage"
	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/app/orch"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var errClosed = errors.New("fake ws closed")

// fakeWS feeds client frames through in and captures text frames in out.
type fakeWS struct {
	in   chan []byte
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func newFakeWS() *fakeWS {
	return &fakeWS{in: make(chan []byte, 16), out: make(chan []byte, 64), done: make(chan struct{})}
}

func (f *fakeWS) ReadMessage() (int, []byte, error) {
	select {
	case b := <-f.in:
		return websocket.TextMessage, b, nil
	case <-f.done:
		return 0, nil, errClosed
	}
}

func (f *fakeWS) WriteMessage(mt int, data []byte) error {
	if mt != websocket.TextMessage {
		return nil
	}
	select {
	case f.out <- data:
		return nil
	case <-f.done:
		return errClosed
	}
}

func (f *fakeWS) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeWS) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeWS) SetReadLimit(int64)                {}
func (f *fakeWS) SetPongHandler(func(string) error) {}

func (f *fakeWS) Close() error {
	f.once.Do(func() { close(f.done) })
	return nil
}

type inbound struct {
	Type    string          `json:"type"`
	Ref     string          `json:"ref"`
	Request string          `json:"request"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

// next returns the first frame whose type and ref match.
func (f *fakeWS) next(t *testing.T, typ, ref string) inbound {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case b := <-f.out:
			var in inbound
			require.NoError(t, json.Unmarshal(b, &in))
			if in.Type == typ && (ref == "" || in.Ref == ref) {
				return in
			}
		case <-timeout:
			t.Fatalf("no %s frame (ref %q)", typ, ref)
		}
	}
}

func (f *fakeWS) send(t *testing.T, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	f.in <- b
}

type fixture struct {
	ctl  *SignalWSController
	orch *orch.Orchestrator
}

func newFixture(t *testing.T, limiter *RoomRateLimiter) *fixture {
	t.Helper()
	store, err := storage.OpenPath("", true)
	require.NoError(t, err)
	rooms := core.NewRoomManager(context.Background(), 0)
	reg := app.NewRegistry()
	o := orch.New(reg, rooms, app.NewDispatcher(reg, nil), store, store, store, orch.Limits{})
	t.Cleanup(func() {
		rooms.Stop()
		require.NoError(t, store.Close())
	})
	return &fixture{ctl: NewSignalWSController(o, limiter, Options{PingPeriod: time.Hour}), orch: o}
}

func (fx *fixture) dial(t *testing.T, id domain.UserID) *fakeWS {
	t.Helper()
	ws := newFakeWS()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = ws.Close()
	})
	fx.ctl.Serve(ctx, ws, domain.User{ID: id, Username: string(id)})
	return ws
}

func (fx *fixture) room(t *testing.T, owner domain.UserID, v domain.Visibility) domain.RoomID {
	t.Helper()
	view, err := fx.orch.CreateRoom(context.Background(), domain.User{ID: owner, Username: string(owner)}, "room-"+string(v), "", string(v))
	require.NoError(t, err)
	return view.ID
}

func TestSignal_JoinSendAndReceive(t *testing.T) {
	req := require.New(t)
	fx := newFixture(t, nil)
	roomID := fx.room(t, "owner", domain.VisibilityOpen)
	alice := fx.dial(t, "alice")
	bob := fx.dial(t, "bob")

	alice.send(t, map[string]any{"type": "join", "ref": "1", "room": roomID})
	ack := alice.next(t, "ack", "1")
	req.Equal("joined", ack.Status)

	bob.send(t, map[string]any{"type": "send", "ref": "2", "room": roomID, "text": "hello"})
	ack = bob.next(t, "ack", "2")
	req.Equal("sent", ack.Status)
	var sent orch.SendResult
	req.NoError(json.Unmarshal(ack.Data, &sent))
	req.NotEmpty(sent.ID)

	// Then alice, subscribed to the room, receives the message
	msg := alice.next(t, string(core.EventMessage), "")
	var payload core.MessagePayload
	req.NoError(json.Unmarshal(msg.Data, &payload))
	req.Equal("hello", payload.Text)
	req.Equal("bob", payload.Username)
	req.Equal(sent.ID, payload.ID)
}

func TestSignal_ErrorsKeepConnectionOpen(t *testing.T) {
	req := require.New(t)
	fx := newFixture(t, nil)
	roomID := fx.room(t, "owner", domain.VisibilityInviteOnly)
	alice := fx.dial(t, "alice")

	alice.send(t, map[string]any{"type": "join", "ref": "1", "room": roomID})
	ack := alice.next(t, "ack", "1")
	req.Equal("error", ack.Status)
	req.Equal("authorization", ack.Kind)
	req.Equal("You do not have access to this private room", ack.Message)

	alice.send(t, map[string]any{"type": "send", "ref": "2", "room": roomID})
	ack = alice.next(t, "ack", "2")
	req.Equal("validation", ack.Kind)
	req.Contains(ack.Message, "text")

	alice.send(t, map[string]any{"type": "dance", "ref": "3"})
	req.Equal("validation", alice.next(t, "ack", "3").Kind)

	// And the connection still answers
	alice.send(t, map[string]any{"type": "ping", "ref": "4"})
	alice.next(t, "pong", "4")
}

func TestSignal_WhoAmI(t *testing.T) {
	req := require.New(t)
	fx := newFixture(t, nil)
	roomID := fx.room(t, "owner", domain.VisibilityOpen)
	alice := fx.dial(t, "alice")
	alice.send(t, map[string]any{"type": "join", "ref": "1", "room": roomID})
	alice.next(t, "ack", "1")

	alice.send(t, map[string]any{"type": "whoami", "ref": "2"})
	frame := alice.next(t, "whoami", "2")
	req.Equal("whoami", frame.Type)
	req.True(fx.orch.Registry.IsSubscribed(roomID, fx.orch.Registry.ConnectionsOf("alice")[0]))
}

func TestSignal_RateLimitedSend(t *testing.T) {
	req := require.New(t)
	fx := newFixture(t, NewRoomRateLimiter(1, time.Hour))
	roomID := fx.room(t, "owner", domain.VisibilityOpen)
	alice := fx.dial(t, "alice")

	alice.send(t, map[string]any{"type": "send", "ref": "1", "room": roomID, "text": "one"})
	req.Equal("sent", alice.next(t, "ack", "1").Status)
	alice.send(t, map[string]any{"type": "send", "ref": "2", "room": roomID, "text": "two"})
	req.Equal("error", alice.next(t, "ack", "2").Status)
}

func TestSignal_DisconnectUntracks(t *testing.T) {
	req := require.New(t)
	fx := newFixture(t, nil)
	alice := fx.dial(t, "alice")
	req.Eventually(func() bool { return fx.orch.Registry.IsOnline("alice") }, time.Second, 10*time.Millisecond)

	_ = alice.Close()

	req.Eventually(func() bool { return !fx.orch.Registry.IsOnline("alice") }, time.Second, 10*time.Millisecond)
}

func TestWsSignalConn_Backpressure(t *testing.T) {
	req := require.New(t)
	c := NewWsSignalConn("c1", newFakeWS(), 1)

	req.NoError(c.TrySend(core.Frame("a")))
	req.ErrorIs(c.TrySend(core.Frame("b")), core.ErrBackpressure)
	c.Close()
	c.Close()
	req.ErrorIs(c.TrySend(core.Frame("c")), core.ErrConnectionClosed)
}

func TestRoomRateLimiter_Window(t *testing.T) {
	req := require.New(t)
	rl := NewRoomRateLimiter(2, time.Second)
	now := time.Unix(100, 0)
	rl.now = func() time.Time { return now }

	req.True(rl.Allow("alice"))
	req.True(rl.Allow("alice"))
	req.False(rl.Allow("alice"))
	req.True(rl.Allow("bob"))

	now = now.Add(2 * time.Second)
	req.True(rl.Allow("alice"))
	req.True(NewRoomRateLimiter(0, time.Second).Allow("anyone"))
}

func TestRoomRateLimiter_ForgetsIdleUsers(t *testing.T) {
	req := require.New(t)
	rl := NewRoomRateLimiter(5, time.Second)
	now := time.Unix(100, 0)
	rl.now = func() time.Time { return now }

	for _, u := range []domain.UserID{"alice", "bob", "carol"} {
		req.True(rl.Allow(u))
	}
	req.Equal(3, rl.tracked())

	// When the window passes and only dave keeps sending
	now = now.Add(2 * time.Second)
	req.True(rl.Allow("dave"))

	// Then the idle users are dropped
	req.Equal(1, rl.tracked())
}
