package orch

import (
	"context"
	"sync"
	"testing"

	"github.com/dkeye/Chat/internal/adapters/storage"
	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type recorder struct {
	mu     sync.Mutex
	frames []frame
}

func (r *recorder) TrySend(f core.Frame) error {
	var fr frame
	if err := json.Unmarshal(f, &fr); err != nil {
		return err
	}
	r.mu.Lock()
	r.frames = append(r.frames, fr)
	r.mu.Unlock()
	return nil
}

func (r *recorder) Close() {}

func (r *recorder) OfType(t core.EventType) []frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []frame
	for _, f := range r.frames {
		if f.Type == string(t) {
			out = append(out, f)
		}
	}
	return out
}

func (r *recorder) Reset() {
	r.mu.Lock()
	r.frames = nil
	r.mu.Unlock()
}

type harness struct {
	t     *testing.T
	o     *Orchestrator
	store *storage.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := storage.OpenPath("", true)
	require.NoError(t, err)
	rooms := core.NewRoomManager(context.Background(), 0)
	t.Cleanup(func() {
		rooms.Stop()
		require.NoError(t, store.Close())
	})
	reg := app.NewRegistry()
	o := New(reg, rooms, app.NewDispatcher(reg, app.SimplePolicy{}), store, store, store, Limits{})
	return &harness{t: t, o: o, store: store}
}

func (h *harness) connect(conn core.ConnID, id domain.UserID) *recorder {
	rec := &recorder{}
	h.o.Connect(context.Background(), core.Session{ID: conn, User: domain.User{ID: id, Username: string(id)}, Signal: rec}, nil)
	return rec
}

func (h *harness) createRoom(owner domain.UserID, name string, v domain.Visibility) domain.RoomID {
	view, err := h.o.CreateRoom(context.Background(), domain.User{ID: owner, Username: string(owner)}, name, "", string(v))
	require.NoError(h.t, err)
	return view.ID
}

func (h *harness) room(id domain.RoomID) *domain.Room {
	room, err := h.store.LoadRoom(context.Background(), id)
	require.NoError(h.t, err)
	return room
}

func decode[T any](t *testing.T, f frame) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(f.Data, &v))
	return v
}
