package orch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/dkeye/Chat/internal/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newMocked(t *testing.T) (*Orchestrator, *mocks.MockRoomStore, *mocks.MockMessageStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRoomStore(ctrl)
	messages := mocks.NewMockMessageStore(ctrl)
	users := mocks.NewMockUserDirectory(ctrl)
	users.EXPECT().RememberUser(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	users.EXPECT().LookupUser(gomock.Any(), gomock.Any()).Return(domain.User{}, domain.NotFound("User not found")).AnyTimes()

	rooms := core.NewRoomManager(context.Background(), 0)
	t.Cleanup(rooms.Stop)
	reg := app.NewRegistry()
	o := New(reg, rooms, app.NewDispatcher(reg, nil), store, messages, users, Limits{})
	o.Connect(context.Background(), core.Session{ID: "a1", User: domain.User{ID: "alice", Username: "alice"}, Signal: &recorder{}}, nil)
	return o, store, messages
}

func TestJoinRoom_StaleSaveIsSurfaced(t *testing.T) {
	req := require.New(t)
	o, store, _ := newMocked(t)
	room, err := domain.NewRoom("r1", "lobby", "", domain.VisibilityOpen, "owner", time.Now())
	req.NoError(err)

	// Given the stored room moved on behind our back
	store.EXPECT().LoadRoom(gomock.Any(), domain.RoomID("r1")).Return(room, nil)
	store.EXPECT().SaveRoom(gomock.Any(), gomock.Any()).Return(nil, domain.ErrStaleRoom)

	_, err = o.JoinRoom(context.Background(), "a1", "r1")
	req.ErrorIs(err, domain.ErrStaleRoom)
	req.Equal(domain.KindInternal, domain.KindOf(err))
	req.False(o.Registry.IsSubscribed("r1", "a1"))
}

func TestSendMessage_StoreFailureIsInternal(t *testing.T) {
	req := require.New(t)
	o, store, messages := newMocked(t)
	room, err := domain.NewRoom("r1", "lobby", "", domain.VisibilityOpen, "owner", time.Now())
	req.NoError(err)

	store.EXPECT().LoadRoom(gomock.Any(), domain.RoomID("r1")).Return(room, nil)
	messages.EXPECT().AppendMessage(gomock.Any(), gomock.Any()).Return(domain.Message{}, errors.New("disk full"))

	_, err = o.SendMessage(context.Background(), "a1", "r1", "hello")
	req.Error(err)
	req.Equal(domain.KindInternal, domain.KindOf(err))
}

func TestSendMessage_TimestampNeverGoesBack(t *testing.T) {
	req := require.New(t)
	o, store, messages := newMocked(t)
	room, err := domain.NewRoom("r1", "lobby", "", domain.VisibilityOpen, "owner", time.Now())
	req.NoError(err)
	store.EXPECT().LoadRoom(gomock.Any(), domain.RoomID("r1")).Return(room, nil).Times(2)
	messages.EXPECT().AppendMessage(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, m domain.Message) (domain.Message, error) { return m, nil },
	).Times(2)

	// Given a clock that jumps backwards between two sends
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := []time.Time{base, base.Add(-time.Minute)}
	o.now = func() time.Time {
		now := clock[0]
		clock = clock[1:]
		return now
	}

	first, err := o.SendMessage(context.Background(), "a1", "r1", "one")
	req.NoError(err)
	second, err := o.SendMessage(context.Background(), "a1", "r1", "two")
	req.NoError(err)
	req.Equal(first.Timestamp, second.Timestamp)
}
