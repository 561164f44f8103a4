package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestRoomManager_SerializesJobsPerRoom(t *testing.T) {
	req := require.New(t)
	rm := NewRoomManager(context.Background(), 0)
	defer rm.Stop()

	roomID := domain.RoomID("r1")
	counter := 0
	var wg sync.WaitGroup

	// When many goroutines mutate the same room without any lock of their own
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := rm.Do(context.Background(), roomID, func(ctx context.Context, st *RoomState) error {
				counter++
				return nil
			})
			req.NoError(err)
		}()
	}
	wg.Wait()

	// Then no update is lost
	req.Equal(200, counter)
	req.Equal(1, rm.Active())
}

func TestRoomManager_RoomsDoNotBlockEachOther(t *testing.T) {
	req := require.New(t)
	rm := NewRoomManager(context.Background(), 0)
	defer rm.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = rm.Do(context.Background(), "slow", func(ctx context.Context, st *RoomState) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// Given room "slow" is busy, room "fast" still completes
	done := make(chan error, 1)
	go func() {
		done <- rm.Do(context.Background(), "fast", func(ctx context.Context, st *RoomState) error { return nil })
	}()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("room fast was blocked by room slow")
	}
	close(release)
}

func TestRoomManager_RecoversPanickingJob(t *testing.T) {
	req := require.New(t)
	rm := NewRoomManager(context.Background(), 0)
	defer rm.Stop()

	err := rm.Do(context.Background(), "r1", func(ctx context.Context, st *RoomState) error {
		panic("boom")
	})
	req.Error(err)

	// The worker survives and keeps its state
	var jobs uint64
	err = rm.Do(context.Background(), "r1", func(ctx context.Context, st *RoomState) error {
		jobs = st.Jobs
		return nil
	})
	req.NoError(err)
	req.Equal(uint64(2), jobs)
}

func TestRoomManager_StoppedRejectsJobs(t *testing.T) {
	req := require.New(t)
	rm := NewRoomManager(context.Background(), 0)
	rm.Stop()

	err := rm.Do(context.Background(), "r1", func(ctx context.Context, st *RoomState) error { return nil })
	req.ErrorIs(err, ErrManagerStopped)
}

func TestRoomManager_JobErrorIsReturned(t *testing.T) {
	req := require.New(t)
	rm := NewRoomManager(context.Background(), 0)
	defer rm.Stop()

	want := domain.Conflict("already banned")
	err := rm.Do(context.Background(), "r1", func(ctx context.Context, st *RoomState) error { return want })
	req.ErrorIs(err, want)
}
