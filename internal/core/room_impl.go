package core

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

// RoomState is worker-local state, only touched from the room's goroutine.
type RoomState struct {
	ID            domain.RoomID
	LastMessageAt time.Time
	Jobs          uint64
}

// Job is one serialized unit of work against a room.
type Job func(ctx context.Context, st *RoomState) error

type task struct {
	ctx  context.Context
	job  Job
	done chan error
}

// roomWorker is the single writer of one room. Jobs run in submission order.
type roomWorker struct {
	ctx   context.Context
	state RoomState
	tasks chan task
}

func newRoomWorker(ctx context.Context, id domain.RoomID, queue int) *roomWorker {
	return &roomWorker{
		ctx:   ctx,
		state: RoomState{ID: id},
		tasks: make(chan task, queue),
	}
}

func (w *roomWorker) Run() {
	for {
		select {
		case <-w.ctx.Done():
			log.Debug().Str("module", "core.room").Str("room", string(w.state.ID)).Msg("room worker stopped")
			return
		case t := <-w.tasks:
			t.done <- w.exec(t)
		}
	}
}

func (w *roomWorker) exec(t task) (err error) {
	// The caller gave up before the job started: nothing was applied.
	if cerr := t.ctx.Err(); cerr != nil {
		return cerr
	}
	w.state.Jobs++
	// Once started, a job runs to completion even if the caller disconnects.
	ctx := context.WithoutCancel(t.ctx)
	if rec := panics.Try(func() { err = t.job(ctx, &w.state) }); rec != nil {
		log.Error().Str("module", "core.room").Str("room", string(w.state.ID)).Str("panic", rec.String()).Msg("room job panicked")
		return fmt.Errorf("room %s: %w", w.state.ID, rec.AsError())
	}
	return err
}

func (w *roomWorker) submit(ctx context.Context, job Job) error {
	t := task{ctx: ctx, job: job, done: make(chan error, 1)}
	select {
	case w.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.ctx.Done():
		return ErrManagerStopped
	}
	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-w.ctx.Done():
		return ErrManagerStopped
	}
}
