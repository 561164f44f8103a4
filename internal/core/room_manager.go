package core

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

var ErrManagerStopped = errors.New("room manager stopped")

const defaultRoomQueue = 64

// RoomManager is the per-room serialization point: every mutating operation
// on a room runs on that room's worker, rooms run independently.
type RoomManager struct {
	ctx    context.Context
	cancel context.CancelFunc
	queue  int

	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomWorker
	wg    conc.WaitGroup
}

func NewRoomManager(parent context.Context, queue int) *RoomManager {
	if queue <= 0 {
		queue = defaultRoomQueue
	}
	ctx, cancel := context.WithCancel(parent)
	return &RoomManager{
		ctx:    ctx,
		cancel: cancel,
		queue:  queue,
		rooms:  make(map[domain.RoomID]*roomWorker),
	}
}

// Do runs job on the room's worker and waits for its result.
func (rm *RoomManager) Do(ctx context.Context, id domain.RoomID, job Job) error {
	w, err := rm.getOrCreate(id)
	if err != nil {
		return err
	}
	return w.submit(ctx, job)
}

func (rm *RoomManager) getOrCreate(id domain.RoomID) (*roomWorker, error) {
	rm.mu.RLock()
	w, ok := rm.rooms[id]
	rm.mu.RUnlock()
	if ok {
		return w, nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.ctx.Err() != nil {
		return nil, ErrManagerStopped
	}
	if w, ok = rm.rooms[id]; ok {
		return w, nil
	}
	w = newRoomWorker(rm.ctx, id, rm.queue)
	rm.rooms[id] = w
	rm.wg.Go(w.Run)
	log.Debug().Str("module", "core.room_manager").Str("room", string(id)).Msg("room worker started")
	return w, nil
}

// Active returns the number of rooms with a running worker.
func (rm *RoomManager) Active() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// Stop cancels every worker and waits for them to return.
func (rm *RoomManager) Stop() {
	rm.mu.Lock()
	rm.cancel()
	rm.mu.Unlock()
	rm.wg.Wait()
	log.Info().Str("module", "core.room_manager").Msg("all room workers stopped")
}
