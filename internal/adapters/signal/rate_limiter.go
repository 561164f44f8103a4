package signal

import (
	"sync"
	"time"

	"github.com/dkeye/Chat/internal/domain"
)

// RoomRateLimiter keeps a sliding window of send times per user.
// A non-positive limit disables it.
type RoomRateLimiter struct {
	mu       sync.Mutex
	sends    map[domain.UserID][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
	swept    time.Time
}

func NewRoomRateLimiter(limit int, interval time.Duration) *RoomRateLimiter {
	return &RoomRateLimiter{
		sends:    make(map[domain.UserID][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

// Allow records a send for uid and reports whether it fits the window.
func (rl *RoomRateLimiter) Allow(uid domain.UserID) bool {
	if rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.interval)
	if now.Sub(rl.swept) >= rl.interval {
		for id := range rl.sends {
			rl.expire(id, cutoff)
		}
		rl.swept = now
	}
	window := rl.expire(uid, cutoff)
	if len(window) >= rl.limit {
		return false
	}
	rl.sends[uid] = append(window, now)
	return true
}

// expire drops sends at or before cutoff. Users left with an empty window
// are forgotten.
func (rl *RoomRateLimiter) expire(uid domain.UserID, cutoff time.Time) []time.Time {
	window := rl.sends[uid]
	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	window = window[i:]
	if len(window) == 0 {
		delete(rl.sends, uid)
		return nil
	}
	rl.sends[uid] = window
	return window
}

// tracked reports how many users currently hold a non-empty window.
func (rl *RoomRateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.sends)
}
