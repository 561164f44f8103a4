package app

import (
	"sync"

	"github.com/dkeye/Chat/internal/core"
	"github.com/goccy/go-json"
)

// fakeSignal records frames; a zero capacity means unbounded.
type fakeSignal struct {
	mu     sync.Mutex
	frames []core.Frame
	cap    int
	closed bool
}

func (f *fakeSignal) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return core.ErrConnectionClosed
	}
	if f.cap > 0 && len(f.frames) >= f.cap {
		return core.ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSignal) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeSignal) Types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.frames))
	for _, fr := range f.frames {
		var probe struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(fr, &probe)
		out = append(out, probe.Type)
	}
	return out
}

func (f *fakeSignal) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
