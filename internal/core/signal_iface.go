package core

import "errors"

// Frame is an encoded payload ready for the wire.
type Frame []byte

var (
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
)

// SignalConnection abstracts the real-time transport of one live connection.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend enqueues without blocking; a full buffer yields ErrBackpressure.
	TrySend(Frame) error
	Close()
}
