// Package core holds the transport-facing contracts shared by the engine and
// its adapters.
package core

// Frame is one encoded outbound payload.
type Frame []byte

// SignalConnection abstracts a session's messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues the frame without blocking. It fails when the peer's
	// buffer is full or the connection is already closed.
	TrySend(Frame) error
	Close()
}
