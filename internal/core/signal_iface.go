// Package core defines the ports between the relay's application services
// and its adapters: the client signaling transport and the external
// speech-recognition and translation providers.
package core

// Frame is a raw binary payload.
type Frame []byte

// SessionID identifies one live client connection. It is transport-assigned
// and opaque; display names map to it through the presence directory.
type SessionID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
