package internal

import (
	"context"

	"github.com/slipgate-emu/slipgate/internal/game"
)

// Backend is an interface for a sub-server that handles one transport's
// client interactions.
type Backend interface {
	// Identifier returns a uniquely identifying string.
	Identifier() string

	// Kind returns the session kind this backend's connections are tagged with.
	Kind() game.SessionKind

	// Init is called before a Backend is started as a hook for the Backend to
	// perform any necessary initialization before it can accept clients.
	Init(ctx context.Context) error

	// SetUpSession performs any initialization on the Session needed to be
	// able to begin communicating.
	SetUpSession(s *game.Session)

	// Handshake performs any connection initialization necessary to begin
	// communicating with the client, typically a welcome message.
	Handshake(s *game.Session) error

	// Handle is the main entry point for processing client frames. It is
	// responsible for decoding the frame and routing the message.
	Handle(ctx context.Context, s *game.Session, frame []byte) error

	// OnDisconnect is invoked once when a session's connection closes, after
	// the read loop has exited.
	OnDisconnect(s *game.Session)
}
