package game

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/slipgate-emu/slipgate/internal/packets"
)

// ServerBackend adapts the shared Engine to one transport's frontend. Three
// instances run per process, one per session kind, all sharing the same
// Engine.
type ServerBackend struct {
	Name        string
	SessionKind SessionKind
	Engine      *Engine
	Logger      *logrus.Logger
}

func (b *ServerBackend) Identifier() string { return b.Name }

func (b *ServerBackend) Kind() SessionKind { return b.SessionKind }

func (b *ServerBackend) Init(ctx context.Context) error {
	if b.Engine == nil {
		return fmt.Errorf("%s backend started without an engine", b.Name)
	}
	return nil
}

func (b *ServerBackend) SetUpSession(s *Session) {
	b.Engine.TrackPending(s)
}

// Handshake greets a freshly accepted connection. Only the game transport
// sends a welcome; the chat and relay transports expect the client to speak
// first.
func (b *ServerBackend) Handshake(s *Session) error {
	if b.SessionKind != SessionGame {
		return nil
	}
	return s.Send(&packets.ServerResultAck{Result: packets.ResultWelcome})
}

// Handle decodes one frame and routes it through the engine's dispatcher
// for this transport. A frame that fails to decode gets a generic error
// reply unless the sender is mid-match, where an unsolicited ack would
// desync the client; those are only logged.
func (b *ServerBackend) Handle(ctx context.Context, s *Session, frame []byte) error {
	msg, err := packets.Unmarshal(frame)
	if err != nil {
		b.Logger.Warnf("[%s] undecodable frame from %s: %v", b.Name, s.RemoteAddr(), err)
		if b.canReplyWithError(s) {
			return s.Send(&packets.ServerResultAck{Result: packets.ResultServerError})
		}
		return nil
	}
	return b.Engine.Dispatcher(b.SessionKind).Dispatch(ctx, s, msg)
}

func (b *ServerBackend) canReplyWithError(s *Session) bool {
	p := s.Player()
	if p == nil {
		return true
	}
	room := p.Room()
	return room == nil || room.InPhase(PhaseWaiting)
}

func (b *ServerBackend) OnDisconnect(s *Session) {
	b.Engine.OnDisconnect(s)
}
