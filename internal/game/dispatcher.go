package game

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/slipgate-emu/slipgate/internal/packets"
)

// Predicate is a pre-dispatch gate on a session. A non-nil error vetoes the
// handler; the message is dropped and the error text is logged at debug.
type Predicate func(s *Session) error

// Handler processes one decoded message for a session.
type Handler func(ctx context.Context, s *Session, msg packets.Message) error

type route struct {
	predicates []Predicate
	handler    Handler
}

// Dispatcher routes decoded messages to handlers based on their type,
// gating each route behind its registered predicates. The route table is
// built once at startup and read-only afterwards, so Dispatch needs no
// locking.
type Dispatcher struct {
	logger *logrus.Logger
	routes map[packets.Type]route
}

func NewDispatcher(logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		logger: logger,
		routes: make(map[packets.Type]route),
	}
}

// Register installs a handler for a message type. Registering the same type
// twice is a programming error and panics at startup.
func (d *Dispatcher) Register(t packets.Type, handler Handler, predicates ...Predicate) {
	if _, ok := d.routes[t]; ok {
		panic(fmt.Sprintf("duplicate handler registered for message type 0x%04x", uint16(t)))
	}
	d.routes[t] = route{predicates: predicates, handler: handler}
}

// Dispatch runs the route for msg's type. Messages with no route and
// messages vetoed by a predicate are dropped without a reply; only handler
// errors propagate to the caller. Called synchronously from each
// connection's read loop, which is what guarantees per-session ordering.
func (d *Dispatcher) Dispatch(ctx context.Context, s *Session, msg packets.Message) error {
	r, ok := d.routes[msg.PacketType()]
	if !ok {
		d.logger.Debugf("no handler for message type 0x%04x on %s session", uint16(msg.PacketType()), s.Kind)
		return nil
	}
	for _, pred := range r.predicates {
		if err := pred(s); err != nil {
			d.logger.Debugf("dropping message type 0x%04x on %s session: %v", uint16(msg.PacketType()), s.Kind, err)
			return nil
		}
	}
	return r.handler(ctx, s, msg)
}
