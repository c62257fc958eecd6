package game

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slipgate-emu/slipgate/internal/packets"
)

// SessionKind identifies which transport a session belongs to. A logical
// player may hold up to one session of each kind at a time.
type SessionKind int

const (
	SessionGame SessionKind = iota
	SessionChat
	SessionRelay
)

func (k SessionKind) String() string {
	switch k {
	case SessionGame:
		return "game"
	case SessionChat:
		return "chat"
	case SessionRelay:
		return "relay"
	}
	return "unknown"
}

// Session is one live client connection. It is created by the frontend on
// accept and owns nothing but the connection itself; the Player it belongs
// to is attached by the login handler for its kind.
type Session struct {
	ID          uuid.UUID
	Kind        SessionKind
	ConnectedAt time.Time

	// HostID is the identity peers use to address each other through the
	// relay. Only meaningful for relay sessions.
	HostID uint32

	conn net.Conn

	mu     sync.Mutex
	player *Player
	closed bool
}

func NewSession(kind SessionKind, conn net.Conn) *Session {
	id := uuid.New()
	return &Session{
		ID:          id,
		Kind:        kind,
		ConnectedAt: time.Now(),
		HostID:      id.ID(),
		conn:        conn,
	}
}

// Player returns the logical player this session is attached to, or nil if
// the session has not completed login.
func (s *Session) Player() *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

func (s *Session) setPlayer(p *Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = p
}

// IsLoggedIn reports whether the session is attached to a logged-in player.
func (s *Session) IsLoggedIn() bool {
	p := s.Player()
	return p != nil && p.IsLoggedIn()
}

// RemoteAddr returns the remote endpoint of the connection.
func (s *Session) RemoteAddr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.RemoteAddr()
}

// RemoteIP returns only the address portion of the remote endpoint. Used for
// the cross-session anti-spoofing check, which must ignore the port since
// each transport dials from a different one.
func (s *Session) RemoteIP() string {
	addr := s.RemoteAddr()
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// Read reads raw bytes from the connection. Only the session's read loop
// calls this, so it takes no lock.
func (s *Session) Read(b []byte) (int, error) {
	if s.conn == nil {
		return 0, net.ErrClosed
	}
	return s.conn.Read(b)
}

// Send encodes msg and writes the frame to the connection. Safe for
// concurrent use; writes are serialized per session.
func (s *Session) Send(msg packets.Message) error {
	frame, err := packets.Marshal(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.conn == nil {
		return net.ErrClosed
	}
	_, err = s.conn.Write(frame)
	return err
}

// Close shuts the connection down. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
