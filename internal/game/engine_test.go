package game

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/slipgate-emu/slipgate/internal/core"
	"github.com/slipgate-emu/slipgate/internal/core/auth"
	"github.com/slipgate-emu/slipgate/internal/core/data"
	"github.com/slipgate-emu/slipgate/internal/core/ticket"
	"github.com/slipgate-emu/slipgate/internal/packets"
)

type fakeAddr string

func (a fakeAddr) Network() string { return "tcp" }
func (a fakeAddr) String() string  { return string(a) }

// fakeConn captures everything written to it so tests can decode the frames
// a handler sent. Reads report EOF immediately; tests drive the dispatcher
// directly rather than through a read loop.
type fakeConn struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	remote string
	closed bool
}

func newFakeConn(remote string) *fakeConn {
	return &fakeConn{remote: remote}
}

func (c *fakeConn) Read(b []byte) (int, error) { return 0, io.EOF }

func (c *fakeConn) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(b)
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) LocalAddr() net.Addr                { return fakeAddr("127.0.0.1:0") }
func (c *fakeConn) RemoteAddr() net.Addr               { return fakeAddr(c.remote) }
func (c *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

// sentMessages decodes and drains every frame written to the connection.
func (c *fakeConn) sentMessages(t *testing.T) []packets.Message {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var msgs []packets.Message
	for c.buf.Len() > 0 {
		header := c.buf.Bytes()[:packets.HeaderSize]
		size, _ := packets.PeekHeader(header)
		frame := make([]byte, size)
		if _, err := c.buf.Read(frame); err != nil {
			t.Fatalf("reading frame from fake conn: %s", err)
		}
		msg, err := packets.Unmarshal(frame)
		if err != nil {
			t.Fatalf("decoding frame from fake conn: %s", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func testConfig() *core.Config {
	cfg := &core.Config{}
	cfg.PlayerLimit = 8
	cfg.SecurityLevel = 0
	cfg.Game.NumChannels = 2
	cfg.Game.ChannelPlayerLimit = 16
	cfg.Game.StartLevel = 1
	cfg.Game.StartPEN = 5000
	cfg.Game.StartAP = 0
	cfg.Maintenance.TickInterval = 100 * time.Millisecond
	cfg.Maintenance.LoginGraceWindow = 5 * time.Minute
	cfg.Maintenance.SaveInterval = time.Minute
	return cfg
}

type testEnv struct {
	engine  *Engine
	db      *gorm.DB
	mini    *miniredis.Miniredis
	tickets *ticket.Store
}

func setUpEngine(t *testing.T) *testEnv {
	t.Helper()

	testDBFile := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(testDBFile))
	if err != nil {
		t.Fatalf("error initializing test database: %s", err)
	}
	if err = data.Migrate(db); err != nil {
		t.Fatalf("error auto migrating db: %s", err)
	}

	mini := miniredis.RunT(t)
	tickets := ticket.NewWithClient(redis.NewClient(&redis.Options{Addr: mini.Addr()}), time.Hour)
	t.Cleanup(func() { _ = tickets.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &testEnv{
		engine:  NewEngine(testConfig(), logger, db, tickets),
		db:      db,
		mini:    mini,
		tickets: tickets,
	}
}

const testDatetime = "2025-06-01 12:00:00"

// createTestAccount inserts an account and stores its session ticket, the
// state a client is in right after the launcher hand-off.
func (env *testEnv) createTestAccount(t *testing.T, username string) *data.Account {
	t.Helper()
	account, err := auth.CreateAccount(env.db, username, "hunter2")
	if err != nil {
		t.Fatalf("error creating test account: %s", err)
	}
	token := auth.DeriveLoginToken(account.Username, account.Password, testDatetime)
	if err := env.tickets.Put(context.Background(), account.ID, token); err != nil {
		t.Fatalf("error storing test ticket: %s", err)
	}
	return account
}

func loginRequestFor(account *data.Account) *packets.LoginRequest {
	return &packets.LoginRequest{
		AccountID:      account.ID,
		Username:       account.Username,
		Datetime:       testDatetime,
		AuthToken:      auth.DeriveLoginToken(account.Username, account.Password, testDatetime),
		SecondaryToken: auth.DeriveSecondaryToken(account.Username, account.Password, testDatetime),
	}
}

// loginTestPlayer runs a full game login for a fresh account and returns the
// logged-in player with its session and connection.
func (env *testEnv) loginTestPlayer(t *testing.T, username, remoteAddr string) (*Player, *Session, *fakeConn) {
	t.Helper()

	account := env.createTestAccount(t, username)
	conn := newFakeConn(remoteAddr)
	session := NewSession(SessionGame, conn)
	env.engine.TrackPending(session)

	err := env.engine.Dispatcher(SessionGame).Dispatch(context.Background(), session, loginRequestFor(account))
	if err != nil {
		t.Fatalf("error dispatching login for %s: %s", username, err)
	}

	msgs := conn.sentMessages(t)
	if len(msgs) == 0 {
		t.Fatalf("no login reply for %s", username)
	}
	ack, ok := msgs[0].(*packets.LoginAck)
	if !ok {
		t.Fatalf("expected LoginAck for %s, got %T", username, msgs[0])
	}
	if ack.Result != packets.LoginOK {
		t.Fatalf("login for %s failed with result %d", username, ack.Result)
	}

	player := session.Player()
	if player == nil {
		t.Fatalf("session for %s has no player after login", username)
	}
	return player, session, conn
}

// attachSession links a chat or relay session to an already logged-in
// player by running the corresponding login handler.
func (env *testEnv) attachSession(t *testing.T, p *Player, kind SessionKind, remoteAddr string) (*Session, *fakeConn) {
	t.Helper()

	conn := newFakeConn(remoteAddr)
	session := NewSession(kind, conn)

	var msg packets.Message
	switch kind {
	case SessionChat:
		msg = &packets.ChatLoginRequest{AccountID: p.AccountID()}
	case SessionRelay:
		roomID := uint32(0)
		if room := p.Room(); room != nil {
			roomID = room.ID
		}
		msg = &packets.RelayLoginRequest{AccountID: p.AccountID(), RoomID: roomID}
	default:
		t.Fatalf("attachSession does not support %s sessions", kind)
	}

	if err := env.engine.Dispatcher(kind).Dispatch(context.Background(), session, msg); err != nil {
		t.Fatalf("error dispatching %s login: %s", kind, err)
	}
	return session, conn
}

// joinChannelAndRoom walks a player into the first channel and a fresh room.
func (env *testEnv) joinChannelAndRoom(t *testing.T, p *Player) *Room {
	t.Helper()

	channel := env.engine.Channels().All()[0]
	if err := channel.Join(p); err != nil {
		t.Fatalf("error joining channel: %s", err)
	}
	room, err := channel.CreateRoom(p, packets.RoomOptions{Name: "test room", PlayerLimit: 4})
	if err != nil {
		t.Fatalf("error creating room: %s", err)
	}
	return room
}

func messageOfType[T packets.Message](t *testing.T, msgs []packets.Message) T {
	t.Helper()
	for _, msg := range msgs {
		if typed, ok := msg.(T); ok {
			return typed
		}
	}
	var zero T
	t.Fatalf("no %T in %s", zero, describeMessages(msgs))
	return zero
}

func describeMessages(msgs []packets.Message) string {
	names := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		names = append(names, fmt.Sprintf("%T", msg))
	}
	return fmt.Sprintf("%v", names)
}
