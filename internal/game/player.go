package game

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/slipgate-emu/slipgate/internal/core/data"
)

// RoomState tracks what a player is doing within its current room.
type RoomState int

const (
	StateLobby RoomState = iota
	StateReady
	StatePlaying
	StateSpectating
)

// Player is the logical identity for one connected account. It exists from
// successful game login until game-session disconnect (or kick) and caches
// the persistent records for the lifetime of the session.
type Player struct {
	// Immutable after construction.
	Account *data.Account

	mu sync.Mutex

	record   *data.PlayerRecord
	items    []data.PlayerItem
	denyList []data.DenyEntry

	loggedIn bool
	loginAt  time.Time

	gameSession  *Session
	chatSession  *Session
	relaySession *Session

	channel *Channel
	room    *Room

	roomState  RoomState
	connecting bool
	ready      bool

	// Round-scoped scratch state, reset when a round begins.
	kills  uint32
	deaths uint32
}

func NewPlayer(account *data.Account, record *data.PlayerRecord, items []data.PlayerItem, denyList []data.DenyEntry, gameSession *Session) *Player {
	return &Player{
		Account:     account,
		record:      record,
		items:       items,
		denyList:    denyList,
		gameSession: gameSession,
		loginAt:     time.Now(),
	}
}

func (p *Player) AccountID() uint64 { return p.Account.ID }

func (p *Player) Nickname() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Account.Nickname
}

func (p *Player) IsLoggedIn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loggedIn
}

func (p *Player) setLoggedIn(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loggedIn = v
}

func (p *Player) Record() *data.PlayerRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.record
}

// ClubID returns the player's club affiliation, zero when unaffiliated.
func (p *Player) ClubID() uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.record.ClubID
}

// setCurrentCharacter records the costume slot the player selected. Written
// back with the rest of the record on the next save.
func (p *Player) setCurrentCharacter(slot int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record.CurrentCharacter = slot
}

func (p *Player) Items() []data.PlayerItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items
}

func (p *Player) DenyList() []data.DenyEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.denyList
}

func (p *Player) setDenyList(entries []data.DenyEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denyList = entries
}

// Session returns the player's session of the given kind, or nil.
func (p *Player) Session(kind SessionKind) *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch kind {
	case SessionGame:
		return p.gameSession
	case SessionChat:
		return p.chatSession
	case SessionRelay:
		return p.relaySession
	}
	return nil
}

func (p *Player) setSession(kind SessionKind, s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch kind {
	case SessionGame:
		p.gameSession = s
	case SessionChat:
		p.chatSession = s
	case SessionRelay:
		p.relaySession = s
	}
}

func (p *Player) Channel() *Channel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel
}

func (p *Player) setChannel(c *Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channel = c
}

func (p *Player) Room() *Room {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.room
}

func (p *Player) setRoom(r *Room) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.room = r
}

func (p *Player) RoomState() RoomState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roomState
}

func (p *Player) setRoomState(s RoomState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roomState = s
}

// Connecting reports whether the player is still wiring up its relay session
// for the current room. Game-mode logic must never observe a half-joined
// relay peer, so this stays true until the peer exchange has completed.
func (p *Player) Connecting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connecting
}

func (p *Player) setConnecting(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connecting = v
}

func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

func (p *Player) setReady(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = v
}

// AddKill increments the player's round score and returns the new totals.
func (p *Player) AddKill() (kills, deaths uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kills++
	return p.kills, p.deaths
}

// AddDeath increments the player's round deaths and returns the new totals.
func (p *Player) AddDeath() (kills, deaths uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deaths++
	return p.kills, p.deaths
}

func (p *Player) resetRoundScore() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kills, p.deaths = 0, 0
}

// clearRoomLinks resets everything scoped to room membership. Called by the
// room while removing the player so that room state is never visible on a
// player that is no longer a member.
func (p *Player) clearRoomLinks() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.room = nil
	p.roomState = StateLobby
	p.ready = false
	p.connecting = false
}

// Save writes the player's persistent state back to the database. Play time
// is accumulated from the current login session.
func (p *Player) Save(db *gorm.DB) error {
	p.mu.Lock()
	record := *p.record
	record.PlayTimeSeconds += uint64(time.Since(p.loginAt).Seconds())
	p.mu.Unlock()

	if err := data.SavePlayerRecord(db, &record); err != nil {
		return err
	}

	p.mu.Lock()
	p.record.PlayTimeSeconds = record.PlayTimeSeconds
	p.loginAt = time.Now()
	p.mu.Unlock()
	return nil
}
