package game

import (
	"errors"
	"sync"
	"time"

	"github.com/slipgate-emu/slipgate/internal/core"
	"github.com/slipgate-emu/slipgate/internal/packets"
)

var (
	ErrChannelFull    = errors.New("channel is full")
	ErrStillInRoom    = errors.New("player must leave their room first")
	ErrUnknownRoom    = errors.New("no such room in this channel")
	ErrAlreadyJoined  = errors.New("player is already in this channel")
	ErrNotInChannel   = errors.New("player is not in this channel")
	ErrUnknownChannel = errors.New("no such channel")
)

// Channel is one lobby partition of the server. It owns the rooms created
// inside it and tracks which players are currently in the lobby. Lock
// ordering is channel before room; Room methods never call back into their
// channel while holding the room lock.
type Channel struct {
	ID          uint32
	Name        string
	PlayerLimit int

	mu         sync.Mutex
	players    map[uint64]*Player
	rooms      map[uint32]*Room
	nextRoomID uint32
}

func NewChannel(id uint32, name string, playerLimit int) *Channel {
	return &Channel{
		ID:          id,
		Name:        name,
		PlayerLimit: playerLimit,
		players:     make(map[uint64]*Player),
		rooms:       make(map[uint32]*Room),
	}
}

// Join places a player in the channel's lobby.
func (c *Channel) Join(p *Player) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.players[p.AccountID()]; ok {
		return ErrAlreadyJoined
	}
	if c.PlayerLimit > 0 && len(c.players) >= c.PlayerLimit {
		return ErrChannelFull
	}
	c.players[p.AccountID()] = p
	p.setChannel(c)
	return nil
}

// Leave removes a player from the lobby. Players still inside a room must
// drop out of the room first so that room-scoped state is torn down in
// order.
func (c *Channel) Leave(p *Player) error {
	if p.Room() != nil {
		return ErrStillInRoom
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.players[p.AccountID()]; !ok {
		return ErrNotInChannel
	}
	delete(c.players, p.AccountID())
	p.setChannel(nil)
	return nil
}

// Contains reports whether the player is in this channel.
func (c *Channel) Contains(p *Player) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.players[p.AccountID()]
	return ok
}

// PlayerCount returns the number of players currently in the channel.
func (c *Channel) PlayerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.players)
}

// Players returns a snapshot of the channel's players.
func (c *Channel) Players() []*Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	players := make([]*Player, 0, len(c.players))
	for _, p := range c.players {
		players = append(players, p)
	}
	return players
}

// CreateRoom allocates a room with the next free identifier and joins the
// creator to it. The creator becomes host and master.
func (c *Channel) CreateRoom(p *Player, options packets.RoomOptions) (*Room, error) {
	c.mu.Lock()
	if _, ok := c.players[p.AccountID()]; !ok {
		c.mu.Unlock()
		return nil, ErrNotInChannel
	}
	c.nextRoomID++
	room := newRoom(c.nextRoomID, c, options)
	c.rooms[room.ID] = room
	c.mu.Unlock()

	if err := room.Join(p, options.Password); err != nil {
		c.mu.Lock()
		delete(c.rooms, room.ID)
		c.mu.Unlock()
		return nil, err
	}
	return room, nil
}

// Room returns the room with the given identifier.
func (c *Channel) Room(id uint32) (*Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, ok := c.rooms[id]
	if !ok {
		return nil, ErrUnknownRoom
	}
	return room, nil
}

// Rooms returns a snapshot of the channel's rooms.
func (c *Channel) Rooms() []*Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	rooms := make([]*Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// RemoveRoomIfEmpty drops a room from the channel once its last member has
// left. Takes the channel lock first, then inspects the room, preserving
// the channel-before-room ordering.
func (c *Channel) RemoveRoomIfEmpty(room *Room) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.rooms[room.ID]; !ok || existing != room {
		return false
	}
	if room.MemberCount() > 0 {
		return false
	}
	delete(c.rooms, room.ID)
	return true
}

// Broadcast sends a message to the game session of every player in the
// channel, including those inside rooms.
func (c *Channel) Broadcast(msg packets.Message) {
	for _, p := range c.Players() {
		if s := p.Session(SessionGame); s != nil {
			_ = s.Send(msg)
		}
	}
}

// Update runs periodic channel bookkeeping: empty rooms are swept out and
// every surviving room's rule is advanced.
func (c *Channel) Update(delta time.Duration) {
	for _, room := range c.Rooms() {
		if c.RemoveRoomIfEmpty(room) {
			continue
		}
		room.Update(delta)
	}
}

// Info builds the wire representation of the channel for channel lists.
func (c *Channel) Info() packets.ChannelInfo {
	return packets.ChannelInfo{
		ID:            c.ID,
		Name:          c.Name,
		PlayersOnline: c.PlayerCount(),
		PlayerLimit:   c.PlayerLimit,
	}
}

// ChannelManager holds the server's fixed channel set, built once at
// startup from configuration.
type ChannelManager struct {
	channels []*Channel
}

func NewChannelManager(cfg *core.Config) *ChannelManager {
	m := &ChannelManager{}
	for i := 0; i < cfg.Game.NumChannels; i++ {
		m.channels = append(m.channels, NewChannel(
			uint32(i+1),
			channelName(i),
			cfg.Game.ChannelPlayerLimit,
		))
	}
	return m
}

func channelName(index int) string {
	return "Channel " + string(rune('A'+index%26))
}

// Get returns the channel with the given identifier.
func (m *ChannelManager) Get(id uint32) (*Channel, error) {
	for _, c := range m.channels {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, ErrUnknownChannel
}

// All returns the channels in identifier order.
func (m *ChannelManager) All() []*Channel {
	return m.channels
}
