package game

import (
	"errors"
	"sync"
	"time"

	"github.com/slipgate-emu/slipgate/internal/packets"
)

var (
	ErrRoomFull      = errors.New("room is full")
	ErrWrongPassword = errors.New("wrong room password")
	ErrNotInRoom     = errors.New("player is not a member of this room")
)

type roomMember struct {
	player *Player
	// joinSeq orders members by arrival. Host/master promotion picks the
	// lowest surviving sequence, which makes re-election deterministic.
	joinSeq uint64
}

// Room is one match instance inside a channel. It owns its team partition,
// its relay peer group, and a game-rule instance. All membership mutation
// happens under the room lock; a leave triggered by a disconnect and one
// triggered by the maintenance sweep serialize here.
type Room struct {
	ID      uint32
	channel *Channel

	mu sync.Mutex

	options packets.RoomOptions
	members map[uint64]*roomMember
	nextSeq uint64

	host   *Player
	master *Player

	teams *TeamManager
	rule  GameRule

	// peers is the relay peer group: every relay session wired for direct
	// player-to-player transport in this match.
	peers map[uint64]*Session
}

func newRoom(id uint32, channel *Channel, options packets.RoomOptions) *Room {
	if options.PlayerLimit <= 0 {
		options.PlayerLimit = 8
	}
	return &Room{
		ID:      id,
		channel: channel,
		options: options,
		members: make(map[uint64]*roomMember),
		teams:   NewTeamManager(),
		rule:    NewDeathmatchRule(time.Duration(options.TimeLimitMin) * time.Minute),
		peers:   make(map[uint64]*Session),
	}
}

func (r *Room) Channel() *Channel { return r.channel }

func (r *Room) Options() packets.RoomOptions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.options
}

// SetOptions replaces the room's creation options. Gated by the dispatcher
// to the room master while the room is waiting.
func (r *Room) SetOptions(options packets.RoomOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	options.PlayerLimit = r.options.PlayerLimit
	r.options = options
}

func (r *Room) Host() *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.host
}

func (r *Room) Master() *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.master
}

// Phase returns the current phase of the room's game rule.
func (r *Room) Phase() Phase {
	return r.rule.Phase()
}

// InPhase reports whether the room's rule is currently in the given phase.
func (r *Room) InPhase(p Phase) bool {
	return r.rule.Phase() == p
}

// Join adds a player to the room, assigning a team and broadcasting the
// arrival. The first member becomes both host and master.
func (r *Room) Join(p *Player, password string) error {
	r.mu.Lock()
	if r.options.Password != "" && r.options.Password != password {
		r.mu.Unlock()
		return ErrWrongPassword
	}
	if len(r.members) >= r.options.PlayerLimit {
		r.mu.Unlock()
		return ErrRoomFull
	}

	r.nextSeq++
	r.members[p.AccountID()] = &roomMember{player: p, joinSeq: r.nextSeq}
	team := r.teams.Assign(p)

	if r.host == nil {
		r.host = p
	}
	if r.master == nil {
		r.master = p
	}

	p.setRoom(r)
	p.setRoomState(StateLobby)
	p.setConnecting(true)

	joined := &packets.RoomPlayerJoinedAck{
		AccountID: p.AccountID(),
		Nickname:  p.Nickname(),
		Team:      uint8(team),
	}
	members := r.memberSnapshotLocked()
	r.mu.Unlock()

	for _, m := range members {
		if s := m.Session(SessionGame); s != nil {
			_ = s.Send(joined)
		}
	}
	return nil
}

// Leave removes a player from the room: team membership and room-scoped
// player state are cleared before the room reference, and the host/master
// roles are re-elected if the departing player held them. The caller is
// responsible for removing the room from its channel once empty (see
// Channel.RemoveRoomIfEmpty), which keeps lock ordering one-directional.
func (r *Room) Leave(p *Player) error {
	r.mu.Lock()
	if _, ok := r.members[p.AccountID()]; !ok {
		r.mu.Unlock()
		return ErrNotInRoom
	}

	delete(r.members, p.AccountID())
	r.teams.Leave(p)
	delete(r.peers, p.AccountID())
	p.clearRoomLinks()

	var hostChange, masterChange *Player
	if r.host == p {
		r.host = r.earliestMemberLocked()
		hostChange = r.host
	}
	if r.master == p {
		r.master = r.earliestMemberLocked()
		masterChange = r.master
	}

	members := r.memberSnapshotLocked()
	peers := r.peerSnapshotLocked()
	leaverRelay := p.Session(SessionRelay)
	r.mu.Unlock()

	r.rule.OnLeave(p)

	left := &packets.RoomPlayerLeftAck{AccountID: p.AccountID()}
	for _, m := range members {
		if s := m.Session(SessionGame); s != nil {
			_ = s.Send(left)
		}
	}
	if leaverRelay != nil {
		gone := &packets.RelayLeavePeerAck{HostID: leaverRelay.HostID, AccountID: p.AccountID()}
		for _, s := range peers {
			_ = s.Send(gone)
		}
	}
	if hostChange != nil {
		r.Broadcast(&packets.RoomHostChangeAck{AccountID: hostChange.AccountID()})
	}
	if masterChange != nil {
		r.Broadcast(&packets.RoomMasterChangeAck{AccountID: masterChange.AccountID()})
	}

	return nil
}

// earliestMemberLocked returns the longest-tenured remaining member, or nil
// if the room is empty.
func (r *Room) earliestMemberLocked() *Player {
	var best *roomMember
	for _, m := range r.members {
		if best == nil || m.joinSeq < best.joinSeq {
			best = m
		}
	}
	if best == nil {
		return nil
	}
	return best.player
}

// Contains reports whether the player is currently a member.
func (r *Room) Contains(p *Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[p.AccountID()]
	return ok
}

// Members returns a snapshot of the room's players.
func (r *Room) Members() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.memberSnapshotLocked()
}

func (r *Room) memberSnapshotLocked() []*Player {
	members := make([]*Player, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, m.player)
	}
	return members
}

// MemberCount returns the number of players in the room.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Teams exposes the team partition. Callers must hold no room-derived
// snapshots across mutations; the room lock guards the manager.
func (r *Room) MoveTeam(p *Player, team TeamID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[p.AccountID()]; !ok {
		return ErrNotInRoom
	}
	r.teams.Move(p, team)
	return nil
}

// TeamOf returns the side the player is on.
func (r *Room) TeamOf(p *Player) (TeamID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.teams.TeamOf(p)
}

// TeamMembers returns the players on one side.
func (r *Room) TeamMembers(team TeamID) []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.teams.Members(team)
}

// TeamIDs returns the sides in use.
func (r *Room) TeamIDs() []TeamID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.teams.Teams()
}

// DropFromTeams removes a player from the team partition without touching
// room membership. Used by the maintenance sweep, which removes stale
// members one layer at a time.
func (r *Room) DropFromTeams(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teams.Leave(p)
}

// BeginRound snapshots the current membership and hands it to the rule.
func (r *Room) BeginRound() error {
	r.mu.Lock()
	members := r.memberSnapshotLocked()
	r.mu.Unlock()

	for _, m := range members {
		m.resetRoundScore()
		m.setRoomState(StatePlaying)
	}
	return r.rule.BeginRound(members)
}

// LoadingComplete forwards a member's loading completion to the rule.
func (r *Room) LoadingComplete(p *Player) {
	r.rule.LoadingComplete(p)
}

// AddPeer registers a relay session in the room's peer group.
func (r *Room) AddPeer(p *Player, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[p.AccountID()] = s
}

// RemovePeer drops an account's relay session from the peer group.
func (r *Room) RemovePeer(accountID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, accountID)
}

// Peers returns a snapshot of the relay peer group.
func (r *Room) Peers() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peerSnapshotLocked()
}

func (r *Room) peerSnapshotLocked() []*Session {
	peers := make([]*Session, 0, len(r.peers))
	for _, s := range r.peers {
		peers = append(peers, s)
	}
	return peers
}

// Broadcast sends a message to every member's game session.
func (r *Room) Broadcast(msg packets.Message) {
	for _, m := range r.Members() {
		if s := m.Session(SessionGame); s != nil {
			_ = s.Send(msg)
		}
	}
}

// OnPlayerJoined raises the room-join event consumed by game-mode logic.
// Only called once a relay peer is fully wired.
func (r *Room) OnPlayerJoined(p *Player) {
	r.rule.OnJoin(p)
}

// Update advances the room's rule. Driven by the owning channel's tick.
func (r *Room) Update(delta time.Duration) {
	r.rule.Update(delta)
}
