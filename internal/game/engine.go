package game

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/slipgate-emu/slipgate/internal/core"
	"github.com/slipgate-emu/slipgate/internal/core/ticket"
	"github.com/slipgate-emu/slipgate/internal/packets"
)

// Engine is the shared state behind all three transports: the registry of
// online players, the channel/room hierarchy, and the dispatchers that gate
// and route each transport's messages. One Engine instance serves every
// connection.
type Engine struct {
	cfg       *core.Config
	logger    *logrus.Logger
	db        *gorm.DB
	tickets   *ticket.Store
	resources *Resources

	registry *Registry
	channels *ChannelManager

	game  *Dispatcher
	chat  *Dispatcher
	relay *Dispatcher

	// pending tracks sessions that have connected but not yet logged in,
	// so the maintenance sweep can reap the ones that never do.
	pendingMu sync.Mutex
	pending   map[*Session]struct{}

	saveTimer time.Duration
}

func NewEngine(cfg *core.Config, logger *logrus.Logger, db *gorm.DB, tickets *ticket.Store) *Engine {
	e := &Engine{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		tickets:   tickets,
		resources: NewResources(),
		registry:  NewRegistry(),
		channels:  NewChannelManager(cfg),
		game:      NewDispatcher(logger),
		chat:      NewDispatcher(logger),
		relay:     NewDispatcher(logger),
		pending:   make(map[*Session]struct{}),
	}
	e.registerGameRoutes()
	e.registerChatRoutes()
	e.registerRelayRoutes()
	return e
}

func (e *Engine) Registry() *Registry       { return e.registry }
func (e *Engine) Channels() *ChannelManager { return e.channels }

func (e *Engine) Dispatcher(kind SessionKind) *Dispatcher {
	switch kind {
	case SessionGame:
		return e.game
	case SessionChat:
		return e.chat
	case SessionRelay:
		return e.relay
	}
	return nil
}

func (e *Engine) registerGameRoutes() {
	e.game.Register(packets.LoginRequestType, e.handleGameLogin)
	e.game.Register(packets.ChannelListRequestType, e.handleChannelList, MustBeLoggedIn)
	e.game.Register(packets.ChannelEnterType, e.handleChannelEnter, MustBeLoggedIn)
	e.game.Register(packets.ChannelLeaveType, e.handleChannelLeave, MustBeLoggedIn, MustBeInChannel)
	e.game.Register(packets.RoomMakeType, e.handleRoomMake, MustBeLoggedIn, MustBeInChannel, MustNotBeInRoom)
	e.game.Register(packets.RoomEnterType, e.handleRoomEnter, MustBeLoggedIn, MustBeInChannel, MustNotBeInRoom)
	e.game.Register(packets.RoomLeaveType, e.handleRoomLeave, MustBeLoggedIn, MustBeInChannel, MustBeInRoom)
	e.game.Register(packets.TeamChangeType, e.handleTeamChange, MustBeLoggedIn, MustBeInRoom)
	e.game.Register(packets.ReadyRoundType, e.handleReadyRound, MustBeLoggedIn, MustBeInRoom)
	e.game.Register(packets.BeginRoundType, e.handleBeginRound, MustBeLoggedIn, MustBeInRoom, MustBeRoomMaster)
	e.game.Register(packets.GameLoadingSuccessType, e.handleGameLoadingSuccess, MustBeLoggedIn, MustBeInRoom)
	e.game.Register(packets.AvatarChangeType, e.handleAvatarChange, MustBeLoggedIn, MustBeInRoom)
	e.game.Register(packets.ItemChangeType, e.handleItemChange, MustBeLoggedIn, MustBeInRoom)
	e.game.Register(packets.ChangeRuleNotifyType, e.handleChangeRuleNotify, MustBeLoggedIn, MustBeInRoom, MustBeRoomMaster)
	e.game.Register(packets.ScoreKillType, e.handleScoreKill, MustBeLoggedIn, MustBeInRoom)
	e.game.Register(packets.ScoreSuicideType, e.handleScoreSuicide, MustBeLoggedIn, MustBeInRoom)
}

func (e *Engine) registerChatRoutes() {
	e.chat.Register(packets.ChatLoginType, e.handleChatLogin)
	e.chat.Register(packets.DenyAddType, e.handleDenyAdd, MustBeLoggedIn)
	e.chat.Register(packets.DenyRemoveType, e.handleDenyRemove, MustBeLoggedIn)
	e.chat.Register(packets.WhisperType, e.handleWhisper, MustBeLoggedIn)
}

func (e *Engine) registerRelayRoutes() {
	e.relay.Register(packets.RelayLoginType, e.handleRelayLogin)
}

// TrackPending notes a session that has connected but not logged in. Called
// by the frontend on accept; cleared on login or disconnect.
func (e *Engine) TrackPending(s *Session) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.pending[s] = struct{}{}
}

func (e *Engine) untrackPending(s *Session) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	delete(e.pending, s)
}

func (e *Engine) pendingSnapshot() []*Session {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	sessions := make([]*Session, 0, len(e.pending))
	for s := range e.pending {
		sessions = append(sessions, s)
	}
	return sessions
}

// accountLogger returns a logger scoped to one account's activity.
func (e *Engine) accountLogger(accountID uint64) *logrus.Entry {
	return e.logger.WithField("account_id", accountID)
}

// OnDisconnect tears down whatever state a closing session holds. The order
// matters: room membership first, then channel, then the persisted record,
// then registry presence. A chat or relay session closing only detaches
// itself from the player.
func (e *Engine) OnDisconnect(s *Session) {
	e.untrackPending(s)

	p := s.Player()
	if p == nil {
		return
	}
	s.setPlayer(nil)

	switch s.Kind {
	case SessionChat, SessionRelay:
		if p.Session(s.Kind) == s {
			if s.Kind == SessionRelay {
				if room := p.Room(); room != nil {
					room.RemovePeer(p.AccountID())
				}
			}
			p.setSession(s.Kind, nil)
		}
		return
	}

	// Game session closing ends the player's whole presence.
	if p.Session(SessionGame) != s {
		return
	}

	log := e.accountLogger(p.AccountID())

	if room := p.Room(); room != nil {
		if err := room.Leave(p); err != nil {
			log.Warnf("room teardown on disconnect: %v", err)
		}
		room.Channel().RemoveRoomIfEmpty(room)
	}
	if channel := p.Channel(); channel != nil {
		if err := channel.Leave(p); err != nil {
			log.Warnf("channel teardown on disconnect: %v", err)
		}
	}
	if err := p.Save(e.db); err != nil {
		log.Errorf("saving player on disconnect: %v", err)
	}

	e.registry.Remove(p)
	p.setLoggedIn(false)

	// The linked chat and relay sessions cannot outlive the game session.
	for _, kind := range []SessionKind{SessionChat, SessionRelay} {
		if linked := p.Session(kind); linked != nil {
			linked.setPlayer(nil)
			_ = linked.Close()
			p.setSession(kind, nil)
		}
	}

	log.Info("player disconnected")
}
