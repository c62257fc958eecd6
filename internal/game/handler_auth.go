package game

import (
	"context"
	"errors"
	"time"

	"github.com/slipgate-emu/slipgate/internal/core/auth"
	"github.com/slipgate-emu/slipgate/internal/core/data"
	"github.com/slipgate-emu/slipgate/internal/core/ticket"
	"github.com/slipgate-emu/slipgate/internal/packets"
)

// Accounts at or above this security level are flagged as GMs to the client.
const gmSecurityLevel = 90

// handleGameLogin runs the full login sequence for a game session. Failure
// replies carry a result code and leave the connection open; the client is
// expected to disconnect on its own. The result-code quirks (missing
// account and active ban both answering SessionTimeout) are wire behavior
// the launcher depends on.
func (e *Engine) handleGameLogin(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.LoginRequest)
	log := e.accountLogger(req.AccountID)

	ack := func(result packets.LoginResult) error {
		return s.Send(&packets.LoginAck{Result: result, AccountID: req.AccountID})
	}

	if s.IsLoggedIn() {
		return ack(packets.LoginAlreadyOnline)
	}
	if e.cfg.PlayerLimit > 0 && e.registry.Count() >= e.cfg.PlayerLimit {
		return ack(packets.LoginServerFull)
	}

	account, err := data.FindAccountByID(e.db, req.AccountID)
	if err != nil {
		log.Errorf("looking up account: %v", err)
		return ack(packets.LoginSessionTimeout)
	}
	if account == nil {
		return ack(packets.LoginSessionTimeout)
	}

	if req.AuthToken != auth.DeriveLoginToken(account.Username, account.Password, req.Datetime) ||
		req.SecondaryToken != auth.DeriveSecondaryToken(account.Username, account.Password, req.Datetime) {
		log.Debug("login token chain mismatch")
		return ack(packets.LoginSessionTimeout)
	}

	// The launcher stashes the auth token in redis when it hands the client
	// off. A missing ticket means the hand-off lapsed; a stale one means the
	// client is replaying an old session.
	stored, err := e.tickets.Get(ctx, req.AccountID)
	if errors.Is(err, ticket.ErrNotFound) {
		return ack(packets.LoginSessionExpired)
	}
	if err != nil {
		log.Errorf("fetching session ticket: %v", err)
		return ack(packets.LoginSessionTimeout)
	}
	if stored != req.AuthToken {
		return ack(packets.LoginSessionTimeout)
	}

	if account.IsBanned(time.Now()) {
		return ack(packets.LoginSessionTimeout)
	}
	if account.SecurityLevel < e.cfg.SecurityLevel {
		return ack(packets.LoginInsufficientSecurity)
	}

	if req.KickExisting {
		if old := e.registry.Kick(account.ID); old != nil {
			e.evictPlayer(old)
		}
	}

	if account.Nickname == "" {
		if err := data.UpdateAccountNickname(e.db, account, account.Username); err != nil {
			log.Errorf("adopting nickname: %v", err)
		}
	}

	record, err := data.FindPlayerRecord(e.db, account.ID)
	if err != nil {
		log.Errorf("loading player record: %v", err)
		return ack(packets.LoginSessionTimeout)
	}
	if record == nil {
		record = &data.PlayerRecord{
			AccountID:       account.ID,
			Level:           e.cfg.Game.StartLevel,
			TotalExperience: e.resources.ExperienceForLevel(e.cfg.Game.StartLevel),
			PEN:             e.cfg.Game.StartPEN,
			AP:              e.cfg.Game.StartAP,
		}
		if err := data.CreatePlayerRecord(e.db, record); err != nil {
			log.Errorf("creating player record: %v", err)
			return ack(packets.LoginSessionTimeout)
		}
	}
	items, err := data.FindPlayerItems(e.db, account.ID)
	if err != nil {
		log.Errorf("loading inventory: %v", err)
		return ack(packets.LoginSessionTimeout)
	}
	denyList, err := data.FindDenyEntries(e.db, account.ID)
	if err != nil {
		log.Errorf("loading deny list: %v", err)
		return ack(packets.LoginSessionTimeout)
	}

	player := NewPlayer(account, record, items, denyList, s)
	if err := e.registry.Add(player); err != nil {
		return ack(packets.LoginAlreadyOnline)
	}

	player.setLoggedIn(true)
	s.setPlayer(player)
	e.untrackPending(s)

	if err := ack(packets.LoginOK); err != nil {
		return err
	}
	log.WithField("nickname", player.Nickname()).Info("player logged in")

	return e.sendLoginSnapshot(s, player, account)
}

// sendLoginSnapshot pushes the post-login state the client renders its
// lobby from: inventory, currency balances, and the account summary.
func (e *Engine) sendLoginSnapshot(s *Session, player *Player, account *data.Account) error {
	items := player.Items()
	inventory := &packets.InventoryInfoAck{Items: make([]packets.ItemInfo, 0, len(items))}
	for _, item := range items {
		expire := int64(-1)
		if !item.ExpireAt.IsZero() {
			expire = item.ExpireAt.Unix()
		}
		inventory.Items = append(inventory.Items, packets.ItemInfo{
			ID:         item.ID,
			ItemNumber: item.ItemNumber,
			Count:      item.Count,
			ExpireTime: expire,
		})
	}
	if err := s.Send(inventory); err != nil {
		return err
	}

	record := player.Record()
	if err := s.Send(&packets.CashInfoAck{PEN: record.PEN, AP: record.AP}); err != nil {
		return err
	}

	return s.Send(&packets.AccountInfoAck{
		Nickname:    player.Nickname(),
		Level:       e.resources.LevelForExperience(record.TotalExperience),
		TotalExp:    record.TotalExperience,
		TotalWins:   record.TotalWins,
		TotalLosses: record.TotalLosses,
		IsGM:        account.SecurityLevel >= gmSecurityLevel,
	})
}

// evictPlayer force-closes a player's game session after notifying it that
// a newer login displaced it. The closing connection's read loop performs
// the actual state teardown, so room and channel membership may lag the
// registry removal briefly; the membership sweep covers the gap.
func (e *Engine) evictPlayer(p *Player) {
	if s := p.Session(SessionGame); s != nil {
		_ = s.Send(&packets.LoginAck{Result: packets.LoginKickedExisting, AccountID: p.AccountID()})
		_ = s.Close()
	}
	p.setLoggedIn(false)
}
