package game

import (
	"context"

	"golang.org/x/text/cases"

	"github.com/slipgate-emu/slipgate/internal/core/data"
	"github.com/slipgate-emu/slipgate/internal/packets"
)

// foldNickname normalizes a nickname for lookup. Nicknames are displayed
// as entered but matched case-insensitively.
func foldNickname(nickname string) string {
	return cases.Fold().String(nickname)
}

// handleChatLogin attaches a chat session to an already logged-in player.
// The remote address must match the game session's address; each transport
// dials from a different port, so only the host portion is compared.
func (e *Engine) handleChatLogin(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.ChatLoginRequest)

	ack := func(result packets.ChatLoginResult) error {
		return s.Send(&packets.ChatLoginAck{Result: result})
	}

	p := e.registry.Get(req.AccountID)
	if p == nil || !p.IsLoggedIn() {
		return ack(packets.ChatLoginUnknownPlayer)
	}
	if p.Session(SessionChat) != nil {
		return ack(packets.ChatLoginAlreadyOnline)
	}

	gameSession := p.Session(SessionGame)
	if gameSession == nil || gameSession.RemoteIP() != s.RemoteIP() {
		return ack(packets.ChatLoginInvalidSession)
	}

	s.setPlayer(p)
	p.setSession(SessionChat, s)
	e.untrackPending(s)

	if err := ack(packets.ChatLoginOK); err != nil {
		return err
	}
	if err := e.sendDenyList(s, p); err != nil {
		return err
	}

	e.notifyClubPresence(p)
	return nil
}

// notifyClubPresence tells every online clubmate with a chat session that
// the player came online. Delivery is best effort.
func (e *Engine) notifyClubPresence(p *Player) {
	club := p.ClubID()
	if club == 0 {
		return
	}
	notice := &packets.ClubMemberLoginAck{AccountID: p.AccountID()}
	for _, member := range e.registry.Players() {
		if member == p || member.ClubID() != club {
			continue
		}
		if chat := member.Session(SessionChat); chat != nil {
			_ = chat.Send(notice)
		}
	}
}

func (e *Engine) sendDenyList(s *Session, p *Player) error {
	entries := p.DenyList()
	ack := &packets.DenyListAck{Entries: make([]packets.DenyInfo, 0, len(entries))}
	for _, entry := range entries {
		ack.Entries = append(ack.Entries, packets.DenyInfo{
			AccountID: entry.DenyID,
			Nickname:  entry.Nickname,
		})
	}
	return s.Send(ack)
}

func (e *Engine) handleDenyAdd(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.DenyAddRequest)
	p := s.Player()

	if req.AccountID == p.AccountID() {
		return nil
	}
	for _, entry := range p.DenyList() {
		if entry.DenyID == req.AccountID {
			return nil
		}
	}

	entry := &data.DenyEntry{
		AccountID: p.AccountID(),
		DenyID:    req.AccountID,
		Nickname:  req.Nickname,
	}
	if err := data.CreateDenyEntry(e.db, entry); err != nil {
		e.accountLogger(p.AccountID()).Errorf("adding deny entry: %v", err)
		return s.Send(&packets.ServerResultAck{Result: packets.ResultServerError})
	}

	entries, err := data.FindDenyEntries(e.db, p.AccountID())
	if err != nil {
		return err
	}
	p.setDenyList(entries)
	return e.sendDenyList(s, p)
}

func (e *Engine) handleDenyRemove(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.DenyRemoveRequest)
	p := s.Player()

	if err := data.DeleteDenyEntry(e.db, p.AccountID(), req.AccountID); err != nil {
		e.accountLogger(p.AccountID()).Errorf("removing deny entry: %v", err)
		return s.Send(&packets.ServerResultAck{Result: packets.ResultServerError})
	}

	entries, err := data.FindDenyEntries(e.db, p.AccountID())
	if err != nil {
		return err
	}
	p.setDenyList(entries)
	return e.sendDenyList(s, p)
}

// handleWhisper relays a private message to the target's chat session. The
// deny list is enforced on the receiving side: a sender the target has
// blocked gets no delivery and no error.
func (e *Engine) handleWhisper(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.WhisperRequest)
	from := s.Player()

	wanted := foldNickname(req.ToNickname)
	var target *Player
	for _, p := range e.registry.Players() {
		if foldNickname(p.Nickname()) == wanted {
			target = p
			break
		}
	}
	if target == nil {
		return s.Send(&packets.ServerResultAck{Result: packets.ResultFailedTask})
	}

	for _, entry := range target.DenyList() {
		if entry.DenyID == from.AccountID() {
			return nil
		}
	}

	chatSession := target.Session(SessionChat)
	if chatSession == nil {
		return s.Send(&packets.ServerResultAck{Result: packets.ResultFailedTask})
	}
	return chatSession.Send(&packets.WhisperAck{
		FromNickname: from.Nickname(),
		Message:      req.Message,
	})
}
