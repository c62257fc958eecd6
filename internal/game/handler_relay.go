package game

import (
	"context"

	"github.com/slipgate-emu/slipgate/internal/packets"
)

// handleRelayLogin attaches a relay session to a player and wires it into
// the room's peer group. The ordering is the contract the client's p2p
// layer depends on: the joiner learns every existing peer and every peer
// learns the joiner before the player's Connecting flag clears and the
// room-join event fires.
func (e *Engine) handleRelayLogin(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.RelayLoginRequest)

	ack := func(result packets.RelayLoginResult) error {
		return s.Send(&packets.RelayLoginAck{Result: result})
	}

	p := e.registry.Get(req.AccountID)
	if p == nil || !p.IsLoggedIn() {
		return ack(packets.RelayLoginUnknownPlayer)
	}
	if p.Session(SessionRelay) != nil {
		return ack(packets.RelayLoginAlreadyOnline)
	}

	gameSession := p.Session(SessionGame)
	if gameSession == nil || gameSession.RemoteIP() != s.RemoteIP() {
		return ack(packets.RelayLoginAddressMismatch)
	}

	room := p.Room()
	if room == nil || room.ID != req.RoomID {
		return ack(packets.RelayLoginNotInRoom)
	}

	s.setPlayer(p)
	p.setSession(SessionRelay, s)
	e.untrackPending(s)

	if err := ack(packets.RelayLoginOK); err != nil {
		return err
	}

	// Identity exchange with the existing peer group, both directions, plus
	// the joiner's own identity echoed back to it.
	joiner := &packets.RelayEnterPeerAck{
		HostID:    s.HostID,
		AccountID: p.AccountID(),
		Nickname:  p.Nickname(),
	}
	for _, peer := range room.Peers() {
		_ = peer.Send(joiner)
		if peerPlayer := peer.Player(); peerPlayer != nil {
			_ = s.Send(&packets.RelayEnterPeerAck{
				HostID:    peer.HostID,
				AccountID: peerPlayer.AccountID(),
				Nickname:  peerPlayer.Nickname(),
			})
		}
	}
	_ = s.Send(joiner)

	room.AddPeer(p, s)
	p.setConnecting(false)
	room.OnPlayerJoined(p)

	return nil
}
