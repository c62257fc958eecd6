package game

import (
	"context"
	"errors"

	"github.com/slipgate-emu/slipgate/internal/packets"
)

func (e *Engine) handleChannelList(ctx context.Context, s *Session, msg packets.Message) error {
	channels := e.channels.All()
	ack := &packets.ChannelListAck{Channels: make([]packets.ChannelInfo, 0, len(channels))}
	for _, c := range channels {
		ack.Channels = append(ack.Channels, c.Info())
	}
	return s.Send(ack)
}

func (e *Engine) handleChannelEnter(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.ChannelEnterRequest)
	p := s.Player()

	channel, err := e.channels.Get(req.ChannelID)
	if err != nil {
		return s.Send(&packets.ChannelEnterAck{Result: packets.ResultFailedTask})
	}

	// Moving between channels is a leave plus a join.
	previous := p.Channel()
	if previous != nil {
		if previous == channel {
			return s.Send(&packets.ChannelEnterAck{Result: packets.ResultFailedTask})
		}
		if p.Room() != nil {
			return s.Send(&packets.ChannelEnterAck{Result: packets.ResultFailedTask})
		}
		if err := previous.Leave(p); err != nil {
			return s.Send(&packets.ChannelEnterAck{Result: packets.ResultServerError})
		}
	}

	if err := channel.Join(p); err != nil {
		// A failed move must not strand the player outside every channel.
		if previous != nil {
			if rejoinErr := previous.Join(p); rejoinErr != nil {
				e.accountLogger(p.AccountID()).Errorf("rejoining previous channel: %v", rejoinErr)
			}
		}
		return s.Send(&packets.ChannelEnterAck{Result: packets.ResultFailedTask})
	}
	return s.Send(&packets.ChannelEnterAck{Result: packets.ResultWelcome})
}

func (e *Engine) handleChannelLeave(ctx context.Context, s *Session, msg packets.Message) error {
	p := s.Player()
	channel := p.Channel()
	if err := channel.Leave(p); err != nil {
		return s.Send(&packets.ChannelLeaveAck{Result: packets.ResultFailedTask})
	}
	return s.Send(&packets.ChannelLeaveAck{Result: packets.ResultOK})
}

func (e *Engine) handleRoomMake(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.RoomMakeRequest)
	p := s.Player()

	room, err := p.Channel().CreateRoom(p, req.Options)
	if err != nil {
		return s.Send(&packets.RoomEnterAck{Result: packets.ResultFailedTask})
	}
	return s.Send(&packets.RoomEnterAck{Result: packets.ResultOK, RoomID: room.ID})
}

func (e *Engine) handleRoomEnter(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.RoomEnterRequest)
	p := s.Player()

	room, err := p.Channel().Room(req.RoomID)
	if err != nil {
		return s.Send(&packets.RoomEnterAck{Result: packets.ResultFailedTask})
	}
	if err := room.Join(p, req.Password); err != nil {
		if errors.Is(err, ErrRoomFull) || errors.Is(err, ErrWrongPassword) {
			return s.Send(&packets.RoomEnterAck{Result: packets.ResultFailedTask})
		}
		return s.Send(&packets.RoomEnterAck{Result: packets.ResultServerError})
	}
	return s.Send(&packets.RoomEnterAck{Result: packets.ResultOK, RoomID: room.ID})
}

func (e *Engine) handleRoomLeave(ctx context.Context, s *Session, msg packets.Message) error {
	p := s.Player()
	room := p.Room()

	if err := room.Leave(p); err != nil {
		return s.Send(&packets.RoomLeaveAck{Result: packets.ResultServerError})
	}
	room.Channel().RemoveRoomIfEmpty(room)
	return s.Send(&packets.RoomLeaveAck{Result: packets.ResultOK})
}

func (e *Engine) handleTeamChange(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.TeamChangeRequest)
	p := s.Player()
	room := p.Room()

	// Sides can only change while the room is waiting for a round.
	if !room.InPhase(PhaseWaiting) {
		return s.Send(&packets.TeamChangeAck{Result: packets.ResultFailedTask, AccountID: p.AccountID()})
	}
	if err := room.MoveTeam(p, TeamID(req.Team)); err != nil {
		return s.Send(&packets.TeamChangeAck{Result: packets.ResultFailedTask, AccountID: p.AccountID()})
	}
	room.Broadcast(&packets.TeamChangeAck{
		Result:    packets.ResultOK,
		AccountID: p.AccountID(),
		Team:      req.Team,
	})
	return nil
}

func (e *Engine) handleReadyRound(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.ReadyRoundRequest)
	p := s.Player()
	room := p.Room()

	if !room.InPhase(PhaseWaiting) {
		return nil
	}
	p.setReady(req.Ready)
	room.Broadcast(&packets.ReadyRoundAck{AccountID: p.AccountID(), Ready: req.Ready})
	return nil
}

func (e *Engine) handleBeginRound(ctx context.Context, s *Session, msg packets.Message) error {
	p := s.Player()
	room := p.Room()

	if !room.InPhase(PhaseWaiting) {
		return nil
	}
	for _, m := range room.Members() {
		if m != room.Master() && !m.Ready() {
			return s.Send(&packets.ServerResultAck{Result: packets.ResultFailedTask})
		}
	}
	if err := room.BeginRound(); err != nil {
		e.accountLogger(p.AccountID()).Errorf("starting round: %v", err)
		return s.Send(&packets.ServerResultAck{Result: packets.ResultServerError})
	}
	room.Broadcast(&packets.GameStartAck{Phase: room.Phase().String()})
	return nil
}

func (e *Engine) handleGameLoadingSuccess(ctx context.Context, s *Session, msg packets.Message) error {
	p := s.Player()
	room := p.Room()

	if !room.InPhase(PhaseLoading) {
		return nil
	}
	room.LoadingComplete(p)
	if room.InPhase(PhasePlaying) {
		room.Broadcast(&packets.GameStartAck{Phase: room.Phase().String()})
	}
	return nil
}

func (e *Engine) handleAvatarChange(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.AvatarChangeRequest)
	p := s.Player()
	room := p.Room()

	if !room.InPhase(PhaseWaiting) {
		return nil
	}
	p.setCurrentCharacter(int(req.Costume))
	room.Broadcast(&packets.AvatarChangeAck{AccountID: p.AccountID(), Costume: req.Costume})
	return nil
}

func (e *Engine) handleItemChange(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.ItemChangeRequest)
	p := s.Player()
	room := p.Room()

	if !room.InPhase(PhaseWaiting) {
		return nil
	}
	for _, item := range p.Items() {
		if item.ID == req.ItemID {
			room.Broadcast(&packets.ItemChangeAck{AccountID: p.AccountID(), ItemID: req.ItemID})
			return nil
		}
	}
	return s.Send(&packets.ServerResultAck{Result: packets.ResultFailedTask})
}

func (e *Engine) handleChangeRuleNotify(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.ChangeRuleNotifyRequest)
	room := s.Player().Room()

	if !room.InPhase(PhaseWaiting) {
		return s.Send(&packets.ServerResultAck{Result: packets.ResultFailedTask})
	}
	room.SetOptions(req.Options)
	room.Broadcast(&packets.ChangeRuleAck{Options: room.Options()})
	return nil
}

func (e *Engine) handleScoreKill(ctx context.Context, s *Session, msg packets.Message) error {
	req := msg.(*packets.ScoreKillRequest)
	p := s.Player()
	room := p.Room()

	if !room.InPhase(PhasePlaying) {
		return nil
	}
	target := e.registry.Get(req.TargetID)
	if target == nil || target.Room() != room {
		return nil
	}

	kills, deaths := p.AddKill()
	room.Broadcast(&packets.ScoreUpdateAck{AccountID: p.AccountID(), Kills: kills, Deaths: deaths})
	kills, deaths = target.AddDeath()
	room.Broadcast(&packets.ScoreUpdateAck{AccountID: target.AccountID(), Kills: kills, Deaths: deaths})
	return nil
}

func (e *Engine) handleScoreSuicide(ctx context.Context, s *Session, msg packets.Message) error {
	p := s.Player()
	room := p.Room()

	if !room.InPhase(PhasePlaying) {
		return nil
	}
	kills, deaths := p.AddDeath()
	room.Broadcast(&packets.ScoreUpdateAck{AccountID: p.AccountID(), Kills: kills, Deaths: deaths})
	return nil
}
