package game

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/slipgate-emu/slipgate/internal/core/data"
	"github.com/slipgate-emu/slipgate/internal/packets"
)

func dispatchGame(t *testing.T, env *testEnv, s *Session, msg packets.Message) {
	t.Helper()
	if err := env.engine.Dispatcher(SessionGame).Dispatch(context.Background(), s, msg); err != nil {
		t.Fatalf("error dispatching %T: %s", msg, err)
	}
}

func TestChannelEnterAndList(t *testing.T) {
	env := setUpEngine(t)
	p, session, conn := env.loginTestPlayer(t, "lobbyist", "10.0.0.1:5000")
	_ = conn.sentMessages(t)

	dispatchGame(t, env, session, &packets.ChannelListRequest{})
	list := messageOfType[*packets.ChannelListAck](t, conn.sentMessages(t))
	if len(list.Channels) != env.engine.cfg.Game.NumChannels {
		t.Fatalf("channel list has %d entries, want %d", len(list.Channels), env.engine.cfg.Game.NumChannels)
	}

	dispatchGame(t, env, session, &packets.ChannelEnterRequest{ChannelID: list.Channels[0].ID})
	enter := messageOfType[*packets.ChannelEnterAck](t, conn.sentMessages(t))
	if enter.Result != packets.ResultWelcome {
		t.Fatalf("expected welcome, got %d", enter.Result)
	}
	if p.Channel() == nil || p.Channel().ID != list.Channels[0].ID {
		t.Error("player not placed in the requested channel")
	}

	// The list reflects the new population.
	dispatchGame(t, env, session, &packets.ChannelListRequest{})
	list = messageOfType[*packets.ChannelListAck](t, conn.sentMessages(t))
	if list.Channels[0].PlayersOnline != 1 {
		t.Errorf("channel population = %d, want 1", list.Channels[0].PlayersOnline)
	}
}

func TestChannelEnter_UnknownChannel(t *testing.T) {
	env := setUpEngine(t)
	_, session, conn := env.loginTestPlayer(t, "lost", "10.0.0.1:5000")
	_ = conn.sentMessages(t)

	dispatchGame(t, env, session, &packets.ChannelEnterRequest{ChannelID: 99})
	ack := messageOfType[*packets.ChannelEnterAck](t, conn.sentMessages(t))
	if ack.Result != packets.ResultFailedTask {
		t.Errorf("expected failed task, got %d", ack.Result)
	}
}

func TestChannelEnter_FailedMoveKeepsOldChannel(t *testing.T) {
	env := setUpEngine(t)
	p, session, conn := env.loginTestPlayer(t, "mover", "10.0.0.1:5000")
	blocker, _, _ := env.loginTestPlayer(t, "blocker", "10.0.0.2:5000")
	_ = conn.sentMessages(t)

	channels := env.engine.Channels().All()
	first, second := channels[0], channels[1]
	if err := first.Join(p); err != nil {
		t.Fatalf("error joining channel: %s", err)
	}
	if err := second.Join(blocker); err != nil {
		t.Fatalf("error joining channel: %s", err)
	}
	second.PlayerLimit = 1

	dispatchGame(t, env, session, &packets.ChannelEnterRequest{ChannelID: second.ID})
	ack := messageOfType[*packets.ChannelEnterAck](t, conn.sentMessages(t))
	if ack.Result != packets.ResultFailedTask {
		t.Fatalf("expected failed task for a full channel, got %d", ack.Result)
	}
	if p.Channel() != first || !first.Contains(p) {
		t.Error("failed move left the player outside their original channel")
	}
	if second.Contains(p) {
		t.Error("player joined the full channel anyway")
	}
}

func TestRoomMakeViaDispatcher(t *testing.T) {
	env := setUpEngine(t)
	p, session, conn := env.loginTestPlayer(t, "maker", "10.0.0.1:5000")
	_ = conn.sentMessages(t)

	// Room creation without channel membership is vetoed outright.
	dispatchGame(t, env, session, &packets.RoomMakeRequest{Options: packets.RoomOptions{Name: "early"}})
	if msgs := conn.sentMessages(t); len(msgs) != 0 {
		t.Fatalf("vetoed room make produced a reply: %s", describeMessages(msgs))
	}

	dispatchGame(t, env, session, &packets.ChannelEnterRequest{ChannelID: 1})
	_ = conn.sentMessages(t)

	dispatchGame(t, env, session, &packets.RoomMakeRequest{Options: packets.RoomOptions{Name: "my room", PlayerLimit: 4}})
	msgs := conn.sentMessages(t)
	ack := messageOfType[*packets.RoomEnterAck](t, msgs)
	if ack.Result != packets.ResultOK {
		t.Fatalf("room make failed: %d", ack.Result)
	}
	joined := messageOfType[*packets.RoomPlayerJoinedAck](t, msgs)
	if joined.AccountID != p.AccountID() {
		t.Error("join broadcast does not name the creator")
	}
	if p.Room() == nil || p.Room().ID != ack.RoomID {
		t.Error("creator not placed in the new room")
	}
}

func TestRoundFlow_ReadyBeginLoading(t *testing.T) {
	env := setUpEngine(t)
	master, masterSession, masterConn := env.loginTestPlayer(t, "master", "10.0.0.1:5000")
	member, memberSession, memberConn := env.loginTestPlayer(t, "member", "10.0.0.2:5000")

	room := env.joinChannelAndRoom(t, master)
	if err := room.Channel().Join(member); err != nil {
		t.Fatalf("error joining channel: %s", err)
	}
	if err := room.Join(member, ""); err != nil {
		t.Fatalf("error joining room: %s", err)
	}
	_ = masterConn.sentMessages(t)
	_ = memberConn.sentMessages(t)

	// The master cannot start while a member is not ready.
	dispatchGame(t, env, masterSession, &packets.BeginRoundRequest{})
	fail := messageOfType[*packets.ServerResultAck](t, masterConn.sentMessages(t))
	if fail.Result != packets.ResultFailedTask {
		t.Fatalf("expected failed task with unready member, got %d", fail.Result)
	}

	dispatchGame(t, env, memberSession, &packets.ReadyRoundRequest{Ready: true})
	ready := messageOfType[*packets.ReadyRoundAck](t, masterConn.sentMessages(t))
	if !ready.Ready || ready.AccountID != member.AccountID() {
		t.Fatalf("unexpected ready broadcast: %+v", ready)
	}

	// A non-master cannot begin the round; the message is vetoed silently.
	dispatchGame(t, env, memberSession, &packets.BeginRoundRequest{})
	if room.Phase() != PhaseWaiting {
		t.Fatal("non-master started the round")
	}

	dispatchGame(t, env, masterSession, &packets.BeginRoundRequest{})
	if room.Phase() != PhaseLoading {
		t.Fatalf("round not loading after begin: %s", room.Phase())
	}
	start := messageOfType[*packets.GameStartAck](t, masterConn.sentMessages(t))
	if start.Phase != PhaseLoading.String() {
		t.Errorf("start broadcast phase = %q", start.Phase)
	}

	dispatchGame(t, env, masterSession, &packets.GameLoadingSuccessRequest{})
	if room.Phase() != PhaseLoading {
		t.Fatal("round started before every member loaded")
	}
	dispatchGame(t, env, memberSession, &packets.GameLoadingSuccessRequest{})
	if room.Phase() != PhasePlaying {
		t.Fatalf("round not playing after all loaded: %s", room.Phase())
	}
}

func TestScoreUpdates(t *testing.T) {
	env := setUpEngine(t)
	killer, killerSession, killerConn := env.loginTestPlayer(t, "killer", "10.0.0.1:5000")
	victim, victimSession, _ := env.loginTestPlayer(t, "victim", "10.0.0.2:5000")

	room := env.joinChannelAndRoom(t, killer)
	if err := room.Channel().Join(victim); err != nil {
		t.Fatalf("error joining channel: %s", err)
	}
	if err := room.Join(victim, ""); err != nil {
		t.Fatalf("error joining room: %s", err)
	}
	if err := room.BeginRound(); err != nil {
		t.Fatalf("error beginning round: %s", err)
	}
	dispatchGame(t, env, killerSession, &packets.GameLoadingSuccessRequest{})
	dispatchGame(t, env, victimSession, &packets.GameLoadingSuccessRequest{})
	if room.Phase() != PhasePlaying {
		t.Fatalf("room not playing: %s", room.Phase())
	}
	_ = killerConn.sentMessages(t)

	dispatchGame(t, env, killerSession, &packets.ScoreKillRequest{TargetID: victim.AccountID()})

	var killerScore, victimScore *packets.ScoreUpdateAck
	for _, msg := range killerConn.sentMessages(t) {
		update, ok := msg.(*packets.ScoreUpdateAck)
		if !ok {
			continue
		}
		switch update.AccountID {
		case killer.AccountID():
			killerScore = update
		case victim.AccountID():
			victimScore = update
		}
	}
	if killerScore == nil || killerScore.Kills != 1 || killerScore.Deaths != 0 {
		t.Errorf("unexpected killer score: %+v", killerScore)
	}
	if victimScore == nil || victimScore.Kills != 0 || victimScore.Deaths != 1 {
		t.Errorf("unexpected victim score: %+v", victimScore)
	}
}

func TestChangeRule_OnlyWhileWaiting(t *testing.T) {
	env := setUpEngine(t)
	master, session, conn := env.loginTestPlayer(t, "master", "10.0.0.1:5000")
	room := env.joinChannelAndRoom(t, master)
	_ = conn.sentMessages(t)

	options := room.Options()
	options.ScoreLimit = 40
	dispatchGame(t, env, session, &packets.ChangeRuleNotifyRequest{Options: options})
	changed := messageOfType[*packets.ChangeRuleAck](t, conn.sentMessages(t))
	if changed.Options.ScoreLimit != 40 {
		t.Errorf("rule change not applied: %+v", changed.Options)
	}

	if err := room.BeginRound(); err != nil {
		t.Fatalf("error beginning round: %s", err)
	}
	options.ScoreLimit = 10
	dispatchGame(t, env, session, &packets.ChangeRuleNotifyRequest{Options: options})
	denied := messageOfType[*packets.ServerResultAck](t, conn.sentMessages(t))
	if denied.Result != packets.ResultFailedTask {
		t.Errorf("expected failed task mid-round, got %d", denied.Result)
	}
	if room.Options().ScoreLimit != 40 {
		t.Error("rule changed outside the waiting phase")
	}
}

func TestAvatarChange_PersistsSelection(t *testing.T) {
	env := setUpEngine(t)
	p, session, conn := env.loginTestPlayer(t, "dresser", "10.0.0.1:5000")
	env.joinChannelAndRoom(t, p)
	_ = conn.sentMessages(t)

	dispatchGame(t, env, session, &packets.AvatarChangeRequest{Costume: 12})

	ack := messageOfType[*packets.AvatarChangeAck](t, conn.sentMessages(t))
	if ack.Costume != 12 || ack.AccountID != p.AccountID() {
		t.Errorf("unexpected avatar ack: %+v", ack)
	}
	if p.Record().CurrentCharacter != 12 {
		t.Errorf("costume selection not recorded: %d", p.Record().CurrentCharacter)
	}
}

func TestDisconnect_TearsDownEverything(t *testing.T) {
	env := setUpEngine(t)
	p, session, _ := env.loginTestPlayer(t, "quitter", "10.0.0.1:5000")
	room := env.joinChannelAndRoom(t, p)
	channel := room.Channel()
	chatSession, _ := env.attachSession(t, p, SessionChat, "10.0.0.1:6000")
	relaySession, _ := env.attachSession(t, p, SessionRelay, "10.0.0.1:7000")

	env.engine.OnDisconnect(session)

	if env.engine.Registry().Get(p.AccountID()) != nil {
		t.Error("player still registered after disconnect")
	}
	if p.IsLoggedIn() {
		t.Error("player still logged in after disconnect")
	}
	if room.Contains(p) || channel.Contains(p) {
		t.Error("membership not torn down on disconnect")
	}
	if !chatSession.Closed() || !relaySession.Closed() {
		t.Error("linked sessions not closed with the game session")
	}
	if p.Session(SessionChat) != nil || p.Session(SessionRelay) != nil {
		t.Error("session links not cleared on disconnect")
	}
}

func TestDisconnect_PersistsOnceAndAllowsRelogin(t *testing.T) {
	env := setUpEngine(t)
	p, session, _ := env.loginTestPlayer(t, "boomerang", "10.0.0.1:5000")
	env.joinChannelAndRoom(t, p)
	p.Record().TotalWins = 4

	var recordSaves int
	err := env.db.Callback().Update().After("gorm:update").Register("countRecordSaves", func(tx *gorm.DB) {
		if tx.Statement.Table == "player_records" {
			recordSaves++
		}
	})
	if err != nil {
		t.Fatalf("error registering save counter: %s", err)
	}

	env.engine.OnDisconnect(session)

	if recordSaves != 1 {
		t.Errorf("disconnect persisted the record %d times, want 1", recordSaves)
	}
	record, err := data.FindPlayerRecord(env.db, p.AccountID())
	if err != nil || record == nil {
		t.Fatalf("record lookup failed: %v", err)
	}
	if record.TotalWins != 4 {
		t.Errorf("disconnect save lost state: wins = %d", record.TotalWins)
	}

	// The same account can come straight back in through the full login.
	conn := newFakeConn("10.0.0.1:5001")
	relogin := NewSession(SessionGame, conn)
	env.engine.TrackPending(relogin)
	dispatchGame(t, env, relogin, loginRequestFor(p.Account))

	ack := messageOfType[*packets.LoginAck](t, conn.sentMessages(t))
	if ack.Result != packets.LoginOK {
		t.Fatalf("re-login after disconnect failed with result %d", ack.Result)
	}
	fresh := env.engine.Registry().Get(p.AccountID())
	if fresh == nil || fresh == p {
		t.Error("re-login did not register a fresh player")
	}
}

func TestDisconnect_ChatOnlyDetachesChat(t *testing.T) {
	env := setUpEngine(t)
	p, _, _ := env.loginTestPlayer(t, "flaky", "10.0.0.1:5000")
	chatSession, _ := env.attachSession(t, p, SessionChat, "10.0.0.1:6000")

	env.engine.OnDisconnect(chatSession)

	if p.Session(SessionChat) != nil {
		t.Error("chat link not cleared")
	}
	if !p.IsLoggedIn() {
		t.Error("chat disconnect logged the player out")
	}
	if env.engine.Registry().Get(p.AccountID()) != p {
		t.Error("chat disconnect removed the player from the registry")
	}
}
