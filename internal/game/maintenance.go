package game

import (
	"context"
	"time"
)

// RunMaintenance drives the periodic bookkeeping loop until ctx is
// cancelled. One goroutine per engine; the tick itself is a method so tests
// can drive it directly.
func (e *Engine) RunMaintenance(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.Maintenance.TickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.tick(now, now.Sub(last))
			last = now
		}
	}
}

// tick runs one maintenance pass: channel updates, pre-login reaping, the
// stale-membership sweep, and the periodic save. Every phase is isolated so
// one misbehaving channel or player cannot starve the others.
func (e *Engine) tick(now time.Time, delta time.Duration) {
	for _, channel := range e.channels.All() {
		c := channel
		e.guard("channel update", func() { c.Update(delta) })
	}

	e.reapPendingSessions(now)

	for _, channel := range e.channels.All() {
		c := channel
		e.guard("membership sweep", func() { e.sweepChannel(c) })
	}

	e.saveTimer += delta
	if e.saveTimer >= e.cfg.Maintenance.SaveInterval {
		e.saveTimer = 0
		e.saveAllPlayers()
	}
}

// guard runs fn and converts a panic into a logged error. Maintenance never
// uses panics as flow control, so anything caught here is a bug in a rule
// or handler that the loop must survive.
func (e *Engine) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("maintenance: %s panicked: %v", name, r)
		}
	}()
	fn()
}

// reapPendingSessions closes connections that never completed a login
// within the grace window.
func (e *Engine) reapPendingSessions(now time.Time) {
	grace := e.cfg.Maintenance.LoginGraceWindow
	for _, s := range e.pendingSnapshot() {
		if s.IsLoggedIn() {
			e.untrackPending(s)
			continue
		}
		if now.Sub(s.ConnectedAt) < grace {
			continue
		}
		e.logger.WithField("remote_addr", s.RemoteAddr()).
			Debugf("reaping %s session that never logged in", s.Kind)
		_ = s.Close()
		e.untrackPending(s)
	}
}

// sweepChannel removes members whose player is no longer logged in,
// working from the innermost layer out: team partition, then room
// membership, then channel membership. Every member, team, room, and the
// channel-level loop is its own isolation boundary; a failure removing one
// entry is logged (or recovered) and the sweep moves on to its siblings.
func (e *Engine) sweepChannel(channel *Channel) {
	for _, room := range channel.Rooms() {
		r := room
		e.guard("room sweep", func() { e.sweepRoom(r) })
		channel.RemoveRoomIfEmpty(r)
	}
	for _, p := range channel.Players() {
		if p.IsLoggedIn() {
			continue
		}
		stale := p
		e.guard("channel member removal", func() {
			if err := channel.Leave(stale); err != nil {
				e.accountLogger(stale.AccountID()).Warnf("sweeping stale channel member: %v", err)
			}
		})
	}
}

func (e *Engine) sweepRoom(room *Room) {
	for _, team := range room.TeamIDs() {
		side := team
		e.guard("team sweep", func() {
			for _, p := range room.TeamMembers(side) {
				if !p.IsLoggedIn() {
					room.DropFromTeams(p)
				}
			}
		})
	}
	for _, p := range room.Members() {
		if p.IsLoggedIn() {
			continue
		}
		stale := p
		e.guard("room member removal", func() {
			if err := room.Leave(stale); err != nil {
				e.accountLogger(stale.AccountID()).Warnf("sweeping stale room member: %v", err)
			}
		})
	}
}

// saveAllPlayers persists every logged-in player's record. Failures are
// per-player; one bad row never blocks the rest of the batch.
func (e *Engine) saveAllPlayers() {
	for _, p := range e.registry.Players() {
		if !p.IsLoggedIn() {
			continue
		}
		if err := p.Save(e.db); err != nil {
			e.accountLogger(p.AccountID()).Errorf("periodic save: %v", err)
		}
	}
}
