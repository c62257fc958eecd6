package game

import (
	"errors"
	"sync"
)

// ErrAlreadyOnline is returned when an account that is already represented in
// the registry attempts a second login.
var ErrAlreadyOnline = errors.New("account is already online")

// Registry is the process-wide mapping from account identity to its single
// logical Player. All mutation is serialized under one mutex so that a login
// racing a disconnect (or a kick racing either) can never interleave a
// lookup with a removal.
type Registry struct {
	mu      sync.Mutex
	players map[uint64]*Player
}

func NewRegistry() *Registry {
	return &Registry{players: make(map[uint64]*Player)}
}

// Add registers a player, enforcing single-login per account.
func (r *Registry) Add(p *Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[p.AccountID()]; ok {
		return ErrAlreadyOnline
	}
	r.players[p.AccountID()] = p
	return nil
}

// Get returns the player for an account, or nil.
func (r *Registry) Get(accountID uint64) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players[accountID]
}

// Remove drops the registration for p. The entry is only removed if it still
// points at the same player, so a removal racing a re-login of the same
// account cannot evict the new player.
func (r *Registry) Remove(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.players[p.AccountID()]; ok && current == p {
		delete(r.players, p.AccountID())
	}
}

// Kick atomically removes and returns the player registered for an account,
// or nil if the account is not online. The caller owns the returned player's
// teardown.
func (r *Registry) Kick(accountID uint64) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[accountID]
	if !ok {
		return nil
	}
	delete(r.players, accountID)
	return p
}

// Count returns the number of registered players.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Players returns a snapshot of every registered player.
func (r *Registry) Players() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}
	return players
}
