package game

import (
	"errors"
	"sync"
	"time"
)

// ErrRoundInProgress is returned when a round start is requested while one
// is already underway.
var ErrRoundInProgress = errors.New("round already in progress")

// Phase is a match phase. The orchestration engine only ever queries the
// current phase to gate messages; transitions are the rule's own business.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseLoading
	PhasePlaying
	PhaseHalfTime
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	case PhaseHalfTime:
		return "halftime"
	case PhaseResult:
		return "result"
	}
	return "unknown"
}

// GameRule is the pluggable per-mode capability a room holds. Implementations
// supply the mode-specific transition logic; the engine consumes only the
// phase query and the membership hooks.
type GameRule interface {
	// Phase returns the current match phase.
	Phase() Phase

	// Update advances mode-internal time. Called once per maintenance tick
	// by the owning channel.
	Update(delta time.Duration)

	// BeginRound starts loading for the given members if the mode's start
	// conditions hold.
	BeginRound(members []*Player) error

	// LoadingComplete records that a member finished loading; once all
	// pending members are in, the round starts.
	LoadingComplete(p *Player)

	// OnJoin and OnLeave observe membership changes, including the relay
	// join event raised once a peer is fully wired.
	OnJoin(p *Player)
	OnLeave(p *Player)
}

// deathmatchRule is the default mode: free-for-all scoring with a fixed time
// limit and a half-time break.
type deathmatchRule struct {
	mu sync.Mutex

	phase     Phase
	elapsed   time.Duration
	timeLimit time.Duration

	loading map[uint64]bool
}

// NewDeathmatchRule returns the stock rule used when a room's mode has no
// registered implementation.
func NewDeathmatchRule(timeLimit time.Duration) GameRule {
	if timeLimit <= 0 {
		timeLimit = 10 * time.Minute
	}
	return &deathmatchRule{
		phase:     PhaseWaiting,
		timeLimit: timeLimit,
		loading:   make(map[uint64]bool),
	}
}

func (r *deathmatchRule) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *deathmatchRule) BeginRound(members []*Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseWaiting && r.phase != PhaseResult {
		return ErrRoundInProgress
	}
	r.phase = PhaseLoading
	r.elapsed = 0
	r.loading = make(map[uint64]bool, len(members))
	for _, p := range members {
		r.loading[p.AccountID()] = true
	}
	return nil
}

func (r *deathmatchRule) LoadingComplete(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseLoading {
		return
	}
	delete(r.loading, p.AccountID())
	if len(r.loading) == 0 {
		r.phase = PhasePlaying
	}
}

func (r *deathmatchRule) Update(delta time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhasePlaying && r.phase != PhaseHalfTime {
		return
	}

	r.elapsed += delta
	switch {
	case r.elapsed >= r.timeLimit:
		r.phase = PhaseResult
	case r.phase == PhasePlaying && r.elapsed >= r.timeLimit/2:
		r.phase = PhaseHalfTime
	case r.phase == PhaseHalfTime && r.elapsed < r.timeLimit:
		// Half-time lasts a fixed fraction of the limit, then play resumes.
		if r.elapsed >= r.timeLimit/2+r.timeLimit/10 {
			r.phase = PhasePlaying
		}
	}
}

func (r *deathmatchRule) OnJoin(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseLoading {
		r.loading[p.AccountID()] = true
	}
}

func (r *deathmatchRule) OnLeave(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loading, p.AccountID())
	if r.phase == PhaseLoading && len(r.loading) == 0 {
		r.phase = PhasePlaying
	}
}
