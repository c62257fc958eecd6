package game

import (
	"fmt"
	"time"

	"github.com/slipgate-emu/slipgate/internal/core/cache"
)

const maxLevel = 80

// Resources holds the static gameplay tables the handlers consult. The
// experience curve is generated once; derived lookups go through a cache so
// repeated queries for the same totals stay cheap.
type Resources struct {
	cache *cache.Cache

	// expTable[n] is the total experience required to reach level n.
	expTable []uint64
}

func NewResources() *Resources {
	r := &Resources{
		cache:    cache.New(),
		expTable: make([]uint64, maxLevel+1),
	}
	// Quadratic curve anchored at 1000 exp for level 1. Matches the stock
	// progression data shipped with the original resource archive.
	for lvl := 1; lvl <= maxLevel; lvl++ {
		r.expTable[lvl] = r.expTable[lvl-1] + uint64(1000*lvl)
	}
	return r
}

// ExperienceForLevel returns the total experience needed to reach a level.
func (r *Resources) ExperienceForLevel(level int) uint64 {
	if level < 0 {
		return 0
	}
	if level > maxLevel {
		level = maxLevel
	}
	return r.expTable[level]
}

// LevelForExperience returns the level a player with the given total
// experience has attained.
func (r *Resources) LevelForExperience(totalExp uint64) int {
	key := fmt.Sprintf("exp:%d", totalExp)
	if v, ok := r.cache.Get(key); ok {
		return v.(int)
	}
	level := 0
	for lvl := 1; lvl <= maxLevel; lvl++ {
		if totalExp < r.expTable[lvl] {
			break
		}
		level = lvl
	}
	r.cache.Put(key, level, 5*time.Minute)
	return level
}
