package game

// TeamID identifies a side within a room.
type TeamID uint8

const (
	TeamAlpha TeamID = iota
	TeamBeta
)

// TeamManager partitions a room's players into sides. It is not safe for
// concurrent use on its own; the owning room's lock guards it.
type TeamManager struct {
	teams map[TeamID]map[uint64]*Player
}

func NewTeamManager() *TeamManager {
	return &TeamManager{
		teams: map[TeamID]map[uint64]*Player{
			TeamAlpha: {},
			TeamBeta:  {},
		},
	}
}

// Assign places a player on the side with fewer members, preferring alpha on
// a tie, and returns the chosen side.
func (tm *TeamManager) Assign(p *Player) TeamID {
	team := TeamAlpha
	if len(tm.teams[TeamBeta]) < len(tm.teams[TeamAlpha]) {
		team = TeamBeta
	}
	tm.teams[team][p.AccountID()] = p
	return team
}

// Move places a player on the requested side, removing it from any other.
func (tm *TeamManager) Move(p *Player, team TeamID) {
	tm.Leave(p)
	if _, ok := tm.teams[team]; !ok {
		tm.teams[team] = map[uint64]*Player{}
	}
	tm.teams[team][p.AccountID()] = p
}

// Leave removes a player from whichever side it is on.
func (tm *TeamManager) Leave(p *Player) {
	for _, members := range tm.teams {
		delete(members, p.AccountID())
	}
}

// TeamOf returns the side a player is on.
func (tm *TeamManager) TeamOf(p *Player) (TeamID, bool) {
	for id, members := range tm.teams {
		if _, ok := members[p.AccountID()]; ok {
			return id, true
		}
	}
	return 0, false
}

// Members returns the players on one side.
func (tm *TeamManager) Members(team TeamID) []*Player {
	members := make([]*Player, 0, len(tm.teams[team]))
	for _, p := range tm.teams[team] {
		members = append(members, p)
	}
	return members
}

// Teams returns the side IDs in use.
func (tm *TeamManager) Teams() []TeamID {
	ids := make([]TeamID, 0, len(tm.teams))
	for id := range tm.teams {
		ids = append(ids, id)
	}
	return ids
}
