package game

import (
	"fmt"

	"github.com/google/uuid"
)

// resolveTurn picks the team and player who act at currentTurnIndex.
// Teams rotate round-robin in creation order. Within a team, players
// rotate on that team's own turn count, so rosters of different sizes
// still cycle fairly. Both orderings are hard preconditions: the scheme
// has no memory beyond the counts.
func resolveTurn(teams []Team, currentTurnIndex int, counts map[uuid.UUID]int) (*Team, *Player, error) {
	if len(teams) == 0 {
		return nil, nil, fmt.Errorf("%w: game has no teams", ErrInvalidState)
	}
	team := &teams[currentTurnIndex%len(teams)]
	if len(team.Players) == 0 {
		return nil, nil, fmt.Errorf("%w: team %q has no players", ErrInvalidState, team.Name)
	}
	player := &team.Players[counts[team.ID]%len(team.Players)]
	return team, player, nil
}
