package ranking

import (
	"fmt"
	"strconv"
	"strings"
)

// EntityID identifies a ranked competitor: a single athlete or a doubles team.
type EntityID string

// Athlete returns the entity key of an individual athlete.
func Athlete(id int) EntityID {
	return EntityID(strconv.Itoa(id))
}

// Team returns the entity key of a two-person team. The pair is unordered:
// Team(a, b) == Team(b, a).
func Team(player1, player2 int) EntityID {
	if player1 > player2 {
		player1, player2 = player2, player1
	}
	return EntityID(fmt.Sprintf("%d-%d", player1, player2))
}

// IsTeam reports whether e was built by Team.
func (e EntityID) IsTeam() bool {
	return strings.Contains(string(e), "-")
}

// Players returns the athlete IDs that make up e.
func (e EntityID) Players() ([]int, error) {
	parts := strings.Split(string(e), "-")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid entity id %q: %w", string(e), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (e EntityID) String() string { return string(e) }
