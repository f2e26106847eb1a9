package engine

import (
	"errors"
	"strings"

	"contracthub/models"
)

// ErrHierarchyCycle is returned when a team's parent pointers loop back on
// themselves. Callers must treat the organisation's team data as corrupt and
// refuse to compute access rather than truncating the cycle.
var ErrHierarchyCycle = errors.New("team hierarchy contains a cycle")

// TeamGraph is an in-memory view of one organisation's teams as a forest,
// indexed by id and by parent id. Build it fresh from the current team list
// on every request; it holds no locks and is never shared across requests.
type TeamGraph struct {
	byID     map[uint]*models.Team
	children map[uint][]uint
}

// BuildTeamGraph indexes the given teams and verifies the parent relation is
// acyclic. A parent pointer to a team missing from the list is tolerated and
// treated as a root.
func BuildTeamGraph(teams []models.Team) (*TeamGraph, error) {
	g := &TeamGraph{
		byID:     make(map[uint]*models.Team, len(teams)),
		children: make(map[uint][]uint),
	}

	for i := range teams {
		team := &teams[i]
		g.byID[team.ID] = team
		if team.ParentTeamID != nil {
			g.children[*team.ParentTeamID] = append(g.children[*team.ParentTeamID], team.ID)
		}
	}

	// Walk every node's ancestor chain; revisiting an id means the parent
	// pointers are corrupt.
	for id := range g.byID {
		visited := make(map[uint]bool)
		current := id
		for {
			if visited[current] {
				return nil, ErrHierarchyCycle
			}
			visited[current] = true

			team, ok := g.byID[current]
			if !ok || team.ParentTeamID == nil {
				break
			}
			current = *team.ParentTeamID
		}
	}

	return g, nil
}

// Team returns the team for the given id, or nil if it is not in the graph.
func (g *TeamGraph) Team(teamID uint) *models.Team {
	return g.byID[teamID]
}

// TeamIDs returns every team id in the graph.
func (g *TeamGraph) TeamIDs() []uint {
	ids := make([]uint, 0, len(g.byID))
	for id := range g.byID {
		ids = append(ids, id)
	}
	return ids
}

// Descendants returns the closure of teamID down through all children,
// including teamID itself. The visited set guards against malformed child
// links so the traversal always terminates.
func (g *TeamGraph) Descendants(teamID uint) map[uint]struct{} {
	result := map[uint]struct{}{teamID: {}}

	queue := []uint{teamID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, childID := range g.children[current] {
			if _, seen := result[childID]; seen {
				continue
			}
			result[childID] = struct{}{}
			queue = append(queue, childID)
		}
	}

	return result
}

// Ancestors returns the closure of teamID up through all parents, including
// teamID itself.
func (g *TeamGraph) Ancestors(teamID uint) map[uint]struct{} {
	result := make(map[uint]struct{})

	current := teamID
	for {
		if _, seen := result[current]; seen {
			break
		}
		result[current] = struct{}{}

		team, ok := g.byID[current]
		if !ok || team.ParentTeamID == nil {
			break
		}
		current = *team.ParentTeamID
	}

	return result
}

// HierarchyPath renders the root-to-leaf position of a team as a delimited
// string, e.g. "Region A > Area 2 > Team 5". Used for display and as a
// deterministic sort key when listing teams. Unknown ids yield "".
func (g *TeamGraph) HierarchyPath(teamID uint) string {
	var names []string

	visited := make(map[uint]bool)
	current := teamID
	for {
		team, ok := g.byID[current]
		if !ok || visited[current] {
			break
		}
		visited[current] = true
		names = append(names, team.Name)

		if team.ParentTeamID == nil {
			break
		}
		current = *team.ParentTeamID
	}

	// Collected leaf-first; reverse to read root-first.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}

	return strings.Join(names, " > ")
}
