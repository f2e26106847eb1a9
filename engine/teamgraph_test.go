package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"contracthub/models"
)

func team(id uint, name string, parentID *uint) models.Team {
	return models.Team{
		Model:          gorm.Model{ID: id},
		OrganisationID: 1,
		Name:           name,
		ParentTeamID:   parentID,
		IsActive:       true,
	}
}

func uintPtr(v uint) *uint {
	return &v
}

// Root(1) -> Area(2) -> Team(3), plus a sibling area under the root.
func testForest() []models.Team {
	return []models.Team{
		team(1, "Root", nil),
		team(2, "Area North", uintPtr(1)),
		team(3, "Team Oak", uintPtr(2)),
		team(4, "Area South", uintPtr(1)),
	}
}

func TestBuildTeamGraph(t *testing.T) {
	t.Run("builds a valid forest", func(t *testing.T) {
		graph, err := BuildTeamGraph(testForest())

		require.NoError(t, err)
		require.NotNil(t, graph)
		assert.Len(t, graph.TeamIDs(), 4)
	})

	t.Run("rejects a two-node cycle", func(t *testing.T) {
		graph, err := BuildTeamGraph([]models.Team{
			team(1, "A", uintPtr(2)),
			team(2, "B", uintPtr(1)),
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrHierarchyCycle)
		assert.Nil(t, graph)
	})

	t.Run("rejects a self-parented team", func(t *testing.T) {
		_, err := BuildTeamGraph([]models.Team{team(7, "Loop", uintPtr(7))})

		assert.ErrorIs(t, err, ErrHierarchyCycle)
	})

	t.Run("tolerates a parent pointer to a missing team", func(t *testing.T) {
		graph, err := BuildTeamGraph([]models.Team{team(5, "Orphan", uintPtr(99))})

		require.NoError(t, err)
		assert.Equal(t, "Orphan", graph.HierarchyPath(5))
	})
}

func TestTeamGraph_Descendants(t *testing.T) {
	graph, err := BuildTeamGraph(testForest())
	require.NoError(t, err)

	t.Run("includes the team itself", func(t *testing.T) {
		descendants := graph.Descendants(3)

		assert.Contains(t, descendants, uint(3))
		assert.Len(t, descendants, 1)
	})

	t.Run("is closed under child-of-a-member", func(t *testing.T) {
		descendants := graph.Descendants(1)

		assert.Len(t, descendants, 4)
		for _, id := range []uint{1, 2, 3, 4} {
			assert.Contains(t, descendants, id)
		}
	})

	t.Run("excludes siblings", func(t *testing.T) {
		descendants := graph.Descendants(2)

		assert.Contains(t, descendants, uint(2))
		assert.Contains(t, descendants, uint(3))
		assert.NotContains(t, descendants, uint(1))
		assert.NotContains(t, descendants, uint(4))
	})
}

func TestTeamGraph_Ancestors(t *testing.T) {
	graph, err := BuildTeamGraph(testForest())
	require.NoError(t, err)

	ancestors := graph.Ancestors(3)

	assert.Len(t, ancestors, 3)
	assert.Contains(t, ancestors, uint(3))
	assert.Contains(t, ancestors, uint(2))
	assert.Contains(t, ancestors, uint(1))
	assert.NotContains(t, ancestors, uint(4))
}

func TestTeamGraph_HierarchyPath(t *testing.T) {
	graph, err := BuildTeamGraph(testForest())
	require.NoError(t, err)

	t.Run("renders root to leaf", func(t *testing.T) {
		assert.Equal(t, "Root > Area North > Team Oak", graph.HierarchyPath(3))
		assert.Equal(t, "Root > Area South", graph.HierarchyPath(4))
		assert.Equal(t, "Root", graph.HierarchyPath(1))
	})

	t.Run("unknown team yields empty path", func(t *testing.T) {
		assert.Equal(t, "", graph.HierarchyPath(42))
	})
}
