package curriculum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keydojo/core"
)

func testGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := NewGraph([]Node{
		{ID: "basics-1", Title: "Copy & Paste", Order: 1},
		{ID: "basics-2", Title: "Undo & Redo", Order: 2, Requirements: &Requirements{
			PreviousNodes: []NodeID{"basics-1"},
		}},
		{ID: "editing-1", Title: "Multi-cursor", Order: 3, Requirements: &Requirements{
			PreviousNodes: []NodeID{"basics-1", "basics-2"},
			MinExperience: 200,
		}},
		{ID: "boss-1", Title: "Speed Challenge", Order: 4, Requirements: &Requirements{
			MinLevel: 3,
		}},
	})
	require.NoError(t, err)
	return g
}

func snapshotWith(t *testing.T, experience int) core.Snapshot {
	t.Helper()
	s := core.NewSnapshot("alice", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if experience > 0 {
		_, err := s.Experience.Grant(s.Updated, experience, core.SourceLesson, "")
		require.NoError(t, err)
	}
	return s
}

func TestNewGraphRejectsBadReferences(t *testing.T) {
	_, err := NewGraph([]Node{
		{ID: "a", Requirements: &Requirements{PreviousNodes: []NodeID{"ghost"}}},
	})
	require.Error(t, err)

	_, err = NewGraph([]Node{{ID: "a"}, {ID: "a"}})
	require.Error(t, err)

	_, err = NewGraph([]Node{{ID: ""}})
	require.Error(t, err)
}

func TestNoRequirementsIsReachable(t *testing.T) {
	g := testGraph(t)
	n, _ := g.Node("basics-1")
	r := g.Evaluate(n, snapshotWith(t, 0), nil)
	assert.True(t, r.Reachable)
}

func TestAllPredecessorsRequired(t *testing.T) {
	g := testGraph(t)
	n, _ := g.Node("editing-1")
	snap := snapshotWith(t, 500)

	r := g.Evaluate(n, snap, map[NodeID]struct{}{"basics-1": {}})
	assert.False(t, r.Reachable)
	assert.Equal(t, []NodeID{"basics-2"}, r.MissingNodes)

	r = g.Evaluate(n, snap, map[NodeID]struct{}{"basics-1": {}, "basics-2": {}})
	assert.True(t, r.Reachable)
}

func TestExperienceAndLevelGates(t *testing.T) {
	g := testGraph(t)
	completed := map[NodeID]struct{}{"basics-1": {}, "basics-2": {}}

	n, _ := g.Node("editing-1")
	r := g.Evaluate(n, snapshotWith(t, 150), completed)
	assert.False(t, r.Reachable)
	assert.Equal(t, 50, r.ExperienceNeeded)
	assert.Empty(t, r.MissingNodes, "prereq and experience reasons are reported separately")

	boss, _ := g.Node("boss-1")
	r = g.Evaluate(boss, snapshotWith(t, 120), nil) // level 2
	assert.False(t, r.Reachable)
	assert.Equal(t, 3, r.LevelNeeded)

	r = g.Evaluate(boss, snapshotWith(t, 300), nil) // level 3
	assert.True(t, r.Reachable)
}

func TestUnknownReferenceLocksInsteadOfPanicking(t *testing.T) {
	g := testGraph(t)
	// a node built outside the graph with a dangling reference
	rogue := Node{ID: "rogue", Requirements: &Requirements{PreviousNodes: []NodeID{"nope"}}}

	r := g.Evaluate(rogue, snapshotWith(t, 10_000), map[NodeID]struct{}{"nope": {}})
	assert.False(t, r.Reachable)
	assert.Equal(t, []NodeID{"nope"}, r.UnknownNodes)
}

func TestReachableIDs(t *testing.T) {
	g := testGraph(t)
	ids := g.ReachableIDs(snapshotWith(t, 0), nil)
	assert.Equal(t, []NodeID{"basics-1"}, ids)

	ids = g.ReachableIDs(snapshotWith(t, 250), map[NodeID]struct{}{"basics-1": {}, "basics-2": {}})
	assert.Equal(t, []NodeID{"basics-1", "basics-2", "editing-1", "boss-1"}, ids)
}
