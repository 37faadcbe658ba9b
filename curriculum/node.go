// Package curriculum models the lesson/checkpoint unlock graph. The engine
// consumes curriculum data read-only; completion recording belongs to the
// progress collaborator.
package curriculum

import (
	"context"
	"fmt"

	"keydojo/core"
)

// NodeID identifies a curriculum node (lesson, module, or challenge).
type NodeID string

// Requirements gates a node. Absent conditions impose no constraint; all
// set conditions must hold together.
type Requirements struct {
	PreviousNodes []NodeID `json:"previous_nodes,omitempty"`
	MinExperience int      `json:"min_experience,omitempty"`
	MinLevel      int      `json:"min_level,omitempty"`
}

// Node is one unit of curriculum content.
type Node struct {
	ID               NodeID        `json:"id"`
	Title            string        `json:"title"`
	Requirements     *Requirements `json:"requirements,omitempty"`
	ExperienceReward int           `json:"experience_reward,omitempty"`
	Order            int           `json:"order"`
}

// CompletionSource supplies the set of completed node IDs for an account.
// The progression engine never writes to this set.
type CompletionSource interface {
	Completed(ctx context.Context, account core.AccountID) (map[NodeID]struct{}, error)
}

// Graph is a validated set of curriculum nodes.
type Graph struct {
	nodes map[NodeID]Node
	order []NodeID
}

// NewGraph builds a graph and verifies every prerequisite reference
// resolves to a node in the set.
func NewGraph(nodes []Node) (*Graph, error) {
	g := &Graph{nodes: make(map[NodeID]Node, len(nodes))}
	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("curriculum node with empty id")
		}
		if _, dup := g.nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate curriculum node %q", n.ID)
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}
	for _, n := range nodes {
		if n.Requirements == nil {
			continue
		}
		for _, prev := range n.Requirements.PreviousNodes {
			if _, ok := g.nodes[prev]; !ok {
				return nil, fmt.Errorf("node %q requires unknown node %q", n.ID, prev)
			}
		}
	}
	return g, nil
}

// Node looks up a node by ID.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }
