package curriculum

import "keydojo/core"

// Reachability reports whether a node is reachable and, when it is not,
// every specific unmet condition so the UI can say why.
type Reachability struct {
	NodeID    NodeID   `json:"node_id"`
	Reachable bool     `json:"reachable"`
	// MissingNodes are required predecessors absent from the completed set.
	MissingNodes []NodeID `json:"missing_nodes,omitempty"`
	// UnknownNodes are prerequisite references that resolve to no known
	// node. Malformed input locks the node rather than crashing.
	UnknownNodes []NodeID `json:"unknown_nodes,omitempty"`
	// ExperienceNeeded is how much more experience is required, if any.
	ExperienceNeeded int `json:"experience_needed,omitempty"`
	// LevelNeeded is the level still required, if any.
	LevelNeeded int `json:"level_needed,omitempty"`
}

// Evaluate decides reachability of one node against a progression snapshot
// and a completed-node set. It is a pure function: no state, no mutation.
// All set conditions are conjunctive.
func (g *Graph) Evaluate(node Node, snapshot core.Snapshot, completed map[NodeID]struct{}) Reachability {
	r := Reachability{NodeID: node.ID, Reachable: true}
	req := node.Requirements
	if req == nil {
		return r
	}
	for _, prev := range req.PreviousNodes {
		if _, known := g.nodes[prev]; !known {
			r.UnknownNodes = append(r.UnknownNodes, prev)
			r.Reachable = false
			continue
		}
		if _, done := completed[prev]; !done {
			r.MissingNodes = append(r.MissingNodes, prev)
			r.Reachable = false
		}
	}
	if req.MinExperience > 0 && snapshot.Experience.Total < req.MinExperience {
		r.ExperienceNeeded = req.MinExperience - snapshot.Experience.Total
		r.Reachable = false
	}
	if req.MinLevel > 0 && snapshot.Experience.Level < req.MinLevel {
		r.LevelNeeded = req.MinLevel
		r.Reachable = false
	}
	return r
}

// EvaluateAll evaluates every node in the graph in insertion order.
func (g *Graph) EvaluateAll(snapshot core.Snapshot, completed map[NodeID]struct{}) []Reachability {
	out := make([]Reachability, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.Evaluate(g.nodes[id], snapshot, completed))
	}
	return out
}

// ReachableIDs returns just the reachable node IDs, a convenience for
// callers that do not need the per-condition detail.
func (g *Graph) ReachableIDs(snapshot core.Snapshot, completed map[NodeID]struct{}) []NodeID {
	var out []NodeID
	for _, id := range g.order {
		if g.Evaluate(g.nodes[id], snapshot, completed).Reachable {
			out = append(out, id)
		}
	}
	return out
}
