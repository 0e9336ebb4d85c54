package optimize

import (
	stderrors "errors"

	"github.com/mhalver/gatefold/pkg/circuit"
	"github.com/mhalver/gatefold/pkg/errors"
)

// Relabel names a node and the gate that should replace its current label.
type Relabel struct {
	ID   string
	Gate circuit.Gate
}

// Match describes exactly which nodes participate in one rewrite and how:
// nodes to delete, nodes to relabel in place, and controlled gates whose
// control/target roles swap. Matchers return a Match without mutating the
// graph; the engine applies it atomically.
type Match struct {
	Remove  []string
	Relabel []Relabel
	Swap    []string
}

// matchFunc is a pure predicate over one candidate node and its bounded
// wire neighborhood. It returns false for the normal "no match" outcome.
type matchFunc func(g Graph, n *circuit.Node) (Match, bool)

// scan drives one rewrite sweep: it validates the graph, snapshots the
// candidate operation nodes, and applies every match found. Candidates
// removed by an earlier rewrite in the same sweep are skipped. Patterns
// newly exposed by a rewrite are only found by a later Apply call.
func scan(g Graph, pass string, match matchFunc, rep *Report) error {
	if err := g.Validate(); err != nil {
		return structuralError(pass, err)
	}

	for _, n := range g.Ops() {
		if _, ok := g.Node(n.ID); !ok {
			continue // removed by an earlier rewrite in this sweep
		}
		m, ok := match(g, n)
		if !ok {
			continue
		}
		if err := apply(g, pass, m, rep); err != nil {
			return err
		}
	}
	return nil
}

// apply performs all edits of one match and accumulates the report.
// The primitives only fail on graph corruption, which Validate has already
// ruled out, so any error here escalates as an internal failure.
func apply(g Graph, pass string, m Match, rep *Report) error {
	for _, id := range m.Remove {
		if err := g.RemoveOp(id); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "pass %s: remove %s", pass, id)
		}
	}
	for _, rl := range m.Relabel {
		if err := g.SetGate(rl.ID, rl.Gate); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "pass %s: relabel %s", pass, rl.ID)
		}
	}
	for _, id := range m.Swap {
		if err := g.SwapRoles(id); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "pass %s: swap roles of %s", pass, id)
		}
	}
	rep.Removed += len(m.Remove)
	rep.Relabeled += len(m.Relabel) + len(m.Swap)
	return nil
}

// structuralError maps a circuit validation failure onto the structured
// GRAPH_* error codes.
func structuralError(pass string, err error) error {
	code := errors.ErrCodeWireOrder
	if stderrors.Is(err, circuit.ErrGraphHasCycle) {
		code = errors.ErrCodeGraphCycle
	}
	return errors.Wrap(code, err, "pass %s: refusing to rewrite malformed graph", pass)
}

// nextOp returns the successor of id on wire if it is an operation node.
func nextOp(g Graph, id string, wire int) (*circuit.Node, bool) {
	n, ok := g.Next(id, wire)
	if !ok || !n.IsOp() {
		return nil, false
	}
	return n, true
}

// prevOp returns the predecessor of id on wire if it is an operation node.
func prevOp(g Graph, id string, wire int) (*circuit.Node, bool) {
	n, ok := g.Prev(id, wire)
	if !ok || !n.IsOp() {
		return nil, false
	}
	return n, true
}
