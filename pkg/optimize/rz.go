package optimize

import (
	"github.com/mhalver/gatefold/pkg/circuit"
)

// RzReduction merges or cancels Z rotations on the same wire. Two rotations
// need not be adjacent: the pass walks forward along the wire, commuting the
// rotation past gates that provably commute with a diagonal gate on that
// wire, until it finds a second Z rotation (merge), a non-commuting gate
// (no match), or the output sentinel (no match).
//
// The commutation rules, each an exact identity:
//
//   - a CNOT whose control is on this wire commutes with any diagonal gate
//     on the wire;
//   - the triple H · CNOT(target here) · H commutes with a Z rotation;
//   - the triple CNOT(target here) · Rz · CNOT(target here) commutes with a
//     Z rotation.
//
// On a merge the two angles combine additively (discrete phase gates snap
// back to their discrete kind, e.g. T·T becomes S). A combined angle of
// exactly zero mod 2π deletes both nodes; otherwise the first node is
// deleted and the second relabeled with the combined gate, i.e. the merged
// rotation sits where the second one was.
type RzReduction struct {
	report Report
}

// NewRzReduction creates the pass with an empty report.
func NewRzReduction() *RzReduction {
	return &RzReduction{report: Report{Pass: "rz-reduction"}}
}

// Name returns the pass name used in reports and schedules.
func (p *RzReduction) Name() string { return "rz-reduction" }

// Apply runs the pass over the graph in place and returns the same graph.
func (p *RzReduction) Apply(g Graph) (Graph, error) {
	p.report = Report{Pass: p.Name(), Before: g.CountKinds()}
	if err := scan(g, p.Name(), matchRotationMerge, &p.report); err != nil {
		return g, err
	}
	p.report.After = g.CountKinds()
	return g, nil
}

// Report returns the accumulated counts for the most recent Apply call.
func (p *RzReduction) Report() Report { return p.report }

// matchRotationMerge walks forward from a Z rotation looking for a partner
// to merge with, skipping over commuting gates. The walk is bounded by the
// wire's length; it never leaves the candidate's wire.
func matchRotationMerge(g Graph, n *circuit.Node) (Match, bool) {
	if !n.Gate.Kind.IsZRotation() {
		return Match{}, false
	}
	w := n.Gate.Target

	cur, ok := nextOp(g, n.ID, w)
	for ok {
		switch {
		case cur.Gate.Kind.IsZRotation():
			return mergeRotations(n, cur), true

		case cur.Gate.Kind == circuit.KindCX && cur.Gate.Control == w:
			// Diagonal gates commute through a CNOT's control.
			cur, ok = nextOp(g, cur.ID, w)

		case cur.Gate.Kind == circuit.KindH:
			cur, ok = skipHadamardConjugatedCNOT(g, cur, w)

		case cur.Gate.Kind == circuit.KindCX && cur.Gate.Target == w:
			cur, ok = skipCNOTRotationCNOT(g, cur, w)

		default:
			// Non-commuting gate (or unknown kind): conservatively stop.
			return Match{}, false
		}
	}
	return Match{}, false
}

// mergeRotations builds the match for two Z rotations on the same wire.
func mergeRotations(first, second *circuit.Node) Match {
	combined, ok := circuit.CombineZ(first.Gate, second.Gate)
	if !ok {
		// Exact inverses: both nodes vanish, no zero-angle no-op remains.
		return Match{Remove: []string{first.ID, second.ID}}
	}
	return Match{
		Remove:  []string{first.ID},
		Relabel: []Relabel{{ID: second.ID, Gate: combined}},
	}
}

// skipHadamardConjugatedCNOT advances past the triple H · CNOT · H when the
// CNOT's target is on the walk wire. Returns the node after the closing
// Hadamard, or false when the triple is not present (the walk then stops at
// the non-commuting Hadamard).
func skipHadamardConjugatedCNOT(g Graph, h *circuit.Node, w int) (*circuit.Node, bool) {
	cx, ok := nextOp(g, h.ID, w)
	if !ok || cx.Gate.Kind != circuit.KindCX || cx.Gate.Target != w {
		return nil, false
	}
	closer, ok := nextOp(g, cx.ID, w)
	if !ok || closer.Gate.Kind != circuit.KindH {
		return nil, false
	}
	return nextOp(g, closer.ID, w)
}

// skipCNOTRotationCNOT advances past the triple CNOT · Rz · CNOT when both
// CNOTs share the same control and target their target on the walk wire;
// the compound is then a ZZ rotation, which is diagonal. Returns the node
// after the second CNOT, or false when the triple is not present.
func skipCNOTRotationCNOT(g Graph, cx *circuit.Node, w int) (*circuit.Node, bool) {
	rot, ok := nextOp(g, cx.ID, w)
	if !ok || !rot.Gate.Kind.IsZRotation() {
		return nil, false
	}
	cx2, ok := nextOp(g, rot.ID, w)
	if !ok || cx2.Gate.Kind != circuit.KindCX || cx2.Gate.Target != w || cx2.Gate.Control != cx.Gate.Control {
		return nil, false
	}
	return nextOp(g, cx2.ID, w)
}
