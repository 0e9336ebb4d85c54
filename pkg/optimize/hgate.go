package optimize

import (
	"github.com/mhalver/gatefold/pkg/circuit"
)

// HGateReduction removes redundant Hadamard gates. It applies four rewrite
// rules, each grounded in an exact algebraic identity:
//
//  1. H · H = I                       (adjacent pair cancellation)
//  2. H · P · H = P† · H · P†         (phase-gate conjugation, P ∈ {S, S†, Rz(±π/2)})
//  3. H⊗H · CNOT · H⊗H = CNOT reversed (control/target conjugation)
//  4. H · P · CNOT · P† · H = P† · CNOT · P  (phase/CNOT sandwich on the target wire)
//
// Rules 1, 3 and 4 delete nodes; rules 2, 3 and 4 relabel nodes in place.
// One Apply performs one sweep per rule over the nodes present at sweep
// start; repeat Apply to reach a fixpoint.
type HGateReduction struct {
	report Report
}

// NewHGateReduction creates the pass with an empty report.
func NewHGateReduction() *HGateReduction {
	return &HGateReduction{report: Report{Pass: "h-reduction"}}
}

// Name returns the pass name used in reports and schedules.
func (p *HGateReduction) Name() string { return "h-reduction" }

// Apply runs the pass over the graph in place and returns the same graph.
func (p *HGateReduction) Apply(g Graph) (Graph, error) {
	p.report = Report{Pass: p.Name(), Before: g.CountKinds()}

	rules := []matchFunc{
		matchAdjacentHadamards,
		matchPhaseConjugation,
		matchCNOTConjugation,
		matchPhaseCNOTSandwich,
	}
	for _, rule := range rules {
		if err := scan(g, p.Name(), rule, &p.report); err != nil {
			return g, err
		}
	}

	p.report.After = g.CountKinds()
	return g, nil
}

// Report returns the accumulated counts for the most recent Apply call.
func (p *HGateReduction) Report() Report { return p.report }

// matchAdjacentHadamards matches an H immediately followed by another H on
// the same wire. Both are deleted.
func matchAdjacentHadamards(g Graph, n *circuit.Node) (Match, bool) {
	if n.Gate.Kind != circuit.KindH {
		return Match{}, false
	}
	succ, ok := nextOp(g, n.ID, n.Gate.Target)
	if !ok || succ.Gate.Kind != circuit.KindH {
		return Match{}, false
	}
	return Match{Remove: []string{n.ID, succ.ID}}, true
}

// matchPhaseConjugation matches H · P · H on one wire and relabels the three
// nodes to P† · H · P†. No nodes are deleted, but the rewrite strips the
// Hadamards off the phase gate so that rule 1 can cancel them against
// neighboring Hadamards on a later sweep.
func matchPhaseConjugation(g Graph, n *circuit.Node) (Match, bool) {
	if n.Gate.Kind != circuit.KindH {
		return Match{}, false
	}
	w := n.Gate.Target

	phase, ok := nextOp(g, n.ID, w)
	if !ok || !phase.Gate.IsPhase() {
		return Match{}, false
	}
	closer, ok := nextOp(g, phase.ID, w)
	if !ok || closer.Gate.Kind != circuit.KindH {
		return Match{}, false
	}

	inv := phase.Gate.Inverse()
	return Match{
		Relabel: []Relabel{
			{ID: n.ID, Gate: inv},
			{ID: phase.ID, Gate: circuit.NewGate(circuit.KindH, w)},
			{ID: closer.ID, Gate: inv},
		},
	}, true
}

// matchCNOTConjugation matches a CNOT whose four wire neighbors - the
// immediate predecessor and successor on both the control and the target
// wire - are all Hadamards. The four Hadamards are deleted and the CNOT's
// control and target roles swap.
func matchCNOTConjugation(g Graph, n *circuit.Node) (Match, bool) {
	if n.Gate.Kind != circuit.KindCX {
		return Match{}, false
	}
	ctrl, tgt := n.Gate.Control, n.Gate.Target

	neighbors := make([]*circuit.Node, 0, 4)
	for _, lookup := range []struct {
		fn   func(Graph, string, int) (*circuit.Node, bool)
		wire int
	}{
		{prevOp, ctrl}, {nextOp, ctrl}, {prevOp, tgt}, {nextOp, tgt},
	} {
		nb, ok := lookup.fn(g, n.ID, lookup.wire)
		if !ok || nb.Gate.Kind != circuit.KindH {
			return Match{}, false
		}
		neighbors = append(neighbors, nb)
	}

	// The wire-order invariant already forces the four neighbors to be
	// distinct, but a shared node would make the rewrite nonsensical, so
	// verify rather than assume.
	seen := make(map[string]bool, 4)
	remove := make([]string, 0, 4)
	for _, nb := range neighbors {
		if seen[nb.ID] {
			return Match{}, false
		}
		seen[nb.ID] = true
		remove = append(remove, nb.ID)
	}

	return Match{Remove: remove, Swap: []string{n.ID}}, true
}

// matchPhaseCNOTSandwich matches H · P · CNOT · P† · H along the CNOT's
// target wire. The two Hadamards are deleted and both phase gates are
// inverted in place, yielding P† · CNOT · P.
func matchPhaseCNOTSandwich(g Graph, n *circuit.Node) (Match, bool) {
	if n.Gate.Kind != circuit.KindH {
		return Match{}, false
	}
	w := n.Gate.Target

	opener, ok := nextOp(g, n.ID, w)
	if !ok || !opener.Gate.IsPhase() {
		return Match{}, false
	}
	cx, ok := nextOp(g, opener.ID, w)
	if !ok || cx.Gate.Kind != circuit.KindCX || cx.Gate.Target != w {
		return Match{}, false
	}
	closer, ok := nextOp(g, cx.ID, w)
	if !ok || !closer.Gate.IsPhase() || !opener.Gate.IsInverseOf(closer.Gate) {
		return Match{}, false
	}
	last, ok := nextOp(g, closer.ID, w)
	if !ok || last.Gate.Kind != circuit.KindH {
		return Match{}, false
	}

	return Match{
		Remove: []string{n.ID, last.ID},
		Relabel: []Relabel{
			{ID: opener.ID, Gate: opener.Gate.Inverse()},
			{ID: closer.ID, Gate: closer.Gate.Inverse()},
		},
	}, true
}
