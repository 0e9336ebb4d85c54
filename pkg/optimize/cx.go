package optimize

import (
	"github.com/mhalver/gatefold/pkg/circuit"
)

// CxReduction cancels pairs of identical CNOTs, exploiting that a CNOT is
// its own inverse. Two CNOTs with the same control and target cancel when
// they are adjacent up to commutation on both wires: the pass searches
// forward along the control wire and along the target wire independently,
// skipping gates that commute with the CNOT on that wire, and matches only
// when both searches stop at the same partner CNOT.
//
// Per-wire commutation rules:
//
//   - control wire: another CNOT sharing the control commutes, and so does
//     any diagonal single-qubit gate;
//   - target wire: another CNOT sharing the target commutes, and so does a
//     Pauli-X.
//
// Any other intervening gate - in particular a non-diagonal single-qubit
// gate such as H on either wire - aborts the search with no match.
type CxReduction struct {
	report Report
}

// NewCxReduction creates the pass with an empty report.
func NewCxReduction() *CxReduction {
	return &CxReduction{report: Report{Pass: "cx-reduction"}}
}

// Name returns the pass name used in reports and schedules.
func (p *CxReduction) Name() string { return "cx-reduction" }

// Apply runs the pass over the graph in place and returns the same graph.
func (p *CxReduction) Apply(g Graph) (Graph, error) {
	p.report = Report{Pass: p.Name(), Before: g.CountKinds()}
	if err := scan(g, p.Name(), matchCNOTCancellation, &p.report); err != nil {
		return g, err
	}
	p.report.After = g.CountKinds()
	return g, nil
}

// Report returns the accumulated counts for the most recent Apply call.
func (p *CxReduction) Report() Report { return p.report }

// matchCNOTCancellation matches a CNOT that half-commutes to the same
// partner CNOT along both of its wires. Both CNOTs are deleted.
func matchCNOTCancellation(g Graph, n *circuit.Node) (Match, bool) {
	if n.Gate.Kind != circuit.KindCX {
		return Match{}, false
	}

	onControl := searchCancelPartner(g, n, n.Gate.Control, true)
	if onControl == "" {
		return Match{}, false
	}
	onTarget := searchCancelPartner(g, n, n.Gate.Target, false)
	if onTarget != onControl {
		return Match{}, false
	}
	return Match{Remove: []string{n.ID, onControl}}, true
}

// searchCancelPartner walks forward from the CNOT along one of its wires,
// skipping commuting gates, and returns the ID of the first CNOT identical
// to it. Returns "" when a non-commuting gate, an unknown gate kind, or the
// output sentinel ends the search first.
func searchCancelPartner(g Graph, n *circuit.Node, w int, onControl bool) string {
	cur, ok := nextOp(g, n.ID, w)
	for ok {
		gate := cur.Gate
		switch {
		case gate.Kind == circuit.KindCX && gate.Control == n.Gate.Control && gate.Target == n.Gate.Target:
			return cur.ID

		case gate.Kind == circuit.KindCX && onControl && gate.Control == w:
			// Shares our control: the CNOTs commute.
			cur, ok = nextOp(g, cur.ID, w)

		case gate.Kind == circuit.KindCX && !onControl && gate.Target == w:
			// Shares our target: the CNOTs commute.
			cur, ok = nextOp(g, cur.ID, w)

		case gate.Control == circuit.NoControl && onControl && gate.Kind.IsDiagonal():
			cur, ok = nextOp(g, cur.ID, w)

		case gate.Control == circuit.NoControl && !onControl && gate.Kind == circuit.KindX:
			cur, ok = nextOp(g, cur.ID, w)

		default:
			return ""
		}
	}
	return ""
}
