package optimize

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/mhalver/gatefold/pkg/circuit"
)

// Report summarizes what one Apply call did to the graph.
//
// Removed counts gate nodes deleted from the graph; Relabeled counts nodes
// whose gate was rewritten in place (role swaps, phase inversions, angle
// merges). Before and After are gate-kind histograms captured at the start
// and end of the pass, mirroring the removal counts: for every kind,
// Before[k] - After[k] summed over kinds equals Removed.
//
// A Report is created empty when the pass is constructed, accumulated during
// Apply, and read-only afterwards. Re-applying a pass resets it.
type Report struct {
	Pass      string
	Removed   int
	Relabeled int
	Before    map[circuit.Kind]int
	After     map[circuit.Kind]int
}

// Reduced returns how many gates of the given kind the pass eliminated.
// Negative values mean the pass produced more of that kind than it consumed
// (e.g. a merge that snapped two T gates to an S).
func (r Report) Reduced(k circuit.Kind) int {
	return r.Before[k] - r.After[k]
}

// String formats the report as per-kind reduction lines, e.g.
//
//	h-reduction: reduced h gates by 4 (before: 6, after: 2)
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: removed %d, relabeled %d", r.Pass, r.Removed, r.Relabeled)
	for _, k := range slices.Sorted(maps.Keys(r.Before)) {
		before, after := r.Before[k], r.After[k]
		if before == after {
			continue
		}
		switch {
		case after == 0:
			fmt.Fprintf(&b, "\n  eliminated all %d %s gates", before, k)
		case before > after:
			fmt.Fprintf(&b, "\n  reduced %s gates by %d (before: %d, after: %d)", k, before-after, before, after)
		default:
			fmt.Fprintf(&b, "\n  introduced %d %s gates (before: %d, after: %d)", after-before, k, before, after)
		}
	}
	return b.String()
}
