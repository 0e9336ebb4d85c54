// Package optimize provides rewrite passes that shrink a quantum circuit DAG
// without changing the unitary it computes.
//
// # Overview
//
// Each pass scans the graph for one family of local structural patterns,
// verifies the corresponding algebraic identity, and rewrites the graph in
// place while preserving per-wire operation order everywhere else:
//
//   - [HGateReduction] cancels adjacent Hadamard pairs, rewrites the
//     Hadamard/phase conjugation identities, and removes the four Hadamards
//     conjugating a CNOT by swapping the CNOT's control and target.
//   - [RzReduction] merges or cancels Z rotations separated only by gates
//     they commute with.
//   - [CxReduction] cancels CNOT pairs that are adjacent up to commutation,
//     since a CNOT is its own inverse.
//
// Passes consume the graph through the narrow [Graph] interface, so any
// representation satisfying it can be optimized.
//
// # Usage
//
// Apply a single pass:
//
//	red := optimize.NewCxReduction()
//	if _, err := red.Apply(g); err != nil {
//	    return err
//	}
//	rep := red.Report()
//
// Or run the published light-optimization schedule to a fixpoint:
//
//	summary, err := optimize.LightSchedule().Run(g, optimize.RunToFixpoint)
//
// # Rewrite discipline
//
// A pass snapshots its candidate nodes before rewriting and never trusts
// traversal order during mutation: deleting a node changes wire adjacency,
// so each candidate is re-checked against the live graph before its match is
// attempted. A matched pattern is rewritten atomically; a failed match
// leaves the graph untouched. A structurally invalid graph (cycle, broken
// wire order) aborts the pass with a GRAPH_* error before any rewrite.
package optimize
