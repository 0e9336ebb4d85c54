// Package circuit provides the DAG representation of a quantum circuit that
// the rewrite passes in [github.com/mhalver/gatefold/pkg/optimize] consume.
//
// # Structure
//
// A [DAG] holds one input/output sentinel pair per qubit wire plus one node
// per gate operation. Edges encode "immediately precedes on this wire", so
// each wire forms a simple path from its input sentinel through the
// operations acting on it to its output sentinel. The whole graph is only
// partially ordered: multi-qubit gates tie wires together.
//
// # Invariants
//
//   - Per-wire total order: every wire's induced subgraph is a simple path.
//   - Acyclicity: the union of all wire edges contains no directed cycle.
//   - Reconnection: removing an operation relinks its predecessor and
//     successor on every wire it touched.
//
// [DAG.Validate] checks all three and is called by every pass before it
// rewrites anything.
//
// # Gate algebra
//
// The closed gate set lives in [Kind], and all pairwise algebraic relations
// the passes consult (diagonality, inverses, Z-rotation angle combination)
// are centralized in gate.go rather than spread across the matchers.
package circuit
