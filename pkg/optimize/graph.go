package optimize

import (
	"github.com/mhalver/gatefold/pkg/circuit"
)

// Graph is the narrow surface a rewrite pass needs from a circuit DAG.
// [circuit.DAG] satisfies it; tests substitute fakes to exercise failure
// paths. Passes borrow the graph mutably for the duration of Apply and do
// not retain it afterwards.
type Graph interface {
	// Qubits returns the number of qubit wires.
	Qubits() int

	// Ops enumerates all operation nodes as a stable snapshot taken at call
	// time. Mutations after the call must not affect the returned slice.
	Ops() []*circuit.Node

	// Node returns the node with the given ID, or false if it was removed.
	Node(id string) (*circuit.Node, bool)

	// Next and Prev return the immediate successor/predecessor of a node on
	// one of the wires it touches.
	Next(id string, wire int) (*circuit.Node, bool)
	Prev(id string, wire int) (*circuit.Node, bool)

	// RemoveOp deletes an operation node, reconnecting its predecessor and
	// successor on every wire it touched.
	RemoveOp(id string) error

	// SetGate relabels a node's gate in place (same wires).
	SetGate(id string, g circuit.Gate) error

	// SwapRoles exchanges a controlled gate's control and target in place.
	SwapRoles(id string) error

	// Validate checks the structural invariants (per-wire total order,
	// acyclicity) and returns a descriptive error when they are violated.
	Validate() error

	// OpCount returns the number of operation nodes.
	OpCount() int

	// CountKinds returns a histogram of gate kinds over all operations.
	CountKinds() map[circuit.Kind]int
}

var _ Graph = (*circuit.DAG)(nil)
