package circuit

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode is returned when a node ID does not exist in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrNotOperation is returned when a structural edit targets an input or
	// output sentinel instead of an operation node.
	ErrNotOperation = errors.New("node is not an operation")

	// ErrWireMismatch is returned by [DAG.SetGate] when the replacement gate
	// does not act on the same set of wires as the node it replaces, and by
	// [DAG.InsertBefore] when the insertion point does not touch the new
	// gate's wire.
	ErrWireMismatch = errors.New("gate wires do not match")

	// ErrInvalidQubit is returned when a gate references a qubit outside the
	// graph's wire range.
	ErrInvalidQubit = errors.New("qubit index out of range")

	// ErrWireOrderBroken is returned by [DAG.Validate] when a wire's path
	// from input to output sentinel is not a simple total order covering
	// every operation on that wire. It indicates graph corruption.
	ErrWireOrderBroken = errors.New("wire path is not a simple total order")

	// ErrGraphHasCycle is returned by [DAG.Validate] when the union of all
	// wire edges contains a directed cycle.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// NodeKind distinguishes the three node flavors of a circuit DAG.
type NodeKind int

const (
	// NodeOp is a gate operation node.
	NodeOp NodeKind = iota
	// NodeInput is the input sentinel of one qubit wire (no predecessors).
	NodeInput
	// NodeOutput is the output sentinel of one qubit wire (no successors).
	NodeOutput
)

// Node is a vertex of the circuit DAG: either a gate operation or one of the
// per-wire sentinels. Sentinels carry only their Wire; operations carry a
// Gate. Nodes are created by the DAG and identified by stable string IDs.
type Node struct {
	ID   string
	Kind NodeKind
	Wire int  // sentinel wire (sentinels only)
	Gate Gate // gate identity (operations only)
}

// IsOp reports whether the node is a gate operation.
func (n *Node) IsOp() bool { return n.Kind == NodeOp }

// Wires returns the qubit wires the node touches. For sentinels this is the
// single sentinel wire.
func (n *Node) Wires() []int {
	if n.Kind != NodeOp {
		return []int{n.Wire}
	}
	return n.Gate.Wires()
}

// DAG is a directed acyclic graph of gate operations with one input/output
// sentinel pair per qubit wire. Edges encode "immediately precedes on this
// wire": every node holds exactly one predecessor and one successor link per
// wire it touches, so each wire's induced subgraph is a simple path from its
// input sentinel to its output sentinel.
//
// The zero value is not usable - use [New]. DAG is not safe for concurrent
// use without external synchronization.
type DAG struct {
	qubits int
	nodes  map[string]*Node
	next   map[string]map[int]string // nodeID -> wire -> successor ID
	prev   map[string]map[int]string // nodeID -> wire -> predecessor ID
	seq    int                       // monotonic suffix for operation IDs
	order  []string                  // operation IDs in insertion order
}

// New creates a circuit DAG over the given number of qubit wires. Each wire
// starts as a direct input→output sentinel link.
func New(qubits int) *DAG {
	d := &DAG{
		qubits: qubits,
		nodes:  make(map[string]*Node),
		next:   make(map[string]map[int]string),
		prev:   make(map[string]map[int]string),
	}
	for q := 0; q < qubits; q++ {
		in := &Node{ID: inputID(q), Kind: NodeInput, Wire: q}
		out := &Node{ID: outputID(q), Kind: NodeOutput, Wire: q}
		d.nodes[in.ID] = in
		d.nodes[out.ID] = out
		d.link(in.ID, out.ID, q)
	}
	return d
}

func inputID(wire int) string  { return fmt.Sprintf("in_q%d", wire) }
func outputID(wire int) string { return fmt.Sprintf("out_q%d", wire) }

// Qubits returns the number of qubit wires.
func (d *DAG) Qubits() int { return d.qubits }

// Input returns the input sentinel of the given wire.
func (d *DAG) Input(wire int) *Node { return d.nodes[inputID(wire)] }

// Output returns the output sentinel of the given wire.
func (d *DAG) Output(wire int) *Node { return d.nodes[outputID(wire)] }

// Node returns the node with the given ID and true, or nil and false.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// OpCount returns the number of operation nodes in the graph.
func (d *DAG) OpCount() int { return len(d.nodes) - 2*d.qubits }

// Ops returns all operation nodes as a stable snapshot in insertion order.
// Rewrites performed after the call do not affect the returned slice, which
// is what the rewrite passes rely on when mutating during a scan.
func (d *DAG) Ops() []*Node {
	ops := make([]*Node, 0, len(d.order))
	for _, id := range d.order {
		if n, ok := d.nodes[id]; ok {
			ops = append(ops, n)
		}
	}
	return ops
}

// Next returns the immediate successor of the node on the given wire.
// The second return value is false when the node does not exist or does not
// touch the wire.
func (d *DAG) Next(id string, wire int) (*Node, bool) {
	if links, ok := d.next[id]; ok {
		if succ, ok := links[wire]; ok {
			return d.nodes[succ], true
		}
	}
	return nil, false
}

// Prev returns the immediate predecessor of the node on the given wire.
// The second return value is false when the node does not exist or does not
// touch the wire.
func (d *DAG) Prev(id string, wire int) (*Node, bool) {
	if links, ok := d.prev[id]; ok {
		if pred, ok := links[wire]; ok {
			return d.nodes[pred], true
		}
	}
	return nil, false
}

// Append adds a gate operation at the end of its wires, immediately before
// the output sentinels. This is the primitive circuit builders use to
// translate a sequential gate list into the DAG.
func (d *DAG) Append(g Gate) (*Node, error) {
	for _, w := range g.Wires() {
		if w < 0 || w >= d.qubits {
			return nil, fmt.Errorf("%w: q%d", ErrInvalidQubit, w)
		}
	}
	if g.Kind == KindCX && g.Control == g.Target {
		return nil, fmt.Errorf("%w: cx control equals target q%d", ErrInvalidQubit, g.Target)
	}

	d.seq++
	n := &Node{ID: fmt.Sprintf("%s_%d", g.Kind, d.seq), Kind: NodeOp, Gate: g}
	d.nodes[n.ID] = n
	d.order = append(d.order, n.ID)

	for _, w := range g.Wires() {
		out := outputID(w)
		pred := d.prev[out][w]
		d.link(pred, n.ID, w)
		d.link(n.ID, out, w)
	}
	return n, nil
}

// InsertBefore inserts a new single-qubit gate on its wire, immediately
// before the node identified by id. The insertion point must touch the
// gate's wire.
func (d *DAG) InsertBefore(id string, g Gate) (*Node, error) {
	if g.Control != NoControl {
		return nil, fmt.Errorf("%w: insert supports single-qubit gates only", ErrWireMismatch)
	}
	at, ok := d.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	w := g.Target
	pred, ok := d.prev[id][w]
	if !ok {
		return nil, fmt.Errorf("%w: %s does not touch q%d", ErrWireMismatch, id, w)
	}

	d.seq++
	n := &Node{ID: fmt.Sprintf("%s_%d", g.Kind, d.seq), Kind: NodeOp, Gate: g}
	d.nodes[n.ID] = n
	d.order = append(d.order, n.ID)
	d.link(pred, n.ID, w)
	d.link(n.ID, at.ID, w)
	return n, nil
}

// RemoveOp deletes an operation node and reconnects its predecessor and
// successor on every wire it touched, preserving the per-wire path property.
func (d *DAG) RemoveOp(id string) error {
	n, ok := d.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if !n.IsOp() {
		return fmt.Errorf("%w: %s", ErrNotOperation, id)
	}
	for _, w := range n.Wires() {
		pred := d.prev[id][w]
		succ := d.next[id][w]
		d.link(pred, succ, w)
	}
	delete(d.nodes, id)
	delete(d.next, id)
	delete(d.prev, id)
	return nil
}

// SetGate relabels an operation node's gate in place. The replacement must
// act on exactly the same set of wires; use [DAG.SwapRoles] to exchange a
// CNOT's control and target.
func (d *DAG) SetGate(id string, g Gate) error {
	n, ok := d.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if !n.IsOp() {
		return fmt.Errorf("%w: %s", ErrNotOperation, id)
	}
	if !sameWires(n.Gate.Wires(), g.Wires()) {
		return fmt.Errorf("%w: %s", ErrWireMismatch, id)
	}
	n.Gate = g
	return nil
}

// SwapRoles exchanges the control and target qubits of a controlled gate in
// place. The wire links are untouched since the node keeps the same wires.
func (d *DAG) SwapRoles(id string) error {
	n, ok := d.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if !n.IsOp() || n.Gate.Control == NoControl {
		return fmt.Errorf("%w: %s has no control", ErrNotOperation, id)
	}
	n.Gate.Control, n.Gate.Target = n.Gate.Target, n.Gate.Control
	return nil
}

// Gates flattens the DAG back into a sequential gate list in a valid
// topological order. Per-wire operation order is preserved exactly; the
// interleaving across wires follows a deterministic Kahn traversal.
func (d *DAG) Gates() []Gate {
	indeg := make(map[string]int, len(d.nodes))
	for _, id := range d.order {
		if n, ok := d.nodes[id]; ok {
			for _, w := range n.Wires() {
				if pred, ok := d.prev[id][w]; ok && d.nodes[pred].IsOp() {
					indeg[id]++
				}
			}
		}
	}

	ready := make([]string, 0)
	for _, id := range d.order {
		if _, ok := d.nodes[id]; ok && indeg[id] == 0 {
			ready = append(ready, id)
		}
	}

	gates := make([]Gate, 0, len(d.order))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		n := d.nodes[id]
		gates = append(gates, n.Gate)
		for _, w := range n.Wires() {
			succ := d.next[id][w]
			s := d.nodes[succ]
			if !s.IsOp() {
				continue
			}
			indeg[succ]--
			if indeg[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}
	return gates
}

// CountKinds returns a histogram of gate kinds over all operation nodes.
func (d *DAG) CountKinds() map[Kind]int {
	counts := make(map[Kind]int)
	for _, id := range d.order {
		if n, ok := d.nodes[id]; ok {
			counts[n.Gate.Kind]++
		}
	}
	return counts
}

// WireOps returns the operation nodes on one wire in path order, input to
// output sentinel. Returns ErrWireOrderBroken when the wire path is corrupt.
func (d *DAG) WireOps(wire int) ([]*Node, error) {
	var ops []*Node
	seen := make(map[string]bool)
	cur := inputID(wire)
	for {
		succ, ok := d.next[cur][wire]
		if !ok {
			return nil, fmt.Errorf("%w: q%d path stops at %s", ErrWireOrderBroken, wire, cur)
		}
		if seen[succ] {
			return nil, fmt.Errorf("%w: q%d revisits %s", ErrWireOrderBroken, wire, succ)
		}
		seen[succ] = true
		n, ok := d.nodes[succ]
		if !ok {
			return nil, fmt.Errorf("%w: q%d links to missing node %s", ErrWireOrderBroken, wire, succ)
		}
		if n.Kind == NodeOutput {
			return ops, nil
		}
		if !n.Gate.OnWire(wire) {
			return nil, fmt.Errorf("%w: %s does not act on q%d", ErrWireOrderBroken, n.ID, wire)
		}
		ops = append(ops, n)
		cur = succ
	}
}

// Validate checks the structural invariants the rewrite passes rely on:
//
//  1. Every wire's path is a simple total order from input to output
//     sentinel, covering exactly the operations acting on that wire.
//  2. The union of all wire edges is acyclic.
//
// Returns ErrWireOrderBroken or ErrGraphHasCycle accordingly. Passes call
// this before scanning and refuse to rewrite a malformed graph.
func (d *DAG) Validate() error {
	onWire := make(map[int]int)
	for _, id := range d.order {
		if n, ok := d.nodes[id]; ok {
			for _, w := range n.Wires() {
				onWire[w]++
			}
		}
	}
	for q := 0; q < d.qubits; q++ {
		ops, err := d.WireOps(q)
		if err != nil {
			return err
		}
		if len(ops) != onWire[q] {
			return fmt.Errorf("%w: q%d path covers %d of %d operations",
				ErrWireOrderBroken, q, len(ops), onWire[q])
		}
		for _, n := range ops {
			if pred, ok := d.prev[n.ID][q]; !ok || d.next[pred][q] != n.ID {
				return fmt.Errorf("%w: %s has inconsistent q%d links", ErrWireOrderBroken, n.ID, q)
			}
		}
	}
	return d.detectCycles()
}

// detectCycles runs depth-first search with white/gray/black coloring over
// the union of all wire edges.
func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, succ := range d.next[id] {
			switch color[succ] {
			case white:
				dfs(succ)
			case gray:
				hasCycle = true
				return
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for id := range d.nodes {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// link connects from→to on the given wire in both directions.
func (d *DAG) link(from, to string, wire int) {
	if d.next[from] == nil {
		d.next[from] = make(map[int]string)
	}
	if d.prev[to] == nil {
		d.prev[to] = make(map[int]string)
	}
	d.next[from][wire] = to
	d.prev[to][wire] = from
}

func sameWires(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int]bool, len(a))
	for _, w := range a {
		set[w] = true
	}
	for _, w := range b {
		if !set[w] {
			return false
		}
	}
	return true
}

// FromGates builds a DAG over the given number of qubits from a sequential
// gate list. Gates are appended in order, so the list's per-wire order
// becomes the DAG's wire order.
func FromGates(qubits int, gates []Gate) (*DAG, error) {
	d := New(qubits)
	for _, g := range gates {
		if _, err := d.Append(g); err != nil {
			return nil, fmt.Errorf("append %s: %w", g, err)
		}
	}
	return d, nil
}
