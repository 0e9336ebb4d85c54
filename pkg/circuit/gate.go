package circuit

import (
	"fmt"
	"math"
)

// Kind identifies a gate in the closed gate set supported by the optimizer.
// Adjoint variants of the discrete phase gates are their own kinds (Sdg, Tdg)
// so that the algebra tables below stay total over the enum.
type Kind int

const (
	// KindUnknown is the zero value. Nodes carrying it are never rewritten.
	KindUnknown Kind = iota
	// KindH is the Hadamard gate (self-inverse).
	KindH
	// KindX is the Pauli-X gate.
	KindX
	// KindY is the Pauli-Y gate.
	KindY
	// KindZ is the Pauli-Z gate, a Z rotation by π.
	KindZ
	// KindS is the phase gate, a Z rotation by π/2.
	KindS
	// KindSdg is the adjoint phase gate, a Z rotation by -π/2.
	KindSdg
	// KindT is the T gate, a Z rotation by π/4.
	KindT
	// KindTdg is the adjoint T gate, a Z rotation by -π/4.
	KindTdg
	// KindRz is a continuous Z rotation parameterized by an angle.
	KindRz
	// KindRx is a continuous X rotation parameterized by an angle.
	KindRx
	// KindRy is a continuous Y rotation parameterized by an angle.
	KindRy
	// KindCX is the controlled-NOT gate (self-inverse).
	KindCX
)

// kindNames maps kinds to their OpenQASM mnemonics.
var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindH:       "h",
	KindX:       "x",
	KindY:       "y",
	KindZ:       "z",
	KindS:       "s",
	KindSdg:     "sdg",
	KindT:       "t",
	KindTdg:     "tdg",
	KindRz:      "rz",
	KindRx:      "rx",
	KindRy:      "ry",
	KindCX:      "cx",
}

// String returns the OpenQASM mnemonic for the kind (e.g., "h", "cx").
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindFromName returns the kind for an OpenQASM mnemonic.
// Unrecognized names map to KindUnknown.
func KindFromName(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return KindUnknown
}

// NoControl marks the Control field of single-qubit gates.
const NoControl = -1

// Gate is the immutable identity of one operation: its kind, the qubits it
// acts on and, for continuous rotations, its angle in radians.
//
// Single-qubit gates leave Control at NoControl. The optimizer only inspects,
// deletes, and relabels gates; it never invents kinds outside the enum.
type Gate struct {
	Kind    Kind
	Target  int
	Control int
	Angle   float64
}

// NewGate returns a single-qubit gate on the given target.
func NewGate(kind Kind, target int) Gate {
	return Gate{Kind: kind, Target: target, Control: NoControl}
}

// NewRotation returns a continuous rotation gate on the given target.
func NewRotation(kind Kind, target int, angle float64) Gate {
	return Gate{Kind: kind, Target: target, Control: NoControl, Angle: angle}
}

// NewCX returns a controlled-NOT with the given control and target.
func NewCX(control, target int) Gate {
	return Gate{Kind: KindCX, Target: target, Control: control}
}

// Wires returns the qubit wires the gate touches, control first.
func (g Gate) Wires() []int {
	if g.Control != NoControl {
		return []int{g.Control, g.Target}
	}
	return []int{g.Target}
}

// OnWire reports whether the gate acts on the given qubit wire.
func (g Gate) OnWire(wire int) bool {
	return g.Target == wire || (g.Control != NoControl && g.Control == wire)
}

// String formats the gate for logs and error messages, e.g. "cx q2,q0" or
// "rz(1.5708) q1".
func (g Gate) String() string {
	switch {
	case g.Kind == KindCX:
		return fmt.Sprintf("cx q%d,q%d", g.Control, g.Target)
	case g.Kind.IsContinuous():
		return fmt.Sprintf("%s(%.6g) q%d", g.Kind, g.Angle, g.Target)
	default:
		return fmt.Sprintf("%s q%d", g.Kind, g.Target)
	}
}

// =============================================================================
// Gate Algebra
//
// All pairwise algebraic knowledge the rewrite passes rely on lives here:
// which gates are diagonal (and hence commute with a CNOT on its control
// wire), which are Z rotations (and hence mergeable), what each gate's
// inverse is, and how Z-rotation angles combine. Keeping this in one place
// makes the relations independently testable and keeps the matchers free of
// per-gate conditionals.
// =============================================================================

// AngleEpsilon is the tolerance used when comparing combined rotation angles
// against the identity and against the discrete phase-gate angles.
const AngleEpsilon = 1e-9

// IsContinuous reports whether the kind carries an angle parameter.
func (k Kind) IsContinuous() bool {
	return k == KindRz || k == KindRx || k == KindRy
}

// IsDiagonal reports whether the gate's matrix is diagonal in the
// computational basis. Diagonal single-qubit gates commute with a CNOT
// acting on the same wire as its control.
func (k Kind) IsDiagonal() bool {
	switch k {
	case KindZ, KindS, KindSdg, KindT, KindTdg, KindRz:
		return true
	}
	return false
}

// IsSelfInverse reports whether applying the gate twice yields the identity.
func (k Kind) IsSelfInverse() bool {
	switch k {
	case KindH, KindX, KindY, KindZ, KindCX:
		return true
	}
	return false
}

// IsZRotation reports whether the kind is a rotation about the Z axis,
// including the discrete fixed-angle cases. These are the gates RzReduction
// may merge or cancel.
func (k Kind) IsZRotation() bool {
	switch k {
	case KindZ, KindS, KindSdg, KindT, KindTdg, KindRz:
		return true
	}
	return false
}

// IsPhase reports whether the kind is a quarter-turn phase gate (S, S†) or,
// for gates, an Rz whose angle is ±π/2. Phase gates participate in the
// Hadamard conjugation identities H·P·H = P†·H·P†.
func (g Gate) IsPhase() bool {
	switch g.Kind {
	case KindS, KindSdg:
		return true
	case KindRz:
		return math.Abs(math.Abs(g.Angle)-math.Pi/2) < AngleEpsilon
	}
	return false
}

// zAngles maps the discrete Z-rotation kinds to their angles.
var zAngles = map[Kind]float64{
	KindZ:   math.Pi,
	KindS:   math.Pi / 2,
	KindSdg: -math.Pi / 2,
	KindT:   math.Pi / 4,
	KindTdg: -math.Pi / 4,
}

// ZAngle returns the Z-rotation angle of the gate and true when the gate is
// a Z rotation; otherwise it returns 0 and false.
func (g Gate) ZAngle() (float64, bool) {
	if g.Kind == KindRz {
		return g.Angle, true
	}
	if a, ok := zAngles[g.Kind]; ok {
		return a, true
	}
	return 0, false
}

// Inverse returns the adjoint of the gate. Self-inverse kinds return the
// gate unchanged; discrete phase gates flip to their adjoint kind;
// continuous rotations negate their angle. KindUnknown inverts to itself.
func (g Gate) Inverse() Gate {
	inv := g
	switch g.Kind {
	case KindS:
		inv.Kind = KindSdg
	case KindSdg:
		inv.Kind = KindS
	case KindT:
		inv.Kind = KindTdg
	case KindTdg:
		inv.Kind = KindT
	case KindRz, KindRx, KindRy:
		inv.Angle = -g.Angle
	}
	return inv
}

// IsInverseOf reports whether g composed with other yields the identity on
// the same wires. For Z rotations the comparison is by combined angle; for
// the remaining kinds it requires a self-inverse kind appearing twice.
func (g Gate) IsInverseOf(other Gate) bool {
	if g.Target != other.Target || g.Control != other.Control {
		return false
	}
	if a, ok := g.ZAngle(); ok {
		if b, okB := other.ZAngle(); okB {
			return isIdentityAngle(a + b)
		}
		return false
	}
	return g.Kind == other.Kind && g.Kind.IsSelfInverse()
}

// CombineZ combines two Z rotations on the same target into a single gate.
// The second return value is false when the combined angle is the identity,
// meaning both gates cancel and nothing should replace them.
//
// Whenever the combined angle lands on one of the discrete phase-gate
// angles (within AngleEpsilon), the result snaps back to the discrete kind,
// e.g. T·T combines to S. Combination is exact up to global phase.
func CombineZ(a, b Gate) (Gate, bool) {
	angleA, okA := a.ZAngle()
	angleB, okB := b.ZAngle()
	if !okA || !okB {
		panic("circuit: CombineZ called with non-Z-rotation gates")
	}
	sum := normalizeAngle(angleA + angleB)
	if isIdentityAngle(sum) {
		return Gate{}, false
	}
	for kind, angle := range zAngles {
		if math.Abs(sum-angle) < AngleEpsilon {
			return NewGate(kind, a.Target), true
		}
	}
	// Z is π and -π in one; normalizeAngle picks (-π, π] so π matches above.
	return NewRotation(KindRz, a.Target, sum), true
}

// normalizeAngle wraps an angle into (-π, π].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	}
	if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// isIdentityAngle reports whether a rotation angle is zero mod 2π.
func isIdentityAngle(a float64) bool {
	n := normalizeAngle(a)
	return math.Abs(n) < AngleEpsilon
}
