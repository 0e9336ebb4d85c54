package optimize

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/mhalver/gatefold/pkg/circuit"
)

// statevec is a dense amplitude vector over qubit basis states, used to
// check that a rewritten circuit still computes the same state. Qubit w maps
// to bit w of the basis index.
type statevec []complex128

// newScrambledState prepares a state with support on every basis state by
// rotating each qubit away from the poles, so a change anywhere in the
// circuit shows up in the final amplitudes.
func newScrambledState(qubits int) statevec {
	v := make(statevec, 1<<qubits)
	v[0] = 1
	for q := 0; q < qubits; q++ {
		v.applyH(q)
		v.applyRz(q, 0.31+0.17*float64(q))
	}
	return v
}

// apply simulates one gate, reporting false for kinds the simulator does
// not model.
func (v statevec) apply(g circuit.Gate) bool {
	switch g.Kind {
	case circuit.KindH:
		v.applyH(g.Target)
	case circuit.KindX:
		v.applyX(g.Target)
	case circuit.KindZ:
		v.applyPhase(g.Target, -1)
	case circuit.KindS:
		v.applyPhase(g.Target, 1i)
	case circuit.KindSdg:
		v.applyPhase(g.Target, -1i)
	case circuit.KindT:
		v.applyPhase(g.Target, cmplx.Exp(complex(0, math.Pi/4)))
	case circuit.KindTdg:
		v.applyPhase(g.Target, cmplx.Exp(complex(0, -math.Pi/4)))
	case circuit.KindRz:
		v.applyRz(g.Target, g.Angle)
	case circuit.KindCX:
		v.applyCX(g.Control, g.Target)
	default:
		return false
	}
	return true
}

func (v statevec) applyH(q int) {
	inv := complex(1/math.Sqrt2, 0)
	bit := 1 << q
	for i := range v {
		if i&bit == 0 {
			j := i | bit
			v[i], v[j] = inv*(v[i]+v[j]), inv*(v[i]-v[j])
		}
	}
}

func (v statevec) applyX(q int) {
	bit := 1 << q
	for i := range v {
		if i&bit == 0 {
			j := i | bit
			v[i], v[j] = v[j], v[i]
		}
	}
}

// applyPhase multiplies the |1> amplitude of qubit q by the factor.
func (v statevec) applyPhase(q int, factor complex128) {
	bit := 1 << q
	for i := range v {
		if i&bit != 0 {
			v[i] *= factor
		}
	}
}

func (v statevec) applyRz(q int, theta float64) {
	phase := cmplx.Exp(complex(0, theta/2))
	bit := 1 << q
	for i := range v {
		if i&bit != 0 {
			v[i] *= phase
		} else {
			v[i] *= cmplx.Conj(phase)
		}
	}
}

func (v statevec) applyCX(control, target int) {
	cBit, tBit := 1<<control, 1<<target
	for i := range v {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			v[i], v[j] = v[j], v[i]
		}
	}
}

// run simulates the gate sequence on a scrambled initial state.
func run(t *testing.T, qubits int, gates []circuit.Gate) statevec {
	t.Helper()
	v := newScrambledState(qubits)
	for _, g := range gates {
		if !v.apply(g) {
			t.Fatalf("simulator: unsupported gate %v", g)
		}
	}
	return v
}

// sameStateUpToGlobalPhase reports whether |<a|b>| == 1 within tolerance.
// Several rewrite identities hold only up to a global phase, which no
// measurement can observe.
func sameStateUpToGlobalPhase(a, b statevec) bool {
	if len(a) != len(b) {
		return false
	}
	var inner complex128
	for i := range a {
		inner += cmplx.Conj(a[i]) * b[i]
	}
	return math.Abs(cmplx.Abs(inner)-1) < 1e-9
}

func TestOptimizationPreservesState(t *testing.T) {
	tests := []struct {
		name   string
		qubits int
		gates  []circuit.Gate
	}{
		{
			name:   "hadamard conjugated phase",
			qubits: 1,
			gates: []circuit.Gate{
				circuit.NewGate(circuit.KindH, 0),
				circuit.NewGate(circuit.KindS, 0),
				circuit.NewGate(circuit.KindH, 0),
			},
		},
		{
			name:   "hadamard conjugated cnot",
			qubits: 2,
			gates: []circuit.Gate{
				circuit.NewGate(circuit.KindH, 0),
				circuit.NewGate(circuit.KindH, 1),
				circuit.NewCX(0, 1),
				circuit.NewGate(circuit.KindH, 0),
				circuit.NewGate(circuit.KindH, 1),
			},
		},
		{
			name:   "phase cnot sandwich",
			qubits: 2,
			gates: []circuit.Gate{
				circuit.NewGate(circuit.KindH, 1),
				circuit.NewGate(circuit.KindSdg, 1),
				circuit.NewCX(0, 1),
				circuit.NewGate(circuit.KindS, 1),
				circuit.NewGate(circuit.KindH, 1),
			},
		},
		{
			name:   "rotation merge across cnot control",
			qubits: 2,
			gates: []circuit.Gate{
				circuit.NewGate(circuit.KindT, 0),
				circuit.NewCX(0, 1),
				circuit.NewRotation(circuit.KindRz, 0, 0.4),
				circuit.NewCX(0, 1),
				circuit.NewGate(circuit.KindT, 0),
			},
		},
		{
			name:   "rotation across zz interaction",
			qubits: 2,
			gates: []circuit.Gate{
				circuit.NewGate(circuit.KindT, 1),
				circuit.NewCX(0, 1),
				circuit.NewRotation(circuit.KindRz, 1, 0.5),
				circuit.NewCX(0, 1),
				circuit.NewGate(circuit.KindTdg, 1),
			},
		},
		{
			name:   "cnot pair across commuting gates",
			qubits: 3,
			gates: []circuit.Gate{
				circuit.NewCX(0, 1),
				circuit.NewGate(circuit.KindT, 0),
				circuit.NewGate(circuit.KindX, 1),
				circuit.NewCX(0, 2),
				circuit.NewCX(0, 1),
			},
		},
		{
			name:   "mixed three qubit circuit",
			qubits: 3,
			gates: []circuit.Gate{
				circuit.NewGate(circuit.KindH, 0),
				circuit.NewGate(circuit.KindH, 0),
				circuit.NewGate(circuit.KindT, 1),
				circuit.NewCX(1, 2),
				circuit.NewGate(circuit.KindTdg, 1),
				circuit.NewCX(1, 2),
				circuit.NewGate(circuit.KindH, 2),
				circuit.NewGate(circuit.KindS, 2),
				circuit.NewGate(circuit.KindH, 2),
				circuit.NewRotation(circuit.KindRz, 0, math.Pi/5),
				circuit.NewRotation(circuit.KindRz, 0, -math.Pi/5),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := run(t, tt.qubits, tt.gates)

			g := build(t, tt.qubits, tt.gates)
			if _, err := LightSchedule().Run(g, RunToFixpoint); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if err := g.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}

			got := run(t, tt.qubits, g.Gates())
			if !sameStateUpToGlobalPhase(want, got) {
				t.Errorf("optimized circuit %v computes a different state", g.Gates())
			}
		})
	}
}

func TestSinglePassesPreserveState(t *testing.T) {
	gates := []circuit.Gate{
		circuit.NewGate(circuit.KindH, 0),
		circuit.NewGate(circuit.KindT, 0),
		circuit.NewGate(circuit.KindH, 0),
		circuit.NewCX(0, 1),
		circuit.NewGate(circuit.KindS, 1),
		circuit.NewCX(0, 1),
		circuit.NewCX(0, 1),
		circuit.NewGate(circuit.KindTdg, 1),
		circuit.NewGate(circuit.KindT, 1),
	}
	want := run(t, 2, gates)

	for _, name := range []string{PassH, PassRz, PassCx} {
		t.Run(name, func(t *testing.T) {
			g := build(t, 2, gates)
			red, err := NewReduction(name)
			if err != nil {
				t.Fatalf("NewReduction() error = %v", err)
			}
			if _, err := red.Apply(g); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			got := run(t, 2, g.Gates())
			if !sameStateUpToGlobalPhase(want, got) {
				t.Errorf("%s changed the computed state; gates now %v", name, g.Gates())
			}
		})
	}
}
