package optimize

import (
	"math"
	"testing"

	"github.com/mhalver/gatefold/pkg/circuit"
	"github.com/mhalver/gatefold/pkg/errors"
)

func TestNewReduction(t *testing.T) {
	for _, name := range []string{PassH, PassRz, PassCx} {
		red, err := NewReduction(name)
		if err != nil {
			t.Errorf("NewReduction(%q) error = %v", name, err)
			continue
		}
		if red == nil {
			t.Errorf("NewReduction(%q) = nil", name)
		}
	}
}

func TestNewReductionUnknownPass(t *testing.T) {
	_, err := NewReduction("teleport")
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidSchedule {
		t.Errorf("NewReduction() code = %v, want %v", got, errors.ErrCodeInvalidSchedule)
	}
}

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "h,cx,rz,cx,h,rz,cx,rz"},
		{in: "light", want: "h,cx,rz,cx,h,rz,cx,rz"},
		{in: "h,cx,rz", want: "h,cx,rz"},
		{in: " h , rz ", want: "h,rz"},
		{in: "h,swap", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseSchedule(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSchedule(%q) error = nil, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSchedule(%q) error = %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseSchedule(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScheduleRunFixpoint(t *testing.T) {
	// A mixed circuit that needs cooperation between the passes: the
	// Hadamard pass must strip the conjugation before the CNOTs become
	// adjacent up to commutation.
	g := build(t, 2, []circuit.Gate{
		circuit.NewGate(circuit.KindT, 0),
		circuit.NewCX(0, 1),
		circuit.NewCX(0, 1),
		circuit.NewGate(circuit.KindTdg, 0),
		circuit.NewGate(circuit.KindH, 1),
		circuit.NewGate(circuit.KindH, 1),
	})

	summary, err := LightSchedule().Run(g, RunToFixpoint)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := g.OpCount(); got != 0 {
		t.Errorf("OpCount() = %d, want 0", got)
	}
	if got := summary.Removed(); got != 6 {
		t.Errorf("Removed() = %d, want 6", got)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() after run error = %v", err)
	}
}

func TestScheduleRunBoundedRounds(t *testing.T) {
	g := build(t, 1, []circuit.Gate{
		circuit.NewGate(circuit.KindH, 0),
		circuit.NewGate(circuit.KindH, 0),
	})

	summary, err := LightSchedule().Run(g, 1)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Rounds != 1 {
		t.Errorf("Rounds = %d, want 1", summary.Rounds)
	}
	if got := len(summary.Reports); got != len(LightSchedule()) {
		t.Errorf("len(Reports) = %d, want %d", got, len(LightSchedule()))
	}
}

func TestScheduleRunStopsAtFixpointEarly(t *testing.T) {
	// Nothing to do: a single round suffices even with a generous bound.
	g := build(t, 1, []circuit.Gate{
		circuit.NewRotation(circuit.KindRz, 0, 0.25),
	})

	summary, err := LightSchedule().Run(g, 10)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Rounds != 1 {
		t.Errorf("Rounds = %d, want 1", summary.Rounds)
	}
	if got := g.OpCount(); got != 1 {
		t.Errorf("OpCount() = %d, want 1", got)
	}
}

func TestScheduleRunUnknownPass(t *testing.T) {
	g := circuit.New(1)
	_, err := Schedule{"h", "nope"}.Run(g, 1)
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidSchedule {
		t.Errorf("Run() code = %v, want %v", got, errors.ErrCodeInvalidSchedule)
	}
}

func TestScheduleRunPreservesSemantics(t *testing.T) {
	// A circuit where every pass fires at least once; whatever remains must
	// still validate and keep its per-wire structure.
	g := build(t, 3, []circuit.Gate{
		circuit.NewGate(circuit.KindH, 0),
		circuit.NewGate(circuit.KindS, 0),
		circuit.NewGate(circuit.KindH, 0),
		circuit.NewGate(circuit.KindT, 1),
		circuit.NewCX(1, 2),
		circuit.NewGate(circuit.KindTdg, 1),
		circuit.NewCX(1, 2),
		circuit.NewRotation(circuit.KindRz, 2, math.Pi/3),
	})

	if _, err := LightSchedule().Run(g, RunToFixpoint); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	for w := 0; w < g.Qubits(); w++ {
		if _, err := g.WireOps(w); err != nil {
			t.Errorf("WireOps(%d) error = %v", w, err)
		}
	}
}
