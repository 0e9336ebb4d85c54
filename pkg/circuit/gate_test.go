package circuit

import (
	"math"
	"testing"
)

func TestKindRoundTrip(t *testing.T) {
	kinds := []Kind{KindH, KindX, KindY, KindZ, KindS, KindSdg, KindT, KindTdg, KindRz, KindRx, KindRy, KindCX}
	for _, k := range kinds {
		if got := KindFromName(k.String()); got != k {
			t.Errorf("KindFromName(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if got := KindFromName("ccx"); got != KindUnknown {
		t.Errorf("KindFromName(ccx) = %v, want KindUnknown", got)
	}
}

func TestIsDiagonal(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindZ, true},
		{KindS, true},
		{KindSdg, true},
		{KindT, true},
		{KindTdg, true},
		{KindRz, true},
		{KindH, false},
		{KindX, false},
		{KindRx, false},
		{KindCX, false},
		{KindUnknown, false},
	}
	for _, tt := range tests {
		if got := tt.kind.IsDiagonal(); got != tt.want {
			t.Errorf("%v.IsDiagonal() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		gate Gate
		want Gate
	}{
		{"S", NewGate(KindS, 0), NewGate(KindSdg, 0)},
		{"Sdg", NewGate(KindSdg, 0), NewGate(KindS, 0)},
		{"T", NewGate(KindT, 2), NewGate(KindTdg, 2)},
		{"H", NewGate(KindH, 1), NewGate(KindH, 1)},
		{"CX", NewCX(0, 1), NewCX(0, 1)},
		{"Rz", NewRotation(KindRz, 0, 1.25), NewRotation(KindRz, 0, -1.25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.gate.Inverse(); got != tt.want {
				t.Errorf("Inverse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsInverseOf(t *testing.T) {
	tests := []struct {
		name string
		a, b Gate
		want bool
	}{
		{"THTdg", NewGate(KindT, 0), NewGate(KindTdg, 0), true},
		{"SS", NewGate(KindS, 0), NewGate(KindS, 0), false},
		{"HH", NewGate(KindH, 0), NewGate(KindH, 0), true},
		{"HHOtherWire", NewGate(KindH, 0), NewGate(KindH, 1), false},
		{"RzOpposite", NewRotation(KindRz, 0, 0.7), NewRotation(KindRz, 0, -0.7), true},
		{"SdgRzPiHalf", NewGate(KindSdg, 0), NewRotation(KindRz, 0, math.Pi/2), true},
		{"CXSame", NewCX(0, 1), NewCX(0, 1), true},
		{"CXFlipped", NewCX(0, 1), NewCX(1, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.IsInverseOf(tt.b); got != tt.want {
				t.Errorf("IsInverseOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCombineZ(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Gate
		want   Gate
		wantOK bool
	}{
		{"TTtoS", NewGate(KindT, 0), NewGate(KindT, 0), NewGate(KindS, 0), true},
		{"SStoZ", NewGate(KindS, 1), NewGate(KindS, 1), NewGate(KindZ, 1), true},
		{"TTdgCancels", NewGate(KindT, 0), NewGate(KindTdg, 0), Gate{}, false},
		{"RzOppositeCancels", NewRotation(KindRz, 0, 1.1), NewRotation(KindRz, 0, -1.1), Gate{}, false},
		{"RzFullTurnCancels", NewRotation(KindRz, 0, math.Pi), NewGate(KindZ, 0), Gate{}, false},
		{"STdgToT", NewGate(KindS, 0), NewGate(KindTdg, 0), NewGate(KindT, 0), true},
		{"GenericSum", NewRotation(KindRz, 0, 0.5), NewRotation(KindRz, 0, 0.25), NewRotation(KindRz, 0, 0.75), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CombineZ(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Fatalf("CombineZ() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Kind != tt.want.Kind || got.Target != tt.want.Target {
				t.Errorf("CombineZ() = %v, want %v", got, tt.want)
			}
			if got.Kind == KindRz && math.Abs(got.Angle-tt.want.Angle) > AngleEpsilon {
				t.Errorf("CombineZ() angle = %v, want %v", got.Angle, tt.want.Angle)
			}
		})
	}
}

func TestCombineZWrapsAngle(t *testing.T) {
	a := NewRotation(KindRz, 0, 3*math.Pi/2)
	b := NewRotation(KindRz, 0, math.Pi)
	got, ok := CombineZ(a, b)
	if !ok {
		t.Fatal("CombineZ() cancelled, want S")
	}
	// 3π/2 + π = 5π/2 ≡ π/2.
	if got.Kind != KindS {
		t.Errorf("CombineZ() = %v, want s", got)
	}
}

func TestIsPhase(t *testing.T) {
	tests := []struct {
		name string
		gate Gate
		want bool
	}{
		{"S", NewGate(KindS, 0), true},
		{"Sdg", NewGate(KindSdg, 0), true},
		{"RzPiHalf", NewRotation(KindRz, 0, math.Pi/2), true},
		{"RzMinusPiHalf", NewRotation(KindRz, 0, -math.Pi/2), true},
		{"RzPiQuarter", NewRotation(KindRz, 0, math.Pi/4), false},
		{"T", NewGate(KindT, 0), false},
		{"H", NewGate(KindH, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.gate.IsPhase(); got != tt.want {
				t.Errorf("IsPhase() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGateString(t *testing.T) {
	tests := []struct {
		gate Gate
		want string
	}{
		{NewGate(KindH, 0), "h q0"},
		{NewCX(2, 0), "cx q2,q0"},
		{NewRotation(KindRz, 1, 0.5), "rz(0.5) q1"},
	}
	for _, tt := range tests {
		if got := tt.gate.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
