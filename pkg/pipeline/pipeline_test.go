package pipeline

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/mhalver/gatefold/pkg/cache"
	"github.com/mhalver/gatefold/pkg/errors"
)

const testSource = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
h q[0];
h q[0];
t q[1];
cx q[0],q[1];
cx q[0],q[1];
tdg q[1];
`

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestExecuteOptimizes(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	result, err := runner.Execute(context.Background(), Options{
		Source:  testSource,
		Formats: []string{FormatQASM},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Stats.GatesBefore != 6 {
		t.Errorf("GatesBefore = %d, want 6", result.Stats.GatesBefore)
	}
	if result.Stats.GatesAfter != 0 {
		t.Errorf("GatesAfter = %d, want 0", result.Stats.GatesAfter)
	}
	if result.Removed != 6 {
		t.Errorf("Removed = %d, want 6", result.Removed)
	}
	if !strings.Contains(result.Optimized, "qreg q[2];") {
		t.Errorf("Optimized = %q, want a qreg declaration", result.Optimized)
	}
	if string(result.Artifacts[FormatQASM]) != result.Optimized {
		t.Error("qasm artifact does not match Optimized")
	}
}

func TestExecuteDOTArtifact(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	result, err := runner.Execute(context.Background(), Options{
		Source:  "qreg q[2];\nh q[0];\ncx q[0],q[1];\n",
		Formats: []string{FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	dot := string(result.Artifacts[FormatDOT])
	if !strings.Contains(dot, "digraph circuit") {
		t.Errorf("dot artifact = %q, want digraph output", dot)
	}
}

func TestExecuteUsesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	opts := Options{Source: testSource, Formats: []string{FormatQASM}}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if first.CacheInfo.OptimizeHit {
		t.Error("first run reported an optimize cache hit")
	}

	second, err := runner.Execute(context.Background(), Options{Source: testSource, Formats: []string{FormatQASM}})
	if err != nil {
		t.Fatalf("Execute() #2 error = %v", err)
	}
	if !second.CacheInfo.OptimizeHit {
		t.Error("second run missed the optimize cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run missed the artifact cache")
	}
	if second.Optimized != first.Optimized {
		t.Errorf("cached result differs: %q != %q", second.Optimized, first.Optimized)
	}
	if second.Removed != first.Removed || second.Stats.GatesBefore != first.Stats.GatesBefore {
		t.Error("cached counts differ from fresh counts")
	}
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(fc, nil, quietLogger())

	if _, err := runner.Execute(context.Background(), Options{Source: testSource}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	result, err := runner.Execute(context.Background(), Options{Source: testSource, Refresh: true})
	if err != nil {
		t.Fatalf("Execute() with refresh error = %v", err)
	}
	if result.CacheInfo.OptimizeHit {
		t.Error("refresh run reported an optimize cache hit")
	}
}

func TestExecuteSchedulesDiffer(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()

	if _, err := runner.Execute(ctx, Options{Source: testSource, Schedule: "light"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	result, err := runner.Execute(ctx, Options{Source: testSource, Schedule: "rz"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.CacheInfo.OptimizeHit {
		t.Error("different schedule reused the cached result")
	}
}

func TestExecuteValidation(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{name: "no source", opts: Options{}, code: errors.ErrCodeInvalidQASM},
		{name: "bad schedule", opts: Options{Source: testSource, Schedule: "warp"}, code: errors.ErrCodeInvalidSchedule},
		{name: "negative rounds", opts: Options{Source: testSource, Rounds: -1}, code: errors.ErrCodeInvalidSchedule},
		{name: "bad format", opts: Options{Source: testSource, Formats: []string{"gif"}}, code: errors.ErrCodeInvalidFormat},
		{name: "bad source", opts: Options{Source: "qreg q[1];\nbanana;\n"}, code: errors.ErrCodeInvalidQASM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Execute(ctx, tt.opts)
			if err == nil {
				t.Fatalf("Execute() error = nil, want %v", tt.code)
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("GetCode() = %v, want %v", got, tt.code)
			}
		})
	}
}

func TestOptionsDefaultFormats(t *testing.T) {
	opts := Options{Source: testSource}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatQASM {
		t.Errorf("Formats = %v, want [qasm]", opts.Formats)
	}
	if opts.Schedule != DefaultSchedule {
		t.Errorf("Schedule = %q, want %q", opts.Schedule, DefaultSchedule)
	}
}
