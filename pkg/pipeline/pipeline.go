// Package pipeline provides the core optimization pipeline: parse →
// optimize → render. CLI and API both execute through it, so caching,
// logging and validation behave identically at every entry point.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  qasmText,
//	    Formats: []string{"qasm", "svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Individual stages are available as Optimize and Render for callers that
// already hold intermediate results.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mhalver/gatefold/pkg/cache"
	"github.com/mhalver/gatefold/pkg/circuit"
	"github.com/mhalver/gatefold/pkg/errors"
	"github.com/mhalver/gatefold/pkg/optimize"
)

// Format constants for output formats.
const (
	FormatQASM = "qasm"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatQASM: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// DefaultSchedule is the pass schedule used when none is given.
const DefaultSchedule = "light"

// Options contains all configuration for one pipeline run.
// The struct supports JSON serialization for API requests.
type Options struct {
	// Source is the QASM program text to optimize.
	Source string `json:"source"`

	// Name labels the source in logs, typically its file name.
	Name string `json:"name,omitempty"`

	// Schedule is a comma-separated pass list, or "light".
	Schedule string `json:"schedule,omitempty"`

	// Rounds bounds the schedule repetition; zero runs to a fixpoint.
	Rounds int `json:"rounds,omitempty"`

	// Formats selects the rendered outputs.
	Formats []string `json:"formats,omitempty"`

	// ShowWires labels DOT edges with their qubit wire.
	ShowWires bool `json:"show_wires,omitempty"`

	// Refresh bypasses the cache and overwrites it with fresh results.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Circuit is the optimized circuit DAG.
	Circuit *circuit.DAG

	// SourceHash is the content hash of the source program.
	SourceHash string

	// Optimized is the optimized circuit as QASM text.
	Optimized string

	// Summary aggregates the per-pass reports of the run. Empty when the
	// optimization stage was served from cache.
	Summary optimize.Summary

	// Removed and Relabeled survive caching: they are stored alongside the
	// optimized program.
	Removed   int
	Relabeled int

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Qubits       int
	GatesBefore  int
	GatesAfter   int
	ParseTime    time.Duration
	OptimizeTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	OptimizeHit bool // optimization result came from cache
	RenderHit   bool // all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: qasm, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// The method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == "" {
		return errors.New(errors.ErrCodeInvalidQASM, "source is required")
	}
	if o.Schedule == "" {
		o.Schedule = DefaultSchedule
	}
	if _, err := optimize.ParseSchedule(o.Schedule); err != nil {
		return err
	}
	if o.Rounds < 0 {
		return errors.New(errors.ErrCodeInvalidSchedule, "rounds must not be negative")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatQASM}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// CircuitKeyOpts returns cache key options for the optimization stage.
func (o *Options) CircuitKeyOpts() cache.CircuitKeyOpts {
	return cache.CircuitKeyOpts{
		Schedule: o.Schedule,
		Rounds:   o.Rounds,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		ShowWires: o.ShowWires,
	}
}
