package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mhalver/gatefold/pkg/cache"
	"github.com/mhalver/gatefold/pkg/circuit"
	"github.com/mhalver/gatefold/pkg/errors"
	"github.com/mhalver/gatefold/pkg/observability"
	"github.com/mhalver/gatefold/pkg/optimize"
	"github.com/mhalver/gatefold/pkg/qasm"
	"github.com/mhalver/gatefold/pkg/render"
)

// Runner executes the pipeline with caching. It is stateless apart from
// the cache and logger; multiple goroutines can share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer gets the default keyer, a nil
// cache disables caching, a nil logger uses the package default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// cachedCircuit is the cache payload of the optimization stage: enough to
// rebuild the result without rerunning the passes.
type cachedCircuit struct {
	QASM        string `json:"qasm"`
	GatesBefore int    `json:"gates_before"`
	Removed     int    `json:"removed"`
	Relabeled   int    `json:"relabeled"`
}

// Execute runs parse → optimize → render with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		SourceHash: cache.Hash([]byte(opts.Source)),
		Artifacts:  make(map[string][]byte),
	}

	// Stage 1+2: parse and optimize, cached as one unit keyed on the
	// source hash and optimizer settings.
	optStart := time.Now()
	if err := r.optimize(ctx, opts, result); err != nil {
		return nil, err
	}
	result.Stats.OptimizeTime = time.Since(optStart)
	result.Stats.Qubits = result.Circuit.Qubits()
	result.Stats.GatesAfter = result.Circuit.OpCount()

	r.Logger.Info("optimized circuit",
		"qubits", result.Stats.Qubits,
		"gates_before", result.Stats.GatesBefore,
		"gates_after", result.Stats.GatesAfter,
		"removed", result.Removed,
		"cached", result.CacheInfo.OptimizeHit,
		"duration", result.Stats.OptimizeTime)

	// Stage 3: render.
	renderStart := time.Now()
	artifacts, renderHit, err := r.Render(ctx, result.Circuit, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// optimize fills the circuit fields of result, consulting the cache first.
func (r *Runner) optimize(ctx context.Context, opts Options, result *Result) error {
	key := r.Keyer.CircuitKey(result.SourceHash, opts.CircuitKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var entry cachedCircuit
			if err := json.Unmarshal(data, &entry); err == nil {
				d, err := qasm.ParseString(entry.QASM)
				if err == nil {
					observability.Cache().OnCacheHit(ctx, "circuit")
					result.Circuit = d
					result.Optimized = entry.QASM
					result.Stats.GatesBefore = entry.GatesBefore
					result.Removed = entry.Removed
					result.Relabeled = entry.Relabeled
					result.CacheInfo.OptimizeHit = true
					return nil
				}
			}
		}
		observability.Cache().OnCacheMiss(ctx, "circuit")
	}

	parseStart := time.Now()
	observability.Pipeline().OnParseStart(ctx, opts.Name)
	d, err := qasm.ParseString(opts.Source)
	observability.Pipeline().OnParseComplete(ctx, opts.Name, qubitsOf(d), opCountOf(d), time.Since(parseStart), err)
	if err != nil {
		return err
	}
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.GatesBefore = d.OpCount()

	sched, err := optimize.ParseSchedule(opts.Schedule)
	if err != nil {
		return err
	}

	runStart := time.Now()
	observability.Pipeline().OnOptimizeStart(ctx, opts.Schedule, d.OpCount())
	summary, err := sched.Run(d, opts.Rounds)
	observability.Pipeline().OnOptimizeComplete(ctx, opts.Schedule, summary.Removed(), time.Since(runStart), err)
	if err != nil {
		return err
	}

	result.Circuit = d
	result.Optimized = qasm.Format(d)
	result.Summary = summary
	result.Removed = summary.Removed()
	result.Relabeled = summary.Relabeled()

	entry := cachedCircuit{
		QASM:        result.Optimized,
		GatesBefore: result.Stats.GatesBefore,
		Removed:     result.Removed,
		Relabeled:   result.Relabeled,
	}
	if data, err := json.Marshal(entry); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLCircuit); err == nil {
			observability.Cache().OnCacheSet(ctx, "circuit", len(data))
		}
	}
	return nil
}

// Render produces the requested formats for an optimized circuit,
// consulting the cache per format. The boolean reports whether every
// artifact came from cache.
func (r *Runner) Render(ctx context.Context, d *circuit.DAG, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	circuitHash := cache.Hash([]byte(qasm.Format(d)))

	artifacts := make(map[string][]byte)
	allCached := true

	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(circuitHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		allCached = false

		renderStart := time.Now()
		observability.Pipeline().OnRenderStart(ctx, []string{format})
		data, err := r.renderFormat(ctx, d, format, opts)
		observability.Pipeline().OnRenderComplete(ctx, []string{format}, time.Since(renderStart), err)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, allCached, nil
}

// renderFormat produces one output format.
func (r *Runner) renderFormat(ctx context.Context, d *circuit.DAG, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatQASM:
		return []byte(qasm.Format(d)), nil
	case FormatDOT:
		return []byte(render.ToDOT(d, render.Options{ShowWires: opts.ShowWires})), nil
	case FormatSVG:
		return render.SVG(ctx, render.ToDOT(d, render.Options{ShowWires: opts.ShowWires}))
	case FormatPNG:
		return render.PNG(ctx, render.ToDOT(d, render.Options{ShowWires: opts.ShowWires}))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func qubitsOf(d *circuit.DAG) int {
	if d == nil {
		return 0
	}
	return d.Qubits()
}

func opCountOf(d *circuit.DAG) int {
	if d == nil {
		return 0
	}
	return d.OpCount()
}
