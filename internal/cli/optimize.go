package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mhalver/gatefold/pkg/pipeline"
)

// optimizeOpts holds the command-line flags for the optimize command.
type optimizeOpts struct {
	schedule  string // pass schedule ("light" or comma-separated pass names)
	rounds    int    // schedule repetitions (0 = run to fixpoint)
	output    string // output file or base path (stdout if empty)
	showWires bool   // label DOT edges with wire names
	refresh   bool   // recompute even on cache hit
	noCache   bool   // disable the cache entirely
	quiet     bool   // suppress the stats summary
}

// optimizeCommand creates the optimize command.
//
// Default options:
//   - schedule: the configured default (usually "light")
//   - rounds: 0 (repeat the schedule until no gate is removed)
//   - format: qasm to stdout
func (c *CLI) optimizeCommand() *cobra.Command {
	var formatsStr string
	opts := optimizeOpts{}

	cmd := &cobra.Command{
		Use:   "optimize <file>",
		Short: "Optimize an OpenQASM circuit",
		Long: `Optimize an OpenQASM circuit by applying gate cancellation passes.

Reads a QASM program from a file (or stdin with "-"), applies the pass
schedule until it reaches a fixpoint, and writes the optimized circuit.

Examples:
  gatefold optimize circuit.qasm                  # optimized QASM to stdout
  gatefold optimize circuit.qasm -o out.qasm      # write to a file
  gatefold optimize circuit.qasm -f qasm,svg      # multiple artifacts
  gatefold optimize --schedule h,cx circuit.qasm  # custom pass schedule
  cat circuit.qasm | gatefold optimize -          # read from stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.schedule == "" {
				opts.schedule = c.Config.Optimize.Schedule
			}
			if !cmd.Flags().Changed("rounds") {
				opts.rounds = c.Config.Optimize.Rounds
			}
			return c.runOptimize(cmd.Context(), args[0], parseFormats(formatsStr), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.schedule, "schedule", "s", "", "pass schedule: light (default) or comma-separated pass names")
	cmd.Flags().IntVarP(&opts.rounds, "rounds", "r", 0, "schedule repetitions (0 = run to fixpoint)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): qasm (default), dot, svg, png (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.showWires, "show-wires", false, "label diagram edges with qubit wires")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache and recompute")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress the stats summary")

	return cmd
}

// runOptimize executes the pipeline for the given input and writes artifacts.
func (c *CLI) runOptimize(ctx context.Context, input string, formats []string, opts *optimizeOpts) error {
	logger := loggerFromContext(ctx)

	source, err := readSource(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spin := newSpinner(ctx, "Optimizing "+sourceName(input))
	spin.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Source:    source,
		Name:      sourceName(input),
		Schedule:  opts.schedule,
		Rounds:    opts.rounds,
		Formats:   formats,
		ShowWires: opts.showWires,
		Refresh:   opts.refresh,
		Logger:    logger,
	})
	spin.Stop()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Optimized %s: %d → %d gates",
		sourceName(input), result.Stats.GatesBefore, result.Stats.GatesAfter))

	if err := c.writeArtifacts(input, formats, opts.output, result); err != nil {
		return err
	}
	if !opts.quiet {
		printGateStats(result.Stats.GatesBefore, result.Stats.GatesAfter,
			result.Removed, result.Relabeled, result.CacheInfo.OptimizeHit)
	}
	return nil
}

// writeArtifacts writes the rendered artifacts. A single artifact goes to
// opts.output (or stdout); multiple artifacts share a base path with
// per-format extensions.
func (c *CLI) writeArtifacts(input string, formats []string, output string, result *pipeline.Result) error {
	if len(formats) == 1 {
		return writeArtifact(output, result.Artifacts[formats[0]])
	}

	base := basePath(output, input)
	names := make([]string, 0, len(result.Artifacts))
	for format := range result.Artifacts {
		names = append(names, format)
	}
	sort.Strings(names)

	for _, format := range names {
		path := fmt.Sprintf("%s.%s", base, format)
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// writeArtifact writes data to path, or stdout when path is empty.
func writeArtifact(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = out.Write(data)
	return err
}
