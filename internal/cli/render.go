package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhalver/gatefold/pkg/circuit"
	"github.com/mhalver/gatefold/pkg/errors"
	"github.com/mhalver/gatefold/pkg/pipeline"
	"github.com/mhalver/gatefold/pkg/qasm"
	"github.com/mhalver/gatefold/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // output file or base path
	showWires bool   // label diagram edges with wire names
}

// renderCommand creates the render command for drawing circuits without
// optimizing them.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render an OpenQASM circuit as a diagram",
		Long: `Render an OpenQASM circuit as a gate dependency diagram without
optimizing it.

Examples:
  gatefold render circuit.qasm                 # DOT to stdout
  gatefold render circuit.qasm -f svg -o c.svg # SVG diagram
  gatefold render circuit.qasm -f dot,svg,png  # all diagram formats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseRenderFormats(formatsStr)
			for _, f := range formats {
				if f == pipeline.FormatQASM || !pipeline.ValidFormats[f] {
					return errors.New(errors.ErrCodeInvalidFormat,
						"invalid render format %q (must be dot, svg, or png)", f)
				}
			}
			return c.runRender(cmd.Context(), args[0], formats, &opts)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): dot (default), svg, png (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.showWires, "show-wires", false, "label diagram edges with qubit wires")

	return cmd
}

// parseRenderFormats parses the --format flag, defaulting to DOT.
func parseRenderFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatDOT}
	}
	return parseFormats(s)
}

// runRender parses the input circuit and writes one diagram per format.
func (c *CLI) runRender(ctx context.Context, input string, formats []string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	source, err := readSource(input)
	if err != nil {
		return err
	}
	d, err := qasm.ParseString(source)
	if err != nil {
		return err
	}
	logger.Infof("Parsed %s: %d qubits, %d gates", sourceName(input), d.Qubits(), d.OpCount())

	if len(formats) == 1 {
		data, err := renderCircuit(ctx, d, formats[0], opts)
		if err != nil {
			return err
		}
		return writeArtifact(opts.output, data)
	}

	base := basePath(opts.output, input)
	for _, format := range formats {
		data, err := renderCircuit(ctx, d, format, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		path := fmt.Sprintf("%s.%s", base, format)
		if err := writeArtifact(path, data); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// renderCircuit dispatches to the renderer for the given format.
func renderCircuit(ctx context.Context, d *circuit.DAG, format string, opts *renderOpts) ([]byte, error) {
	dot := render.ToDOT(d, render.Options{ShowWires: opts.showWires})
	switch format {
	case pipeline.FormatDOT:
		return []byte(dot), nil
	case pipeline.FormatSVG:
		return render.SVG(ctx, dot)
	case pipeline.FormatPNG:
		return render.PNG(ctx, dot)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
}
