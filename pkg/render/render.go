// Package render turns circuit DAGs into visual outputs: Graphviz DOT
// text, and SVG/PNG images rendered through go-graphviz.
//
//	dot := render.ToDOT(d, render.Options{})
//	svg, err := render.SVG(ctx, dot)
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/mhalver/gatefold/pkg/circuit"
)

// Options configures DOT emission.
type Options struct {
	// ShowWires labels every edge with its qubit wire.
	ShowWires bool
}

// ToDOT converts a circuit DAG to Graphviz DOT. Wires flow left to right
// from input to output sentinels; every edge is one wire segment.
func ToDOT(d *circuit.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph circuit {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for w := 0; w < d.Qubits(); w++ {
		in, out := d.Input(w), d.Output(w)
		fmt.Fprintf(&buf, "  %q [label=\"q%d\", shape=plaintext, style=\"\"];\n", in.ID, w)
		fmt.Fprintf(&buf, "  %q [label=\"q%d\", shape=plaintext, style=\"\"];\n", out.ID, w)
	}
	for _, n := range d.Ops() {
		attrs := []string{fmt.Sprintf("label=%q", n.Gate.String())}
		if n.Gate.Kind == circuit.KindCX {
			attrs = append(attrs, "fillcolor=lightblue")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for w := 0; w < d.Qubits(); w++ {
		id := d.Input(w).ID
		for {
			next, ok := d.Next(id, w)
			if !ok {
				break
			}
			if opts.ShowWires {
				fmt.Fprintf(&buf, "  %q -> %q [label=\"q%d\"];\n", id, next.ID, w)
			} else {
				fmt.Fprintf(&buf, "  %q -> %q;\n", id, next.ID)
			}
			id = next.ID
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// SVG renders a DOT graph to SVG using Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderFormat(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// PNG renders a DOT graph to PNG using Graphviz.
func PNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the svg element so the image scales cleanly
// when embedded: origin at zero, explicit width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
