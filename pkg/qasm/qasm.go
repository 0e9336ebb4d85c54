// Package qasm reads and writes a small OpenQASM 2.0 subset: one quantum
// register, the single-qubit gates h, x, y, z, s, sdg, t, tdg, the
// parameterized rotations rz, rx, ry, and cx. Classical registers,
// measurements and barriers are accepted and ignored; anything else is an
// error.
package qasm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mhalver/gatefold/pkg/circuit"
	"github.com/mhalver/gatefold/pkg/errors"
)

// angleTerm matches one angle expression: a plain number, or a pi fraction
// with an optional coefficient, e.g. "0.5", "pi", "-pi/2", "3*pi/4".
const angleTerm = `-?(?:\d*\.?\d*\*?pi(?:/\d+\.?\d*)?|\d+\.?\d*(?:[eE][+\-]?\d+)?)`

var (
	qregRe     = regexp.MustCompile(`^qreg\s+(\w+)\[(\d+)\]\s*;$`)
	cregRe     = regexp.MustCompile(`^creg\s+\w+\[\d+\]\s*;$`)
	gateRe     = regexp.MustCompile(`^(\w+)\s+(\w+)\[(\d+)\]\s*;$`)
	rotationRe = regexp.MustCompile(`^(\w+)\s*\(\s*(` + angleTerm + `)\s*\)\s+(\w+)\[(\d+)\]\s*;$`)
	cxRe       = regexp.MustCompile(`^cx\s+(\w+)\[(\d+)\]\s*,\s*(\w+)\[(\d+)\]\s*;$`)
	piExprRe   = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)
)

// Parse reads a QASM program and builds the corresponding circuit DAG.
func Parse(r io.Reader) (*circuit.DAG, error) {
	var (
		dag     *circuit.DAG
		reg     string
		scanner = bufio.NewScanner(r)
		lineNo  = 0
	)

	appendGate := func(g circuit.Gate) error {
		if dag == nil {
			return errors.New(errors.ErrCodeInvalidQASM, "line %d: gate before qreg declaration", lineNo)
		}
		if _, err := dag.Append(g); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidQASM, err, "line %d", lineNo)
		}
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.Index(line, "//"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "OPENQASM"):
			continue
		case strings.HasPrefix(line, "include"):
			continue
		case strings.HasPrefix(line, "barrier"):
			continue
		case strings.HasPrefix(line, "measure"):
			continue
		case cregRe.MatchString(line):
			continue
		}

		if m := qregRe.FindStringSubmatch(line); m != nil {
			if dag != nil {
				return nil, errors.New(errors.ErrCodeInvalidQASM, "line %d: multiple qreg declarations", lineNo)
			}
			n, err := strconv.Atoi(m[2])
			if err != nil || n <= 0 {
				return nil, errors.New(errors.ErrCodeInvalidQASM, "line %d: invalid register size %q", lineNo, m[2])
			}
			reg = m[1]
			dag = circuit.New(n)
			continue
		}

		if m := cxRe.FindStringSubmatch(line); m != nil {
			if m[1] != reg || m[3] != reg {
				return nil, errors.New(errors.ErrCodeInvalidQASM, "line %d: unknown register in %q", lineNo, line)
			}
			ctrl, _ := strconv.Atoi(m[2])
			tgt, _ := strconv.Atoi(m[4])
			if err := appendGate(circuit.NewCX(ctrl, tgt)); err != nil {
				return nil, err
			}
			continue
		}

		if m := rotationRe.FindStringSubmatch(line); m != nil {
			kind := circuit.KindFromName(m[1])
			if kind == circuit.KindUnknown {
				return nil, errors.New(errors.ErrCodeInvalidGate, "line %d: unsupported gate %q", lineNo, m[1])
			}
			if !kind.IsContinuous() {
				return nil, errors.New(errors.ErrCodeInvalidGate, "line %d: gate %q takes no parameter", lineNo, m[1])
			}
			angle, ok := parseAngle(m[2])
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidQASM, "line %d: bad angle %q", lineNo, m[2])
			}
			if m[3] != reg {
				return nil, errors.New(errors.ErrCodeInvalidQASM, "line %d: unknown register in %q", lineNo, line)
			}
			tgt, _ := strconv.Atoi(m[4])
			if err := appendGate(circuit.NewRotation(kind, tgt, angle)); err != nil {
				return nil, err
			}
			continue
		}

		if m := gateRe.FindStringSubmatch(line); m != nil {
			kind := circuit.KindFromName(m[1])
			if kind == circuit.KindUnknown || kind == circuit.KindCX {
				return nil, errors.New(errors.ErrCodeInvalidGate, "line %d: unsupported gate %q", lineNo, m[1])
			}
			if kind.IsContinuous() {
				return nil, errors.New(errors.ErrCodeInvalidGate, "line %d: gate %q requires a parameter", lineNo, m[1])
			}
			if m[2] != reg {
				return nil, errors.New(errors.ErrCodeInvalidQASM, "line %d: unknown register in %q", lineNo, line)
			}
			tgt, _ := strconv.Atoi(m[3])
			if err := appendGate(circuit.NewGate(kind, tgt)); err != nil {
				return nil, err
			}
			continue
		}

		return nil, errors.New(errors.ErrCodeInvalidQASM, "line %d: cannot parse %q", lineNo, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidQASM, err, "reading input")
	}
	if dag == nil {
		return nil, errors.New(errors.ErrCodeInvalidQASM, "no qreg declaration found")
	}
	return dag, nil
}

// ParseString parses a QASM program held in a string.
func ParseString(src string) (*circuit.DAG, error) {
	return Parse(strings.NewReader(src))
}

// parseAngle evaluates one angle expression: a float literal or a pi
// fraction with optional coefficient and sign.
func parseAngle(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	m := piExprRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	coeff := 1.0
	if m[2] != "" {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, false
		}
		coeff = v
	}
	angle := coeff * math.Pi
	if m[3] != "" {
		denom, err := strconv.ParseFloat(m[3], 64)
		if err != nil || denom == 0 {
			return 0, false
		}
		angle /= denom
	}
	if m[1] == "-" {
		angle = -angle
	}
	return angle, true
}

// Write emits the circuit as a QASM program, one gate per line in
// topological order.
func Write(w io.Writer, d *circuit.DAG) error {
	var b strings.Builder
	b.WriteString("OPENQASM 2.0;\n")
	b.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&b, "qreg q[%d];\n", d.Qubits())
	for _, g := range d.Gates() {
		switch {
		case g.Kind == circuit.KindCX:
			fmt.Fprintf(&b, "cx q[%d],q[%d];\n", g.Control, g.Target)
		case g.Kind.IsContinuous():
			fmt.Fprintf(&b, "%s(%s) q[%d];\n", g.Kind, FormatAngle(g.Angle), g.Target)
		default:
			fmt.Fprintf(&b, "%s q[%d];\n", g.Kind, g.Target)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Format renders the circuit to a QASM string.
func Format(d *circuit.DAG) string {
	var b strings.Builder
	_ = Write(&b, d)
	return b.String()
}

// piForms lists angle values rendered symbolically instead of as decimals.
var piForms = []struct {
	value   float64
	display string
}{
	{2 * math.Pi, "2*pi"},
	{math.Pi, "pi"},
	{math.Pi / 2, "pi/2"},
	{math.Pi / 3, "pi/3"},
	{math.Pi / 4, "pi/4"},
	{math.Pi / 6, "pi/6"},
	{math.Pi / 8, "pi/8"},
	{3 * math.Pi / 4, "3*pi/4"},
	{3 * math.Pi / 2, "3*pi/2"},
	{2 * math.Pi / 3, "2*pi/3"},
}

// FormatAngle renders an angle, preferring pi-fraction notation for the
// common discrete values.
func FormatAngle(val float64) string {
	for _, pf := range piForms {
		if math.Abs(val-pf.value) < 1e-10 {
			return pf.display
		}
		if math.Abs(val+pf.value) < 1e-10 {
			return "-" + pf.display
		}
	}
	return strconv.FormatFloat(val, 'g', -1, 64)
}
