// Package pkg provides the core libraries for gatefold circuit optimization.
//
// # Overview
//
// Gatefold parses OpenQASM programs into a gate dependency graph and
// rewrites the graph to remove redundant gates. The pkg directory is
// organized into four main areas:
//
//  1. [circuit] - The gate DAG: per-wire ordering, structural invariants
//  2. [optimize] - Rewrite passes and pass scheduling
//  3. [qasm] / [render] - Input and output formats (QASM text, DOT, SVG, PNG)
//  4. [pipeline] / [cache] - Orchestration (parse → optimize → render) and
//     result caching
//
// # Architecture
//
// The typical data flow through gatefold:
//
//	OpenQASM source
//	         ↓
//	    [qasm] package (parse into a circuit DAG)
//	         ↓
//	    [circuit] package (graph structure + wire links)
//	         ↓
//	    [optimize] package (rewrite passes until fixpoint)
//	         ↓
//	    [qasm] / [render] packages
//	         ↓
//	    QASM/DOT/SVG/PNG output
//
// Supporting packages: [errors] for structured error codes, [observability]
// for instrumentation hooks, [buildinfo] for version stamping.
package pkg
