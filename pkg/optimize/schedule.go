package optimize

import (
	"strings"

	"github.com/mhalver/gatefold/pkg/errors"
)

// Reduction is one optimization pass. Apply performs the rewrite pass over
// the graph in place and returns the same graph; results converge under
// repetition (a fixpoint is reached when an Apply produces zero removals).
// Report returns the counts accumulated by the most recent Apply and is
// empty before the first call.
type Reduction interface {
	Name() string
	Apply(g Graph) (Graph, error)
	Report() Report
}

// Pass names accepted by [NewReduction] and [ParseSchedule].
const (
	PassH  = "h"
	PassRz = "rz"
	PassCx = "cx"
)

// NewReduction constructs a pass by name.
func NewReduction(name string) (Reduction, error) {
	switch name {
	case PassH:
		return NewHGateReduction(), nil
	case PassRz:
		return NewRzReduction(), nil
	case PassCx:
		return NewCxReduction(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidSchedule, "unknown pass %q (valid: h, rz, cx)", name)
}

// Schedule is an ordered sequence of pass names run as one round.
type Schedule []string

// LightSchedule returns the pass ordering of the published light
// optimization pipeline: H → Cx → Rz → Cx → H → Rz → Cx → Rz.
func LightSchedule() Schedule {
	return Schedule{PassH, PassCx, PassRz, PassCx, PassH, PassRz, PassCx, PassRz}
}

// ParseSchedule parses a comma-separated pass list such as "h,cx,rz".
// The name "light" yields [LightSchedule].
func ParseSchedule(s string) (Schedule, error) {
	if s == "" || s == "light" {
		return LightSchedule(), nil
	}
	var sched Schedule
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if _, err := NewReduction(name); err != nil {
			return nil, err
		}
		sched = append(sched, name)
	}
	return sched, nil
}

// String renders the schedule back to its comma-separated form.
func (s Schedule) String() string { return strings.Join(s, ",") }

// RunToFixpoint makes [Schedule.Run] repeat rounds until one completes with
// zero removals.
const RunToFixpoint = 0

// Summary aggregates the reports of every pass execution in a run.
type Summary struct {
	Reports []Report
	Rounds  int
}

// Removed returns the total number of gate nodes deleted across the run.
func (s Summary) Removed() int {
	total := 0
	for _, r := range s.Reports {
		total += r.Removed
	}
	return total
}

// Relabeled returns the total number of in-place rewrites across the run.
func (s Summary) Relabeled() int {
	total := 0
	for _, r := range s.Reports {
		total += r.Relabeled
	}
	return total
}

// Run executes the schedule against the graph. A fresh Reduction is
// constructed for every pass execution, so reports never bleed between
// rounds. With rounds == RunToFixpoint the schedule repeats until a full
// round removes nothing; otherwise it runs exactly the given number of
// rounds, stopping early at a fixpoint.
func (s Schedule) Run(g Graph, rounds int) (Summary, error) {
	var summary Summary
	for {
		removedThisRound := 0
		for _, name := range s {
			red, err := NewReduction(name)
			if err != nil {
				return summary, err
			}
			if _, err := red.Apply(g); err != nil {
				return summary, err
			}
			rep := red.Report()
			summary.Reports = append(summary.Reports, rep)
			removedThisRound += rep.Removed
		}
		summary.Rounds++
		if removedThisRound == 0 {
			return summary, nil
		}
		if rounds != RunToFixpoint && summary.Rounds >= rounds {
			return summary, nil
		}
	}
}
