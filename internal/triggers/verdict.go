package triggers

import (
	"fmt"
	"strings"
)

// Condition records one sub-condition of a trigger evaluation: its
// name, whether it held, and the measured quantities behind it. Every
// contributing condition is recorded so a verdict can be audited
// without re-running the evaluation.
type Condition struct {
	Name   string
	Met    bool
	Detail string
}

// Verdict is the immutable result of one trigger evaluation. Rule
// names the evaluator (and, for the bear cascade, the path) that
// produced the outcome.
type Verdict struct {
	Ok         bool
	Rule       string
	Conditions []Condition
}

// Condition looks up a recorded sub-condition by name.
func (v Verdict) Condition(name string) (Condition, bool) {
	for _, c := range v.Conditions {
		if c.Name == name {
			return c, true
		}
	}
	return Condition{}, false
}

// String renders the verdict as a single human-readable line.
func (v Verdict) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ok=%t", v.Rule, v.Ok)
	for _, c := range v.Conditions {
		fmt.Fprintf(&b, " | %s=%t (%s)", c.Name, c.Met, c.Detail)
	}
	return b.String()
}

func condition(name string, met bool, format string, args ...interface{}) Condition {
	return Condition{
		Name:   name,
		Met:    met,
		Detail: fmt.Sprintf(format, args...),
	}
}

func notEnoughData(rule string, detail string) Verdict {
	return Verdict{
		Ok:         false,
		Rule:       rule,
		Conditions: []Condition{condition("min-data", false, "%s", detail)},
	}
}
