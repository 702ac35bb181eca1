// Package report renders verification results as a Markdown file: one
// section per (system, property) run, the reproducible command, the
// visited-state count, the verdict, and — on a violation — the
// counterexample trace rendered as "state --action||label--> state".
package report

import (
	"fmt"
	"os"
	"strings"
)

// SafetyResult is one NFA/safety verification outcome, ready to render.
type SafetyResult struct {
	Model, Prop string
	Pattern     int
	Command     string
	Visited     int
	Sat         bool
	// SysStates/SysActions project the product counterexample onto the
	// system side; len(SysActions) == len(SysStates) when the leading
	// action is "init" (no real predecessor yet), or == len(SysStates)-1
	// otherwise — FmtSysTrace normalizes either shape.
	SysStates  []string
	SysActions []string
	EdgeLabels []string
}

// LivenessResult is one Büchi/liveness verification outcome, ready to
// render. A violation carries a lasso: a finite prefix plus a cycle back
// into the same strongly-connected component.
type LivenessResult struct {
	Model, Prop               string
	Command                   string
	Visited                   int
	Sat                       bool
	PrefixPath, CyclePath     []string
	PrefixLabels, CycleLabels []string
}

// FmtSysTrace renders a system-projected trace as "s0 --a0--> s1" lines.
// sysStates sometimes has as many elements as sysActions (the leading
// action, conventionally "init", has no real predecessor yet); that case is
// normalized by repeating the first state as its own predecessor, mirroring
// fmt_sys_trace's stutter-on-s0 correction.
func FmtSysTrace(sysStates, sysActions []string) []string {
	if len(sysStates) == 0 {
		return []string{"(empty)"}
	}

	states := sysStates
	if len(sysActions) == len(sysStates) {
		states = append([]string{sysStates[0]}, sysStates...)
	}

	lines := make([]string, 0, len(sysActions))
	for i, a := range sysActions {
		if i+1 < len(states) {
			lines = append(lines, fmt.Sprintf("%s --%s--> %s", states[i], a, states[i+1]))
		} else {
			lines = append(lines, fmt.Sprintf("%s --%s--> ?", states[i], a))
		}
	}
	return lines
}

// fmtLasso renders a prefix or cycle path/label pair the same way
// FmtSysTrace does, since a lasso segment has exactly the len(path) ==
// len(labels)+1 shape pkg/live already guarantees.
func fmtLasso(path, labels []string) []string {
	if len(path) == 0 {
		return []string{"(empty)"}
	}
	lines := make([]string, 0, len(labels))
	for i, l := range labels {
		if i+1 < len(path) {
			lines = append(lines, fmt.Sprintf("%s --%s--> %s", path[i], l, path[i+1]))
		} else {
			lines = append(lines, fmt.Sprintf("%s --%s--> ?", path[i], l))
		}
	}
	if len(labels) == 0 {
		lines = append(lines, path[0])
	}
	return lines
}

// WriteSafetyReport renders every safety result to a Markdown file at
// outPath.
func WriteSafetyReport(results []SafetyResult, outPath string) error {
	var b strings.Builder
	b.WriteString("# Safety Verification Report\n\n")
	b.WriteString("Generated by soupcheck's NFA/safety checker.\n\n")
	b.WriteString("## Pattern 1 vs. Pattern 2\n\n")
	b.WriteString("- **Pattern 1**: loops on `true` from the monitoring state. The product may explore more branches (extra nondeterminism from the self-loop).\n")
	b.WriteString("- **Pattern 2**: loops on `!cond` instead, so the monitoring state has exactly one outgoing transition per step — usually fewer states visited.\n")
	b.WriteString("- Both encode \"cond never holds\"; they agree on SAT/violated, differing only in visited-state count and which counterexample is found first.\n\n")
	b.WriteString("## Results\n\n")

	for _, r := range results {
		fmt.Fprintf(&b, "### %s — %s — Pattern %d\n\n", r.Model, r.Prop, r.Pattern)
		b.WriteString("Reproducible command:\n\n```bash\n")
		b.WriteString(r.Command)
		b.WriteString("\n```\n\n")
		fmt.Fprintf(&b, "- States explored (visited): **%d**\n", r.Visited)
		if r.Sat {
			b.WriteString("- Result: **SAT** (no counterexample)\n\n")
			continue
		}
		b.WriteString("- Result: **VIOLATED** (counterexample found)\n\n")
		b.WriteString("Trace (system projection):\n\n```text\n")
		for _, line := range FmtSysTrace(r.SysStates, r.SysActions) {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
		b.WriteString("Product edge labels:\n\n```text\n")
		for _, lab := range r.EdgeLabels {
			b.WriteString(lab)
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
	}

	return os.WriteFile(outPath, []byte(b.String()), 0o644)
}

// WriteLivenessReport renders every Büchi result to a Markdown file at
// outPath.
func WriteLivenessReport(results []LivenessResult, outPath string) error {
	var b strings.Builder
	b.WriteString("# Liveness Verification Report\n\n")
	b.WriteString("Generated by soupcheck's Büchi/liveness checker.\n\n")
	b.WriteString("## Results\n\n")

	for _, r := range results {
		fmt.Fprintf(&b, "### %s — %s\n\n", r.Model, r.Prop)
		b.WriteString("Reproducible command:\n\n```bash\n")
		b.WriteString(r.Command)
		b.WriteString("\n```\n\n")
		fmt.Fprintf(&b, "- States explored (visited): **%d**\n", r.Visited)
		if r.Sat {
			b.WriteString("- Result: **SAT** (no accepting cycle)\n\n")
			continue
		}
		b.WriteString("- Result: **VIOLATED** (accepting cycle found)\n\n")
		b.WriteString("Prefix-trace (system projection):\n\n```text\n")
		for _, line := range fmtLasso(r.PrefixPath, r.PrefixLabels) {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
		b.WriteString("Cyclic-suffix-trace (system projection):\n\n```text\n")
		for _, line := range fmtLasso(r.CyclePath, r.CycleLabels) {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
	}

	return os.WriteFile(outPath, []byte(b.String()), 0o644)
}
