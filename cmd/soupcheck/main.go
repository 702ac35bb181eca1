// Command soupcheck checks a system against a safety (NFA-style) or
// liveness (Büchi) property via a step-synchronous product, reporting
// either "SAT" or a counterexample.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/soupcheck/soupcheck/examples/hanoi"
	"github.com/soupcheck/soupcheck/examples/mutex"
	"github.com/soupcheck/soupcheck/pkg/buchi"
	"github.com/soupcheck/soupcheck/pkg/langsem"
	"github.com/soupcheck/soupcheck/pkg/live"
	"github.com/soupcheck/soupcheck/pkg/nfaprop"
	"github.com/soupcheck/soupcheck/pkg/product"
	"github.com/soupcheck/soupcheck/pkg/prologspec"
	"github.com/soupcheck/soupcheck/pkg/reach"
	"github.com/soupcheck/soupcheck/pkg/report"
	"github.com/soupcheck/soupcheck/pkg/soup"
	"github.com/soupcheck/soupcheck/pkg/verrors"
)

func main() {
	model := flag.String("model", "", "system to check: AB1..AB5 (mutex family) or hanoi3")
	prop := flag.String("prop", "", "property to check: P1..P5 (mutex properties)")
	pattern := flag.Int("pattern", 1, "NFA pattern for a safety check: 1 or 2 (ignored for --buchi)")
	useBuchi := flag.Bool("buchi", false, "check prop as a Büchi liveness property instead of an NFA safety property")
	all := flag.Bool("all", false, "run every AB1..AB5 x P1/P2 x pattern1/2 safety check, plus every AB1..AB5 x P1..P5 liveness check")
	specPath := flag.String("spec", "", "path to a Prolog rule file (pkg/prologspec); overrides --model with a transition/3-authored system")
	out := flag.String("out", "soupcheck-report.md", "path to write the Markdown report")
	flag.Parse()

	ctx := context.Background()

	if *all {
		runAll(*out)
		return
	}

	if *specPath != "" {
		runSpec(ctx, *specPath, *out)
		return
	}

	if *model == "hanoi3" {
		runHanoi()
		return
	}

	if *model == "" || *prop == "" {
		log.Fatal(&verrors.ConfigurationError{Detail: "--model and --prop are required unless --all, --spec, or --model hanoi3 is given"})
	}

	if *useBuchi || !buchiPatternEligible(*prop) {
		runOneLiveness(*model, *prop, *out)
		return
	}
	runOneSafety(*model, *prop, *pattern, *out)
}

// buchiPatternEligible reports whether prop has an NFA-pattern encoding at
// all (only P1/P2 do; P3..P5 only exist as Büchi violations).
func buchiPatternEligible(prop string) bool {
	return prop == "P1" || prop == "P2"
}

func runOneSafety(model, prop string, pattern int, out string) {
	sys, err := mutexSemantics(model)
	if err != nil {
		log.Fatalf("loading model %s: %v", model, err)
	}
	if pattern != 1 && pattern != 2 {
		log.Fatal(&verrors.ConfigurationError{Detail: "--pattern must be 1 or 2"})
	}

	prop1, err := nfaProperty(prop, pattern)
	if err != nil {
		log.Fatalf("loading property %s: %v", prop, err)
	}
	nfa := nfaprop.New(prop1)
	prod := product.NewNFAProduct[mutex.Config, string](sys, nfa, mutex.APFunc(sys))

	r := verifySafety(model, prop, pattern, prod)
	cmd := fmt.Sprintf("soupcheck --model %s --prop %s --pattern %d", model, prop, pattern)
	r.Command = cmd

	if err := report.WriteSafetyReport([]report.SafetyResult{r}, out); err != nil {
		log.Fatalf("writing report: %v", err)
	}
	printSafetyVerdict(r)
	log.Printf("report written to %s", out)
}

func runOneLiveness(model, prop string, out string) {
	sys, err := mutexSemantics(model)
	if err != nil {
		log.Fatalf("loading model %s: %v", model, err)
	}

	bprop, err := buchiProperty(prop)
	if err != nil {
		log.Fatalf("loading property %s: %v", prop, err)
	}
	bu := buchi.New(bprop)
	prod := product.NewBuchiProduct(sys, bu, mutex.APFunc(sys))

	r := verifyLiveness(model, prop, prod)
	r.Command = fmt.Sprintf("soupcheck --model %s --prop %s --buchi", model, prop)

	if err := report.WriteLivenessReport([]report.LivenessResult{r}, out); err != nil {
		log.Fatalf("writing report: %v", err)
	}
	printLivenessVerdict(r)
	log.Printf("report written to %s", out)
}

func runAll(out string) {
	var safetyResults []report.SafetyResult
	var liveResults []report.LivenessResult

	for _, model := range mutex.ModelNames {
		sys, err := mutexSemantics(model)
		if err != nil {
			log.Fatalf("loading model %s: %v", model, err)
		}
		for _, prop := range []string{"P1", "P2"} {
			for _, pattern := range []int{1, 2} {
				nfa := nfaprop.New(mutex.BuildNFAProperty(prop, pattern))
				prod := product.NewNFAProduct[mutex.Config, string](sys, nfa, mutex.APFunc(sys))
				r := verifySafety(model, prop, pattern, prod)
				r.Command = fmt.Sprintf("soupcheck --model %s --prop %s --pattern %d", model, prop, pattern)
				safetyResults = append(safetyResults, r)
			}
		}
		for _, prop := range mutex.BuchiPropertyNames {
			bu := buchi.New(mutex.BuildBuchiProperty(prop))
			prod := product.NewBuchiProduct(sys, bu, mutex.APFunc(sys))
			r := verifyLiveness(model, prop, prod)
			r.Command = fmt.Sprintf("soupcheck --model %s --prop %s --buchi", model, prop)
			liveResults = append(liveResults, r)
		}
	}

	safetyOut := out
	if err := report.WriteSafetyReport(safetyResults, safetyOut); err != nil {
		log.Fatalf("writing safety report: %v", err)
	}
	log.Printf("safety report written to %s", safetyOut)

	livenessOut := livenessReportPath(out)
	if err := report.WriteLivenessReport(liveResults, livenessOut); err != nil {
		log.Fatalf("writing liveness report: %v", err)
	}
	log.Printf("liveness report written to %s", livenessOut)
}

func livenessReportPath(safetyOut string) string {
	const suffix = ".md"
	if len(safetyOut) > len(suffix) && safetyOut[len(safetyOut)-len(suffix):] == suffix {
		return safetyOut[:len(safetyOut)-len(suffix)] + "-liveness" + suffix
	}
	return safetyOut + "-liveness"
}

// recovered turns a panic value back into an error, preserving typed errors
// like *verrors.ConfigurationError raised by the examples packages.
func recovered(r any) error {
	if e, ok := r.(error); ok {
		return e
	}
	return &verrors.ConfigurationError{Detail: fmt.Sprintf("%v", r)}
}

func mutexSemantics(model string) (sys langsem.Semantics[mutex.Config], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return soup.New(mutex.GetModel(model)), nil
}

func nfaProperty(prop string, pattern int) (n nfaprop.NFA[mutex.Config, string], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return mutex.BuildNFAProperty(prop, pattern), nil
}

func buchiProperty(prop string) (p buchi.Property[mutex.Config], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return mutex.BuildBuchiProperty(prop), nil
}

func verifySafety(model, prop string, pattern int, prod *product.Semantics[mutex.Config, string, nfaprop.Piece[mutex.Config, string]]) report.SafetyResult {
	res := reach.BFS[product.State[mutex.Config, string]](prod, func(_ *product.State[mutex.Config, string], n product.State[mutex.Config, string], _ string) bool {
		return prod.Accepting(n)
	})

	r := report.SafetyResult{Model: model, Prop: prop, Pattern: pattern, Visited: len(res.Visited)}

	var goal product.State[mutex.Config, string]
	found := false
	for _, n := range res.Visited {
		if prod.Accepting(n) {
			goal, found = n, true
			break
		}
	}
	if !found {
		r.Sat = true
		return r
	}

	path := reach.ReconstructPath(res, goal)
	labels := reach.ReconstructLabels(res, path)
	for _, n := range path {
		if n.HasSys {
			r.SysStates = append(r.SysStates, fmt.Sprintf("%#v", n.Sys))
		}
	}
	r.SysActions = make([]string, len(labels))
	for i, l := range labels {
		r.SysActions[i] = actionNamePart(l)
	}
	r.EdgeLabels = labels
	return r
}

func verifyLiveness(model, prop string, prod *product.Semantics[mutex.Config, int, buchi.PropAction]) report.LivenessResult {
	ok, visited, cex := live.VerifyBuchi[product.State[mutex.Config, int]](prod, prod.Accepting)
	r := report.LivenessResult{Model: model, Prop: prop, Visited: visited, Sat: ok}
	if ok {
		return r
	}

	for _, n := range cex.PrefixPath {
		r.PrefixPath = append(r.PrefixPath, fmt.Sprintf("%#v", n.Sys))
	}
	r.PrefixLabels = cex.PrefixLabels
	for _, n := range cex.CyclePath {
		r.CyclePath = append(r.CyclePath, fmt.Sprintf("%#v", n.Sys))
	}
	r.CycleLabels = cex.CycleLabels
	return r
}

// actionNamePart extracts the system half of a product label like
// "a1||cond" or "init||true".
func actionNamePart(label string) string {
	for i := 0; i+1 < len(label); i++ {
		if label[i] == '|' && label[i+1] == '|' {
			return label[:i]
		}
	}
	return label
}

func runHanoi() {
	sys := hanoi.New(3)
	res := reach.BFS[string](sys, func(_ *string, c string, _ string) bool {
		return sys.IsGoal(c)
	})

	var goal string
	found := false
	for _, c := range res.Visited {
		if sys.IsGoal(c) {
			goal, found = c, true
			break
		}
	}
	if !found {
		log.Fatal("hanoi3: no solution found (unexpected)")
	}
	path := reach.ReconstructPath(res, goal)
	log.Printf("hanoi3: solved in %d moves, %d states explored", len(path)-1, len(res.Visited))
}

func runSpec(ctx context.Context, specPath string, out string) {
	if _, err := os.Stat(specPath); os.IsNotExist(err) {
		log.Fatalf("spec file not found: %s", specPath)
	}

	engine, err := prologspec.New()
	if err != nil {
		log.Fatalf("starting Prolog engine: %v", err)
	}
	if err := engine.LoadSpecFile(specPath); err != nil {
		log.Fatalf("loading spec %s: %v", specPath, err)
	}

	ts, err := engine.ExtractTransitionSystem(ctx)
	if err != nil {
		log.Fatalf("extracting transition system: %v", err)
	}
	accepting := prologspec.AcceptingSet(ts)
	sem := soup.New(prologspec.ToSoup(ts))

	res := reach.BFS[string](sem, func(_ *string, c string, _ string) bool {
		return accepting[c]
	})

	r := report.SafetyResult{
		Model:   specPath,
		Prop:    "accepting/1",
		Pattern: 0,
		Command: fmt.Sprintf("soupcheck --spec %s", specPath),
		Visited: len(res.Visited),
	}

	var goal string
	found := false
	for _, c := range res.Visited {
		if accepting[c] {
			goal, found = c, true
			break
		}
	}
	if !found {
		r.Sat = true
	} else {
		path := reach.ReconstructPath(res, goal)
		labels := reach.ReconstructLabels(res, path)
		r.SysStates = path
		r.SysActions = labels
		r.EdgeLabels = labels
	}

	if err := report.WriteSafetyReport([]report.SafetyResult{r}, out); err != nil {
		log.Fatalf("writing report: %v", err)
	}
	printSafetyVerdict(r)
	log.Printf("report written to %s", out)
}

func printSafetyVerdict(r report.SafetyResult) {
	if r.Sat {
		fmt.Printf("Model=%s Prop=%s Pattern=%d visited=%d RESULT: SAT\n", r.Model, r.Prop, r.Pattern, r.Visited)
		return
	}
	fmt.Printf("Model=%s Prop=%s Pattern=%d visited=%d RESULT: VIOLATED\n", r.Model, r.Prop, r.Pattern, r.Visited)
}

func printLivenessVerdict(r report.LivenessResult) {
	if r.Sat {
		fmt.Printf("Model=%s Prop=%s visited=%d RESULT: SAT\n", r.Model, r.Prop, r.Visited)
		return
	}
	fmt.Printf("Model=%s Prop=%s visited=%d RESULT: VIOLATED\n", r.Model, r.Prop, r.Visited)
}
