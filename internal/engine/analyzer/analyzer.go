// Package analyzer checks reactive-callback registrations against their
// declared dependency lists: it resolves every value the callback
// captures from its enclosing function, reconciles the resulting
// property paths with the declared array, and reports missing,
// unnecessary and duplicate entries together with a replacement list.
package analyzer

import (
	"context"
	"log/slog"
	"time"

	"hookdeps/internal/engine/jsast"
	"hookdeps/internal/engine/scope"
	"hookdeps/internal/shared/observability"
)

// CallSite is one recognized registration call in a file.
type CallSite struct {
	Node     *jsast.Node
	Callee   string
	Spec     CallSiteSpec
	Callback *jsast.Node
	Deps     *jsast.Node
}

type Analyzer struct {
	opts *Options
	log  *slog.Logger
}

func New(opts *Options, log *slog.Logger) *Analyzer {
	if opts == nil {
		opts = DefaultOptions()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{opts: opts, log: log}
}

// pass carries the per-call-site analysis state. The classifier and
// scope graph are shared across call sites in one file; the budget and
// path resolver are fresh per call site.
type pass struct {
	opts       *Options
	file       *jsast.File
	graph      *scope.Graph
	classifier *Classifier
	resolver   *pathResolver
	budget     *Budget
}

// AnalyzeFile finds every recognized call site in the file and analyzes
// each independently. A failure at one call site never suppresses the
// others.
func (a *Analyzer) AnalyzeFile(ctx context.Context, file *jsast.File) []*Diagnostic {
	_, span := observability.Tracer.Start(ctx, "analyzer.file")
	defer span.End()

	graph := scope.Build(file)
	classifier := NewClassifier(graph, a.opts)

	var diags []*Diagnostic
	for _, site := range FindCallSites(file, a.opts) {
		observability.CallSitesTotal.Inc()
		start := time.Now()

		p := &pass{
			opts:       a.opts,
			file:       file,
			graph:      graph,
			classifier: classifier,
			resolver:   newPathResolver(),
			budget:     newBudget(a.opts),
		}
		siteDiags := p.analyze(site)

		observability.AnalysisDuration.WithLabelValues(site.Callee).Observe(time.Since(start).Seconds())
		for _, d := range siteDiags {
			observability.DiagnosticsTotal.WithLabelValues(string(d.Code)).Inc()
		}
		diags = append(diags, siteDiags...)
	}

	if len(diags) > 0 {
		a.log.Debug("analyzed file",
			slog.String("path", file.Path),
			slog.Int("diagnostics", len(diags)))
	}
	return diags
}

// FindCallSites walks the tree for calls whose callee name matches a
// registered registration shape.
func FindCallSites(file *jsast.File, opts *Options) []*CallSite {
	var sites []*CallSite
	jsast.Walk(file.Root, func(n *jsast.Node) bool {
		if n.Kind != jsast.KindCall {
			return true
		}
		name := calleeName(n.Callee)
		if name == "" {
			return true
		}
		spec, ok := MatchCallSite(name, opts)
		if !ok {
			return true
		}
		site := &CallSite{Node: n, Callee: name, Spec: spec}
		if spec.CallbackPos < len(n.Args) {
			site.Callback = n.Args[spec.CallbackPos]
		}
		if spec.DepsPos < len(n.Args) {
			site.Deps = n.Args[spec.DepsPos]
		}
		sites = append(sites, site)
		return true
	})
	return sites
}

// calleeName unwraps `useEffect` and `React.useEffect` shapes.
func calleeName(callee *jsast.Node) string {
	if callee == nil {
		return ""
	}
	callee = callee.InnerExpr()
	if callee == nil {
		return ""
	}
	switch callee.Kind {
	case jsast.KindIdentifier:
		return callee.Name
	case jsast.KindMember:
		if callee.Property != nil {
			return callee.Property.Name
		}
	}
	return ""
}

func (p *pass) analyze(site *CallSite) []*Diagnostic {
	if site.Callback == nil {
		return nil
	}

	cbFn := site.Callback.InnerExpr()
	inline := cbFn != nil && cbFn.IsFunctionLike()

	if inline && cbFn.IsAsync && site.Spec.Kind == SiteEffect {
		return []*Diagnostic{{
			Code:     CodeAsyncCallback,
			Severity: p.opts.severityFor(CodeAsyncCallback, SeverityError),
			Message: site.Callee + " must not receive an async callback: the returned promise would be " +
				"mistaken for a cleanup value. Declare the async function inside and call it immediately.",
			Node:     site.Callback,
			Location: p.file.Location(site.Callback),
		}}
	}

	if site.Deps == nil {
		if p.opts.AutoInfer[site.Callee] {
			return nil
		}
		if p.opts.RequireExplicitList {
			return []*Diagnostic{{
				Code:     CodeMissingDependencyList,
				Severity: p.opts.severityFor(CodeMissingDependencyList, SeverityWarn),
				Message:  site.Callee + " is missing a dependency array; without one the callback runs on every invocation.",
				Node:     site.Node,
				Location: p.file.Location(site.Node),
			}}
		}
		return nil
	}

	depsNode := site.Deps.InnerExpr()
	if depsNode == nil || depsNode.Kind != jsast.KindArray {
		return []*Diagnostic{{
			Code:     CodeInvalidDependencyList,
			Severity: p.opts.severityFor(CodeInvalidDependencyList, SeverityError),
			Message:  site.Callee + " expects an array literal as its dependency argument.",
			Node:     site.Deps,
			Location: p.file.Location(site.Deps),
		}}
	}

	declared, listDiags := p.parseDeclared(depsNode)
	if !inline {
		// Without an inline callback body there is nothing to collect;
		// only the list's own shape can be checked.
		return listDiags
	}

	cbScope := p.graph.FunctionScopeFor(cbFn)
	if cbScope == nil {
		return listDiags
	}
	ownerScope := p.graph.ScopeFor(site.Node).NearestFunction()

	collected, err := p.collect(cbScope, ownerScope)
	if err != nil {
		observability.BudgetExceededTotal.Inc()
		return []*Diagnostic{{
			Code:     CodeBudgetExceeded,
			Severity: p.opts.severityFor(CodeBudgetExceeded, SeverityWarn),
			Message:  site.Callee + " analysis abandoned: resource budget exceeded before the callback was fully examined.",
			Node:     site.Node,
			Location: p.file.Location(site.Node),
		}}
	}
	if site.Spec.Kind == SiteEffect {
		collected.CleanupRefReads = p.cleanupRefReads(cbFn, cbScope)
	}

	rec := reconcile(collected, declared)

	diags := listDiags
	if d := p.composeListDiagnostic(site, rec, collected, cbScope); d != nil {
		diags = append(diags, d)
	}
	diags = append(diags, p.staleAssignmentDiagnostics(collected)...)
	diags = append(diags, p.unstableConstructionDiagnostics(declared, collected)...)
	diags = append(diags, p.refInvalidatedDiagnostics(collected)...)
	return diags
}

// parseDeclared turns the array literal into path entries. Spread and
// unresolvable elements produce their own diagnostics and are skipped;
// the rest of the analysis proceeds without them.
func (p *pass) parseDeclared(depsNode *jsast.Node) ([]*DeclaredEntry, []*Diagnostic) {
	var declared []*DeclaredEntry
	var diags []*Diagnostic
	for _, elem := range depsNode.Children {
		if elem.Kind == jsast.KindSpread {
			diags = append(diags, &Diagnostic{
				Code:     CodeSpreadInDependencyList,
				Severity: p.opts.severityFor(CodeSpreadInDependencyList, SeverityError),
				Message:  "Spread elements hide the actual dependencies; list each one explicitly.",
				Node:     elem,
				Location: p.file.Location(elem),
			})
			continue
		}
		key, err := p.resolver.Resolve(elem.InnerExpr())
		if err != nil {
			diags = append(diags, &Diagnostic{
				Code:     CodeUnresolvableDependency,
				Severity: p.opts.severityFor(CodeUnresolvableDependency, SeverityWarn),
				Message:  "'" + p.file.Text(elem) + "' is not a plain property path and cannot be checked.",
				Node:     elem,
				Location: p.file.Location(elem),
			})
			continue
		}
		declared = append(declared, &DeclaredEntry{Key: key, Node: elem})
	}
	return declared, diags
}
