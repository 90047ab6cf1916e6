package analyzer

import (
	"fmt"
	"strings"

	"hookdeps/internal/engine/jsast"
	"hookdeps/internal/engine/scope"
)

// composeListDiagnostic folds the reconciliation result into a single
// diagnostic for the call site, with one contextual hint and a
// whole-array replacement.
func (p *pass) composeListDiagnostic(site *CallSite, rec *Reconciliation, collected *CollectResult, cbScope *scope.Scope) *Diagnostic {
	if rec.Clean() {
		return nil
	}

	var parts []string
	if len(rec.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("%s: %s",
			pluralize("a missing dependency", "missing dependencies", len(rec.Missing)),
			quoteKeys(rec.Missing)))
	}
	if len(rec.Unnecessary) > 0 {
		parts = append(parts, fmt.Sprintf("%s: %s",
			pluralize("an unnecessary dependency", "unnecessary dependencies", len(rec.Unnecessary)),
			quoteEntries(rec.Unnecessary)))
	}
	if len(rec.Duplicates) > 0 {
		parts = append(parts, fmt.Sprintf("%s: %s",
			pluralize("a duplicate dependency", "duplicate dependencies", len(rec.Duplicates)),
			quoteEntries(rec.Duplicates)))
	}

	msg := fmt.Sprintf("%s has %s.", site.Callee, strings.Join(parts, " and "))
	if hint := p.listHint(rec, collected, cbScope); hint != "" {
		msg += " " + hint
	}

	code := CodeMissingDependency
	if len(rec.Missing) == 0 {
		code = CodeUnnecessaryDependency
		if len(rec.Unnecessary) == 0 {
			code = CodeDuplicateDependency
		}
	}

	d := &Diagnostic{
		Code:     code,
		Severity: p.opts.severityFor(code, SeverityWarn),
		Message:  msg,
		Node:     site.Deps,
		Location: p.file.Location(site.Deps),
	}
	fix := p.arrayReplacementFix(site.Deps, rec.Suggested)
	d.Suggestions = append(d.Suggestions, Suggestion{
		Description: fmt.Sprintf("Update the dependencies array to be: %s", fix.NewText),
		Fix:         fix,
	})
	if p.opts.EnableUnsafeAutofix {
		d.Fix = &fix
	}
	return d
}

// listHint picks at most one explanatory hint, most specific first.
func (p *pass) listHint(rec *Reconciliation, collected *CollectResult, cbScope *scope.Scope) string {
	if len(collected.CleanupRefReads) > 0 {
		return "Mutable ref contents may have changed by the time the cleanup runs; copy the value to a local inside the callback."
	}
	if key := externalEntry(rec.Unnecessary, collected.Externals); key != "" {
		return fmt.Sprintf("'%s' is a hoisted value from outside the enclosing function; it keeps its identity across invocations and is not a valid dependency.", key)
	}
	for _, key := range rec.Missing {
		dep := collected.Deps[key]
		if dep == nil || dep.Binding == nil {
			continue
		}
		if mutatedOutsideCallback(dep.Binding, cbScope) {
			return fmt.Sprintf("'%s' is reassigned in the enclosing scope; reading it here only sees the value captured at registration time.", key)
		}
	}
	for _, key := range rec.Missing {
		dep := collected.Deps[key]
		if dep == nil || dep.Binding == nil {
			continue
		}
		if !strings.ContainsAny(key, ".[") && dep.Binding.Kind == scope.DefParameter {
			return fmt.Sprintf("'%s' changes whenever any of its properties change; destructuring the needed properties gives a narrower dependency.", key)
		}
	}
	for _, key := range rec.Missing {
		dep := collected.Deps[key]
		if dep == nil || dep.Binding == nil {
			continue
		}
		if rebuiltEveryInvocation(dep.Binding) {
			return fmt.Sprintf("'%s' is rebuilt on every invocation of the enclosing function, so it changes on every pass.", key)
		}
	}
	return ""
}

func (p *pass) staleAssignmentDiagnostics(collected *CollectResult) []*Diagnostic {
	var out []*Diagnostic
	for _, dep := range collected.StaleAssignments {
		out = append(out, &Diagnostic{
			Code:     CodeStaleAssignment,
			Severity: p.opts.severityFor(CodeStaleAssignment, SeverityWarn),
			Message: fmt.Sprintf("'%s' is assigned but never read inside the callback; the write does not persist across invocations and is lost.",
				dep.Key),
			Node:     dep.Node,
			Location: p.file.Location(dep.Node),
		})
	}
	return out
}

// unstableConstructionDiagnostics flags declared dependencies whose value
// is rebuilt on every invocation of the owning function, and offers to
// memoize the construction instead.
func (p *pass) unstableConstructionDiagnostics(declared []*DeclaredEntry, collected *CollectResult) []*Diagnostic {
	var out []*Diagnostic
	for _, entry := range declared {
		dep := collected.Deps[entry.Key]
		if dep == nil || dep.Binding == nil {
			continue
		}
		b := dep.Binding
		if b.Kind != scope.DefVariable || b.Init == nil || b.DestructureIndex >= 0 {
			continue
		}
		if !rebuiltEveryInvocation(b) || p.classifier.IsStable(b) {
			continue
		}
		fix, wrapper := memoizeWrapFix(p.file, b.Init)
		d := &Diagnostic{
			Code:     CodeUnstableConstruction,
			Severity: p.opts.severityFor(CodeUnstableConstruction, SeverityWarn),
			Message: fmt.Sprintf("'%s' is constructed anew on every invocation, so any dependency list containing it changes every time; wrap the construction in %s.",
				entry.Key, wrapper),
			Node:     entry.Node,
			Location: p.file.Location(entry.Node),
		}
		d.Suggestions = append(d.Suggestions, Suggestion{
			Description: fmt.Sprintf("Wrap the initializer of '%s' in %s", b.Name, wrapper),
			Fix:         fix,
		})
		out = append(out, d)
	}
	return out
}

func (p *pass) refInvalidatedDiagnostics(collected *CollectResult) []*Diagnostic {
	var out []*Diagnostic
	for _, ref := range collected.CleanupRefReads {
		out = append(out, &Diagnostic{
			Code:     CodeRefInvalidated,
			Severity: p.opts.severityFor(CodeRefInvalidated, SeverityWarn),
			Message: fmt.Sprintf("'%s.current' may already point elsewhere when this cleanup runs; copy it to a local variable inside the callback first.",
				ref.Binding.Name),
			Node:     ref.Node,
			Location: p.file.Location(ref.Node),
		})
	}
	return out
}

// externalEntry returns the first unnecessary entry whose base segment
// matches a reference that resolved to no binding in the file.
func externalEntry(entries []*DeclaredEntry, externals []*scope.Reference) string {
	if len(externals) == 0 {
		return ""
	}
	names := make(map[string]bool, len(externals))
	for _, ref := range externals {
		names[ref.Node.Name] = true
	}
	for _, e := range entries {
		if segs := SplitPath(e.Key); len(segs) > 0 && names[segs[0]] {
			return e.Key
		}
	}
	return ""
}

// mutatedOutsideCallback reports a write to the binding that happens
// outside the callback but after declaration.
func mutatedOutsideCallback(b *scope.Binding, cbScope *scope.Scope) bool {
	for _, ref := range b.References {
		if !ref.IsWrite {
			continue
		}
		refScope := ref.Scope
		if refScope != nil && refScope.Within(cbScope) {
			continue
		}
		return true
	}
	return false
}

// rebuiltEveryInvocation reports an initializer whose value has a fresh
// identity each time the declaration runs.
func rebuiltEveryInvocation(b *scope.Binding) bool {
	if b.Init == nil {
		return false
	}
	inner := b.Init.InnerExpr()
	if inner == nil {
		return false
	}
	switch inner.Kind {
	case jsast.KindObject, jsast.KindArray, jsast.KindFunction:
		return true
	default:
		return false
	}
}

func pluralize(singular, plural string, n int) string {
	if n == 1 {
		return singular
	}
	return plural
}

func quoteKeys(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = "'" + k + "'"
	}
	return joinWithAnd(quoted)
}

func quoteEntries(entries []*DeclaredEntry) string {
	quoted := make([]string, len(entries))
	for i, e := range entries {
		quoted[i] = "'" + e.Key + "'"
	}
	return joinWithAnd(quoted)
}

func joinWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
