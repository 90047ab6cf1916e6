package analyzer

import (
	"strings"

	"hookdeps/internal/engine/jsast"
	"hookdeps/internal/engine/scope"
)

// Dependency accumulates every reference inside the callback that shares
// one canonical path.
type Dependency struct {
	Key        string
	Node       *jsast.Node
	Binding    *scope.Binding
	References []*scope.Reference

	HasReads                      bool
	IsContainerValue              bool
	HasInnerScopeComputedProperty bool
}

type CollectResult struct {
	Deps map[string]*Dependency

	// StableKeys are captured paths whose identity never changes; they
	// satisfy a declared entry but are never suggested.
	StableKeys map[string]bool

	// ContainerBases are bare names of captured reactive containers.
	ContainerBases map[string]bool

	// StaleAssignments are container .value paths that are only ever
	// written inside the callback.
	StaleAssignments []*Dependency

	// Externals are references that resolve to no binding in the file.
	Externals []*scope.Reference

	// CleanupRefReads are .current reads inside a returned teardown that
	// were not re-captured into a local first.
	CleanupRefReads []*scope.Reference
}

// collect walks the callback scope and all nested scopes, producing one
// Dependency per canonical path. ownerScope is the function whose
// re-invocation defines "changes between invocations": bindings above it
// keep their identity and are skipped.
func (p *pass) collect(cbScope, ownerScope *scope.Scope) (*CollectResult, error) {
	res := &CollectResult{
		Deps:           make(map[string]*Dependency),
		StableKeys:     make(map[string]bool),
		ContainerBases: make(map[string]bool),
	}
	if err := p.walkScope(cbScope, cbScope, ownerScope, res); err != nil {
		return nil, err
	}

	// Write-only container cells are stale assignments, not dependencies.
	for key, dep := range res.Deps {
		if dep.IsContainerValue && !dep.HasReads {
			delete(res.Deps, key)
			res.StaleAssignments = append(res.StaleAssignments, dep)
		}
	}
	return res, nil
}

func (p *pass) walkScope(s, cbScope, ownerScope *scope.Scope, res *CollectResult) error {
	if err := p.budget.Visit(); err != nil {
		return err
	}
	for _, ref := range s.References {
		if err := p.budget.Visit(); err != nil {
			return err
		}
		p.collectReference(ref, cbScope, ownerScope, res)
	}
	for _, child := range s.Children {
		if err := p.walkScope(child, cbScope, ownerScope, res); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) collectReference(ref *scope.Reference, cbScope, ownerScope *scope.Scope, res *CollectResult) {
	b := ref.Binding
	if b == nil {
		res.Externals = append(res.Externals, ref)
		return
	}
	if b.Scope.Within(cbScope) {
		// Declared inside the callback: not captured.
		return
	}
	if !b.Scope.Within(ownerScope) {
		// Above the owning function: identity survives re-invocation.
		return
	}

	container := p.classifier.Container(b).IsContainer
	key, node, hasInner := p.dependencyKey(ref, container, cbScope)
	isContainerValue := container && strings.HasPrefix(key, b.Name+".value")

	if container && !isContainerValue {
		// Identity-level use of the container: always stable.
		res.ContainerBases[b.Name] = true
		res.StableKeys[key] = true
		return
	}
	if container {
		res.ContainerBases[b.Name] = true
	}

	if p.classifier.IsStable(b) && !isContainerValue {
		// Stability is a property of the binding, so the bare name
		// satisfies any deeper path under it.
		res.StableKeys[b.Name] = true
		return
	}

	isRead := ref.IsRead
	if isContainerValue && isRead && selfFeedingRead(ref.Node, key) {
		// The read only feeds an assignment back into the same cell;
		// together they are still a lost write.
		isRead = false
	}

	dep := res.Deps[key]
	if dep == nil {
		dep = &Dependency{Key: key, Node: node, Binding: b}
		res.Deps[key] = dep
	}
	dep.References = append(dep.References, ref)
	dep.HasReads = dep.HasReads || isRead
	dep.IsContainerValue = dep.IsContainerValue || isContainerValue
	dep.HasInnerScopeComputedProperty = dep.HasInnerScopeComputedProperty || hasInner
}

// dependencyKey walks the member chain rooted at the reference outward
// and builds the canonical dependency path. For containers the chain is
// clipped at .value, except for computed segments keyed from outside the
// callback, which stay part of the path.
func (p *pass) dependencyKey(ref *scope.Reference, isContainer bool, cbScope *scope.Scope) (string, *jsast.Node, bool) {
	key := ref.Node.Name
	node := ref.Node
	cur := ref.Node
	sawValue := false
	hasInner := false

	for {
		par := cur.Parent
		if par == nil {
			break
		}

		if (par.Kind == jsast.KindNonNull || par.Kind == jsast.KindParen) && par.Object == cur {
			cur = par
			continue
		}

		if par.Kind == jsast.KindMember && par.Object == cur {
			segName := ""
			if par.Property != nil {
				segName = par.Property.Name
			}
			if segName == "" {
				break
			}
			if isContainer {
				if sawValue {
					// Plain property reads under .value don't split the
					// dependency further.
					break
				}
				if segName != "value" {
					break
				}
				if par.Optional {
					p.resolver.optional[key] = true
				}
				key += ".value"
				sawValue = true
				node, cur = par, par
				continue
			}
			if par.Optional {
				p.resolver.optional[key] = true
			}
			key += "." + segName
			node, cur = par, par
			continue
		}

		if par.Kind == jsast.KindIndex && par.Object == cur {
			if isContainer && !sawValue {
				break
			}
			if computedKeyDeclaredWithin(par.Property, cbScope, p.graph) {
				// The index varies inside the callback; the base path is
				// the real dependency.
				hasInner = true
				break
			}
			if par.Optional {
				p.resolver.optional[key] = true
			}
			key += "[" + indexSegment(par.Property) + "]"
			node, cur = par, par
			continue
		}

		if par.Kind == jsast.KindCall && par.Callee == cur {
			// The call result is not a path; the callee path stands.
			break
		}
		break
	}

	return key, node, hasInner
}

// selfFeedingRead reports whether the reference sits in the right-hand
// side of an assignment whose target is the same canonical path.
func selfFeedingRead(id *jsast.Node, key string) bool {
	for anc := id; anc != nil; anc = anc.Parent {
		par := anc.Parent
		if par == nil {
			return false
		}
		if par.Kind != jsast.KindAssign || par.Right != anc {
			continue
		}
		r := newPathResolver()
		left, err := r.Resolve(par.Left)
		return err == nil && left == key
	}
	return false
}

// computedKeyDeclaredWithin reports whether any identifier in a computed
// key resolves to a binding declared inside the callback itself.
func computedKeyDeclaredWithin(key *jsast.Node, cbScope *scope.Scope, g *scope.Graph) bool {
	if key == nil {
		return false
	}
	found := false
	jsast.Walk(key, func(n *jsast.Node) bool {
		if found {
			return false
		}
		if n.Kind == jsast.KindIdentifier {
			if b := g.ScopeFor(n).Lookup(n.Name); b != nil && b.Scope.Within(cbScope) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// cleanupRefReads finds reads of a mutable ref's .current inside a
// teardown function returned from the callback, unless the value was
// first copied into a local.
func (p *pass) cleanupRefReads(cb *jsast.Node, cbScope *scope.Scope) []*scope.Reference {
	var teardowns []*jsast.Node
	if cb.Body != nil {
		// An arrow whose expression body is itself a function returns
		// that function as the teardown.
		if fn := cb.Body.InnerExpr(); fn != nil && fn.Kind == jsast.KindFunction {
			teardowns = append(teardowns, fn)
		}
	}
	collectReturnedFunctions(cb.Body, &teardowns)
	if len(teardowns) == 0 {
		return nil
	}

	var warned []*scope.Reference
	for _, teardown := range teardowns {
		tdScope := p.graph.FunctionScopeFor(teardown)
		if tdScope == nil {
			continue
		}
		scope.VisitReferences(tdScope, func(ref *scope.Reference) bool {
			if ref.Binding == nil || !ref.IsRead {
				return true
			}
			if !p.classifier.IsMutableRef(ref.Binding) {
				return true
			}
			if !readsCurrent(ref.Node) {
				return true
			}
			if p.recapturedAsLocal(cbScope, tdScope, ref.Binding.Name) {
				return true
			}
			warned = append(warned, ref)
			return true
		})
	}
	return warned
}

// collectReturnedFunctions gathers functions returned directly from the
// callback body, without descending into nested functions.
func collectReturnedFunctions(body *jsast.Node, out *[]*jsast.Node) {
	if body == nil {
		return
	}
	if body.Kind == jsast.KindFunction {
		// Arrow with expression body returning a function is covered by
		// the caller; don't descend into other functions.
		return
	}
	if body.Kind == jsast.KindReturn {
		if inner := body.Object; inner != nil {
			if fn := inner.InnerExpr(); fn != nil && fn.Kind == jsast.KindFunction {
				*out = append(*out, fn)
			}
		}
		return
	}
	for _, child := range body.Children {
		collectReturnedFunctions(child, out)
	}
}

func readsCurrent(id *jsast.Node) bool {
	for p := id; p != nil; p = p.Parent {
		if p.Parent == nil {
			return false
		}
		par := p.Parent
		if par.Kind == jsast.KindMember && par.Object == p {
			if par.Property != nil && par.Property.Name == "current" {
				return true
			}
			p = par
			continue
		}
		if (par.Kind == jsast.KindNonNull || par.Kind == jsast.KindParen) && par.Object == p {
			continue
		}
		return false
	}
	return false
}

// recapturedAsLocal checks for `const x = ref.current` in the callback
// body outside the teardown.
func (p *pass) recapturedAsLocal(cbScope, tdScope *scope.Scope, refName string) bool {
	want := refName + ".current"
	found := false
	var visit func(s *scope.Scope)
	visit = func(s *scope.Scope) {
		if found || s == tdScope {
			return
		}
		for _, b := range s.Bindings {
			if b.Init == nil {
				continue
			}
			r := newPathResolver()
			if key, err := r.Resolve(b.Init.InnerExpr()); err == nil && key == want {
				found = true
				return
			}
		}
		for _, child := range s.Children {
			visit(child)
		}
	}
	visit(cbScope)
	return found
}
