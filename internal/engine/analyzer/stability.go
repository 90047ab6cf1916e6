package analyzer

import (
	"strings"

	"hookdeps/internal/engine/jsast"
	"hookdeps/internal/engine/scope"
)

// Classifier decides binding stability and container-ness. It is scoped
// to one file pass: memoization is keyed by binding identity and bindings
// are never reused across files, but nested call sites in the same
// enclosing scope revisit the same bindings, which is what the caches
// are for.
type Classifier struct {
	opts  *Options
	graph *scope.Graph

	stability  map[*scope.Binding]stabilityResult
	containers map[*scope.Binding]ContainerInfo
	visiting   map[*scope.Binding]bool
}

type stabilityResult struct {
	stable     bool
	mutableRef bool
}

type ContainerInfo struct {
	IsContainer bool
	Creator     string
}

func NewClassifier(graph *scope.Graph, opts *Options) *Classifier {
	return &Classifier{
		opts:       opts,
		graph:      graph,
		stability:  make(map[*scope.Binding]stabilityResult),
		containers: make(map[*scope.Binding]ContainerInfo),
		visiting:   make(map[*scope.Binding]bool),
	}
}

// IsStable reports whether the binding's identity is guaranteed to stay
// the same across re-invocations of its owning scope.
func (c *Classifier) IsStable(b *scope.Binding) bool {
	return c.classify(b).stable
}

// IsMutableRef reports whether the binding is a persistent mutable cell
// (stable identity, mutable .current).
func (c *Classifier) IsMutableRef(b *scope.Binding) bool {
	return c.classify(b).mutableRef
}

func (c *Classifier) classify(b *scope.Binding) stabilityResult {
	if b == nil {
		return stabilityResult{}
	}
	if cached, ok := c.stability[b]; ok {
		return cached
	}
	// Cycle guard: a binding reached through its own free variables is
	// conservatively unstable.
	if c.visiting[b] {
		return stabilityResult{}
	}
	c.visiting[b] = true
	result := c.classifyUncached(b)
	delete(c.visiting, b)
	c.stability[b] = result
	return result
}

func (c *Classifier) classifyUncached(b *scope.Binding) stabilityResult {
	// Container identity is stable; the mutable cell is handled per-path.
	if c.Container(b).IsContainer {
		return stabilityResult{stable: true}
	}

	init := innerInit(b.Init)

	// Persistent mutable cell: identity never changes regardless of the
	// cell's contents.
	if name := creatorName(init); name != "" && c.opts.StableCreators[name] {
		return stabilityResult{stable: true, mutableRef: true}
	}

	// State updater from a recognized two-element destructuring, as long
	// as the updater itself is never reassigned.
	if b.DestructureIndex == 1 {
		if name := creatorName(innerInit(b.DeclaratorInit)); name != "" && c.opts.StateCreators[name] {
			if writeCount(b) == 0 {
				return stabilityResult{stable: true}
			}
		}
	}

	// Functions and classes capturing nothing unstable.
	if fn := functionNodeFor(b, init); fn != nil {
		if c.freeVariablesStable(fn) {
			return stabilityResult{stable: true}
		}
		return stabilityResult{}
	}

	// const bound to a primitive literal.
	if b.DeclKeyword == "const" && init != nil && b.DestructureIndex == -1 && b.PatternRoot != nil && b.PatternRoot.Kind == jsast.KindIdentifier {
		if (init.Kind == jsast.KindLiteral || init.Kind == jsast.KindTemplate) && init.Primitive {
			return stabilityResult{stable: true}
		}
	}

	return stabilityResult{}
}

// freeVariablesStable checks every reference inside the function that
// resolves outside it.
func (c *Classifier) freeVariablesStable(fn *jsast.Node) bool {
	fnScope := c.graph.FunctionScopeFor(fn)
	if fnScope == nil {
		return false
	}
	allStable := scope.VisitReferences(fnScope, func(ref *scope.Reference) bool {
		if ref.Binding == nil {
			// Unresolved names live outside the file; module-level
			// resolution is the host's problem, not an instability.
			return true
		}
		if ref.Binding.Scope.Within(fnScope) {
			return true
		}
		if ref.Binding.Scope == c.graph.Module || !insideAnyFunction(ref.Binding.Scope) {
			// Module-scope bindings keep their identity between
			// invocations of inner scopes.
			return true
		}
		return c.classify(ref.Binding).stable
	})
	return allStable
}

func insideAnyFunction(s *scope.Scope) bool {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == scope.FunctionScope {
			return true
		}
	}
	return false
}

// Container classifies a binding as a reactive container: a recognized
// creator call, or a naming convention backed by an actual creator
// import somewhere in the file. Naming alone is never enough.
func (c *Classifier) Container(b *scope.Binding) ContainerInfo {
	if b == nil {
		return ContainerInfo{}
	}
	if cached, ok := c.containers[b]; ok {
		return cached
	}
	info := c.classifyContainer(b)
	c.containers[b] = info
	return info
}

func (c *Classifier) classifyContainer(b *scope.Binding) ContainerInfo {
	if b.Kind != scope.DefVariable {
		return ContainerInfo{}
	}

	if name := creatorName(innerInit(b.Init)); name != "" && c.opts.ContainerCreators[name] {
		return ContainerInfo{IsContainer: true, Creator: name}
	}

	for _, suffix := range c.opts.ContainerSuffixes {
		if len(b.Name) <= len(suffix) || !strings.HasSuffix(b.Name, suffix) {
			continue
		}
		if c.graph.Imports.HasAnyCreator(c.opts.ContainerCreators, c.opts.CreatorModules) {
			return ContainerInfo{IsContainer: true, Creator: ""}
		}
	}
	return ContainerInfo{}
}

// creatorName extracts the called creator from an initializer like
// `useRef(0)` or `React.useRef(0)`, or "" when the shape doesn't match.
func creatorName(init *jsast.Node) string {
	if init == nil || init.Kind != jsast.KindCall {
		return ""
	}
	callee := init.Callee
	if callee != nil {
		callee = callee.InnerExpr()
	}
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

func innerInit(init *jsast.Node) *jsast.Node {
	if init == nil {
		return nil
	}
	return init.InnerExpr()
}

// functionNodeFor returns the function/class node a binding names, or nil.
func functionNodeFor(b *scope.Binding, init *jsast.Node) *jsast.Node {
	switch b.Kind {
	case scope.DefFunction, scope.DefClass:
		return b.Node
	}
	if init != nil && init.Kind == jsast.KindFunction {
		return init
	}
	return nil
}

func writeCount(b *scope.Binding) int {
	writes := 0
	for _, ref := range b.References {
		// Only direct reassignment of the identifier itself counts.
		if ref.IsWrite && topOfChain(ref.Node) == ref.Node {
			writes++
		}
	}
	return writes
}

// topOfChain ascends member/index/paren wrappers rooted at the node.
func topOfChain(n *jsast.Node) *jsast.Node {
	top := n
	for p := top.Parent; p != nil; p = p.Parent {
		if (p.Kind == jsast.KindMember || p.Kind == jsast.KindIndex) && p.Object == top {
			top = p
			continue
		}
		if (p.Kind == jsast.KindNonNull || p.Kind == jsast.KindParen) && p.Object == top {
			top = p
			continue
		}
		break
	}
	return top
}
