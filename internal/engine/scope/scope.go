package scope

import (
	"hookdeps/internal/engine/jsast"
)

type ScopeKind int

const (
	ModuleScope ScopeKind = iota
	FunctionScope
	BlockScope
)

type DefKind int

const (
	DefParameter DefKind = iota
	DefVariable
	DefFunction
	DefClass
	DefImport
)

// Binding is a named declaration owned by a scope. Bindings live only as
// long as the file's graph; nothing persists across files.
type Binding struct {
	Name        string
	Kind        DefKind
	DeclKeyword string // const / let / var, "" otherwise
	Node        *jsast.Node
	Init        *jsast.Node
	Scope       *Scope
	References  []*Reference

	// Destructuring provenance, used by the stability classifier.
	DeclaratorInit   *jsast.Node // initializer of the declarator this binding came from
	PatternRoot      *jsast.Node // root pattern of that declarator
	DestructureIndex int         // position within an array pattern, -1 otherwise
}

// Reference is one use-site of a name. Binding is nil for externals.
// IsWrite covers the whole member chain rooted at the identifier: for
// `a.b.c = x` the reference to `a` carries IsWrite with WriteExpr x.
type Reference struct {
	Node      *jsast.Node
	Binding   *Binding
	Scope     *Scope
	IsWrite   bool
	IsRead    bool
	WriteExpr *jsast.Node
}

type Scope struct {
	Kind       ScopeKind
	Parent     *Scope
	Node       *jsast.Node
	Bindings   map[string]*Binding
	References []*Reference
	Children   []*Scope
}

func (s *Scope) Lookup(name string) *Binding {
	for cur := s; cur != nil; cur = cur.Parent {
		if b, ok := cur.Bindings[name]; ok {
			return b
		}
	}
	return nil
}

// Within reports whether s is other or nested anywhere below it.
func (s *Scope) Within(other *Scope) bool {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur == other {
			return true
		}
	}
	return false
}

// NearestFunction returns the closest enclosing function or module scope.
func (s *Scope) NearestFunction() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind != BlockScope {
			return cur
		}
	}
	return s
}

// Graph is the immutable-after-construction scope graph for one file.
type Graph struct {
	File    *jsast.File
	Module  *Scope
	Imports *ImportFacts

	byNode map[*jsast.Node]*Scope
}

// ScopeFor returns the innermost scope containing the node.
func (g *Graph) ScopeFor(n *jsast.Node) *Scope {
	for cur := n; cur != nil; cur = cur.Parent {
		if s, ok := g.byNode[cur]; ok {
			return s
		}
	}
	return g.Module
}

// FunctionScopeFor returns the scope introduced by the given function node.
func (g *Graph) FunctionScopeFor(fn *jsast.Node) *Scope {
	return g.byNode[fn]
}

// VisitReferences walks every reference in root and all nested scopes.
func VisitReferences(root *Scope, visit func(*Reference) bool) bool {
	for _, ref := range root.References {
		if !visit(ref) {
			return false
		}
	}
	for _, child := range root.Children {
		if !VisitReferences(child, visit) {
			return false
		}
	}
	return true
}

// Build constructs the scope graph: a declaration pass with var/function
// hoisting followed by a reference-resolution pass.
func Build(file *jsast.File) *Graph {
	g := &Graph{
		File:   file,
		byNode: make(map[*jsast.Node]*Scope),
	}
	b := &graphBuilder{
		graph:    g,
		declared: make(map[*jsast.Node]bool),
	}

	g.Module = b.newScope(ModuleScope, nil, file.Root)
	b.declare(file.Root, g.Module)
	b.resolve(file.Root, g.Module)
	g.Imports = ScanImports(file)
	return g
}

type graphBuilder struct {
	graph    *Graph
	declared map[*jsast.Node]bool // identifier nodes that are binding occurrences
}

func (b *graphBuilder) newScope(kind ScopeKind, parent *Scope, node *jsast.Node) *Scope {
	s := &Scope{
		Kind:     kind,
		Parent:   parent,
		Node:     node,
		Bindings: make(map[string]*Binding),
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	b.graph.byNode[node] = s
	return s
}

func (b *graphBuilder) addBinding(s *Scope, bind *Binding) {
	bind.Scope = s
	// First declaration wins; redeclarations keep the original binding so
	// references stay attached to one owner.
	if _, exists := s.Bindings[bind.Name]; !exists {
		s.Bindings[bind.Name] = bind
	}
}

// declare walks the tree creating scopes and bindings.
func (b *graphBuilder) declare(n *jsast.Node, current *Scope) {
	if n == nil {
		return
	}

	switch n.Kind {
	case jsast.KindFunction:
		if n.FuncName != "" && !n.IsArrow {
			b.addBinding(current, &Binding{
				Name:             n.FuncName,
				Kind:             DefFunction,
				Node:             n,
				Init:             n,
				DestructureIndex: -1,
			})
		}
		fnScope := b.newScope(FunctionScope, current, n)
		for _, param := range n.Params {
			b.declarePattern(param, fnScope, &declContext{kind: DefParameter})
		}
		b.declare(n.Body, fnScope)
		return

	case jsast.KindClass:
		if n.FuncName != "" {
			b.addBinding(current, &Binding{
				Name:             n.FuncName,
				Kind:             DefClass,
				Node:             n,
				Init:             n,
				DestructureIndex: -1,
			})
		}
		clsScope := b.newScope(FunctionScope, current, n)
		b.declare(n.Body, clsScope)
		return

	case jsast.KindBlock:
		blockScope := b.newScope(BlockScope, current, n)
		for _, child := range n.Children {
			b.declare(child, blockScope)
		}
		return

	case jsast.KindVarDecl:
		target := current
		if n.DeclKeyword == "var" {
			target = current.NearestFunction()
		}
		for _, decl := range n.Children {
			if decl.Kind != jsast.KindDeclarator {
				continue
			}
			ctx := &declContext{
				kind:        DefVariable,
				declKeyword: n.DeclKeyword,
				init:        decl.Init,
				patternRoot: decl.Pattern,
			}
			b.declarePattern(decl.Pattern, target, ctx)
			b.declare(decl.Init, current)
		}
		return

	case jsast.KindImport:
		for _, imp := range n.ImportedNames {
			b.addBinding(b.graph.Module, &Binding{
				Name:             imp.Local,
				Kind:             DefImport,
				Node:             n,
				DestructureIndex: -1,
			})
		}
		return
	}

	for _, child := range n.Children {
		b.declare(child, current)
	}
}

type declContext struct {
	kind        DefKind
	declKeyword string
	init        *jsast.Node
	patternRoot *jsast.Node
	arrayIndex  int // set while descending an array pattern
	inArray     bool
}

// declarePattern declares every name bound by a (possibly destructuring)
// pattern, remembering array positions and the declarator initializer.
func (b *graphBuilder) declarePattern(pattern *jsast.Node, s *Scope, ctx *declContext) {
	if pattern == nil {
		return
	}

	switch pattern.Kind {
	case jsast.KindIdentifier:
		b.declared[pattern] = true
		idx := -1
		if ctx.inArray {
			idx = ctx.arrayIndex
		}
		b.addBinding(s, &Binding{
			Name:             pattern.Name,
			Kind:             ctx.kind,
			DeclKeyword:      ctx.declKeyword,
			Node:             pattern,
			Init:             ctx.init,
			DeclaratorInit:   ctx.init,
			PatternRoot:      ctx.patternRoot,
			DestructureIndex: idx,
		})

	case jsast.KindArrayPattern:
		for i, elem := range pattern.Children {
			sub := *ctx
			sub.inArray = true
			sub.arrayIndex = i
			b.declarePattern(elem, s, &sub)
		}

	case jsast.KindObjectPattern:
		for _, prop := range pattern.Children {
			sub := *ctx
			sub.inArray = false
			switch prop.Kind {
			case jsast.KindPair:
				b.declarePattern(prop.Right, s, &sub)
			default:
				b.declarePattern(prop, s, &sub)
			}
		}

	case jsast.KindSpread:
		b.declarePattern(pattern.Object, s, ctx)

	case jsast.KindDeclarator:
		// Default-valued pattern element or TS parameter wrapper.
		sub := *ctx
		if pattern.Init != nil && ctx.init == nil {
			sub.init = pattern.Init
		}
		b.declarePattern(pattern.Pattern, s, &sub)
		b.declare(pattern.Init, s)
	}
}

// resolve records references and attaches them to bindings.
func (b *graphBuilder) resolve(n *jsast.Node, current *Scope) {
	if n == nil {
		return
	}

	if s, ok := b.graph.byNode[n]; ok && s != current {
		current = s
	}

	if n.Kind == jsast.KindIdentifier && !b.declared[n] && n.Name != "" {
		ref := &Reference{
			Node:    n,
			Binding: current.Lookup(n.Name),
			Scope:   current,
		}
		ref.IsWrite, ref.IsRead, ref.WriteExpr = classifyAccess(n)
		current.References = append(current.References, ref)
		if ref.Binding != nil {
			ref.Binding.References = append(ref.Binding.References, ref)
		}
	}

	for _, child := range n.Children {
		b.resolve(child, current)
	}
}

// classifyAccess walks outward through the member chain rooted at the
// identifier and inspects how the chain top is used.
func classifyAccess(id *jsast.Node) (isWrite, isRead bool, writeExpr *jsast.Node) {
	top := id
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

	parent := top.Parent
	if parent != nil && parent.Kind == jsast.KindAssign && parent.Left == top {
		if parent.Name == "=" {
			return true, false, parent.Right
		}
		// Compound assignment reads the previous value.
		return true, true, parent.Right
	}
	if parent != nil && parent.Kind == jsast.KindUpdate && parent.Left == top {
		return true, true, nil
	}
	return false, true, nil
}
