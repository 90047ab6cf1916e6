package analyzer

import (
	"sort"

	"hookdeps/internal/engine/jsast"
	"hookdeps/internal/shared/util"
)

// DeclaredEntry is one parsed element of the declared dependency array.
type DeclaredEntry struct {
	Key  string
	Node *jsast.Node
}

type Reconciliation struct {
	Satisfying  []string
	Missing     []string
	Unnecessary []*DeclaredEntry
	Duplicates  []*DeclaredEntry
	Suggested   []string
}

func (r *Reconciliation) Clean() bool {
	return len(r.Missing) == 0 && len(r.Unnecessary) == 0 && len(r.Duplicates) == 0
}

// depNode is one segment of the dependency trie.
type depNode struct {
	path     string
	children map[string]*depNode
	order    []string

	isUsed                 bool
	isSubtreeUsed          bool
	isSatisfiedRecursively bool
	isDeclared             bool
	stableOnly             bool
	isContainerBase        bool

	dep   *Dependency
	entry *DeclaredEntry
}

func newDepNode(path string) *depNode {
	return &depNode{path: path, children: make(map[string]*depNode)}
}

func (n *depNode) insert(segments []string) *depNode {
	cur := n
	for i, seg := range segments {
		child := cur.children[seg]
		if child == nil {
			child = newDepNode(JoinPath(segments[:i+1]))
			cur.children[seg] = child
			cur.order = append(cur.order, seg)
		}
		cur = child
	}
	return cur
}

func (n *depNode) walkOrder(visit func(*depNode) bool) {
	for _, seg := range n.order {
		child := n.children[seg]
		if visit(child) {
			child.walkOrder(visit)
		}
	}
}

// reconcile compares the collected dependency paths against the declared
// list and the stable set, producing the shallowest missing paths, the
// declared entries that serve no purpose, and the replacement list.
func reconcile(collected *CollectResult, declared []*DeclaredEntry) *Reconciliation {
	root := newDepNode("")

	for _, key := range util.SortedStringKeys(collected.Deps) {
		dep := collected.Deps[key]
		leaf := root.insert(SplitPath(key))
		leaf.isUsed = true
		leaf.dep = dep
		markSubtreeUsed(root, key)
	}
	for _, key := range util.SortedStringKeys(collected.StableKeys) {
		leaf := root.insert(SplitPath(key))
		leaf.isUsed = true
		leaf.isSatisfiedRecursively = true
		leaf.stableOnly = true
		markSubtreeUsed(root, key)
	}
	for name := range collected.ContainerBases {
		root.insert(SplitPath(name)).isContainerBase = true
	}

	out := &Reconciliation{}
	for _, entry := range declared {
		node := root.insert(SplitPath(entry.Key))
		if node.isDeclared {
			out.Duplicates = append(out.Duplicates, entry)
			continue
		}
		node.isDeclared = true
		node.isSatisfiedRecursively = true
		node.entry = entry
	}

	// Top-down scan: stop at the shallowest satisfied or missing path.
	// Container bare names never cover their subtree, since the .value
	// cell changes independently of the wrapper's identity.
	satisfying := make(map[string]bool)
	root.walkOrder(func(n *depNode) bool {
		if n.isContainerBase {
			if n.isSatisfiedRecursively && (n.isUsed || n.isSubtreeUsed) && (n.isDeclared || !n.stableOnly) {
				satisfying[n.path] = true
			} else if n.isDeclared && !n.isUsed && !n.isSubtreeUsed {
				out.Unnecessary = append(out.Unnecessary, n.entry)
			}
			return true
		}
		if n.isSatisfiedRecursively {
			if n.isUsed || n.isSubtreeUsed {
				if n.isDeclared || !n.stableOnly {
					satisfying[n.path] = true
				}
			} else if n.isDeclared {
				out.Unnecessary = append(out.Unnecessary, n.entry)
			}
			return false
		}
		// An unsatisfied node is the shallowest missing path only when
		// it is read directly, or when nothing deeper satisfies the
		// subtree; a declared descendant pushes the scan down instead.
		if n.isUsed || (n.isSubtreeUsed && !hasSatisfiedDescendant(n)) {
			out.Missing = append(out.Missing, n.path)
			return false
		}
		return true
	})

	// A declared path strictly above a missing one is incomplete: the
	// shallow entry never fires for the deeper cell.
	for _, entry := range declared {
		for _, miss := range out.Missing {
			if isStrictAncestor(entry.Key, miss) && satisfying[entry.Key] {
				delete(satisfying, entry.Key)
				out.Unnecessary = append(out.Unnecessary, entry)
				break
			}
		}
	}

	// A declared path strictly above another declared path, never read
	// directly itself, is redundant; its declared descendants stand in.
	for _, outer := range declared {
		if !satisfying[outer.Key] {
			continue
		}
		if directlyRead(root, outer.Key) {
			continue
		}
		for _, inner := range declared {
			if !isStrictAncestor(outer.Key, inner.Key) {
				continue
			}
			delete(satisfying, outer.Key)
			out.Unnecessary = append(out.Unnecessary, outer)
			for _, desc := range declared {
				if isStrictAncestor(outer.Key, desc.Key) && subtreeUsed(root, desc.Key) {
					satisfying[desc.Key] = true
				}
			}
			break
		}
	}

	assembleSuggested(out, declared, satisfying)
	return out
}

func hasSatisfiedDescendant(n *depNode) bool {
	for _, child := range n.children {
		if child.isSatisfiedRecursively || hasSatisfiedDescendant(child) {
			return true
		}
	}
	return false
}

func markSubtreeUsed(root *depNode, key string) {
	cur := root
	for _, seg := range SplitPath(key) {
		cur = cur.children[seg]
		cur.isSubtreeUsed = true
	}
}

func lookupNode(root *depNode, key string) *depNode {
	cur := root
	for _, seg := range SplitPath(key) {
		cur = cur.children[seg]
		if cur == nil {
			return nil
		}
	}
	return cur
}

func directlyRead(root *depNode, key string) bool {
	n := lookupNode(root, key)
	return n != nil && n.isUsed && (n.dep == nil || n.dep.HasReads)
}

func subtreeUsed(root *depNode, key string) bool {
	n := lookupNode(root, key)
	return n != nil && (n.isUsed || n.isSubtreeUsed)
}

// assembleSuggested keeps satisfying entries in declared order, then
// appends missing paths longest-first so an ancestor never displaces an
// already-placed descendant. If the declared list was alphabetized the
// result is re-sorted to preserve that.
func assembleSuggested(out *Reconciliation, declared []*DeclaredEntry, satisfying map[string]bool) {
	seen := make(map[string]bool)
	for _, entry := range declared {
		if satisfying[entry.Key] && !seen[entry.Key] {
			out.Suggested = append(out.Suggested, entry.Key)
			out.Satisfying = append(out.Satisfying, entry.Key)
			seen[entry.Key] = true
		}
	}
	missing := make([]string, len(out.Missing))
	copy(missing, out.Missing)
	sort.Slice(missing, func(i, j int) bool {
		return len(SplitPath(missing[i])) > len(SplitPath(missing[j]))
	})
	for _, key := range missing {
		if seen[key] {
			continue
		}
		covered := false
		for _, placed := range out.Suggested {
			if isStrictAncestor(key, placed) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		out.Suggested = append(out.Suggested, key)
		seen[key] = true
	}

	declaredKeys := make([]string, len(declared))
	for i, entry := range declared {
		declaredKeys[i] = entry.Key
	}
	if len(declaredKeys) > 1 && util.IsSorted(declaredKeys) {
		sort.Strings(out.Suggested)
	}
}
