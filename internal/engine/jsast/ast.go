package jsast

import "time"

// Kind is the closed set of node shapes the analyzer works with.
// Anything the grammar produces beyond these becomes KindOther, which is
// still traversable but never participates in path resolution.
type Kind uint8

const (
	KindOther Kind = iota
	KindProgram
	KindIdentifier
	KindPropertyName
	KindMember
	KindIndex
	KindCall
	KindNonNull
	KindParen
	KindLiteral
	KindTemplate
	KindArray
	KindObject
	KindPair
	KindSpread
	KindFunction
	KindClass
	KindAssign
	KindUpdate
	KindVarDecl
	KindDeclarator
	KindArrayPattern
	KindObjectPattern
	KindImport
	KindBlock
	KindReturn
)

func (k Kind) String() string {
	switch k {
	case KindProgram:
		return "program"
	case KindIdentifier:
		return "identifier"
	case KindPropertyName:
		return "property"
	case KindMember:
		return "member"
	case KindIndex:
		return "index"
	case KindCall:
		return "call"
	case KindNonNull:
		return "non-null"
	case KindParen:
		return "paren"
	case KindLiteral:
		return "literal"
	case KindTemplate:
		return "template"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindPair:
		return "pair"
	case KindSpread:
		return "spread"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindAssign:
		return "assign"
	case KindUpdate:
		return "update"
	case KindVarDecl:
		return "var-decl"
	case KindDeclarator:
		return "declarator"
	case KindArrayPattern:
		return "array-pattern"
	case KindObjectPattern:
		return "object-pattern"
	case KindImport:
		return "import"
	case KindBlock:
		return "block"
	case KindReturn:
		return "return"
	default:
		return "other"
	}
}

// Node is a parent-linked syntax node. Children always holds every named
// child in source order; the typed fields alias into that slice.
type Node struct {
	Kind     Kind
	Parent   *Node
	Children []*Node

	// Name carries the identifier/property text for identifier-like kinds,
	// the raw text for literals, and the operator for assignments.
	Name string

	Object   *Node // member/index/non-null/paren/spread/return inner, call receiver chain base
	Property *Node // member property or index expression
	Optional bool  // the access used ?.

	Callee *Node
	Args   []*Node

	Left  *Node
	Right *Node

	Pattern     *Node // declarator binding pattern
	Init        *Node // declarator initializer
	DeclKeyword string

	Params   []*Node
	Body     *Node
	FuncName string
	IsAsync  bool
	IsArrow  bool

	Primitive bool // literal of primitive type

	Source        string // import module specifier, unquoted
	ImportedNames []ImportedName

	StartByte, EndByte uint
	StartRow, StartCol uint
}

// ImportedName maps an exported name to its local binding.
// Imported is "default" for default imports and "*" for namespace imports.
type ImportedName struct {
	Imported string
	Local    string
}

type Location struct {
	File   string
	Line   int
	Column int
}

type File struct {
	Path     string
	Language string
	Source   []byte
	Root     *Node
	ParsedAt time.Time
}

func (f *File) Text(n *Node) string {
	if n == nil {
		return ""
	}
	return string(f.Source[n.StartByte:n.EndByte])
}

func (f *File) Slice(start, end uint) string {
	if end > uint(len(f.Source)) || start > end {
		return ""
	}
	return string(f.Source[start:end])
}

func (f *File) Location(n *Node) Location {
	return Location{
		File:   f.Path,
		Line:   int(n.StartRow) + 1,
		Column: int(n.StartCol) + 1,
	}
}

// Walk visits n and every descendant in source order. The visitor returns
// false to skip the node's children.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, visit)
	}
}

// IsFunctionLike reports whether the node introduces a function scope.
func (n *Node) IsFunctionLike() bool {
	return n.Kind == KindFunction
}

// InnerExpr unwraps parens, non-null assertions, and TS cast wrappers.
func (n *Node) InnerExpr() *Node {
	for n != nil && (n.Kind == KindParen || n.Kind == KindNonNull) {
		n = n.Object
	}
	return n
}

// EnclosingFunction returns the nearest function node containing n, or nil.
func (n *Node) EnclosingFunction() *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == KindFunction {
			return p
		}
	}
	return nil
}
