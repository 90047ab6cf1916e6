package jsast

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type builder struct {
	source []byte
}

func (b *builder) text(ts *sitter.Node) string {
	if ts == nil {
		return ""
	}
	return string(b.source[ts.StartByte():ts.EndByte()])
}

var kindTable = map[string]Kind{
	"program":                               KindProgram,
	"identifier":                            KindIdentifier,
	"shorthand_property_identifier":         KindIdentifier,
	"shorthand_property_identifier_pattern": KindIdentifier,
	"property_identifier":                   KindPropertyName,
	"private_property_identifier":           KindPropertyName,
	"member_expression":                     KindMember,
	"subscript_expression":                  KindIndex,
	"call_expression":                       KindCall,
	"new_expression":                        KindCall,
	"non_null_expression":                   KindNonNull,
	"parenthesized_expression":              KindParen,
	"as_expression":                         KindParen,
	"satisfies_expression":                  KindParen,
	"string":                                KindLiteral,
	"number":                                KindLiteral,
	"true":                                  KindLiteral,
	"false":                                 KindLiteral,
	"null":                                  KindLiteral,
	"undefined":                             KindLiteral,
	"regex":                                 KindLiteral,
	"template_string":                       KindTemplate,
	"array":                                 KindArray,
	"object":                                KindObject,
	"pair":                                  KindPair,
	"pair_pattern":                          KindPair,
	"spread_element":                        KindSpread,
	"rest_pattern":                          KindSpread,
	"arrow_function":                        KindFunction,
	"function_expression":                   KindFunction,
	"function_declaration":                  KindFunction,
	"generator_function":                    KindFunction,
	"generator_function_declaration":        KindFunction,
	"method_definition":                     KindFunction,
	"class":                                 KindClass,
	"class_declaration":                     KindClass,
	"assignment_expression":                 KindAssign,
	"augmented_assignment_expression":       KindAssign,
	"update_expression":                     KindUpdate,
	"variable_declaration":                  KindVarDecl,
	"lexical_declaration":                   KindVarDecl,
	"variable_declarator":                   KindDeclarator,
	"assignment_pattern":                    KindDeclarator,
	"required_parameter":                    KindDeclarator,
	"optional_parameter":                    KindDeclarator,
	"array_pattern":                         KindArrayPattern,
	"object_pattern":                        KindObjectPattern,
	"import_statement":                      KindImport,
	"statement_block":                       KindBlock,
	"return_statement":                      KindReturn,
}

func mapKind(tsKind string) Kind {
	if k, ok := kindTable[tsKind]; ok {
		return k
	}
	return KindOther
}

// Build converts a tree-sitter CST into the analyzer's node union. The
// returned tree owns no references into the CST, so the caller may close
// the tree-sitter tree afterwards.
func Build(root *sitter.Node, source []byte) *Node {
	b := &builder{source: source}
	return b.convert(root)
}

func (b *builder) convert(ts *sitter.Node) *Node {
	start := ts.StartPosition()
	n := &Node{
		Kind:      mapKind(ts.Kind()),
		StartByte: ts.StartByte(),
		EndByte:   ts.EndByte(),
		StartRow:  uint(start.Row),
		StartCol:  uint(start.Column),
	}

	count := ts.NamedChildCount()
	tsChildren := make([]*sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := ts.NamedChild(i)
		if child == nil {
			continue
		}
		converted := b.convert(child)
		converted.Parent = n
		n.Children = append(n.Children, converted)
		tsChildren = append(tsChildren, child)
	}

	// Resolves a tree-sitter field to the already-converted child so typed
	// fields and Children share node identity.
	field := func(name string) *Node {
		fc := ts.ChildByFieldName(name)
		if fc == nil {
			return nil
		}
		for i, c := range tsChildren {
			if c.StartByte() == fc.StartByte() && c.EndByte() == fc.EndByte() {
				return n.Children[i]
			}
		}
		return nil
	}

	switch n.Kind {
	case KindIdentifier, KindPropertyName:
		n.Name = b.text(ts)

	case KindLiteral:
		n.Name = b.text(ts)
		n.Primitive = ts.Kind() != "regex"

	case KindTemplate:
		n.Name = b.text(ts)
		n.Primitive = !b.hasNamedDescendantKind(ts, "template_substitution")

	case KindMember:
		n.Object = field("object")
		n.Property = field("property")
		n.Optional = b.hasOptionalChain(ts)

	case KindIndex:
		n.Object = field("object")
		n.Property = field("index")
		n.Optional = b.hasOptionalChain(ts)

	case KindCall:
		n.Callee = field("function")
		if n.Callee == nil {
			n.Callee = field("constructor")
		}
		if args := field("arguments"); args != nil {
			n.Args = args.Children
		}
		n.Optional = b.hasOptionalChain(ts)

	case KindNonNull, KindParen, KindSpread, KindReturn:
		if len(n.Children) > 0 {
			n.Object = n.Children[0]
		}

	case KindPair:
		n.Left = field("key")
		n.Right = field("value")

	case KindFunction:
		if name := field("name"); name != nil {
			n.FuncName = name.Name
		}
		if params := field("parameters"); params != nil {
			n.Params = params.Children
		} else if param := field("parameter"); param != nil {
			// Paren-less single-parameter arrow.
			n.Params = []*Node{param}
		}
		n.Body = field("body")
		n.IsArrow = ts.Kind() == "arrow_function"
		n.IsAsync = b.hasAnonChild(ts, "async")

	case KindClass:
		if name := field("name"); name != nil {
			n.FuncName = name.Name
		}
		n.Body = field("body")

	case KindAssign:
		n.Left = field("left")
		n.Right = field("right")
		if ts.Kind() == "assignment_expression" {
			n.Name = "="
		} else if op := ts.ChildByFieldName("operator"); op != nil {
			n.Name = b.text(op)
		}

	case KindUpdate:
		n.Left = field("argument")
		if op := ts.ChildByFieldName("operator"); op != nil {
			n.Name = b.text(op)
		}

	case KindVarDecl:
		if ts.ChildCount() > 0 {
			n.DeclKeyword = ts.Child(0).Kind()
		}

	case KindDeclarator:
		switch ts.Kind() {
		case "variable_declarator":
			n.Pattern = field("name")
			n.Init = field("value")
		case "assignment_pattern":
			n.Pattern = field("left")
			n.Init = field("right")
		default:
			// TS parameter wrappers.
			n.Pattern = field("pattern")
			n.Init = field("value")
		}

	case KindImport:
		b.fillImport(ts, n)
	}

	return n
}

func (b *builder) fillImport(ts *sitter.Node, n *Node) {
	if src := ts.ChildByFieldName("source"); src != nil {
		n.Source = strings.Trim(b.text(src), "\"'`")
	}
	for i := uint(0); i < ts.NamedChildCount(); i++ {
		clause := ts.NamedChild(i)
		if clause.Kind() != "import_clause" {
			continue
		}
		for j := uint(0); j < clause.NamedChildCount(); j++ {
			spec := clause.NamedChild(j)
			switch spec.Kind() {
			case "identifier":
				n.ImportedNames = append(n.ImportedNames, ImportedName{Imported: "default", Local: b.text(spec)})
			case "namespace_import":
				for k := uint(0); k < spec.NamedChildCount(); k++ {
					if id := spec.NamedChild(k); id.Kind() == "identifier" {
						n.ImportedNames = append(n.ImportedNames, ImportedName{Imported: "*", Local: b.text(id)})
					}
				}
			case "named_imports":
				for k := uint(0); k < spec.NamedChildCount(); k++ {
					entry := spec.NamedChild(k)
					if entry.Kind() != "import_specifier" {
						continue
					}
					imported := b.text(entry.ChildByFieldName("name"))
					local := imported
					if alias := entry.ChildByFieldName("alias"); alias != nil {
						local = b.text(alias)
					}
					if imported != "" {
						n.ImportedNames = append(n.ImportedNames, ImportedName{Imported: imported, Local: local})
					}
				}
			}
		}
	}
}

func (b *builder) hasOptionalChain(ts *sitter.Node) bool {
	if ts.ChildByFieldName("optional_chain") != nil {
		return true
	}
	for i := uint(0); i < ts.ChildCount(); i++ {
		if ts.Child(i).Kind() == "optional_chain" {
			return true
		}
	}
	return false
}

func (b *builder) hasAnonChild(ts *sitter.Node, kind string) bool {
	for i := uint(0); i < ts.ChildCount(); i++ {
		if ts.Child(i).Kind() == kind {
			return true
		}
	}
	return false
}

func (b *builder) hasNamedDescendantKind(ts *sitter.Node, kind string) bool {
	for i := uint(0); i < ts.NamedChildCount(); i++ {
		child := ts.NamedChild(i)
		if child.Kind() == kind || b.hasNamedDescendantKind(child, kind) {
			return true
		}
	}
	return false
}
