package analyzer

import (
	"strings"

	"hookdeps/internal/core/errors"
	"hookdeps/internal/engine/jsast"
)

// maxPathDepth caps pathological member chains.
const maxPathDepth = 32

// pathResolver turns expression nodes into canonical dot/bracket paths
// and remembers, per prefix, whether the access reaching the next segment
// was optional. One resolver instance serves a single call-site analysis
// so declared entries and collected references share the flags.
type pathResolver struct {
	optional map[string]bool
}

func newPathResolver() *pathResolver {
	return &pathResolver{optional: make(map[string]bool)}
}

// Resolve builds the canonical path for a supported expression shape.
// Computed accesses that cannot be rendered statically become a "[*]"
// segment; shapes outside the closed set fail with CodeUnresolvablePath.
func (r *pathResolver) Resolve(n *jsast.Node) (string, error) {
	return r.resolve(n, 0)
}

func (r *pathResolver) resolve(n *jsast.Node, depth int) (string, error) {
	if n == nil {
		return "", errors.New(errors.CodeUnresolvablePath, "empty expression")
	}
	if depth > maxPathDepth {
		return "", errors.New(errors.CodeUnresolvablePath, "member chain too deep")
	}

	switch n.Kind {
	case jsast.KindIdentifier, jsast.KindPropertyName:
		return n.Name, nil

	case jsast.KindMember:
		base, err := r.resolve(n.Object, depth+1)
		if err != nil {
			return "", err
		}
		if n.Property == nil || n.Property.Name == "" {
			return "", errors.New(errors.CodeUnresolvablePath, "member access without property name")
		}
		if n.Optional {
			r.optional[base] = true
		}
		return base + "." + n.Property.Name, nil

	case jsast.KindIndex:
		base, err := r.resolve(n.Object, depth+1)
		if err != nil {
			return "", err
		}
		if n.Optional {
			r.optional[base] = true
		}
		return base + "[" + indexSegment(n.Property) + "]", nil

	case jsast.KindCall:
		// The callee's path stands in for the call result.
		return r.resolve(n.Callee, depth+1)

	case jsast.KindNonNull, jsast.KindParen:
		return r.resolve(n.Object, depth+1)

	default:
		return "", errors.New(errors.CodeUnresolvablePath, "unsupported expression shape: "+n.Kind.String())
	}
}

// indexSegment renders a computed key: literals and identifiers keep
// their text, anything dynamic collapses to the placeholder so prefix
// matching still works.
func indexSegment(key *jsast.Node) string {
	if key != nil {
		key = key.InnerExpr()
	}
	if key == nil {
		return "*"
	}
	switch key.Kind {
	case jsast.KindLiteral:
		if key.Primitive {
			return key.Name
		}
	case jsast.KindIdentifier:
		return key.Name
	}
	return "*"
}

// IsOptional reports whether the access after the given prefix was seen
// through an optional chain.
func (r *pathResolver) IsOptional(prefix string) bool {
	return r.optional[prefix]
}

// SplitPath splits a canonical path into segments: "a.value[k].b" yields
// ["a", "value", "[k]", "b"].
func SplitPath(path string) []string {
	var segments []string
	var current strings.Builder
	inBracket := false
	for _, r := range path {
		switch {
		case inBracket:
			current.WriteRune(r)
			if r == ']' {
				inBracket = false
				segments = append(segments, current.String())
				current.Reset()
			}
		case r == '[':
			if current.Len() > 0 {
				segments = append(segments, current.String())
				current.Reset()
			}
			inBracket = true
			current.WriteRune(r)
		case r == '.':
			if current.Len() > 0 {
				segments = append(segments, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		segments = append(segments, current.String())
	}
	return segments
}

// JoinPath reassembles segments into a canonical path.
func JoinPath(segments []string) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// Render writes a path back as source text, honoring recorded optional
// chains ("a?.b", "a?.[k]").
func (r *pathResolver) Render(path string) string {
	segments := SplitPath(path)
	var b strings.Builder
	prefix := ""
	for i, seg := range segments {
		if i > 0 {
			if r.optional[prefix] {
				b.WriteString("?.")
			} else if !strings.HasPrefix(seg, "[") {
				b.WriteByte('.')
			}
		}
		b.WriteString(seg)
		prefix = JoinPath(segments[:i+1])
	}
	return b.String()
}

// isStrictAncestor reports whether a is a proper path prefix of b.
func isStrictAncestor(a, b string) bool {
	if a == b {
		return false
	}
	as, bs := SplitPath(a), SplitPath(b)
	if len(as) >= len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
