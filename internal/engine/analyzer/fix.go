package analyzer

import (
	"fmt"
	"strings"

	"hookdeps/internal/engine/jsast"
)

// renderDepsArray renders the replacement dependency array as source
// text, honoring recorded optional-chain segments.
func (p *pass) renderDepsArray(suggested []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, key := range suggested {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.resolver.Render(key))
	}
	b.WriteByte(']')
	return b.String()
}

// arrayReplacementFix replaces the whole declared array with the
// suggested list.
func (p *pass) arrayReplacementFix(depsNode *jsast.Node, suggested []string) Fix {
	return Fix{
		Start:   depsNode.StartByte,
		End:     depsNode.EndByte,
		NewText: p.renderDepsArray(suggested),
	}
}

// memoizeWrapFix wraps an unstable construction's initializer in a
// memoizing call so its identity survives re-invocation.
func memoizeWrapFix(file *jsast.File, init *jsast.Node) (Fix, string) {
	text := file.Text(init)
	inner := init.InnerExpr()
	if inner != nil && inner.Kind == jsast.KindFunction {
		return Fix{
			Start:   init.StartByte,
			End:     init.EndByte,
			NewText: fmt.Sprintf("useCallback(%s, [])", text),
		}, "useCallback"
	}
	return Fix{
		Start:   init.StartByte,
		End:     init.EndByte,
		NewText: fmt.Sprintf("useMemo(() => (%s), [])", text),
	}, "useMemo"
}
