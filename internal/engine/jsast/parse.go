package jsast

import (
	"path/filepath"
	"strings"
	"time"

	"hookdeps/internal/core/errors"
	"hookdeps/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var extensions = map[string]string{
	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".cjs": "javascript",
	".ts":  "typescript",
	".mts": "typescript",
	".cts": "typescript",
	".tsx": "tsx",
}

// DetectLanguage maps a file path to a grammar identifier, or "".
func DetectLanguage(path string) string {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

func grammarFor(language string) *sitter.Language {
	switch language {
	case "javascript":
		return sitter.NewLanguage(tree_sitter_javascript.Language())
	case "typescript":
		return sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	case "tsx":
		return sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	default:
		return nil
	}
}

// ParseFile parses JS/TS/TSX source into the analyzer's node union.
// The tree-sitter tree is closed before returning.
func ParseFile(path string, content []byte) (*File, error) {
	language := DetectLanguage(path)
	if language == "" {
		return nil, errors.New(errors.CodeNotSupported, "unsupported language: "+path)
	}

	grammar := grammarFor(language)
	if grammar == nil {
		return nil, errors.New(errors.CodeInternal, "grammar not loaded: "+language)
	}

	started := time.Now()

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxFile, path)
	}
	defer tree.Close()

	root := Build(tree.RootNode(), content)
	observability.ParseDuration.WithLabelValues(language).Observe(time.Since(started).Seconds())

	return &File{
		Path:     path,
		Language: language,
		Source:   content,
		Root:     root,
		ParsedAt: time.Now(),
	}, nil
}
