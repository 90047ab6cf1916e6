package scope

import (
	"hookdeps/internal/engine/jsast"
)

// ImportFacts is the small fact set produced by the import scan. The
// container recognizer consumes it instead of re-walking the tree, which
// keeps the naming heuristic auditable on its own.
type ImportFacts struct {
	Modules    map[string]bool   // module specifiers imported anywhere in the file
	Names      map[string]string // local name -> imported name
	Namespaces map[string]string // namespace alias -> module specifier
}

// ScanImports collects import facts from the file's top-level statements.
func ScanImports(file *jsast.File) *ImportFacts {
	facts := &ImportFacts{
		Modules:    make(map[string]bool),
		Names:      make(map[string]string),
		Namespaces: make(map[string]string),
	}
	if file == nil || file.Root == nil {
		return facts
	}
	for _, stmt := range file.Root.Children {
		if stmt.Kind != jsast.KindImport {
			continue
		}
		if stmt.Source != "" {
			facts.Modules[stmt.Source] = true
		}
		for _, imp := range stmt.ImportedNames {
			if imp.Imported == "*" {
				facts.Namespaces[imp.Local] = stmt.Source
				continue
			}
			facts.Names[imp.Local] = imp.Imported
		}
	}
	return facts
}

// HasAnyCreator reports whether a recognized creator function is imported
// by name, or any recognized creator module is imported at all.
func (f *ImportFacts) HasAnyCreator(creators map[string]bool, modules map[string]bool) bool {
	if f == nil {
		return false
	}
	for _, imported := range f.Names {
		if creators[imported] {
			return true
		}
	}
	for module := range f.Modules {
		if modules[module] {
			return true
		}
	}
	return false
}

// ImportedName reports the original exported name a local identifier was
// imported under, or "".
func (f *ImportFacts) ImportedName(local string) string {
	if f == nil {
		return ""
	}
	return f.Names[local]
}
