package jsast

import (
	"testing"
)

func mustParse(t *testing.T, name, src string) *File {
	t.Helper()
	file, err := ParseFile(name, []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	return file
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]string{
		"a.js":     "javascript",
		"a.jsx":    "javascript",
		"a.mjs":    "javascript",
		"a.ts":     "typescript",
		"a.MTS":    "typescript",
		"a.tsx":    "tsx",
		"a.go":     "",
		"Makefile": "",
	}
	for path, want := range cases {
		if got := DetectLanguage(path); got != want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestParseUnsupportedExtension(t *testing.T) {
	if _, err := ParseFile("config.yaml", []byte("x: 1")); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func findKind(root *Node, kind Kind) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if found == nil && n.Kind == kind {
			found = n
		}
		return found == nil
	})
	return found
}

func TestMemberAndIndexShapes(t *testing.T) {
	file := mustParse(t, "a.js", `const x = user?.profile.names[0];`)

	idx := findKind(file.Root, KindIndex)
	if idx == nil {
		t.Fatal("no index expression built")
	}
	if idx.Property == nil || idx.Property.Kind != KindLiteral || idx.Property.Name != "0" {
		t.Errorf("index key = %+v, want literal 0", idx.Property)
	}

	member := idx.Object
	if member == nil || member.Kind != KindMember {
		t.Fatalf("index object = %+v, want member expression", member)
	}
	if member.Property == nil || member.Property.Name != "names" {
		t.Errorf("member property = %+v, want names", member.Property)
	}

	inner := member.Object
	if inner == nil || inner.Kind != KindMember || !inner.Optional {
		t.Errorf("inner member = %+v, want optional chain", inner)
	}
}

func TestCallShape(t *testing.T) {
	file := mustParse(t, "a.js", `useEffect(() => {}, [a, b]);`)

	call := findKind(file.Root, KindCall)
	if call == nil {
		t.Fatal("no call expression built")
	}
	if call.Callee == nil || call.Callee.Name != "useEffect" {
		t.Errorf("callee = %+v, want useEffect", call.Callee)
	}
	if len(call.Args) != 2 {
		t.Fatalf("got %d args, want 2", len(call.Args))
	}
	if !call.Args[0].IsFunctionLike() {
		t.Errorf("first arg kind = %v, want function", call.Args[0].Kind)
	}
	if call.Args[1].Kind != KindArray {
		t.Errorf("second arg kind = %v, want array", call.Args[1].Kind)
	}
	if len(call.Args[1].Children) != 2 {
		t.Errorf("array has %d elements, want 2", len(call.Args[1].Children))
	}
}

func TestFunctionShapes(t *testing.T) {
	file := mustParse(t, "a.js", `
async function load(url, { retries = 3 } = {}) {
  return fetch(url);
}
const quick = x => x + 1;
`)
	fn := findKind(file.Root, KindFunction)
	if fn == nil {
		t.Fatal("no function built")
	}
	if fn.FuncName != "load" || !fn.IsAsync || fn.IsArrow {
		t.Errorf("load parsed as name=%q async=%v arrow=%v", fn.FuncName, fn.IsAsync, fn.IsArrow)
	}
	if len(fn.Params) != 2 {
		t.Errorf("load has %d params, want 2", len(fn.Params))
	}

	var arrow *Node
	Walk(file.Root, func(n *Node) bool {
		if n.Kind == KindFunction && n.IsArrow {
			arrow = n
		}
		return true
	})
	if arrow == nil {
		t.Fatal("no arrow function built")
	}
	if len(arrow.Params) != 1 {
		t.Errorf("arrow has %d params, want 1", len(arrow.Params))
	}
	if arrow.Body == nil || arrow.Body.Kind == KindBlock {
		t.Error("paren-less arrow should have an expression body")
	}
}

func TestImportShapes(t *testing.T) {
	file := mustParse(t, "a.js", `import React, { useEffect as effect } from "react";`)

	imp := findKind(file.Root, KindImport)
	if imp == nil {
		t.Fatal("no import built")
	}
	if imp.Source != "react" {
		t.Errorf("source = %q, want react", imp.Source)
	}
	if len(imp.ImportedNames) != 2 {
		t.Fatalf("imported names = %+v, want default and named entry", imp.ImportedNames)
	}
	if imp.ImportedNames[0].Imported != "default" || imp.ImportedNames[0].Local != "React" {
		t.Errorf("default import = %+v", imp.ImportedNames[0])
	}
	if imp.ImportedNames[1].Imported != "useEffect" || imp.ImportedNames[1].Local != "effect" {
		t.Errorf("aliased import = %+v", imp.ImportedNames[1])
	}
}

func TestLocationIsOneBased(t *testing.T) {
	file := mustParse(t, "a.js", "const a = 1;\nconst b = 2;\n")

	var second *Node
	Walk(file.Root, func(n *Node) bool {
		if n.Kind == KindIdentifier && n.Name == "b" {
			second = n
		}
		return true
	})
	if second == nil {
		t.Fatal("identifier b not found")
	}
	loc := file.Location(second)
	if loc.Line != 2 || loc.Column != 7 {
		t.Errorf("location = %d:%d, want 2:7", loc.Line, loc.Column)
	}
	if file.Text(second) != "b" {
		t.Errorf("text = %q, want b", file.Text(second))
	}
}
