package util

import "testing"

func TestNormalizePatternPath(t *testing.T) {
	cases := map[string]string{
		"./src/app.ts":   "src/app.ts",
		"src\\ui\\x.tsx": "src/ui/x.tsx",
		".":              "",
		" src/ ":         "src",
	}
	for in, want := range cases {
		if got := NormalizePatternPath(in); got != want {
			t.Errorf("NormalizePatternPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasPathPrefix(t *testing.T) {
	if !HasPathPrefix("src/ui/app.tsx", "src/ui") {
		t.Error("expected prefix match")
	}
	if HasPathPrefix("src/ui2/app.tsx", "src/ui") {
		t.Error("expected no match for sibling directory")
	}
	if !HasPathPrefix("src", "src") {
		t.Error("expected exact match")
	}
}

func TestSortedStringKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 3}
	keys := SortedStringKeys(m)
	want := []string{"a", "b", "c"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}
}

func TestIsSorted(t *testing.T) {
	if !IsSorted([]string{"a", "a.b", "c"}) {
		t.Error("expected sorted")
	}
	if IsSorted([]string{"b", "a"}) {
		t.Error("expected unsorted")
	}
	if !IsSorted(nil) {
		t.Error("empty slice is sorted")
	}
}
