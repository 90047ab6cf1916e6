package analyzer

import (
	"reflect"
	"testing"
)

func collected(deps []string, stable []string, containerBases []string) *CollectResult {
	res := &CollectResult{
		Deps:           make(map[string]*Dependency),
		StableKeys:     make(map[string]bool),
		ContainerBases: make(map[string]bool),
	}
	for _, key := range deps {
		res.Deps[key] = &Dependency{Key: key, HasReads: true}
	}
	for _, key := range stable {
		res.StableKeys[key] = true
	}
	for _, name := range containerBases {
		res.ContainerBases[name] = true
	}
	return res
}

func declaredList(keys ...string) []*DeclaredEntry {
	out := make([]*DeclaredEntry, len(keys))
	for i, k := range keys {
		out[i] = &DeclaredEntry{Key: k}
	}
	return out
}

func entryKeys(entries []*DeclaredEntry) []string {
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}

func TestReconcile(t *testing.T) {
	cases := []struct {
		name           string
		collected      *CollectResult
		declared       []*DeclaredEntry
		wantMissing    []string
		wantUnneeded   []string
		wantDuplicates []string
		wantSuggested  []string
	}{
		{
			name:          "empty list missing container value",
			collected:     collected([]string{"userSignal.value"}, nil, []string{"userSignal"}),
			declared:      nil,
			wantMissing:   []string{"userSignal.value"},
			wantSuggested: []string{"userSignal.value"},
		},
		{
			name:          "satisfied exactly",
			collected:     collected([]string{"count.value"}, nil, []string{"count"}),
			declared:      declaredList("count.value"),
			wantSuggested: []string{"count.value"},
		},
		{
			name:          "declared deep path covers its own read",
			collected:     collected([]string{"info.name"}, nil, nil),
			declared:      declaredList("info.name"),
			wantSuggested: []string{"info.name"},
		},
		{
			name:          "declared deep path with missing sibling",
			collected:     collected([]string{"info.name", "info.id"}, nil, nil),
			declared:      declaredList("info.name"),
			wantMissing:   []string{"info.id"},
			wantSuggested: []string{"info.name", "info.id"},
		},
		{
			name:         "declared container base never used",
			collected:    collected(nil, nil, []string{"count"}),
			declared:     declaredList("count"),
			wantUnneeded: []string{"count"},
		},
		{
			name:          "container base does not cover its value cell",
			collected:     collected([]string{"count.value"}, nil, []string{"count"}),
			declared:      declaredList("count"),
			wantMissing:   []string{"count.value"},
			wantUnneeded:  []string{"count"},
			wantSuggested: []string{"count.value"},
		},
		{
			name:          "redundant ancestor never read directly",
			collected:     collected([]string{"a.b"}, nil, nil),
			declared:      declaredList("a", "a.b"),
			wantUnneeded:  []string{"a"},
			wantSuggested: []string{"a.b"},
		},
		{
			name:          "live ancestor is kept",
			collected:     collected([]string{"a", "a.b"}, nil, nil),
			declared:      declaredList("a"),
			wantSuggested: []string{"a"},
		},
		{
			name:          "prefix satisfaction",
			collected:     collected([]string{"user.profile.name"}, nil, nil),
			declared:      declaredList("user"),
			wantSuggested: []string{"user"},
		},
		{
			name:      "stable used and undeclared stays silent",
			collected: collected(nil, []string{"setCount"}, nil),
			declared:  nil,
		},
		{
			name:          "stable declared is satisfying",
			collected:     collected(nil, []string{"setCount"}, nil),
			declared:      declaredList("setCount"),
			wantSuggested: []string{"setCount"},
		},
		{
			name:           "duplicate entry",
			collected:      collected([]string{"a"}, nil, nil),
			declared:       declaredList("a", "a"),
			wantDuplicates: []string{"a"},
			wantSuggested:  []string{"a"},
		},
		{
			name:          "missing appended after declared order",
			collected:     collected([]string{"b", "a", "c"}, nil, nil),
			declared:      declaredList("b", "a"),
			wantMissing:   []string{"c"},
			wantSuggested: []string{"b", "a", "c"},
		},
		{
			name:          "alphabetized list stays alphabetized",
			collected:     collected([]string{"a", "b", "c"}, nil, nil),
			declared:      declaredList("a", "b"),
			wantMissing:   []string{"c"},
			wantSuggested: []string{"a", "b", "c"},
		},
		{
			name:          "shallowest missing path reported once",
			collected:     collected([]string{"user.name", "user.email"}, nil, nil),
			declared:      nil,
			wantMissing:   []string{"user"},
			wantSuggested: []string{"user"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := reconcile(tc.collected, tc.declared)
			if !reflect.DeepEqual(stringsOrNil(rec.Missing), tc.wantMissing) {
				t.Errorf("Missing = %v, want %v", rec.Missing, tc.wantMissing)
			}
			if got := entryKeys(rec.Unnecessary); !reflect.DeepEqual(got, tc.wantUnneeded) {
				t.Errorf("Unnecessary = %v, want %v", got, tc.wantUnneeded)
			}
			if got := entryKeys(rec.Duplicates); !reflect.DeepEqual(got, tc.wantDuplicates) {
				t.Errorf("Duplicates = %v, want %v", got, tc.wantDuplicates)
			}
			if !reflect.DeepEqual(stringsOrNil(rec.Suggested), tc.wantSuggested) {
				t.Errorf("Suggested = %v, want %v", rec.Suggested, tc.wantSuggested)
			}
		})
	}
}

func stringsOrNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestReconcileCleanWhenExactMatch(t *testing.T) {
	rec := reconcile(collected([]string{"x", "y.z"}, nil, nil), declaredList("x", "y.z"))
	if !rec.Clean() {
		t.Fatalf("expected clean reconciliation, got missing=%v unnecessary=%v duplicates=%v",
			rec.Missing, entryKeys(rec.Unnecessary), entryKeys(rec.Duplicates))
	}
}
