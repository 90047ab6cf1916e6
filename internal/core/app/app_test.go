package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hookdeps/internal/core/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(config.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.SetOutput(io.Discard)
	t.Cleanup(func() { a.Close() })
	return a
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirectoriesFiltersAndExcludes(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "src", "App.tsx"), "export {}\n")
	writeFile(t, filepath.Join(tmp, "src", "util.js"), "export {}\n")
	writeFile(t, filepath.Join(tmp, "src", "notes.txt"), "ignored\n")
	writeFile(t, filepath.Join(tmp, "node_modules", "react", "index.js"), "module.exports = {}\n")

	a := newTestApp(t)
	files, err := a.ScanDirectories([]string{tmp})
	if err != nil {
		t.Fatalf("ScanDirectories: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		if filepath.Base(f) == "index.js" {
			t.Errorf("node_modules file was not excluded: %s", f)
		}
	}
}

func TestAnalyzeFilesReportsMissingDependency(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "Component.jsx")
	writeFile(t, path, `
import { useEffect, useState } from 'react';

function Component() {
  const [count, setCount] = useState(0);
  useEffect(() => {
    console.log(count);
  }, []);
  return null;
}
`)

	a := newTestApp(t)
	results := a.AnalyzeFiles(context.Background(), []string{path})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	if res.CallSites != 1 {
		t.Errorf("expected 1 call site, got %d", res.CallSites)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(res.Diagnostics))
	}
	if got := string(res.Diagnostics[0].Code); got != "missing-dependency" {
		t.Errorf("expected missing-dependency, got %s", got)
	}
}

func TestAnalyzeFilesSkipsUnreadable(t *testing.T) {
	a := newTestApp(t)
	results := a.AnalyzeFiles(context.Background(), []string{filepath.Join(t.TempDir(), "missing.js")})
	if len(results) != 0 {
		t.Fatalf("expected no results for missing file, got %d", len(results))
	}
}

func TestUniqueScanRoots(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"nested root dropped", []string{"src", "src/components"}, []string{"src"}},
		{"duplicates collapse", []string{".", "."}, []string{"."}},
		{"disjoint kept", []string{"app", "lib"}, []string{"app", "lib"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := uniqueScanRoots(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	tmp := t.TempDir()
	clean := filepath.Join(tmp, "clean.js")
	writeFile(t, clean, `
import { useEffect } from 'react';
function C({ value }) {
  useEffect(() => { console.log(value); }, [value]);
  return null;
}
`)
	dirty := filepath.Join(tmp, "dirty.js")
	writeFile(t, dirty, `
import { useEffect } from 'react';
function D({ value }) {
  useEffect(() => { console.log(value); }, []);
  return null;
}
`)

	a := newTestApp(t)
	results := a.AnalyzeFiles(context.Background(), []string{clean, dirty})
	summary := summarize(results, time.Second)

	if summary.Files != 2 {
		t.Errorf("expected 2 files, got %d", summary.Files)
	}
	if summary.CallSites != 2 {
		t.Errorf("expected 2 call sites, got %d", summary.CallSites)
	}
	if summary.Diagnostics != 1 {
		t.Errorf("expected 1 diagnostic, got %d", summary.Diagnostics)
	}
	if summary.ByCode["missing-dependency"] != 1 {
		t.Errorf("expected 1 missing-dependency, got %v", summary.ByCode)
	}
}
