package analyzer

import (
	"context"
	"strings"
	"testing"

	"hookdeps/internal/engine/jsast"
)

func analyzeSource(t *testing.T, name, src string) []*Diagnostic {
	t.Helper()
	return analyzeWithOptions(t, name, src, DefaultOptions())
}

func analyzeWithOptions(t *testing.T, name, src string, opts *Options) []*Diagnostic {
	t.Helper()
	file, err := jsast.ParseFile(name, []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	return New(opts, nil).AnalyzeFile(context.Background(), file)
}

func codes(diags []*Diagnostic) []Code {
	out := make([]Code, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func single(t *testing.T, diags []*Diagnostic, code Code) *Diagnostic {
	t.Helper()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics %v, want exactly one %s", len(diags), codes(diags), code)
	}
	if diags[0].Code != code {
		t.Fatalf("diagnostic code = %s, want %s", diags[0].Code, code)
	}
	return diags[0]
}

func TestMissingContainerValue(t *testing.T) {
	src := `
import { useEffect } from "react";
import { useSignal } from "@preact/signals";

function Profile() {
  const userSignal = useSignal({ name: "" });
  useEffect(() => {
    console.log(userSignal.value.name);
  }, []);
  return null;
}
`
	d := single(t, analyzeSource(t, "profile.jsx", src), CodeMissingDependency)
	if len(d.Suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(d.Suggestions))
	}
	if got := d.Suggestions[0].Fix.NewText; got != "[userSignal.value]" {
		t.Errorf("fix text = %q, want %q", got, "[userSignal.value]")
	}
}

func TestDeclaredPropertyPathIsClean(t *testing.T) {
	src := `
import { useEffect } from "react";

function Badge({ info }) {
  useEffect(() => {
    console.log(info.name);
  }, [info.name]);
  return null;
}
`
	if diags := analyzeSource(t, "badge.jsx", src); len(diags) != 0 {
		t.Fatalf("expected no diagnostics for a declared property path, got %v", codes(diags))
	}
}

func TestStaleAssignmentAndUnnecessaryBase(t *testing.T) {
	src := `
import { useEffect } from "react";
import { useSignal } from "@preact/signals";

function Counter() {
  const count = useSignal(0);
  useEffect(() => {
    count.value = count.value + 1;
  }, [count]);
  return null;
}
`
	diags := analyzeSource(t, "counter.jsx", src)
	if len(diags) != 2 {
		t.Fatalf("got diagnostics %v, want unnecessary-dependency and stale-assignment", codes(diags))
	}
	seen := map[Code]bool{}
	for _, d := range diags {
		seen[d.Code] = true
	}
	if !seen[CodeUnnecessaryDependency] || !seen[CodeStaleAssignment] {
		t.Errorf("got codes %v, want unnecessary-dependency and stale-assignment", codes(diags))
	}
}

func TestRedundantAncestor(t *testing.T) {
	src := `
import { useMemo } from "react";

function View({ data }) {
  const a = data.item;
  return useMemo(() => a.b, [a, a.b]);
}
`
	d := single(t, analyzeSource(t, "view.jsx", src), CodeUnnecessaryDependency)
	if got := d.Suggestions[0].Fix.NewText; got != "[a.b]" {
		t.Errorf("fix text = %q, want %q", got, "[a.b]")
	}
}

func TestInvalidDependencyList(t *testing.T) {
	src := `
import { useEffect } from "react";

function App() {
  useEffect(() => {}, 42);
  return null;
}
`
	single(t, analyzeSource(t, "app.jsx", src), CodeInvalidDependencyList)
}

func TestAsyncEffectCallback(t *testing.T) {
	src := `
import { useEffect } from "react";

function Loader({ load }) {
  useEffect(async () => {
    await load();
  }, [load]);
  return null;
}
`
	single(t, analyzeSource(t, "loader.jsx", src), CodeAsyncCallback)
}

func TestAsyncMemoCallbackAllowed(t *testing.T) {
	src := `
import { useCallback } from "react";

function Loader({ load }) {
  return useCallback(async () => {
    await load();
  }, [load]);
}
`
	if diags := analyzeSource(t, "loader.jsx", src); len(diags) != 0 {
		t.Errorf("got diagnostics %v, want none", codes(diags))
	}
}

func TestUnstableConstruction(t *testing.T) {
	src := `
import { useEffect } from "react";

function List({ render }) {
  const options = { deep: true };
  useEffect(() => {
    render(options);
  }, [options, render]);
  return null;
}
`
	d := single(t, analyzeSource(t, "list.jsx", src), CodeUnstableConstruction)
	want := "useMemo(() => ({ deep: true }), [])"
	if got := d.Suggestions[0].Fix.NewText; got != want {
		t.Errorf("fix text = %q, want %q", got, want)
	}
}

func TestStableSetterOmitted(t *testing.T) {
	src := `
import { useEffect, useState } from "react";

function Counter() {
  const [count, setCount] = useState(0);
  useEffect(() => {
    setCount(count + 1);
  }, [count]);
  return null;
}
`
	if diags := analyzeSource(t, "counter.jsx", src); len(diags) != 0 {
		t.Errorf("got diagnostics %v, want none", codes(diags))
	}
}

func TestRefReadInCleanup(t *testing.T) {
	src := `
import { useEffect, useRef } from "react";

function Watch({ observe, unobserve }) {
  const node = useRef(null);
  useEffect(() => {
    observe(node.current);
    return () => {
      unobserve(node.current);
    };
  }, [observe, unobserve]);
  return null;
}
`
	single(t, analyzeSource(t, "watch.jsx", src), CodeRefInvalidated)
}

func TestRefRecapturedInCleanup(t *testing.T) {
	src := `
import { useEffect, useRef } from "react";

function Watch({ observe, unobserve }) {
  const node = useRef(null);
  useEffect(() => {
    const el = node.current;
    observe(el);
    return () => {
      unobserve(el);
    };
  }, [observe, unobserve]);
  return null;
}
`
	if diags := analyzeSource(t, "watch.jsx", src); len(diags) != 0 {
		t.Errorf("got diagnostics %v, want none", codes(diags))
	}
}

func TestSpreadInDependencyList(t *testing.T) {
	src := `
import { useEffect } from "react";

function App({ deps, run }) {
  useEffect(() => {
    run();
  }, [run, ...deps]);
  return null;
}
`
	diags := analyzeSource(t, "app.jsx", src)
	found := false
	for _, d := range diags {
		if d.Code == CodeSpreadInDependencyList {
			found = true
		}
	}
	if !found {
		t.Errorf("got codes %v, want spread-in-dependency-list among them", codes(diags))
	}
}

func TestSuggestedFixIsIdempotent(t *testing.T) {
	src := `
import { useEffect } from "react";
import { useSignal } from "@preact/signals";

function Profile() {
  const userSignal = useSignal({ name: "" });
  useEffect(() => {
    console.log(userSignal.value.name);
  }, []);
  return null;
}
`
	d := single(t, analyzeSource(t, "profile.jsx", src), CodeMissingDependency)
	fix := d.Suggestions[0].Fix

	fixed := src[:fix.Start] + fix.NewText + src[fix.End:]
	if diags := analyzeSource(t, "profile.jsx", fixed); len(diags) != 0 {
		t.Errorf("after applying fix, got diagnostics %v, want none", codes(diags))
	}
}

func TestBudgetExceededAbortsCallSite(t *testing.T) {
	src := `
import { useEffect } from "react";

function Feed({ items, filter }) {
  useEffect(() => {
    console.log(items.filter(filter));
  }, []);
  return null;
}
`
	opts := DefaultOptions()
	opts.MaxNodes = 1
	// The exhausted budget must yield exactly one diagnostic: no partial
	// missing-dependency results may leak out.
	single(t, analyzeWithOptions(t, "feed.jsx", src, opts), CodeBudgetExceeded)
}

func TestMissingDependencyList(t *testing.T) {
	src := `
import { useEffect } from "react";

function Ticker({ onTick }) {
  useEffect(() => {
    onTick();
  });
  return null;
}
`
	if diags := analyzeSource(t, "ticker.jsx", src); len(diags) != 0 {
		t.Fatalf("omitted list is tolerated by default, got %v", codes(diags))
	}

	opts := DefaultOptions()
	opts.RequireExplicitList = true
	single(t, analyzeWithOptions(t, "ticker.jsx", src, opts), CodeMissingDependencyList)

	opts.AutoInfer["useEffect"] = true
	if diags := analyzeWithOptions(t, "ticker.jsx", src, opts); len(diags) != 0 {
		t.Fatalf("auto-inferred call site should be exempt, got %v", codes(diags))
	}
}

func TestExternalHoistedValueDeclared(t *testing.T) {
	src := `
import { useEffect } from "react";

function Title({ text }) {
  useEffect(() => {
    document.title = text;
  }, [text, document]);
  return null;
}
`
	d := single(t, analyzeSource(t, "title.jsx", src), CodeUnnecessaryDependency)
	if !strings.Contains(d.Message, "hoisted value") {
		t.Errorf("message %q does not explain the hoisted value", d.Message)
	}
	if got := d.Suggestions[0].Fix.NewText; got != "[text]" {
		t.Errorf("fix text = %q, want %q", got, "[text]")
	}
}

func TestModuleScopeBindingsSkipped(t *testing.T) {
	src := `
import { useEffect } from "react";

const LIMIT = { max: 10 };

function Gauge({ report }) {
  useEffect(() => {
    report(LIMIT.max);
  }, [report]);
  return null;
}
`
	if diags := analyzeSource(t, "gauge.jsx", src); len(diags) != 0 {
		t.Errorf("got diagnostics %v, want none", codes(diags))
	}
}

func TestTypeScriptSource(t *testing.T) {
	src := `
import { useEffect } from "react";
import { useSignal } from "@preact/signals";

function Badge(): null {
  const label = useSignal<string>("");
  useEffect(() => {
    document.title = label.value;
  }, []);
  return null;
}
`
	single(t, analyzeSource(t, "badge.ts", src), CodeMissingDependency)
}
