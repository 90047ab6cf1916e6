package analyzer

import (
	"hookdeps/internal/engine/jsast"
)

type Code string

const (
	CodeInvalidDependencyList  Code = "invalid-dependency-list"
	CodeMissingDependencyList  Code = "missing-dependency-list"
	CodeUnresolvableDependency Code = "unresolvable-dependency"
	CodeSpreadInDependencyList Code = "spread-in-dependency-list"
	CodeDuplicateDependency    Code = "duplicate-dependency"
	CodeMissingDependency      Code = "missing-dependency"
	CodeUnnecessaryDependency  Code = "unnecessary-dependency"
	CodeStaleAssignment        Code = "stale-assignment"
	CodeUnstableConstruction   Code = "unstable-construction"
	CodeRefInvalidated         Code = "ref-invalidated-in-cleanup"
	CodeAsyncCallback          Code = "async-callback"
	CodeBudgetExceeded         Code = "budget-exceeded"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarn:
		return "warn"
	default:
		return "info"
	}
}

// ParseSeverity maps a config string to a severity; unknown values keep
// the fallback.
func ParseSeverity(value string, fallback Severity) Severity {
	switch value {
	case "error":
		return SeverityError
	case "warn", "warning":
		return SeverityWarn
	case "info":
		return SeverityInfo
	default:
		return fallback
	}
}

// Fix is a textual replacement over the file's byte range.
type Fix struct {
	Start   uint
	End     uint
	NewText string
}

// Suggestion is an alternative fix the host may offer without applying.
type Suggestion struct {
	Description string
	Fix         Fix
}

type Diagnostic struct {
	Code        Code
	Severity    Severity
	Message     string
	Node        *jsast.Node
	Location    jsast.Location
	Fix         *Fix
	Suggestions []Suggestion
}
