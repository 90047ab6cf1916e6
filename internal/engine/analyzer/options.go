package analyzer

import (
	"regexp"
	"time"
)

type CallSiteKind int

const (
	// SiteEffect registers a side-effect callback; async callbacks are
	// rejected and a missing list means "run every invocation".
	SiteEffect CallSiteKind = iota
	// SiteMemo registers a cached computation; the list is expected.
	SiteMemo
)

// CallSiteSpec locates the callback and dependency-list arguments of a
// recognized registration call.
type CallSiteSpec struct {
	CallbackPos int
	DepsPos     int
	Kind        CallSiteKind
}

var builtinCallSites = map[string]CallSiteSpec{
	"useEffect":           {CallbackPos: 0, DepsPos: 1, Kind: SiteEffect},
	"useLayoutEffect":     {CallbackPos: 0, DepsPos: 1, Kind: SiteEffect},
	"useInsertionEffect":  {CallbackPos: 0, DepsPos: 1, Kind: SiteEffect},
	"useCallback":         {CallbackPos: 0, DepsPos: 1, Kind: SiteMemo},
	"useMemo":             {CallbackPos: 0, DepsPos: 1, Kind: SiteMemo},
	"useImperativeHandle": {CallbackPos: 1, DepsPos: 2, Kind: SiteMemo},
}

type Options struct {
	// AdditionalCallSites extends the recognized registration names; a
	// match is treated as an effect-kind call with callback first.
	AdditionalCallSites *regexp.Regexp

	// AutoInfer lists call-site names whose dependencies are inferred
	// entirely; declared-list checks are skipped when the list is absent.
	AutoInfer map[string]bool

	RequireExplicitList bool
	EnableUnsafeAutofix bool

	// Creators with stable identity and a mutable .current cell.
	StableCreators map[string]bool
	// Two-element destructuring creators whose second element is stable.
	StateCreators map[string]bool
	// Creators of reactive containers (stable identity, mutable .value).
	ContainerCreators map[string]bool
	// Identifier suffixes that mark containers by convention, only
	// honored when a recognized creator is imported in the file.
	ContainerSuffixes []string
	// Module specifiers whose import alone enables the suffix convention.
	CreatorModules map[string]bool

	MaxNodes int
	MaxTime  time.Duration

	Severity map[Code]Severity
}

func DefaultOptions() *Options {
	return &Options{
		AutoInfer: map[string]bool{},
		StableCreators: map[string]bool{
			"useRef": true,
		},
		StateCreators: map[string]bool{
			"useState":      true,
			"useReducer":    true,
			"useTransition": true,
		},
		ContainerCreators: map[string]bool{
			"signal":      true,
			"useSignal":   true,
			"computed":    true,
			"useComputed": true,
			"ref":         true,
			"shallowRef":  true,
		},
		ContainerSuffixes: []string{"Signal"},
		CreatorModules: map[string]bool{
			"@preact/signals":       true,
			"@preact/signals-react": true,
			"@preact/signals-core":  true,
			"@vue/reactivity":       true,
			"vue":                   true,
		},
		MaxNodes: 50000,
		MaxTime:  2 * time.Second,
		Severity: map[Code]Severity{},
	}
}

// MatchCallSite reports how a callee name maps onto the registration
// shape, or ok=false when the call is not recognized.
func MatchCallSite(calleeName string, opts *Options) (CallSiteSpec, bool) {
	if spec, ok := builtinCallSites[calleeName]; ok {
		return spec, true
	}
	if opts != nil && opts.AdditionalCallSites != nil && opts.AdditionalCallSites.MatchString(calleeName) {
		return CallSiteSpec{CallbackPos: 0, DepsPos: 1, Kind: SiteEffect}, true
	}
	return CallSiteSpec{}, false
}

func (o *Options) severityFor(code Code, fallback Severity) Severity {
	if o == nil || o.Severity == nil {
		return fallback
	}
	if s, ok := o.Severity[code]; ok {
		return s
	}
	return fallback
}
