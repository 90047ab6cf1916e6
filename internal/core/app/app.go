// Package app wires the configuration, the dependency analyzer, the
// history store and the file watcher into one runnable unit.
package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"hookdeps/internal/core/config"
	"hookdeps/internal/core/watcher"
	"hookdeps/internal/data/history"
	"hookdeps/internal/engine/analyzer"
	"hookdeps/internal/engine/jsast"
	"hookdeps/internal/shared/observability"
	"hookdeps/internal/shared/util"
)

// FileResult is the analysis outcome for one source file.
type FileResult struct {
	Path        string
	CallSites   int
	Diagnostics []*analyzer.Diagnostic
}

// Summary aggregates one full run.
type Summary struct {
	Files       int
	CallSites   int
	Diagnostics int
	ByCode      map[string]int
	Duration    time.Duration
}

type App struct {
	Config   *config.Config
	Analyzer *analyzer.Analyzer
	Store    *history.Store

	opts    *analyzer.Options
	log     *slog.Logger
	printer *Printer
	limiter *util.Limiter

	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob

	watcherMu     sync.Mutex
	activeWatcher *watcher.Watcher
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	opts, err := cfg.AnalyzerOptions()
	if err != nil {
		return nil, err
	}

	excludeDirs, err := compileGlobs(cfg.Exclude.Dirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return nil, err
	}

	var store *history.Store
	if cfg.DB.Enabled {
		store, err = history.Open(cfg.DB.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
	}

	return &App{
		Config:       cfg,
		Analyzer:     analyzer.New(opts, log),
		Store:        store,
		opts:         opts,
		log:          log,
		printer:      NewPrinter(os.Stdout),
		limiter:      util.NewLimiter(2, 4),
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
	}, nil
}

// SetOutput redirects diagnostic and summary printing.
func (a *App) SetOutput(w io.Writer) {
	a.printer = NewPrinter(w)
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func (a *App) Close() error {
	a.watcherMu.Lock()
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			a.log.Warn("failed to close watcher", "error", err)
		}
		a.activeWatcher = nil
	}
	a.watcherMu.Unlock()

	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// uniqueScanRoots drops roots already contained in another root so
// overlapping config entries never walk the same file twice.
func uniqueScanRoots(paths []string) []string {
	roots := make([]string, 0, len(paths))
	for i, p := range paths {
		contained := false
		for j, other := range paths {
			if i == j {
				continue
			}
			if util.HasPathPrefix(p, other) && (p != other || j < i) {
				contained = true
				break
			}
		}
		if !contained {
			roots = append(roots, p)
		}
	}
	sort.Strings(roots)
	return roots
}

// ScanDirectories collects every analyzable source path under the
// given roots, honoring the exclude globs.
func (a *App) ScanDirectories(paths []string) ([]string, error) {
	var files []string
	for _, root := range uniqueScanRoots(paths) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				for _, g := range a.excludeDirs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if jsast.DetectLanguage(path) == "" {
				return nil
			}
			for _, g := range a.excludeFiles {
				if g.Match(base) {
					return nil
				}
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// AnalyzeFiles parses and analyzes each path. Files that fail to read
// or parse are skipped with a warning so one bad file never aborts the
// run.
func (a *App) AnalyzeFiles(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			a.log.Warn("failed to read file", "path", path, "error", err)
			continue
		}

		file, err := jsast.ParseFile(path, content)
		if err != nil {
			a.log.Warn("failed to parse file", "path", path, "error", err)
			continue
		}
		observability.FilesScannedTotal.Inc()

		results = append(results, FileResult{
			Path:        path,
			CallSites:   len(analyzer.FindCallSites(file, a.opts)),
			Diagnostics: a.Analyzer.AnalyzeFile(ctx, file),
		})
	}
	return results
}

// RunOnce scans the configured paths, analyzes everything found and
// prints the diagnostics. The run is recorded in the history store
// when one is open.
func (a *App) RunOnce(ctx context.Context) (*Summary, error) {
	start := time.Now()

	files, err := a.ScanDirectories(a.Config.ScanPaths)
	if err != nil {
		return nil, err
	}

	results := a.AnalyzeFiles(ctx, files)
	summary := summarize(results, time.Since(start))

	a.printer.PrintResults(results)
	a.printer.PrintSummary(summary)

	a.recordRun(summary)
	return summary, nil
}

func summarize(results []FileResult, elapsed time.Duration) *Summary {
	summary := &Summary{
		Files:    len(results),
		ByCode:   make(map[string]int),
		Duration: elapsed,
	}
	for _, res := range results {
		summary.CallSites += res.CallSites
		summary.Diagnostics += len(res.Diagnostics)
		for _, d := range res.Diagnostics {
			summary.ByCode[string(d.Code)]++
		}
	}
	return summary
}

func (a *App) recordRun(summary *Summary) {
	if a.Store == nil {
		return
	}
	runID, err := a.Store.SaveRun(history.Run{
		Timestamp:       time.Now().UTC(),
		FileCount:       summary.Files,
		CallSiteCount:   summary.CallSites,
		DiagnosticCount: summary.Diagnostics,
		ByCode:          summary.ByCode,
	})
	if err != nil {
		a.log.Warn("failed to record run", "error", err)
		return
	}
	a.log.Debug("recorded run", "run_id", runID, "diagnostics", summary.Diagnostics)
}
