package app

import (
	"context"
	"os"
	"time"

	"hookdeps/internal/core/watcher"
)

// StartWatcher begins watching the configured scan paths and
// re-analyzes changed files as debounced batches.
func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.New(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		func(paths []string) { a.HandleChanges(ctx, paths) },
	)
	if err != nil {
		return err
	}

	a.watcherMu.Lock()
	a.activeWatcher = w
	a.watcherMu.Unlock()

	return w.Watch(a.Config.ScanPaths)
}

// HandleChanges re-analyzes a batch of changed paths. Deleted files
// drop out of the batch; a remove followed by a re-create within one
// debounce window analyzes the new content.
func (a *App) HandleChanges(ctx context.Context, paths []string) {
	if err := a.limiter.Wait(ctx, 1); err != nil {
		return
	}

	start := time.Now()
	existing := paths[:0]
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			a.log.Debug("skipping removed file", "path", path)
			continue
		}
		existing = append(existing, path)
	}
	if len(existing) == 0 {
		return
	}

	results := a.AnalyzeFiles(ctx, existing)
	summary := summarize(results, time.Since(start))

	a.printer.PrintResults(results)
	a.printer.PrintSummary(summary)
	a.recordRun(summary)
}
