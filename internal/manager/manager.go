// Package manager implements the Scan Manager (spec.md §4.6): one
// walker+writer pipeline per root, concurrent-roots bounded by
// max_scan_threads.
package manager

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bvinton/sift/internal/model"
	"github.com/bvinton/sift/internal/scanner"
	"github.com/bvinton/sift/internal/types"
	"github.com/bvinton/sift/internal/writer"
)

const scanChannelBuffer = 1000

// RunResult reports what happened on one root's pipeline, used by the
// caller (cmd/sift) to report per-root errors and for the verbose summary.
type RunResult struct {
	Root string
	Err  error
}

// Run orchestrates one pipeline per root: construct the walker, create its
// channel, start the writer, run the dispatcher, and join. At most
// settings.MaxScanThreads roots run concurrently (spec.md §4.6's
// retain-until-finished admission gate, the same primitive file workers
// use).
func Run(settings *model.ScanSettings, logger zerolog.Logger) []RunResult {
	sem := types.NewSemaphore(settings.MaxScanThreads)
	results := make([]RunResult, len(settings.Roots))

	var wg sync.WaitGroup
	startedAt := time.Now()

	for i, root := range settings.Roots {
		sem.Acquire()
		wg.Add(1)
		go func(i int, root string) {
			defer wg.Done()
			defer sem.Release()
			results[i] = runRoot(root, settings, logger, startedAt)
		}(i, root)
	}

	wg.Wait()
	return results
}

func runRoot(root string, settings *model.ScanSettings, logger zerolog.Logger, startedAt time.Time) RunResult {
	ch := make(chan model.ScanMessage, scanChannelBuffer)
	w := writer.New(root, settings.OutputDir, settings.MaxWriteLines, logger, startedAt)

	var writeErr error
	var writerWg sync.WaitGroup
	writerWg.Add(1)
	go func() {
		defer writerWg.Done()
		writeErr = w.Run(ch)
	}()

	walker := scanner.New(root, effectiveWatermark(settings), settings.CompiledPatterns, settings.MaxFileThreads, ch, logger, settings.Verbose)
	walker.Run()

	writerWg.Wait()
	if writeErr != nil {
		return RunResult{Root: root, Err: fmt.Errorf("manager: root %s: %w", root, writeErr)}
	}
	return RunResult{Root: root}
}

func effectiveWatermark(settings *model.ScanSettings) time.Time {
	if settings.FullScan {
		return time.Unix(0, 0).UTC()
	}
	return settings.LastScanWatermark
}
