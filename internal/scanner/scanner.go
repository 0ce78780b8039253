// Package scanner implements the per-root Directory Walker + Dispatcher
// and File Worker of sift's scan pipeline (spec.md §4.1–4.2): walk a root,
// filter entries against the incremental-scan watermark, and dispatch one
// worker per eligible file under an admission-gated bound.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/bvinton/sift/internal/extractor"
	"github.com/bvinton/sift/internal/logging"
	"github.com/bvinton/sift/internal/matcher"
	"github.com/bvinton/sift/internal/model"
	"github.com/bvinton/sift/internal/progress"
	"github.com/bvinton/sift/internal/types"
)

const heartbeatInterval = 30 * time.Second

// Walker traverses one root and dispatches file workers. It is single-use:
// construct with New, call Run once.
type Walker struct {
	root      string
	watermark time.Time
	patterns  []*regexp.Regexp
	sem       types.Semaphore
	out       chan<- model.ScanMessage
	logger    zerolog.Logger
	verbose   bool

	wg      sync.WaitGroup
	current atomic.Pointer[string]
	stats   *stats
	bar     *progress.Bar
}

// New constructs a Walker for one root. patterns is shared read-only
// across every root's walker and every file worker (spec.md §3
// Ownership); maxFileThreads bounds concurrently outstanding workers
// for this root alone. verbose enables the per-root progress spinner
// (spec.md §6, the -v flag).
func New(root string, watermark time.Time, patterns []*regexp.Regexp, maxFileThreads int, out chan<- model.ScanMessage, logger zerolog.Logger, verbose bool) *Walker {
	return &Walker{
		root:      root,
		watermark: watermark,
		patterns:  patterns,
		sem:       types.NewSemaphore(maxFileThreads),
		out:       out,
		logger:    logging.Module(logger, "scanner"),
		verbose:   verbose,
		stats:     newStats(),
		bar:       progress.New(verbose),
	}
}

// Run walks the root to completion: it dispatches a worker per eligible
// file, waits for every worker to join, then sends the end-sentinel.
func (w *Walker) Run() {
	stopHeartbeat := w.startHeartbeat()
	defer stopHeartbeat()

	err := filepath.WalkDir(w.root, w.visit)
	if err != nil {
		w.logger.Error().Err(err).Str("root", w.root).Msg("walk aborted")
	}

	w.wg.Wait()
	w.bar.Finish(w.stats)
	w.out <- model.EndMessage()
}

func (w *Walker) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("walk error, skipping subtree")
		if d != nil && d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}

	if d.IsDir() {
		w.setCurrent(path)
		return nil
	}

	if !d.Type().IsRegular() {
		return nil
	}
	if filepath.Ext(path) == "" {
		return nil
	}
	if !w.eligible(path) {
		return nil
	}

	w.dispatch(path)
	return nil
}

// eligible implements spec.md §4.1's fail-open mtime rule: a file with an
// unretrievable mtime is always scanned; one with mtime >= watermark is
// scanned; everything else is skipped.
func (w *Walker) eligible(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("mtime unretrievable, scanning anyway")
		return true
	}
	return !info.ModTime().Before(w.watermark)
}

func (w *Walker) dispatch(path string) {
	w.sem.Acquire()
	w.wg.Add(1)
	workerLogger := logging.Thread(w.logger, logging.NextThreadID())
	go func() {
		defer w.wg.Done()
		defer w.sem.Release()
		w.runWorker(path, workerLogger)
	}()
}

// runWorker implements the File Worker contract (spec.md §4.2): extract,
// match, emit at most one record. No error here is allowed to propagate;
// every failure degrades to "no findings." logger is tagged with this
// goroutine's thread id, so every line it emits is attributable to the
// worker goroutine that produced it.
func (w *Walker) runWorker(path string, logger zerolog.Logger) {
	w.stats.filesScanned.Add(1)
	if info, err := os.Stat(path); err == nil {
		w.stats.bytesScanned.Add(info.Size())
	}
	w.bar.Describe(w.stats)

	extract, ok := extractor.Lookup(path)
	if !ok {
		return
	}

	text, err := extract(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("extraction failed, dropping file")
		return
	}

	findings := matcher.Match(w.patterns, text)
	if len(findings) == 0 {
		return
	}

	w.stats.filesMatched.Add(1)
	record := &model.Record{
		Findings: joinFindings(findings),
		Filename: filepath.Base(path),
		Path:     path,
	}
	w.send(record, logger)
}

func (w *Walker) send(record *model.Record, logger zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Str("path", record.Path).Msg("dropped record: writer channel closed")
		}
	}()
	w.out <- model.RecordMessage(record)
}

func joinFindings(findings []string) string {
	out := findings[0]
	for _, f := range findings[1:] {
		out += "," + f
	}
	return out
}

func (w *Walker) setCurrent(path string) {
	w.current.Store(&path)
}

// startHeartbeat logs the currently-traversed parent path every 30s of
// wall time (spec.md §4.1), so a long stall on a slow filesystem is
// visible before the walk finishes. Returns a stop function.
func (w *Walker) startHeartbeat() func() {
	ticker := time.NewTicker(heartbeatInterval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if p := w.current.Load(); p != nil {
					w.logger.Warn().Str("path", *p).Msg("still walking")
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
