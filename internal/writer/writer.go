// Package writer implements sift's per-root CSV writer: it drains a Scan
// Message channel and rotates output files by row count (spec.md §4.5).
package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bvinton/sift/internal/logging"
	"github.com/bvinton/sift/internal/model"
)

var csvHeader = []string{"findings", "filename", "path"}

// Writer owns exactly one open CSV handle at a time, rotating to a new
// file once maxLines data rows have been written to the current one.
type Writer struct {
	root        string
	outputDir   string
	maxLines    int
	logger      zerolog.Logger
	startedAt   time.Time
	suffix      int
	lines       int
	file        *os.File
	csv         *csv.Writer
	recordCount int
}

// New constructs a Writer for one root. startedAt fixes the timestamp
// segment of every filename this writer opens, so rotated files from the
// same run share a prefix.
func New(root, outputDir string, maxLines int, logger zerolog.Logger, startedAt time.Time) *Writer {
	if maxLines <= 0 {
		maxLines = model.DefaultMaxWriteLines
	}
	return &Writer{
		root:      root,
		outputDir: outputDir,
		maxLines:  maxLines,
		logger:    logging.Thread(logging.Module(logger, "writer"), logging.NextThreadID()),
		startedAt: startedAt,
	}
}

// Run consumes messages until the end-sentinel, then flushes and closes.
// It always produces at least one CSV file, even for a root with zero
// records (spec.md §8: "an empty header-only file is produced").
func (w *Writer) Run(messages <-chan model.ScanMessage) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("writer: create output dir: %w", err)
	}
	if err := w.rotate(); err != nil {
		return fmt.Errorf("writer: open initial file: %w", err)
	}

	for msg := range messages {
		if msg.End {
			break
		}
		if msg.Record == nil {
			continue
		}
		if err := w.writeRecord(msg.Record); err != nil {
			w.logger.Warn().Err(err).Str("path", msg.Record.Path).Msg("dropped record: write failed")
			continue
		}
	}

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.logger.Warn().Err(err).Msg("csv flush error")
	}
	return w.file.Close()
}

func (w *Writer) writeRecord(r *model.Record) error {
	if w.lines >= w.maxLines {
		if err := w.rotate(); err != nil {
			return err
		}
	}
	if err := w.csv.Write([]string{r.Findings, r.Filename, r.Path}); err != nil {
		return err
	}
	w.csv.Flush()
	w.lines++
	w.recordCount++
	return nil
}

// rotate closes the current file (if any), opens the next with an
// incremented suffix, and writes the header row.
func (w *Writer) rotate() error {
	if w.file != nil {
		w.csv.Flush()
		if err := w.file.Close(); err != nil {
			return err
		}
	}
	w.suffix++
	w.lines = 0

	name := filename(w.root, w.startedAt, w.suffix)
	path := filepath.Join(w.outputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w.file = f
	w.csv = csv.NewWriter(f)
	if err := w.csv.Write(csvHeader); err != nil {
		return err
	}
	w.csv.Flush()
	return w.csv.Error()
}

// filename builds "{sanitised_root}_{HH-MM-SSutc_MDDYYYY}_{suffix}.csv"
// per spec.md §4.5. The timestamp segment zero-pads hour/minute/second
// but leaves month/day/year unpadded and concatenated directly, matching
// original_source/src/csv_writer.rs's format string.
func filename(root string, t time.Time, suffix int) string {
	ts := t.UTC()
	timestamp := fmt.Sprintf("%02d-%02d-%02dutc_%d%d%d",
		ts.Hour(), ts.Minute(), ts.Second(), int(ts.Month()), ts.Day(), ts.Year())
	return fmt.Sprintf("%s_%s_%d.csv", sanitiseRoot(root), timestamp, suffix)
}

var rootSanitiseReplacer = strings.NewReplacer(`\`, "", "/", "", ":", "")

func sanitiseRoot(root string) string {
	return rootSanitiseReplacer.Replace(root)
}
