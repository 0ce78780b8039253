// Package logging configures sift's append-only scan log: warn-level and
// above, written to {output_dir}/scan.log with the fixed line format
// "{iso-utc} : {level} : {module} : {thread} : {message}" (spec.md §6).
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
}

// threadSeq numbers the thread ids handed out by NextThreadID, standing in
// for the "thread" field of the log line — sift has no OS thread identity
// to report, so each file worker and writer gets a stable, human-readable
// sequence number instead.
var threadSeq atomic.Int64

// NextThreadID returns a fresh thread identifier for a new worker/writer
// goroutine.
func NextThreadID() int64 { return threadSeq.Add(1) }

// Open creates (or appends to) {outputDir}/scan.log and returns a base
// zerolog.Logger writing through the sift line formatter, plus the
// io.Closer that owns the underlying file.
func Open(outputDir string) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("logging: create output dir: %w", err)
	}
	path := filepath.Join(outputDir, "scan.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("logging: open %s: %w", path, err)
	}

	logger := zerolog.New(siftWriter{f}).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	return logger, f, nil
}

// Module tags a logger with the component name that appears in the
// "{module}" field of every line it emits.
func Module(logger zerolog.Logger, module string) zerolog.Logger {
	return logger.With().Str("module", module).Logger()
}

// Thread tags a logger with a stable per-goroutine thread identifier.
func Thread(logger zerolog.Logger, threadID int64) zerolog.Logger {
	return logger.With().Int64("thread", threadID).Logger()
}

// siftWriter reformats each zerolog JSON event into sift's " : "-delimited
// log line, rather than emitting raw JSON — the format spec.md §6 fixes
// is plain text, not structured.
type siftWriter struct {
	w io.Writer
}

func (s siftWriter) Write(p []byte) (int, error) {
	line := formatLine(p)
	if _, err := s.w.Write([]byte(line)); err != nil {
		return 0, err
	}
	return len(p), nil
}
