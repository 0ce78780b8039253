// Package model holds the data types shared across sift's scan pipeline:
// the per-file finding record, the tagged scan message that flows over the
// writer channel, the immutable per-invocation scan settings, and the
// persisted, cross-invocation configuration.
package model

import (
	"regexp"
	"time"
)

// Record is the at-most-one-per-file result of a scan: the distinct,
// insertion-order-preserving matches found in one file.
type Record struct {
	Findings string `csv:"findings"`
	Filename string `csv:"filename"`
	Path     string `csv:"path"`
}

// ScanMessage is a tagged value flowing from file workers to the writer:
// either a Record or the end-of-stream sentinel (End == true).
type ScanMessage struct {
	Record *Record
	End    bool
}

// EndMessage returns the end-of-stream sentinel.
func EndMessage() ScanMessage { return ScanMessage{End: true} }

// RecordMessage wraps a Record as a scan message.
func RecordMessage(r *Record) ScanMessage { return ScanMessage{Record: r} }

// ScanSettings is immutable once constructed: the full configuration for
// one invocation's scan across all roots.
type ScanSettings struct {
	FullScan         bool
	Verbose          bool
	CompiledPatterns []*regexp.Regexp
	Roots            []string
	LastScanWatermark time.Time // zero value precedes every mtime (force full semantics)
	OutputDir        string
	CaseSensitive    bool
	MaxScanThreads   int
	MaxFileThreads   int
	MaxWriteLines    int
}

// PersistentConfig is the per-profile configuration persisted across runs
// in the settings store (internal/config). initial_scan=true forces a full
// pass on the next scan regardless of the -S/-s flags (spec.md §4.7).
type PersistentConfig struct {
	InitialScan       bool     `json:"initial_scan"`
	OutputDirectory   string   `json:"output_directory,omitempty"`
	EncryptedPatterns []string `json:"encrypted_patterns"`
	Roots             []string `json:"roots"`
	PasswordHash      string   `json:"password_hash,omitempty"`
	TimeLastScan      string   `json:"time_last_scan"`
	MaxScanThreads    int      `json:"max_scan_threads"`
	MaxFileThreads    int      `json:"max_file_threads"`
	MaxWriteLines     int      `json:"max_write_lines"`
}

// DefaultMaxScanThreads and DefaultMaxWriteLines are the defaults a fresh
// profile is created with (spec.md §4.5, §4.6); the file-thread default is
// supplied by the caller of NewDefaultConfig.
const (
	DefaultMaxScanThreads = 2
	DefaultMaxWriteLines  = 10000
)

// NewDefaultConfig returns a fresh PersistentConfig with initial_scan
// forced true, as on first run (spec.md §4.7).
func NewDefaultConfig(maxFileThreads int) *PersistentConfig {
	return &PersistentConfig{
		InitialScan:    true,
		MaxScanThreads: DefaultMaxScanThreads,
		MaxFileThreads: maxFileThreads,
		MaxWriteLines:  DefaultMaxWriteLines,
	}
}
