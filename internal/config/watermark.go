package config

import (
	"time"

	"github.com/bvinton/sift/internal/model"
)

// timeLastScanLayout is the wall-clock UTC encoding used for
// PersistentConfig.TimeLastScan.
const timeLastScanLayout = time.RFC3339

// MarkRootsChanged, MarkPatternsChanged and MarkOutputDirChanged force
// initial_scan back to true, per the state-machine transition rules in
// spec.md §4.7: any mutation of roots, patterns, or the output directory
// invalidates the watermark.
func MarkRootsChanged(cfg *model.PersistentConfig)     { cfg.InitialScan = true }
func MarkPatternsChanged(cfg *model.PersistentConfig)  { cfg.InitialScan = true }
func MarkOutputDirChanged(cfg *model.PersistentConfig) { cfg.InitialScan = true }

// MarkPasswordReset forces initial_scan true, for a password reset (a fresh
// vault invalidates any prior watermark since the old encrypted patterns
// are gone). The -q reset path does not call it: it replaces the profile
// with a fresh default config, which already has initial_scan true.
func MarkPasswordReset(cfg *model.PersistentConfig) { cfg.InitialScan = true }

// MarkScanComplete records a clean scan: initial_scan becomes false and
// time_last_scan advances to now (wall-clock UTC).
func MarkScanComplete(cfg *model.PersistentConfig, now time.Time) {
	cfg.InitialScan = false
	cfg.TimeLastScan = now.UTC().Format(timeLastScanLayout)
}

// ResolveWatermark implements spec.md §4.7's transition table, returning
// the effective watermark and whether the scan is a full scan.
//
//   - forceFull (-S)                      → full, watermark = epoch.
//   - partial (-s) and InitialScan        → full, watermark = epoch.
//   - partial (-s) and !InitialScan       → incremental; watermark parsed
//     from TimeLastScan. A parse failure degrades to UNIX_EPOCH (force
//     full) — the safer of the two readings of an ambiguous original
//     implementation, adopted per spec.md §9's open-question resolution
//     instead of falling back to "now."
//   - neither flag                        → same as partial.
func ResolveWatermark(cfg *model.PersistentConfig, forceFull bool) (watermark time.Time, fullScan bool) {
	if forceFull {
		return time.Unix(0, 0).UTC(), true
	}
	if cfg.InitialScan {
		return time.Unix(0, 0).UTC(), true
	}
	parsed, err := time.Parse(timeLastScanLayout, cfg.TimeLastScan)
	if err != nil {
		return time.Unix(0, 0).UTC(), true
	}
	return parsed.UTC(), false
}
