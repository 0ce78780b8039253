package manager

import (
	"archive/zip"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bvinton/sift/internal/matcher"
	"github.com/bvinton/sift/internal/model"
)

func readCSVRows(t *testing.T, dir string) [][]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var rows [][]string
	for _, e := range entries {
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		r, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			t.Fatal(err)
		}
		rows = append(rows, r...)
	}
	return rows
}

// TestScenarioSSNInPlainText is spec.md §8 scenario 1: a plain-text file
// with an embedded SSN is scanned and produces exactly one record.
func TestScenarioSSNInPlainText(t *testing.T) {
	root := t.TempDir()
	output := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "hit.txt"), []byte("hello 123-45-6789 world"), 0o644); err != nil {
		t.Fatal(err)
	}

	patterns, err := matcher.Compile([]string{`\d{3}-\d{2}-\d{4}`}, true)
	if err != nil {
		t.Fatal(err)
	}

	settings := &model.ScanSettings{
		FullScan:         true,
		CompiledPatterns: patterns,
		Roots:            []string{root},
		OutputDir:        output,
		MaxScanThreads:   1,
		MaxFileThreads:   1,
		MaxWriteLines:    model.DefaultMaxWriteLines,
	}
	for _, r := range Run(settings, zerolog.Nop()) {
		if r.Err != nil {
			t.Fatalf("root %s: %v", r.Root, r.Err)
		}
	}

	rows := readCSVRows(t, output)
	var dataRows [][]string
	for _, row := range rows {
		if row[0] == "findings" {
			continue
		}
		dataRows = append(dataRows, row)
	}
	if len(dataRows) != 1 {
		t.Fatalf("expected exactly one record, got %v", dataRows)
	}
	if dataRows[0][0] != "123-45-6789" || dataRows[0][1] != "hit.txt" {
		t.Errorf("unexpected record: %v", dataRows[0])
	}
}

// TestScenarioDocxSecretPattern is spec.md §8 scenario 2: a docx whose
// internal XML runs contain SECRET-42 produces one record.
func TestScenarioDocxSecretPattern(t *testing.T) {
	root := t.TempDir()
	output := t.TempDir()
	path := filepath.Join(root, "doc.docx")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(`<root><p>classified: SECRET-42</p></root>`)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	patterns, err := matcher.Compile([]string{`SECRET-\d+`}, true)
	if err != nil {
		t.Fatal(err)
	}

	settings := &model.ScanSettings{
		FullScan:         true,
		CompiledPatterns: patterns,
		Roots:            []string{root},
		OutputDir:        output,
		MaxScanThreads:   1,
		MaxFileThreads:   1,
		MaxWriteLines:    model.DefaultMaxWriteLines,
	}
	for _, r := range Run(settings, zerolog.Nop()) {
		if r.Err != nil {
			t.Fatalf("root %s: %v", r.Root, r.Err)
		}
	}

	rows := readCSVRows(t, output)
	found := false
	for _, row := range rows {
		if row[0] == "SECRET-42" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a SECRET-42 finding, got rows: %v", rows)
	}
}

// TestScenarioPartialScanSkipsUnmodifiedFiles is spec.md §8 scenario 3:
// an unmodified file matching a pattern is skipped on a partial scan,
// while a file touched after the watermark is scanned.
func TestScenarioPartialScanSkipsUnmodifiedFiles(t *testing.T) {
	root := t.TempDir()
	output := t.TempDir()

	oldPath := filepath.Join(root, "old.txt")
	newPath := filepath.Join(root, "new.txt")
	if err := os.WriteFile(oldPath, []byte("SECRET-1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(newPath, []byte("SECRET-2"), 0o644); err != nil {
		t.Fatal(err)
	}

	watermark := time.Now()
	old := watermark.Add(-time.Hour)
	if err := os.Chtimes(oldPath, old, old); err != nil {
		t.Fatal(err)
	}
	fresh := watermark.Add(time.Hour)
	if err := os.Chtimes(newPath, fresh, fresh); err != nil {
		t.Fatal(err)
	}

	patterns, err := matcher.Compile([]string{`SECRET-\d+`}, true)
	if err != nil {
		t.Fatal(err)
	}

	settings := &model.ScanSettings{
		FullScan:          false,
		CompiledPatterns:  patterns,
		Roots:             []string{root},
		LastScanWatermark: watermark,
		OutputDir:         output,
		MaxScanThreads:    1,
		MaxFileThreads:    1,
		MaxWriteLines:     model.DefaultMaxWriteLines,
	}
	for _, r := range Run(settings, zerolog.Nop()) {
		if r.Err != nil {
			t.Fatalf("root %s: %v", r.Root, r.Err)
		}
	}

	rows := readCSVRows(t, output)
	var findings []string
	for _, row := range rows {
		if row[0] != "findings" {
			findings = append(findings, row[0])
		}
	}
	if len(findings) != 1 || findings[0] != "SECRET-2" {
		t.Errorf("expected only the post-watermark file to be scanned, got %v", findings)
	}
}

// TestScenarioRotationAtMaxWriteLinesPlusOne is spec.md §8's boundary
// property: max_write_lines+1 records produce exactly two CSV files.
func TestScenarioRotationAtMaxWriteLinesPlusOne(t *testing.T) {
	const maxLines = 10000
	root := t.TempDir()
	output := t.TempDir()

	for i := 0; i < maxLines+1; i++ {
		name := filepath.Join(root, "f"+itoa(i)+".txt")
		if err := os.WriteFile(name, []byte("SECRET-1"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	patterns, err := matcher.Compile([]string{`SECRET-\d+`}, true)
	if err != nil {
		t.Fatal(err)
	}

	settings := &model.ScanSettings{
		FullScan:         true,
		CompiledPatterns: patterns,
		Roots:            []string{root},
		OutputDir:        output,
		MaxScanThreads:   1,
		MaxFileThreads:   8,
		MaxWriteLines:    maxLines,
	}
	for _, r := range Run(settings, zerolog.Nop()) {
		if r.Err != nil {
			t.Fatalf("root %s: %v", r.Root, r.Err)
		}
	}

	entries, err := os.ReadDir(output)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 CSV files for %d records at max_write_lines=%d, got %d", maxLines+1, maxLines, len(entries))
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
