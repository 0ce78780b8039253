package writer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bvinton/sift/internal/model"
)

func readAllCSVs(t *testing.T, dir string) [][][]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var all [][][]string
	for _, e := range entries {
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		rows, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			t.Fatal(err)
		}
		all = append(all, rows)
	}
	return all
}

func TestWriterProducesHeaderOnlyFileWithNoRecords(t *testing.T) {
	dir := t.TempDir()
	w := New("/tmp/a", dir, 10000, zerolog.Nop(), time.Now())
	ch := make(chan model.ScanMessage)
	done := make(chan error, 1)
	go func() { done <- w.Run(ch) }()

	ch <- model.EndMessage()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one output file, got %d", len(entries))
	}

	rows := readAllCSVs(t, dir)[0]
	if len(rows) != 1 || rows[0][0] != "findings" {
		t.Errorf("expected header-only file, got %v", rows)
	}
}

func TestWriterWritesRecordsBeforeEnd(t *testing.T) {
	dir := t.TempDir()
	w := New("/tmp/a", dir, 10000, zerolog.Nop(), time.Now())
	ch := make(chan model.ScanMessage)
	done := make(chan error, 1)
	go func() { done <- w.Run(ch) }()

	ch <- model.RecordMessage(&model.Record{Findings: "123-45-6789", Filename: "hit.txt", Path: "/tmp/a/hit.txt"})
	ch <- model.EndMessage()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	rows := readAllCSVs(t, dir)[0]
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %v", rows)
	}
	if rows[1][0] != "123-45-6789" || rows[1][1] != "hit.txt" {
		t.Errorf("unexpected row: %v", rows[1])
	}
}

func TestWriterRotatesAtMaxLines(t *testing.T) {
	dir := t.TempDir()
	w := New("/tmp/a", dir, 2, zerolog.Nop(), time.Now())
	ch := make(chan model.ScanMessage)
	done := make(chan error, 1)
	go func() { done <- w.Run(ch) }()

	for i := 0; i < 3; i++ {
		ch <- model.RecordMessage(&model.Record{Findings: "x", Filename: "f", Path: "p"})
	}
	ch <- model.EndMessage()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 rotated files for 3 records at max_lines=2, got %d", len(entries))
	}
}

func TestFilenameSanitisesRoot(t *testing.T) {
	name := filename(`C:\data\docs`, time.Date(2026, 8, 1, 9, 5, 3, 0, time.UTC), 1)
	want := "Cdatadocs_09-05-03utc_812026_1.csv"
	if name != want {
		t.Errorf("got %q, want %q", name, want)
	}
}
