package extractor

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestLookupKnownExtensions(t *testing.T) {
	for _, ext := range []string{"pdf", "xlsx", "pptx", "docx", "doc", "ppt", "xls",
		"txt", "xml", "html", "htm", "csv", "rtf", "wpd", "msg",
		"PDF", "DocX"} {
		if _, ok := Lookup("file." + ext); !ok {
			t.Errorf("expected extractor registered for extension %q", ext)
		}
	}
}

func TestLookupUnknownExtensionDrops(t *testing.T) {
	if _, ok := Lookup("file.exe"); ok {
		t.Error("expected no extractor for unknown extension")
	}
	if _, ok := Lookup("noext"); ok {
		t.Error("expected no extractor for a file with no extension")
	}
}

func TestExtractPlainTextReadsUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("SECRET-42 plan"), 0o644); err != nil {
		t.Fatal(err)
	}
	fn, ok := Lookup(path)
	if !ok {
		t.Fatal("expected txt extractor")
	}
	got, err := fn(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "SECRET-42 plan" {
		t.Errorf("got %q", got)
	}
}

func TestExtractPlainTextRejectsNonUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x80}, 0o644); err != nil {
		t.Fatal(err)
	}
	fn, _ := Lookup(path)
	if _, err := fn(path); err == nil {
		t.Error("expected non-UTF8 file to fail extraction")
	}
}

func TestExtractLegacyOfficeKeepsAlnumAndSpaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.doc")
	raw := []byte{0x01, 0x02, 'S', 'S', 'N', ' ', '4', '2', 0x00, 0x00, '!', '@'}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	fn, ok := Lookup(path)
	if !ok {
		t.Fatal("expected doc extractor")
	}
	got, err := fn(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "SSN 42" {
		t.Errorf("got %q", got)
	}
}

func TestExtractOOXMLCollectsCharacterData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.docx")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(`<root><p>contains SECRET-42</p></root>`)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	fn, ok := Lookup(path)
	if !ok {
		t.Fatal("expected docx extractor")
	}
	got, err := fn(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "contains SECRET-42" {
		t.Errorf("got %q", got)
	}
}

func TestExtractOOXMLNotAZipDrops(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fake.xlsx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	fn, _ := Lookup(path)
	if _, err := fn(path); err == nil {
		t.Error("expected non-zip file to fail archive open")
	}
}
