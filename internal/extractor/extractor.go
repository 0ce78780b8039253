// Package extractor maps a file's lowercased extension to a text-extraction
// strategy. The registry is closed: an extension with no entry drops the
// file silently, matching the File Worker's "unknown extension → drop"
// contract.
package extractor

import (
	"path/filepath"
	"strings"
)

// Extractor pulls the plain-text content out of one file. A non-nil error
// means "no text could be extracted" — callers drop the file, they never
// propagate the error further up the pipeline.
type Extractor func(path string) (string, error)

var registry = map[string]Extractor{
	"pdf": extractPDF,

	"xlsx": extractOOXML,
	"pptx": extractOOXML,
	"docx": extractOOXML,

	"doc": extractLegacyOffice,
	"ppt": extractLegacyOffice,
	"xls": extractLegacyOffice,

	"txt":  extractPlainText,
	"xml":  extractPlainText,
	"html": extractPlainText,
	"htm":  extractPlainText,
	"csv":  extractPlainText,

	"rtf": extractRaw,
	"wpd": extractRaw,

	"msg": extractMSG,
}

// Lookup returns the extractor registered for path's extension, and
// whether one exists. Matching is case-insensitive and ignores the
// leading dot.
func Lookup(path string) (Extractor, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return nil, false
	}
	fn, ok := registry[ext]
	return fn, ok
}
