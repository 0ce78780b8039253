package extractor

import (
	"fmt"
	"os"
	"unicode/utf8"
)

// extractPlainText reads the whole file and requires valid UTF-8;
// txt/xml/html/htm/csv are all treated as opaque text, no markup parsing.
func extractPlainText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("extractor: %s is not valid UTF-8", path)
	}
	return string(raw), nil
}

// extractRaw reads rtf/wpd as UTF-8 text with no format-aware parsing,
// per spec: these containers are scanned as-is, control words and all.
func extractRaw(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("extractor: %s is not valid UTF-8", path)
	}
	return string(raw), nil
}
