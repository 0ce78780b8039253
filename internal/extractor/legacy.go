package extractor

import (
	"os"
	"strings"
)

// extractLegacyOffice is a deliberately crude extractor for doc/ppt/xls:
// read the whole file and retain only ASCII alphanumerics, mapping each
// ASCII whitespace byte to one space (runs are not collapsed). These legacy compound formats
// embed plain strings amid binary structure; this recovers them without
// parsing the container.
func extractLegacyOffice(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		switch {
		case isASCIIAlphanumeric(b):
			sb.WriteByte(b)
		case isASCIIWhitespace(b):
			sb.WriteByte(' ')
		}
	}
	return sb.String(), nil
}

func isASCIIAlphanumeric(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isASCIIWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
