package extractor

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF concatenates the extracted text of every page with no
// separator. A page whose text cannot be recovered contributes an empty
// string rather than aborting the whole file.
func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
