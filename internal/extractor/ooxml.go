package extractor

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"
)

// extractOOXML treats the file as a ZIP archive (xlsx/pptx/docx are all
// OOXML, a ZIP of XML parts) and SAX-parses every member, collecting
// character-data runs. A member that fails to open or parse is skipped,
// not fatal; only a failure to open the archive itself drops the file.
func extractOOXML(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var sb strings.Builder
	for _, member := range r.File {
		sb.WriteString(extractOOXMLMember(member))
	}
	return sb.String(), nil
}

func extractOOXMLMember(member *zip.File) string {
	rc, err := member.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			sb.Write(cd)
		}
	}
	return sb.String()
}
