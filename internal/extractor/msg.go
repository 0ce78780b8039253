package extractor

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"
)

// extractMSG treats a .msg file as an OLE2 Compound File Binary container
// (the format Outlook uses for its MAPI property streams), recovers the
// readable text-valued streams, and serialises them to a JSON object so
// the matcher can run against one flat string. Unreadable or undecodable
// streams are skipped, not fatal.
func extractMSG(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return "", err
	}

	fields := make(map[string]string)
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		name := sanitizeMAPIStreamName(entry.Name)
		if name == "" || entry.Size <= 0 {
			continue
		}
		buf := make([]byte, entry.Size)
		n, readErr := io.ReadFull(doc, buf)
		if readErr != nil && readErr != io.ErrUnexpectedEOF {
			continue
		}
		value := decodeMAPIStreamValue(buf[:n])
		if value == "" {
			continue
		}
		fields[name] = value
	}

	blob, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(blob), nil
}

// sanitizeMAPIStreamName strips the non-printable MAPI property-tag prefix
// mscfb surfaces on __substg1.0_ stream names, keeping just enough to
// namespace fields in the emitted JSON without emitting control bytes.
func sanitizeMAPIStreamName(raw string) string {
	name := strings.TrimPrefix(raw, "__substg1.0_")
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	return name
}

// decodeMAPIStreamValue interprets a property stream as text when it looks
// like one: MAPI string properties are commonly UTF-16LE (type 001F) or
// plain ASCII/UTF-8 (type 001E). Anything else is treated as binary and
// dropped.
func decodeMAPIStreamValue(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if looksUTF16LE(raw) {
		return decodeUTF16LE(raw)
	}
	if isMostlyPrintableASCII(raw) {
		return strings.TrimRight(string(raw), "\x00")
	}
	return ""
}

func looksUTF16LE(raw []byte) bool {
	if len(raw) < 4 || len(raw)%2 != 0 {
		return false
	}
	zeros := 0
	for i := 1; i < len(raw); i += 2 {
		if raw[i] == 0 {
			zeros++
		}
	}
	return zeros*2 >= len(raw)
}

func decodeUTF16LE(raw []byte) string {
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		units = append(units, uint16(raw[i])|uint16(raw[i+1])<<8)
	}
	return strings.TrimRight(string(utf16.Decode(units)), "\x00")
}

func isMostlyPrintableASCII(raw []byte) bool {
	printable := 0
	for _, b := range raw {
		if b == 0 {
			continue
		}
		if b >= 0x20 && b < 0x7f {
			printable++
		}
	}
	nonzero := 0
	for _, b := range raw {
		if b != 0 {
			nonzero++
		}
	}
	return nonzero > 0 && printable*10 >= nonzero*9
}
