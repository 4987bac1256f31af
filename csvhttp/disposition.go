package csvhttp

import (
	"strings"
)

// ContentDisposition builds a Content-Disposition header value for a file download.
//
// The header carries two filenames: a quoted legacy one for old clients, where quotes, backslashes,
// line breaks and semicolons are replaced with underscores, and an RFC 5987 encoded one
// (filename*=UTF-8''...) that keeps the original name intact. With inline set the disposition type
// is "inline" instead of "attachment".
func ContentDisposition(filename string, inline bool) string {
	dispositionType := "attachment"
	if inline {
		dispositionType = "inline"
	}

	var sb strings.Builder
	sb.Grow(len(dispositionType) + 2*len(filename) + 32)

	sb.WriteString(dispositionType)
	sb.WriteString(`; filename="`)
	sb.WriteString(legacyFilenameReplacer.Replace(filename))
	sb.WriteString(`"; filename*=UTF-8''`)
	writeEncoded(&sb, filename)

	return sb.String()
}

var legacyFilenameReplacer = strings.NewReplacer(
	`"`, "_",
	`\`, "_",
	"\r", "_",
	"\n", "_",
	";", "_",
)

const upperhex = "0123456789ABCDEF"

// writeEncoded percent-encodes every UTF-8 byte of s except ASCII letters, digits and - _ . ! ~ * ( ).
func writeEncoded(sb *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if isUnreserved(b) {
			sb.WriteByte(b)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[b>>4])
		sb.WriteByte(upperhex[b&0x0F])
	}
}

func isUnreserved(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	}

	switch b {
	case '-', '_', '.', '!', '~', '*', '(', ')':
		return true
	}
	return false
}
