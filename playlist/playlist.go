// Package playlist assembles resolved playlist parts into one M3U document.
package playlist

import "strings"

// Header is the M3U playlist start marker.
const Header = "#EXTM3U"

// stripHeader removes a leading #EXTM3U marker line from one part so the
// combined output carries exactly one.
func stripHeader(part string) string {
	if strings.HasPrefix(part, Header) {
		part = strings.TrimPrefix(part, Header)
		part = strings.TrimLeft(part, "\r\n")
	}
	return part
}

// Combine joins the parts in input order, separated by one blank line, under
// a single leading #EXTM3U header. An empty parts slice yields the empty
// string; callers must treat that as total failure, not as a valid playlist.
func Combine(parts []string) string {
	if len(parts) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n")

	for i, part := range parts {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.TrimRight(stripHeader(part), "\r\n"))
		sb.WriteString("\n")
	}
	return sb.String()
}
