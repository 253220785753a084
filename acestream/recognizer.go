package acestream

import (
	"fmt"
	"regexp"
)

const hex40 = `[0-9A-Fa-f]{40}`

// GetStreamPath is the fixed subpath of the acestream engine HTTP API that
// serves a stream by content ID.
const GetStreamPath = "/ace/getstream"

// Match is one recognized acestream reference inside a text.
// Start and End delimit the full matched span (scheme, host and query
// included), not just the identifier.
type Match struct {
	Start int
	End   int
	ID    ContentID
}

// Recognizer finds acestream references in arbitrary text. The patterns are
// compiled once by NewRecognizer and the value is safe for concurrent use.
//
// Recognized surface syntaxes, all case-insensitive:
//
//	acestream://<id>
//	http(s)://host:port/<id>            (scheme optional)
//	http(s)://host:port/ace/getstream?id=<id>  (scheme optional)
//
// With StrayQueryIDs set, any host:port URL carrying ?id=<id> on some other
// path is recognized as well.
type Recognizer struct {
	pattern *regexp.Regexp
}

// Options controls which surface syntaxes the Recognizer accepts.
type Options struct {
	// StrayQueryIDs additionally matches id=<hash> query parameters on
	// paths other than /ace/getstream.
	StrayQueryIDs bool
}

// NewRecognizer compiles the recognizer patterns.
func NewRecognizer(opts Options) *Recognizer {
	// Host must not contain '/', ':' or whitespace; port is 1-5 digits.
	// The ID is the single capture group.
	sub := regexp.QuoteMeta(GetStreamPath[1:]) + `\?id=`
	if opts.StrayQueryIDs {
		sub = `[^\s?]*\?(?:[^\s&?]*&)?id=`
	}
	expr := fmt.Sprintf(`(?i)(?:acestream://|(?:https?://)?[^/\s:]+:[0-9]{1,5}/(?:%s)?)(%s)`, sub, hex40)
	return &Recognizer{pattern: regexp.MustCompile(expr)}
}

// Find returns all non-overlapping matches in text, leftmost first. Spans
// whose identifier runs into further hex characters (41+ hex in a row) are
// not matches: the token must be exactly 40 hex characters.
func (r *Recognizer) Find(text string) []Match {
	var matches []Match
	for _, idx := range r.pattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := idx[0], idx[1]
		idStart, idEnd := idx[2], idx[3]
		if idEnd < len(text) && isHex(text[idEnd]) {
			continue
		}
		matches = append(matches, Match{
			Start: start,
			End:   end,
			ID:    Normalize(text[idStart:idEnd]),
		})
	}
	return matches
}
