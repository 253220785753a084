// Package rewriter rewrites acestream references inside M3U playlist text to
// the canonical local engine URL.
package rewriter

import (
	"fmt"
	"strings"

	"github.com/alorle/m3u-updater/acestream"
)

// Outcome is the result of one rewrite pass.
type Outcome struct {
	Text  string
	Count int
}

// Rewriter rewrites every recognized acestream reference to
// http://{host}:{port}/ace/getstream?id={id}. Construct with New; the value
// is safe for concurrent use.
type Rewriter struct {
	host       string
	port       int
	recognizer *acestream.Recognizer
}

// New creates a Rewriter targeting the given engine host and port. When
// strayIDs is true, id=<hash> query parameters on arbitrary paths are
// rewritten too; by default only the documented surface syntaxes are.
func New(host string, port int, strayIDs bool) *Rewriter {
	return &Rewriter{
		host:       host,
		port:       port,
		recognizer: acestream.NewRecognizer(acestream.Options{StrayQueryIDs: strayIDs}),
	}
}

// CanonicalURL returns the canonical engine URL for a content ID.
func (r *Rewriter) CanonicalURL(id acestream.ContentID) string {
	return fmt.Sprintf("http://%s:%d%s?id=%s", r.host, r.port, acestream.GetStreamPath, id)
}

// Rewrite replaces every recognized reference in text with its canonical
// form. Non-matched spans are preserved byte for byte. The pass is
// idempotent: running it on its own output changes nothing and counts zero
// replacements, because a span already in canonical form is not counted.
func (r *Rewriter) Rewrite(text string) Outcome {
	matches := r.recognizer.Find(text)
	if len(matches) == 0 {
		return Outcome{Text: text}
	}

	var sb strings.Builder
	sb.Grow(len(text))

	last := 0
	count := 0
	for _, m := range matches {
		replacement := r.CanonicalURL(m.ID)
		sb.WriteString(text[last:m.Start])
		sb.WriteString(replacement)
		if replacement != text[m.Start:m.End] {
			count++
		}
		last = m.End
	}
	sb.WriteString(text[last:])

	return Outcome{Text: sb.String(), Count: count}
}
