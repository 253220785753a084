package source

import "fmt"

// Kind distinguishes remote URLs from local files.
type Kind int

const (
	// KindRemote is a URL fetched over HTTP(S), possibly via gateway mirrors.
	KindRemote Kind = iota
	// KindLocal is a file read from the local filesystem.
	KindLocal
)

// Locator names one playlist source. It is created once from CLI input and
// never mutated.
type Locator struct {
	Kind  Kind
	Value string
}

// Remote creates a locator for a URL.
func Remote(url string) Locator {
	return Locator{Kind: KindRemote, Value: url}
}

// Local creates a locator for a filesystem path.
func Local(path string) Locator {
	return Locator{Kind: KindLocal, Value: path}
}

func (l Locator) String() string {
	if l.Kind == KindLocal {
		return fmt.Sprintf("file %s", l.Value)
	}
	return fmt.Sprintf("url %s", l.Value)
}

// Resolved is the text obtained for one locator. Candidate records the
// mirror URL (or path) the content actually came from.
type Resolved struct {
	Locator   Locator
	Candidate string
	Text      string
}

// ErrorRecord is one non-fatal problem encountered while resolving sources.
type ErrorRecord struct {
	Source  string
	Message string
	Fatal   bool
}

func (e ErrorRecord) String() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}
