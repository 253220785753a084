// Package source resolves playlist sources: remote URLs through the gateway
// expander and the resilient fetcher, local paths through direct reads.
// Sources fail independently; one bad source never aborts the run.
package source

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"

	"github.com/alorle/m3u-updater/logging"
)

const defaultConcurrency = 4

// Fetcher downloads one candidate URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Expander turns one remote locator into its ordered candidate URLs.
type Expander func(url string) []string

// Resolver drives candidate expansion and fetching per source.
type Resolver struct {
	Fetcher Fetcher
	Expand  Expander
	Logger  *logging.Logger

	// Concurrency bounds how many sources resolve in parallel. Candidates
	// within one source are always tried sequentially.
	Concurrency int
}

// Resolve fetches every remote locator and reads every local path. The
// returned texts are in stable input order (remotes first, then locals)
// regardless of completion order; sources that fail contribute an
// ErrorRecord instead. All records are non-fatal: the caller decides whether
// zero resolved texts is a total failure.
func (r *Resolver) Resolve(ctx context.Context, remotes, locals []string) ([]Resolved, []ErrorRecord) {
	logger := r.Logger
	if logger == nil {
		logger = logging.New(logging.INFO, "")
	}
	limit := r.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	runID := uuid.NewString()
	logger.Debug("resolving sources", map[string]interface{}{
		"run":     runID,
		"remotes": len(remotes),
		"locals":  len(locals),
	})

	locators := make([]Locator, 0, len(remotes)+len(locals))
	for _, u := range remotes {
		locators = append(locators, Remote(u))
	}
	for _, p := range locals {
		locators = append(locators, Local(p))
	}

	// Each source writes only its own slot; the final merge restores input
	// order without any cross-goroutine coordination beyond the group wait.
	results := make([]*Resolved, len(locators))
	records := make([][]ErrorRecord, len(locators))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, loc := range locators {
		i, loc := i, loc
		g.Go(func() error {
			switch loc.Kind {
			case KindRemote:
				results[i], records[i] = r.resolveRemote(gctx, logger, loc)
			case KindLocal:
				results[i], records[i] = resolveLocal(logger, loc)
			}
			return nil
		})
	}
	// Workers never return errors; failures land in their record slots.
	_ = g.Wait()

	var resolved []Resolved
	var errs []ErrorRecord
	for i := range locators {
		if results[i] != nil {
			resolved = append(resolved, *results[i])
		}
		errs = append(errs, records[i]...)
	}

	logger.Debug("resolution finished", map[string]interface{}{
		"run":      runID,
		"resolved": len(resolved),
		"warnings": len(errs),
	})
	return resolved, errs
}

// resolveRemote tries each candidate mirror in order and stops at the first
// success. If every candidate fails it returns one aggregated record naming
// the last error.
func (r *Resolver) resolveRemote(ctx context.Context, logger *logging.Logger, loc Locator) (*Resolved, []ErrorRecord) {
	expand := r.Expand
	if expand == nil {
		expand = func(u string) []string { return []string{u} }
	}

	var records []ErrorRecord
	var lastErr error
	for _, candidate := range expand(loc.Value) {
		text, err := r.Fetcher.Fetch(ctx, candidate)
		if err == nil {
			logger.Info("downloaded", map[string]interface{}{
				"url":   candidate,
				"bytes": len(text),
			})
			return &Resolved{Locator: loc, Candidate: candidate, Text: text}, records
		}
		lastErr = err
		logger.Warn("candidate failed", map[string]interface{}{
			"url":   candidate,
			"error": err.Error(),
		})
		records = append(records, ErrorRecord{Source: candidate, Message: err.Error()})
	}

	records = append(records, ErrorRecord{
		Source:  loc.String(),
		Message: fmt.Sprintf("no mirror could be downloaded, last error: %v", lastErr),
	})
	return nil, records
}

// resolveLocal reads a playlist from disk, decoding UTF-8 with an ISO-8859-1
// fallback. A missing or unreadable file is a non-fatal record.
func resolveLocal(logger *logging.Logger, loc Locator) (*Resolved, []ErrorRecord) {
	data, err := os.ReadFile(loc.Value)
	if err != nil {
		logger.Warn("local source unavailable", map[string]interface{}{
			"path":  loc.Value,
			"error": err.Error(),
		})
		if os.IsNotExist(err) {
			return nil, []ErrorRecord{{Source: loc.String(), Message: "local file not found"}}
		}
		return nil, []ErrorRecord{{Source: loc.String(), Message: err.Error()}}
	}

	text := string(data)
	if !utf8.Valid(data) {
		// ISO-8859-1 maps every byte, so this decode cannot fail.
		decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
		text = string(decoded)
	}
	return &Resolved{Locator: loc, Candidate: loc.Value, Text: text}, nil
}
