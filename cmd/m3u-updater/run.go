package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/alorle/m3u-updater/circuitbreaker"
	"github.com/alorle/m3u-updater/config"
	"github.com/alorle/m3u-updater/fetcher"
	"github.com/alorle/m3u-updater/gateway"
	"github.com/alorle/m3u-updater/logging"
	"github.com/alorle/m3u-updater/persist"
	"github.com/alorle/m3u-updater/playlist"
	"github.com/alorle/m3u-updater/rewriter"
	"github.com/alorle/m3u-updater/source"
)

// run executes the whole pipeline: resolve sources, rewrite, combine,
// persist. Per-source failures surface as warnings; only an empty result or
// a persistence problem is fatal.
func run(cfg *config.Config, urls, inputs []string, git persist.GitSink) error {
	logger := logging.New(logging.ParseLogLevel(cfg.LogLevel), "")

	fetch := fetcher.New(fetcher.Config{
		Timeout: cfg.Timeout(),
		Retry: fetcher.RetryPolicy{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryBaseDelay,
			Multiplier:  2,
			Cap:         cfg.RetryMaxDelay,
		},
		Limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		Breakers: circuitbreaker.NewRegistry(circuitbreaker.Config{Logger: logger}),
		Logger:   logger,
	})

	resolver := &source.Resolver{
		Fetcher:     fetch,
		Expand:      gateway.Expand,
		Logger:      logger,
		Concurrency: cfg.Concurrency,
	}

	resolved, warnings := resolver.Resolve(context.Background(), urls, inputs)
	if len(resolved) == 0 {
		logger.Error("no source could be resolved", nil)
		for _, w := range warnings {
			logger.Error("  - "+w.String(), nil)
		}
		return &exitError{code: exitTotalFailure, msg: "no valid content could be read from any source"}
	}

	rw := rewriter.New(cfg.Host, cfg.Port, cfg.RewriteStrayIDs)

	parts := make([]string, len(resolved))
	replacements := 0
	for i, res := range resolved {
		outcome := rw.Rewrite(res.Text)
		parts[i] = outcome.Text
		replacements += outcome.Count
		logger.Debug("rewrote source", map[string]interface{}{
			"source":       res.Locator.String(),
			"replacements": outcome.Count,
		})
	}

	combined := playlist.Combine(parts)
	outPath := filepath.Join(cfg.OutDir, cfg.CombinedName)
	written := []string{outPath}

	bak := ""
	if cfg.Backup {
		var err error
		bak, err = persist.Backup(outPath)
		if err != nil {
			return &exitError{code: exitBackup, msg: fmt.Sprintf("error creating backup: %v", err)}
		}
		if bak != "" {
			logger.Debug("backup created", map[string]interface{}{"path": bak})
		}
	}

	if err := persist.WriteOutput(outPath, []byte(combined)); err != nil {
		if bak != "" {
			if rerr := persist.Restore(bak, outPath); rerr != nil {
				logger.Error("rollback failed: "+rerr.Error(), nil)
			}
		}
		return &exitError{code: exitWrite, msg: fmt.Sprintf("error writing output file: %v", err)}
	}

	if cfg.EmitSources {
		for i, part := range parts {
			path := filepath.Join(cfg.OutDir, fmt.Sprintf("source_%d.m3u", i+1))
			if err := persist.WriteOutput(path, []byte(playlist.Combine([]string{part}))); err != nil {
				logger.Warn("failed to write per-source file", map[string]interface{}{
					"path":  path,
					"error": err.Error(),
				})
				continue
			}
			written = append(written, path)
		}
	}

	if cfg.Commit {
		commitFiles(logger, git, written)
	}

	logger.Info("playlist updated", map[string]interface{}{
		"path":         outPath,
		"sources":      len(resolved),
		"replacements": replacements,
		"warnings":     len(warnings),
	})
	for _, w := range warnings {
		logger.Warn("  - "+w.String(), nil)
	}
	return nil
}

// commitFiles stages, commits and pushes the written files. Git problems are
// warnings: the playlist on disk is already updated, which is the primary
// outcome of the run.
func commitFiles(logger *logging.Logger, git persist.GitSink, paths []string) {
	if err := git.Stage(paths); err != nil {
		logger.Warn("git stage failed: "+err.Error(), nil)
		return
	}
	msg := fmt.Sprintf("Update %s", strings.Join(baseNames(paths), ", "))
	if err := git.Commit(msg); err != nil {
		logger.Warn("git commit failed: "+err.Error(), nil)
		return
	}
	if err := git.Push(); err != nil {
		logger.Warn("git push failed: "+err.Error(), nil)
	}
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}
