package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alorle/m3u-updater/config"
	"github.com/alorle/m3u-updater/persist"
)

// Exit codes. Distinct codes let cron jobs and CI tell a usage mistake from
// a network outage from a local disk problem.
const (
	exitUsage        = 2
	exitTotalFailure = 3
	exitBackup       = 4
	exitWrite        = 5
)

// exitError carries the process exit code up to main.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

// options holds the raw flag values before they are merged into the config.
type options struct {
	urls        []string
	inputs      []string
	outDir      string
	combined    string
	host        string
	port        int
	noBackup    bool
	noCommit    bool
	timeout     int
	maxRetries  int
	strayIDs    bool
	emitSources bool
	configFile  string
	verbose     bool
}

// newRootCmd builds the CLI. The git sink is injected so tests never spawn
// processes.
func newRootCmd(git persist.GitSink) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "m3u-updater",
		Short: "Normalize acestream references in M3U playlists",
		Long: `m3u-updater downloads M3U playlists from URLs (with IPFS gateway
fallback) and/or reads them from local files, rewrites every acestream
reference to the local engine's /ace/getstream endpoint, and writes one
combined playlist with backup and optional git commit.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(opts.urls) == 0 && len(opts.inputs) == 0 {
				return &exitError{
					code: exitUsage,
					msg:  "at least one --url or --input source is required",
				}
			}
			cfg, err := buildConfig(cmd, opts)
			if err != nil {
				return &exitError{code: exitUsage, msg: err.Error()}
			}
			return run(cfg, opts.urls, opts.inputs, git)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&opts.urls, "url", nil, "public M3U URL (repeatable)")
	flags.StringArrayVar(&opts.inputs, "input", nil, "local M3U file (repeatable)")
	flags.StringVar(&opts.outDir, "out-dir", ".", "output directory")
	flags.StringVar(&opts.combined, "combined-name", "playlist.m3u", "combined output filename")
	flags.StringVar(&opts.host, "host", "127.0.0.1", "target host for ace/getstream")
	flags.IntVar(&opts.port, "port", 6878, "target port for ace/getstream")
	flags.BoolVar(&opts.noBackup, "no-backup", false, "do not back up the output file before overwriting")
	flags.BoolVar(&opts.noCommit, "no-commit", false, "do not commit and push the written files")
	flags.IntVar(&opts.timeout, "timeout", 30, "fetch timeout in seconds")
	flags.IntVar(&opts.maxRetries, "max-retries", 3, "attempts per candidate URL")
	flags.BoolVar(&opts.strayIDs, "rewrite-stray-ids", false, "also rewrite id=<hash> query parameters on other paths")
	flags.BoolVar(&opts.emitSources, "emit-sources", false, "also write each resolved source as source_<n>.m3u")
	flags.StringVar(&opts.configFile, "config", "", "YAML config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

// buildConfig merges defaults, the optional config file, the environment and
// finally any explicitly set flags, then validates the result.
func buildConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.Default()

	if opts.configFile != "" {
		if err := cfg.LoadFile(opts.configFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("out-dir") {
		cfg.OutDir = opts.outDir
	}
	if flags.Changed("combined-name") {
		cfg.CombinedName = opts.combined
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = opts.timeout
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = opts.maxRetries
	}
	if flags.Changed("rewrite-stray-ids") {
		cfg.RewriteStrayIDs = opts.strayIDs
	}
	if flags.Changed("emit-sources") {
		cfg.EmitSources = opts.emitSources
	}
	if opts.noBackup {
		cfg.Backup = false
	}
	if opts.noCommit {
		cfg.Commit = false
	}
	if opts.verbose {
		cfg.LogLevel = "DEBUG"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
