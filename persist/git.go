package persist

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/alorle/m3u-updater/logging"
)

// GitSink publishes written playlist files to version control. The pipeline
// only ever talks to this interface; process spawning stays behind it so
// tests can substitute a mock.
type GitSink interface {
	Stage(paths []string) error
	Commit(message string) error
	Push() error
}

// ExecGit is the GitSink backed by the git binary.
type ExecGit struct {
	// Dir is the repository working directory; empty means the process cwd.
	Dir    string
	Logger *logging.Logger
}

// Stage runs git add on the given paths.
func (g *ExecGit) Stage(paths []string) error {
	return g.run(append([]string{"add", "--"}, paths...)...)
}

// Commit records the staged changes. A commit with nothing staged is
// reported as an error; callers that consider that benign can match on the
// message.
func (g *ExecGit) Commit(message string) error {
	return g.run("commit", "-m", message)
}

// Push publishes the current branch.
func (g *ExecGit) Push() error {
	return g.run("push")
}

func (g *ExecGit) run(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.Dir

	out, err := cmd.CombinedOutput()
	if g.Logger != nil {
		g.Logger.Debug("git", map[string]interface{}{
			"args":   strings.Join(args, " "),
			"output": strings.TrimSpace(string(out)),
		})
	}
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
