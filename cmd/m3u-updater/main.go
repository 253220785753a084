package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alorle/m3u-updater/persist"
)

func main() {
	cmd := newRootCmd(&persist.ExecGit{})
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}
