package main

import (
	"os"

	"github.com/meshworks/meshbox/cmd"
	"github.com/meshworks/meshbox/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
