package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meshworks/meshbox/internal/config"
	"github.com/meshworks/meshbox/internal/logging"
	"github.com/meshworks/meshbox/internal/sandbox"
	"github.com/meshworks/meshbox/internal/system"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running sandbox",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	stopped, err := sandbox.Stop(system.NewOSFileSystem(), config.DefaultPaths().StateFile, sandbox.Terminate, logging.Default())
	if err != nil {
		return err
	}
	if !stopped {
		logInfo("No sandbox is currently running")
		return nil
	}
	logSuccess("Stopped the running sandbox")
	return nil
}
