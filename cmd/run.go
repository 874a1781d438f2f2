package cmd

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshworks/meshbox/internal/artifact"
	"github.com/meshworks/meshbox/internal/config"
	"github.com/meshworks/meshbox/internal/errors"
	"github.com/meshworks/meshbox/internal/image"
	"github.com/meshworks/meshbox/internal/logging"
	"github.com/meshworks/meshbox/internal/network"
	"github.com/meshworks/meshbox/internal/process"
	"github.com/meshworks/meshbox/internal/sandbox"
	"github.com/meshworks/meshbox/internal/status"
	"github.com/meshworks/meshbox/internal/system"
)

// waitTimeout bounds how long `run` waits for the cluster to report ready.
const waitTimeout = 60 * time.Second

var runCmd = &cobra.Command{
	Use:   "run <instances>",
	Short: "Launch a local Mesh sandbox",
	Long: `Launches core and agent node processes seeded into one cluster.

The instances argument is either a single count applied to both roles, or
a core:agent pair, e.g. "2:3" for 2 core and 3 agent instances.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("image-dir", config.DefaultPaths().ImageDir, "Directory caching downloaded distributions")
	runCmd.Flags().String("image-version", "", "Mesh version to run (required)")
	runCmd.Flags().String("addr-range", config.DefaultAddrRange, "CIDR range scanned for bindable addresses")
	runCmd.Flags().Bool("no-wait", false, "Skip waiting for the cluster to form")

	viper.BindPFlag("image-dir", runCmd.Flags().Lookup("image-dir"))
	viper.BindPFlag("image-version", runCmd.Flags().Lookup("image-version"))
	viper.BindPFlag("addr-range", runCmd.Flags().Lookup("addr-range"))
	viper.BindPFlag("no-wait", runCmd.Flags().Lookup("no-wait"))

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	version := viper.GetString("image-version")
	if version == "" {
		return errors.ConfigError("an image version is required: pass --image-version or set MESHBOX_IMAGE_VERSION", nil)
	}

	addrRange := viper.GetString("addr-range")
	_, block, err := net.ParseCIDR(addrRange)
	if err != nil {
		return errors.ConfigError(fmt.Sprintf("invalid address range %q: expected CIDR notation like %s", addrRange, config.DefaultAddrRange), err)
	}

	paths := config.DefaultPaths()
	log := logging.Default()
	filesystem := system.NewOSFileSystem()

	// Credentials are only read if a download is actually needed.
	newClient := func() (artifact.Client, error) {
		creds, err := artifact.LoadCredentials(filesystem, paths.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return artifact.NewHTTPClient(artifact.DefaultBaseURL, creds, os.Stdout, log), nil
	}

	orchestrator := sandbox.NewOrchestrator(
		filesystem,
		system.NewOSExecutor(),
		network.NewAllocator(network.TCPProber{}, log),
		image.NewCache(filesystem, newClient, log),
		process.NewLauncher(process.OSSpawner{}, log),
		paths.StateFile,
		log,
	)

	result, err := orchestrator.Run(cmd.Context(), sandbox.Options{
		Instances:    args[0],
		ImageDir:     viper.GetString("image-dir"),
		ImageVersion: version,
		AddrRange:    block,
	})
	if err != nil {
		return err
	}

	waiter := status.NewClient(viper.GetDuration("wait-retry-interval"), log)
	reportRun(cmd.Context(), os.Stdout, waiter, result, viper.GetBool("no-wait"))
	return nil
}

// readyWaiter is satisfied by status.Client.
type readyWaiter interface {
	WaitReady(ctx context.Context, host string, timeout time.Duration) error
}

// reportRun waits for the cluster to form and prints the topology summary.
// With noWait set, nothing is waited for or printed. A cluster that never
// reports ready gets the failure message, never the success summary.
func reportRun(ctx context.Context, w io.Writer, waiter readyWaiter, result *sandbox.RunResult, noWait bool) {
	if noWait {
		return
	}

	logInfo("Waiting for the cluster to form at %s...", result.Host)
	if err := waiter.WaitReady(ctx, result.Host, waitTimeout); err != nil {
		logError("The sandbox did not report ready within %s", waitTimeout)
		logWarning("The processes were left running; adjust the poll rate with MESHBOX_WAIT_RETRY_INTERVAL or stop the sandbox with `meshbox stop`")
		return
	}

	printSummary(w, result)
}
