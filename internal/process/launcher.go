// Package process launches the mesh core and agent node processes.
package process

import (
	"fmt"
	"log/slog"
	"net"
	"path/filepath"

	"github.com/meshworks/meshbox/internal/errors"
)

// RemotingPort is the port mesh nodes use for cluster remoting.
const RemotingPort = 9004

const (
	coreBinary  = "meshcore"
	agentBinary = "meshagent"
)

// Launcher starts core and agent instances as detached OS processes.
type Launcher struct {
	spawner Spawner
	log     *slog.Logger
}

// NewLauncher creates a Launcher spawning through the given Spawner.
func NewLauncher(spawner Spawner, log *slog.Logger) *Launcher {
	return &Launcher{spawner: spawner, log: log}
}

// LaunchCores starts one core instance per bind address. The instance at
// index 0 is the cluster seed and receives no seed flag; every later
// instance is pointed at instance 0's remoting address.
//
// Pids are returned in instance-index order and carry no liveness guarantee
// beyond the OS accepting the spawn. On a spawn failure the pids launched so
// far are left running.
func (l *Launcher) LaunchCores(extractedDir string, bindAddrs []net.IP) ([]int, error) {
	pids := make([]int, 0, len(bindAddrs))
	for i, addr := range bindAddrs {
		args := []string{fmt.Sprintf("-Dmesh.ip=%s", addr)}
		if i > 0 {
			args = append(args, "--seed", remotingAddr(bindAddrs[0]))
		}

		l.log.Info("starting mesh core instance", "index", i, "addr", addr.String())
		pid, err := l.spawner.Spawn(SpawnRequest{
			Path: filepath.Join(extractedDir, "bin", coreBinary),
			Args: args,
			Dir:  extractedDir,
		})
		if err != nil {
			return pids, errors.LaunchFailed("core", i, err)
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

// LaunchAgents starts one agent instance per bind address. Every agent,
// including index 0, self-seeds against the core node co-located on its own
// bind address.
func (l *Launcher) LaunchAgents(extractedDir string, bindAddrs []net.IP) ([]int, error) {
	pids := make([]int, 0, len(bindAddrs))
	for i, addr := range bindAddrs {
		args := []string{
			fmt.Sprintf("-Dmesh.agent.ip=%s", addr),
			"--core-node", remotingAddr(addr),
		}

		l.log.Info("starting mesh agent instance", "index", i, "addr", addr.String())
		pid, err := l.spawner.Spawn(SpawnRequest{
			Path: filepath.Join(extractedDir, "bin", agentBinary),
			Args: args,
			Dir:  extractedDir,
		})
		if err != nil {
			return pids, errors.LaunchFailed("agent", i, err)
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

func remotingAddr(addr net.IP) string {
	return fmt.Sprintf("%s:%d", addr, RemotingPort)
}
