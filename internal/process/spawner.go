package process

import (
	"os/exec"
	"syscall"
)

// SpawnRequest describes one detached process to start.
type SpawnRequest struct {
	// Path is the executable to run.
	Path string

	// Args are the command arguments, not including the executable name.
	Args []string

	// Dir is the working directory of the process.
	Dir string
}

// Spawner starts a detached OS process and returns its pid. Ownership of the
// process passes to the OS at spawn time; there is no liveness channel.
type Spawner interface {
	Spawn(req SpawnRequest) (int, error)
}

// OSSpawner starts real processes in a new session with discarded standard
// streams, so they survive the launcher's own exit and are never waited on.
type OSSpawner struct{}

func (OSSpawner) Spawn(req SpawnRequest) (int, error) {
	cmd := exec.Command(req.Path, req.Args...)
	cmd.Dir = req.Dir
	// nil Stdin/Stdout/Stderr connect the child to the null device.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid
	// Release so the child is not reparented to us for reaping.
	_ = cmd.Process.Release()
	return pid, nil
}
