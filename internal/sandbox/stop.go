package sandbox

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"syscall"

	"github.com/meshworks/meshbox/internal/system"
)

// KillFunc terminates one process by pid.
type KillFunc func(pid int) error

// Terminate sends SIGTERM to the pid. A process that already exited is not
// an error.
func Terminate(pid int) error {
	err := syscall.Kill(pid, syscall.SIGTERM)
	if stderrors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// Stop terminates the sandbox recorded in the state file and removes the
// file. A missing state file means no sandbox is running and is not an
// error. Returns true when a previously running sandbox was stopped.
func Stop(filesystem system.FileSystem, statePath string, kill KillFunc, log *slog.Logger) (bool, error) {
	state, err := readState(filesystem, statePath)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			log.Debug("no sandbox state file, nothing to stop", "path", statePath)
			return false, nil
		}
		return false, err
	}

	for _, pid := range state.Pids() {
		log.Debug("terminating sandbox process", "pid", pid)
		if err := kill(pid); err != nil {
			log.Warn("failed to terminate sandbox process", "pid", pid, "error", err)
		}
	}

	if err := filesystem.Remove(statePath); err != nil {
		return true, err
	}
	return true, nil
}
