// Package sandbox sequences a full mesh sandbox run: instance resolution,
// JVM validation, address allocation, artifact resolution, and process
// launch.
package sandbox

import (
	"context"
	"log/slog"
	"net"

	"github.com/meshworks/meshbox/internal/errors"
	"github.com/meshworks/meshbox/internal/instance"
	"github.com/meshworks/meshbox/internal/jvm"
	"github.com/meshworks/meshbox/internal/logging"
	"github.com/meshworks/meshbox/internal/system"
)

// AddressAllocator finds count bindable host addresses in the block.
type AddressAllocator interface {
	Allocate(count int, block *net.IPNet) ([]net.IP, error)
}

// ImageCache resolves and extracts the core and agent distributions.
type ImageCache interface {
	Obtain(ctx context.Context, imageDir, version string) (coreDir, agentDir string, err error)
}

// Launcher starts the node processes.
type Launcher interface {
	LaunchCores(extractedDir string, bindAddrs []net.IP) ([]int, error)
	LaunchAgents(extractedDir string, bindAddrs []net.IP) ([]int, error)
}

// Options configure a sandbox run.
type Options struct {
	// Instances is the raw instance-count expression, e.g. "2" or "2:3".
	Instances string

	// ImageDir caches and extracts the binary distributions.
	ImageDir string

	// ImageVersion selects the distribution version to run.
	ImageVersion string

	// AddrRange is the CIDR block scanned for bindable addresses.
	AddrRange *net.IPNet
}

// Orchestrator runs the sandbox pipeline strictly sequentially. Any failure
// aborts the remaining steps; processes already spawned are deliberately
// left running rather than rolled back.
type Orchestrator struct {
	fs        system.FileSystem
	exec      system.CommandExecutor
	allocator AddressAllocator
	cache     ImageCache
	launcher  Launcher
	kill      KillFunc
	statePath string
	log       *slog.Logger
}

// NewOrchestrator wires an Orchestrator from its collaborators.
func NewOrchestrator(
	fs system.FileSystem,
	exec system.CommandExecutor,
	allocator AddressAllocator,
	cache ImageCache,
	launcher Launcher,
	statePath string,
	log *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		fs:        fs,
		exec:      exec,
		allocator: allocator,
		cache:     cache,
		launcher:  launcher,
		kill:      Terminate,
		statePath: statePath,
		log:       log,
	}
}

// Run starts the sandbox and returns the launched topology.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*RunResult, error) {
	spec, err := instance.Parse(opts.Instances)
	if err != nil {
		return nil, err
	}
	if spec.Cores < 1 {
		return nil, errors.New(errors.ExitInstanceCount,
			"at least one core instance is required to form a cluster")
	}

	if err := jvm.Validate(ctx, o.exec, o.log); err != nil {
		return nil, err
	}

	if stopped, err := Stop(o.fs, o.statePath, o.kill, o.log); err != nil {
		return nil, err
	} else if stopped {
		logging.UserInfo("Stopped the previously running sandbox")
	}

	logging.UserHeadline("Starting mesh sandbox")

	count := int(spec.Cores)
	if int(spec.Agents) > count {
		count = int(spec.Agents)
	}
	bindAddrs, err := o.allocator.Allocate(count, opts.AddrRange)
	if err != nil {
		return nil, err
	}

	coreDir, agentDir, err := o.cache.Obtain(ctx, opts.ImageDir, opts.ImageVersion)
	if err != nil {
		return nil, err
	}

	// Core and agent instances at the same index share one address;
	// the first address always belongs to the seed.
	coreAddrs := bindAddrs[:spec.Cores]
	corePids, err := o.launcher.LaunchCores(coreDir, coreAddrs)
	if err != nil {
		return nil, err
	}

	agentAddrs := bindAddrs[:spec.Agents]
	agentPids, err := o.launcher.LaunchAgents(agentDir, agentAddrs)
	if err != nil {
		return nil, err
	}

	state := &State{ImageVersion: opts.ImageVersion, CorePids: corePids, AgentPids: agentPids}
	if err := writeState(o.fs, o.statePath, state); err != nil {
		// The sandbox is up; a stale state file only degrades `meshbox stop`.
		o.log.Warn("failed to record sandbox state", "path", o.statePath, "error", err)
	}

	return newRunResult(corePids, coreAddrs, agentPids, agentAddrs), nil
}
