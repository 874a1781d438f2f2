package sandbox

import "net"

const (
	// DefaultScheme and StatusPort locate the core's status endpoint.
	DefaultScheme = "http"
	StatusPort    = 9005

	// ProxyInstances is fixed at 1: only one proxy runs per machine.
	ProxyInstances = 1
)

// RunResult is an immutable snapshot of the launched topology, returned once
// at the end of a successful run.
type RunResult struct {
	CorePids   []int
	CoreAddrs  []net.IP
	AgentPids  []int
	AgentAddrs []net.IP

	// ProxyInstanceCount is the number of proxy instances in the sandbox.
	ProxyInstanceCount int

	// Host is the seed address, always CoreAddrs[0].
	Host string
}

func newRunResult(corePids []int, coreAddrs []net.IP, agentPids []int, agentAddrs []net.IP) *RunResult {
	return &RunResult{
		CorePids:           corePids,
		CoreAddrs:          coreAddrs,
		AgentPids:          agentPids,
		AgentAddrs:         agentAddrs,
		ProxyInstanceCount: ProxyInstances,
		Host:               coreAddrs[0].String(),
	}
}
