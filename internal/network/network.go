// Package network finds host addresses the sandbox instances can bind to.
package network

import (
	"log/slog"
	"net"
	"runtime"
	"strconv"

	"github.com/meshworks/meshbox/internal/errors"
)

// ProbePort is the throwaway port used for testing if an address can be bound.
const ProbePort = 19991

// Prober tests whether an address is bindable on this host. A failed probe
// is the only way "not aliased to this host" is distinguished from
// "aliased and free".
type Prober interface {
	CanBind(addr net.IP, port int) bool
}

// TCPProber probes by binding a throwaway TCP listener.
type TCPProber struct{}

func (TCPProber) CanBind(addr net.IP, port int) bool {
	l, err := net.Listen("tcp", net.JoinHostPort(addr.String(), strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = l.Close()
	return true
}

// Allocator scans a CIDR block for bindable addresses.
type Allocator struct {
	probe Prober
	goos  string
	log   *slog.Logger
}

// NewAllocator creates an Allocator probing with the given Prober.
func NewAllocator(probe Prober, log *slog.Logger) *Allocator {
	return &Allocator{probe: probe, goos: runtime.GOOS, log: log}
}

// Allocate returns the first count bindable host addresses of the block, in
// ascending order. Host addresses are enumerated lazily, excluding the
// network and broadcast addresses, and scanning stops as soon as enough
// addresses are found. Address 0 of the returned slice is later used as the
// cluster seed.
//
// If the block is exhausted short by k addresses, the returned error carries
// alias setup commands for the first k unavailable addresses so the operator
// can copy-paste the fix.
func (a *Allocator) Allocate(count int, block *net.IPNet) ([]net.IP, error) {
	var bindable, unavailable []net.IP

	hosts(block)(func(addr net.IP) bool {
		if a.probe.CanBind(addr, ProbePort) {
			bindable = append(bindable, addr)
		} else {
			a.log.Debug("address not bindable", "addr", addr)
			unavailable = append(unavailable, addr)
		}

		return len(bindable) < count
	})

	if len(bindable) < count {
		missing := count - len(bindable)
		if missing > len(unavailable) {
			missing = len(unavailable)
		}
		instructions := a.aliasInstructions(unavailable[:missing], block.Mask)
		return nil, errors.BindAddressNotFound(instructions)
	}

	return bindable, nil
}

// hosts yields the usable addresses of the block in ascending order,
// excluding the network and broadcast addresses.
func hosts(block *net.IPNet) func(yield func(net.IP) bool) {
	return func(yield func(net.IP) bool) {
		ones, bits := block.Mask.Size()
		total := 1 << (bits - ones)

		addr := block.IP.Mask(block.Mask)
		for i := 0; i < total; i++ {
			if i != 0 && i != total-1 {
				if !yield(cloneIP(addr)) {
					return
				}
			}
			addr = nextIP(addr)
		}
	}
}

func cloneIP(addr net.IP) net.IP {
	dup := make(net.IP, len(addr))
	copy(dup, addr)
	return dup
}

func nextIP(addr net.IP) net.IP {
	next := cloneIP(addr)
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if next[i] != 0 {
			break
		}
	}
	return next
}
