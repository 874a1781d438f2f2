package sandbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"reflect"
	"testing"

	"github.com/meshworks/meshbox/internal/errors"
	"github.com/meshworks/meshbox/internal/system"
)

type fakeAllocator struct {
	requested []int
	err       error
}

func (a *fakeAllocator) Allocate(count int, block *net.IPNet) ([]net.IP, error) {
	a.requested = append(a.requested, count)
	if a.err != nil {
		return nil, a.err
	}
	base := block.IP.To4()
	addrs := make([]net.IP, count)
	for i := range addrs {
		addrs[i] = net.IPv4(base[0], base[1], base[2], base[3]+byte(i)+1)
	}
	return addrs, nil
}

type fakeCache struct {
	calls int
	err   error
}

func (c *fakeCache) Obtain(ctx context.Context, imageDir, version string) (string, string, error) {
	c.calls++
	if c.err != nil {
		return "", "", c.err
	}
	return imageDir + "/core", imageDir + "/agent", nil
}

type fakeLauncher struct {
	coreDir    string
	coreAddrs  []net.IP
	agentDir   string
	agentAddrs []net.IP
}

func (l *fakeLauncher) LaunchCores(dir string, addrs []net.IP) ([]int, error) {
	l.coreDir, l.coreAddrs = dir, addrs
	pids := make([]int, len(addrs))
	for i := range pids {
		pids[i] = 2001 + i
	}
	return pids, nil
}

func (l *fakeLauncher) LaunchAgents(dir string, addrs []net.IP) ([]int, error) {
	l.agentDir, l.agentAddrs = dir, addrs
	pids := make([]int, len(addrs))
	for i := range pids {
		pids[i] = 3001 + i
	}
	return pids, nil
}

func javaExecutor() *system.MockExecutor {
	exec := system.NewMockExecutor()
	exec.Output["java -version"] = []byte("java version \"1.8.0_192\"\nJava(TM) SE Runtime Environment\n")
	return exec
}

func mustCIDR(t *testing.T, s string) *net.IPNet {
	t.Helper()
	_, block, err := net.ParseCIDR(s)
	if err != nil {
		t.Fatalf("bad CIDR %q: %v", s, err)
	}
	return block
}

func testOptions(t *testing.T, instances string) Options {
	return Options{
		Instances:    instances,
		ImageDir:     "/home/u/.meshbox/images",
		ImageVersion: "2.1.5",
		AddrRange:    mustCIDR(t, "192.168.128.0/24"),
	}
}

func newTestOrchestrator(fs system.FileSystem, exec system.CommandExecutor, alloc AddressAllocator, cache ImageCache, launcher Launcher) *Orchestrator {
	o := NewOrchestrator(fs, exec, alloc, cache, launcher, "/home/u/.meshbox/sandbox.yml", slog.New(slog.NewTextHandler(io.Discard, nil)))
	o.kill = func(pid int) error { return nil }
	return o
}

func TestRun_FullTopology(t *testing.T) {
	fs := system.NewMockFS()
	alloc := &fakeAllocator{}
	cache := &fakeCache{}
	launcher := &fakeLauncher{}
	o := newTestOrchestrator(fs, javaExecutor(), alloc, cache, launcher)

	result, err := o.Run(context.Background(), testOptions(t, "2:1"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// One allocation sized to the larger of the two counts.
	if !reflect.DeepEqual(alloc.requested, []int{2}) {
		t.Errorf("allocation requests = %v, want [2]", alloc.requested)
	}

	if want := []int{2001, 2002}; !reflect.DeepEqual(result.CorePids, want) {
		t.Errorf("CorePids = %v, want %v", result.CorePids, want)
	}
	if want := []int{3001}; !reflect.DeepEqual(result.AgentPids, want) {
		t.Errorf("AgentPids = %v, want %v", result.AgentPids, want)
	}

	wantCoreAddrs := []string{"192.168.128.1", "192.168.128.2"}
	for i, a := range result.CoreAddrs {
		if a.String() != wantCoreAddrs[i] {
			t.Errorf("CoreAddrs[%d] = %s, want %s", i, a, wantCoreAddrs[i])
		}
	}
	if len(result.AgentAddrs) != 1 || result.AgentAddrs[0].String() != "192.168.128.1" {
		t.Errorf("AgentAddrs = %v, want [192.168.128.1]", result.AgentAddrs)
	}

	if result.Host != "192.168.128.1" {
		t.Errorf("Host = %q, want the first core address", result.Host)
	}
	if result.ProxyInstanceCount != 1 {
		t.Errorf("ProxyInstanceCount = %d, want 1", result.ProxyInstanceCount)
	}

	if launcher.coreDir != "/home/u/.meshbox/images/core" {
		t.Errorf("core launch dir = %q", launcher.coreDir)
	}
	if launcher.agentDir != "/home/u/.meshbox/images/agent" {
		t.Errorf("agent launch dir = %q", launcher.agentDir)
	}

	state, err := readState(fs, "/home/u/.meshbox/sandbox.yml")
	if err != nil {
		t.Fatalf("state file not written: %v", err)
	}
	if state.ImageVersion != "2.1.5" {
		t.Errorf("state ImageVersion = %q, want 2.1.5", state.ImageVersion)
	}
	if want := []int{2001, 2002, 3001}; !reflect.DeepEqual(state.Pids(), want) {
		t.Errorf("state pids = %v, want %v", state.Pids(), want)
	}
}

func TestRun_BindShortfallSkipsArtifacts(t *testing.T) {
	alloc := &fakeAllocator{err: errors.BindAddressNotFound("sudo ifconfig lo0 alias 192.168.128.1 255.255.255.0")}
	cache := &fakeCache{}
	o := newTestOrchestrator(system.NewMockFS(), javaExecutor(), alloc, cache, &fakeLauncher{})

	_, err := o.Run(context.Background(), testOptions(t, "1"))
	if err == nil {
		t.Fatal("Run should fail when no address is bindable")
	}
	if got := errors.GetExitCode(err); got != errors.ExitBindAddress {
		t.Errorf("exit code = %d, want %d", got, errors.ExitBindAddress)
	}

	// No artifact activity once allocation has failed.
	if cache.calls != 0 {
		t.Errorf("cache calls = %d, want 0", cache.calls)
	}
}

func TestRun_RequiresOneCore(t *testing.T) {
	cache := &fakeCache{}
	o := newTestOrchestrator(system.NewMockFS(), javaExecutor(), &fakeAllocator{}, cache, &fakeLauncher{})

	_, err := o.Run(context.Background(), testOptions(t, "0:2"))
	if err == nil {
		t.Fatal("Run should reject zero core instances")
	}
	if got := errors.GetExitCode(err); got != errors.ExitInstanceCount {
		t.Errorf("exit code = %d, want %d", got, errors.ExitInstanceCount)
	}
	if cache.calls != 0 {
		t.Errorf("cache calls = %d, want 0", cache.calls)
	}
}

func TestRun_JavaFailureBeforeAllocation(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.Err["java -version"] = fmt.Errorf("executable file not found in $PATH")
	alloc := &fakeAllocator{}
	o := newTestOrchestrator(system.NewMockFS(), exec, alloc, &fakeCache{}, &fakeLauncher{})

	_, err := o.Run(context.Background(), testOptions(t, "1"))
	if err == nil {
		t.Fatal("Run should fail without a JVM")
	}
	if got := errors.GetExitCode(err); got != errors.ExitJava {
		t.Errorf("exit code = %d, want %d", got, errors.ExitJava)
	}
	if len(alloc.requested) != 0 {
		t.Errorf("allocation attempted despite JVM failure: %v", alloc.requested)
	}
}

func TestRun_StopsPreviousSandbox(t *testing.T) {
	fs := system.NewMockFS()
	if err := writeState(fs, "/home/u/.meshbox/sandbox.yml", &State{
		ImageVersion: "2.1.4",
		CorePids:     []int{100, 101},
		AgentPids:    []int{102},
	}); err != nil {
		t.Fatalf("seeding state: %v", err)
	}

	o := newTestOrchestrator(fs, javaExecutor(), &fakeAllocator{}, &fakeCache{}, &fakeLauncher{})
	var killed []int
	o.kill = func(pid int) error {
		killed = append(killed, pid)
		return nil
	}

	if _, err := o.Run(context.Background(), testOptions(t, "1")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if want := []int{100, 101, 102}; !reflect.DeepEqual(killed, want) {
		t.Errorf("killed pids = %v, want %v", killed, want)
	}

	// The state file now describes the new sandbox, not the old one.
	state, err := readState(fs, "/home/u/.meshbox/sandbox.yml")
	if err != nil {
		t.Fatalf("reading state: %v", err)
	}
	if state.ImageVersion != "2.1.5" {
		t.Errorf("state ImageVersion = %q, want 2.1.5", state.ImageVersion)
	}
}
