package process

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"reflect"
	"testing"

	"github.com/meshworks/meshbox/internal/errors"
)

// fakeSpawner records spawn requests and hands out sequential pids.
type fakeSpawner struct {
	requests []SpawnRequest
	failAt   int // 1-based call number to fail on; 0 never fails
	nextPid  int
}

func (s *fakeSpawner) Spawn(req SpawnRequest) (int, error) {
	s.requests = append(s.requests, req)
	if s.failAt != 0 && len(s.requests) == s.failAt {
		return 0, stderrors.New("no such file or directory")
	}
	s.nextPid++
	return 1000 + s.nextPid, nil
}

func addrs(t *testing.T, ss ...string) []net.IP {
	t.Helper()
	out := make([]net.IP, len(ss))
	for i, s := range ss {
		out[i] = net.ParseIP(s)
		if out[i] == nil {
			t.Fatalf("bad IP %q", s)
		}
	}
	return out
}

func newLauncher(s Spawner) *Launcher {
	return NewLauncher(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLaunchCores_SeedFlags(t *testing.T) {
	spawner := &fakeSpawner{}
	pids, err := newLauncher(spawner).LaunchCores("/img/core", addrs(t, "192.168.128.1", "192.168.128.2", "192.168.128.3"))
	if err != nil {
		t.Fatalf("LaunchCores failed: %v", err)
	}

	if want := []int{1001, 1002, 1003}; !reflect.DeepEqual(pids, want) {
		t.Errorf("pids = %v, want %v", pids, want)
	}

	// Instance 0 is the seed and must not be told to seed.
	if got := spawner.requests[0].Args; !reflect.DeepEqual(got, []string{"-Dmesh.ip=192.168.128.1"}) {
		t.Errorf("instance 0 args = %v, want no seed flag", got)
	}

	// Every later instance seeds against instance 0's remoting address.
	for i := 1; i < 3; i++ {
		want := []string{
			fmt.Sprintf("-Dmesh.ip=192.168.128.%d", i+1),
			"--seed", "192.168.128.1:9004",
		}
		if got := spawner.requests[i].Args; !reflect.DeepEqual(got, want) {
			t.Errorf("instance %d args = %v, want %v", i, got, want)
		}
	}

	for i, req := range spawner.requests {
		if req.Path != "/img/core/bin/meshcore" {
			t.Errorf("instance %d path = %q, want /img/core/bin/meshcore", i, req.Path)
		}
		if req.Dir != "/img/core" {
			t.Errorf("instance %d dir = %q, want /img/core", i, req.Dir)
		}
	}
}

func TestLaunchAgents_SelfSeed(t *testing.T) {
	spawner := &fakeSpawner{}
	pids, err := newLauncher(spawner).LaunchAgents("/img/agent", addrs(t, "192.168.128.1", "192.168.128.2"))
	if err != nil {
		t.Fatalf("LaunchAgents failed: %v", err)
	}
	if len(pids) != 2 {
		t.Fatalf("got %d pids, want 2", len(pids))
	}

	// Every agent, including index 0, points at its own co-located core.
	for i, own := range []string{"192.168.128.1", "192.168.128.2"} {
		want := []string{
			"-Dmesh.agent.ip=" + own,
			"--core-node", own + ":9004",
		}
		if got := spawner.requests[i].Args; !reflect.DeepEqual(got, want) {
			t.Errorf("agent %d args = %v, want %v", i, got, want)
		}
		if spawner.requests[i].Path != "/img/agent/bin/meshagent" {
			t.Errorf("agent %d path = %q", i, spawner.requests[i].Path)
		}
	}
}

func TestLaunchCores_SpawnFailure(t *testing.T) {
	spawner := &fakeSpawner{failAt: 2}
	pids, err := newLauncher(spawner).LaunchCores("/img/core", addrs(t, "192.168.128.1", "192.168.128.2"))
	if err == nil {
		t.Fatal("LaunchCores should fail when a spawn fails")
	}
	if got := errors.GetExitCode(err); got != errors.ExitLaunch {
		t.Errorf("exit code = %d, want %d", got, errors.ExitLaunch)
	}
	if !reflect.DeepEqual(pids, []int{1001}) {
		t.Errorf("pids = %v, want the already-spawned pid to be returned", pids)
	}

	// No retry: exactly one spawn attempt per instance.
	if len(spawner.requests) != 2 {
		t.Errorf("spawn attempts = %d, want 2", len(spawner.requests))
	}
}
