package sandbox

import (
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/meshworks/meshbox/internal/system"
)

// State records the processes of the running sandbox so a later run (or
// `meshbox stop`) can terminate them.
type State struct {
	ImageVersion string `yaml:"imageVersion"`
	CorePids     []int  `yaml:"corePids"`
	AgentPids    []int  `yaml:"agentPids"`
}

// Pids returns all recorded pids, cores first.
func (s *State) Pids() []int {
	return append(append([]int{}, s.CorePids...), s.AgentPids...)
}

func writeState(fs system.FileSystem, path string, state *State) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return fs.WriteFile(path, data, 0o600)
}

func readState(fs system.FileSystem, path string) (*State, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
