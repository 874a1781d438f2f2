// Package instance parses the sandbox instance-count expression.
//
// The expression `2` translates to 2 core instances and 2 agent instances.
// The expression `2:3` translates to 2 core instances and 3 agent instances.
package instance

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/meshworks/meshbox/internal/errors"
)

// expressionRegex matches a core:agent instance expression anywhere in the input.
var expressionRegex = regexp.MustCompile(`[0-9]+:[0-9]+`)

// Spec is the number of core and agent instances to launch.
// Immutable once parsed; count validity (at least one core) is the
// orchestrator's responsibility, not the parser's.
type Spec struct {
	Cores  uint
	Agents uint
}

// Parse resolves an instance expression into a Spec.
func Parse(expression string) (Spec, error) {
	if n, err := strconv.ParseUint(expression, 10, 32); err == nil {
		return Spec{Cores: uint(n), Agents: uint(n)}, nil
	}

	if expressionRegex.MatchString(expression) {
		parts := strings.Split(expression, ":")
		cores, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return Spec{}, errors.InstanceCount(expression)
		}
		agents, err := strconv.ParseUint(parts[len(parts)-1], 10, 32)
		if err != nil {
			return Spec{}, errors.InstanceCount(expression)
		}
		return Spec{Cores: uint(cores), Agents: uint(agents)}, nil
	}

	return Spec{}, errors.InstanceCount(expression)
}
