package engine

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/opmodel/projgen/internal/schema"
)

var osAliases = map[string]string{"macos": "darwin"}

// CheckCompatibility compares the template's compatibility section with a
// runtime version and operating system. Empty arguments default to the
// configured runtime version and the current GOOS. It returns one message
// per unmet constraint.
func (e *Engine) CheckCompatibility(t *schema.Template, runtimeVersion, goos string) []string {
	if runtimeVersion == "" {
		runtimeVersion = e.cfg.RuntimeVersion
	}
	if goos == "" {
		goos = runtime.GOOS
	}

	var problems []string
	c := t.Compatibility()

	if minVersion := c.MinVersion(); minVersion != "" {
		constraint, err := semver.NewConstraint(">= " + minVersion)
		if err != nil {
			problems = append(problems, fmt.Sprintf("invalid minimum version %q: %v", minVersion, err))
		} else if current, err := semver.NewVersion(runtimeVersion); err != nil {
			problems = append(problems, fmt.Sprintf("invalid runtime version %q: %v", runtimeVersion, err))
		} else if !constraint.Check(current) {
			problems = append(problems, fmt.Sprintf("requires runtime version %s or later, have %s", minVersion, runtimeVersion))
		}
	}

	if len(c.SupportedOS) > 0 && !supportsOS(c.SupportedOS, goos) {
		problems = append(problems, fmt.Sprintf("operating system %s is not supported (supported: %s)", goos, strings.Join(c.SupportedOS, ", ")))
	}
	return problems
}

func supportsOS(supported []string, goos string) bool {
	goos = normalizeOS(goos)
	for _, s := range supported {
		if normalizeOS(s) == goos {
			return true
		}
	}
	return false
}

func normalizeOS(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := osAliases[name]; ok {
		return alias
	}
	return name
}
