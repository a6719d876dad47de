// Package version provides version information for projgen.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/opmodel/projgen/internal/schema"
)

// Build-time variables set via ldflags.
var (
	// Version is the CLI version (set via ldflags).
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// Info contains version information.
type Info struct {
	// Version is the CLI version (set via ldflags).
	Version string `json:"version"`

	// GitCommit is the git commit hash.
	GitCommit string `json:"gitCommit"`

	// BuildDate is the build timestamp.
	BuildDate string `json:"buildDate"`

	// GoVersion is the Go version used to build.
	GoVersion string `json:"goVersion"`

	// SchemaVersions lists the template schema versions this build accepts.
	SchemaVersions []string `json:"schemaVersions"`

	// Dependencies maps selected module paths to the versions linked into the binary.
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// trackedModules are reported by Get when build info is available.
var trackedModules = []string{
	"cuelang.org/go",
	"github.com/expr-lang/expr",
	"github.com/santhosh-tekuri/jsonschema/v6",
}

// Get returns the current version information.
func Get() Info {
	info := Info{
		Version:        Version,
		GitCommit:      GitCommit,
		BuildDate:      BuildDate,
		GoVersion:      runtime.Version(),
		SchemaVersions: schema.SupportedSchemaVersions(),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.Dependencies = dependencyVersions(bi.Deps)
	}
	return info
}

func dependencyVersions(deps []*debug.Module) map[string]string {
	out := map[string]string{}
	for _, d := range deps {
		for _, path := range trackedModules {
			if d.Path != path {
				continue
			}
			if d.Replace != nil {
				d = d.Replace
			}
			out[path] = d.Version
		}
	}
	return out
}

// String returns a human-readable version string.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "projgen version %s\n", i.Version)
	fmt.Fprintf(&sb, "  Commit:    %s\n", i.GitCommit)
	fmt.Fprintf(&sb, "  Built:     %s\n", i.BuildDate)
	fmt.Fprintf(&sb, "  Go:        %s\n", i.GoVersion)
	fmt.Fprintf(&sb, "  Schemas:   %s", strings.Join(i.SchemaVersions, ", "))
	for _, path := range trackedModules {
		if v, ok := i.Dependencies[path]; ok {
			fmt.Fprintf(&sb, "\n  %s %s", path, v)
		}
	}
	return sb.String()
}
