package cmd

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	oerrors "github.com/opmodel/projgen/internal/errors"
)

// parseValues merges a YAML values file with --set key=value pairs. Pairs
// override the file. Values from --set stay strings; the engine coerces
// them to the declared variable type.
func parseValues(file string, sets []string) (map[string]any, error) {
	values := map[string]any{}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("values file %s: %w", file, oerrors.ErrNotFound)
			}
			return nil, fmt.Errorf("reading values file: %w", err)
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("values file %s: %w", file, oerrors.Wrap(oerrors.ErrValidation, err.Error()))
		}
		if values == nil {
			values = map[string]any{}
		}
	}

	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, oerrors.Wrap(oerrors.ErrValidation, fmt.Sprintf("invalid --set %q: expected key=value", set))
		}
		values[key] = value
	}
	return values, nil
}
