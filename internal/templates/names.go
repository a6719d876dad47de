package templates

import (
	"fmt"
	"unicode"
)

// ValidateProjectName checks that name is usable as a project directory
// name: it starts with a letter and holds only letters, digits, '-', '_'
// and '.'.
func ValidateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}

	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' && r != '.' {
			return fmt.Errorf("invalid project name %q: contains invalid character %q", name, r)
		}
	}

	if !unicode.IsLetter([]rune(name)[0]) {
		return fmt.Errorf("invalid project name %q: must start with a letter", name)
	}

	return nil
}
