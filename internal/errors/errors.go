// Package errors provides sentinel and typed errors for projgen.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for known conditions.
var (
	// ErrLoad indicates a template file could not be read or parsed.
	ErrLoad = errors.New("load error")

	// ErrValidation indicates a template failed schema, reference or security checks.
	ErrValidation = errors.New("validation error")

	// ErrResolution indicates user input could not be resolved against a template.
	ErrResolution = errors.New("variable resolution error")

	// ErrRender indicates a string template failed to render.
	ErrRender = errors.New("rendering error")

	// ErrPermission indicates insufficient filesystem permissions.
	ErrPermission = errors.New("permission denied")

	// ErrNotFound indicates a template or file was not found.
	ErrNotFound = errors.New("not found")
)

// LoadKind classifies a LoadError.
type LoadKind string

const (
	// LoadMissing means the file does not exist.
	LoadMissing LoadKind = "file not found"

	// LoadEmpty means the file exists but holds no document.
	LoadEmpty LoadKind = "empty file"

	// LoadSyntax means the document could not be parsed.
	LoadSyntax LoadKind = "invalid syntax"

	// LoadIO means the file could not be read.
	LoadIO LoadKind = "I/O error"
)

// LoadError reports a template file that could not be turned into a document.
type LoadError struct {
	Path  string
	Kind  LoadKind
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Cause)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is matches ErrLoad, and ErrNotFound for missing files.
func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrLoad:
		return true
	case ErrNotFound:
		return e.Kind == LoadMissing
	}
	return false
}

// ValidationError carries every problem found in a template document.
type ValidationError struct {
	// Path is the template file, empty for in-memory documents.
	Path string

	// Errors lists each distinct problem.
	Errors []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	if e.Path != "" {
		b.WriteString(" for ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(strings.Join(e.Errors, "; "))
	return b.String()
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError returns a ValidationError, or nil when msgs is empty.
func NewValidationError(path string, msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return &ValidationError{Path: path, Errors: msgs}
}

// ResolutionError carries every problem found while resolving variables.
type ResolutionError struct {
	Errors []string
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return "variable resolution failed: " + strings.Join(e.Errors, "; ")
}

// Is matches ErrResolution.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// RenderError reports a template string that failed to render.
type RenderError struct {
	// Name identifies the template being rendered (file name, "string", ...).
	Name string

	// Line is the 1-based line of the failure, 0 when unknown.
	Line int

	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	loc := e.Name
	if loc == "" {
		loc = "template"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if e.Cause != nil {
		return fmt.Sprintf("rendering %s: %s: %v", loc, e.Message, e.Cause)
	}
	return fmt.Sprintf("rendering %s: %s", loc, e.Message)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Is matches ErrRender.
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

// DetailError captures structured error information for CLI presentation.
type DetailError struct {
	// Type is the error category (required).
	Type string

	// Message is the specific description (required).
	Message string

	// Location is the file path (optional).
	Location string

	// Details lists additional problems, one per line (optional).
	Details []string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString("Error: ")
	b.WriteString(e.Type)
	b.WriteString("\n")

	if e.Location != "" {
		b.WriteString("  Location: ")
		b.WriteString(e.Location)
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	for _, d := range e.Details {
		b.WriteString("    - ")
		b.WriteString(d)
		b.WriteString("\n")
	}

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// Messages flattens aggregated errors into their individual messages.
// Errors that do not aggregate yield their own message.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Errors
	}
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Errors
	}
	return []string{err.Error()}
}

// Wrap wraps an error with a sentinel error type.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}
