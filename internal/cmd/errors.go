package cmd

import (
	"errors"

	oerrors "github.com/opmodel/projgen/internal/errors"
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Err  error
	Code int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	// NotFound and Permission come first: a LoadError can match them and ErrLoad.
	switch {
	case errors.Is(err, oerrors.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, oerrors.ErrPermission):
		return ExitPermissionDenied
	case errors.Is(err, oerrors.ErrValidation),
		errors.Is(err, oerrors.ErrResolution),
		errors.Is(err, oerrors.ErrLoad):
		return ExitValidationError
	case errors.Is(err, oerrors.ErrRender):
		return ExitRenderError
	default:
		return ExitGeneralError
	}
}

// detailFor converts a domain error into a DetailError for presentation.
func detailFor(err error, location, hint string) *oerrors.DetailError {
	d := &oerrors.DetailError{
		Location: location,
		Hint:     hint,
		Cause:    err,
	}

	msgs := oerrors.Messages(err)
	var ve *oerrors.ValidationError
	var re *oerrors.ResolutionError
	switch {
	case errors.As(err, &ve):
		d.Type = "validation failed"
		d.Message = "template is invalid"
		d.Details = msgs
	case errors.As(err, &re):
		d.Type = "invalid values"
		d.Message = "variables could not be resolved"
		d.Details = msgs
	case errors.Is(err, oerrors.ErrNotFound):
		d.Type = "not found"
		d.Message = err.Error()
	case errors.Is(err, oerrors.ErrLoad):
		d.Type = "load failed"
		d.Message = err.Error()
	default:
		d.Type = "error"
		d.Message = err.Error()
	}
	return d
}
