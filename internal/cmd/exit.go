// Package cmd provides command implementations for the projgen CLI.
package cmd

// Exit codes returned by the projgen binary.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates a template, configuration or input value was rejected.
	ExitValidationError = 2

	// ExitRenderError indicates a project was only partially generated.
	ExitRenderError = 3

	// ExitPermissionDenied indicates insufficient filesystem permissions.
	ExitPermissionDenied = 4

	// ExitNotFound indicates a template or file was not found.
	ExitNotFound = 5
)
