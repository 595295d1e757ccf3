// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for all sortbench commands.
//
// STANDARDIZED PATTERN:
//   - ALWAYS return errors (never just print and return nil)
//   - Let main decide how to display errors and which exit code to use
//   - Use structured error types so ExitCodeFor can classify them

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/config"
	"github.com/jeranaias/sortbench/internal/detect"
	"github.com/jeranaias/sortbench/internal/history"
	"github.com/jeranaias/sortbench/internal/regime"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNotFoundError indicates a file or run was not found
	ExitNotFoundError = 7
	// ExitInterrupted indicates the run was cancelled by a signal
	ExitInterrupted = 8
	// ExitDataError indicates unusable benchmark results
	ExitDataError = 9
	// ExitDetectError indicates the CPU could not be described
	ExitDetectError = 10
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "plot", "history")
	Action  string // Action being performed (e.g., "render", "show")
	Reason  string // Human-readable reason
	Hint    string // Suggested fix (optional)
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	return msg
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string // Type of resource (e.g., "run", "file")
	ID       string // Identifier that was not found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// configError marks failures to load or save the configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// NewCommandErrorWithHint creates a command error carrying a suggested fix.
func NewCommandErrorWithHint(command, action, reason, hint string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Hint:    hint,
		Err:     err,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Reason:  reason,
		Example: example,
	}
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return NewValidationErrorWithExample(argName, "", "required argument missing", usage)
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCodeFor determines the exit code for an error returned by Run.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		parseErr      *benchmark.ParseError
		cfgErr        *configError
		cfgValidate   config.ValidateErrors
	)

	switch {
	case errors.Is(err, errInterrupted):
		return ExitInterrupted
	case errors.As(err, &validationErr):
		return ExitUsageError
	case errors.As(err, &cfgErr), errors.As(err, &cfgValidate):
		return ExitConfigError
	case errors.As(err, &notFoundErr),
		errors.Is(err, history.ErrNotFound),
		errors.Is(err, os.ErrNotExist):
		return ExitNotFoundError
	case errors.Is(err, history.ErrAmbiguousID):
		return ExitUsageError
	case errors.As(err, &parseErr),
		errors.Is(err, benchmark.ErrMissingColumn),
		errors.Is(err, benchmark.ErrEmptyTable),
		errors.Is(err, regime.ErrEmptyRegime):
		return ExitDataError
	case errors.Is(err, detect.ErrBrandUnknown),
		errors.Is(err, detect.ErrCacheUnknown):
		return ExitDetectError
	}

	return ExitGeneralError
}

// =============================================================================
// ERROR DISPLAY HELPERS
// =============================================================================

// DisplayError writes err as one line to w, followed by a hint or example
// line when the error carries one. In JSON mode it writes a JSON object.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}

	if jsonMode {
		DisplayErrorJSON(w, err)
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())

	var cmdErr *CommandError
	var validationErr *ValidationError
	switch {
	case errors.As(err, &cmdErr) && cmdErr.Hint != "":
		fmt.Fprintf(w, "%s %s\n", DimStyle.Render("hint:"), cmdErr.Hint)
	case errors.As(err, &validationErr) && validationErr.Example != "":
		fmt.Fprintf(w, "%s %s\n", DimStyle.Render("example:"), validationErr.Example)
	}
}

// DisplayErrorJSON outputs an error as JSON.
func DisplayErrorJSON(w io.Writer, err error) {
	output := map[string]interface{}{
		"error":     err.Error(),
		"success":   false,
		"exit_code": ExitCodeFor(err),
	}

	var (
		cmdErr        *CommandError
		validationErr *ValidationError
		notFoundErr   *NotFoundError
	)
	switch {
	case errors.As(err, &cmdErr):
		output["error_type"] = "command_error"
		output["command"] = cmdErr.Command
		output["action"] = cmdErr.Action
		output["reason"] = cmdErr.Reason
		if cmdErr.Hint != "" {
			output["hint"] = cmdErr.Hint
		}
	case errors.As(err, &validationErr):
		output["error_type"] = "validation_error"
		output["field"] = validationErr.Field
		output["value"] = validationErr.Value
		if validationErr.Example != "" {
			output["example"] = validationErr.Example
		}
	case errors.As(err, &notFoundErr):
		output["error_type"] = "not_found_error"
		output["resource"] = notFoundErr.Resource
		output["id"] = notFoundErr.ID
	default:
		output["error_type"] = "generic_error"
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output)
}
