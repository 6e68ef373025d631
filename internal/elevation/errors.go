package elevation

import (
	"errors"
	"fmt"
	"strings"
)

const (
	elevationFailedMessageConstant    = "elevation failed"
	commandRequiredMessageConstant    = "elevation requires a command"
	executorRequiredMessageConstant   = "elevation requires a command executor"
	elevationErrorTemplateConstant    = "elevated %s on %s failed: %v"
	elevationCommandSeparatorConstant = " "
)

var (
	// ErrElevationFailed matches every ElevationError.
	ErrElevationFailed = errors.New(elevationFailedMessageConstant)
	// ErrCommandRequired indicates an empty command was supplied for elevation.
	ErrCommandRequired = errors.New(commandRequiredMessageConstant)
	// ErrExecutorNotConfigured indicates Select was called without an executor.
	ErrExecutorNotConfigured = errors.New(executorRequiredMessageConstant)
)

// ElevationError reports that a command could not be run with elevated privileges.
type ElevationError struct {
	Command  []string
	Platform string
	Cause    error
}

// Error includes the command, the host platform, and the underlying failure.
func (elevationError *ElevationError) Error() string {
	return fmt.Sprintf(elevationErrorTemplateConstant, strings.Join(elevationError.Command, elevationCommandSeparatorConstant), elevationError.Platform, elevationError.Cause)
}

// Is matches ErrElevationFailed.
func (elevationError *ElevationError) Is(target error) bool {
	return target == ErrElevationFailed
}

// Unwrap exposes the underlying failure.
func (elevationError *ElevationError) Unwrap() error {
	return elevationError.Cause
}
