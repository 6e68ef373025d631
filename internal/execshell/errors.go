package execshell

import (
	"errors"
	"fmt"
	"strings"
)

const (
	loggerNotConfiguredMessageConstant         = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant  = "shell executor command runner not configured"
	executableNotFoundMessageConstant          = "executable not found"
	programNameRequiredMessageConstant         = "program name is required"
	unsupportedShellDialectMessageConstant     = "unsupported shell dialect"
	executableNotFoundTemplateConstant         = "'%s' program not found. Is it installed?"
	commandFailedTemplateConstant              = "%s failed with exit code=%s signal=%s:\n%s"
	commandFailedStandardErrorTemplateConstant = "%s\n%s"
	commandExecutionFailedTemplateConstant     = "%s could not be started:\n%s\n%v"
	unsupportedShellDialectTemplateConstant    = "%s: %d"
	invocationRenderingTemplateConstant        = "[%s]"
	invocationRenderingSeparatorConstant       = ", "
	absentValueLabelConstant                   = "none"
)

var (
	// ErrLoggerNotConfigured indicates that a ShellExecutor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates that a ShellExecutor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrExecutableNotFound matches every ExecutableNotFoundError.
	ErrExecutableNotFound = errors.New(executableNotFoundMessageConstant)
	// ErrProgramNameRequired indicates an empty program name was supplied to the Locator.
	ErrProgramNameRequired = errors.New(programNameRequiredMessageConstant)
	// ErrUnsupportedShellDialect matches every UnsupportedDialectError.
	ErrUnsupportedShellDialect = errors.New(unsupportedShellDialectMessageConstant)
)

// ExecutableNotFoundError reports that a program is absent from the search path.
type ExecutableNotFoundError struct {
	ProgramName string
	Cause       error
}

// Error describes the missing program in user-facing terms.
func (notFoundError *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf(executableNotFoundTemplateConstant, notFoundError.ProgramName)
}

// Is matches ErrExecutableNotFound.
func (notFoundError *ExecutableNotFoundError) Is(target error) bool {
	return target == ErrExecutableNotFound
}

// Unwrap exposes the lookup failure.
func (notFoundError *ExecutableNotFoundError) Unwrap() error {
	return notFoundError.Cause
}

// UnsupportedDialectError reports a shell dialect the escaper does not know.
type UnsupportedDialectError struct {
	Dialect ShellDialect
}

// Error describes the unsupported dialect.
func (dialectError *UnsupportedDialectError) Error() string {
	return fmt.Sprintf(unsupportedShellDialectTemplateConstant, unsupportedShellDialectMessageConstant, int(dialectError.Dialect))
}

// Is matches ErrUnsupportedShellDialect.
func (dialectError *UnsupportedDialectError) Is(target error) bool {
	return target == ErrUnsupportedShellDialect
}

// CommandFailedError reports a command that exited non-zero or was terminated by a signal.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error includes the program, resolved path, arguments, exit code, and signal.
func (failure CommandFailedError) Error() string {
	exitCodeLabel := absentValueLabelConstant
	if failure.Result.Exited() {
		exitCodeLabel = fmt.Sprintf("%d", failure.Result.ExitCode)
	}
	signalLabel := absentValueLabelConstant
	if !failure.Result.Exited() {
		signalLabel = failure.Result.TerminationSignal
	}

	message := fmt.Sprintf(
		commandFailedTemplateConstant,
		failure.Command.Name,
		exitCodeLabel,
		signalLabel,
		renderInvocation(failure.Result.ResolvedPath, failure.Command),
	)
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) == 0 {
		return message
	}
	return fmt.Sprintf(commandFailedStandardErrorTemplateConstant, message, trimmedStandardError)
}

// CommandExecutionError reports that a command could not be launched at all.
type CommandExecutionError struct {
	Command      ShellCommand
	ResolvedPath string
	Cause        error
}

// Error includes the program, resolved path, arguments, and launch failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(
		commandExecutionFailedTemplateConstant,
		failure.Command.Name,
		renderInvocation(failure.ResolvedPath, failure.Command),
		failure.Cause,
	)
}

// Unwrap exposes the launch failure.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// renderInvocation formats the resolved invocation so it can be reproduced manually.
func renderInvocation(resolvedPath string, command ShellCommand) string {
	invocation := command.Invocation()
	if len(resolvedPath) > 0 {
		invocation[0] = resolvedPath
	}
	return fmt.Sprintf(invocationRenderingTemplateConstant, strings.Join(invocation, invocationRenderingSeparatorConstant))
}
