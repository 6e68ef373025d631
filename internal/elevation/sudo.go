package elevation

import (
	"context"
	"io"

	"github.com/temirov/fleetctl/internal/execshell"
)

const (
	sudoProgramNameConstant             = execshell.CommandName("sudo")
	sudoPreserveEnvironmentFlagConstant = "-E"
	sudoNonInteractiveFlagConstant      = "-n"
	posixShellPathConstant              = "/bin/sh"
	posixShellCommandFlagConstant       = "-c"
)

// SudoElevator elevates through sudo on POSIX hosts.
type SudoElevator struct {
	elevatorBase
}

// Elevate runs the command as `sudo -E /bin/sh -c '<escaped line>'`. When stdin is not interactive,
// -n makes sudo fail instead of waiting for a password nobody can type.
func (elevator *SudoElevator) Elevate(executionContext context.Context, request Request) (execshell.ExecutionResult, error) {
	resolvedPath, arguments, invocation, prepareError := elevator.prepare(request)
	if prepareError != nil {
		return execshell.ExecutionResult{}, elevator.fail(invocation, prepareError)
	}

	if elevator.dependencies.Probe() {
		executionResult, executionError := elevator.runDirectly(executionContext, resolvedPath, arguments, request)
		if executionError != nil {
			return execshell.ExecutionResult{}, elevator.fail(invocation, executionError)
		}
		return executionResult, nil
	}

	commandLine, formatError := execshell.FormatCommandLine(execshell.ShellDialectPOSIX, resolvedPath, arguments)
	if formatError != nil {
		return execshell.ExecutionResult{}, elevator.fail(invocation, formatError)
	}

	errorSink := elevator.errorSink(request)
	_, _ = io.WriteString(errorSink, privilegeExplanationMessageConstant)

	sudoArguments := []string{sudoPreserveEnvironmentFlagConstant}
	if !elevator.hostContext.Interactive {
		sudoArguments = append(sudoArguments, sudoNonInteractiveFlagConstant)
	}
	sudoArguments = append(sudoArguments, posixShellPathConstant, posixShellCommandFlagConstant, commandLine)

	executionResult, executionError := elevator.dependencies.Executor.Execute(executionContext, execshell.ShellCommand{
		Name: sudoProgramNameConstant,
		Details: execshell.CommandDetails{
			Arguments:  sudoArguments,
			StreamMode: execshell.StreamModeInherit,
			ErrorSink:  request.ErrorSink,
		},
	})
	if executionError != nil {
		return execshell.ExecutionResult{}, elevator.fail(invocation, executionError)
	}
	return executionResult, nil
}
