package elevation

import (
	"context"
	"io"

	"github.com/temirov/fleetctl/internal/execshell"
	"github.com/temirov/fleetctl/internal/hostenv"
)

const (
	privilegeExplanationMessageConstant = "Administrator privileges are required to run this command; you may be prompted for your password.\n"
)

// CommandExecutor runs a single command. *execshell.ShellExecutor satisfies it.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// ProgramLocator resolves program names. *execshell.Locator satisfies it.
type ProgramLocator interface {
	Locate(programName string, failOnMissing bool) (string, error)
}

// PrivilegeProbe reports whether the current process already holds elevated privileges.
type PrivilegeProbe func() bool

// Request describes one command to run elevated.
type Request struct {
	// Command is the program followed by its arguments. It is never modified.
	Command []string
	// SelfInvocation prefixes Command with the running executable's own invocation.
	SelfInvocation bool
	// ErrorSink receives the explanatory message and the elevated command's stderr.
	// The execution context's stderr is used when nil.
	ErrorSink io.Writer
}

// Elevator re-runs commands with administrative privileges.
type Elevator interface {
	Elevate(executionContext context.Context, request Request) (execshell.ExecutionResult, error)
}

// Dependencies are the collaborators shared by every Elevator variant.
type Dependencies struct {
	Executor CommandExecutor
	Locator  ProgramLocator
	Probe    PrivilegeProbe
}

// Select returns the Elevator variant for the host described by executionContext.
func Select(executionContext hostenv.ExecutionContext, dependencies Dependencies) (Elevator, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.Locator == nil {
		dependencies.Locator = execshell.NewLocator()
	}
	if dependencies.Probe == nil {
		dependencies.Probe = IsPrivileged
	}

	base := elevatorBase{hostContext: executionContext, dependencies: dependencies}
	if executionContext.IsWindows() {
		return &RunAsElevator{elevatorBase: base}, nil
	}
	return &SudoElevator{elevatorBase: base}, nil
}

type elevatorBase struct {
	hostContext  hostenv.ExecutionContext
	dependencies Dependencies
}

// prepare builds the invocation and resolves its program to an absolute path.
func (base elevatorBase) prepare(request Request) (string, []string, []string, error) {
	invocation := make([]string, 0, len(base.hostContext.SelfInvocation)+len(request.Command))
	if request.SelfInvocation {
		invocation = append(invocation, base.hostContext.SelfInvocation...)
	}
	invocation = append(invocation, request.Command...)
	if len(invocation) == 0 {
		return "", nil, invocation, ErrCommandRequired
	}

	resolvedPath, locateError := base.dependencies.Locator.Locate(invocation[0], true)
	if locateError != nil {
		return "", nil, invocation, locateError
	}
	return resolvedPath, invocation[1:], invocation, nil
}

func (base elevatorBase) errorSink(request Request) io.Writer {
	if request.ErrorSink != nil {
		return request.ErrorSink
	}
	return base.hostContext.ErrorWriter()
}

// runDirectly executes the resolved command in the current, already privileged process.
func (base elevatorBase) runDirectly(executionContext context.Context, resolvedPath string, arguments []string, request Request) (execshell.ExecutionResult, error) {
	return base.dependencies.Executor.Execute(executionContext, execshell.ShellCommand{
		Name: execshell.CommandName(resolvedPath),
		Details: execshell.CommandDetails{
			Arguments:  arguments,
			StreamMode: execshell.StreamModeInherit,
			ErrorSink:  request.ErrorSink,
		},
	})
}

func (base elevatorBase) fail(invocation []string, cause error) error {
	return &ElevationError{Command: invocation, Platform: base.hostContext.OperatingSystem, Cause: cause}
}
