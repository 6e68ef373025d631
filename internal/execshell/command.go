package execshell

import (
	"context"
	"io"
)

// CommandName identifies the program a ShellCommand runs.
type CommandName string

// StreamMode selects how a child's standard streams are connected.
type StreamMode int

const (
	// StreamModeCapture buffers stdout and stderr into the ExecutionResult.
	StreamModeCapture StreamMode = iota
	// StreamModeInherit connects the child to the execution context streams.
	StreamModeInherit
)

// FailurePolicy decides whether an abnormal termination is an error or data.
type FailurePolicy int

const (
	// FailurePolicyFailOnAbnormalTermination reports non-zero exits and signals as CommandFailedError.
	FailurePolicyFailOnAbnormalTermination FailurePolicy = iota
	// FailurePolicyReturnTerminationStatus returns the exit code or signal to the caller.
	FailurePolicyReturnTerminationStatus
)

// CommandDetails describes the arguments and spawn options of a command.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	StreamMode           StreamMode
	// ErrorSink receives the child's stderr when set. It is appended to and never closed.
	ErrorSink     io.Writer
	FailurePolicy FailurePolicy
}

// ShellCommand pairs a program name with its details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// Invocation returns the program name followed by its arguments.
func (command ShellCommand) Invocation() []string {
	invocation := make([]string, 0, len(command.Details.Arguments)+1)
	invocation = append(invocation, string(command.Name))
	return append(invocation, command.Details.Arguments...)
}

// ExecutionResult captures the observable results of a finished command.
// ExitCode is -1 when the child was terminated by a signal.
type ExecutionResult struct {
	ResolvedPath      string
	StandardOutput    string
	StandardError     string
	ExitCode          int
	TerminationSignal string
}

// Exited reports whether the child terminated on its own with an exit code.
func (result ExecutionResult) Exited() bool {
	return len(result.TerminationSignal) == 0
}

// Abnormal reports whether the child exited non-zero or died by a signal.
func (result ExecutionResult) Abnormal() bool {
	return result.ExitCode != 0 || len(result.TerminationSignal) > 0
}

// CommandRunner executes a single command and normalizes its termination.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}
