package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/temirov/fleetctl/internal/hostenv"
	"github.com/temirov/fleetctl/internal/utils"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
	debugInvocationTemplateConstant        = "[debug] [%s]\n"
	debugInvocationSeparatorConstant       = ", "
)

// OSCommandRunner locates and spawns commands using os/exec.
type OSCommandRunner struct {
	executionContext hostenv.ExecutionContext
	locator          *Locator
}

// NewOSCommandRunner constructs a runner for the supplied execution context.
func NewOSCommandRunner(executionContext hostenv.ExecutionContext) *OSCommandRunner {
	return NewOSCommandRunnerWithLocator(executionContext, NewLocator())
}

// NewOSCommandRunnerWithLocator constructs a runner that resolves programs with the provided locator.
func NewOSCommandRunnerWithLocator(executionContext hostenv.ExecutionContext, locator *Locator) *OSCommandRunner {
	if locator == nil {
		locator = NewLocator()
	}
	return &OSCommandRunner{executionContext: executionContext, locator: locator}
}

// Run locates the program, spawns it, waits for termination, and reports its exit code or signal.
// Failures to locate or launch the program are returned as CommandExecutionError.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	resolvedPath, locateError := runner.locator.Locate(string(command.Name), true)
	if locateError != nil {
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: locateError}
	}

	commandArguments := append([]string{}, command.Details.Arguments...)
	if runner.executionContext.DebugEnabled() {
		debugInvocation := append([]string{resolvedPath}, commandArguments...)
		_, _ = fmt.Fprintf(runner.executionContext.ErrorWriter(), debugInvocationTemplateConstant, strings.Join(debugInvocation, debugInvocationSeparatorConstant))
	}

	executable := exec.CommandContext(executionContext, resolvedPath, commandArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}
	executable.Env = runner.buildEnvironment(command.Details.EnvironmentVariables)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	switch command.Details.StreamMode {
	case StreamModeInherit:
		executable.Stdin = runner.executionContext.StandardInput
		executable.Stdout = runner.executionContext.OutputWriter()
		executable.Stderr = runner.executionContext.ErrorWriter()
	default:
		executable.Stdout = &standardOutputBuffer
		executable.Stderr = &standardErrorBuffer
	}

	if command.Details.ErrorSink != nil {
		executable.Stderr = utils.NewFlushingWriter(command.Details.ErrorSink)
	}

	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := executable.Run()
	result := ExecutionResult{
		ResolvedPath:   resolvedPath,
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			result.ExitCode, result.TerminationSignal = describeTermination(exitError)
			return result, nil
		}
		return ExecutionResult{}, CommandExecutionError{Command: command, ResolvedPath: resolvedPath, Cause: runError}
	}

	result.ExitCode, result.TerminationSignal = describeTermination(executable.ProcessState)
	return result, nil
}

func (runner *OSCommandRunner) buildEnvironment(overrides map[string]string) []string {
	mergedEnvironment := append([]string{}, runner.executionContext.EnvironmentEntries()...)
	if len(overrides) == 0 {
		return mergedEnvironment
	}

	overrideKeys := make([]string, 0, len(overrides))
	for environmentKey := range overrides {
		overrideKeys = append(overrideKeys, environmentKey)
	}
	sort.Strings(overrideKeys)

	for _, environmentKey := range overrideKeys {
		mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, overrides[environmentKey]))
	}
	return mergedEnvironment
}

// terminationState is satisfied by *os.ProcessState and *exec.ExitError.
type terminationState interface {
	ExitCode() int
	Sys() any
}
