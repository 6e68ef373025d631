package hostexec_test

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/fleetctl/internal/execshell"
	"github.com/temirov/fleetctl/internal/hostenv"
	"github.com/temirov/fleetctl/internal/utils"
)

const testUsageSnippetConstant = "Usage:"

type commandOutcome struct {
	standardOutput string
	standardError  string
	executionError error
}

func executeCommand(testInstance *testing.T, command *cobra.Command, executionContext *hostenv.ExecutionContext, standardInput string, arguments ...string) commandOutcome {
	testInstance.Helper()

	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(errorBuffer)
	command.SetIn(strings.NewReader(standardInput))
	command.SilenceUsage = true
	command.SilenceErrors = true

	commandContext := context.Background()
	if executionContext != nil {
		commandContext = utils.NewCommandContextAccessor().WithExecutionContext(commandContext, *executionContext)
	}
	command.SetContext(commandContext)
	command.SetArgs(arguments)

	executionError := command.Execute()
	return commandOutcome{
		standardOutput: outputBuffer.String(),
		standardError:  errorBuffer.String(),
		executionError: executionError,
	}
}

func buildCommand(testInstance *testing.T, build func() (*cobra.Command, error)) *cobra.Command {
	testInstance.Helper()
	command, buildError := build()
	require.NoError(testInstance, buildError)
	return command
}

type executorResponse struct {
	result execshell.ExecutionResult
	err    error
}

// recordingExecutor records every command and replays queued responses; the last response repeats.
type recordingExecutor struct {
	responses []executorResponse
	commands  []execshell.ShellCommand
}

func (executor *recordingExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.commands = append(executor.commands, command)
	if len(executor.responses) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	response := executor.responses[0]
	if len(executor.responses) > 1 {
		executor.responses = executor.responses[1:]
	}
	return response.result, response.err
}

type recordingSleeper struct {
	delays []time.Duration
}

func (sleeper *recordingSleeper) Sleep(_ context.Context, delay time.Duration) error {
	sleeper.delays = append(sleeper.delays, delay)
	return nil
}

func newStaticLocator(programPaths map[string]string) *execshell.Locator {
	return execshell.NewLocatorWithLookup(func(programName string) (string, error) {
		if programPath, found := programPaths[programName]; found {
			return programPath, nil
		}
		return "", &exec.Error{Name: programName, Err: exec.ErrNotFound}
	}, nil)
}
