package hostexec_test

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/fleetctl/cmd/cli/hostexec"
	"github.com/temirov/fleetctl/internal/elevation"
	"github.com/temirov/fleetctl/internal/execshell"
	"github.com/temirov/fleetctl/internal/hostenv"
)

const (
	testAptPathConstant              = "/usr/bin/apt-get"
	testSelfPathConstant             = "/opt/fleet/fleetctl"
	testPrivilegeExplanationConstant = "Administrator privileges are required to run this command; you may be prompted for your password.\n"
)

func TestElevateCommand(testInstance *testing.T) {
	testCases := []struct {
		name                string
		privileged          bool
		interactive         bool
		arguments           []string
		expectedName        execshell.CommandName
		expectedArguments   []string
		expectedErrorOutput string
	}{
		{
			name:                "sudo_non_interactive",
			arguments:           []string{"apt-get", "install", "-y", "curl"},
			expectedName:        execshell.CommandName("sudo"),
			expectedArguments:   []string{"-E", "-n", "/bin/sh", "-c", testAptPathConstant + " install -y curl"},
			expectedErrorOutput: testPrivilegeExplanationConstant,
		},
		{
			name:                "sudo_interactive",
			interactive:         true,
			arguments:           []string{"apt-get", "install", "build essentials"},
			expectedName:        execshell.CommandName("sudo"),
			expectedArguments:   []string{"-E", "/bin/sh", "-c", testAptPathConstant + " install 'build essentials'"},
			expectedErrorOutput: testPrivilegeExplanationConstant,
		},
		{
			name:                "self_invocation",
			arguments:           []string{"--self", "agent", "install"},
			expectedName:        execshell.CommandName("sudo"),
			expectedArguments:   []string{"-E", "-n", "/bin/sh", "-c", testSelfPathConstant + " agent install"},
			expectedErrorOutput: testPrivilegeExplanationConstant,
		},
		{
			name:              "already_privileged",
			privileged:        true,
			arguments:         []string{"apt-get", "update"},
			expectedName:      execshell.CommandName(testAptPathConstant),
			expectedArguments: []string{"update"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingExecutor{}
			builder := hostexec.ElevateCommandBuilder{
				Executor:       executor,
				Locator:        newStaticLocator(map[string]string{"apt-get": testAptPathConstant, testSelfPathConstant: testSelfPathConstant}),
				PrivilegeProbe: func() bool { return testCase.privileged },
			}
			command := buildCommand(testInstance, func() (*cobra.Command, error) { return builder.Build() })

			executionContext := hostenv.ExecutionContext{
				OperatingSystem: "linux",
				Environment:     hostenv.MapEnvironment{},
				Interactive:     testCase.interactive,
				SelfInvocation:  []string{testSelfPathConstant},
			}
			outcome := executeCommand(testInstance, command, &executionContext, "", testCase.arguments...)
			require.NoError(testInstance, outcome.executionError)

			require.Len(testInstance, executor.commands, 1)
			executedCommand := executor.commands[0]
			require.Equal(testInstance, testCase.expectedName, executedCommand.Name)
			require.Equal(testInstance, testCase.expectedArguments, executedCommand.Details.Arguments)
			require.Equal(testInstance, execshell.StreamModeInherit, executedCommand.Details.StreamMode)
			require.NotNil(testInstance, executedCommand.Details.ErrorSink)
			require.Equal(testInstance, testCase.expectedErrorOutput, outcome.standardError)
		})
	}
}

func TestElevateCommandFailures(testInstance *testing.T) {
	testInstance.Run("missing_program", func(testInstance *testing.T) {
		executor := &recordingExecutor{}
		builder := hostexec.ElevateCommandBuilder{
			Executor:       executor,
			Locator:        newStaticLocator(map[string]string{}),
			PrivilegeProbe: func() bool { return false },
		}
		command := buildCommand(testInstance, func() (*cobra.Command, error) { return builder.Build() })

		executionContext := hostenv.ExecutionContext{OperatingSystem: "linux", Environment: hostenv.MapEnvironment{}}
		outcome := executeCommand(testInstance, command, &executionContext, "", "apt-get", "update")
		require.ErrorIs(testInstance, outcome.executionError, elevation.ErrElevationFailed)
		require.ErrorIs(testInstance, outcome.executionError, execshell.ErrExecutableNotFound)
		require.True(testInstance, strings.HasPrefix(outcome.executionError.Error(), "elevate failed: "))
		require.Empty(testInstance, executor.commands)
	})

	testInstance.Run("missing_command", func(testInstance *testing.T) {
		builder := hostexec.ElevateCommandBuilder{Executor: &recordingExecutor{}}
		command := buildCommand(testInstance, func() (*cobra.Command, error) { return builder.Build() })

		outcome := executeCommand(testInstance, command, nil, "")
		require.EqualError(testInstance, outcome.executionError, testRunMissingCommandMessageConstant)
		require.Contains(testInstance, outcome.standardOutput, testUsageSnippetConstant)
	})
}
