package hostexec_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/fleetctl/cmd/cli/hostexec"
	"github.com/temirov/fleetctl/internal/execshell"
)

const (
	testGitPathConstant               = "/usr/bin/git"
	testMakePathConstant              = "/usr/bin/make"
	testAbsentProgramConstant         = "absent-tool"
	testSkippedMessageConstant        = "program not found; skipping"
	testWhichArgumentsMessageConstant = "which requires at least one program name"
)

func TestWhichCommand(testInstance *testing.T) {
	testCases := []struct {
		name              string
		arguments         []string
		expectedOutput    string
		expectedError     error
		expectedMessage   string
		expectedWarnCount int
		expectUsage       bool
	}{
		{
			name:           "resolves_every_program",
			arguments:      []string{"git", "make"},
			expectedOutput: testGitPathConstant + "\n" + testMakePathConstant + "\n",
		},
		{
			name:           "missing_program_fails",
			arguments:      []string{"git", testAbsentProgramConstant},
			expectedOutput: testGitPathConstant + "\n",
			expectedError:  execshell.ErrExecutableNotFound,
		},
		{
			name:              "soft_skips_missing_program",
			arguments:         []string{"--soft", testAbsentProgramConstant, "git"},
			expectedOutput:    testGitPathConstant + "\n",
			expectedWarnCount: 1,
		},
		{
			name:           "soft_disabled_explicitly",
			arguments:      []string{"--soft=no", testAbsentProgramConstant},
			expectedOutput: "",
			expectedError:  execshell.ErrExecutableNotFound,
		},
		{
			name:            "requires_arguments",
			arguments:       []string{},
			expectedMessage: testWhichArgumentsMessageConstant,
			expectUsage:     true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observedCore, observedLogs := observer.New(zapcore.DebugLevel)
			builder := hostexec.WhichCommandBuilder{
				LoggerProvider: func() *zap.Logger { return zap.New(observedCore) },
				Locator:        newStaticLocator(map[string]string{"git": testGitPathConstant, "make": testMakePathConstant}),
			}
			command := buildCommand(testInstance, func() (*cobra.Command, error) { return builder.Build() })

			outcome := executeCommand(testInstance, command, nil, "", testCase.arguments...)

			switch {
			case testCase.expectedError != nil:
				require.ErrorIs(testInstance, outcome.executionError, testCase.expectedError)
			case len(testCase.expectedMessage) > 0:
				require.EqualError(testInstance, outcome.executionError, testCase.expectedMessage)
			default:
				require.NoError(testInstance, outcome.executionError)
			}

			if testCase.expectUsage {
				require.Contains(testInstance, outcome.standardOutput, testUsageSnippetConstant)
				return
			}
			require.Equal(testInstance, testCase.expectedOutput, outcome.standardOutput)

			warnings := observedLogs.FilterLevelExact(zapcore.WarnLevel).All()
			require.Len(testInstance, warnings, testCase.expectedWarnCount)
			for _, warning := range warnings {
				require.Equal(testInstance, testSkippedMessageConstant, warning.Message)
				require.Equal(testInstance, testAbsentProgramConstant, warning.ContextMap()["program"])
			}
		})
	}
}
