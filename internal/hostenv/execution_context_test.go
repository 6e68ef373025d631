package hostenv_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fleetctl/internal/hostenv"
)

func TestMapEnvironmentLookupFallsBackToCaseInsensitiveMatch(testInstance *testing.T) {
	environment := hostenv.MapEnvironment{"ComSpec": `C:\Windows\system32\cmd.exe`}

	exactValue, exactFound := environment.Lookup("ComSpec")
	require.True(testInstance, exactFound)
	require.Equal(testInstance, `C:\Windows\system32\cmd.exe`, exactValue)

	foldedValue, foldedFound := environment.Lookup("COMSPEC")
	require.True(testInstance, foldedFound)
	require.Equal(testInstance, exactValue, foldedValue)

	_, missingFound := environment.Lookup("SHELL")
	require.False(testInstance, missingFound)
}

func TestMapEnvironmentEntriesAreSorted(testInstance *testing.T) {
	environment := hostenv.MapEnvironment{"B": "2", "A": "1"}
	require.Equal(testInstance, []string{"A=1", "B=2"}, environment.Entries())
}

func TestExecutionContextDebugEnabled(testInstance *testing.T) {
	testCases := []struct {
		name        string
		environment hostenv.MapEnvironment
		expected    bool
	}{
		{name: "unset", environment: hostenv.MapEnvironment{}, expected: false},
		{name: "empty", environment: hostenv.MapEnvironment{"DEBUG": ""}, expected: false},
		{name: "set", environment: hostenv.MapEnvironment{"DEBUG": "1"}, expected: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executionContext := hostenv.ExecutionContext{Environment: testCase.environment}
			require.Equal(testInstance, testCase.expected, executionContext.DebugEnabled())
		})
	}
}

func TestExecutionContextWritersDefaultToDiscard(testInstance *testing.T) {
	executionContext := hostenv.ExecutionContext{}
	require.Equal(testInstance, io.Discard, executionContext.ErrorWriter())
	require.Equal(testInstance, io.Discard, executionContext.OutputWriter())

	errorBuffer := &bytes.Buffer{}
	executionContext.StandardError = errorBuffer
	require.Same(testInstance, errorBuffer, executionContext.ErrorWriter())
}

func TestExecutionContextIsWindows(testInstance *testing.T) {
	require.True(testInstance, hostenv.ExecutionContext{OperatingSystem: "windows"}.IsWindows())
	require.False(testInstance, hostenv.ExecutionContext{OperatingSystem: "linux"}.IsWindows())
	require.False(testInstance, hostenv.ExecutionContext{}.IsWindows())
}

func TestDetectDescribesRunningProcess(testInstance *testing.T) {
	executionContext := hostenv.Detect()
	require.NotEmpty(testInstance, executionContext.InvocationID)
	require.NotEmpty(testInstance, executionContext.OperatingSystem)
	require.Len(testInstance, executionContext.SelfInvocation, 1)
	require.Nil(testInstance, executionContext.ProxyTunnel)
}
