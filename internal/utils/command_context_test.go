package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fleetctl/internal/hostenv"
	"github.com/temirov/fleetctl/internal/utils"
)

func TestCommandContextAccessor(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	testInstance.Run("empty_context", func(testInstance *testing.T) {
		_, pathAvailable := accessor.ConfigurationFilePath(context.Background())
		require.False(testInstance, pathAvailable)

		_, executionContextAvailable := accessor.ExecutionContext(context.Background())
		require.False(testInstance, executionContextAvailable)
	})

	testInstance.Run("round_trip", func(testInstance *testing.T) {
		executionContext := hostenv.ExecutionContext{
			InvocationID:    "invocation",
			OperatingSystem: "linux",
			Environment:     hostenv.MapEnvironment{"SHELL": "/bin/bash"},
		}

		commandContext := accessor.WithConfigurationFilePath(context.Background(), "/etc/fleetctl/config.yaml")
		commandContext = accessor.WithExecutionContext(commandContext, executionContext)

		configurationFilePath, pathAvailable := accessor.ConfigurationFilePath(commandContext)
		require.True(testInstance, pathAvailable)
		require.Equal(testInstance, "/etc/fleetctl/config.yaml", configurationFilePath)

		storedExecutionContext, executionContextAvailable := accessor.ExecutionContext(commandContext)
		require.True(testInstance, executionContextAvailable)
		require.Equal(testInstance, "invocation", storedExecutionContext.InvocationID)
		shellValue, shellPresent := storedExecutionContext.LookupEnvironment("SHELL")
		require.True(testInstance, shellPresent)
		require.Equal(testInstance, "/bin/bash", shellValue)
	})
}
