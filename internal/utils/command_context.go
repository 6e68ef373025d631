package utils

import (
	"context"

	"github.com/temirov/fleetctl/internal/hostenv"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	executionContextKeyConstant             = commandContextKey("executionContext")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(parentContext context.Context) (string, bool) {
	if parentContext == nil {
		return "", false
	}
	configurationFilePath, configurationFilePathAvailable := parentContext.Value(configurationFilePathContextKeyConstant).(string)
	return configurationFilePath, configurationFilePathAvailable
}

// WithExecutionContext attaches the per-invocation host execution context.
func (accessor CommandContextAccessor) WithExecutionContext(parentContext context.Context, executionContext hostenv.ExecutionContext) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, executionContextKeyConstant, executionContext)
}

// ExecutionContext extracts the host execution context attached by WithExecutionContext.
func (accessor CommandContextAccessor) ExecutionContext(parentContext context.Context) (hostenv.ExecutionContext, bool) {
	if parentContext == nil {
		return hostenv.ExecutionContext{}, false
	}
	executionContext, executionContextAvailable := parentContext.Value(executionContextKeyConstant).(hostenv.ExecutionContext)
	return executionContext, executionContextAvailable
}
