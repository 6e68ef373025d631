package hostexec

import (
	"context"
	"errors"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fleetctl/internal/execshell"
	"github.com/temirov/fleetctl/internal/hostenv"
	"github.com/temirov/fleetctl/internal/ui"
	"github.com/temirov/fleetctl/internal/utils"
)

const (
	missingCommandMessageConstant = "a program to run is required after the flags"
)

var errMissingCommand = errors.New(missingCommandMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandExecutor runs a single command. *execshell.ShellExecutor satisfies it.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// ProgramLocator resolves program names. *execshell.Locator satisfies it.
type ProgramLocator interface {
	Locate(programName string, failOnMissing bool) (string, error)
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveHumanReadableLogging(provider func() bool) bool {
	if provider == nil {
		return false
	}
	return provider()
}

// resolveExecutionContext returns the execution context attached by the root command, or a freshly
// detected one, with its streams bound to the command so output redirection applies.
func resolveExecutionContext(command *cobra.Command) hostenv.ExecutionContext {
	executionContext, available := utils.NewCommandContextAccessor().ExecutionContext(command.Context())
	if !available {
		executionContext = hostenv.Detect()
	}
	executionContext.StandardInput = command.InOrStdin()
	executionContext.StandardOutput = command.OutOrStdout()
	executionContext.StandardError = command.ErrOrStderr()
	return executionContext
}

func resolveLocator(locator ProgramLocator) ProgramLocator {
	if locator != nil {
		return locator
	}
	return execshell.NewLocator()
}

func resolveExecutor(executor CommandExecutor, logger *zap.Logger, executionContext hostenv.ExecutionContext, humanReadableLogging bool) (CommandExecutor, error) {
	if executor != nil {
		return executor, nil
	}

	var options []execshell.ShellExecutorOption
	if humanReadableLogging {
		options = append(options, execshell.WithCommandEventObservers(ui.NewConsoleCommandEventLogger(logger)))
	}

	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(executionContext), options...)
}

func displayCommandHelp(command *cobra.Command) error {
	if command == nil {
		return nil
	}
	return command.Help()
}

func toggleFlagValue(command *cobra.Command, flagName string) bool {
	flag := command.Flags().Lookup(flagName)
	if flag == nil {
		return false
	}
	enabled, parseError := strconv.ParseBool(flag.Value.String())
	return parseError == nil && enabled
}
