package execshell

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	logFieldCommandNameConstant       = "command"
	logFieldArgumentsConstant         = "arguments"
	logFieldWorkingDirectoryConstant  = "working_directory"
	logFieldResolvedPathConstant      = "resolved_path"
	logFieldExitCodeConstant          = "exit_code"
	logFieldTerminationSignalConstant = "signal"
)

// ShellExecutor runs commands through a CommandRunner, logging each lifecycle stage
// and applying the command's failure policy.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observer  CommandEventObserver
	formatter CommandMessageFormatter
}

// ShellExecutorOption customizes a ShellExecutor.
type ShellExecutorOption func(*ShellExecutor)

// WithCommandEventObservers registers observers notified of every command lifecycle event.
func WithCommandEventObservers(observers ...CommandEventObserver) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		executor.observer = combineObservers(observers)
	}
}

// NewShellExecutor constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ShellExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:   logger,
		runner:   runner,
		observer: noopCommandEventObserver{},
	}
	for _, option := range options {
		if option != nil {
			option(executor)
		}
	}
	return executor, nil
}

// Execute runs the command. Launch failures are returned as CommandExecutionError; abnormal
// terminations are returned as CommandFailedError unless the command's FailurePolicy asks for the
// termination status to be returned as data.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandFields := []zap.Field{
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	}

	executor.logger.Debug(executor.formatter.BuildStartedMessage(command), commandFields...)
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(command, runError), append(commandFields, zap.Error(runError))...)
		executor.observer.CommandExecutionFailed(command, runError)

		var executionError CommandExecutionError
		if errors.As(runError, &executionError) {
			return ExecutionResult{}, executionError
		}
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	resultFields := append(commandFields,
		zap.String(logFieldResolvedPathConstant, executionResult.ResolvedPath),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
		zap.String(logFieldTerminationSignalConstant, executionResult.TerminationSignal),
	)
	executor.observer.CommandCompleted(command, executionResult)

	if !executionResult.Abnormal() {
		executor.logger.Info(executor.formatter.BuildSuccessMessage(command), resultFields...)
		return executionResult, nil
	}

	executor.logger.Warn(executor.formatter.BuildFailureMessage(command, executionResult), resultFields...)
	if command.Details.FailurePolicy == FailurePolicyReturnTerminationStatus {
		return executionResult, nil
	}
	return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
}
