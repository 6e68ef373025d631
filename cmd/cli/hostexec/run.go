package hostexec

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fleetctl/internal/execshell"
	"github.com/temirov/fleetctl/internal/retry"
	"github.com/temirov/fleetctl/internal/utils"
	flagutils "github.com/temirov/fleetctl/internal/utils/flags"
)

const (
	runCommandUseConstant                        = "run [flags] <program> [arguments...]"
	runShortDescriptionConstant                  = "Run a program with retries"
	runLongDescriptionConstant                   = "run resolves the program on the executable search path and runs it attached to the terminal, retrying failed attempts with exponential backoff according to the retry configuration. Flags must precede the program name."
	runAllowFailureFlagNameConstant              = "allow-failure"
	runAllowFailureFlagDescriptionConstant       = "Report an abnormal termination instead of failing"
	runCaptureFlagNameConstant                   = "capture"
	runCaptureFlagDescriptionConstant            = "Capture program output and print it once the program finishes"
	runAttemptsFlagNameConstant                  = "attempts"
	runAttemptsFlagDescriptionConstant           = "Maximum number of attempts (overrides retry.max_attempts)"
	runWorkingDirectoryFlagNameConstant          = "working-directory"
	runWorkingDirectoryFlagDescriptionConstant   = "Directory to run the program in"
	runEnvironmentFlagNameConstant               = "env"
	runEnvironmentFlagDescriptionConstant        = "Environment override in KEY=VALUE form (repeatable)"
	runInvalidEnvironmentTemplateConstant        = "invalid environment assignment %q, expected KEY=VALUE"
	runExecutionErrorTemplateConstant            = "run failed: %w"
	runExitCodeReportTemplateConstant            = "%s exited with code %d\n"
	runSignalReportTemplateConstant              = "%s terminated by %s\n"
	runAbnormalTerminationAllowedMessageConstant = "abnormal termination allowed"
	runLabelSeparatorConstant                    = " "
	environmentAssignmentSeparatorConstant       = "="
	logFieldExitCodeConstant                     = "exit_code"
	logFieldSignalConstant                       = "signal"
)

// RunCommandBuilder assembles the run command.
type RunCommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     CommandExecutor
	Sleeper                      retry.Sleeper
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() RetryConfiguration
}

// Build constructs the run command.
func (builder *RunCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runShortDescriptionConstant,
		Long:  runLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().SetInterspersed(false)
	flagutils.AddToggleFlag(command.Flags(), nil, runAllowFailureFlagNameConstant, "", false, runAllowFailureFlagDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, runCaptureFlagNameConstant, "", false, runCaptureFlagDescriptionConstant)
	command.Flags().Int(runAttemptsFlagNameConstant, 0, runAttemptsFlagDescriptionConstant)
	command.Flags().String(runWorkingDirectoryFlagNameConstant, "", runWorkingDirectoryFlagDescriptionConstant)
	command.Flags().StringArray(runEnvironmentFlagNameConstant, nil, runEnvironmentFlagDescriptionConstant)

	return command, nil
}

func (builder *RunCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errMissingCommand
	}

	shellCommand, commandError := builder.buildShellCommand(command, arguments)
	if commandError != nil {
		return commandError
	}

	policy := builder.resolveConfiguration().Policy(strings.Join(shellCommand.Invocation(), runLabelSeparatorConstant))
	if command.Flags().Changed(runAttemptsFlagNameConstant) {
		policy.MaxAttempts, _ = command.Flags().GetInt(runAttemptsFlagNameConstant)
	}

	logger := resolveLogger(builder.LoggerProvider)
	executionContext := resolveExecutionContext(command)
	executor, executorError := resolveExecutor(builder.Executor, logger, executionContext, resolveHumanReadableLogging(builder.HumanReadableLoggingProvider))
	if executorError != nil {
		return executorError
	}

	retrier := retry.NewRetrier(logger, retry.WithSleeper(builder.Sleeper))
	executionResult, executionError := retry.Do(command.Context(), retrier, policy, func(attemptContext context.Context) (execshell.ExecutionResult, error) {
		return executor.Execute(attemptContext, shellCommand)
	})
	if executionError != nil {
		return fmt.Errorf(runExecutionErrorTemplateConstant, executionError)
	}

	if shellCommand.Details.StreamMode == execshell.StreamModeCapture {
		if writeError := writeCapturedStreams(command, executionResult); writeError != nil {
			return writeError
		}
	}

	if executionResult.Abnormal() {
		logger.Info(
			runAbnormalTerminationAllowedMessageConstant,
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldSignalConstant, executionResult.TerminationSignal),
		)
		return reportTermination(command, shellCommand, executionResult)
	}

	return nil
}

func (builder *RunCommandBuilder) buildShellCommand(command *cobra.Command, arguments []string) (execshell.ShellCommand, error) {
	environmentAssignments, _ := command.Flags().GetStringArray(runEnvironmentFlagNameConstant)
	environmentVariables, environmentError := parseEnvironmentAssignments(environmentAssignments)
	if environmentError != nil {
		return execshell.ShellCommand{}, environmentError
	}

	workingDirectory, _ := command.Flags().GetString(runWorkingDirectoryFlagNameConstant)

	details := execshell.CommandDetails{
		Arguments:            append([]string(nil), arguments[1:]...),
		WorkingDirectory:     strings.TrimSpace(workingDirectory),
		EnvironmentVariables: environmentVariables,
		StreamMode:           execshell.StreamModeInherit,
	}
	if toggleFlagValue(command, runCaptureFlagNameConstant) {
		details.StreamMode = execshell.StreamModeCapture
	}
	if toggleFlagValue(command, runAllowFailureFlagNameConstant) {
		details.FailurePolicy = execshell.FailurePolicyReturnTerminationStatus
	}

	return execshell.ShellCommand{Name: execshell.CommandName(arguments[0]), Details: details}, nil
}

func (builder *RunCommandBuilder) resolveConfiguration() RetryConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultRetryConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func parseEnvironmentAssignments(assignments []string) (map[string]string, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	environmentVariables := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		key, value, separatorFound := strings.Cut(assignment, environmentAssignmentSeparatorConstant)
		if !separatorFound || len(strings.TrimSpace(key)) == 0 {
			return nil, fmt.Errorf(runInvalidEnvironmentTemplateConstant, assignment)
		}
		environmentVariables[strings.TrimSpace(key)] = value
	}
	return environmentVariables, nil
}

func writeCapturedStreams(command *cobra.Command, executionResult execshell.ExecutionResult) error {
	if _, writeError := fmt.Fprint(utils.NewFlushingWriter(command.OutOrStdout()), executionResult.StandardOutput); writeError != nil {
		return writeError
	}
	_, writeError := fmt.Fprint(utils.NewFlushingWriter(command.ErrOrStderr()), executionResult.StandardError)
	return writeError
}

func reportTermination(command *cobra.Command, shellCommand execshell.ShellCommand, executionResult execshell.ExecutionResult) error {
	errorOutput := utils.NewFlushingWriter(command.ErrOrStderr())
	if !executionResult.Exited() {
		_, writeError := fmt.Fprintf(errorOutput, runSignalReportTemplateConstant, shellCommand.Name, executionResult.TerminationSignal)
		return writeError
	}
	_, writeError := fmt.Fprintf(errorOutput, runExitCodeReportTemplateConstant, shellCommand.Name, executionResult.ExitCode)
	return writeError
}
