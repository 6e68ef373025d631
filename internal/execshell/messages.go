package execshell

import (
	"fmt"
	"strings"
)

const (
	startedMessageTemplateConstant          = "Running %s"
	succeededMessageTemplateConstant        = "Completed %s"
	exitCodeFailureMessageTemplateConstant  = "%s failed with exit code %d%s"
	signalFailureMessageTemplateConstant    = "%s terminated by %s%s"
	executionFailureMessageTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	commandLabelSeparatorConstant           = " "
	unknownFailureMessageConstant           = "unknown error"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(startedMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildSuccessMessage formats the message describing a command that exited with code zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(succeededMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildFailureMessage formats the message describing a non-zero exit or a termination signal.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	standardErrorSuffix := formatter.formatStandardErrorSuffix(result.StandardError)
	if !result.Exited() {
		return fmt.Sprintf(signalFailureMessageTemplateConstant, formatter.formatCommandLabel(command), result.TerminationSignal, standardErrorSuffix)
	}
	return fmt.Sprintf(exitCodeFailureMessageTemplateConstant, formatter.formatCommandLabel(command), result.ExitCode, standardErrorSuffix)
}

// BuildExecutionFailureMessage formats the message describing a command that could not be launched.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	failureDescription := unknownFailureMessageConstant
	if failure != nil {
		failureDescription = failure.Error()
	}
	return fmt.Sprintf(executionFailureMessageTemplateConstant, formatter.formatCommandLabel(command), failureDescription)
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := strings.Join(command.Invocation(), commandLabelSeparatorConstant)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLabel
	}
	return commandLabel + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
