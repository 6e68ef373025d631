package hostexec

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fleetctl/internal/elevation"
	flagutils "github.com/temirov/fleetctl/internal/utils/flags"
)

const (
	elevateCommandUseConstant             = "elevate [flags] <program> [arguments...]"
	elevateShortDescriptionConstant       = "Run a program with administrative privileges"
	elevateLongDescriptionConstant        = "elevate re-runs the program through sudo on POSIX hosts or through an elevated PowerShell Start-Process on Windows. When the process is already privileged the program runs directly. Flags must precede the program name."
	elevateSelfFlagNameConstant           = "self"
	elevateSelfFlagDescriptionConstant    = "Prefix the command with this executable's own invocation"
	elevateExecutionErrorTemplateConstant = "elevate failed: %w"
	elevateCompletedMessageConstant       = "elevated command completed"
)

// ElevateCommandBuilder assembles the elevate command.
type ElevateCommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     CommandExecutor
	Locator                      ProgramLocator
	PrivilegeProbe               elevation.PrivilegeProbe
	HumanReadableLoggingProvider func() bool
}

// Build constructs the elevate command.
func (builder *ElevateCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   elevateCommandUseConstant,
		Short: elevateShortDescriptionConstant,
		Long:  elevateLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().SetInterspersed(false)
	flagutils.AddToggleFlag(command.Flags(), nil, elevateSelfFlagNameConstant, "", false, elevateSelfFlagDescriptionConstant)

	return command, nil
}

func (builder *ElevateCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errMissingCommand
	}

	logger := resolveLogger(builder.LoggerProvider)
	executionContext := resolveExecutionContext(command)
	executor, executorError := resolveExecutor(builder.Executor, logger, executionContext, resolveHumanReadableLogging(builder.HumanReadableLoggingProvider))
	if executorError != nil {
		return executorError
	}

	elevator, selectionError := elevation.Select(executionContext, elevation.Dependencies{
		Executor: executor,
		Locator:  builder.Locator,
		Probe:    builder.PrivilegeProbe,
	})
	if selectionError != nil {
		return selectionError
	}

	request := elevation.Request{
		Command:        append([]string(nil), arguments...),
		SelfInvocation: toggleFlagValue(command, elevateSelfFlagNameConstant),
		ErrorSink:      command.ErrOrStderr(),
	}

	executionResult, elevationError := elevator.Elevate(command.Context(), request)
	if elevationError != nil {
		return fmt.Errorf(elevateExecutionErrorTemplateConstant, elevationError)
	}

	logger.Info(elevateCompletedMessageConstant, zap.Int(logFieldExitCodeConstant, executionResult.ExitCode))
	return nil
}
