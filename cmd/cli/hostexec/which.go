package hostexec

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fleetctl/internal/utils"
	flagutils "github.com/temirov/fleetctl/internal/utils/flags"
)

const (
	whichCommandUseConstant              = "which <program>..."
	whichShortDescriptionConstant        = "Resolve programs to absolute paths"
	whichLongDescriptionConstant         = "which searches the executable search path for every program and prints its absolute path, one per line. A missing program fails the command unless --soft is set."
	whichSoftFlagNameConstant            = "soft"
	whichSoftFlagDescriptionConstant     = "Skip missing programs instead of failing"
	whichMissingArgumentsMessageConstant = "which requires at least one program name"
	whichProgramSkippedMessageConstant   = "program not found; skipping"
	whichProgramResolvedMessageConstant  = "program resolved"
	whichOutputLineTemplateConstant      = "%s\n"
	logFieldProgramConstant              = "program"
	logFieldPathConstant                 = "path"
)

var errWhichMissingArguments = errors.New(whichMissingArgumentsMessageConstant)

// WhichCommandBuilder assembles the which command.
type WhichCommandBuilder struct {
	LoggerProvider LoggerProvider
	Locator        ProgramLocator
}

// Build constructs the which command.
func (builder *WhichCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   whichCommandUseConstant,
		Short: whichShortDescriptionConstant,
		Long:  whichLongDescriptionConstant,
		RunE:  builder.run,
	}

	flagutils.AddToggleFlag(command.Flags(), nil, whichSoftFlagNameConstant, "", false, whichSoftFlagDescriptionConstant)

	return command, nil
}

func (builder *WhichCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errWhichMissingArguments
	}

	logger := resolveLogger(builder.LoggerProvider)
	locator := resolveLocator(builder.Locator)
	failOnMissing := !toggleFlagValue(command, whichSoftFlagNameConstant)
	output := utils.NewFlushingWriter(command.OutOrStdout())

	for _, programName := range arguments {
		programPath, locateError := locator.Locate(programName, failOnMissing)
		if locateError != nil {
			return locateError
		}
		if len(programPath) == 0 {
			logger.Warn(whichProgramSkippedMessageConstant, zap.String(logFieldProgramConstant, programName))
			continue
		}

		logger.Debug(whichProgramResolvedMessageConstant, zap.String(logFieldProgramConstant, programName), zap.String(logFieldPathConstant, programPath))
		if _, writeError := fmt.Fprintf(output, whichOutputLineTemplateConstant, programPath); writeError != nil {
			return writeError
		}
	}

	return nil
}
