package hostexec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fleetctl/internal/execshell"
	"github.com/temirov/fleetctl/internal/utils"
	flagutils "github.com/temirov/fleetctl/internal/utils/flags"
)

const (
	escapeCommandUseConstant                 = "escape [flags] <argument>..."
	escapeShortDescriptionConstant           = "Quote arguments for a shell"
	escapeLongDescriptionConstant            = "escape prints the arguments quoted for a POSIX shell or the Windows cmd.exe interpreter, joined into one line. With --program the line starts with the program path and can be handed to the shell as is."
	escapeDialectFlagNameConstant            = "dialect"
	escapeDialectFlagDescriptionConstant     = "Quoting rules to apply; auto follows the host"
	escapeDetectShellFlagNameConstant        = "detect-shell"
	escapeDetectShellFlagDescriptionConstant = "On Windows, treat a SHELL variable as a POSIX layer (overrides execution.detect_shell)"
	escapeProgramFlagNameConstant            = "program"
	escapeProgramFlagDescriptionConstant     = "Program path placed in front of the escaped arguments"
	escapeMissingArgumentsMessageConstant    = "escape requires at least one argument or --program"
	escapeDialectResolvedMessageConstant     = "shell dialect resolved"
	escapeOutputLineTemplateConstant         = "%s\n"
	escapeArgumentSeparatorConstant          = " "
	dialectAutoConstant                      = "auto"
	dialectPOSIXConstant                     = "posix"
	dialectWindowsCmdConstant                = "cmd"
	logFieldDialectConstant                  = "dialect"
	logFieldCmdSessionConstant               = "cmd_session"
)

var (
	errEscapeMissingArguments = errors.New(escapeMissingArgumentsMessageConstant)
	dialectChoices            = []string{dialectAutoConstant, dialectPOSIXConstant, dialectWindowsCmdConstant}
)

// EscapeCommandBuilder assembles the escape command.
type EscapeCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() ExecutionConfiguration
}

// Build constructs the escape command.
func (builder *EscapeCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   escapeCommandUseConstant,
		Short: escapeShortDescriptionConstant,
		Long:  escapeLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().SetInterspersed(false)
	flagutils.AddChoiceFlag(command.Flags(), nil, escapeDialectFlagNameConstant, dialectAutoConstant, dialectChoices, escapeDialectFlagDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, escapeDetectShellFlagNameConstant, "", false, escapeDetectShellFlagDescriptionConstant)
	command.Flags().String(escapeProgramFlagNameConstant, "", escapeProgramFlagDescriptionConstant)

	return command, nil
}

func (builder *EscapeCommandBuilder) run(command *cobra.Command, arguments []string) error {
	programPath, _ := command.Flags().GetString(escapeProgramFlagNameConstant)
	programPath = strings.TrimSpace(programPath)
	if len(arguments) == 0 && len(programPath) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errEscapeMissingArguments
	}

	logger := resolveLogger(builder.LoggerProvider)
	executionContext := resolveExecutionContext(command)

	detectShell := builder.resolveConfiguration().DetectShell
	if command.Flags().Changed(escapeDetectShellFlagNameConstant) {
		detectShell = toggleFlagValue(command, escapeDetectShellFlagNameConstant)
	}

	var dialect execshell.ShellDialect
	switch command.Flags().Lookup(escapeDialectFlagNameConstant).Value.String() {
	case dialectPOSIXConstant:
		dialect = execshell.ShellDialectPOSIX
	case dialectWindowsCmdConstant:
		dialect = execshell.ShellDialectWindowsCmd
	default:
		dialect = execshell.ResolveShellDialect(executionContext, detectShell)
	}

	logger.Debug(
		escapeDialectResolvedMessageConstant,
		zap.String(logFieldDialectConstant, dialect.String()),
		zap.Bool(logFieldCmdSessionConstant, execshell.IsWindowsCmdSession(executionContext)),
	)

	var renderedLine string
	if len(programPath) > 0 {
		commandLine, formatError := execshell.FormatCommandLine(dialect, programPath, arguments)
		if formatError != nil {
			return formatError
		}
		renderedLine = commandLine
	} else {
		escapedArguments, escapeError := execshell.EscapeArguments(dialect, arguments)
		if escapeError != nil {
			return escapeError
		}
		renderedLine = strings.Join(escapedArguments, escapeArgumentSeparatorConstant)
	}

	_, writeError := fmt.Fprintf(utils.NewFlushingWriter(command.OutOrStdout()), escapeOutputLineTemplateConstant, renderedLine)
	return writeError
}

func (builder *EscapeCommandBuilder) resolveConfiguration() ExecutionConfiguration {
	if builder.ConfigurationProvider == nil {
		return ExecutionConfiguration{}
	}
	return builder.ConfigurationProvider()
}
