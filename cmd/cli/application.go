package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/fleetctl/cmd/cli/hostexec"
	"github.com/temirov/fleetctl/internal/hostenv"
	"github.com/temirov/fleetctl/internal/utils"
	flagutils "github.com/temirov/fleetctl/internal/utils/flags"
)

const (
	applicationNameConstant                 = "fleetctl"
	applicationShortDescriptionConstant     = "Run, escape, and elevate host commands across platforms"
	applicationLongDescriptionConstant      = "fleetctl locates programs, runs them with retries, quotes arguments for POSIX shells and cmd.exe, re-runs commands with administrative privileges, and reports the proxy used for outbound API requests."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	retryConfigurationKeyConstant           = "retry"
	proxyConfigurationKeyConstant           = "proxy"
	executionConfigurationKeyConstant       = "execution"
	environmentPrefixConstant               = "FLEETCTL"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	operatingSystemFieldConstant            = "os"
	interactiveFieldConstant                = "interactive"
	proxyTunnelFieldConstant                = "proxy_tunnel"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	executionContextDetectedMessageConstant = "execution context detected"
	rootCommandInfoMessageConstant          = "fleetctl CLI executed"
	rootCommandDebugMessageConstant         = "fleetctl CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationSearchPathConstant     = "$HOME/.fleetctl"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common    ApplicationCommonConfiguration  `mapstructure:"common"`
	Retry     hostexec.RetryConfiguration     `mapstructure:"retry"`
	Proxy     hostexec.ProxyConfiguration     `mapstructure:"proxy"`
	Execution hostexec.ExecutionConfiguration `mapstructure:"execution"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, execution context, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	executionContext       hostenv.ExecutionContext
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	hostDetector           func() hostenv.ExecutionContext
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant, userConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		hostDetector:           hostenv.Detect,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	flagutils.AddChoiceFlag(
		cobraCommand.PersistentFlags(),
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		string(utils.LogFormatStructured),
		utils.SupportedLogFormats,
		logFormatFlagUsageConstant,
	)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}

	whichBuilder := hostexec.WhichCommandBuilder{LoggerProvider: loggerProvider}
	whichCommand, whichBuildError := whichBuilder.Build()
	if whichBuildError == nil {
		cobraCommand.AddCommand(whichCommand)
	}

	runBuilder := hostexec.RunCommandBuilder{
		LoggerProvider:               loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() hostexec.RetryConfiguration {
			return application.configuration.Retry
		},
	}
	runCommand, runBuildError := runBuilder.Build()
	if runBuildError == nil {
		cobraCommand.AddCommand(runCommand)
	}

	escapeBuilder := hostexec.EscapeCommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() hostexec.ExecutionConfiguration {
			return application.configuration.Execution
		},
	}
	escapeCommand, escapeBuildError := escapeBuilder.Build()
	if escapeBuildError == nil {
		cobraCommand.AddCommand(escapeCommand)
	}

	elevateBuilder := hostexec.ElevateCommandBuilder{
		LoggerProvider:               loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
	}
	elevateCommand, elevateBuildError := elevateBuilder.Build()
	if elevateBuildError == nil {
		cobraCommand.AddCommand(elevateCommand)
	}

	proxyBuilder := hostexec.ProxyCommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() hostexec.ProxyConfiguration {
			return application.configuration.Proxy
		},
	}
	proxyCommand, proxyBuildError := proxyBuilder.Build()
	if proxyBuildError == nil {
		cobraCommand.AddCommand(proxyCommand)
	}

	sortBuilder := hostexec.SortCommandBuilder{}
	sortCommand, sortBuildError := sortBuilder.Build()
	if sortBuildError == nil {
		cobraCommand.AddCommand(sortCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy with the process arguments and ensures logger flushing.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the command hierarchy with explicit arguments. Toggle flags given as
// "--flag yes" are rewritten to "--flag=yes" for the target command first.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	application.rootCommand.SetArgs(application.normalizeArguments(arguments))
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) normalizeArguments(arguments []string) []string {
	normalized := append([]string{}, arguments...)
	targetCommand, _, findError := application.rootCommand.Find(normalized)
	if findError != nil || targetCommand == nil {
		return normalized
	}
	return append([]string{}, flagutils.NormalizeToggleArguments(targetCommand.Flags(), normalized)...)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range hostexec.DefaultConfigurationValues(retryConfigurationKeyConstant, proxyConfigurationKeyConstant, executionConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	application.executionContext = application.hostDetector()
	application.executionContext.ProxyTunnel = application.configuration.Proxy.Tunnel.Settings()

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
		application.executionContext.InvocationID,
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
	application.logger.Debug(
		executionContextDetectedMessageConstant,
		zap.String(operatingSystemFieldConstant, application.executionContext.OperatingSystem),
		zap.Bool(interactiveFieldConstant, application.executionContext.Interactive),
		zap.Bool(proxyTunnelFieldConstant, application.executionContext.ProxyTunnel != nil),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithExecutionContext(updatedContext, application.executionContext)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
