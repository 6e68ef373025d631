package hostexec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/fleetctl/internal/netproxy"
	"github.com/temirov/fleetctl/internal/utils"
	flagutils "github.com/temirov/fleetctl/internal/utils/flags"
)

const (
	proxyCommandUseConstant                 = "proxy"
	proxyShortDescriptionConstant           = "Show the proxy used for outbound API requests"
	proxyLongDescriptionConstant            = "proxy prints the proxy outbound API requests would use as YAML. A configured proxy tunnel takes precedence over HTTPS_PROXY and HTTP_PROXY, and NO_PROXY is honored for the API URL."
	proxyAPIURLFlagNameConstant             = "api-url"
	proxyAPIURLFlagDescriptionConstant      = "API endpoint the proxy is resolved for (overrides proxy.api_url)"
	proxyRevealFlagNameConstant             = "reveal"
	proxyRevealFlagDescriptionConstant      = "Print the proxy password instead of a mask"
	proxyUnexpectedArgumentsMessageConstant = "proxy does not accept positional arguments"
	proxyNotConfiguredOutputConstant        = "no proxy configured\n"
	proxyPasswordMaskConstant               = "redacted"
	proxySourceTunnelConstant               = "tunnel"
	proxySourceEnvironmentConstant          = "environment"
	proxyResolvedMessageConstant            = "proxy resolved"
	proxyEncodingErrorTemplateConstant      = "unable to render proxy configuration: %w"
	proxyYAMLIndentationConstant            = 2
	logFieldProxyHostConstant               = "proxy_host"
	logFieldProxySourceConstant             = "proxy_source"
)

var errProxyUnexpectedArguments = errors.New(proxyUnexpectedArgumentsMessageConstant)

// ProxyCommandBuilder assembles the proxy command.
type ProxyCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() ProxyConfiguration
}

type proxyReport struct {
	Source   string `yaml:"source"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Build constructs the proxy command.
func (builder *ProxyCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   proxyCommandUseConstant,
		Short: proxyShortDescriptionConstant,
		Long:  proxyLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(proxyAPIURLFlagNameConstant, "", proxyAPIURLFlagDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, proxyRevealFlagNameConstant, "", false, proxyRevealFlagDescriptionConstant)

	return command, nil
}

func (builder *ProxyCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errProxyUnexpectedArguments
	}

	configuration := builder.resolveConfiguration()
	apiURL := configuration.APIURL
	if command.Flags().Changed(proxyAPIURLFlagNameConstant) {
		apiURL, _ = command.Flags().GetString(proxyAPIURLFlagNameConstant)
	}

	executionContext := resolveExecutionContext(command)
	if executionContext.ProxyTunnel == nil {
		executionContext.ProxyTunnel = configuration.Tunnel.Settings()
	}

	output := utils.NewFlushingWriter(command.OutOrStdout())
	proxyConfiguration := netproxy.Resolve(executionContext, strings.TrimSpace(apiURL))
	if proxyConfiguration == nil {
		_, writeError := fmt.Fprint(output, proxyNotConfiguredOutputConstant)
		return writeError
	}

	report := proxyReport{
		Source:   proxySourceEnvironmentConstant,
		Host:     proxyConfiguration.Host,
		Port:     proxyConfiguration.Port,
		Username: proxyConfiguration.Username,
		Password: proxyConfiguration.Password,
	}
	if executionContext.ProxyTunnel != nil {
		report.Source = proxySourceTunnelConstant
	}
	if len(report.Password) > 0 && !toggleFlagValue(command, proxyRevealFlagNameConstant) {
		report.Password = proxyPasswordMaskConstant
	}

	resolveLogger(builder.LoggerProvider).Debug(
		proxyResolvedMessageConstant,
		zap.String(logFieldProxyHostConstant, report.Host),
		zap.String(logFieldProxySourceConstant, report.Source),
	)

	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(proxyYAMLIndentationConstant)
	if encodingError := encoder.Encode(report); encodingError != nil {
		return fmt.Errorf(proxyEncodingErrorTemplateConstant, encodingError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(proxyEncodingErrorTemplateConstant, closeError)
	}
	return nil
}

func (builder *ProxyCommandBuilder) resolveConfiguration() ProxyConfiguration {
	if builder.ConfigurationProvider == nil {
		return ProxyConfiguration{}
	}
	return builder.ConfigurationProvider()
}
