package hostexec

import (
	"strings"
	"time"

	"github.com/temirov/fleetctl/internal/hostenv"
	"github.com/temirov/fleetctl/internal/retry"
)

const (
	defaultMaxAttemptsConstant        = 1
	defaultInitialDelayConstant       = time.Second
	defaultBackoffMultiplierConstant  = 2.0
	retryMaxAttemptsKeyConstant       = "max_attempts"
	retryInitialDelayKeyConstant      = "initial_delay"
	retryBackoffKeyConstant           = "backoff_multiplier"
	retryMaxSingleDelayKeyConstant    = "max_single_delay"
	proxyAPIURLKeyConstant            = "api_url"
	proxyTunnelHostKeyConstant        = "tunnel.host"
	proxyTunnelPortKeyConstant        = "tunnel.port"
	proxyTunnelAuthKeyConstant        = "tunnel.proxy_auth"
	executionDetectShellKeyConstant   = "detect_shell"
	configurationKeySeparatorConstant = "."
)

// RetryConfiguration captures the retry policy applied by the run command.
type RetryConfiguration struct {
	MaxAttempts       int           `mapstructure:"max_attempts"`
	InitialDelay      time.Duration `mapstructure:"initial_delay"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier"`
	MaxSingleDelay    time.Duration `mapstructure:"max_single_delay"`
}

// DefaultRetryConfiguration runs every command once.
func DefaultRetryConfiguration() RetryConfiguration {
	return RetryConfiguration{
		MaxAttempts:       defaultMaxAttemptsConstant,
		InitialDelay:      defaultInitialDelayConstant,
		BackoffMultiplier: defaultBackoffMultiplierConstant,
	}
}

// Policy converts the configuration into a retry policy carrying label.
func (configuration RetryConfiguration) Policy(label string) retry.Policy {
	return retry.Policy{
		MaxAttempts:       configuration.MaxAttempts,
		InitialDelay:      configuration.InitialDelay,
		BackoffMultiplier: configuration.BackoffMultiplier,
		MaxSingleDelay:    configuration.MaxSingleDelay,
		Label:             label,
	}
}

// sanitize fills values left at zero by a partial configuration file.
func (configuration RetryConfiguration) sanitize() RetryConfiguration {
	sanitized := configuration
	if sanitized.MaxAttempts == 0 {
		sanitized.MaxAttempts = defaultMaxAttemptsConstant
	}
	if sanitized.BackoffMultiplier == 0 {
		sanitized.BackoffMultiplier = defaultBackoffMultiplierConstant
	}
	return sanitized
}

// TunnelConfiguration describes an externally managed proxy tunnel.
type TunnelConfiguration struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	ProxyAuth string `mapstructure:"proxy_auth"`
}

// Settings returns the tunnel as execution context state, or nil when no tunnel host is configured.
func (configuration TunnelConfiguration) Settings() *hostenv.TunnelSettings {
	trimmedHost := strings.TrimSpace(configuration.Host)
	if len(trimmedHost) == 0 {
		return nil
	}
	return &hostenv.TunnelSettings{
		Host:      trimmedHost,
		Port:      configuration.Port,
		ProxyAuth: configuration.ProxyAuth,
	}
}

// ProxyConfiguration captures the proxy command settings.
type ProxyConfiguration struct {
	APIURL string              `mapstructure:"api_url"`
	Tunnel TunnelConfiguration `mapstructure:"tunnel"`
}

// ExecutionConfiguration captures settings shared by commands that build command lines.
type ExecutionConfiguration struct {
	DetectShell bool `mapstructure:"detect_shell"`
}

// DefaultConfigurationValues returns viper defaults for the retry, proxy, and execution sections.
func DefaultConfigurationValues(retryKey string, proxyKey string, executionKey string) map[string]any {
	retryDefaults := DefaultRetryConfiguration()

	defaultValues := make(map[string]any)
	defaultValues[joinConfigurationKey(retryKey, retryMaxAttemptsKeyConstant)] = retryDefaults.MaxAttempts
	defaultValues[joinConfigurationKey(retryKey, retryInitialDelayKeyConstant)] = retryDefaults.InitialDelay
	defaultValues[joinConfigurationKey(retryKey, retryBackoffKeyConstant)] = retryDefaults.BackoffMultiplier
	defaultValues[joinConfigurationKey(retryKey, retryMaxSingleDelayKeyConstant)] = retryDefaults.MaxSingleDelay
	defaultValues[joinConfigurationKey(proxyKey, proxyAPIURLKeyConstant)] = ""
	defaultValues[joinConfigurationKey(proxyKey, proxyTunnelHostKeyConstant)] = ""
	defaultValues[joinConfigurationKey(proxyKey, proxyTunnelPortKeyConstant)] = 0
	defaultValues[joinConfigurationKey(proxyKey, proxyTunnelAuthKeyConstant)] = ""
	defaultValues[joinConfigurationKey(executionKey, executionDetectShellKeyConstant)] = false
	return defaultValues
}

func joinConfigurationKey(prefix string, key string) string {
	if len(prefix) == 0 {
		return key
	}
	return prefix + configurationKeySeparatorConstant + key
}
