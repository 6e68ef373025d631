package hostexec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fleetctl/cmd/cli/hostexec"
	"github.com/temirov/fleetctl/internal/hostenv"
	"github.com/temirov/fleetctl/internal/retry"
)

func TestRetryConfigurationPolicy(testInstance *testing.T) {
	configuration := hostexec.RetryConfiguration{
		MaxAttempts:       4,
		InitialDelay:      500 * time.Millisecond,
		BackoffMultiplier: 3,
		MaxSingleDelay:    2 * time.Second,
	}

	require.Equal(testInstance, retry.Policy{
		MaxAttempts:       4,
		InitialDelay:      500 * time.Millisecond,
		BackoffMultiplier: 3,
		MaxSingleDelay:    2 * time.Second,
		Label:             "git fetch",
	}, configuration.Policy("git fetch"))
}

func TestTunnelConfigurationSettings(testInstance *testing.T) {
	testCases := []struct {
		name             string
		configuration    hostexec.TunnelConfiguration
		expectedSettings *hostenv.TunnelSettings
	}{
		{
			name:          "blank_host_means_no_tunnel",
			configuration: hostexec.TunnelConfiguration{Host: "  ", Port: 1080},
		},
		{
			name:             "host_is_trimmed",
			configuration:    hostexec.TunnelConfiguration{Host: " tunnel.local ", Port: 1080, ProxyAuth: "bob:secret"},
			expectedSettings: &hostenv.TunnelSettings{Host: "tunnel.local", Port: 1080, ProxyAuth: "bob:secret"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedSettings, testCase.configuration.Settings())
		})
	}
}

func TestDefaultConfigurationValues(testInstance *testing.T) {
	defaultValues := hostexec.DefaultConfigurationValues("retry", "proxy", "execution")

	require.Equal(testInstance, 1, defaultValues["retry.max_attempts"])
	require.Equal(testInstance, time.Second, defaultValues["retry.initial_delay"])
	require.Equal(testInstance, 2.0, defaultValues["retry.backoff_multiplier"])
	require.Equal(testInstance, time.Duration(0), defaultValues["retry.max_single_delay"])
	require.Equal(testInstance, "", defaultValues["proxy.tunnel.host"])
	require.Equal(testInstance, 0, defaultValues["proxy.tunnel.port"])
	require.Equal(testInstance, false, defaultValues["execution.detect_shell"])
	require.Len(testInstance, defaultValues, 9)
}
