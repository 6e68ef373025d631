package netproxy

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpproxy"

	"github.com/temirov/fleetctl/internal/hostenv"
)

const (
	httpsProxyEnvironmentVariableConstant = "HTTPS_PROXY"
	httpProxyEnvironmentVariableConstant  = "HTTP_PROXY"
	noProxyEnvironmentVariableConstant    = "NO_PROXY"
	proxyAuthSeparatorConstant            = ":"
	httpsSchemeConstant                   = "https"
	defaultProxySchemeConstant            = "http"
	schemeSeparatorConstant               = "://"
	ipv6HostPrefixConstant                = "["
	defaultHTTPPortConstant               = 80
	defaultHTTPSPortConstant              = 443
	// placeholderRequestURLConstant stands in for the API endpoint when none is configured.
	placeholderRequestURLConstant = "https://api.fleetctl.invalid"
)

var supportedProxySchemes = []string{defaultProxySchemeConstant, httpsSchemeConstant, "socks5"}

// Configuration describes the proxy outbound API requests should use.
type Configuration struct {
	Host      string
	Port      int
	Username  string
	Password  string
	ProxyAuth string
}

// Resolve computes the proxy for requests to apiURL. It is read fresh on every call.
//
// An active proxy tunnel on the execution context wins outright. Otherwise HTTPS_PROXY is preferred
// over HTTP_PROXY, and NO_PROXY is honored for apiURL. Loopback API hosts (localhost, 127.0.0.0/8, ::1)
// are never proxied, matching net/http. A missing or malformed proxy yields nil.
func Resolve(executionContext hostenv.ExecutionContext, apiURL string) *Configuration {
	if executionContext.ProxyTunnel != nil {
		return fromTunnel(*executionContext.ProxyTunnel)
	}

	proxyValue := lookupProxyVariable(executionContext, httpsProxyEnvironmentVariableConstant)
	if len(proxyValue) == 0 {
		proxyValue = lookupProxyVariable(executionContext, httpProxyEnvironmentVariableConstant)
	}
	if len(proxyValue) == 0 {
		return nil
	}

	proxyValue, proxyValid := normalizeProxyValue(proxyValue)
	if !proxyValid {
		return nil
	}

	noProxyValue := lookupProxyVariable(executionContext, noProxyEnvironmentVariableConstant)
	requestURL, parseError := url.Parse(strings.TrimSpace(apiURL))
	if len(strings.TrimSpace(apiURL)) == 0 || parseError != nil || len(requestURL.Host) == 0 {
		requestURL, _ = url.Parse(placeholderRequestURLConstant)
		noProxyValue = ""
	}

	proxySettings := httpproxy.Config{
		HTTPProxy:  proxyValue,
		HTTPSProxy: proxyValue,
		NoProxy:    noProxyValue,
	}
	proxyURL, proxyError := proxySettings.ProxyFunc()(requestURL)
	if proxyError != nil || proxyURL == nil || len(proxyURL.Hostname()) == 0 {
		return nil
	}
	return fromURL(proxyURL)
}

// normalizeProxyValue prefixes scheme-less values with http:// and rejects anything that does not
// parse to a proxy host with a supported scheme.
func normalizeProxyValue(proxyValue string) (string, bool) {
	if !strings.Contains(proxyValue, schemeSeparatorConstant) {
		proxyValue = defaultProxySchemeConstant + schemeSeparatorConstant + proxyValue
	}

	proxyURL, parseError := url.Parse(proxyValue)
	if parseError != nil || !slices.Contains(supportedProxySchemes, strings.ToLower(proxyURL.Scheme)) {
		return "", false
	}

	hostname := proxyURL.Hostname()
	if len(hostname) == 0 {
		return "", false
	}
	if strings.Contains(hostname, proxyAuthSeparatorConstant) && !strings.HasPrefix(proxyURL.Host, ipv6HostPrefixConstant) {
		return "", false
	}
	if portValue := proxyURL.Port(); len(portValue) > 0 {
		if _, portError := strconv.Atoi(portValue); portError != nil {
			return "", false
		}
	}
	return proxyValue, true
}

// lookupProxyVariable checks the upper-case name first, then the lower-case spelling curl and Go also accept.
func lookupProxyVariable(executionContext hostenv.ExecutionContext, variableName string) string {
	for _, candidateName := range []string{variableName, strings.ToLower(variableName)} {
		if value := strings.TrimSpace(executionContext.EnvironmentValue(candidateName)); len(value) > 0 {
			return value
		}
	}
	return ""
}

func fromTunnel(tunnel hostenv.TunnelSettings) *Configuration {
	configuration := &Configuration{
		Host:      tunnel.Host,
		Port:      tunnel.Port,
		ProxyAuth: tunnel.ProxyAuth,
	}
	separatorIndex := strings.LastIndex(tunnel.ProxyAuth, proxyAuthSeparatorConstant)
	if separatorIndex > 0 {
		configuration.Username = tunnel.ProxyAuth[:separatorIndex]
		configuration.Password = tunnel.ProxyAuth[separatorIndex+1:]
	}
	return configuration
}

func fromURL(proxyURL *url.URL) *Configuration {
	configuration := &Configuration{Host: proxyURL.Hostname()}

	if parsedPort, portError := strconv.Atoi(proxyURL.Port()); portError == nil {
		configuration.Port = parsedPort
	} else if strings.EqualFold(proxyURL.Scheme, httpsSchemeConstant) {
		configuration.Port = defaultHTTPSPortConstant
	} else {
		configuration.Port = defaultHTTPPortConstant
	}

	if proxyURL.User != nil {
		configuration.Username = proxyURL.User.Username()
		configuration.ProxyAuth = configuration.Username
		if password, passwordPresent := proxyURL.User.Password(); passwordPresent {
			configuration.Password = password
			configuration.ProxyAuth += proxyAuthSeparatorConstant + password
		}
	}
	return configuration
}
