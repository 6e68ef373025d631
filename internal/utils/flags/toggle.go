package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue               = "true"
	toggleFalseCanonicalValue              = "false"
	toggleValueTypeConstant                = "toggle"
	toggleParseErrorTemplate               = "invalid toggle value %q"
	toggleUsageEmptyTemplate               = "`%s`"
	toggleUsageFullTemplate                = "`%s` %s"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	longFlagPrefixConstant                 = "--"
	shortFlagPrefixConstant                = "-"
	flagValueSeparatorConstant             = "="
)

var toggleLiterals = map[string]bool{
	"true": true, "yes": true, "on": true, "1": true, "t": true, "y": true,
	"false": false, "no": false, "off": false, "0": false, "f": false, "n": false,
}

// AddToggleFlag registers a boolean flag that accepts yes/no style values as well as bare presence.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	value := &toggleValue{target: target}
	value.assign(defaultValue)

	flag := flagSet.VarPF(value, name, shorthand, formatToggleUsage(usage, defaultValue))
	flag.NoOptDefVal = toggleTrueCanonicalValue
}

// NormalizeToggleArguments rewrites "--flag value" into "--flag=value" for toggle flags of flagSet,
// but only when value is a recognized toggle literal, so positional arguments are never swallowed.
func NormalizeToggleArguments(flagSet *pflag.FlagSet, arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		current := arguments[argumentIndex]
		if current == longFlagPrefixConstant {
			return append(normalized, arguments[argumentIndex:]...)
		}

		hasFollowingLiteral := argumentIndex+1 < len(arguments) && isToggleLiteral(arguments[argumentIndex+1])
		if hasFollowingLiteral && isBareToggleFlag(flagSet, current) {
			normalized = append(normalized, current+flagValueSeparatorConstant+arguments[argumentIndex+1])
			argumentIndex++
			continue
		}
		normalized = append(normalized, current)
	}
	return normalized
}

func isBareToggleFlag(flagSet *pflag.FlagSet, argument string) bool {
	if flagSet == nil || strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}

	var flag *pflag.Flag
	switch {
	case strings.HasPrefix(argument, longFlagPrefixConstant):
		flag = flagSet.Lookup(strings.TrimPrefix(argument, longFlagPrefixConstant))
	case strings.HasPrefix(argument, shortFlagPrefixConstant) && len(argument) == 2:
		flag = flagSet.ShorthandLookup(strings.TrimPrefix(argument, shortFlagPrefixConstant))
	}
	return flag != nil && flag.Value.Type() == toggleValueTypeConstant
}

func isToggleLiteral(candidate string) bool {
	_, known := toggleLiterals[strings.ToLower(strings.TrimSpace(candidate))]
	return known
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(toggleUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(toggleUsageFullTemplate, placeholder, trimmedDescription)
}

type toggleValue struct {
	current bool
	target  *bool
}

func (value *toggleValue) assign(parsedValue bool) {
	value.current = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
}

func (value *toggleValue) Set(rawValue string) error {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		normalizedValue = toggleTrueCanonicalValue
	}
	parsedValue, known := toggleLiterals[normalizedValue]
	if !known {
		return fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	value.assign(parsedValue)
	return nil
}

func (value *toggleValue) String() string {
	if value == nil || !value.current {
		return toggleFalseCanonicalValue
	}
	return toggleTrueCanonicalValue
}

func (value *toggleValue) Type() string {
	return toggleValueTypeConstant
}
