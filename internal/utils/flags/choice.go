package flags

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix  = "<"
	choicePlaceholderSuffix  = ">"
	choiceSeparatorLiteral   = "|"
	choiceUsageEmptyTemplate = "`%s`"
	choiceUsageFullTemplate  = "`%s` %s"
	choiceValueTypeConstant  = "choice"
	choiceParseErrorTemplate = "invalid value %q, expected one of %s"
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// AddChoiceFlag registers a string flag restricted to choices, compared case-insensitively.
// The stored value is the lowercase form of the accepted choice.
func AddChoiceFlag(flagSet *pflag.FlagSet, target *string, name string, defaultChoice string, choices []string, description string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	normalizedChoices := normalizeChoices(choices)
	value := &choiceValue{target: target, choices: normalizedChoices}
	value.assign(strings.ToLower(strings.TrimSpace(defaultChoice)))
	flagSet.Var(value, name, FormatChoiceUsage(defaultChoice, choices, description))
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, exists := seen[normalizedChoice]; exists || len(normalizedChoice) == 0 {
			continue
		}
		seen[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		highlighted = append(highlighted, trimmedChoice)
	}

	return highlighted
}

func normalizeChoices(choices []string) []string {
	normalized := make([]string, 0, len(choices))
	for _, choice := range choices {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		if len(normalizedChoice) > 0 && !slices.Contains(normalized, normalizedChoice) {
			normalized = append(normalized, normalizedChoice)
		}
	}
	return normalized
}

type choiceValue struct {
	current string
	target  *string
	choices []string
}

func (value *choiceValue) assign(choice string) {
	value.current = choice
	if value.target != nil {
		*value.target = choice
	}
}

func (value *choiceValue) Set(rawValue string) error {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if !slices.Contains(value.choices, normalizedValue) {
		return fmt.Errorf(choiceParseErrorTemplate, rawValue, strings.Join(value.choices, choiceSeparatorLiteral))
	}
	value.assign(normalizedValue)
	return nil
}

func (value *choiceValue) String() string {
	if value == nil {
		return ""
	}
	return value.current
}

func (value *choiceValue) Type() string {
	return choiceValueTypeConstant
}
