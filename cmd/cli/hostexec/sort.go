package hostexec

import (
	"bufio"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/fleetctl/internal/utils"
	flagutils "github.com/temirov/fleetctl/internal/utils/flags"
)

const (
	sortCommandUseConstant               = "sort [flags] [value...]"
	sortShortDescriptionConstant         = "Order values by a reference list"
	sortLongDescriptionConstant          = "sort prints the values, or the lines read from standard input when no values are given, with values named by --reference first in reference order and every other value after them in natural order."
	sortReferenceFlagNameConstant        = "reference"
	sortReferenceFlagDescriptionConstant = "Preferred order of values (comma separated or repeated)"
	sortPrefixFlagNameConstant           = "prefix"
	sortPrefixFlagDescriptionConstant    = "Match reference entries as value prefixes instead of exact values"
	sortMissingReferenceMessageConstant  = "sort requires --reference"
	sortInputReadErrorTemplateConstant   = "unable to read values: %w"
	sortOutputLineTemplateConstant       = "%s\n"
)

var errSortMissingReference = errors.New(sortMissingReferenceMessageConstant)

// SortCommandBuilder assembles the sort command.
type SortCommandBuilder struct{}

// Build constructs the sort command.
func (builder *SortCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   sortCommandUseConstant,
		Short: sortShortDescriptionConstant,
		Long:  sortLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringSlice(sortReferenceFlagNameConstant, nil, sortReferenceFlagDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, sortPrefixFlagNameConstant, "", false, sortPrefixFlagDescriptionConstant)

	return command, nil
}

func (builder *SortCommandBuilder) run(command *cobra.Command, arguments []string) error {
	reference, _ := command.Flags().GetStringSlice(sortReferenceFlagNameConstant)
	if len(reference) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errSortMissingReference
	}

	values := append([]string(nil), arguments...)
	if len(values) == 0 {
		inputValues, readError := readValueLines(command)
		if readError != nil {
			return fmt.Errorf(sortInputReadErrorTemplateConstant, readError)
		}
		values = inputValues
	}

	equivalent := func(referenceEntry string, value string) bool {
		return referenceEntry == value
	}
	if toggleFlagValue(command, sortPrefixFlagNameConstant) {
		equivalent = func(referenceEntry string, value string) bool {
			return strings.HasPrefix(value, referenceEntry)
		}
	}

	slices.SortStableFunc(values, utils.ManualOrderCompare(reference, equivalent))

	output := utils.NewFlushingWriter(command.OutOrStdout())
	for _, value := range values {
		if _, writeError := fmt.Fprintf(output, sortOutputLineTemplateConstant, value); writeError != nil {
			return writeError
		}
	}
	return nil
}

func readValueLines(command *cobra.Command) ([]string, error) {
	var values []string
	scanner := bufio.NewScanner(command.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		values = append(values, line)
	}
	return values, scanner.Err()
}
