package utils_test

import (
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fleetctl/internal/utils"
)

func exactMatch(referenceEntry string, value string) bool {
	return referenceEntry == value
}

func TestManualOrderCompareSorting(testInstance *testing.T) {
	testCases := []struct {
		name          string
		reference     []string
		equivalent    func(string, string) bool
		values        []string
		expectedOrder []string
	}{
		{
			name:          "reference_then_unmatched",
			reference:     []string{"b", "a"},
			equivalent:    exactMatch,
			values:        []string{"a", "b", "c"},
			expectedOrder: []string{"b", "a", "c"},
		},
		{
			name:          "unmatched_use_natural_order",
			reference:     []string{"zeta"},
			equivalent:    exactMatch,
			values:        []string{"gamma", "zeta", "alpha", "beta"},
			expectedOrder: []string{"zeta", "alpha", "beta", "gamma"},
		},
		{
			name:          "found_wins_regardless_of_natural_value",
			reference:     []string{"zz"},
			equivalent:    exactMatch,
			values:        []string{"a", "zz"},
			expectedOrder: []string{"zz", "a"},
		},
		{
			name:          "empty_reference",
			reference:     nil,
			equivalent:    exactMatch,
			values:        []string{"c", "a", "b"},
			expectedOrder: []string{"a", "b", "c"},
		},
		{
			name:      "prefix_equivalence_uses_first_match",
			reference: []string{"us-", "eu-"},
			equivalent: func(referenceEntry string, value string) bool {
				return strings.HasPrefix(value, referenceEntry)
			},
			values:        []string{"ap-south", "eu-west", "us-east", "eu-central", "us-west"},
			expectedOrder: []string{"us-east", "us-west", "eu-west", "eu-central", "ap-south"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sortedValues := slices.Clone(testCase.values)
			slices.SortStableFunc(sortedValues, utils.ManualOrderCompare(testCase.reference, testCase.equivalent))
			require.Equal(testInstance, testCase.expectedOrder, sortedValues)
		})
	}
}

func TestManualOrderCompareNumericValues(testInstance *testing.T) {
	compare := utils.ManualOrderCompare([]string{"443", "80"}, func(referenceEntry string, port int) bool {
		return referenceEntry == strconv.Itoa(port)
	})

	ports := []int{8080, 80, 22, 443}
	slices.SortFunc(ports, compare)
	require.Equal(testInstance, []int{443, 80, 22, 8080}, ports)
}

func TestManualOrderCompareIsConsistent(testInstance *testing.T) {
	compare := utils.ManualOrderCompare([]string{"b", "a"}, exactMatch)
	values := []string{"a", "b", "c", "d"}

	for _, first := range values {
		require.Zero(testInstance, compare(first, first))
		for _, second := range values {
			require.Equal(testInstance, -compare(first, second), compare(second, first))
		}
	}
}
