package flags_test

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/temirov/flatmove/internal/utils/flags"
)

const (
	testToggleFlagNameConstant          = "install-only-missing"
	testToggleFlagUsageConstant         = "Install applications only when missing"
	testBareFlagCaseNameConstant        = "bare_flag_enables"
	testYesValueCaseNameConstant        = "yes_value_enables"
	testNoValueCaseNameConstant         = "no_value_disables"
	testOnValueCaseNameConstant         = "on_value_enables"
	testInvalidValueCaseNameConstant    = "invalid_value_rejected"
	testDefaultValueCaseNameConstant    = "default_preserved_without_flag"
	testToggleFlagAssignmentTemplateOne = "--install-only-missing"
)

func TestAddToggleFlagParsing(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		defaultValue  bool
		expectedValue bool
		expectError   bool
	}{
		{
			name:          testBareFlagCaseNameConstant,
			arguments:     []string{testToggleFlagAssignmentTemplateOne},
			expectedValue: true,
		},
		{
			name:          testYesValueCaseNameConstant,
			arguments:     []string{testToggleFlagAssignmentTemplateOne + "=yes"},
			expectedValue: true,
		},
		{
			name:          testNoValueCaseNameConstant,
			arguments:     []string{testToggleFlagAssignmentTemplateOne + "=no"},
			defaultValue:  true,
			expectedValue: false,
		},
		{
			name:          testOnValueCaseNameConstant,
			arguments:     []string{testToggleFlagAssignmentTemplateOne + "=on"},
			expectedValue: true,
		},
		{
			name:        testInvalidValueCaseNameConstant,
			arguments:   []string{testToggleFlagAssignmentTemplateOne + "=sometimes"},
			expectError: true,
		},
		{
			name:          testDefaultValueCaseNameConstant,
			arguments:     nil,
			defaultValue:  true,
			expectedValue: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			flagSet := pflag.NewFlagSet(testCase.name, pflag.ContinueOnError)
			var toggleTarget bool
			flags.AddToggleFlag(flagSet, &toggleTarget, testToggleFlagNameConstant, testCase.defaultValue, testToggleFlagUsageConstant)

			parseError := flagSet.Parse(testCase.arguments)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}

			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedValue, toggleTarget)
		})
	}
}
