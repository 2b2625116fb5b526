package report_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/flatmove/internal/report"
)

const (
	emptyReportCaseNameConstant     = "empty_report_prints_placeholders"
	mixedOutcomesCaseNameConstant   = "mixed_outcomes_grouped_by_phase"
	arrivalOrderCaseNameConstant    = "arrival_order_preserved_within_section"
	ambiguousNameCaseNameConstant   = "display_name_matching_header_classified_by_phase"
	detailSuffixCaseNameConstant    = "detail_rendered_in_parentheses"
)

func TestAggregatorRender(testInstance *testing.T) {
	testCases := []struct {
		name           string
		outcomes       []report.Outcome
		expectedOutput string
	}{
		{
			name:     emptyReportCaseNameConstant,
			outcomes: nil,
			expectedOutput: "Migration summary\n" +
				"Installed:\n  (none)\n" +
				"Removed:\n  (none)\n" +
				"Other:\n  (none)\n" +
				"Failed:\n  (none)\n",
		},
		{
			name: mixedOutcomesCaseNameConstant,
			outcomes: []report.Outcome{
				{DisplayName: "Firefox", Phase: report.OutcomePhaseInstalledTarget},
				{DisplayName: "VLC", Phase: report.OutcomePhaseRemovedLegacy},
				{DisplayName: "GIMP", Phase: report.OutcomePhaseAlreadyPresent},
				{DisplayName: "Thunderbird", Phase: report.OutcomePhaseSkipped},
				{DisplayName: "LibreOffice", Phase: report.OutcomePhaseFailed, Detail: "install attempts exhausted"},
			},
			expectedOutput: "Migration summary\n" +
				"Installed:\n  Firefox\n" +
				"Removed:\n  VLC\n" +
				"Other:\n  GIMP\n  Thunderbird\n" +
				"Failed:\n  LibreOffice (install attempts exhausted)\n",
		},
		{
			name: arrivalOrderCaseNameConstant,
			outcomes: []report.Outcome{
				{DisplayName: "VLC", Phase: report.OutcomePhaseInstalledTarget},
				{DisplayName: "Firefox", Phase: report.OutcomePhaseInstalledTarget},
			},
			expectedOutput: "Migration summary\n" +
				"Installed:\n  VLC\n  Firefox\n" +
				"Removed:\n  (none)\n" +
				"Other:\n  (none)\n" +
				"Failed:\n  (none)\n",
		},
		{
			name: ambiguousNameCaseNameConstant,
			outcomes: []report.Outcome{
				{DisplayName: "Installed: Viewer", Phase: report.OutcomePhaseFailed, Detail: "removal failed"},
			},
			expectedOutput: "Migration summary\n" +
				"Installed:\n  (none)\n" +
				"Removed:\n  (none)\n" +
				"Other:\n  (none)\n" +
				"Failed:\n  Installed: Viewer (removal failed)\n",
		},
		{
			name: detailSuffixCaseNameConstant,
			outcomes: []report.Outcome{
				{DisplayName: "GIMP", Phase: report.OutcomePhaseSkipped, Detail: "no flatpak application configured"},
			},
			expectedOutput: "Migration summary\n" +
				"Installed:\n  (none)\n" +
				"Removed:\n  (none)\n" +
				"Other:\n  GIMP (no flatpak application configured)\n" +
				"Failed:\n  (none)\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			aggregator := report.NewAggregator()
			for _, outcome := range testCase.outcomes {
				aggregator.Record(outcome)
			}

			var outputBuilder strings.Builder
			require.NoError(subtestInstance, aggregator.Render(&outputBuilder))
			require.Equal(subtestInstance, testCase.expectedOutput, outputBuilder.String())
		})
	}
}

func TestAggregatorFailureCount(testInstance *testing.T) {
	aggregator := report.NewAggregator()
	aggregator.Record(report.Outcome{DisplayName: "Firefox", Phase: report.OutcomePhaseInstalledTarget})
	aggregator.Record(report.Outcome{DisplayName: "VLC", Phase: report.OutcomePhaseFailed})
	aggregator.Record(report.Outcome{DisplayName: "GIMP", Phase: report.OutcomePhaseFailed})

	require.Equal(testInstance, 2, aggregator.FailureCount())
}

func TestAggregatorOutcomesReturnsCopy(testInstance *testing.T) {
	aggregator := report.NewAggregator()
	aggregator.Record(report.Outcome{DisplayName: "Firefox", Phase: report.OutcomePhaseInstalledTarget})

	recorded := aggregator.Outcomes()
	recorded[0].DisplayName = "mutated"

	require.Equal(testInstance, "Firefox", aggregator.Outcomes()[0].DisplayName)
}
