package report

import (
	"fmt"
	"io"
)

// OutcomePhase identifies the terminal state an application reached during a run.
type OutcomePhase string

// Terminal phases recorded for catalog entries.
const (
	OutcomePhaseRemovedLegacy   OutcomePhase = "removed-legacy"
	OutcomePhaseInstalledTarget OutcomePhase = "installed-target"
	OutcomePhaseAlreadyPresent  OutcomePhase = "already-present"
	OutcomePhaseSkipped         OutcomePhase = "skipped"
	OutcomePhaseFailed          OutcomePhase = "failed"
)

const (
	reportHeaderConstant            = "Migration summary"
	installedSectionHeaderConstant  = "Installed:"
	removedSectionHeaderConstant    = "Removed:"
	otherSectionHeaderConstant      = "Other:"
	failedSectionHeaderConstant     = "Failed:"
	sectionEmptyPlaceholderConstant = "  (none)"
	outcomeLineTemplateConstant     = "  %s"
	outcomeDetailTemplateConstant   = "  %s (%s)"
	newlineConstant                 = "\n"
)

// Outcome captures the terminal state of a single catalog entry.
type Outcome struct {
	DisplayName string
	Phase       OutcomePhase
	Detail      string
}

// Aggregator collects per-entry outcomes and renders the end-of-run summary.
type Aggregator struct {
	outcomes []Outcome
}

// NewAggregator constructs an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record appends an outcome in arrival order.
func (aggregator *Aggregator) Record(outcome Outcome) {
	aggregator.outcomes = append(aggregator.outcomes, outcome)
}

// Outcomes returns the recorded outcomes in arrival order.
func (aggregator *Aggregator) Outcomes() []Outcome {
	recorded := make([]Outcome, len(aggregator.outcomes))
	copy(recorded, aggregator.outcomes)
	return recorded
}

// FailureCount reports how many recorded outcomes ended in the failed phase.
func (aggregator *Aggregator) FailureCount() int {
	failureCount := 0
	for _, outcome := range aggregator.outcomes {
		if outcome.Phase == OutcomePhaseFailed {
			failureCount++
		}
	}
	return failureCount
}

// Render writes the categorized summary. Sections appear in a fixed order and
// entries within a section preserve arrival order.
func (aggregator *Aggregator) Render(outputWriter io.Writer) error {
	sections := []struct {
		header string
		phases []OutcomePhase
	}{
		{header: installedSectionHeaderConstant, phases: []OutcomePhase{OutcomePhaseInstalledTarget}},
		{header: removedSectionHeaderConstant, phases: []OutcomePhase{OutcomePhaseRemovedLegacy}},
		{header: otherSectionHeaderConstant, phases: []OutcomePhase{OutcomePhaseAlreadyPresent, OutcomePhaseSkipped}},
		{header: failedSectionHeaderConstant, phases: []OutcomePhase{OutcomePhaseFailed}},
	}

	if _, writeError := fmt.Fprint(outputWriter, reportHeaderConstant, newlineConstant); writeError != nil {
		return writeError
	}

	for _, section := range sections {
		if _, writeError := fmt.Fprint(outputWriter, section.header, newlineConstant); writeError != nil {
			return writeError
		}

		sectionOutcomes := aggregator.outcomesForPhases(section.phases)
		if len(sectionOutcomes) == 0 {
			if _, writeError := fmt.Fprint(outputWriter, sectionEmptyPlaceholderConstant, newlineConstant); writeError != nil {
				return writeError
			}
			continue
		}

		for _, outcome := range sectionOutcomes {
			outcomeLine := fmt.Sprintf(outcomeLineTemplateConstant, outcome.DisplayName)
			if len(outcome.Detail) > 0 {
				outcomeLine = fmt.Sprintf(outcomeDetailTemplateConstant, outcome.DisplayName, outcome.Detail)
			}
			if _, writeError := fmt.Fprint(outputWriter, outcomeLine, newlineConstant); writeError != nil {
				return writeError
			}
		}
	}

	return nil
}

func (aggregator *Aggregator) outcomesForPhases(phases []OutcomePhase) []Outcome {
	var matching []Outcome
	for _, outcome := range aggregator.outcomes {
		for _, phase := range phases {
			if outcome.Phase == phase {
				matching = append(matching, outcome)
				break
			}
		}
	}
	return matching
}
