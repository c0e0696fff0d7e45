package coaching

import "github.com/kairoshq/kairos/internal/model"

// Phase order per session kind. Sessions only move forward; a model reply
// declaring an earlier or unknown phase is ignored and the current phase
// stands.
var (
	initialPhases = []string{
		model.PhaseExploring,
		model.PhaseProposing,
		model.PhaseCreating,
		model.PhaseComplete,
	}
	reviewStages = []string{
		model.StageOpening,
		model.StageMidConversation,
		model.StageProposingChange,
		model.StageClosing,
	}
)

func phasesFor(kind string) []string {
	if kind == model.SessionKindReview {
		return reviewStages
	}
	return initialPhases
}

func OpeningPhase(kind string) string {
	return phasesFor(kind)[0]
}

func phaseIndex(kind, phase string) int {
	for i, p := range phasesFor(kind) {
		if p == phase {
			return i
		}
	}
	return -1
}

// AdvancePhase validates a declared phase against the session's current one
// and returns the phase the session should now be in.
func AdvancePhase(kind, current, declared string) string {
	di := phaseIndex(kind, declared)
	if di < 0 {
		return current
	}
	if ci := phaseIndex(kind, current); di <= ci {
		return current
	}
	return declared
}

// TerminalPhase reports whether the phase ends the session.
func TerminalPhase(kind, phase string) bool {
	order := phasesFor(kind)
	return phase == order[len(order)-1]
}
