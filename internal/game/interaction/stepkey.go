package interaction

import "strings"

// StepKey identifies one pending step by owner, kind and constraints. Two
// announcements with equal keys are the same step.
type StepKey string

// KeyFor derives the key of a.
func KeyFor(a Awaiting) StepKey {
	source := "script"
	if a.Source == SourceEndTurnDiscard {
		source = "discard"
	}
	return StepKey(strings.Join([]string{
		string(a.Owner),
		string(a.Kind),
		source,
		a.CardID,
		a.Suggestions.Canonical(),
		a.Filters,
	}, "|"))
}
