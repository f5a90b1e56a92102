package domain

import "fmt"

// Intent selects the prompt contract and answer schema for a question.
type Intent string

const (
	IntentMajorRecommendation Intent = "major-recommendation"
	IntentCurriculumPlan      Intent = "curriculum-plan"
	IntentAdmissionCutoffs    Intent = "admission-cutoffs"
)

// Intents lists every supported intent in display order.
func Intents() []Intent {
	return []Intent{IntentMajorRecommendation, IntentCurriculumPlan, IntentAdmissionCutoffs}
}

// IsValid reports whether the intent is one of the supported values.
func (i Intent) IsValid() bool {
	switch i {
	case IntentMajorRecommendation, IntentCurriculumPlan, IntentAdmissionCutoffs:
		return true
	}
	return false
}

// ParseIntent converts a string to an Intent.
func ParseIntent(s string) (Intent, error) {
	i := Intent(s)
	if !i.IsValid() {
		return "", Wrap(ErrUnknownIntent, fmt.Errorf("%q", s))
	}
	return i, nil
}
