package model

// UnknownSpecies is the species guess when no keyword matched
const UnknownSpecies = "unknown"

// Urgency is the classifier-assigned severity tier
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Intent is the classifier-assigned purpose of a message
type Intent string

const (
	IntentAskGuidance    Intent = "ask_guidance"
	IntentReportSighting Intent = "report_sighting"
	IntentCallHelp       Intent = "call_help"
)

// ClassificationResult is the outcome of classifying one message.
// It is created per message and never mutated afterwards.
type ClassificationResult struct {
	SpeciesGuess string   `json:"species_guess"` // "unknown" or a lower-cased common name
	Urgency      Urgency  `json:"urgency"`
	Intent       Intent   `json:"intent"`
	Confidence   float64  `json:"confidence"` // 0.5 to 1.0
	Reasoning    []string `json:"reasoning"`  // Rules that fired, in evaluation order
}

// KnownSpecies reports whether a species was identified
func (r ClassificationResult) KnownSpecies() bool {
	return r.SpeciesGuess != "" && r.SpeciesGuess != UnknownSpecies
}
