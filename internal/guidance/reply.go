package guidance

import (
	"net/url"
	"strings"

	"github.com/ppiankov/wildaware/internal/model"
)

// LowConfidenceDisclaimer is appended to replies below the confidence threshold
const LowConfidenceDisclaimer = "If this doesn't match your situation, please provide more details about the animal's appearance and behavior."

// Immediate actions for high-urgency encounters, keyed by a word of the species guess
var immediateActions = map[string][]string{
	"snake":  {"Keep 6+ feet distance", "Secure children/pets", "Do NOT approach", "Call rescue immediately"},
	"monkey": {"Avoid eye contact", "Back away slowly", "Secure all food", "Do not run"},
	"dog":    {"Stand still, no sudden moves", "Avoid eye contact", "Do not run or shout", "Speak calmly"},
}

// ComposeReply builds the rule-based reply for a classification. The
// disclaimer is added when the result is below threshold; pass a
// non-positive threshold to use the default of 0.7.
func ComposeReply(result model.ClassificationResult, threshold float64) string {
	if threshold <= 0 {
		threshold = 0.7
	}
	var b strings.Builder

	if result.Urgency == model.UrgencyHigh {
		b.WriteString("HIGH URGENCY DETECTED - ")
		b.WriteString(strings.ToUpper(result.SpeciesGuess))
		b.WriteString(" ENCOUNTER\n\nIMMEDIATE ACTIONS:\n")
		for _, a := range actionsFor(result.SpeciesGuess) {
			b.WriteString("- ")
			b.WriteString(a)
			b.WriteString("\n")
		}
		b.WriteString("\nSee the safety guidelines and emergency contacts below.")
	} else {
		b.WriteString("Based on your description, I've identified this as a ")
		b.WriteString(result.SpeciesGuess)
		b.WriteString(" encounter with ")
		b.WriteString(string(result.Urgency))
		b.WriteString(" urgency.\n\n")
		switch result.Intent {
		case model.IntentCallHelp:
			b.WriteString("Here are rescue organizations in your area.")
		case model.IntentReportSighting:
			b.WriteString("You can report this sighting so wildlife patterns in your area can be tracked.")
		default:
			b.WriteString("Here are specific safety guidelines for ")
			b.WriteString(result.SpeciesGuess)
			b.WriteString(" encounters. Follow the DO's and avoid the DON'Ts.")
		}
	}

	if result.Confidence < threshold {
		b.WriteString("\n\n")
		b.WriteString(LowConfidenceDisclaimer)
	}
	return b.String()
}

func actionsFor(guess string) []string {
	for _, w := range strings.Fields(strings.ToLower(guess)) {
		if a, ok := immediateActions[w]; ok {
			return a
		}
	}
	return nil
}

func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
