// Package classify maps a free-text encounter description to a species,
// urgency, intent and confidence using keyword rules.
package classify

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/wildaware/internal/catalog"
	"github.com/ppiankov/wildaware/internal/model"
)

// Confidence scoring
const (
	BaseConfidence  = 0.5
	SpeciesBoost    = 0.3 // At least one species keyword matched
	IntentBoost     = 0.1 // Intent other than ask_guidance
	UrgencyBoost    = 0.1 // High urgency
	MaxConfidence   = 1.0
	DefaultLowBound = 0.7 // Below this a reply carries a disclaimer
)

// Intent rules, evaluated in order; the first set with a match wins
var (
	sightingKeywords = []string{"spotted", "sighting", "saw", "found"}
	helpKeywords     = []string{"who to call", "help me", "emergency", "rescue"}
)

// Urgency rules, high before medium
var (
	highUrgencyKeywords   = []string{"bite", "bitten", "bleeding", "attacked", "child", "trapped", "inside room", "house", "bedroom", "aggressive", "charging"}
	mediumUrgencyKeywords = []string{"close", "near", "approaching", "following", "won't leave", "blocking"}
)

// Classifier classifies messages against a species reference list.
// It holds its own copy of the list and is safe for concurrent use.
type Classifier struct {
	species       []model.Species
	lowConfidence float64
}

// Option configures a Classifier
type Option func(*Classifier)

// WithLowConfidenceThreshold sets the bound used by LowConfidence
func WithLowConfidenceThreshold(threshold float64) Option {
	return func(c *Classifier) {
		if threshold > 0 {
			c.lowConfidence = threshold
		}
	}
}

// New creates a classifier over species. List order is match precedence.
func New(species []model.Species, opts ...Option) *Classifier {
	c := &Classifier{
		species:       copySpecies(species),
		lowConfidence: DefaultLowBound,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromProvider builds a classifier from the provider's current catalog
func NewFromProvider(ctx context.Context, p catalog.Provider, opts ...Option) (*Classifier, error) {
	cat, err := p.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return New(cat.Species, opts...), nil
}

var defaultClassifier = New(catalog.Seed().Species)

// Classify classifies message against the built-in species list
func Classify(message string) model.ClassificationResult {
	return defaultClassifier.Classify(message)
}

// Classify never fails: empty or unrecognisable input yields the
// unknown/low/ask_guidance default at base confidence.
func (c *Classifier) Classify(message string) model.ClassificationResult {
	text := strings.ToLower(message)
	reasoning := make([]string, 0, 4)

	intent, why := detectIntent(text)
	if why != "" {
		reasoning = append(reasoning, why)
	}

	urgency, why := detectUrgency(text)
	if why != "" {
		reasoning = append(reasoning, why)
	}

	speciesGuess, maxMatches, steps := c.identifySpecies(text)
	reasoning = append(reasoning, steps...)

	return model.ClassificationResult{
		SpeciesGuess: speciesGuess,
		Urgency:      urgency,
		Intent:       intent,
		Confidence:   confidence(maxMatches > 0, intent, urgency),
		Reasoning:    reasoning,
	}
}

// LowConfidence reports whether a reply for r should ask for more detail
func (c *Classifier) LowConfidence(r model.ClassificationResult) bool {
	return r.Confidence < c.lowConfidence
}

// Threshold is the confidence below which LowConfidence reports true
func (c *Classifier) Threshold() float64 {
	return c.lowConfidence
}

// Species returns a copy of the reference list in precedence order
func (c *Classifier) Species() []model.Species {
	return copySpecies(c.species)
}

func detectIntent(text string) (model.Intent, string) {
	if hits := matching(text, sightingKeywords); len(hits) > 0 {
		return model.IntentReportSighting, fmt.Sprintf("Detected sighting keywords: %s", strings.Join(hits, ", "))
	}
	if hits := matching(text, helpKeywords); len(hits) > 0 {
		return model.IntentCallHelp, fmt.Sprintf("Detected help request keywords: %s", strings.Join(hits, ", "))
	}
	return model.IntentAskGuidance, ""
}

func detectUrgency(text string) (model.Urgency, string) {
	if hits := matching(text, highUrgencyKeywords); len(hits) > 0 {
		return model.UrgencyHigh, fmt.Sprintf("High urgency indicators detected: %s", strings.Join(hits, ", "))
	}
	if hits := matching(text, mediumUrgencyKeywords); len(hits) > 0 {
		return model.UrgencyMedium, fmt.Sprintf("Medium urgency indicators detected: %s", strings.Join(hits, ", "))
	}
	return model.UrgencyLow, ""
}

// identifySpecies keeps the species with the strictly highest keyword
// count; on a tie the earlier species stays.
func (c *Classifier) identifySpecies(text string) (string, int, []string) {
	guess := model.UnknownSpecies
	maxMatches := 0
	var steps []string

	for _, sp := range c.species {
		matches := len(matching(text, sp.Keywords))
		if matches > maxMatches {
			maxMatches = matches
			guess = strings.ToLower(sp.CommonName)
			steps = append(steps, fmt.Sprintf("Identified as %s based on %d keyword(s)", sp.CommonName, matches))
		}
	}

	return guess, maxMatches, steps
}

func confidence(speciesMatched bool, intent model.Intent, urgency model.Urgency) float64 {
	score := BaseConfidence
	if speciesMatched {
		score += SpeciesBoost
	}
	if intent != model.IntentAskGuidance {
		score += IntentBoost
	}
	if urgency == model.UrgencyHigh {
		score += UrgencyBoost
	}

	score = math.Min(score, MaxConfidence)
	// One decimal place keeps the levels exact (0.5+0.1+0.1 == 0.7)
	return math.Round(score*10) / 10
}

// matching returns the keywords that occur in text, in keyword order
func matching(text string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

func copySpecies(in []model.Species) []model.Species {
	out := make([]model.Species, len(in))
	for i, sp := range in {
		out[i] = sp
		out[i].Keywords = make([]string, 0, len(sp.Keywords))
		for _, kw := range sp.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				out[i].Keywords = append(out[i].Keywords, kw)
			}
		}
	}
	return out
}
