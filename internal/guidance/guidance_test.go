package guidance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/wildaware/internal/catalog"
	"github.com/ppiankov/wildaware/internal/model"
)

func orgIDs(orgs []model.RescueOrg) []int {
	ids := make([]int, 0, len(orgs))
	for _, o := range orgs {
		ids = append(ids, o.ID)
	}
	return ids
}

func TestGuidelineFor(t *testing.T) {
	cat := catalog.Seed()

	g, sp, ok := GuidelineFor(cat, "stray dog")
	require.True(t, ok)
	assert.Equal(t, 3, sp.ID)
	assert.Equal(t, 3, g.SpeciesID)
	assert.Contains(t, g.Donts, "Do not run away")

	_, _, ok = GuidelineFor(cat, model.UnknownSpecies)
	assert.False(t, ok)

	_, _, ok = GuidelineFor(nil, "snake")
	assert.False(t, ok)

	cat.Guidelines = nil
	_, sp, ok = GuidelineFor(cat, "Snake")
	assert.False(t, ok)
	assert.Equal(t, "Snake", sp.CommonName, "species is still returned without a guideline")
}

func TestRescueContacts(t *testing.T) {
	cat := catalog.Seed()

	tests := []struct {
		name    string
		species string
		city    string
		limit   int
		want    []int
	}{
		{name: "no filters", limit: 10, want: []int{1, 3, 5, 2, 4}},
		{name: "default limit", want: []int{1, 3, 5}},
		{name: "snake anywhere", species: "snake", want: []int{1, 5, 2}},
		{name: "snake in kochi", species: "snake", city: "Kochi", want: []int{1, 2}},
		{name: "city substring case-insensitive", species: "snake", city: "koch", want: []int{1, 2}},
		{name: "city match breaks ties", city: "Thrissur", want: []int{5, 1}},
		{name: "multi-word species matches by word", species: "stray dog", want: []int{1, 3, 5}},
		{name: "unknown species skips species filter", species: model.UnknownSpecies, city: "Kozhikode", want: []int{1, 4}},
		{name: "unserved city keeps statewide", species: "monkey", city: "Mumbai", want: []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res *model.ClassificationResult
			if tt.species != "" {
				res = &model.ClassificationResult{SpeciesGuess: tt.species}
			}
			got := RescueContacts(cat, res, tt.city, tt.limit)
			assert.Equal(t, tt.want, orgIDs(got))
		})
	}
}

func TestRescueContacts_WildlifeSupport(t *testing.T) {
	cat := &catalog.Catalog{RescueOrgs: []model.RescueOrg{
		{ID: 1, City: "Kochi", Hours: "9-5", SpeciesSupported: []string{"Wildlife"}},
		{ID: 2, City: "Kochi", Hours: "9-5", SpeciesSupported: []string{"snake"}},
	}}
	got := RescueContacts(cat, &model.ClassificationResult{SpeciesGuess: "cobra"}, "", 0)
	assert.Equal(t, []int{1}, orgIDs(got))
}

func TestComposeReply(t *testing.T) {
	t.Run("high urgency lists immediate actions", func(t *testing.T) {
		reply := ComposeReply(model.ClassificationResult{
			SpeciesGuess: "stray dog", Urgency: model.UrgencyHigh, Intent: model.IntentAskGuidance, Confidence: 0.9,
		}, 0.7)
		assert.True(t, strings.HasPrefix(reply, "HIGH URGENCY DETECTED - STRAY DOG ENCOUNTER"))
		assert.Contains(t, reply, "- Stand still, no sudden moves")
		assert.NotContains(t, reply, LowConfidenceDisclaimer)
	})

	t.Run("high urgency unknown species has no action list", func(t *testing.T) {
		reply := ComposeReply(model.ClassificationResult{
			SpeciesGuess: model.UnknownSpecies, Urgency: model.UrgencyHigh, Intent: model.IntentAskGuidance, Confidence: 0.6,
		}, 0)
		assert.Contains(t, reply, "UNKNOWN ENCOUNTER")
		assert.NotContains(t, reply, "IMMEDIATE ACTIONS:\n- ")
		assert.Contains(t, reply, LowConfidenceDisclaimer)
	})

	intents := []struct {
		intent model.Intent
		want   string
	}{
		{model.IntentCallHelp, "rescue organizations in your area"},
		{model.IntentReportSighting, "report this sighting"},
		{model.IntentAskGuidance, "safety guidelines for monkey encounters"},
	}
	for _, tt := range intents {
		t.Run(string(tt.intent), func(t *testing.T) {
			reply := ComposeReply(model.ClassificationResult{
				SpeciesGuess: "monkey", Urgency: model.UrgencyMedium, Intent: tt.intent, Confidence: 0.8,
			}, 0.7)
			assert.Contains(t, reply, "identified this as a monkey encounter with medium urgency")
			assert.Contains(t, reply, tt.want)
			assert.NotContains(t, reply, LowConfidenceDisclaimer)
		})
	}

	t.Run("disclaimer below threshold", func(t *testing.T) {
		reply := ComposeReply(model.ClassificationResult{
			SpeciesGuess: model.UnknownSpecies, Urgency: model.UrgencyLow, Intent: model.IntentAskGuidance, Confidence: 0.5,
		}, 0.7)
		assert.True(t, strings.HasSuffix(reply, LowConfidenceDisclaimer))
	})
}

func TestWhatsApp(t *testing.T) {
	res := &model.ClassificationResult{SpeciesGuess: "snake", Urgency: model.UrgencyHigh}
	assert.Equal(t, "Hi, I need help with a snake encounter. high urgency.", WhatsAppMessage(res))
	assert.Equal(t, "Hi, I need help with a wildlife encounter.", WhatsAppMessage(nil))

	link := WhatsAppLink("+91 98765-43210", res)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/919876543210?text=Hi%2C%20I%20need"))
	assert.Empty(t, WhatsAppLink("n/a", res))
}

func TestUrgencyNote(t *testing.T) {
	assert.Empty(t, UrgencyNote(nil))
	assert.Equal(t, "HIGH URGENCY - Call immediately!", UrgencyNote(&model.ClassificationResult{Urgency: model.UrgencyHigh}))
	assert.Equal(t, "For guidance and assistance", UrgencyNote(&model.ClassificationResult{Urgency: model.UrgencyLow}))
}
