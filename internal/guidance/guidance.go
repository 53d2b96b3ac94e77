// Package guidance turns a classification into safety advice: the matching
// guideline, nearby rescue contacts and a rule-based reply.
package guidance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/wildaware/internal/catalog"
	"github.com/ppiankov/wildaware/internal/model"
)

// DefaultRescueLimit is how many rescue contacts are shown when no limit is given
const DefaultRescueLimit = 3

// WildlifeSupport marks organizations that accept every species
const WildlifeSupport = "wildlife"

// GuidelineFor looks up the species named by a species guess and its guideline.
// ok is false when either is missing.
func GuidelineFor(cat *catalog.Catalog, speciesGuess string) (model.SafetyGuideline, model.Species, bool) {
	if cat == nil {
		return model.SafetyGuideline{}, model.Species{}, false
	}
	sp, found := cat.SpeciesByName(speciesGuess)
	if !found {
		return model.SafetyGuideline{}, model.Species{}, false
	}
	g, found := cat.GuidelineFor(sp.ID)
	if !found {
		return model.SafetyGuideline{}, sp, false
	}
	return g, sp, true
}

// RescueContacts filters rescue organizations by city and species support and
// returns at most limit of them, round-the-clock services first, then those in
// the requested city. A nil classification or an unknown species skips the
// species filter; an empty city skips the city filter.
func RescueContacts(cat *catalog.Catalog, result *model.ClassificationResult, city string, limit int) []model.RescueOrg {
	if cat == nil {
		return nil
	}
	if limit <= 0 {
		limit = DefaultRescueLimit
	}
	city = strings.ToLower(strings.TrimSpace(city))

	var out []model.RescueOrg
	for _, org := range cat.RescueOrgs {
		if city != "" && !matchesCity(org, city) && org.City != model.StatewideCity {
			continue
		}
		if result != nil && result.KnownSpecies() && !supportsSpecies(org, result.SpeciesGuess) {
			continue
		}
		out = append(out, org)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := roundTheClock(out[i]), roundTheClock(out[j])
		if ai != aj {
			return ai
		}
		if city != "" {
			ci, cj := matchesCity(out[i], city), matchesCity(out[j], city)
			if ci != cj {
				return ci
			}
		}
		return false
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func matchesCity(org model.RescueOrg, city string) bool {
	return strings.Contains(strings.ToLower(org.City), city)
}

func roundTheClock(org model.RescueOrg) bool {
	return strings.Contains(org.Hours, "24")
}

// supportsSpecies matches the whole guess or any of its words, so "stray dog"
// is served by organizations listing "dog".
func supportsSpecies(org model.RescueOrg, guess string) bool {
	guess = strings.ToLower(guess)
	words := strings.Fields(guess)
	for _, s := range org.SpeciesSupported {
		s = strings.ToLower(s)
		if s == WildlifeSupport || s == guess {
			return true
		}
		for _, w := range words {
			if s == w {
				return true
			}
		}
	}
	return false
}

// UrgencyNote is the one-line call-to-action shown next to rescue contacts
func UrgencyNote(result *model.ClassificationResult) string {
	if result == nil {
		return ""
	}
	switch result.Urgency {
	case model.UrgencyHigh:
		return "HIGH URGENCY - Call immediately!"
	case model.UrgencyMedium:
		return "Moderate urgency - Contact soon"
	default:
		return "For guidance and assistance"
	}
}

// WhatsAppMessage is the prefilled text for contacting a rescue organization
func WhatsAppMessage(result *model.ClassificationResult) string {
	if result == nil {
		return "Hi, I need help with a wildlife encounter."
	}
	return fmt.Sprintf("Hi, I need help with a %s encounter. %s urgency.", result.SpeciesGuess, result.Urgency)
}

// WhatsAppLink builds a wa.me link carrying the prefilled message
func WhatsAppLink(number string, result *model.ClassificationResult) string {
	number = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if number == "" {
		return ""
	}
	return "https://wa.me/" + number + "?text=" + queryEscape(WhatsAppMessage(result))
}
