// Package catalog provides the species reference list together with the
// safety guidelines and rescue organizations keyed off it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/wildaware/internal/model"
)

// ErrEmptyCatalog is returned when a source yields no species at all
var ErrEmptyCatalog = errors.New("catalog has no species")

// Catalog is a read-only snapshot of the reference data
type Catalog struct {
	Species    []model.Species         `json:"species" yaml:"species"`
	Guidelines []model.SafetyGuideline `json:"safety_guidelines" yaml:"safety_guidelines"`
	RescueOrgs []model.RescueOrg       `json:"rescue_orgs" yaml:"rescue_orgs"`
}

// Provider supplies catalog snapshots. Implementations may serve a
// compiled-in table or fetch one at runtime.
type Provider interface {
	Catalog(ctx context.Context) (*Catalog, error)
}

// Static serves a fixed catalog
type Static struct {
	cat *Catalog
}

// NewStatic returns a provider for the given catalog, or the seed catalog when cat is nil
func NewStatic(cat *Catalog) *Static {
	if cat == nil {
		cat = Seed()
	}
	return &Static{cat: cat}
}

// Catalog returns the fixed catalog
func (s *Static) Catalog(ctx context.Context) (*Catalog, error) {
	return s.cat, nil
}

// SpeciesByName finds a species by case-folded common name
func (c *Catalog) SpeciesByName(name string) (model.Species, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, sp := range c.Species {
		if strings.ToLower(sp.CommonName) == name {
			return sp, true
		}
	}
	return model.Species{}, false
}

// GuidelineFor returns the safety guideline for a species id
func (c *Catalog) GuidelineFor(speciesID int) (model.SafetyGuideline, bool) {
	for _, g := range c.Guidelines {
		if g.SpeciesID == speciesID {
			return g, true
		}
	}
	return model.SafetyGuideline{}, false
}

// Normalize lower-cases and trims keywords so matching is case-insensitive
// regardless of how the source spelled them.
func (c *Catalog) Normalize() {
	for i := range c.Species {
		kws := make([]string, 0, len(c.Species[i].Keywords))
		for _, kw := range c.Species[i].Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		c.Species[i].Keywords = kws
	}
	for i := range c.RescueOrgs {
		for j, s := range c.RescueOrgs[i].SpeciesSupported {
			c.RescueOrgs[i].SpeciesSupported[j] = strings.ToLower(strings.TrimSpace(s))
		}
	}
}

// Validate checks the invariants the classifier relies on
func (c *Catalog) Validate() error {
	if len(c.Species) == 0 {
		return ErrEmptyCatalog
	}

	seen := make(map[string]bool, len(c.Species))
	for i, sp := range c.Species {
		name := strings.ToLower(strings.TrimSpace(sp.CommonName))
		if name == "" {
			return fmt.Errorf("species[%d]: common_name is required", i)
		}
		if name == model.UnknownSpecies {
			return fmt.Errorf("species[%d]: %q is reserved", i, model.UnknownSpecies)
		}
		if seen[name] {
			return fmt.Errorf("species[%d]: duplicate common_name %q", i, sp.CommonName)
		}
		seen[name] = true

		switch sp.RiskLevel {
		case model.RiskLow, model.RiskMedium, model.RiskHigh:
		default:
			return fmt.Errorf("species %q: invalid risk_level %q", sp.CommonName, sp.RiskLevel)
		}
	}
	return nil
}
