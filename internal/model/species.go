package model

// RiskLevel is the baseline danger a species poses to people
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Species is one entry of the species reference list
type Species struct {
	ID          int       `json:"id" yaml:"id"`
	CommonName  string    `json:"common_name" yaml:"common_name"`
	RiskLevel   RiskLevel `json:"risk_level" yaml:"risk_level"`
	Keywords    []string  `json:"keywords" yaml:"keywords"` // Lower-case substrings used for matching
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	ImageRef    string    `json:"image_ref,omitempty" yaml:"image_ref,omitempty"`
}

// SafetyGuideline holds the do/don't advice for one species
type SafetyGuideline struct {
	ID             int      `json:"id" yaml:"id"`
	SpeciesID      int      `json:"species_id" yaml:"species_id"`
	Dos            []string `json:"dos" yaml:"dos"`
	Donts          []string `json:"donts" yaml:"donts"`
	FirstAid       string   `json:"first_aid" yaml:"first_aid"`
	AuthorityNotes string   `json:"authority_notes,omitempty" yaml:"authority_notes,omitempty"`
}

// RescueOrg is a rescue organization or helpline
type RescueOrg struct {
	ID               int      `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	City             string   `json:"city" yaml:"city"` // "Statewide" matches every city
	Phone            string   `json:"phone" yaml:"phone"`
	WhatsApp         string   `json:"whatsapp,omitempty" yaml:"whatsapp,omitempty"`
	Hours            string   `json:"hours" yaml:"hours"`
	SpeciesSupported []string `json:"species_supported" yaml:"species_supported"`
}

// StatewideCity marks organizations that serve every city
const StatewideCity = "Statewide"
