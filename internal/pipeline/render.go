package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/wildaware/internal/guidance"
	"github.com/ppiankov/wildaware/internal/model"
	"github.com/ppiankov/wildaware/internal/worker"
)

// Renderer writes results for terminal or machine consumption
type Renderer struct {
	verbose bool
}

// NewRenderer creates a renderer. Verbose output includes the reasoning trail.
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{verbose: verbose}
}

// RenderJSON writes v as indented JSON
func (r *Renderer) RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// RenderText writes a human-readable chat result
func (r *Renderer) RenderText(w io.Writer, res *ChatResult) error {
	var b strings.Builder
	cls := res.Classification

	fmt.Fprintf(&b, "Species:    %s\n", cls.SpeciesGuess)
	fmt.Fprintf(&b, "Urgency:    %s\n", cls.Urgency)
	fmt.Fprintf(&b, "Intent:     %s\n", cls.Intent)
	fmt.Fprintf(&b, "Confidence: %.1f", cls.Confidence)
	if res.LowConfidence {
		b.WriteString(" (low)")
	}
	b.WriteString("\n")
	if r.verbose {
		for _, why := range cls.Reasoning {
			fmt.Fprintf(&b, "  - %s\n", why)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", res.Reply)

	if res.Guideline != nil {
		name := cls.SpeciesGuess
		if res.Species != nil {
			name = res.Species.CommonName
		}
		fmt.Fprintf(&b, "\nSafety guidelines: %s\n", name)
		writeList(&b, "DO", res.Guideline.Dos)
		writeList(&b, "DON'T", res.Guideline.Donts)
		if res.Guideline.FirstAid != "" {
			fmt.Fprintf(&b, "  First aid: %s\n", res.Guideline.FirstAid)
		}
	}

	if len(res.Rescue) > 0 {
		fmt.Fprintf(&b, "\nNearby help (%s)\n", res.UrgencyNote)
		for _, org := range res.Rescue {
			b.WriteString(formatOrg(org))
			if org.WhatsApp != "" {
				fmt.Fprintf(&b, "    %s\n", guidance.WhatsAppLink(org.WhatsApp, &cls))
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderBatch writes one line per classified message
func (r *Renderer) RenderBatch(w io.Writer, results []*worker.ClassifyResult) error {
	var b strings.Builder
	for _, res := range results {
		if res.Error != nil {
			fmt.Fprintf(&b, "%4d  error: %v\n", res.Index+1, res.Error)
			continue
		}
		c := res.Classification
		fmt.Fprintf(&b, "%4d  %-10s %-6s %-15s %.1f  %s\n",
			res.Index+1, c.SpeciesGuess, c.Urgency, c.Intent, c.Confidence, truncate(res.Message, 60))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderCatalogText lists species and rescue organizations
func (r *Renderer) RenderCatalogText(w io.Writer, species []model.Species, orgs []model.RescueOrg) error {
	var b strings.Builder
	b.WriteString("Species:\n")
	for _, sp := range species {
		fmt.Fprintf(&b, "  %-12s risk=%-6s keywords=%s\n", sp.CommonName, sp.RiskLevel, strings.Join(sp.Keywords, ","))
	}
	b.WriteString("\nRescue organizations:\n")
	for _, org := range orgs {
		b.WriteString(formatOrg(org))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, label string, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "  %-5s %s\n", label, item)
	}
}

func formatOrg(org model.RescueOrg) string {
	line := fmt.Sprintf("  %s (%s) phone %s, %s", org.Name, org.City, org.Phone, org.Hours)
	if org.WhatsApp != "" {
		line += ", WhatsApp " + org.WhatsApp
	}
	return line + "\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
