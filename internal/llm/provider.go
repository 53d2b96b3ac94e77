package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/wildaware/internal/catalog"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Reply generates the assistant's answer to the latest user message
	Reply(ctx context.Context, req ReplyRequest) (*ReplyResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one prior turn of the conversation
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ReplyRequest contains the input for reply generation
type ReplyRequest struct {
	// System is the assistant system prompt (see BuildSystemPrompt)
	System string

	// History holds earlier turns, oldest first
	History []Message

	// Message is the user's latest message
	Message string

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ReplyResponse contains the generated reply
type ReplyResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string

	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     30,
		MaxTokens:   800,
		Temperature: 0.7,
	}
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c Config) maxTokens(req ReplyRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 800
}

func (c Config) model(req ReplyRequest, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}

// Caps on how much reference data goes into the system prompt
const (
	promptSpeciesLimit    = 20
	promptRescueLimit     = 10
	promptGuidelinesLimit = 10
)

// BuildSystemPrompt describes the assistant's role and summarizes the catalog
// so replies can name real species, guidelines and rescue contacts.
func BuildSystemPrompt(cat *catalog.Catalog) string {
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	var b strings.Builder

	b.WriteString("You are WildAware, an expert wildlife safety assistant for people who encounter animals in towns and cities.\n\n")
	fmt.Fprintf(&b, "AVAILABLE DATA:\n- %d species records\n- %d rescue organizations\n- %d safety guidelines\n\n",
		len(cat.Species), len(cat.RescueOrgs), len(cat.Guidelines))

	b.WriteString("SPECIES:\n")
	if len(cat.Species) == 0 {
		b.WriteString("No species data available\n")
	}
	for i, sp := range cat.Species {
		if i >= promptSpeciesLimit {
			break
		}
		fmt.Fprintf(&b, "- %s: Risk Level: %s", sp.CommonName, sp.RiskLevel)
		if sp.Description != "" {
			fmt.Fprintf(&b, ". %s", sp.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nRESCUE ORGANIZATIONS:\n")
	if len(cat.RescueOrgs) == 0 {
		b.WriteString("No rescue org data available\n")
	}
	for i, org := range cat.RescueOrgs {
		if i >= promptRescueLimit {
			break
		}
		whatsapp := org.WhatsApp
		if whatsapp == "" {
			whatsapp = "N/A"
		}
		fmt.Fprintf(&b, "- %s (%s): Phone: %s, WhatsApp: %s, Hours: %s, Species: %s\n",
			org.Name, org.City, org.Phone, whatsapp, org.Hours, strings.Join(org.SpeciesSupported, ", "))
	}

	b.WriteString("\nSAFETY GUIDELINES:\n")
	if len(cat.Guidelines) == 0 {
		b.WriteString("No safety guidelines available\n")
	}
	for i, g := range cat.Guidelines {
		if i >= promptGuidelinesLimit {
			break
		}
		name := fmt.Sprintf("species %d", g.SpeciesID)
		for _, sp := range cat.Species {
			if sp.ID == g.SpeciesID {
				name = sp.CommonName
				break
			}
		}
		fmt.Fprintf(&b, "- %s: DO: %s | DON'T: %s\n", name, strings.Join(g.Dos, "; "), strings.Join(g.Donts, "; "))
	}

	b.WriteString(`
INSTRUCTIONS:
1. Analyze user messages for wildlife encounters, safety concerns, or rescue needs
2. Provide immediate safety advice based on the situation
3. Recommend specific rescue organizations when location is mentioned
4. Always prioritize user safety; if risk is high, lead with immediate actions
5. Ask for location when recommending rescue contacts
6. If the species isn't listed, give general wildlife safety advice

Better to be overly cautious than risk harm.`)

	return b.String()
}

// normalizeRole keeps "user" and maps every other sender to the assistant
func normalizeRole(role string) string {
	if strings.EqualFold(role, RoleUser) {
		return RoleUser
	}
	return RoleAssistant
}
