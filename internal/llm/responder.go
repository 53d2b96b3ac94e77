package llm

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/wildaware/internal/catalog"
)

// Responder generates conversational replies grounded in the catalog
type Responder struct {
	provider Provider
	system   string
	logger   *zap.Logger
}

// NewResponder wraps a provider with a system prompt built from cat
func NewResponder(provider Provider, cat *catalog.Catalog, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{
		provider: provider,
		system:   BuildSystemPrompt(cat),
		logger:   logger,
	}
}

// Provider returns the wrapped provider name
func (r *Responder) Provider() string {
	return r.provider.Name()
}

// Respond asks the provider for a reply to message given prior turns
func (r *Responder) Respond(ctx context.Context, message string, history []Message) (string, error) {
	if r == nil || r.provider == nil {
		return "", errors.New("no LLM provider configured")
	}
	resp, err := r.provider.Reply(ctx, ReplyRequest{
		System:  r.system,
		History: history,
		Message: message,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.New("empty reply from LLM")
	}
	r.logger.Debug("llm reply",
		zap.String("provider", r.provider.Name()),
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokensUsed))
	return text, nil
}
