package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ppiankov/wildaware/internal/catalog"
	"github.com/ppiankov/wildaware/internal/classify"
	"github.com/ppiankov/wildaware/internal/guidance"
	"github.com/ppiankov/wildaware/internal/llm"
	"github.com/ppiankov/wildaware/internal/model"
	"github.com/ppiankov/wildaware/internal/store"
)

// Reply sources
const (
	ReplySourceRules = "rules"
	ReplySourceLLM   = "llm"
)

// ChatRequest is one user turn
type ChatRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history,omitempty"`
	City    string        `json:"city,omitempty"`
	UserID  string        `json:"-"`
}

// ChatResult is everything the app shows for one turn
type ChatResult struct {
	Classification model.ClassificationResult `json:"classification"`
	Reply          string                     `json:"reply"`
	ReplySource    string                     `json:"reply_source"`
	LowConfidence  bool                       `json:"low_confidence"`
	Species        *model.Species             `json:"species,omitempty"`
	Guideline      *model.SafetyGuideline     `json:"guideline,omitempty"`
	Rescue         []model.RescueOrg          `json:"rescue"`
	UrgencyNote    string                     `json:"urgency_note"`
}

// Pipeline orchestrates classification, guidance lookup and reply generation
type Pipeline struct {
	provider    catalog.Provider
	llmProvider llm.Provider // Optional (nil if disabled)
	activities  store.ActivityStore
	threshold   float64
	rescueLimit int
	logger      *zap.Logger

	mu       sync.Mutex
	snapshot *snapshot
}

// snapshot pairs a catalog with the classifier and responder built from it
type snapshot struct {
	cat        *catalog.Catalog
	classifier *classify.Classifier
	responder  *llm.Responder
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLLM enables LLM replies through provider
func WithLLM(provider llm.Provider) Option {
	return func(p *Pipeline) { p.llmProvider = provider }
}

// WithActivityStore logs guidance activity for identified users
func WithActivityStore(s store.ActivityStore) Option {
	return func(p *Pipeline) { p.activities = s }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithLowConfidenceThreshold overrides the 0.7 disclaimer threshold
func WithLowConfidenceThreshold(t float64) Option {
	return func(p *Pipeline) {
		if t > 0 {
			p.threshold = t
		}
	}
}

// WithRescueLimit caps the rescue contacts in each result
func WithRescueLimit(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.rescueLimit = n
		}
	}
}

// New creates a pipeline over a catalog provider
func New(provider catalog.Provider, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider:    provider,
		threshold:   classify.DefaultLowBound,
		rescueLimit: guidance.DefaultRescueLimit,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewPipeline creates a pipeline from configuration. A misconfigured LLM
// provider is logged and left disabled.
func NewPipeline(cfg *model.Config, provider catalog.Provider, activities store.ActivityStore, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []Option{
		WithLogger(logger),
		WithLowConfidenceThreshold(cfg.Classifier.LowConfidenceThreshold),
	}
	if activities != nil {
		opts = append(opts, WithActivityStore(activities))
	}

	if cfg.LLM.Provider != "" {
		llmConfig := llm.ConfigFromModel(cfg.LLM, cfg.Proxy)
		llmConfig.Logger = logger
		lp, err := llm.NewProvider(llmConfig)
		if err != nil {
			logger.Warn("Failed to initialize LLM provider", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		} else {
			opts = append(opts, WithLLM(lp))
		}
	}
	return New(provider, opts...)
}

// Catalog returns the current catalog snapshot
func (p *Pipeline) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	s, err := p.current(ctx)
	if err != nil {
		return nil, err
	}
	return s.cat, nil
}

// Classifier returns the classifier for the current catalog snapshot
func (p *Pipeline) Classifier(ctx context.Context) (*classify.Classifier, error) {
	s, err := p.current(ctx)
	if err != nil {
		return nil, err
	}
	return s.classifier, nil
}

// current rebuilds the classifier whenever the provider hands out a new catalog
func (p *Pipeline) current(ctx context.Context) (*snapshot, error) {
	cat, err := p.provider.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snapshot != nil && p.snapshot.cat == cat {
		return p.snapshot, nil
	}

	s := &snapshot{
		cat:        cat,
		classifier: classify.New(cat.Species, classify.WithLowConfidenceThreshold(p.threshold)),
	}
	if p.llmProvider != nil {
		s.responder = llm.NewResponder(p.llmProvider, cat, p.logger)
	}
	if p.snapshot != nil {
		p.logger.Info("Catalog changed, classifier rebuilt", zap.Int("species", len(cat.Species)))
	}
	p.snapshot = s
	return s, nil
}

// Handle runs one chat turn: classify, look up guidance, compose a reply and
// log the interaction. Optional collaborators never fail the turn.
func (p *Pipeline) Handle(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	s, err := p.current(ctx)
	if err != nil {
		return nil, err
	}

	// 1. Classify
	cls := s.classifier.Classify(req.Message)

	result := &ChatResult{
		Classification: cls,
		LowConfidence:  s.classifier.LowConfidence(cls),
		UrgencyNote:    guidance.UrgencyNote(&cls),
	}

	// 2. Guideline lookup
	if g, sp, ok := guidance.GuidelineFor(s.cat, cls.SpeciesGuess); ok {
		result.Guideline = &g
		result.Species = &sp
	} else if sp.CommonName != "" {
		result.Species = &sp
	}

	// 3. Rescue contacts
	result.Rescue = guidance.RescueContacts(s.cat, &cls, req.City, p.rescueLimit)
	if result.Rescue == nil {
		result.Rescue = []model.RescueOrg{}
	}

	// 4. Rule-based reply, replaced by the LLM reply when one is available
	result.Reply = guidance.ComposeReply(cls, s.classifier.Threshold())
	result.ReplySource = ReplySourceRules
	if s.responder != nil && strings.TrimSpace(req.Message) != "" {
		text, err := s.responder.Respond(ctx, req.Message, req.History)
		if err != nil {
			p.logger.Warn("LLM reply failed, using rule-based reply",
				zap.String("provider", s.responder.Provider()), zap.Error(err))
		} else {
			result.Reply = text
			result.ReplySource = ReplySourceLLM
		}
	}

	// 5. Activity log
	p.logActivity(ctx, req, cls)

	p.logger.Debug("Handled chat turn",
		zap.String("species", cls.SpeciesGuess),
		zap.String("urgency", string(cls.Urgency)),
		zap.String("intent", string(cls.Intent)),
		zap.Float64("confidence", cls.Confidence),
		zap.String("reply_source", result.ReplySource))

	return result, nil
}

func (p *Pipeline) logActivity(ctx context.Context, req ChatRequest, cls model.ClassificationResult) {
	if p.activities == nil || req.UserID == "" {
		return
	}
	if cls.Intent != model.IntentReportSighting && cls.Intent != model.IntentCallHelp {
		return
	}

	species := ""
	if cls.KnownSpecies() {
		species = cls.SpeciesGuess
	}
	metadata := map[string]string{
		"intent":  string(cls.Intent),
		"urgency": string(cls.Urgency),
	}
	if req.City != "" {
		metadata["userCity"] = req.City
	}

	_, err := p.activities.LogActivity(ctx, model.Activity{
		UserID:   req.UserID,
		Type:     model.ActivityGuidance,
		Species:  species,
		Notes:    fmt.Sprintf("Received %s guidance for %s", strings.ReplaceAll(string(cls.Intent), "_", " "), cls.SpeciesGuess),
		Metadata: metadata,
	})
	if err != nil {
		p.logger.Warn("Failed to log activity", zap.String("user_id", req.UserID), zap.Error(err))
	}
}
