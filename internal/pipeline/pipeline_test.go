package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/wildaware/internal/catalog"
	"github.com/ppiankov/wildaware/internal/guidance"
	"github.com/ppiankov/wildaware/internal/llm"
	"github.com/ppiankov/wildaware/internal/model"
	"github.com/ppiankov/wildaware/internal/store"
	"github.com/ppiankov/wildaware/internal/worker"
)

type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) IsAvailable(ctx context.Context) bool { return true }

func (f *fakeLLM) Reply(ctx context.Context, req llm.ReplyRequest) (*llm.ReplyResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ReplyResponse{Text: f.reply}, nil
}

// swapProvider hands out whichever catalog is currently set
type swapProvider struct {
	cat *catalog.Catalog
	err error
}

func (s *swapProvider) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	return s.cat, s.err
}

func TestHandle_HighUrgencySnake(t *testing.T) {
	p := New(catalog.NewStatic(nil))

	res, err := p.Handle(context.Background(), ChatRequest{
		Message: "There's a snake in my bedroom, please help me",
		City:    "Kochi",
	})
	require.NoError(t, err)

	assert.Equal(t, "snake", res.Classification.SpeciesGuess)
	assert.Equal(t, model.UrgencyHigh, res.Classification.Urgency)
	assert.Equal(t, model.IntentCallHelp, res.Classification.Intent)
	assert.Equal(t, 1.0, res.Classification.Confidence)
	assert.False(t, res.LowConfidence)
	assert.Equal(t, ReplySourceRules, res.ReplySource)
	assert.Contains(t, res.Reply, "HIGH URGENCY DETECTED - SNAKE ENCOUNTER")

	require.NotNil(t, res.Guideline)
	assert.Equal(t, 1, res.Guideline.SpeciesID)
	require.NotNil(t, res.Species)
	assert.Equal(t, "Snake", res.Species.CommonName)

	ids := make([]int, 0, len(res.Rescue))
	for _, o := range res.Rescue {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []int{1, 2}, ids)
	assert.Equal(t, "HIGH URGENCY - Call immediately!", res.UrgencyNote)
}

func TestHandle_UnknownLowConfidence(t *testing.T) {
	p := New(catalog.NewStatic(nil))

	res, err := p.Handle(context.Background(), ChatRequest{Message: "What should I do?"})
	require.NoError(t, err)

	assert.Equal(t, model.UnknownSpecies, res.Classification.SpeciesGuess)
	assert.True(t, res.LowConfidence)
	assert.Nil(t, res.Guideline)
	assert.Nil(t, res.Species)
	assert.NotNil(t, res.Rescue)
	assert.Contains(t, res.Reply, guidance.LowConfidenceDisclaimer)
}

func TestHandle_LLMReply(t *testing.T) {
	fake := &fakeLLM{reply: "Stay indoors and call the helpline."}
	p := New(catalog.NewStatic(nil), WithLLM(fake))

	res, err := p.Handle(context.Background(), ChatRequest{Message: "monkey near the gate"})
	require.NoError(t, err)
	assert.Equal(t, ReplySourceLLM, res.ReplySource)
	assert.Equal(t, "Stay indoors and call the helpline.", res.Reply)
	assert.Equal(t, "monkey", res.Classification.SpeciesGuess, "classification is unaffected by the LLM")

	fake.err = errors.New("quota exceeded")
	res, err = p.Handle(context.Background(), ChatRequest{Message: "monkey near the gate"})
	require.NoError(t, err)
	assert.Equal(t, ReplySourceRules, res.ReplySource)
	assert.Contains(t, res.Reply, "identified this as a monkey encounter")

	calls := fake.calls
	_, err = p.Handle(context.Background(), ChatRequest{Message: "   "})
	require.NoError(t, err)
	assert.Equal(t, calls, fake.calls, "blank messages skip the LLM")
}

func TestHandle_LogsActivity(t *testing.T) {
	acts := store.NewMemoryStore()
	p := New(catalog.NewStatic(nil), WithActivityStore(acts))
	ctx := context.Background()

	_, err := p.Handle(ctx, ChatRequest{Message: "I saw a stray dog", City: "Kozhikode", UserID: "u1"})
	require.NoError(t, err)
	_, err = p.Handle(ctx, ChatRequest{Message: "how do I stay safe around dogs", UserID: "u1"})
	require.NoError(t, err)
	_, err = p.Handle(ctx, ChatRequest{Message: "emergency! rescue needed"})
	require.NoError(t, err)

	got, err := acts.ListActivities(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, got, 1, "only report/call-help turns with a user are logged")
	assert.Equal(t, model.ActivityGuidance, got[0].Type)
	assert.Equal(t, "stray dog", got[0].Species)
	assert.Equal(t, "report_sighting", got[0].Metadata["intent"])
	assert.Equal(t, "Kozhikode", got[0].Metadata["userCity"])
}

func TestHandle_CatalogSwap(t *testing.T) {
	prov := &swapProvider{cat: catalog.Seed()}
	p := New(prov)
	ctx := context.Background()

	res, err := p.Handle(ctx, ChatRequest{Message: "a cobra in the yard"})
	require.NoError(t, err)
	assert.Equal(t, model.UnknownSpecies, res.Classification.SpeciesGuess)

	next := catalog.Seed()
	next.Species = append(next.Species, model.Species{ID: 9, CommonName: "Cobra", RiskLevel: model.RiskHigh, Keywords: []string{"cobra"}})
	prov.cat = next

	res, err = p.Handle(ctx, ChatRequest{Message: "a cobra in the yard"})
	require.NoError(t, err)
	assert.Equal(t, "cobra", res.Classification.SpeciesGuess)

	prov.err = errors.New("offline")
	_, err = p.Handle(ctx, ChatRequest{Message: "x"})
	assert.Error(t, err)
}

func TestNewPipeline_BadLLMConfigDisablesLLM(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "openai" // no key
	p := NewPipeline(cfg, catalog.NewStatic(nil), nil, nil)

	res, err := p.Handle(context.Background(), ChatRequest{Message: "snake"})
	require.NoError(t, err)
	assert.Equal(t, ReplySourceRules, res.ReplySource)
}

func TestRenderer(t *testing.T) {
	p := New(catalog.NewStatic(nil))
	res, err := p.Handle(context.Background(), ChatRequest{Message: "I saw a monkey near the temple", City: "Thrissur"})
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, NewRenderer(true).RenderText(&text, res))
	out := text.String()
	assert.Contains(t, out, "Species:    monkey")
	assert.Contains(t, out, "Confidence: 0.9")
	assert.Contains(t, out, "  - Detected sighting keywords: saw")
	assert.Contains(t, out, "DON'T Do not feed the monkey")
	assert.Contains(t, out, "Rapid Wildlife Response (Thrissur) phone 9445566778, 24x7")

	var js bytes.Buffer
	require.NoError(t, NewRenderer(false).RenderJSON(&js, res))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "rules", decoded["reply_source"])
	assert.Contains(t, js.String(), "\n  \"classification\"")

	var batch bytes.Buffer
	require.NoError(t, NewRenderer(false).RenderBatch(&batch, []*worker.ClassifyResult{
		{Index: 0, Message: strings.Repeat("a", 80), Classification: res.Classification},
		{Index: 1, Error: errors.New("canceled")},
	}))
	lines := strings.Split(strings.TrimSpace(batch.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "..."))
	assert.Contains(t, lines[1], "error: canceled")
}

func TestRenderer_WhatsAppLinks(t *testing.T) {
	p := New(catalog.NewStatic(nil))
	res, err := p.Handle(context.Background(), ChatRequest{Message: "snake near the gate", City: "Kochi"})
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, NewRenderer(false).RenderText(&text, res))
	assert.Contains(t, text.String(), "City Snake Rescue Team (Kochi)")
	assert.Contains(t, text.String(), "    https://wa.me/9876543210?text=")
}
