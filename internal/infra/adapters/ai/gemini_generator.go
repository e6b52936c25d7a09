package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"training-enrichment/internal/domain/model"
	"training-enrichment/internal/domain/ports/adapter"
)

var _ adapter.CoachContentGenerator = (*GeminiGenerator)(nil)

// GeminiGenerator asks a Gemini model for coaching content via the official
// SDK. Alternative to the OpenAI generator; wiring picks one per deployment.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{client: c, model: model}, nil
}

func (g *GeminiGenerator) CoachingCues(ctx context.Context, coach model.CoachType, ex model.Exercise) ([]string, error) {
	prompt := fmt.Sprintf(
		"You are a %s coach. Give 3 to 5 short execution cues for the exercise %q (%d sets of %s). One cue per line, no numbering.",
		coach, ex.Name, ex.Sets, ex.Reps)
	return g.generateLines(ctx, prompt)
}

func (g *GeminiGenerator) CommonMistakes(ctx context.Context, coach model.CoachType, ex model.Exercise) ([]string, error) {
	prompt := fmt.Sprintf(
		"You are a %s coach. List the 3 most common technique mistakes athletes make on %q. One mistake per line, no numbering.",
		coach, ex.Name)
	return g.generateLines(ctx, prompt)
}

func (g *GeminiGenerator) generateLines(ctx context.Context, prompt string) ([]string, error) {
	contents := []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: prompt}}},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini returned no content")
	}
	return splitLines(resp.Candidates[0].Content.Parts[0].Text), nil
}
