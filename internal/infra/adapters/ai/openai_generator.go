package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"training-enrichment/internal/domain/model"
	"training-enrichment/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CoachContentGenerator = (*OpenAIGenerator)(nil)

// promptTokenBudget bounds what we send per exercise; anything larger falls
// back to built-in content rather than burning tokens on a malformed prompt.
const promptTokenBudget = 512

// OpenAIGenerator asks an OpenAI chat model for discipline-specific coaching
// content, one short completion per exercise.
type OpenAIGenerator struct {
	client  openai.Client
	model   string
	encoder *tiktoken.Tiktoken
}

func NewOpenAIGenerator(apiKey, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	return &OpenAIGenerator{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		encoder: enc,
	}, nil
}

func (o *OpenAIGenerator) CoachingCues(ctx context.Context, coach model.CoachType, ex model.Exercise) ([]string, error) {
	prompt := fmt.Sprintf(
		"You are a %s coach. Give 3 to 5 short execution cues for the exercise %q (%d sets of %s). One cue per line, no numbering.",
		coach, ex.Name, ex.Sets, ex.Reps)
	return o.generateLines(ctx, prompt)
}

func (o *OpenAIGenerator) CommonMistakes(ctx context.Context, coach model.CoachType, ex model.Exercise) ([]string, error) {
	prompt := fmt.Sprintf(
		"You are a %s coach. List the 3 most common technique mistakes athletes make on %q. One mistake per line, no numbering.",
		coach, ex.Name)
	return o.generateLines(ctx, prompt)
}

func (o *OpenAIGenerator) generateLines(ctx context.Context, prompt string) ([]string, error) {
	if len(o.encoder.Encode(prompt, nil, nil)) > promptTokenBudget {
		return nil, fmt.Errorf("prompt exceeds %d token budget", promptTokenBudget)
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}
	return splitLines(resp.Choices[0].Message.Content), nil
}

// splitLines turns a line-per-item completion into a clean slice, dropping
// bullets and empty lines.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
