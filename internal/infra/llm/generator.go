package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/devcore/rag-chat/internal/domain/chat"
	"github.com/devcore/rag-chat/internal/infra/llm/groq"
	"github.com/devcore/rag-chat/pkg/metrics"
)

// GroqGenerator adapts the Groq client to the chat domain.
type GroqGenerator struct {
	client      *groq.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewGroqGenerator constructs the adapter.
func NewGroqGenerator(client *groq.Client, model string, temperature float32, maxTokens int) *GroqGenerator {
	return &GroqGenerator{client: client, model: model, temperature: temperature, maxTokens: maxTokens}
}

// Complete sends the framed prompt as a single user turn.
func (g *GroqGenerator) Complete(ctx context.Context, prompt string) (chat.Generation, error) {
	resp, err := g.client.CreateChatCompletion(ctx, groq.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Messages: []groq.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return chat.Generation{}, err
	}
	if len(resp.Choices) == 0 {
		return chat.Generation{}, errors.New("completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return chat.Generation{}, errors.New("completion response empty")
	}
	generation := chat.Generation{Text: text}
	if resp.Usage.TotalTokens > 0 {
		generation.Usage = &metrics.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return generation, nil
}

var _ chat.Generator = (*GroqGenerator)(nil)
