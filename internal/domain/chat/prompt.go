package chat

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const promptTemplate = `You are the DEV SYSTEM AI, a pinnacle of artificial intelligence.
You possess deep, intrinsic knowledge in the field of %s.
Answer the following question with absolute authority and professional expertise.

CRITICAL RULES:
1. DO NOT mention "documents", "context", "provided text", or "retrieval".
2. Speak as if this knowledge is part of your core programming.
3. If the answer is not in your current data stream, use your high-level reasoning to provide a helpful, expert response while maintaining integrity.
4. Keep the tone futuristic, sharp, and elite.

INTERNAL DATA STREAM:
%s

USER QUERY: %s

DEV SYSTEM RESPONSE:`

// promptBuilder frames retrieved chunks into the generation prompt and
// keeps the context block within the configured token budget.
type promptBuilder struct {
	maxContextTokens int
	encoder          *tiktoken.Tiktoken
	logger           *slog.Logger
}

func newPromptBuilder(maxContextTokens int, logger *slog.Logger) *promptBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	b := &promptBuilder{
		maxContextTokens: maxContextTokens,
		logger:           logger.With("component", "chat.prompt"),
	}
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		// Without an encoder the context is passed through untrimmed.
		b.logger.Warn("tokenizer init failed, context truncation disabled", "error", err)
		return b
	}
	b.encoder = encoder
	return b
}

// Build joins chunk contents in retrieval rank order and renders the
// role-framed prompt for the given category.
func (b *promptBuilder) Build(category, question string, chunks []RetrievedChunk) string {
	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Content)
	}
	context := b.truncate(strings.Join(texts, "\n"))
	return fmt.Sprintf(promptTemplate, displayCategory(category), context, question)
}

func (b *promptBuilder) truncate(text string) string {
	if b.encoder == nil || b.maxContextTokens <= 0 {
		return text
	}
	tokens := b.encoder.Encode(text, nil, nil)
	if len(tokens) <= b.maxContextTokens {
		return text
	}
	b.logger.Debug("context truncated", "tokens", len(tokens), "budget", b.maxContextTokens)
	return b.encoder.Decode(tokens[:b.maxContextTokens])
}

// displayCategory maps internal category keys to their presentation
// names inside the prompt.
func displayCategory(category string) string {
	if category == "unified" {
		return "Unified Global Intelligence"
	}
	if category == "" {
		return category
	}
	return strings.ToUpper(category[:1]) + category[1:]
}
