package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/devcore/rag-chat/pkg/errors"
	"github.com/devcore/rag-chat/pkg/metrics"
)

// Config drives retrieval and cache behavior.
type Config struct {
	TopK                int
	SimilarityThreshold float64
	MaxContextTokens    int
	LegacyCategory      string
}

// Service executes chat queries end to end.
type Service interface {
	Query(ctx context.Context, req Request) (Response, error)
	ClearCache(ctx context.Context, category string) error
	Categories() []CategoryStatus
}

type service struct {
	cfg        Config
	categories []string
	caches     map[string]*SemanticCache
	retrievers map[string]Retriever
	embedder   Embedder
	generator  Generator
	legacy     LegacyClient
	prompts    *promptBuilder
	logger     *slog.Logger
}

// NewService wires up the chat domain. The caches map must hold one
// cache per non-legacy category; retrievers may omit categories whose
// index is not available.
func NewService(cfg Config, categories []string, caches map[string]*SemanticCache, retrievers map[string]Retriever, embedder Embedder, generator Generator, legacy LegacyClient, logger *slog.Logger) Service {
	if cfg.TopK < 1 {
		cfg.TopK = 3
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	return &service{
		cfg:        cfg,
		categories: categories,
		caches:     caches,
		retrievers: retrievers,
		embedder:   embedder,
		generator:  generator,
		legacy:     legacy,
		prompts:    newPromptBuilder(cfg.MaxContextTokens, logger),
		logger:     logger.With("component", "chat.service"),
	}
}

// Query runs one request/response cycle: embed once, consult the
// semantic cache, retrieve, score, generate, and repopulate the cache.
// Generation failures are converted into an answer record rather than
// returned as errors, so a transient failure is retried on the next
// identical question instead of being remembered.
func (s *service) Query(ctx context.Context, req Request) (Response, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Response{}, apperrors.Wrap("invalid_input", "question cannot be empty", nil)
	}
	category := strings.TrimSpace(req.Category)

	if s.legacy != nil && category == s.cfg.LegacyCategory {
		return s.legacyQuery(ctx, category, question), nil
	}

	cache, ok := s.caches[category]
	if !ok {
		return Response{}, apperrors.Wrap("not_found", fmt.Sprintf("unknown category %q", category), nil)
	}

	start := time.Now()

	// The question is embedded exactly once; the same vector feeds the
	// cache lookup and the index search.
	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return Response{}, apperrors.Wrap("embedding_error", "failed to embed question", err)
	}

	if record, hit := cache.Get(embedding, s.cfg.SimilarityThreshold); hit {
		record.IsCached = true
		record.ResponseTimeMs = elapsedMs(start)
		s.logger.Info("semantic cache hit", "category", category)
		return s.respond(category, question, record, nil), nil
	}

	retriever := s.retrievers[category]
	if retriever == nil {
		record := AnswerRecord{
			Answer:         fmt.Sprintf("Vector database for %s not found. Please run the ingest pipeline first.", category),
			Confidence:     0,
			Sources:        []string{},
			IsCached:       false,
			ResponseTimeMs: elapsedMs(start),
		}
		return s.respond(category, question, record, nil), nil
	}

	chunks, err := retriever.SearchByVector(ctx, embedding, s.cfg.TopK)
	if err != nil {
		return Response{}, apperrors.Wrap("retrieval_error", "vector search failed", err)
	}

	distances := make([]float64, 0, len(chunks))
	for _, chunk := range chunks {
		distances = append(distances, chunk.Distance)
	}
	confidence := Confidence(distances)

	prompt := s.prompts.Build(category, question, chunks)
	generation, genErr := s.generator.Complete(ctx, prompt)
	answer := generation.Text
	if genErr != nil {
		answer = fmt.Sprintf("Neural Link Interrupted: %v", genErr)
		confidence = 0
		s.logger.Warn("generation failed", "category", category, "error", genErr)
	}

	record := AnswerRecord{
		Answer:         answer,
		Confidence:     confidence,
		Sources:        collectSources(chunks),
		IsCached:       false,
		ResponseTimeMs: elapsedMs(start),
	}

	// Failed generations are never cached.
	if genErr == nil {
		if err := cache.Set(ctx, question, embedding, record); err != nil {
			s.logger.Warn("cache persist failed", "category", category, "error", err)
		}
	}

	return s.respond(category, question, record, generation.Usage), nil
}

// legacyQuery bypasses the embedding and cache subsystem entirely and
// forwards the raw question to the legacy intent endpoint.
func (s *service) legacyQuery(ctx context.Context, category, question string) Response {
	start := time.Now()
	reply, err := s.legacy.Detect(ctx, question)
	if err != nil {
		s.logger.Warn("legacy endpoint failed", "category", category, "error", err)
		return s.respond(category, question, AnswerRecord{
			Answer:         fmt.Sprintf("Connection to the legacy core failed: %v", err),
			Confidence:     0,
			Sources:        []string{},
			IsCached:       false,
			ResponseTimeMs: elapsedMs(start),
		}, nil)
	}
	confidence := 50
	if reply.HasIntent {
		confidence = 100
	}
	return s.respond(category, question, AnswerRecord{
		Answer:         reply.Answer,
		Confidence:     confidence,
		Sources:        []string{"Legacy Knowledge Base"},
		IsCached:       false,
		ResponseTimeMs: elapsedMs(start),
	}, nil)
}

// ClearCache empties one category's semantic cache and persists the
// empty state.
func (s *service) ClearCache(ctx context.Context, category string) error {
	cache, ok := s.caches[category]
	if !ok {
		return apperrors.Wrap("not_found", fmt.Sprintf("unknown category %q", category), nil)
	}
	if err := cache.Clear(ctx); err != nil {
		return apperrors.Wrap("storage_error", "failed to clear cache", err)
	}
	s.logger.Info("semantic cache cleared", "category", category)
	return nil
}

// Categories reports the configured knowledge bases in config order.
func (s *service) Categories() []CategoryStatus {
	out := make([]CategoryStatus, 0, len(s.categories)+1)
	for _, name := range s.categories {
		status := CategoryStatus{Name: name}
		if cache, ok := s.caches[name]; ok {
			status.CachedEntries = cache.Len()
		}
		if s.retrievers[name] != nil {
			status.IndexLoaded = true
		}
		out = append(out, status)
	}
	if s.legacy != nil && s.cfg.LegacyCategory != "" {
		out = append(out, CategoryStatus{Name: s.cfg.LegacyCategory, Legacy: true})
	}
	return out
}

func (s *service) respond(category, question string, record AnswerRecord, usage *metrics.TokenUsage) Response {
	return Response{
		Category:     category,
		Question:     question,
		AnswerRecord: record,
		TokenUsage:   usage,
	}
}

func collectSources(chunks []RetrievedChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		source := chunk.Source
		if source == "" {
			source = "Unknown"
		}
		if _, ok := seen[source]; ok {
			continue
		}
		seen[source] = struct{}{}
		sources = append(sources, source)
	}
	return sources
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
