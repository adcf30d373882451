package chat

import "github.com/devcore/rag-chat/pkg/metrics"

// AnswerRecord is the uniform result produced for every chat turn,
// whether it came from the cache, the generator, or a failure path.
type AnswerRecord struct {
	Answer         string   `json:"answer"`
	Confidence     int      `json:"confidence"`
	Sources        []string `json:"sources"`
	IsCached       bool     `json:"isCached"`
	ResponseTimeMs float64  `json:"responseTimeMs"`
}

// CacheEntry is one stored question/answer pair. Entries are immutable
// once written and are identified by their position in the entry list.
type CacheEntry struct {
	Query     string       `json:"query"`
	Response  AnswerRecord `json:"response"`
	Embedding []float32    `json:"embedding"`
}

// RetrievedChunk is a document fragment returned by the retriever,
// ranked by ascending distance (lower means more similar).
type RetrievedChunk struct {
	Source   string
	Content  string
	Distance float64
}

// Request is the chat query payload.
type Request struct {
	Category string `json:"category"`
	Question string `json:"question"`
}

// Response is returned to the HTTP transport.
type Response struct {
	Category string `json:"category"`
	Question string `json:"question"`
	AnswerRecord
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// CategoryStatus describes one configured knowledge base category.
type CategoryStatus struct {
	Name          string `json:"name"`
	IndexLoaded   bool   `json:"indexLoaded"`
	CachedEntries int    `json:"cachedEntries"`
	Legacy        bool   `json:"legacy,omitempty"`
}
