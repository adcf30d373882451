package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/devcore/rag-chat/internal/domain/chat"
	"github.com/devcore/rag-chat/internal/infra/cachestore"
	"github.com/devcore/rag-chat/internal/infra/config"
	"github.com/devcore/rag-chat/internal/infra/embedding"
	"github.com/devcore/rag-chat/internal/infra/legacy"
	"github.com/devcore/rag-chat/internal/infra/llm"
	"github.com/devcore/rag-chat/internal/infra/llm/groq"
	"github.com/devcore/rag-chat/internal/infra/objectstore"
	"github.com/devcore/rag-chat/internal/infra/vectorindex"
)

func provideChatConfig(cfg *config.Config) chat.Config {
	return chat.Config{
		TopK:                cfg.Chat.TopK,
		SimilarityThreshold: cfg.Chat.SimilarityThreshold,
		MaxContextTokens:    cfg.Chat.MaxContextTokens,
		LegacyCategory:      cfg.Chat.LegacyCategory,
	}
}

func provideEmbedder(cfg *config.Config) (chat.Embedder, error) {
	if strings.EqualFold(cfg.Embedding.Provider, "openai") {
		return embedding.NewClient(cfg.Embedding.APIKey, cfg.Embedding.BaseURL, cfg.Embedding.Model)
	}
	return embedding.NewDeterministic(cfg.Embedding.Dim), nil
}

func provideGenerator(cfg *config.Config) (chat.Generator, error) {
	client, err := groq.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		return nil, err
	}
	return llm.NewGroqGenerator(client, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.MaxTokens), nil
}

func provideLegacyClient(cfg *config.Config) chat.LegacyClient {
	return legacy.NewClient(cfg.Legacy.BaseURL, cfg.Legacy.UserID, cfg.Legacy.Timeout)
}

func provideCaches(cfg *config.Config, logger *slog.Logger) map[string]*chat.SemanticCache {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	valkeyClient := provideValkeyClient(cfg, logger)
	caches := make(map[string]*chat.SemanticCache, len(cfg.Chat.Categories))
	for _, category := range cfg.Chat.Categories {
		var backend chat.CacheBackend
		if valkeyClient != nil {
			backend = cachestore.NewValkeyStore(valkeyClient, "semcache", category)
		} else {
			backend = cachestore.NewFileStore(cfg.Chat.CacheDir, category)
		}
		caches[category] = chat.NewSemanticCache(ctx, backend, logger)
	}
	return caches
}

func provideValkeyClient(cfg *config.Config, logger *slog.Logger) valkey.Client {
	if !cfg.Chat.Valkey.Enabled {
		return nil
	}
	opt, err := buildValkeyOptions(cfg.Chat.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to file cache store", "error", err)
		return nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to file cache store", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to file cache store", "error", err)
		client.Close()
		return nil
	}
	logger.Info("valkey cache store enabled", "addr", cfg.Chat.Valkey.Addr)
	return client
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// provideRetrievers loads one retriever per category. The pgvector
// backend wins when a DSN is configured, then the index bucket, then
// local index files. Categories without a usable index are left out of
// the map; the service answers those with the advisory record.
func provideRetrievers(cfg *config.Config, logger *slog.Logger) map[string]chat.Retriever {
	retrievers := make(map[string]chat.Retriever, len(cfg.Chat.Categories))

	if pool := providePostgresPool(cfg, logger); pool != nil {
		for _, category := range cfg.Chat.Categories {
			retrievers[category] = vectorindex.NewPostgresIndex(pool, category)
		}
		return retrievers
	}

	if cfg.Chat.IndexBucket.Enabled {
		loadBucketIndexes(cfg, retrievers, logger)
		return retrievers
	}

	for _, category := range cfg.Chat.Categories {
		path := vectorindex.IndexFilePath(cfg.Chat.IndexDir, category)
		idx, err := vectorindex.LoadFile(path)
		if err != nil {
			logger.Info("vector index unavailable", "category", category, "path", path, "error", err)
			continue
		}
		logger.Info("vector index loaded", "category", category, "chunks", idx.Len())
		retrievers[category] = idx
	}
	return retrievers
}

func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Chat.Postgres.DSN)
	if dsn == "" {
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using file indexes", "error", err)
		return nil
	}
	if cfg.Chat.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Chat.Postgres.MaxConns
	}
	if cfg.Chat.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Chat.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using file indexes", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using file indexes", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("pgvector retriever enabled")
	return pool
}

func loadBucketIndexes(cfg *config.Config, retrievers map[string]chat.Retriever, logger *slog.Logger) {
	bucket := cfg.Chat.IndexBucket
	source, err := objectstore.NewIndexBucket(bucket.Endpoint, bucket.AccessKey, bucket.SecretKey, bucket.Bucket, bucket.Region, logger)
	if err != nil {
		logger.Error("index bucket unavailable", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, category := range cfg.Chat.Categories {
		key := vectorindex.IndexFileName(category)
		data, err := source.Fetch(ctx, key)
		if err != nil {
			logger.Info("vector index unavailable", "category", category, "key", key, "error", err)
			continue
		}
		idx, err := vectorindex.Parse(data)
		if err != nil {
			logger.Warn("vector index corrupt", "category", category, "key", key, "error", err)
			continue
		}
		logger.Info("vector index loaded", "category", category, "chunks", idx.Len())
		retrievers[category] = idx
	}
}

func provideChatService(cfg *config.Config, chatCfg chat.Config, caches map[string]*chat.SemanticCache, retrievers map[string]chat.Retriever, embedder chat.Embedder, generator chat.Generator, legacyClient chat.LegacyClient, logger *slog.Logger) chat.Service {
	return chat.NewService(chatCfg, cfg.Chat.Categories, caches, retrievers, embedder, generator, legacyClient, logger)
}
