//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/devcore/rag-chat/internal/bootstrap"
	"github.com/devcore/rag-chat/internal/infra/config"
	httpiface "github.com/devcore/rag-chat/internal/interface/http"
	"github.com/devcore/rag-chat/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideChatConfig,
		provideEmbedder,
		provideGenerator,
		provideLegacyClient,
		provideCaches,
		provideRetrievers,
		provideChatService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
