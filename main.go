package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	orchestratorx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/agents/orchestrator"
	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
	deciderx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/decider"
	memoryx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/memory"
	promptx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/prompt"
	toolx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/tool"
	configx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/pkg/config"
	_ "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/pkg/logger/autoload"
	openrouterx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/pkg/openrouter"
	serverx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("building chat model")
	}
	openRouterClient := openrouterx.NewClient(*openRouterCfg)
	if openRouterClient == nil {
		log.Fatal().Msg("initializing openrouter client")
	}

	oracle, err := deciderx.New(ctx, chatModel, promptx.Decider())
	if err != nil {
		log.Fatal().Err(err).Msg("building decision oracle")
	}

	retryCfg := configx.MustNew[toolx.RetryConfig]("RETRY")

	searchCfg := configx.MustNew[toolx.SearchConfig]("SEARCH")
	search, err := toolx.NewWebSearch(*searchCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("building web search tool")
	}

	predictCfg := configx.MustNew[toolx.PredictConfig]("PREDICT")
	predict, err := toolx.NewStockPredict(*predictCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("building stock prediction tool")
	}

	embedder, err := toolx.NewOpenAIEmbedder(openRouterClient, openRouterCfg.EmbeddingModel)
	if err != nil {
		log.Fatal().Err(err).Msg("building embedder")
	}
	ragCfg := configx.MustNew[toolx.RAGConfig]("RAG")
	knowledge, err := toolx.NewKnowledgeBase(*ragCfg, embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("building knowledge base tool")
	}

	inventoryCfg := configx.MustNew[toolx.InventoryConfig]("INVENTORY")
	inventoryDB, err := toolx.OpenDB(*inventoryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("opening inventory database")
	}
	inventory, err := toolx.NewInventory(inventoryDB)
	if err != nil {
		log.Fatal().Err(err).Msg("building inventory tool")
	}

	catalog, err := toolx.NewCatalog(
		toolx.WithRetry(search, *retryCfg),
		toolx.WithRetry(inventory, *retryCfg),
		toolx.WithRetry(knowledge, *retryCfg),
		toolx.WithRetry(predict, *retryCfg),
		toolx.NewMathEvaluate(),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("building tool catalog")
	}

	var transcript contractx.TranscriptStore
	transcriptCfg := configx.MustNew[memoryx.TranscriptConfig]("")
	if transcriptCfg.DSN != "" {
		transcript, err = memoryx.OpenTranscript(*transcriptCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("opening transcript store")
		}
	}
	memoryCfg := configx.MustNew[memoryx.Config]("")
	conversations := memoryx.NewWindowLog(*memoryCfg, transcript)

	agentCfg := configx.MustNew[orchestratorx.Config]("AGENT")
	agent, err := orchestratorx.New(oracle, catalog, conversations, *agentCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("building orchestrator")
	}

	serverCfg := configx.MustNew[serverx.Config]("SERVER")
	srv, err := serverx.New(agent, *serverCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("building http server")
	}

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
	log.Info().Msg("shutdown complete")
}
