package di

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/adapter/chathttp"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/adapter/llm"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/adapter/repository"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/infra/config"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/infra/httpclient"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/usecase"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Adapters
	Knowledge domain.KnowledgeRepository
	Records   *repository.CachedRecordStore
	Generator domain.LLMClient
	Embedder  domain.VectorEncoder

	// Usecases
	RouterUsecase   usecase.RouterUsecase
	RetrieveUsecase usecase.RetrieveContextUsecase
	AskUsecase      usecase.AskQuestionUsecase

	// Handler
	ChatHandler *chathttp.Handler
}

var (
	buildOnce  sync.Once
	components *ApplicationComponents
	buildErr   error
)

// Components returns the process-wide component graph, building it on
// first call. Shared handles (pool-backed repositories, LLM clients,
// record cache) are constructed exactly once and are safe for
// concurrent reads.
func Components(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	buildOnce.Do(func() {
		components, buildErr = NewApplicationComponents(cfg, pool, log)
	})
	return components, buildErr
}

// NewApplicationComponents wires all dependencies from config and
// database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	knowledge := repository.NewKnowledgeRepository(pool)
	clinics := repository.NewClinicRepository(pool)
	patients := repository.NewPatientRepository(pool)
	records := repository.NewCachedRecordStore(clinics, patients, cfg.RecordCacheSize, cfg.RecordCacheTTL)

	providerHTTP := httpclient.NewPooledClient(cfg.AnswerTimeout + 30*time.Second)
	generator, embedder, err := llm.NewClients(llm.ProviderConfig{
		Provider:          cfg.LLMProvider,
		APIKey:            cfg.LLMAPIKey,
		BaseURL:           cfg.LLMBaseURL,
		GenerationModel:   cfg.GenerationModel,
		EmbeddingModel:    cfg.EmbeddingModel,
		RequestsPerSecond: cfg.LLMRatePerSec,
		HTTPClient:        providerHTTP,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build LLM clients: %w", err)
	}

	routerLLM := generator
	if cfg.RouterModelless {
		routerLLM = nil
	}
	routerUsecase := usecase.NewRouterUsecase(routerLLM, log)

	retrieveUsecase := usecase.NewRetrieveContextUsecase(
		knowledge, embedder, records, records, cfg.RetrievalLimit, log,
	)

	prompter := usecase.NewAssistantPromptBuilder()
	synthesizer := usecase.NewAnswerSynthesizer(
		generator, cfg.AnswerTimeout, cfg.AnswerMaxAttempts,
		cfg.MaxHistoryTurns, cfg.AnswerMaxTokens, log,
	)
	suggester := usecase.NewSuggestionPipeline(generator, log)

	askUsecase := usecase.NewAskQuestionUsecase(
		routerUsecase, retrieveUsecase, prompter, synthesizer, suggester, log,
	)

	return &ApplicationComponents{
		Knowledge:       knowledge,
		Records:         records,
		Generator:       generator,
		Embedder:        embedder,
		RouterUsecase:   routerUsecase,
		RetrieveUsecase: retrieveUsecase,
		AskUsecase:      askUsecase,
		ChatHandler:     chathttp.NewHandler(askUsecase, records),
	}, nil
}
