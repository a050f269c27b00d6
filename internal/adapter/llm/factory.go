package llm

import (
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

// Provider names accepted by the factory.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// ProviderConfig selects and parameterizes one LLM provider.
type ProviderConfig struct {
	Provider        string
	APIKey          string
	BaseURL         string
	GenerationModel string
	EmbeddingModel  string
	// RequestsPerSecond bounds the shared generation rate. Zero
	// disables throttling.
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// NewClients builds the generator/embedder pair for the configured
// provider. Both share one rate limiter so a burst of synthesis,
// routing, and suggestion calls cannot exceed the provider budget.
func NewClients(cfg ProviderConfig) (domain.LLMClient, domain.VectorEncoder, error) {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, nil, fmt.Errorf("%w: openai provider requires an API key", domain.ErrConfiguration)
		}
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		if cfg.HTTPClient != nil {
			clientCfg.HTTPClient = cfg.HTTPClient
		}
		client := openai.NewClientWithConfig(clientCfg)
		return NewOpenAIGenerator(client, cfg.GenerationModel, limiter),
			NewOpenAIEmbedder(client, cfg.EmbeddingModel), nil

	case ProviderOllama:
		if cfg.BaseURL == "" {
			return nil, nil, fmt.Errorf("%w: ollama provider requires a base URL", domain.ErrConfiguration)
		}
		return NewOllamaGenerator(cfg.BaseURL, cfg.GenerationModel, cfg.HTTPClient, limiter),
			NewOllamaEmbedder(cfg.BaseURL, cfg.EmbeddingModel, cfg.HTTPClient), nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown LLM provider %q", domain.ErrConfiguration, cfg.Provider)
	}
}
