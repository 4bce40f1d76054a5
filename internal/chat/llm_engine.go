package chat

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/varsilias/voicechat/internal/config"
)

// Every completion is a fresh two-turn exchange with these fixed settings.
const (
	Persona     = "You are a helpful AI assistant."
	Temperature = 0.7
	MaxTokens   = 150
)

// LLMEngine sends prompts to a langchaingo model.
type LLMEngine struct {
	llm     llms.Model
	model   string
	timeout time.Duration

	// initErr is returned by every Generate call when the model could not be
	// built, so configuration problems surface per message instead of at startup.
	initErr error
}

func NewLLMEngine(llm llms.Model, model string, timeout time.Duration) *LLMEngine {
	return &LLMEngine{llm: llm, model: model, timeout: timeout}
}

// NewOpenAIEngine targets the OpenAI chat completions API, or any compatible
// gateway when cfg.BaseURL is set. httpClient may be nil.
func NewOpenAIEngine(cfg config.Config, httpClient *http.Client) *LLMEngine {
	e := &LLMEngine{model: cfg.ModelName(), timeout: cfg.ProviderTimeout}
	if cfg.APIKey == "" {
		e.initErr = ErrMissingAPIKey
		return e
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(e.model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, openai.WithHTTPClient(httpClient))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		e.initErr = fmt.Errorf("create openai model: %w", err)
		return e
	}
	e.llm = llm
	return e
}

func NewOllamaEngine(cfg config.Config) *LLMEngine {
	e := &LLMEngine{model: cfg.ModelName(), timeout: cfg.ProviderTimeout}
	llm, err := ollama.New(
		ollama.WithModel(e.model),
		ollama.WithServerURL(cfg.OllamaURL),
	)
	if err != nil {
		e.initErr = fmt.Errorf("create ollama model: %w", err)
		return e
	}
	e.llm = llm
	return e
}

// NewEngine picks the backend named by cfg.Provider.
func NewEngine(cfg config.Config) (Engine, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIEngine(cfg, nil), nil
	case config.ProviderOllama:
		return NewOllamaEngine(cfg), nil
	case config.ProviderEcho:
		return NewEchoEngine(30 * time.Millisecond), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

func (e *LLMEngine) Model() string { return e.model }

// Generate returns the first choice's text exactly as the provider sent it.
func (e *LLMEngine) Generate(ctx context.Context, prompt string) (string, time.Duration, error) {
	if e.initErr != nil {
		return "", 0, NewProviderError(e.initErr)
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, Persona),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	start := time.Now()
	resp, err := e.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(Temperature),
		llms.WithMaxTokens(MaxTokens),
	)
	if err != nil {
		return "", 0, NewProviderError(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", 0, NewProviderError(ErrNoChoices)
	}
	return resp.Choices[0].Content, time.Since(start), nil
}
