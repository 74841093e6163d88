package llm

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	errx "github.com/ecotally-core/server/internal/core/error"
	logx "github.com/ecotally-core/server/pkg/logger"
)

// Generator is the language-model collaborator consumed by the numeric
// extractor and the intent classifier. Implementations send a single prompt
// and return the model's text, or "" when the model produced nothing usable.
// A nil Generator is valid everywhere and means "not configured"; callers
// degrade to their non-LLM behaviour.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error)
}

// GeminiConfig holds what is needed to build a Gemini-backed Generator.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type geminiGenerator struct {
	cm        einomodel.BaseChatModel
	modelName string
}

// NewGeminiGenerator builds a Generator over the Gemini chat model. Returns
// an error when the client cannot be constructed; callers treat that as "no
// collaborator" rather than a fatal condition.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (Generator, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: client,
		Model:  cfg.Model,
	})
	if err != nil {
		logx.Error().Err(err).Str("model", cfg.Model).Msg("Error creating chat model")
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}

	return &geminiGenerator{cm: cm, modelName: cfg.Model}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error) {
	out, err := g.cm.Generate(ctx,
		[]*schema.Message{schema.UserMessage(prompt)},
		einomodel.WithTemperature(temperature),
		einomodel.WithMaxTokens(maxTokens),
	)
	if err != nil {
		logx.Error().Err(err).Str("model", g.modelName).Msg("Gemini call failed")
		return "", errx.WrapLLM(err)
	}
	if out == nil {
		logx.Warn().Str("model", g.modelName).Msg("Gemini returned no message")
		return "", nil
	}

	content := strings.TrimSpace(out.Content)
	logx.Debug().Str("model", g.modelName).Int("response_len", len(content)).Msg("Gemini response received")
	return content, nil
}
