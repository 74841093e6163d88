package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ecotally-core/server/internal/assistant/extract"
	"github.com/ecotally-core/server/internal/assistant/flow"
	"github.com/ecotally-core/server/internal/assistant/llm"
	"github.com/ecotally-core/server/internal/assistant/model"
	"github.com/ecotally-core/server/internal/assistant/repo"
	"github.com/ecotally-core/server/internal/core"
	logx "github.com/ecotally-core/server/pkg/logger"
	pkgredis "github.com/ecotally-core/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the assistant, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider. The API key is optional: without it the assistant runs
	// with keyword matching and direct numeric parsing only.
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Assistant configs
	Extractor model.ExtractorModelConfig
	Intent    model.IntentModelConfig
	Session   model.SessionConfig
}

func main() {
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	// Optional transcript store
	var transcripts model.TranscriptRepository
	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New()
		if err != nil {
			log.Fatalf("Failed to initialise Redis client: %v", err)
		}
		defer rdb.Close()

		ttl, err := time.ParseDuration(cfg.Session.TranscriptTTL)
		if err != nil {
			log.Fatalf("Invalid TRANSCRIPT_TTL '%s': %v", cfg.Session.TranscriptTTL, err)
		}
		transcripts = repo.NewRedisTranscriptRepository(rdb, ttl)
		fmt.Println("Connected to Redis successfully")
	}

	// Optional LLM collaborator
	var extractorGen, intentGen llm.Generator
	if cfg.APIKey != "" {
		var err error
		extractorGen, err = llm.NewGeminiGenerator(ctx, llm.GeminiConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Extractor.Model,
		})
		if err != nil {
			log.Printf("Warning: extractor model unavailable, falling back to direct parsing: %v", err)
		}
		intentGen, err = llm.NewGeminiGenerator(ctx, llm.GeminiConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Intent.Model,
		})
		if err != nil {
			log.Printf("Warning: intent model unavailable, falling back to keyword matching: %v", err)
		}
	}

	engine := flow.NewEngine(
		flow.NewHandlers(extract.New(extractorGen, cfg.Extractor)),
		llm.NewClassifier(intentGen, cfg.Intent),
		repo.NewFileSessionStore(cfg.Session.LogFile),
		transcripts,
		cfg.Session.Region,
	)

	session := model.NewSessionState()
	fmt.Println(engine.Start(ctx, session))

	scanner := bufio.NewScanner(os.Stdin)
	for !session.Finished {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		reply := engine.HandleTurn(ctx, session, input)
		fmt.Println("\n" + reply)
	}

	fmt.Println("\nSession finished. Goodbye!")
}
