// Package extract pulls numeric values out of free-text user answers.
package extract

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ecotally-core/server/internal/assistant/llm"
	"github.com/ecotally-core/server/internal/assistant/model"
	logx "github.com/ecotally-core/server/pkg/logger"
)

var (
	numberPattern  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	nonNumericRuns = regexp.MustCompile(`[^\d.,]`)
)

// Extractor resolves a numeric value from raw text in three tiers: direct
// parse, regex search, then the language-model collaborator. The first tier
// that succeeds wins; every failure path collapses to "no value" and nothing
// is ever raised to the caller.
type Extractor struct {
	gen         llm.Generator
	temperature float32
	maxTokens   int
}

func New(gen llm.Generator, cfg model.ExtractorModelConfig) *Extractor {
	return &Extractor{
		gen:         gen,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Number extracts a numeric value from text. contextLabel names the field
// being collected and is embedded in the fallback prompt.
func (e *Extractor) Number(ctx context.Context, text, contextLabel string) (float64, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		logx.Warn().Str("context", contextLabel).Msg("empty input for numeric extraction")
		return 0, false
	}

	// Tier 1: the whole input is a number ("5", "10.5").
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}

	// Tier 2: first decimal-number pattern in the text ("5 employees").
	if match := numberPattern.FindString(trimmed); match != "" {
		if v, err := strconv.ParseFloat(match, 64); err == nil {
			logx.Debug().Str("context", contextLabel).Float64("value", v).Msg("number extracted by pattern")
			return v, true
		}
	}

	// Tier 3: collaborator fallback for phrasings like "five thousand", "5k".
	return e.llmNumber(ctx, trimmed, contextLabel)
}

func (e *Extractor) llmNumber(ctx context.Context, text, contextLabel string) (float64, bool) {
	if e.gen == nil {
		logx.Debug().Str("context", contextLabel).Msg("no collaborator configured, extraction gives up")
		return 0, false
	}

	prompt := fmt.Sprintf(`The user answered '%s' to the question about '%s'.
Extract ONLY the numeric value, ignoring text and currency symbols.
If they say 'thousand' or 'k', interpret it as multiplication by 1000.
If there is a clear number, return only that number as a float (e.g. 15000.0).
If there is no clear or identifiable number, answer only 'None'.

Remember, your entire answer must be a number or 'None'. Nothing else.`, text, contextLabel)

	response, err := e.gen.Generate(ctx, prompt, e.temperature, e.maxTokens)
	if err != nil {
		logx.Error().Err(err).Str("context", contextLabel).Msg("numeric extraction collaborator call failed")
		return 0, false
	}
	if response == "" || strings.EqualFold(strings.TrimSpace(response), "none") {
		logx.Debug().Str("context", contextLabel).Str("response", response).Msg("collaborator extracted no number")
		return 0, false
	}

	// Keep digits and separators only, then normalise the decimal comma.
	cleaned := nonNumericRuns.ReplaceAllString(response, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		logx.Warn().Str("context", contextLabel).Str("response", response).Msg("could not convert collaborator response to a number")
		return 0, false
	}

	logx.Debug().Str("context", contextLabel).Float64("value", v).Msg("number extracted by collaborator")
	return v, true
}
