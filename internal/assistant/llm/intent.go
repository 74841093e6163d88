package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ecotally-core/server/internal/assistant/model"
	logx "github.com/ecotally-core/server/pkg/logger"
)

var knownIntents = []model.Intent{
	model.IntentExpectedAnswer,
	model.IntentGeneralQuestion,
	model.IntentGreetingFarewell,
	model.IntentCorrectValue,
	model.IntentUnintelligible,
}

// farewell phrases recognised without a collaborator.
var farewellKeywords = []string{"bye", "goodbye", "see you", "thanks, bye", "thank you, bye"}

// Classifier labels a user turn with one of the known intents. Without a
// configured Generator it falls back to keyword matching and otherwise
// assumes the user answered the pending question.
type Classifier struct {
	gen Generator
	cfg model.IntentModelConfig
}

func NewClassifier(gen Generator, cfg model.IntentModelConfig) *Classifier {
	return &Classifier{gen: gen, cfg: cfg}
}

// Classify never fails; unusable collaborator output collapses to
// IntentUnintelligible, absent collaborator to keyword-only behaviour.
func (c *Classifier) Classify(ctx context.Context, input string, phase model.Phase) model.Intent {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return model.IntentUnintelligible
	}

	for _, kw := range farewellKeywords {
		if trimmed == kw {
			return model.IntentGreetingFarewell
		}
	}

	if c.gen == nil {
		return model.IntentExpectedAnswer
	}

	prompt := c.buildPrompt(input, phase)
	response, err := c.gen.Generate(ctx, prompt, c.cfg.Temperature, c.cfg.MaxTokens)
	if err != nil {
		logx.Warn().Err(err).Str("phase", phase.String()).Msg("intent classification failed, assuming expected answer")
		return model.IntentExpectedAnswer
	}

	label := model.Intent(strings.ToLower(strings.TrimSpace(response)))
	for _, known := range knownIntents {
		if label == known {
			logx.Debug().Str("intent", string(label)).Str("phase", phase.String()).Msg("intent classified")
			return label
		}
	}

	logx.Warn().Str("response", response).Msg("unrecognised intent label, treating as unintelligible")
	return model.IntentUnintelligible
}

func (c *Classifier) buildPrompt(input string, phase model.Phase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Context: a carbon-footprint assistant is waiting for '%s'.\n", phase)
	fmt.Fprintf(&b, "User input: '%s'\n\n", input)
	b.WriteString("Task: classify the user's main intention.\n")
	b.WriteString("Definitions:\n")
	b.WriteString("- expected_answer: provides information directly relevant to the pending question (a number, a name, an option).\n")
	b.WriteString("- general_question: asks something else about the process, emissions or the calculation.\n")
	b.WriteString("- greeting_farewell: a greeting, farewell or thanks.\n")
	b.WriteString("- correct_value: explicitly wants to change a previously given value.\n")
	b.WriteString("- unintelligible: fits none of the above or is irrelevant.\n\n")
	b.WriteString("IMPORTANT: answer with exactly ONE of these labels:\n")
	labels := make([]string, len(knownIntents))
	for i, it := range knownIntents {
		labels[i] = string(it)
	}
	b.WriteString(strings.Join(labels, ", "))
	return b.String()
}
