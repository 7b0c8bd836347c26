package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Jimmy200504/CalH2O/internal/models"
	"github.com/Jimmy200504/CalH2O/internal/prompt"
)

// FallbackComment is returned whenever a chat message cannot be turned into a
// plausible nutrition estimate.
const FallbackComment = "Your input doesn't seem to be about food. Please describe again what you ate."

// Interpreter reads a chat message in the context of the conversation so far.
type Interpreter interface {
	Interpret(ctx context.Context, req models.ChatRequest) (models.Interpretation, error)
}

// LLMInterpreter interprets chat messages with the textToNutrition prompt.
type LLMInterpreter struct {
	invoker Invoker
	catalog *prompt.Catalog
}

func NewLLMInterpreter(invoker Invoker, catalog *prompt.Catalog) *LLMInterpreter {
	return &LLMInterpreter{invoker: invoker, catalog: catalog}
}

func (i *LLMInterpreter) Interpret(ctx context.Context, req models.ChatRequest) (models.Interpretation, error) {
	var out models.Interpretation
	err := i.invoker.Invoke(ctx, i.catalog.TextToNutrition, req, &out)
	return out, err
}

// TextToNutrition estimates the nutrition of a meal described in free text.
// It never fails: implausible answers and interpreter errors both produce the
// fallback comment.
type TextToNutrition struct {
	interpreter Interpreter
	fallback    string
}

func NewTextToNutrition(interpreter Interpreter) *TextToNutrition {
	return &TextToNutrition{interpreter: interpreter, fallback: FallbackComment}
}

// WithFallback replaces the fallback comment.
func (t *TextToNutrition) WithFallback(comment string) *TextToNutrition {
	t.fallback = comment
	return t
}

func (t *TextToNutrition) Run(ctx context.Context, req models.ChatRequest) models.TextNutritionResult {
	logger := zerolog.Ctx(ctx)

	interp, err := t.interpreter.Interpret(ctx, req)
	if err != nil {
		logger.Warn().Err(err).Msg("text to nutrition failed, returning fallback comment")
		return models.TextNutritionResult{Comment: t.fallback}
	}
	if !interp.Nutrition.Plausible() {
		logger.Debug().Str("comment", interp.Comment).Msg("implausible nutrition estimate")
		return models.TextNutritionResult{Comment: t.fallback}
	}

	n := interp.Nutrition.Nutrition()
	return models.TextNutritionResult{Nutrition: &n, Comment: interp.Comment}
}
