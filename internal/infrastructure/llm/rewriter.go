// Package llm wraps the optional language-model rewriter that smooths
// template answers into warmer prose. The engine treats it as best effort:
// any failure falls back to the deterministic template text.
package llm

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/mediclic/vademecum-ai/internal/config"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

// Rewriter rewrites a drafted answer without changing its clinical content.
type Rewriter interface {
	Rewrite(ctx context.Context, draft string) (string, error)
}

const systemPrompt = `Eres un asistente de salud chileno. Reescribe la respuesta ` +
	`en un tono cercano y claro, en 2 a 3 frases. Reglas estrictas: no inventes ` +
	`información, no agregues dosis ni recomendaciones que no estén en el texto, ` +
	`conserva todos los datos clínicos tal cual y responde solo con la respuesta reescrita.`

// OpenAIRewriter implements Rewriter over an OpenAI-compatible chat model.
type OpenAIRewriter struct {
	client      *openai.LLM
	temperature float64
	maxTokens   int
	logger      logging.Logger
}

// NewOpenAIRewriter constructs the rewriter. Returns (nil, nil) when no API
// key is configured so callers can wire the absence explicitly.
func NewOpenAIRewriter(cfg config.LLMConfig, logger logging.Logger) (*OpenAIRewriter, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeRewriteFailed, "create llm client")
	}
	return &OpenAIRewriter{
		client:      client,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger.Named("rewriter"),
	}, nil
}

// Rewrite sends the draft to the model and returns its rewriting. An empty
// model reply is an error so callers never ship a blank answer.
func (r *OpenAIRewriter) Rewrite(ctx context.Context, draft string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(draft)},
		},
	}

	resp, err := r.client.GenerateContent(ctx, messages,
		llms.WithTemperature(r.temperature),
		llms.WithMaxTokens(r.maxTokens),
	)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeRewriteFailed, "llm call failed")
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.ErrCodeRewriteFailed, "llm returned no choices")
	}
	out := strings.TrimSpace(resp.Choices[0].Content)
	if out == "" {
		return "", apperrors.New(apperrors.ErrCodeRewriteFailed, "llm returned empty text")
	}
	return out, nil
}
