// Package gemini implements the completion gateway on top of Google's Gemini
// API. A request walks an ordered list of models and returns the first
// non-empty answer.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/construfacil/internal/config"
	"github.com/edgard/construfacil/internal/logger"
	"github.com/edgard/construfacil/internal/resilience"
)

var (
	// ErrInvalidPrompt is returned for an empty prompt. No model is called.
	ErrInvalidPrompt = errors.New("prompt is required")

	// ErrUnavailable is returned when every configured model failed.
	ErrUnavailable = errors.New("completion service unavailable")
)

// Generator is the external completion capability. *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Result is a successful completion and the model that produced it.
type Result struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// Gateway tries each model in order until one yields text.
type Gateway struct {
	gen           Generator
	models        []string
	contentConfig *genai.GenerateContentConfig
	modelTimeout  time.Duration
	breakers      *resilience.Breakers
	log           *slog.Logger
}

// NewClient creates the genai client for cfg and wraps it in a Gateway.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (*Gateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	gw := NewGateway(gi.Models, cfg, log)
	gw.log.Info("Gemini gateway initialized", "models", cfg.Models)
	return gw, nil
}

// NewGateway builds a Gateway around gen.
func NewGateway(gen Generator, cfg config.GeminiConfig, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	temperature := cfg.Temperature
	contentConfig := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if cfg.SystemInstruction != "" {
		contentConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: cfg.SystemInstruction}}}
	}

	timeout := cfg.ModelTimeout
	if timeout <= 0 {
		timeout = config.DefaultGeminiModelTimeout
	}

	models := make([]string, len(cfg.Models))
	copy(models, cfg.Models)

	return &Gateway{
		gen:           gen,
		models:        models,
		contentConfig: contentConfig,
		modelTimeout:  timeout,
		breakers: resilience.NewBreakers(resilience.Settings{
			MaxFailures: cfg.BreakerFailures,
			Cooldown:    cfg.BreakerCooldown,
		}, log),
		log: log.With("component", "gemini_gateway"),
	}
}

// Models returns the fallback order.
func (g *Gateway) Models() []string {
	out := make([]string, len(g.models))
	copy(out, g.models)
	return out
}

// Complete answers prompt with the first model that returns text. It fails
// with ErrInvalidPrompt for a blank prompt and with ErrUnavailable, joined
// with each model's failure, when no model succeeds. A model whose breaker is
// open is skipped without a call.
func (g *Gateway) Complete(ctx context.Context, prompt string) (Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Result{}, ErrInvalidPrompt
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	g.log.DebugContext(ctx, "Completion requested", "prompt", logger.Preview(prompt), "models", len(g.models))

	var failures []error
	for i, model := range g.models {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		var text string
		err := g.breakers.Execute(model, func() error {
			var err error
			text, err = g.attempt(ctx, model, contents)
			return err
		})
		if errors.Is(err, resilience.ErrOpen) {
			g.log.DebugContext(ctx, "Model skipped, breaker open", "model", model)
			failures = append(failures, fmt.Errorf("model %s: %w", model, err))
			continue
		}
		if err != nil {
			g.log.WarnContext(ctx, "Model failed, trying next", "model", model, "attempt", i+1, "error", err)
			failures = append(failures, fmt.Errorf("model %s: %w", model, err))
			continue
		}

		g.log.InfoContext(ctx, "Completion served", "model", model, "attempt", i+1, "chars", len(text))
		return Result{Text: text, Model: model}, nil
	}

	g.log.ErrorContext(ctx, "All models failed", "models", g.models)
	return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(failures...))
}

func (g *Gateway) attempt(ctx context.Context, model string, contents []*genai.Content) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.modelTimeout)
	defer cancel()

	resp, err := g.gen.GenerateContent(callCtx, model, contents, g.contentConfig)
	if err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("api error %d: %w", apiErr.Code, err)
		}
		return "", err
	}
	return ExtractText(resp)
}
