package ml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jimmy200504/CalH2O/internal/prompt"
)

var (
	// ErrInference means the backend failed, timed out or returned no answer.
	ErrInference = errors.New("inference failed")

	// ErrOutputSchema means the answer is not JSON or does not match the
	// prompt's output schema.
	ErrOutputSchema = errors.New("model output does not match schema")
)

// Client invokes prompts against a Model and validates the answers. It performs
// no retries.
type Client struct {
	model       Model
	modelName   string
	temperature float32
	log         zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithModelName sets the default model identifier.
func WithModelName(name string) Option {
	return func(c *Client) { c.modelName = name }
}

// WithTemperature sets the sampling temperature; zero keeps the backend default.
func WithTemperature(t float32) Option {
	return func(c *Client) { c.temperature = t }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient returns a Client for a loaded model.
func NewClient(model Model, opts ...Option) *Client {
	c := &Client{model: model, modelName: "gemini-2.0-flash", log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke renders p with input, asks the model and decodes the validated answer
// into out.
func (c *Client) Invoke(ctx context.Context, p *prompt.Prompt, input, out any) error {
	return c.InvokeWithMedia(ctx, p, input, nil, out)
}

// InvokeWithMedia is Invoke with inline media parts attached to the prompt.
func (c *Client) InvokeWithMedia(ctx context.Context, p *prompt.Prompt, input any, media []Media, out any) error {
	if err := p.Input.ValidateValue(input); err != nil {
		return fmt.Errorf("prompt %s input: %w", p.Name, err)
	}

	text, err := p.Render(input)
	if err != nil {
		return err
	}

	req := &Request{
		Prompt:      p.Name,
		Model:       c.modelName,
		Text:        text,
		Media:       media,
		Schema:      p.Output,
		Temperature: c.temperature,
	}
	if p.Model != "" {
		req.Model = p.Model
	}

	start := time.Now()
	answer, err := c.model.Generate(ctx, req)
	logger := c.log.With().Str("prompt", p.Name).Str("model", req.Model).Dur("latency", time.Since(start)).Logger()
	if err != nil {
		logger.Warn().Err(err).Msg("model call failed")
		return fmt.Errorf("%w: prompt %s: %w", ErrInference, p.Name, err)
	}
	logger.Debug().Int("answer_bytes", len(answer)).Msg("model answered")

	answer = StripCodeFence(answer)
	if strings.TrimSpace(answer) == "" {
		return fmt.Errorf("%w: prompt %s: empty answer", ErrInference, p.Name)
	}

	var raw any
	if err := json.Unmarshal([]byte(answer), &raw); err != nil {
		return fmt.Errorf("%w: prompt %s: %w", ErrOutputSchema, p.Name, err)
	}
	if err := p.Output.Validate(raw); err != nil {
		return fmt.Errorf("%w: prompt %s: %w", ErrOutputSchema, p.Name, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(answer), out); err != nil {
		return fmt.Errorf("%w: prompt %s: %w", ErrOutputSchema, p.Name, err)
	}
	return nil
}

// StripCodeFence removes a surrounding markdown code fence (```json ... ```)
// that models sometimes add despite being told not to.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
