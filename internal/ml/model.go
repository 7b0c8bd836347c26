package ml

import (
	"context"
	"fmt"

	"github.com/Jimmy200504/CalH2O/internal/config"
	"github.com/Jimmy200504/CalH2O/internal/schema"
)

// Media is an inline binary part sent alongside the prompt text.
type Media struct {
	MIMEType string
	Data     []byte
}

// Request is a single structured generation call.
type Request struct {
	// Prompt is the name of the prompt the text was rendered from.
	Prompt string
	Model  string
	Text   string
	Media  []Media

	// Schema constrains the JSON answer of the model.
	Schema *schema.Schema

	Temperature float32
}

// Model represents a hosted model that answers a rendered prompt with JSON text
type Model interface {
	// Load initializes the model with its configuration
	Load(ctx context.Context) error
	// Generate returns the raw text of the first candidate answer
	Generate(ctx context.Context, req *Request) (string, error)
	// Close releases the underlying client
	Close() error
}

// ModelFactory creates a new model instance based on configuration
type ModelFactory interface {
	// CreateModel creates a new model instance
	CreateModel() (Model, error)
}

// NewModel creates a new model instance based on the configured backend type
func NewModel(cfg config.MLConfig) (Model, error) {
	var factory ModelFactory

	switch cfg.Type {
	case "vertex":
		factory = NewVertexModelFactory(cfg.Vertex)
	case "gemini":
		factory = NewGeminiModelFactory(cfg.Gemini)
	case "fixture":
		factory = NewFixtureModelFactory(cfg.Fixture)
	default:
		return nil, fmt.Errorf("unsupported model type: %s", cfg.Type)
	}
	return factory.CreateModel()
}
