package ml

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Jimmy200504/CalH2O/internal/config"
	"github.com/Jimmy200504/CalH2O/internal/schema"
)

// GeminiModel implements the Model interface for the Gemini API (API key auth).
type GeminiModel struct {
	config config.GeminiConfig
	client *genai.Client
}

// GeminiModelFactory implements ModelFactory for Gemini API models
type GeminiModelFactory struct {
	config config.GeminiConfig
}

// NewGeminiModelFactory creates a new Gemini API model factory
func NewGeminiModelFactory(cfg config.GeminiConfig) *GeminiModelFactory {
	return &GeminiModelFactory{config: cfg}
}

// CreateModel creates a new Gemini API model instance
func (f *GeminiModelFactory) CreateModel() (Model, error) {
	if f.config.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	return &GeminiModel{config: f.config}, nil
}

// Load creates the GenAI client
func (m *GeminiModel) Load(ctx context.Context) error {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  m.config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("failed to create GenAI client: %w", err)
	}
	m.client = client
	return nil
}

// Generate sends the prompt and inline media and returns the answer text
func (m *GeminiModel) Generate(ctx context.Context, req *Request) (string, error) {
	if m.client == nil {
		return "", fmt.Errorf("model not loaded")
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Text)}
	for _, media := range req.Media {
		parts = append(parts, genai.NewPartFromBytes(media.Data, media.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(req.Temperature)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = genaiSchema(req.Schema)
	}

	resp, err := m.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no content in response")
	}
	return text, nil
}

// Close implements Model.
func (m *GeminiModel) Close() error {
	return nil
}

func genaiSchema(s *schema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       genaiSchema(s.Items),
	}
	if s.Nullable {
		out.Nullable = genai.Ptr(true)
	}
	if s.MinItems > 0 {
		out.MinItems = genai.Ptr(int64(s.MinItems))
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = genaiSchema(prop)
		}
	}
	return out
}

func genaiType(t schema.Type) genai.Type {
	switch t {
	case schema.TypeObject:
		return genai.TypeObject
	case schema.TypeArray:
		return genai.TypeArray
	case schema.TypeString:
		return genai.TypeString
	case schema.TypeNumber:
		return genai.TypeNumber
	case schema.TypeInteger:
		return genai.TypeInteger
	case schema.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
