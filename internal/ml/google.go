package ml

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"github.com/Jimmy200504/CalH2O/internal/config"
	"github.com/Jimmy200504/CalH2O/internal/schema"
)

// VertexModel implements the Model interface for Gemini on Vertex AI
type VertexModel struct {
	config config.VertexConfig
	client *genai.Client
}

// VertexModelFactory implements ModelFactory for Vertex AI models
type VertexModelFactory struct {
	config config.VertexConfig
}

// NewVertexModelFactory creates a new Vertex AI model factory
func NewVertexModelFactory(cfg config.VertexConfig) *VertexModelFactory {
	return &VertexModelFactory{config: cfg}
}

// CreateModel creates a new Vertex AI model instance
func (f *VertexModelFactory) CreateModel() (Model, error) {
	return &VertexModel{
		config: f.config,
	}, nil
}

// Load initializes the Vertex AI client
func (m *VertexModel) Load(ctx context.Context) error {
	opts := []option.ClientOption{}

	if m.config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(m.config.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, m.config.ProjectID, m.config.Location, opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	m.client = client
	return nil
}

// Generate sends the prompt and inline media to Gemini and returns the answer text
func (m *VertexModel) Generate(ctx context.Context, req *Request) (string, error) {
	if m.client == nil {
		return "", fmt.Errorf("model not loaded")
	}

	model := m.client.GenerativeModel(req.Model)
	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = vertexSchema(req.Schema)
	}

	parts := []genai.Part{genai.Text(req.Text)}
	for _, media := range req.Media {
		parts = append(parts, genai.Blob{MIMEType: media.MIMEType, Data: media.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to call ai: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response generated")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}

// Close closes the Vertex AI client
func (m *VertexModel) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

func vertexSchema(s *schema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        vertexType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Nullable:    s.Nullable,
		Items:       vertexSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = vertexSchema(prop)
		}
	}
	return out
}

func vertexType(t schema.Type) genai.Type {
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
