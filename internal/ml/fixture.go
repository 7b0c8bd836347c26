package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Jimmy200504/CalH2O/internal/config"
)

// FixtureModel implements the Model interface with canned answers keyed by
// prompt name. It serves offline runs and tests.
type FixtureModel struct {
	config config.FixtureConfig

	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     []string
}

// FixtureModelFactory implements ModelFactory for fixture models
type FixtureModelFactory struct {
	config config.FixtureConfig
}

// NewFixtureModelFactory creates a new fixture model factory
func NewFixtureModelFactory(cfg config.FixtureConfig) *FixtureModelFactory {
	return &FixtureModelFactory{config: cfg}
}

// CreateModel creates a new fixture model instance
func (f *FixtureModelFactory) CreateModel() (Model, error) {
	return &FixtureModel{
		config: f.config,
	}, nil
}

// NewFixtureModel returns a loaded fixture model answering with responses.
func NewFixtureModel(responses map[string]string) *FixtureModel {
	return &FixtureModel{responses: responses}
}

// Load reads the fixture file. The file is a JSON object whose values are
// either strings (sent verbatim) or JSON values (sent re-encoded).
func (m *FixtureModel) Load(ctx context.Context) error {
	if m.config.Path == "" {
		return nil
	}

	data, err := os.ReadFile(m.config.Path)
	if err != nil {
		return fmt.Errorf("failed to read fixtures: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse fixtures: %w", err)
	}

	responses := make(map[string]string, len(raw))
	for name, value := range raw {
		var text string
		if err := json.Unmarshal(value, &text); err == nil {
			responses[name] = text
			continue
		}
		responses[name] = string(value)
	}

	m.mu.Lock()
	m.responses = responses
	m.mu.Unlock()
	return nil
}

// Fail makes every later call for prompt return err.
func (m *FixtureModel) Fail(prompt string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errs == nil {
		m.errs = make(map[string]error)
	}
	m.errs[prompt] = err
}

// Generate returns the canned answer for req.Prompt
func (m *FixtureModel) Generate(ctx context.Context, req *Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req.Prompt)
	if err, ok := m.errs[req.Prompt]; ok {
		return "", err
	}
	resp, ok := m.responses[req.Prompt]
	if !ok {
		return "", fmt.Errorf("no fixture for prompt %q", req.Prompt)
	}
	return resp, nil
}

// Calls returns the prompt names requested so far, in order.
func (m *FixtureModel) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Close implements Model.
func (m *FixtureModel) Close() error {
	return nil
}
