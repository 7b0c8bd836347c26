// Package prompt renders the fixed natural-language templates sent to the model.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/Jimmy200504/CalH2O/internal/schema"
)

// Prompt is a named template together with the shape of its input and of the
// JSON object the model must answer with.
type Prompt struct {
	Name string

	// Model overrides the client's default model identifier when set.
	Model string

	Input  *schema.Schema
	Output *schema.Schema

	tmpl *template.Template
}

// New parses text as a template. It panics on a malformed template.
func New(name, text string, input, output *schema.Schema) *Prompt {
	t := template.Must(template.New(name).Option("missingkey=error").Parse(text))
	return &Prompt{Name: name, Input: input, Output: output, tmpl: t}
}

// Render produces the prompt text for input. The input is rendered through its
// JSON encoding so templates use the same field names as the wire format.
// Numbers keep their JSON text, so 1000000 renders as written and a present
// zero is non-empty for with and if.
func (p *Prompt) Render(input any) (string, error) {
	data, err := toData(input)
	if err != nil {
		return "", fmt.Errorf("prompt %s: %w", p.Name, err)
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("prompt %s: render: %w", p.Name, err)
	}
	return buf.String(), nil
}

func toData(input any) (any, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return data, nil
}
