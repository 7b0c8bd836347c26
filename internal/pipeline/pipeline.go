// Package pipeline chains prompt invocations into the capabilities exposed by
// the server. Pipelines hold no per-request state and are safe for concurrent
// use.
package pipeline

import (
	"context"

	"github.com/Jimmy200504/CalH2O/internal/ml"
	"github.com/Jimmy200504/CalH2O/internal/prompt"
)

// Invoker runs a prompt and decodes its validated answer. *ml.Client
// implements it.
type Invoker interface {
	Invoke(ctx context.Context, p *prompt.Prompt, input, out any) error
	InvokeWithMedia(ctx context.Context, p *prompt.Prompt, input any, media []ml.Media, out any) error
}

var _ Invoker = (*ml.Client)(nil)
