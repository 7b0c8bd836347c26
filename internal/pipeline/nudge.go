package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jimmy200504/CalH2O/internal/models"
	"github.com/Jimmy200504/CalH2O/internal/prompt"
)

var ErrUnknownStyle = errors.New("unknown emotional blackmail style")

// EmotionalBlackmail turns today's status into stylized nudges.
type EmotionalBlackmail struct {
	invoker Invoker
	catalog *prompt.Catalog
}

func NewEmotionalBlackmail(invoker Invoker, catalog *prompt.Catalog) *EmotionalBlackmail {
	return &EmotionalBlackmail{invoker: invoker, catalog: catalog}
}

// Run picks the prompt for status.EBType and returns the messages unmodified.
func (e *EmotionalBlackmail) Run(ctx context.Context, status models.Status) (models.EBOutput, error) {
	var p *prompt.Prompt
	switch status.EBType {
	case models.StylePolite:
		p = e.catalog.PoliteFriend
	case models.StyleVicious:
		p = e.catalog.ViciousFriend
	default:
		return models.EBOutput{}, fmt.Errorf("%w: %q", ErrUnknownStyle, status.EBType)
	}

	var out models.EBOutput
	if err := e.invoker.Invoke(ctx, p, status, &out); err != nil {
		return models.EBOutput{}, fmt.Errorf("emotional blackmail: %w", err)
	}
	return out, nil
}
