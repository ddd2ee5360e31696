package adapter

import (
	"context"
	"iter"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/model"
)

var ErrMissingAPIKey = goerr.New("API key is not configured")

// Completion is a streaming text completion backend
type Completion interface {
	// Stream yields text fragments in arrival order. An error ends the stream.
	Stream(ctx context.Context, input *model.CompletionInput) iter.Seq2[string, error]

	// DefaultModel is used when the input has no model
	DefaultModel() string
}

// Complete drains a completion stream into one string
func Complete(ctx context.Context, c Completion, input *model.CompletionInput) (string, error) {
	var b strings.Builder
	for fragment, err := range c.Stream(ctx, input) {
		if err != nil {
			return "", err
		}
		b.WriteString(fragment)
	}
	return b.String(), nil
}

func resolveModel(c Completion, input *model.CompletionInput) string {
	if input.Model != "" {
		return input.Model
	}
	return c.DefaultModel()
}
