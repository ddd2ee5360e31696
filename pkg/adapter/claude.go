package adapter

import (
	"context"
	"iter"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/model"
)

// DefaultClaudeModel accepts temperature and top_p in the same request
const DefaultClaudeModel = "claude-sonnet-4-20250514"

// ClaudeClient streams completions from the Anthropic Messages API
type ClaudeClient struct {
	apiKey  string
	model   string
	options []option.RequestOption
}

type ClaudeOption func(*ClaudeClient)

func WithClaudeModel(model string) ClaudeOption {
	return func(c *ClaudeClient) {
		c.model = model
	}
}

// WithClaudeBaseURL points the client to another endpoint such as a proxy
func WithClaudeBaseURL(url string) ClaudeOption {
	return func(c *ClaudeClient) {
		c.options = append(c.options, option.WithBaseURL(url))
	}
}

// NewClaude creates a Claude backend. An empty apiKey is accepted and reported
// when a completion is requested without a per-request key.
func NewClaude(apiKey string, opts ...ClaudeOption) *ClaudeClient {
	c := &ClaudeClient{
		apiKey: apiKey,
		model:  DefaultClaudeModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ClaudeClient) DefaultModel() string {
	return c.model
}

func (c *ClaudeClient) Stream(ctx context.Context, input *model.CompletionInput) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		apiKey := c.apiKey
		if input.APIKey != "" {
			apiKey = input.APIKey
		}
		if apiKey == "" {
			yield("", goerr.Wrap(ErrMissingAPIKey, "claude API key is required"))
			return
		}

		opts := append([]option.RequestOption{
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(0),
		}, c.options...)
		client := anthropic.NewClient(opts...)

		modelName := resolveModel(c, input)
		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(modelName),
			MaxTokens: int64(input.MaxTokens),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(input.User)),
			},
			Temperature: anthropic.Float(input.Temperature),
			TopP:        anthropic.Float(input.TopP),
		}
		if input.System != "" {
			params.System = []anthropic.TextBlockParam{{Text: input.System}}
		}

		stream := client.Messages.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			delta, ok := ev.Delta.AsAny().(anthropic.TextDelta)
			if !ok {
				continue
			}
			if !yield(delta.Text, nil) {
				return
			}
		}

		if err := stream.Err(); err != nil {
			yield("", goerr.Wrap(err, "failed to stream claude completion", goerr.V("model", modelName)))
		}
	}
}
