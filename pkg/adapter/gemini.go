package adapter

import (
	"context"
	"iter"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/model"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient streams completions from Gemini, either with an API key or
// through Vertex AI with a project and location.
type GeminiClient struct {
	apiKey    string
	projectID string
	location  string
	model     string

	mu     sync.Mutex
	client *genai.Client
}

type GeminiOption func(*GeminiClient)

func WithGeminiModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.model = model
	}
}

func WithGeminiAPIKey(apiKey string) GeminiOption {
	return func(g *GeminiClient) {
		g.apiKey = apiKey
	}
}

func WithGeminiVertex(projectID, location string) GeminiOption {
	return func(g *GeminiClient) {
		g.projectID = projectID
		g.location = location
	}
}

// NewGemini creates a Gemini backend. No client is created until the first
// completion, so missing credentials are reported at call time.
func NewGemini(opts ...GeminiOption) *GeminiClient {
	g := &GeminiClient{
		location: "us-central1",
		model:    DefaultGeminiModel,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GeminiClient) DefaultModel() string {
	return g.model
}

func (g *GeminiClient) genaiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create genai client")
		}
		return client, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}

	cfg := &genai.ClientConfig{Backend: genai.BackendVertexAI, Project: g.projectID, Location: g.location}
	if g.apiKey != "" {
		cfg = &genai.ClientConfig{Backend: genai.BackendGeminiAPI, APIKey: g.apiKey}
	} else if g.projectID == "" {
		return nil, goerr.Wrap(ErrMissingAPIKey, "gemini API key or Vertex AI project is required")
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}
	g.client = client
	return client, nil
}

func (g *GeminiClient) Stream(ctx context.Context, input *model.CompletionInput) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		client, err := g.genaiClient(ctx, input.APIKey)
		if err != nil {
			yield("", err)
			return
		}

		modelName := resolveModel(g, input)
		config := &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(input.Temperature)),
			TopP:            genai.Ptr(float32(input.TopP)),
			MaxOutputTokens: int32(input.MaxTokens),
		}
		if input.System != "" {
			config.SystemInstruction = genai.NewContentFromText(input.System, genai.RoleUser)
		}

		for resp, err := range client.Models.GenerateContentStream(ctx, modelName, genai.Text(input.User), config) {
			if err != nil {
				yield("", goerr.Wrap(err, "failed to stream gemini completion", goerr.V("model", modelName)))
				return
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}
