package persona

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/adapter"
	"github.com/m-mizutani/tcard/pkg/extract"
	"github.com/m-mizutani/tcard/pkg/model"
	"github.com/m-mizutani/tcard/pkg/prompt"
	"github.com/m-mizutani/tcard/pkg/repository"
	"github.com/m-mizutani/tcard/pkg/usecase/record"
	"github.com/m-mizutani/tcard/pkg/utils/logging"
)

const maxTokens = 7000

// UseCase provides persona operations
type UseCase struct {
	repo       repository.Repository
	completion adapter.Completion
	prompts    *prompt.Builder
	format     model.PersonaFormat
	recorder   *record.Recorder
}

// Option is a functional option for UseCase
type Option func(*UseCase)

func WithPrompts(prompts *prompt.Builder) Option {
	return func(uc *UseCase) {
		uc.prompts = prompts
	}
}

// WithFormat selects the answer format requested from the model
func WithFormat(format model.PersonaFormat) Option {
	return func(uc *UseCase) {
		uc.format = format
	}
}

func WithRecorder(recorder *record.Recorder) Option {
	return func(uc *UseCase) {
		uc.recorder = recorder
	}
}

// New creates a new persona UseCase instance
func New(repo repository.Repository, completion adapter.Completion, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:       repo,
		completion: completion,
		prompts:    prompt.New(),
		format:     model.PersonaFormatJSON,
		recorder:   record.New(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Result is a generated and saved persona
type Result struct {
	Persona    *model.Persona
	Completion string
	Sections   map[string]any
}

// Generate builds a persona from the submitted fields and saves it
func (uc *UseCase) Generate(ctx context.Context, req *model.PersonaRequest) (*Result, error) {
	p, err := uc.prompts.Persona(req, uc.format)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build persona prompt")
	}

	input := &model.CompletionInput{
		Model:       req.Settings.Model,
		System:      p.System,
		User:        p.User,
		Temperature: req.Settings.Temperature(),
		TopP:        req.Settings.TopP(),
		MaxTokens:   maxTokens,
		APIKey:      req.Settings.APIKey,
	}
	modelName := input.Model
	if modelName == "" {
		modelName = uc.completion.DefaultModel()
	}

	logger := logging.From(ctx).With("model", modelName, "fields", len(req.Fields))
	logger.Info("generating persona")

	startedAt := uc.recorder.Now()
	text, err := adapter.Complete(ctx, uc.completion, input)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate persona", goerr.V("model", modelName))
	}

	res, ok := uc.extract(text)
	trace := &record.Trace{
		Kind:       model.ExtractionKindPersona,
		Success:    ok,
		Model:      modelName,
		Input:      input,
		Completion: text,
		StartedAt:  startedAt,
	}
	if ok {
		trace.Strategy = string(res.Strategy)
	}
	uc.recorder.Record(ctx, trace)

	if !ok {
		logger.Warn("failed to parse generated persona", "length", len(text))
		return nil, &model.ExtractionError{
			Kind:       model.ExtractionKindPersona,
			Completion: text,
		}
	}

	now := uc.recorder.Now()
	fields := req.Echo()
	for k, v := range res.Data {
		fields[k] = v
	}
	fields[model.PersonaFieldGeneratedText] = text
	fields[model.PersonaFieldTimestamp] = now.Format(time.RFC3339)

	persona := &model.Persona{
		ID:        model.NewPersonaID(),
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.PutPersona(ctx, persona); err != nil {
		return nil, goerr.Wrap(err, "failed to save persona", goerr.V("id", persona.ID))
	}

	logger.Info("persona saved", "persona_id", persona.ID, "strategy", res.Strategy)
	return &Result{
		Persona:    persona,
		Completion: text,
		Sections:   res.Data,
	}, nil
}

// extract parses the completion in the configured format. The sections format
// falls back to the JSON chain because models often answer in JSON anyway.
func (uc *UseCase) extract(text string) (*extract.Result, bool) {
	if uc.format == model.PersonaFormatSections {
		if res, ok := extract.PersonaSections(text); ok {
			return res, true
		}
	}
	return extract.Persona(text)
}

func (uc *UseCase) Get(ctx context.Context, id model.PersonaID) (*model.Persona, error) {
	return uc.repo.GetPersona(ctx, id)
}

// Update merges patch into the persona's top-level fields
func (uc *UseCase) Update(ctx context.Context, id model.PersonaID, patch map[string]any) (*model.Persona, error) {
	persona, err := uc.repo.UpdatePersona(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("persona updated", "persona_id", id, "keys", len(patch))
	return persona, nil
}

func (uc *UseCase) List(ctx context.Context) ([]*model.Persona, error) {
	return uc.repo.ListPersonas(ctx)
}
