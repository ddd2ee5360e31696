package star

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/adapter"
	"github.com/m-mizutani/tcard/pkg/extract"
	"github.com/m-mizutani/tcard/pkg/model"
	"github.com/m-mizutani/tcard/pkg/prompt"
	"github.com/m-mizutani/tcard/pkg/usecase/record"
	"github.com/m-mizutani/tcard/pkg/utils/logging"
)

const (
	bulletsMaxTokens         = 2048
	recommendationsMaxTokens = 4096
)

// UseCase turns STAR experience descriptions into resume bullets and writing
// recommendations
type UseCase struct {
	completion adapter.Completion
	prompts    *prompt.Builder
	recorder   *record.Recorder
}

type Option func(*UseCase)

func WithPrompts(prompts *prompt.Builder) Option {
	return func(uc *UseCase) {
		uc.prompts = prompts
	}
}

func WithRecorder(recorder *record.Recorder) Option {
	return func(uc *UseCase) {
		uc.recorder = recorder
	}
}

func New(completion adapter.Completion, opts ...Option) *UseCase {
	uc := &UseCase{
		completion: completion,
		prompts:    prompt.New(),
		recorder:   record.New(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCase) complete(ctx context.Context, kind model.ExtractionKind, p *prompt.Prompt, settings model.GenerationSettings, maxTokens int) (string, *record.Trace, error) {
	input := &model.CompletionInput{
		Model:       settings.Model,
		System:      p.System,
		User:        p.User,
		Temperature: settings.Temperature(),
		TopP:        settings.TopP(),
		MaxTokens:   maxTokens,
		APIKey:      settings.APIKey,
	}
	modelName := input.Model
	if modelName == "" {
		modelName = uc.completion.DefaultModel()
	}

	logging.From(ctx).Info("requesting completion", "kind", kind, "model", modelName)

	trace := &record.Trace{
		Kind:      kind,
		Model:     modelName,
		Input:     input,
		StartedAt: uc.recorder.Now(),
	}
	text, err := adapter.Complete(ctx, uc.completion, input)
	if err != nil {
		return "", nil, goerr.Wrap(err, "failed to generate "+string(kind), goerr.V("model", modelName))
	}
	trace.Completion = text
	return text, trace, nil
}

func (uc *UseCase) bullets(ctx context.Context, kind model.ExtractionKind, p *prompt.Prompt, settings model.GenerationSettings) (*extract.BulletResult, error) {
	text, trace, err := uc.complete(ctx, kind, p, settings, bulletsMaxTokens)
	if err != nil {
		return nil, err
	}

	result, err := extract.Bullets(text)
	if err != nil {
		uc.recorder.Record(ctx, trace)
		logging.From(ctx).Warn("failed to parse generated bullets", "kind", kind, "length", len(text))
		return nil, &model.ExtractionError{
			Kind:       kind,
			Reason:     "no valid bullet points found",
			Completion: text,
			Err:        err,
		}
	}

	trace.Success = true
	trace.Strategy = string(result.Strategy)
	uc.recorder.Record(ctx, trace)
	return result, nil
}

// Bullets writes resume bullets for one STAR experience
func (uc *UseCase) Bullets(ctx context.Context, input *model.StarInput) (*extract.BulletResult, error) {
	if input.StarContent.IsEmpty() {
		return nil, goerr.Wrap(model.ErrInvalidInput, "star_content is required")
	}

	p, err := uc.prompts.Bullets(input)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build bullets prompt")
	}
	return uc.bullets(ctx, model.ExtractionKindBullets, p, input.Settings)
}

// Tailor rewrites resume bullets for a target position
func (uc *UseCase) Tailor(ctx context.Context, input *model.TailorInput) (*extract.BulletResult, error) {
	if input.StarContent.IsEmpty() {
		return nil, goerr.Wrap(model.ErrInvalidInput, "star_content is required")
	}
	if strings.TrimSpace(input.TargetPosition.Title+input.TargetPosition.Description) == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "targetPosition needs a title or a description")
	}

	p, err := uc.prompts.Tailor(input)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build tailor prompt")
	}
	return uc.bullets(ctx, model.ExtractionKindTailor, p, input.Settings)
}

var starSections = []string{"situation", "task", "action", "result"}

// Recommendations suggests improvements for every STAR section. The model may
// answer with {"recommendations": {...}} or with the section map itself.
func (uc *UseCase) Recommendations(ctx context.Context, input *model.StarInput) (*model.Recommendations, error) {
	if input.StarContent.IsEmpty() {
		return nil, goerr.Wrap(model.ErrInvalidInput, "star_content is required")
	}

	p, err := uc.prompts.Recommendations(input)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build recommendations prompt")
	}

	kind := model.ExtractionKindRecommendations
	text, trace, err := uc.complete(ctx, kind, p, input.Settings, recommendationsMaxTokens)
	if err != nil {
		return nil, err
	}

	recs, strategy, reason := decodeRecommendations(text)
	if recs == nil {
		uc.recorder.Record(ctx, trace)
		logging.From(ctx).Warn("failed to parse generated recommendations", "reason", reason, "length", len(text))
		return nil, &model.ExtractionError{
			Kind:       kind,
			Reason:     reason,
			Completion: text,
		}
	}

	trace.Success = true
	trace.Strategy = string(strategy)
	uc.recorder.Record(ctx, trace)
	return recs, nil
}

func decodeRecommendations(text string) (*model.Recommendations, extract.Strategy, string) {
	res, ok := extract.JSON(text)
	if !ok {
		return nil, extract.StrategyNone, "no JSON object found"
	}

	data := res.Data
	if inner, ok := data["recommendations"].(map[string]any); ok {
		data = inner
	}

	found := false
	for _, key := range starSections {
		if _, ok := data[key]; ok {
			found = true
			break
		}
	}
	if !found {
		return nil, res.Strategy, "no STAR section in response"
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, res.Strategy, "unexpected recommendation shape"
	}
	var recs model.Recommendations
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, res.Strategy, "unexpected recommendation shape"
	}

	recs.Normalize()
	return &recs, res.Strategy, ""
}
