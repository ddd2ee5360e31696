package record

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/adapter"
	"github.com/m-mizutani/tcard/pkg/model"
	"github.com/m-mizutani/tcard/pkg/utils/logging"
)

// Recorder reports extraction outcomes to the event sink and keeps raw
// completions in the archive. Both are optional and their failures are only
// logged.
type Recorder struct {
	archive adapter.Archive
	sink    adapter.EventSink
	now     func() time.Time
}

type Option func(*Recorder)

func WithArchive(archive adapter.Archive) Option {
	return func(r *Recorder) {
		r.archive = archive
	}
}

func WithEventSink(sink adapter.EventSink) Option {
	return func(r *Recorder) {
		r.sink = sink
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

func New(opts ...Option) *Recorder {
	r := &Recorder{
		sink: adapter.NopEventSink(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now is the clock shared with the use cases
func (r *Recorder) Now() time.Time {
	return r.now()
}

// Trace is one completion and what the extractor made of it
type Trace struct {
	Kind       model.ExtractionKind
	Strategy   string
	Success    bool
	Model      string
	Input      *model.CompletionInput
	Completion string
	StartedAt  time.Time
}

type archivedCompletion struct {
	ID         string               `json:"id"`
	Kind       model.ExtractionKind `json:"kind"`
	Model      string               `json:"model"`
	Strategy   string               `json:"strategy"`
	Success    bool                 `json:"success"`
	System     string               `json:"system"`
	User       string               `json:"user"`
	Completion string               `json:"completion"`
	CreatedAt  time.Time            `json:"created_at"`
}

// Record stores the trace. It never fails the request.
func (r *Recorder) Record(ctx context.Context, trace *Trace) {
	now := r.now()
	id := uuid.New().String()
	logger := logging.From(ctx).With("kind", trace.Kind, "extraction_id", id)

	event := &model.ExtractionEvent{
		ID:               id,
		Kind:             trace.Kind,
		Strategy:         trace.Strategy,
		Success:          trace.Success,
		Model:            trace.Model,
		CompletionLength: len(trace.Completion),
		DurationMS:       now.Sub(trace.StartedAt).Milliseconds(),
		CreatedAt:        now,
	}
	logger.Debug("extraction finished",
		"strategy", event.Strategy,
		"success", event.Success,
		"duration_ms", event.DurationMS)

	if err := r.sink.Record(ctx, event); err != nil {
		logger.Warn("failed to record extraction event", "error", err)
	}

	if r.archive == nil {
		return
	}
	if err := r.put(ctx, id, now, trace); err != nil {
		logger.Warn("failed to archive completion", "error", err)
	}
}

func (r *Recorder) put(ctx context.Context, id string, now time.Time, trace *Trace) error {
	key := string(trace.Kind) + "/" + now.UTC().Format("2006/01/02") + "/" + id + ".json"
	w, err := r.archive.Put(ctx, key)
	if err != nil {
		return goerr.Wrap(err, "failed to open archive object", goerr.V("key", key))
	}

	doc := archivedCompletion{
		ID:         id,
		Kind:       trace.Kind,
		Model:      trace.Model,
		Strategy:   trace.Strategy,
		Success:    trace.Success,
		Completion: trace.Completion,
		CreatedAt:  now,
	}
	if trace.Input != nil {
		doc.System = trace.Input.System
		doc.User = trace.Input.User
	}

	if err := json.NewEncoder(w).Encode(doc); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write archive object", goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to close archive object", goerr.V("key", key))
	}
	return nil
}
