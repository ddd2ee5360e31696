package record_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tcard/pkg/model"
	"github.com/m-mizutani/tcard/pkg/usecase/record"
)

type mockSink struct {
	events []*model.ExtractionEvent
	err    error
}

func (m *mockSink) Record(ctx context.Context, event *model.ExtractionEvent) error {
	m.events = append(m.events, event)
	return m.err
}

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

type mockArchive struct {
	objects map[string]*bufferCloser
	err     error
}

func (m *mockArchive) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.objects == nil {
		m.objects = map[string]*bufferCloser{}
	}
	b := &bufferCloser{}
	m.objects[key] = b
	return b, nil
}

func TestRecord(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	sink := &mockSink{}
	archive := &mockArchive{}
	r := record.New(
		record.WithEventSink(sink),
		record.WithArchive(archive),
		record.WithClock(func() time.Time { return now }),
	)

	r.Record(context.Background(), &record.Trace{
		Kind:       model.ExtractionKindBullets,
		Strategy:   "lines",
		Success:    true,
		Model:      "m1",
		Input:      &model.CompletionInput{System: "sys", User: "usr"},
		Completion: "- Did X",
		StartedAt:  now.Add(-1500 * time.Millisecond),
	})

	gt.A(t, sink.events).Length(1)
	ev := sink.events[0]
	gt.Equal(t, ev.Kind, model.ExtractionKindBullets)
	gt.Equal(t, ev.Strategy, "lines")
	gt.True(t, ev.Success)
	gt.Equal(t, ev.CompletionLength, 7)
	gt.Equal(t, ev.DurationMS, int64(1500))

	gt.Equal(t, len(archive.objects), 1)
	for key, obj := range archive.objects {
		gt.True(t, strings.HasPrefix(key, "bullets/2025/03/04/"))
		gt.True(t, obj.closed)

		var doc map[string]any
		gt.NoError(t, json.Unmarshal(obj.Bytes(), &doc))
		gt.Equal(t, doc["completion"], any("- Did X"))
		gt.Equal(t, doc["user"], any("usr"))
		gt.Equal(t, doc["id"], any(ev.ID))
	}
}

func TestRecordFailuresAreSwallowed(t *testing.T) {
	sink := &mockSink{err: errors.New("sink down")}
	r := record.New(
		record.WithEventSink(sink),
		record.WithArchive(&mockArchive{err: errors.New("bucket missing")}),
	)

	r.Record(context.Background(), &record.Trace{Kind: model.ExtractionKindPersona, StartedAt: time.Now()})
	gt.A(t, sink.events).Length(1)
}

func TestRecordWithoutArchive(t *testing.T) {
	r := record.New()
	r.Record(context.Background(), &record.Trace{Kind: model.ExtractionKindTailor, StartedAt: time.Now()})
}
