package adapter_test

import (
	"context"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tcard/pkg/adapter"
	"github.com/m-mizutani/tcard/pkg/model"
)

func TestExtractionEventSchema(t *testing.T) {
	schema, err := adapter.ExtractionEventSchema()
	gt.NoError(t, err)

	names := make([]string, 0, len(schema))
	for _, field := range schema {
		names = append(names, field.Name)
	}
	gt.A(t, names).Length(8)
	gt.True(t, slices.Contains(names, "strategy"))
	gt.True(t, slices.Contains(names, "duration_ms"))
}

func TestNopEventSink(t *testing.T) {
	gt.NoError(t, adapter.NopEventSink().Record(context.Background(), &model.ExtractionEvent{}))
}

func TestBigQuerySink(t *testing.T) {
	projectID := os.Getenv("TEST_BIGQUERY_PROJECT")
	if projectID == "" {
		t.Skip("TEST_BIGQUERY_PROJECT is not set")
	}

	datasetID := os.Getenv("TEST_BIGQUERY_DATASET")
	if datasetID == "" {
		t.Skip("TEST_BIGQUERY_DATASET is not set")
	}

	table := os.Getenv("TEST_BIGQUERY_TABLE")
	if table == "" {
		t.Skip("TEST_BIGQUERY_TABLE is not set")
	}

	ctx := context.Background()
	sink, err := adapter.NewBigQuerySink(ctx, projectID, datasetID, table)
	gt.NoError(t, err)

	gt.NoError(t, sink.Record(ctx, &model.ExtractionEvent{
		ID:               "test-" + time.Now().Format("20060102150405"),
		Kind:             model.ExtractionKindBullets,
		Strategy:         "lines",
		Success:          true,
		Model:            "test",
		CompletionLength: 42,
		DurationMS:       10,
		CreatedAt:        time.Now(),
	}))
}
