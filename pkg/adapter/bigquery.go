package adapter

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/model"
)

// EventSink records the outcome of every extraction
type EventSink interface {
	Record(ctx context.Context, event *model.ExtractionEvent) error
}

type bigquerySink struct {
	client  *bigquery.Client
	dataset string
	table   string
}

// NewBigQuerySink creates an EventSink that streams rows into an existing
// BigQuery table whose columns follow model.ExtractionEvent.
func NewBigQuerySink(ctx context.Context, projectID, dataset, table string) (EventSink, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client")
	}

	return &bigquerySink{
		client:  client,
		dataset: dataset,
		table:   table,
	}, nil
}

func (x *bigquerySink) Record(ctx context.Context, event *model.ExtractionEvent) error {
	inserter := x.client.Dataset(x.dataset).Table(x.table).Inserter()
	if err := inserter.Put(ctx, event); err != nil {
		return goerr.Wrap(err, "failed to insert extraction event",
			goerr.V("dataset", x.dataset),
			goerr.V("table", x.table),
			goerr.V("id", event.ID))
	}
	return nil
}

// ExtractionEventSchema is the table schema expected by the BigQuery sink
func ExtractionEventSchema() (bigquery.Schema, error) {
	schema, err := bigquery.InferSchema(model.ExtractionEvent{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to infer extraction event schema")
	}
	return schema, nil
}

type nopSink struct{}

// NopEventSink discards every event
func NopEventSink() EventSink {
	return nopSink{}
}

func (nopSink) Record(context.Context, *model.ExtractionEvent) error {
	return nil
}
