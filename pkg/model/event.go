package model

import "time"

type ExtractionKind string

const (
	ExtractionKindPersona         ExtractionKind = "persona"
	ExtractionKindBullets         ExtractionKind = "bullets"
	ExtractionKindTailor          ExtractionKind = "tailor"
	ExtractionKindRecommendations ExtractionKind = "recommendations"
)

// ExtractionEvent records how a completion was turned into a result
type ExtractionEvent struct {
	ID               string         `bigquery:"id"`
	Kind             ExtractionKind `bigquery:"kind"`
	Strategy         string         `bigquery:"strategy"`
	Success          bool           `bigquery:"success"`
	Model            string         `bigquery:"model"`
	CompletionLength int            `bigquery:"completion_length"`
	DurationMS       int64          `bigquery:"duration_ms"`
	CreatedAt        time.Time      `bigquery:"created_at"`
}
