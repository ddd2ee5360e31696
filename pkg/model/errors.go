package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidInput = goerr.New("invalid input")
)

// ExtractionError reports a completion that could not be turned into the
// expected structure. Completion keeps the raw text for diagnosis.
type ExtractionError struct {
	Kind       ExtractionKind
	Reason     string
	Completion string
	Err        error
}

func (e *ExtractionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("failed to parse generated %s", e.Kind)
	}
	return fmt.Sprintf("failed to parse generated %s: %s", e.Kind, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
