package repository

import (
	"context"

	"github.com/m-mizutani/tcard/pkg/model"
)

// Repository defines the interface for persona persistence
type Repository interface {
	// PutPersona saves a persona, replacing any record with the same ID
	PutPersona(ctx context.Context, persona *model.Persona) error

	// GetPersona retrieves a persona by ID. A miss returns an error wrapping
	// model.ErrPersonaNotFound.
	GetPersona(ctx context.Context, id model.PersonaID) (*model.Persona, error)

	// UpdatePersona merges patch into the top-level fields of a persona and
	// returns the merged record
	UpdatePersona(ctx context.Context, id model.PersonaID, patch map[string]any) (*model.Persona, error)

	// ListPersonas retrieves all personas, newest first
	ListPersonas(ctx context.Context) ([]*model.Persona, error)
}
