package repository

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const collectionPersonas = "personas"

// Firestore implements Repository using Cloud Firestore
type Firestore struct {
	client *firestore.Client
	now    func() time.Time
}

type personaDoc struct {
	ID        string         `firestore:"id"`
	Fields    map[string]any `firestore:"fields"`
	CreatedAt time.Time      `firestore:"created_at"`
	UpdatedAt time.Time      `firestore:"updated_at"`
}

func toDoc(p *model.Persona) *personaDoc {
	return &personaDoc{
		ID:        string(p.ID),
		Fields:    p.Fields,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (x *personaDoc) toModel() *model.Persona {
	fields := x.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	return &model.Persona{
		ID:        model.PersonaID(x.ID),
		Fields:    fields,
		CreatedAt: x.CreatedAt,
		UpdatedAt: x.UpdatedAt,
	}
}

// NewFirestore creates a Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID))
	}

	return &Firestore{client: client, now: time.Now}, nil
}

func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) personaRef(id model.PersonaID) *firestore.DocumentRef {
	return r.client.Collection(collectionPersonas).Doc(string(id))
}

func (r *Firestore) PutPersona(ctx context.Context, persona *model.Persona) error {
	if persona.ID == "" {
		return goerr.New("persona ID is required")
	}

	if _, err := r.personaRef(persona.ID).Set(ctx, toDoc(persona)); err != nil {
		return goerr.Wrap(err, "failed to put persona", goerr.V("id", persona.ID))
	}
	return nil
}

func (r *Firestore) GetPersona(ctx context.Context, id model.PersonaID) (*model.Persona, error) {
	snap, err := r.personaRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrPersonaNotFound, "failed to get persona", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get persona", goerr.V("id", id))
	}

	var doc personaDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode persona", goerr.V("id", id))
	}
	return doc.toModel(), nil
}

func (r *Firestore) UpdatePersona(ctx context.Context, id model.PersonaID, patch map[string]any) (*model.Persona, error) {
	ref := r.personaRef(id)
	var merged *model.Persona

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrPersonaNotFound, "failed to update persona", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get persona in transaction", goerr.V("id", id))
		}

		var doc personaDoc
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to decode persona", goerr.V("id", id))
		}

		now := r.now()
		updates := make([]firestore.Update, 0, len(patch)+1)
		for key, value := range patch {
			updates = append(updates, firestore.Update{
				FieldPath: firestore.FieldPath{"fields", key},
				Value:     value,
			})
		}
		updates = append(updates, firestore.Update{Path: "updated_at", Value: now})

		if err := tx.Update(ref, updates); err != nil {
			return goerr.Wrap(err, "failed to update persona", goerr.V("id", id))
		}

		merged = doc.toModel()
		merged.Merge(patch, now)
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrPersonaNotFound) {
			return nil, err
		}
		return nil, goerr.Wrap(err, "failed to run persona update transaction", goerr.V("id", id))
	}

	return merged, nil
}

func (r *Firestore) ListPersonas(ctx context.Context) ([]*model.Persona, error) {
	iter := r.client.Collection(collectionPersonas).OrderBy("created_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var personas []*model.Persona
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate personas")
		}

		var doc personaDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode persona", goerr.V("id", snap.Ref.ID))
		}
		personas = append(personas, doc.toModel())
	}

	return personas, nil
}
