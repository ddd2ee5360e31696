package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/model"
)

// Memory keeps personas in process memory. Records are lost on restart.
type Memory struct {
	mu       sync.RWMutex
	personas map[model.PersonaID]*model.Persona
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		personas: make(map[model.PersonaID]*model.Persona),
		now:      time.Now,
	}
}

func (m *Memory) PutPersona(ctx context.Context, persona *model.Persona) error {
	if persona.ID == "" {
		return goerr.New("persona ID is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.personas[persona.ID] = persona.Clone()
	return nil
}

func (m *Memory) GetPersona(ctx context.Context, id model.PersonaID) (*model.Persona, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.personas[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrPersonaNotFound, "failed to get persona", goerr.V("id", id))
	}
	return p.Clone(), nil
}

func (m *Memory) UpdatePersona(ctx context.Context, id model.PersonaID, patch map[string]any) (*model.Persona, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.personas[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrPersonaNotFound, "failed to update persona", goerr.V("id", id))
	}

	merged := p.Clone()
	merged.Merge(patch, m.now())
	m.personas[id] = merged
	return merged.Clone(), nil
}

func (m *Memory) ListPersonas(ctx context.Context) ([]*model.Persona, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	personas := make([]*model.Persona, 0, len(m.personas))
	for _, p := range m.personas {
		personas = append(personas, p.Clone())
	}
	sort.Slice(personas, func(i, j int) bool {
		if personas[i].CreatedAt.Equal(personas[j].CreatedAt) {
			return personas[i].ID < personas[j].ID
		}
		return personas[i].CreatedAt.After(personas[j].CreatedAt)
	})
	return personas, nil
}
