package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrPersonaNotFound = goerr.New("persona not found")
)

type PersonaID string

// NewPersonaID generates a new unique PersonaID
func NewPersonaID() PersonaID {
	return PersonaID(uuid.New().String())
}

// Recognized persona sections. Every one of them is present in an extracted
// persona; sections the model omitted hold an empty list.
const (
	PersonaKeyName                       = "name"
	PersonaKeySummary                    = "summary"
	PersonaKeyGoals                      = "goals"
	PersonaKeySkills                     = "skills"
	PersonaKeyStrengths                  = "strengths"
	PersonaKeyQualificationsAndEducation = "qualificationsAndEducation"
	PersonaKeyLifeExperiences            = "lifeExperiences"
	PersonaKeyValueProposition           = "valueProposition"
	PersonaKeyNextSteps                  = "nextSteps"
)

// PersonaKeys lists the recognized sections in display order
var PersonaKeys = []string{
	PersonaKeyName,
	PersonaKeySummary,
	PersonaKeyGoals,
	PersonaKeySkills,
	PersonaKeyStrengths,
	PersonaKeyQualificationsAndEducation,
	PersonaKeyLifeExperiences,
	PersonaKeyValueProposition,
	PersonaKeyNextSteps,
}

// Keys written by the service next to the submitted and extracted fields
const (
	PersonaFieldGeneratedText = "generated_text"
	PersonaFieldTimestamp     = "timestamp"
)

// Persona is a generated profile card. Fields holds the submitted form
// values, the extracted sections, the raw completion and a timestamp.
type Persona struct {
	ID        PersonaID
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy whose Fields map can be modified independently at the
// top level.
func (p *Persona) Clone() *Persona {
	fields := make(map[string]any, len(p.Fields))
	for k, v := range p.Fields {
		fields[k] = v
	}
	return &Persona{
		ID:        p.ID,
		Fields:    fields,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Merge overwrites top-level fields with the values in patch
func (p *Persona) Merge(patch map[string]any, now time.Time) {
	if p.Fields == nil {
		p.Fields = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		p.Fields[k] = v
	}
	p.UpdatedAt = now
}

// View flattens the record into the JSON shape returned by the list endpoint
func (p *Persona) View() map[string]any {
	out := make(map[string]any, len(p.Fields)+1)
	for k, v := range p.Fields {
		out[k] = v
	}
	out["id"] = string(p.ID)
	return out
}

// PersonaFormat selects how the persona prompt asks the model to answer
type PersonaFormat string

const (
	PersonaFormatJSON     PersonaFormat = "json"
	PersonaFormatSections PersonaFormat = "sections"
)

// SubmittedField is one field of a persona request. Form keys containing "[]"
// and JSON arrays carry several values.
type SubmittedField struct {
	Key    string
	Values []string
	List   bool
}

func (f SubmittedField) IsList() bool {
	return f.List || strings.Contains(f.Key, "[]")
}

// Text renders the field for a prompt
func (f SubmittedField) Text() string {
	if f.IsList() {
		return strings.Join(f.Values, ", ")
	}
	if len(f.Values) == 0 {
		return ""
	}
	return f.Values[0]
}

// Value is the field as stored in the persona record. Lists are []any so the
// value has the same Go type as one read back from a document store.
func (f SubmittedField) Value() any {
	if f.IsList() {
		values := make([]any, len(f.Values))
		for i, v := range f.Values {
			values[i] = v
		}
		return values
	}
	if len(f.Values) == 0 {
		return ""
	}
	return f.Values[0]
}

// PersonaRequest is the input of persona generation
type PersonaRequest struct {
	Fields   []SubmittedField
	Settings GenerationSettings
}

// Echo returns the submitted fields keyed by name
func (x *PersonaRequest) Echo() map[string]any {
	out := make(map[string]any, len(x.Fields))
	for _, f := range x.Fields {
		out[f.Key] = f.Value()
	}
	return out
}
