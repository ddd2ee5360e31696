package extract_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tcard/pkg/extract"
	"github.com/m-mizutani/tcard/pkg/model"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]any
		strategy extract.Strategy
	}{
		{
			name:     "valid json",
			input:    `{"name": "Jane", "skills": ["Go", "SQL"]}`,
			expected: map[string]any{"name": "Jane", "skills": []any{"Go", "SQL"}},
			strategy: extract.StrategyDirect,
		},
		{
			name:     "json surrounded by prose",
			input:    "Sure! Here is the persona:\n```json\n{\"name\": \"Jane\"}\n```\nLet me know.",
			expected: map[string]any{"name": "Jane"},
			strategy: extract.StrategyBounded,
		},
		{
			name:     "single quotes and bare keys",
			input:    "Result: {name: 'Jane', goals: ['Lead a team']}",
			expected: map[string]any{"name": "Jane", "goals": []any{"Lead a team"}},
			strategy: extract.StrategyRepaired,
		},
		{
			name:     "nested object",
			input:    `prefix {"a": {"b": [1, 2]}} suffix`,
			expected: map[string]any{"a": map[string]any{"b": []any{float64(1), float64(2)}}},
			strategy: extract.StrategyBounded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := extract.JSON(tt.input)
			gt.True(t, ok)
			gt.Equal(t, res.Data, tt.expected)
			gt.Equal(t, res.Strategy, tt.strategy)
		})
	}
}

func TestJSONFailure(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "prose only", input: "I could not generate a persona for this input."},
		{name: "closing brace before opening", input: "} nothing here {"},
		{name: "array is not an object", input: `["a", "b"]`},
		{name: "null", input: "null"},
		{name: "broken beyond repair", input: "{name: Jane, skills: [Go}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := extract.JSON(tt.input)
			gt.False(t, ok)
			gt.Nil(t, res)
		})
	}
}

func TestJSONDirectParseMatchesDecoder(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"a": 1}`,
		`{"bullets": ["- x", "- y"], "meta": {"n": null, "ok": true}}`,
		`  {"spaced": "value"}  `,
	}

	for _, input := range inputs {
		var expected map[string]any
		gt.NoError(t, json.Unmarshal([]byte(input), &expected))

		res, ok := extract.JSON(input)
		gt.True(t, ok)
		gt.Equal(t, res.Strategy, extract.StrategyDirect)
		gt.Equal(t, res.Data, expected)
	}
}

func TestJSONBoundedRecoversBody(t *testing.T) {
	bodies := []string{
		`"name": "Jane"`,
		`"skills": ["Go", "Rust"], "summary": "Engineer"`,
		`"nested": {"deep": {"deeper": [1, 2, 3]}}`,
	}
	wrappers := []struct {
		prefix string
		suffix string
	}{
		{"", ""},
		{"Here you go: ", ""},
		{"", "\n\nHope this helps!"},
		{"```json\n", "\n```"},
		{"Persona below.\n\n", "\n(end of output)"},
	}

	for _, body := range bodies {
		var expected map[string]any
		gt.NoError(t, json.Unmarshal([]byte("{"+body+"}"), &expected))

		for _, w := range wrappers {
			res, ok := extract.JSON(w.prefix + "{" + body + "}" + w.suffix)
			gt.True(t, ok)
			gt.Equal(t, res.Data, expected)
		}
	}
}

func TestJSONIdempotent(t *testing.T) {
	inputs := []string{
		`{"name": "Jane"}`,
		"text {\"name\": \"Jane\"} text",
		"{name: 'Jane'}",
		"no json",
	}

	for _, input := range inputs {
		first, ok1 := extract.JSON(input)
		second, ok2 := extract.JSON(input)
		gt.Equal(t, ok1, ok2)
		gt.Equal(t, first, second)
	}
}

func TestJSONKnownLimitations(t *testing.T) {
	t.Run("braces in trailing prose defeat the bounded slice", func(t *testing.T) {
		_, ok := extract.JSON(`{"name": "Jane"} and then {something else}`)
		gt.False(t, ok)
	})

	t.Run("key quoting touches values with colons", func(t *testing.T) {
		res, ok := extract.JSON(`{'time': 'at 10:30'}`)
		gt.False(t, ok)
		gt.Nil(t, res)
	})
}

func TestPersona(t *testing.T) {
	t.Run("missing keys default to empty lists", func(t *testing.T) {
		res, ok := extract.Persona(`{"name": "Jane", "summary": "Welder", "goals": ["Own a shop"]}`)
		gt.True(t, ok)

		for _, key := range model.PersonaKeys {
			_, found := res.Data[key]
			gt.True(t, found)
		}
		gt.Equal(t, res.Data[model.PersonaKeySkills], any([]any{}))
		gt.Equal(t, res.Data[model.PersonaKeyName], any("Jane"))
		gt.Equal(t, res.Data[model.PersonaKeyGoals], any([]any{"Own a shop"}))
	})

	t.Run("present values are not normalized", func(t *testing.T) {
		res, ok := extract.Persona(`{"skills": "Go, SQL", "extra": 1}`)
		gt.True(t, ok)
		gt.Equal(t, res.Data[model.PersonaKeySkills], any("Go, SQL"))
		gt.Equal(t, res.Data["extra"], any(float64(1)))
	})

	t.Run("every key present whatever the model returned", func(t *testing.T) {
		inputs := []string{
			`{}`,
			`{"skills": []}`,
			`Here: {"unknown": "x"}`,
			`{name: 'Jane', nextSteps: ['Apply']}`,
		}
		for _, input := range inputs {
			res, ok := extract.Persona(input)
			gt.True(t, ok)
			for _, key := range model.PersonaKeys {
				_, found := res.Data[key]
				gt.True(t, found)
			}
		}
	})

	t.Run("failure", func(t *testing.T) {
		res, ok := extract.Persona("Sorry, I can't do that.")
		gt.False(t, ok)
		gt.Nil(t, res)
	})
}

func TestPersonaSections(t *testing.T) {
	text := `Here is the persona.

- Name: Jane Doe
- Summary: Welder moving into inspection work
</PersonalInfo>

<QualificationsAndEducation>
- AWS Certified Welding Inspector
</QualificationsAndEducation>

<Skills>
- MIG welding
• Blueprint reading
</Skills>

<NextSteps>
- Apply to inspection roles
</NextSteps>
`

	res, ok := extract.PersonaSections(text)
	gt.True(t, ok)
	gt.Equal(t, res.Strategy, extract.StrategySections)
	gt.Equal(t, res.Data[model.PersonaKeyName], any("Jane Doe"))
	gt.Equal(t, res.Data[model.PersonaKeySummary], any("Welder moving into inspection work"))
	gt.Equal(t, res.Data[model.PersonaKeySkills], any([]any{"MIG welding", "Blueprint reading"}))
	gt.Equal(t, res.Data[model.PersonaKeyQualificationsAndEducation], any([]any{"AWS Certified Welding Inspector"}))
	gt.Equal(t, res.Data[model.PersonaKeyNextSteps], any([]any{"Apply to inspection roles"}))
	gt.Equal(t, res.Data[model.PersonaKeyGoals], any([]any{}))

	t.Run("tags sharing a line with items", func(t *testing.T) {
		res, ok := extract.PersonaSections("<PersonalInfo>- Name: Ann Lee</PersonalInfo>\n<Skills>- Welding\n- Rigging</Skills><Goals>- Certify</Goals>")
		gt.True(t, ok)
		gt.Equal(t, res.Data[model.PersonaKeyName], any("Ann Lee"))
		gt.Equal(t, res.Data[model.PersonaKeySkills], any([]any{"Welding", "Rigging"}))
		gt.Equal(t, res.Data[model.PersonaKeyGoals], any([]any{"Certify"}))
	})

	t.Run("unknown tags are dropped", func(t *testing.T) {
		res, ok := extract.PersonaSections("<Skills>\n<Extra>\n- Welding <b>\n</Skills>")
		gt.True(t, ok)
		gt.Equal(t, res.Data[model.PersonaKeySkills], any([]any{"Welding"}))
	})

	t.Run("no sections", func(t *testing.T) {
		_, ok := extract.PersonaSections("just some text\nwith lines")
		gt.False(t, ok)
	})
}
