package extract

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/tcard/pkg/model"
)

// Persona recovers a persona object with JSON and guarantees that every
// recognized section key is present. Missing sections are set to an empty
// list; present values are left untouched.
func Persona(text string) (*Result, bool) {
	res, ok := JSON(text)
	if !ok {
		return nil, false
	}

	EnsurePersonaKeys(res.Data)
	return res, true
}

// EnsurePersonaKeys inserts an empty list for every recognized section that
// data does not have
func EnsurePersonaKeys(data map[string]any) {
	for _, key := range model.PersonaKeys {
		if _, ok := data[key]; !ok {
			data[key] = []any{}
		}
	}
}

var sectionTagPattern = regexp.MustCompile(`<\s*(/?)\s*(\w+)\s*>`)

// tag name (lower case) to persona key. An empty key marks the personal info
// block where Name and Summary live.
var sectionTags = map[string]string{
	"personalinfo":               "",
	"qualificationsandeducation": model.PersonaKeyQualificationsAndEducation,
	"skills":                     model.PersonaKeySkills,
	"goals":                      model.PersonaKeyGoals,
	"strengths":                  model.PersonaKeyStrengths,
	"lifeexperiences":            model.PersonaKeyLifeExperiences,
	"valueproposition":           model.PersonaKeyValueProposition,
	"nextsteps":                  model.PersonaKeyNextSteps,
}

// PersonaSections parses the tagged section format:
//
//	- Name: Jane Doe
//	- Summary: ...
//	<Skills>
//	- Welding
//	</Skills>
//
// It returns false when the text has neither a known section tag nor a Name
// or Summary line.
func PersonaSections(text string) (*Result, bool) {
	data := map[string]any{}
	found := false
	current := ""

	for _, line := range strings.Split(text, "\n") {
		for _, token := range sectionTokens(line) {
			if token.tag {
				found = true
				if token.closing {
					current = ""
					continue
				}
				current = token.key
				if current != "" {
					if _, ok := data[current]; !ok {
						data[current] = []any{}
					}
				}
				continue
			}

			item := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(token.text), "-• "))
			if item == "" {
				continue
			}

			if current == "" {
				if v, ok := cutLabel(item, "Name:"); ok {
					data[model.PersonaKeyName] = v
					found = true
				} else if v, ok := cutLabel(item, "Summary:"); ok {
					data[model.PersonaKeySummary] = v
					found = true
				}
				continue
			}

			data[current] = append(data[current].([]any), item)
		}
	}

	if !found {
		return nil, false
	}

	EnsurePersonaKeys(data)
	return &Result{Data: data, Strategy: StrategySections}, true
}

type sectionToken struct {
	text    string
	key     string
	tag     bool
	closing bool
}

// sectionTokens splits a line around known section tags, which may share the
// line with an item. Unknown tags are dropped.
func sectionTokens(line string) []sectionToken {
	var tokens []sectionToken
	last := 0
	for _, m := range sectionTagPattern.FindAllStringSubmatchIndex(line, -1) {
		if m[0] > last {
			tokens = append(tokens, sectionToken{text: line[last:m[0]]})
		}
		last = m[1]
		key, known := sectionTags[strings.ToLower(line[m[4]:m[5]])]
		if !known {
			continue
		}
		tokens = append(tokens, sectionToken{key: key, tag: true, closing: m[3] > m[2]})
	}
	if last < len(line) {
		tokens = append(tokens, sectionToken{text: line[last:]})
	}
	return tokens
}

func cutLabel(s, label string) (string, bool) {
	if len(s) < len(label) || !strings.EqualFold(s[:len(label)], label) {
		return "", false
	}
	return strings.TrimSpace(s[len(label):]), true
}
