package model

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

const settingsField = "generation_settings"

// DecodePersonaRequest reads a JSON object of submitted fields. The
// generation_settings member may be an object or a string holding one.
func DecodePersonaRequest(data []byte) (*PersonaRequest, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, "malformed JSON body", goerr.V("reason", err.Error()))
	}

	req := &PersonaRequest{}
	for key, raw := range body {
		if key == settingsField {
			if err := json.Unmarshal(raw, &req.Settings); err != nil {
				return nil, goerr.Wrap(ErrInvalidInput, "invalid generation_settings", goerr.V("reason", err.Error()))
			}
			continue
		}
		values, isList := jsonValues(raw)
		req.Fields = append(req.Fields, SubmittedField{Key: key, Values: values, List: isList})
	}

	req.sortFields()
	return req, nil
}

// PersonaRequestFromForm reads submitted fields from form values
func PersonaRequestFromForm(form url.Values) (*PersonaRequest, error) {
	req := &PersonaRequest{}
	for key, values := range form {
		if key == settingsField {
			if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
				continue
			}
			if err := json.Unmarshal([]byte(values[0]), &req.Settings); err != nil {
				return nil, goerr.Wrap(ErrInvalidInput, "invalid generation_settings", goerr.V("reason", err.Error()))
			}
			continue
		}
		req.Fields = append(req.Fields, SubmittedField{Key: key, Values: values})
	}

	req.sortFields()
	return req, nil
}

// Form values and JSON members are unordered. Sorting keeps prompts stable.
func (x *PersonaRequest) sortFields() {
	sort.Slice(x.Fields, func(i, j int) bool {
		return x.Fields[i].Key < x.Fields[j].Key
	})
}

func jsonValues(raw json.RawMessage) ([]string, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return []string{string(raw)}, false
	}

	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		values := make([]string, 0, len(t))
		for _, item := range t {
			values = append(values, jsonText(item))
		}
		return values, true
	default:
		return []string{jsonText(t)}, false
	}
}

func jsonText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any, []any:
		raw, _ := json.Marshal(t)
		return string(raw)
	default:
		return fmt.Sprint(t)
	}
}
