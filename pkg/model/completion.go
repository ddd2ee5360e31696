package model

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultCreativity = 0.5
	DefaultRealism    = 0.5
)

// GenerationSettings are the per-request knobs sent by the web client
type GenerationSettings struct {
	APIKey        string   `json:"api_key,omitempty"`
	Model         string   `json:"model,omitempty"`
	Creativity    *float64 `json:"creativity,omitempty"`
	Realism       *float64 `json:"realism,omitempty"`
	DefaultPrompt string   `json:"default_prompt,omitempty"`
}

// UnmarshalJSON accepts the settings either as an object or as a string
// holding the JSON object (form submissions), and numeric knobs either as
// numbers or numeric strings.
func (x *GenerationSettings) UnmarshalJSON(data []byte) error {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		if strings.TrimSpace(encoded) == "" {
			*x = GenerationSettings{}
			return nil
		}
		data = []byte(encoded)
	}

	var raw struct {
		APIKey        string `json:"api_key"`
		Model         string `json:"model"`
		Creativity    any    `json:"creativity"`
		Realism       any    `json:"realism"`
		DefaultPrompt string `json:"default_prompt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return goerr.Wrap(err, "invalid generation_settings")
	}

	creativity, err := parseKnob(raw.Creativity)
	if err != nil {
		return goerr.Wrap(err, "invalid creativity")
	}
	realism, err := parseKnob(raw.Realism)
	if err != nil {
		return goerr.Wrap(err, "invalid realism")
	}

	*x = GenerationSettings{
		APIKey:        raw.APIKey,
		Model:         raw.Model,
		Creativity:    creativity,
		Realism:       realism,
		DefaultPrompt: raw.DefaultPrompt,
	}
	return nil
}

func parseKnob(v any) (*float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &t, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, goerr.Wrap(err, "not a number", goerr.V("value", t))
		}
		return &f, nil
	default:
		return nil, goerr.New("unsupported value type", goerr.V("value", v))
	}
}

// Temperature returns the sampling temperature derived from creativity
func (x GenerationSettings) Temperature() float64 {
	if x.Creativity == nil {
		return DefaultCreativity
	}
	return *x.Creativity
}

// TopP returns the nucleus sampling value derived from realism
func (x GenerationSettings) TopP() float64 {
	if x.Realism == nil {
		return DefaultRealism
	}
	return *x.Realism
}

// CompletionInput is a single request to a completion backend
type CompletionInput struct {
	Model       string
	System      string
	User        string
	Temperature float64
	TopP        float64
	MaxTokens   int

	// APIKey overrides the key configured for the backend when set
	APIKey string
}
