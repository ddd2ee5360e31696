package model_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tcard/pkg/model"
)

func TestDecodePersonaRequest(t *testing.T) {
	req, err := model.DecodePersonaRequest([]byte(`{
		"name": "Ann",
		"skills": ["cooking", "driving"],
		"age": 31,
		"generation_settings": {"model": "m1", "creativity": "0.8"}
	}`))
	gt.NoError(t, err)
	gt.A(t, req.Fields).Length(3)

	// sorted by key
	gt.Equal(t, req.Fields[0].Key, "age")
	gt.Equal(t, req.Fields[0].Text(), "31")
	gt.Equal(t, req.Fields[1].Key, "name")
	gt.False(t, req.Fields[1].IsList())
	gt.Equal(t, req.Fields[2].Key, "skills")
	gt.True(t, req.Fields[2].IsList())
	gt.Equal(t, req.Fields[2].Text(), "cooking, driving")

	gt.Equal(t, req.Settings.Model, "m1")
	gt.Equal(t, req.Settings.Temperature(), 0.8)
	gt.Equal(t, req.Settings.TopP(), model.DefaultRealism)
}

func TestDecodePersonaRequestSettingsAsString(t *testing.T) {
	req, err := model.DecodePersonaRequest([]byte(`{
		"name": "Ann",
		"generation_settings": "{\"api_key\": \"k\", \"realism\": 0.2}"
	}`))
	gt.NoError(t, err)
	gt.Equal(t, req.Settings.APIKey, "k")
	gt.Equal(t, req.Settings.TopP(), 0.2)
	gt.Equal(t, req.Settings.Temperature(), model.DefaultCreativity)
}

func TestDecodePersonaRequestInvalid(t *testing.T) {
	testCases := map[string]string{
		"malformed":     `{"name": `,
		"not an object": `["a"]`,
		"bad settings":  `{"generation_settings": {"creativity": "high"}}`,
	}

	for name, body := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := model.DecodePersonaRequest([]byte(body))
			gt.Error(t, err)
			gt.True(t, errors.Is(err, model.ErrInvalidInput))
		})
	}
}

func TestPersonaRequestFromForm(t *testing.T) {
	form := url.Values{
		"name":                {"Ann"},
		"skills[]":            {"cooking", "driving"},
		"generation_settings": {`{"model": "m2"}`},
	}

	req, err := model.PersonaRequestFromForm(form)
	gt.NoError(t, err)
	gt.A(t, req.Fields).Length(2)
	gt.Equal(t, req.Fields[0].Text(), "Ann")
	gt.Equal(t, req.Fields[1].Text(), "cooking, driving")
	gt.Equal(t, req.Settings.Model, "m2")

	echo := req.Echo()
	gt.Equal(t, echo["name"], any("Ann"))
	gt.Equal(t, echo["skills[]"], any([]any{"cooking", "driving"}))

	t.Run("empty settings", func(t *testing.T) {
		req, err := model.PersonaRequestFromForm(url.Values{
			"name":                {"Bob"},
			"generation_settings": {""},
		})
		gt.NoError(t, err)
		gt.A(t, req.Fields).Length(1)
		gt.Equal(t, req.Settings.Temperature(), model.DefaultCreativity)
	})

	t.Run("bad settings", func(t *testing.T) {
		_, err := model.PersonaRequestFromForm(url.Values{
			"generation_settings": {"{broken"},
		})
		gt.True(t, errors.Is(err, model.ErrInvalidInput))
	})
}
