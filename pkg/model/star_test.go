package model_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tcard/pkg/model"
)

func TestStarInputNested(t *testing.T) {
	var input model.StarInput
	gt.NoError(t, json.Unmarshal([]byte(`{
		"basic_info": {"company": "Acme", "position": "Engineer", "industry": ["Retail", "Logistics"]},
		"star_content": {"situation": "s", "task": "t", "action": "a", "result": "r"}
	}`), &input))

	gt.Equal(t, input.BasicInfo.Company, "Acme")
	gt.Equal(t, input.BasicInfo.Industry.String(), "Retail, Logistics")
	gt.Equal(t, input.StarContent.Actions, "a")
	gt.Equal(t, input.StarContent.Results, "r")
	gt.False(t, input.StarContent.IsEmpty())
}

func TestStarInputFlat(t *testing.T) {
	var input model.StarInput
	gt.NoError(t, json.Unmarshal([]byte(`{
		"company": "Acme", "position": "Engineer", "industry": "Retail",
		"situation": "s", "task": "t", "actions": "a", "results": "r",
		"generation_settings": {"model": "m1"}
	}`), &input))

	gt.Equal(t, input.BasicInfo.Position, "Engineer")
	gt.Equal(t, input.BasicInfo.Industry.String(), "Retail")
	gt.Equal(t, input.StarContent.Situation, "s")
	gt.Equal(t, input.Settings.Model, "m1")
}

func TestTailorInput(t *testing.T) {
	var input model.TailorInput
	gt.NoError(t, json.Unmarshal([]byte(`{
		"basic_info": {"company": "Acme", "position": "Engineer"},
		"star_content": {"situation": "s"},
		"targetPosition": {"title": "Staff Engineer", "description": "lead"}
	}`), &input))

	gt.Equal(t, input.BasicInfo.Company, "Acme")
	gt.Equal(t, input.TargetPosition.Title, "Staff Engineer")
	gt.Equal(t, input.TargetPosition.Description, "lead")
}

func TestRecommendationsNormalize(t *testing.T) {
	recs := model.Recommendations{
		Task: []model.Recommendation{{Title: "Be specific"}},
	}
	recs.Normalize()

	raw, err := json.Marshal(recs)
	gt.NoError(t, err)
	gt.S(t, string(raw)).Contains(`"situation":[]`)
	gt.S(t, string(raw)).Contains(`"examples":[]`)
}

func TestGenerationSettingsKnobs(t *testing.T) {
	var s model.GenerationSettings
	gt.NoError(t, json.Unmarshal([]byte(`{"creativity": 0.9, "realism": "0.3"}`), &s))
	gt.Equal(t, s.Temperature(), 0.9)
	gt.Equal(t, s.TopP(), 0.3)

	gt.NoError(t, json.Unmarshal([]byte(`""`), &s))
	gt.Equal(t, s.Temperature(), model.DefaultCreativity)

	gt.Error(t, json.Unmarshal([]byte(`{"creativity": true}`), &s))
}
