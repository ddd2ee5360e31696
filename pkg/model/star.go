package model

import (
	"encoding/json"
	"strings"
)

// Industry accepts either a single industry or a list of them. The web client
// sends both shapes depending on the page.
type Industry []string

func (x *Industry) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*x = nil
		} else {
			*x = Industry{one}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*x = many
	return nil
}

func (x Industry) String() string {
	return strings.Join(x, ", ")
}

type BasicInfo struct {
	Company  string   `json:"company"`
	Position string   `json:"position"`
	Industry Industry `json:"industry"`
}

// StarContent is the Situation/Task/Action/Result description of one
// experience.
type StarContent struct {
	Situation string `json:"situation"`
	Task      string `json:"task"`
	Actions   string `json:"actions"`
	Results   string `json:"results"`
}

func (x *StarContent) UnmarshalJSON(data []byte) error {
	var raw struct {
		Situation string `json:"situation"`
		Task      string `json:"task"`
		Actions   string `json:"actions"`
		Action    string `json:"action"`
		Results   string `json:"results"`
		Result    string `json:"result"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	x.Situation = raw.Situation
	x.Task = raw.Task
	x.Actions = raw.Actions
	if x.Actions == "" {
		x.Actions = raw.Action
	}
	x.Results = raw.Results
	if x.Results == "" {
		x.Results = raw.Result
	}
	return nil
}

// IsEmpty reports whether no STAR section has any text
func (x StarContent) IsEmpty() bool {
	return strings.TrimSpace(x.Situation+x.Task+x.Actions+x.Results) == ""
}

type StarInput struct {
	BasicInfo       BasicInfo          `json:"basic_info"`
	StarContent     StarContent        `json:"star_content"`
	Recommendations *Recommendations   `json:"recommendations,omitempty"`
	Settings        GenerationSettings `json:"generation_settings"`
}

// UnmarshalJSON accepts both the nested request shape and the flat one where
// basic info and STAR sections are sent at the top level.
func (x *StarInput) UnmarshalJSON(data []byte) error {
	type nested StarInput
	var n nested
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	if n.BasicInfo.Company == "" && n.BasicInfo.Position == "" && n.StarContent.IsEmpty() {
		var flatInfo BasicInfo
		var flatStar StarContent
		if err := json.Unmarshal(data, &flatInfo); err != nil {
			return err
		}
		if err := json.Unmarshal(data, &flatStar); err != nil {
			return err
		}
		n.BasicInfo = flatInfo
		n.StarContent = flatStar
	}

	*x = StarInput(n)
	return nil
}

// Position is a job posting that bullets can be tailored to
type Position struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
}

type TailorInput struct {
	StarInput
	TargetPosition Position `json:"targetPosition"`
}

func (x *TailorInput) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &x.StarInput); err != nil {
		return err
	}
	var target struct {
		TargetPosition Position `json:"targetPosition"`
	}
	if err := json.Unmarshal(data, &target); err != nil {
		return err
	}
	x.TargetPosition = target.TargetPosition
	return nil
}

type Example struct {
	Example1 string `json:"example_1"`
	Example2 string `json:"example_2"`
}

type Recommendation struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Examples    []Example `json:"examples"`
}

// Recommendations holds writing suggestions per STAR section
type Recommendations struct {
	Situation []Recommendation `json:"situation"`
	Task      []Recommendation `json:"task"`
	Action    []Recommendation `json:"action"`
	Result    []Recommendation `json:"result"`
}

// Normalize replaces nil sections with empty lists so that every section is
// rendered as an array.
func (x *Recommendations) Normalize() {
	for _, s := range []*[]Recommendation{&x.Situation, &x.Task, &x.Action, &x.Result} {
		if *s == nil {
			*s = []Recommendation{}
		}
		for i := range *s {
			if (*s)[i].Examples == nil {
				(*s)[i].Examples = []Example{}
			}
		}
	}
}
