package prompt

import (
	"bytes"
	"embed"
	"os"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/model"
	"gopkg.in/yaml.v3"
)

//go:embed template/*.md
var templateFS embed.FS

type Name string

const (
	PersonaJSON     Name = "persona_json"
	PersonaSections Name = "persona_sections"
	Bullets         Name = "bullets"
	Tailor          Name = "tailor"
	Recommendations Name = "recommendations"
)

var names = []Name{PersonaJSON, PersonaSections, Bullets, Tailor, Recommendations}

// Prompt is a system and user prompt pair for one completion
type Prompt struct {
	System string
	User   string
}

type pair struct {
	system *template.Template
	user   *template.Template
}

// Builder renders prompts from the embedded templates. Templates can be
// replaced with Override.
type Builder struct {
	templates map[Name]*pair
}

// New creates a Builder with the embedded templates
func New() *Builder {
	b := &Builder{templates: make(map[Name]*pair, len(names))}
	for _, name := range names {
		b.templates[name] = &pair{
			system: template.Must(template.New(string(name) + ".system").Parse(mustRead(name, "system"))),
			user:   template.Must(template.New(string(name) + ".user").Parse(mustRead(name, "user"))),
		}
	}
	return b
}

func mustRead(name Name, part string) string {
	raw, err := templateFS.ReadFile("template/" + string(name) + "." + part + ".md")
	if err != nil {
		panic(err)
	}
	return string(raw)
}

// LoadFile creates a Builder and applies the overrides in a YAML file
func LoadFile(path string) (*Builder, error) {
	b := New()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read prompt file", goerr.V("path", path))
	}
	if err := b.Override(data); err != nil {
		return nil, goerr.Wrap(err, "failed to apply prompt file", goerr.V("path", path))
	}

	return b, nil
}

type overrideEntry struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// Override replaces templates with the ones in a YAML document keyed by
// prompt name:
//
//	bullets:
//	  system: |
//	    You write resume bullets...
//
// Omitted parts keep their current template.
func (b *Builder) Override(data []byte) error {
	var entries map[Name]overrideEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return goerr.Wrap(err, "failed to parse prompt overrides")
	}

	for name, entry := range entries {
		p, ok := b.templates[name]
		if !ok {
			return goerr.New("unknown prompt name", goerr.V("name", name))
		}

		next := *p
		if entry.System != "" {
			tmpl, err := template.New(string(name) + ".system").Parse(entry.System)
			if err != nil {
				return goerr.Wrap(err, "invalid system template", goerr.V("name", name))
			}
			next.system = tmpl
		}
		if entry.User != "" {
			tmpl, err := template.New(string(name) + ".user").Parse(entry.User)
			if err != nil {
				return goerr.Wrap(err, "invalid user template", goerr.V("name", name))
			}
			next.user = tmpl
		}
		b.templates[name] = &next
	}

	return nil
}

func (b *Builder) render(name Name, data any) (*Prompt, error) {
	p := b.templates[name]

	var system, user bytes.Buffer
	if err := p.system.Execute(&system, data); err != nil {
		return nil, goerr.Wrap(err, "failed to execute system prompt template", goerr.V("name", name))
	}
	if err := p.user.Execute(&user, data); err != nil {
		return nil, goerr.Wrap(err, "failed to execute user prompt template", goerr.V("name", name))
	}

	return &Prompt{System: system.String(), User: user.String()}, nil
}

// Persona renders the profile card prompt in the requested answer format
func (b *Builder) Persona(req *model.PersonaRequest, format model.PersonaFormat) (*Prompt, error) {
	name := PersonaJSON
	if format == model.PersonaFormatSections {
		name = PersonaSections
	}

	return b.render(name, map[string]any{
		"Fields":       req.Fields,
		"CustomPrompt": req.Settings.DefaultPrompt,
	})
}

func (b *Builder) Bullets(input *model.StarInput) (*Prompt, error) {
	return b.render(Bullets, input)
}

func (b *Builder) Tailor(input *model.TailorInput) (*Prompt, error) {
	return b.render(Tailor, input)
}

func (b *Builder) Recommendations(input *model.StarInput) (*Prompt, error) {
	return b.render(Recommendations, input)
}
