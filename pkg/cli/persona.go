package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/model"
	"github.com/m-mizutani/tcard/pkg/usecase/persona"
	"github.com/urfave/cli/v3"
)

func personaCommand() *cli.Command {
	var (
		cfg           config
		inputPath     string
		personaFormat string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to JSON file containing the submitted fields",
			Sources:     cli.EnvVars("TCARD_INPUT"),
			Destination: &inputPath,
		},
		&cli.StringFlag{
			Name:        "persona-format",
			Usage:       "Answer format requested for personas (json, sections)",
			Value:       string(model.PersonaFormatJSON),
			Destination: &personaFormat,
		},
	}
	flags = append(flags, logFlags(&cfg)...)
	flags = append(flags, repositoryFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, sinkFlags(&cfg)...)

	return &cli.Command{
		Name:  "persona",
		Usage: "Generate a persona from a JSON file and print the record",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setupLogger(c.Root().ErrWriter); err != nil {
				return err
			}
			if inputPath == "" {
				return goerr.New("input file path is required")
			}
			format, err := parsePersonaFormat(personaFormat)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(inputPath)
			if err != nil {
				return goerr.Wrap(err, "failed to read input file", goerr.V("path", inputPath))
			}
			req, err := model.DecodePersonaRequest(data)
			if err != nil {
				return goerr.Wrap(err, "failed to parse input file", goerr.V("path", inputPath))
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			completion, err := cfg.newCompletion()
			if err != nil {
				return err
			}
			prompts, err := cfg.newPrompts()
			if err != nil {
				return err
			}
			recorder, err := cfg.newRecorder(ctx)
			if err != nil {
				return err
			}

			uc := persona.New(repo, completion,
				persona.WithPrompts(prompts),
				persona.WithFormat(format),
				persona.WithRecorder(recorder),
			)

			result, err := uc.Generate(ctx, req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.Root().Writer)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result.Persona.View()); err != nil {
				return goerr.Wrap(err, "failed to write persona")
			}
			return nil
		},
	}
}
