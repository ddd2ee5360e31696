package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/extract"
	"github.com/urfave/cli/v3"
)

type extractOutput struct {
	Strategy extract.Strategy `json:"strategy"`
	Result   any              `json:"result"`
}

func extractCommand() *cli.Command {
	var mode string

	return &cli.Command{
		Name:      "extract",
		Usage:     "Run the response extractor over a saved completion",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "mode",
				Aliases:     []string{"m"},
				Usage:       "Extraction mode (json, persona, sections, bullets)",
				Value:       "json",
				Destination: &mode,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var (
				data []byte
				err  error
			)
			if path := c.Args().First(); path != "" && path != "-" {
				data, err = os.ReadFile(path)
				if err != nil {
					return goerr.Wrap(err, "failed to read completion file", goerr.V("path", path))
				}
			} else {
				data, err = io.ReadAll(c.Root().Reader)
				if err != nil {
					return goerr.Wrap(err, "failed to read completion from stdin")
				}
			}
			text := string(data)

			var out extractOutput
			switch mode {
			case "json", "persona", "sections":
				var res *extract.Result
				var ok bool
				switch mode {
				case "json":
					res, ok = extract.JSON(text)
				case "persona":
					res, ok = extract.Persona(text)
				default:
					res, ok = extract.PersonaSections(text)
				}
				if !ok {
					return goerr.New("no JSON object could be extracted", goerr.V("mode", mode), goerr.V("length", len(text)))
				}
				out = extractOutput{Strategy: res.Strategy, Result: res.Data}

			case "bullets":
				res, err := extract.Bullets(text)
				if err != nil {
					return err
				}
				out = extractOutput{Strategy: res.Strategy, Result: res}

			default:
				return goerr.New("unknown extraction mode", goerr.V("mode", mode))
			}

			enc := json.NewEncoder(c.Root().Writer)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return goerr.Wrap(err, "failed to write result")
			}
			return nil
		},
	}
}
