package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/model"
	"github.com/m-mizutani/tcard/pkg/server"
	"github.com/m-mizutani/tcard/pkg/usecase/persona"
	"github.com/m-mizutani/tcard/pkg/usecase/star"
	"github.com/m-mizutani/tcard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	var (
		cfg           config
		addr          string
		allowOrigins  []string
		personaFormat string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Aliases:     []string{"a"},
			Usage:       "Listen address. $PORT is used when this is not set",
			Value:       ":5000",
			Sources:     cli.EnvVars("TCARD_ADDR"),
			Destination: &addr,
		},
		&cli.StringSliceFlag{
			Name:        "allow-origin",
			Usage:       "Origins allowed by CORS",
			Value:       server.DefaultAllowOrigins,
			Sources:     cli.EnvVars("TCARD_ALLOW_ORIGINS"),
			Destination: &allowOrigins,
		},
		&cli.StringFlag{
			Name:        "persona-format",
			Usage:       "Answer format requested for personas (json, sections)",
			Value:       string(model.PersonaFormatJSON),
			Sources:     cli.EnvVars("TCARD_PERSONA_FORMAT"),
			Destination: &personaFormat,
		},
	}
	flags = append(flags, logFlags(&cfg)...)
	flags = append(flags, repositoryFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, sinkFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setupLogger(c.Root().ErrWriter); err != nil {
				return err
			}

			format, err := parsePersonaFormat(personaFormat)
			if err != nil {
				return err
			}

			if !c.IsSet("addr") {
				if port := os.Getenv("PORT"); port != "" {
					addr = ":" + port
				}
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

			personaUC := persona.New(repo, completion,
				persona.WithPrompts(prompts),
				persona.WithFormat(format),
				persona.WithRecorder(recorder),
			)
			starUC := star.New(completion,
				star.WithPrompts(prompts),
				star.WithRecorder(recorder),
			)
			srv := server.New(personaUC, starUC, server.WithAllowOrigins(allowOrigins))

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("starting server",
					"addr", addr,
					"provider", cfg.llmProvider,
					"model", completion.DefaultModel(),
					"repository", cfg.repository,
					"persona_format", format)
				errCh <- srv.Start(addr)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return goerr.Wrap(err, "server stopped", goerr.V("addr", addr))
				}
				return nil
			case <-ctx.Done():
			}

			logging.Default().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server")
			}
			return nil
		},
	}
}
