package cli

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

type runConfig struct {
	reader    io.Reader
	writer    io.Writer
	errWriter io.Writer
}

type Option func(*runConfig)

// WithReader replaces stdin for commands that read input
func WithReader(r io.Reader) Option {
	return func(cfg *runConfig) {
		cfg.reader = r
	}
}

// WithWriter replaces stdout
func WithWriter(w io.Writer) Option {
	return func(cfg *runConfig) {
		cfg.writer = w
	}
}

// WithErrWriter replaces stderr, where logs and usage errors are written
func WithErrWriter(w io.Writer) Option {
	return func(cfg *runConfig) {
		cfg.errWriter = w
	}
}

func Run(ctx context.Context, argv []string, opts ...Option) *Error {
	rc := &runConfig{
		reader:    os.Stdin,
		writer:    os.Stdout,
		errWriter: os.Stderr,
	}
	for _, opt := range opts {
		opt(rc)
	}

	cmd := &cli.Command{
		Name:      "tcard",
		Usage:     "Career profile card and resume bullet service",
		Reader:    rc.reader,
		Writer:    rc.writer,
		ErrWriter: rc.errWriter,
		Commands: []*cli.Command{
			serveCommand(),
			extractCommand(),
			personaCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
