package cli

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/adapter"
	"github.com/m-mizutani/tcard/pkg/model"
	"github.com/m-mizutani/tcard/pkg/prompt"
	"github.com/m-mizutani/tcard/pkg/repository"
	"github.com/m-mizutani/tcard/pkg/usecase/record"
	"github.com/m-mizutani/tcard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Logging
	logLevel  string
	logFormat string

	// Repository
	repository string
	project    string
	database   string

	// Adapters
	llmProvider     string
	model           string
	anthropicAPIKey string
	anthropicURL    string
	geminiAPIKey    string
	geminiProject   string
	geminiLocation  string

	// Sinks
	archiveBucket   string
	bigqueryDataset string
	bigqueryTable   string

	// Prompts
	promptFile string
}

func logFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Aliases:     []string{"l"},
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("TCARD_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       "console",
			Sources:     cli.EnvVars("TCARD_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
	}
}

// repositoryFlags returns flags for persona storage
func repositoryFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository",
			Usage:       "Persona store (memory, firestore)",
			Value:       "memory",
			Sources:     cli.EnvVars("TCARD_REPOSITORY"),
			Destination: &cfg.repository,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
	}
}

// llmFlags returns flags for LLM-related configuration
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "Completion provider (claude, gemini)",
			Value:       "claude",
			Sources:     cli.EnvVars("TCARD_LLM_PROVIDER"),
			Destination: &cfg.llmProvider,
		},
		&cli.StringFlag{
			Name:        "model",
			Usage:       "Default model name",
			Sources:     cli.EnvVars("TCARD_MODEL"),
			Destination: &cfg.model,
		},
		&cli.StringFlag{
			Name:        "anthropic-api-key",
			Usage:       "Anthropic API key",
			Sources:     cli.EnvVars("ANTHROPIC_API_KEY"),
			Destination: &cfg.anthropicAPIKey,
		},
		&cli.StringFlag{
			Name:        "anthropic-base-url",
			Usage:       "Anthropic API endpoint, e.g. a proxy",
			Sources:     cli.EnvVars("ANTHROPIC_BASE_URL"),
			Destination: &cfg.anthropicURL,
		},
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key. Vertex AI is used when empty",
			Sources:     cli.EnvVars("GEMINI_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini on Vertex AI",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini on Vertex AI",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "prompt-file",
			Usage:       "YAML file overriding prompt templates",
			Sources:     cli.EnvVars("TCARD_PROMPT_FILE"),
			Destination: &cfg.promptFile,
		},
	}
}

// sinkFlags returns flags for the optional completion archive and event table
func sinkFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket to archive raw completions",
			Sources:     cli.EnvVars("TCARD_ARCHIVE_BUCKET"),
			Destination: &cfg.archiveBucket,
		},
		&cli.StringFlag{
			Name:        "bigquery-dataset",
			Usage:       "BigQuery dataset for extraction events",
			Sources:     cli.EnvVars("TCARD_BIGQUERY_DATASET"),
			Destination: &cfg.bigqueryDataset,
		},
		&cli.StringFlag{
			Name:        "bigquery-table",
			Usage:       "BigQuery table for extraction events",
			Value:       "extraction_events",
			Sources:     cli.EnvVars("TCARD_BIGQUERY_TABLE"),
			Destination: &cfg.bigqueryTable,
		},
	}
}

// setupLogger configures the default logger from flags
func (cfg *config) setupLogger(w io.Writer) error {
	if _, err := logging.ParseLevel(cfg.logLevel); err != nil {
		return err
	}
	format, err := logging.ParseFormat(cfg.logFormat)
	if err != nil {
		return err
	}

	logging.SetDefault(logging.New(cfg.logLevel, w, logging.WithFormat(format)))
	return nil
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	switch cfg.repository {
	case "memory", "":
		return repository.NewMemory(), nil

	case "firestore":
		if cfg.project == "" {
			return nil, goerr.New("project is required for firestore repository")
		}
		if cfg.database == "" {
			return nil, goerr.New("database is required for firestore repository")
		}
		repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create repository")
		}
		return repo, nil

	default:
		return nil, goerr.New("unknown repository", goerr.V("repository", cfg.repository))
	}
}

// newCompletion creates the completion backend. API keys are not checked
// here; a request without one fails when it is made.
func (cfg *config) newCompletion() (adapter.Completion, error) {
	switch cfg.llmProvider {
	case "claude", "":
		var opts []adapter.ClaudeOption
		if cfg.model != "" {
			opts = append(opts, adapter.WithClaudeModel(cfg.model))
		}
		if cfg.anthropicURL != "" {
			opts = append(opts, adapter.WithClaudeBaseURL(cfg.anthropicURL))
		}
		return adapter.NewClaude(cfg.anthropicAPIKey, opts...), nil

	case "gemini":
		opts := []adapter.GeminiOption{
			adapter.WithGeminiAPIKey(cfg.geminiAPIKey),
			adapter.WithGeminiVertex(cfg.geminiProject, cfg.geminiLocation),
		}
		if cfg.model != "" {
			opts = append(opts, adapter.WithGeminiModel(cfg.model))
		}
		return adapter.NewGemini(opts...), nil

	default:
		return nil, goerr.New("unknown llm provider", goerr.V("provider", cfg.llmProvider))
	}
}

// newPrompts loads the prompt templates
func (cfg *config) newPrompts() (*prompt.Builder, error) {
	if cfg.promptFile == "" {
		return prompt.New(), nil
	}
	return prompt.LoadFile(cfg.promptFile)
}

// newRecorder creates the extraction recorder with the configured sinks
func (cfg *config) newRecorder(ctx context.Context) (*record.Recorder, error) {
	var opts []record.Option

	if cfg.archiveBucket != "" {
		archive, err := adapter.NewStorageArchive(ctx, cfg.archiveBucket)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create archive")
		}
		opts = append(opts, record.WithArchive(archive))
	}

	if cfg.bigqueryDataset != "" {
		if cfg.project == "" {
			return nil, goerr.New("project is required for bigquery event sink")
		}
		sink, err := adapter.NewBigQuerySink(ctx, cfg.project, cfg.bigqueryDataset, cfg.bigqueryTable)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create event sink")
		}
		opts = append(opts, record.WithEventSink(sink))
	}

	return record.New(opts...), nil
}

func parsePersonaFormat(s string) (model.PersonaFormat, error) {
	switch format := model.PersonaFormat(s); format {
	case model.PersonaFormatJSON, model.PersonaFormatSections:
		return format, nil
	default:
		return "", goerr.New("invalid persona format", goerr.V("format", s))
	}
}
