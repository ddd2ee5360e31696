package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/m-mizutani/tcard/pkg/extract"
	"github.com/m-mizutani/tcard/pkg/model"
	"github.com/m-mizutani/tcard/pkg/usecase/persona"
	"github.com/m-mizutani/tcard/pkg/utils/logging"
)

// DefaultAllowOrigins are the web clients allowed to call the API
var DefaultAllowOrigins = []string{
	"https://tcard.vercel.app",
	"http://localhost:3000",
}

type PersonaUseCase interface {
	Generate(ctx context.Context, req *model.PersonaRequest) (*persona.Result, error)
	Get(ctx context.Context, id model.PersonaID) (*model.Persona, error)
	Update(ctx context.Context, id model.PersonaID, patch map[string]any) (*model.Persona, error)
	List(ctx context.Context) ([]*model.Persona, error)
}

type StarUseCase interface {
	Bullets(ctx context.Context, input *model.StarInput) (*extract.BulletResult, error)
	Tailor(ctx context.Context, input *model.TailorInput) (*extract.BulletResult, error)
	Recommendations(ctx context.Context, input *model.StarInput) (*model.Recommendations, error)
}

type Server struct {
	echo         *echo.Echo
	persona      PersonaUseCase
	star         StarUseCase
	allowOrigins []string
}

type Option func(*Server)

func WithAllowOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowOrigins = origins
	}
}

func New(personaUC PersonaUseCase, starUC StarUseCase, opts ...Option) *Server {
	s := &Server{
		echo:         echo.New(),
		persona:      personaUC,
		star:         starUC,
		allowOrigins: DefaultAllowOrigins,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = handleError
	s.echo.Use(
		requestLogger,
		middleware.Recover(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.allowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		}),
	)

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/", s.hello)
	s.echo.GET("/health", s.health)

	s.echo.POST("/generate_persona_stream", s.generatePersona)
	s.echo.GET("/get_persona/:id", s.getPersona)
	s.echo.PUT("/update_persona/:id", s.updatePersona)
	s.echo.GET("/get_all_personas", s.listPersonas)

	api := s.echo.Group("/api/star")
	api.POST("/bullets", s.bullets)
	api.POST("/tailor", s.tailor)
	api.POST("/recommendations", s.recommendations)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		logger := logging.Default().With(
			"request_id", uuid.NewString(),
			"method", req.Method,
			"path", req.URL.Path,
		)
		c.SetRequest(req.WithContext(logging.With(req.Context(), logger)))

		started := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}

		logger.Info("request",
			"status", c.Response().Status,
			"latency_ms", time.Since(started).Milliseconds())
		return nil
	}
}

func handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := map[string]any{"error": err.Error()}

	var extractErr *model.ExtractionError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &extractErr):
		body["error"] = extractErr.Error()
		body["raw_response"] = extractErr.Completion
	case errors.Is(err, model.ErrPersonaNotFound):
		status = http.StatusNotFound
		body["error"] = "Persona not found"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.As(err, &httpErr):
		status = httpErr.Code
		body["error"] = fmt.Sprint(httpErr.Message)
	}

	logger := logging.From(c.Request().Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	} else {
		logger.Info("request rejected", "status", status, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Error("failed to write error response", "error", err)
	}
}
