package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tcard/pkg/model"
)

func (s *Server) hello(c echo.Context) error {
	return c.String(http.StatusOK, "Hello, World!")
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type generatePersonaResponse struct {
	Persona   string          `json:"persona"`
	PersonaID model.PersonaID `json:"persona_id"`
	Sections  map[string]any  `json:"sections"`
}

func (s *Server) generatePersona(c echo.Context) error {
	req, err := parsePersonaRequest(c)
	if err != nil {
		return err
	}

	result, err := s.persona.Generate(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &generatePersonaResponse{
		Persona:   result.Completion,
		PersonaID: result.Persona.ID,
		Sections:  result.Sections,
	})
}

func (s *Server) getPersona(c echo.Context) error {
	p, err := s.persona.Get(c.Request().Context(), model.PersonaID(c.Param("id")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Fields)
}

func (s *Server) updatePersona(c echo.Context) error {
	var patch map[string]any
	if err := decodeJSON(c, &patch); err != nil {
		return err
	}

	p, err := s.persona.Update(c.Request().Context(), model.PersonaID(c.Param("id")), patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Persona updated successfully",
		"persona": p.Fields,
	})
}

func (s *Server) listPersonas(c echo.Context) error {
	personas, err := s.persona.List(c.Request().Context())
	if err != nil {
		return err
	}

	views := make([]map[string]any, 0, len(personas))
	for _, p := range personas {
		views = append(views, p.View())
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) bullets(c echo.Context) error {
	var input model.StarInput
	if err := decodeJSON(c, &input); err != nil {
		return err
	}

	result, err := s.star.Bullets(c.Request().Context(), &input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) tailor(c echo.Context) error {
	var input model.TailorInput
	if err := decodeJSON(c, &input); err != nil {
		return err
	}

	result, err := s.star.Tailor(c.Request().Context(), &input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) recommendations(c echo.Context) error {
	var input model.StarInput
	if err := decodeJSON(c, &input); err != nil {
		return err
	}

	recs, err := s.star.Recommendations(c.Request().Context(), &input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"recommendations": recs})
}

func decodeJSON(c echo.Context, v any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return goerr.Wrap(err, "failed to read request body")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return goerr.Wrap(model.ErrInvalidInput, "request body is empty")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return goerr.Wrap(model.ErrInvalidInput, "malformed JSON body", goerr.V("reason", err.Error()))
	}
	return nil
}

// parsePersonaRequest reads the submitted fields from a JSON body or from form
// values
func parsePersonaRequest(c echo.Context) (*model.PersonaRequest, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read request body")
		}
		return model.DecodePersonaRequest(body)
	}

	form, err := c.FormParams()
	if err != nil {
		return nil, goerr.Wrap(model.ErrInvalidInput, "malformed form body", goerr.V("reason", err.Error()))
	}
	return model.PersonaRequestFromForm(form)
}
