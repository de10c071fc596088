package handlers

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/repositories/agent"
	"github.com/Ramsey-B/fern/pkg/models"
)

// RequireParam returns the named path parameter or a 400.
func RequireParam(c echo.Context, param string) (string, error) {
	v := c.Param(param)
	if v == "" {
		return "", httperror.NewHTTPError(http.StatusBadRequest, "missing "+param)
	}
	return v, nil
}

// RequireAgent loads the agent addressed by the :id path parameter or
// returns a 404.
func RequireAgent(ctx context.Context, c echo.Context, agents agent.AgentRepository) (*models.Agent, error) {
	id, err := RequireParam(c, "id")
	if err != nil {
		return nil, err
	}

	ag, err := agents.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ag == nil {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "agent %s not found", id)
	}
	return ag, nil
}

// SuccessResponse returns a 200 OK with data
func SuccessResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// CreatedResponse returns a 201 Created with data
func CreatedResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, data)
}

// BadRequest returns a 400 Bad Request error
func BadRequest(message string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, message)
}

// NotFound returns a 404 Not Found error
func NotFound(message string) error {
	return httperror.NewHTTPError(http.StatusNotFound, message)
}
