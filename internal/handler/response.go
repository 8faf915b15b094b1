package handler

import (
	"github.com/labstack/echo/v4"

	apperrors "secondchance/internal/errors"
)

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError converts a service error into the HTTP error echo renders.
func respondError(err error) *echo.HTTPError {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func bindAndValidate(c echo.Context, req interface{}) *echo.HTTPError {
	if err := c.Bind(req); err != nil {
		return respondError(apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return respondError(apperrors.Validation("%s", err.Error()))
	}
	return nil
}
