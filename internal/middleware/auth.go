package middleware

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"secondchance/internal/auth"
	apperrors "secondchance/internal/errors"
)

// ContextKey is the echo context key holding the verified *auth.Claims.
const ContextKey = "user"

// RequireAuth rejects requests without a token (401) or with a malformed,
// forged or expired one (403).
func RequireAuth(tokens *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(tokens, false))
}

// OptionalAuth attaches the caller's claims when a token is present and lets
// anonymous requests through. A bad token is still rejected with 403.
func OptionalAuth(tokens *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(tokens, true))
}

func jwtConfig(tokens *auth.JWTService, optional bool) echojwt.Config {
	return echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization,
		ParseTokenFunc: func(c echo.Context, header string) (interface{}, error) {
			token := auth.StripBearer(header)
			if token == "" {
				return nil, apperrors.ErrUnauthenticated
			}
			return tokens.Verify(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if isMissingToken(c, err) {
				if optional {
					return nil
				}
				return respond(apperrors.ErrUnauthenticated)
			}
			return respond(apperrors.ErrInvalidToken)
		},
		ContinueOnIgnoredError: optional,
	}
}

// isMissingToken separates "no credential" from "bad credential". The header
// is inspected directly so an empty "Bearer " counts as missing.
func isMissingToken(c echo.Context, err error) bool {
	if auth.StripBearer(c.Request().Header.Get(echo.HeaderAuthorization)) == "" {
		return true
	}
	return errors.Is(err, echojwt.ErrJWTMissing)
}

func respond(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// UserID returns the authenticated user id, if any.
func UserID(c echo.Context) (string, bool) {
	claims, ok := c.Get(ContextKey).(*auth.Claims)
	if !ok || claims == nil {
		return "", false
	}
	return claims.User.ID, true
}
