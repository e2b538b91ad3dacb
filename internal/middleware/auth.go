package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/peoplehub/authservice/internal/tokens"
)

// RequireAuth guards routes behind a valid, unexpired access token sent as
// `Authorization: Bearer <token>`. The subject is placed in the echo
// context under "username".
type RequireAuth struct {
	Codec *tokens.Codec
}

func NewRequireAuth(codec *tokens.Codec) *RequireAuth {
	return &RequireAuth{Codec: codec}
}

func (m *RequireAuth) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := tokens.ExtractBearer(header)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}

		claims, err := m.Codec.Verify(token)
		if err != nil || m.Codec.IsExpired(token) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set("username", claims.Subject)
		return next(c)
	}
}
