package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/peoplehub/authservice/internal/middleware"
	"github.com/peoplehub/authservice/internal/tokens"
)

type Deps struct {
	AuthHandler *AuthHTTP
	Codec       *tokens.Codec
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMw := mw.NewRequireAuth(d.Codec)

	auth := e.Group("/api/v1/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)

	secured := auth.Group("", authMw.Middleware)
	secured.GET("/ping", d.AuthHandler.Ping)
}
