package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peoplehub/authservice/internal/audit"
	"github.com/peoplehub/authservice/internal/events"
	"github.com/peoplehub/authservice/internal/logging"
	"github.com/peoplehub/authservice/internal/service"
	"github.com/peoplehub/authservice/internal/transport"
)

// AuthHTTP exposes the authentication engine over echo. Event publishing
// and audit indexing are best-effort: a broker outage never fails a
// request.
type AuthHTTP struct {
	Svc      *service.AuthService
	Producer *events.Producer
	Audit    *audit.Recorder
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return h.mapError(c, err)
	}

	h.publish(ctx, events.Event{
		Type:      events.TypeAccountRegistered,
		AccountID: res.Account.ID,
		Username:  res.Account.Username,
	})

	return c.JSON(http.StatusOK, toAuthResponse(res))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountBlocked):
			h.publish(ctx, events.Event{Type: events.TypeAccountLocked, Username: req.Username})
		case errors.Is(err, service.ErrInvalidCredentials):
			h.publish(ctx, events.Event{Type: events.TypeLoginFailed, Username: req.Username})
		}
		return h.mapError(c, err)
	}

	h.publish(ctx, events.Event{
		Type:      events.TypeLoginSucceeded,
		AccountID: res.Account.ID,
		Username:  res.Account.Username,
	})

	return c.JSON(http.StatusOK, toAuthResponse(res))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	pair, err := h.Svc.RefreshTokens(ctx, authHeader)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, toTokenResponse(pair))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if err := h.Svc.Logout(ctx, authHeader); err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Ping is a secured no-op used by clients to probe whether their access
// token is still accepted.
func (h *AuthHTTP) Ping(c echo.Context) error {
	username, _ := c.Get("username").(string)
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "authentication ok",
		"username": username,
	})
}

// mapError translates engine outcomes to HTTP statuses. Storage faults are
// returned as an opaque internal error; the detail stays in the server log.
func (h *AuthHTTP) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "username or email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrAccountBlocked):
		return echo.NewHTTPError(http.StatusLocked, "account is blocked due to multiple failed login attempts")
	case errors.Is(err, service.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// publish ships the event to Kafka and the audit index, logging failures.
func (h *AuthHTTP) publish(ctx context.Context, event events.Event) {
	l := logging.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.Producer.Publish(ctx, fmt.Sprint(event.AccountID), event); err != nil {
		l.Error("event_publish_failed", "type", event.Type, "error", err)
	}
	if err := h.Audit.Record(ctx, event); err != nil {
		l.Error("audit_record_failed", "type", event.Type, "error", err)
	}
}

func toAuthResponse(res *service.AuthResult) transport.AuthResponse {
	return transport.AuthResponse{
		TokenResponse: toTokenResponse(res.Pair),
		User: transport.UserSummary{
			ID:       res.Account.ID,
			Username: res.Account.Username,
			Email:    res.Account.Email,
			Role:     res.Account.Role,
		},
		Message: res.Kind.Message(),
	}
}

func toTokenResponse(pair *service.TokenPair) transport.TokenResponse {
	return transport.TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		TokenType:             "Bearer",
		AccessTokenExpiresIn:  pair.AccessExpiresIn,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}
}
