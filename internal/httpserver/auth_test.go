package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/peoplehub/authservice/internal/httpserver"
	"github.com/peoplehub/authservice/internal/models"
	"github.com/peoplehub/authservice/internal/repo"
	"github.com/peoplehub/authservice/internal/service"
	"github.com/peoplehub/authservice/internal/tokens"
)

type testEnv struct {
	e   *echo.Echo
	db  *gorm.DB
	svc *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Person{}, &models.Account{}, &models.RefreshToken{}))

	store := repo.New(db)
	codec := tokens.NewCodec([]byte("test-jwt-secret"))
	svc := service.NewAuthService(store, store, codec)

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
		Codec:       codec,
	})

	return &testEnv{e: e, db: db, svc: svc}
}

func (env *testEnv) doJSON(t *testing.T, method, path string, payload any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func registerPayload() map[string]string {
	return map[string]string{
		"username": "alice",
		"password": "Passw0rd1",
		"email":    "a@b.com",
		"name":     "Alice",
		"surname":  "Doe",
	}
}

func TestRegisterHandler_Success(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", registerPayload(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TokenResponse struct {
			AccessToken           string `json:"accessToken"`
			RefreshToken          string `json:"refreshToken"`
			TokenType             string `json:"tokenType"`
			AccessTokenExpiresIn  int64  `json:"accessTokenExpiresIn"`
			RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn"`
		} `json:"tokenResponse"`
		User struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
			Email    string `json:"email"`
			Role     string `json:"role"`
		} `json:"user"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.TokenResponse.AccessToken)
	assert.NotEmpty(t, resp.TokenResponse.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenResponse.TokenType)
	assert.EqualValues(t, 900000, resp.TokenResponse.AccessTokenExpiresIn)
	assert.EqualValues(t, 604800000, resp.TokenResponse.RefreshTokenExpiresIn)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "a@b.com", resp.User.Email)
	assert.Equal(t, "USER", resp.User.Role)
	assert.NotZero(t, resp.User.ID)
	assert.Equal(t, "Registration successful", resp.Message)
}

func TestRegisterHandler_Duplicate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", registerPayload(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/api/v1/auth/register", registerPayload(), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterHandler_WeakPassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	payload := registerPayload()
	payload["password"] = "abc"

	rec := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", payload, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandler(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", registerPayload(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": "alice", "password": "Passw0rd1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp.Message)

	rec = env.doJSON(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": "alice", "password": "wrong-password1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": "nobody", "password": "Passw0rd1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginHandler_BlockedAccountIsLocked(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", registerPayload(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, env.db.Model(&models.Account{}).
		Where("username = ?", "alice").UpdateColumn("blocked", true).Error)

	rec = env.doJSON(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": "alice", "password": "Passw0rd1"}, nil)
	assert.Equal(t, http.StatusLocked, rec.Code)
}

func TestRefreshHandler(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", registerPayload(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var registered struct {
		TokenResponse struct {
			RefreshToken string `json:"refreshToken"`
		} `json:"tokenResponse"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))

	header := http.Header{}
	header.Set(echo.HeaderAuthorization, "Bearer "+registered.TokenResponse.RefreshToken)
	rec = env.doJSON(t, http.MethodPost, "/api/v1/auth/refresh", nil, header)
	require.Equal(t, http.StatusOK, rec.Code)

	var refreshed struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		TokenType    string `json:"tokenType"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEmpty(t, refreshed.RefreshToken)
	assert.Equal(t, "Bearer", refreshed.TokenType)
	assert.NotEqual(t, registered.TokenResponse.RefreshToken, refreshed.RefreshToken)
}

func TestRefreshHandler_InvalidToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/auth/refresh", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	header := http.Header{}
	header.Set(echo.HeaderAuthorization, "Bearer not-a-jwt")
	rec = env.doJSON(t, http.MethodPost, "/api/v1/auth/refresh", nil, header)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPingHandler_RequiresAccessToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", registerPayload(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var registered struct {
		TokenResponse struct {
			AccessToken string `json:"accessToken"`
		} `json:"tokenResponse"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))

	rec = env.doJSON(t, http.MethodGet, "/api/v1/auth/ping", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	header := http.Header{}
	header.Set(echo.HeaderAuthorization, "Bearer "+registered.TokenResponse.AccessToken)
	rec = env.doJSON(t, http.MethodGet, "/api/v1/auth/ping", nil, header)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
}

func TestLogoutHandler(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", registerPayload(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var registered struct {
		TokenResponse struct {
			AccessToken string `json:"accessToken"`
		} `json:"tokenResponse"`
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))

	header := http.Header{}
	header.Set(echo.HeaderAuthorization, "Bearer "+registered.TokenResponse.AccessToken)
	rec = env.doJSON(t, http.MethodPost, "/api/v1/auth/logout", nil, header)
	require.Equal(t, http.StatusOK, rec.Code)

	var active int64
	require.NoError(t, env.db.Model(&models.RefreshToken{}).
		Where("account_id = ? AND revoked = ?", registered.User.ID, false).
		Count(&active).Error)
	assert.Zero(t, active)
}
