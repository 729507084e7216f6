package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrvvsreddy/school-p1/internal/handlers"
	"github.com/mrvvsreddy/school-p1/internal/hash"
	"github.com/mrvvsreddy/school-p1/internal/models"
	"github.com/mrvvsreddy/school-p1/internal/mykafka"
	"github.com/mrvvsreddy/school-p1/internal/ratelimit"
	"github.com/mrvvsreddy/school-p1/internal/router"
	"github.com/mrvvsreddy/school-p1/internal/token"
)

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Tokens   *token.Service
	Guard    *ratelimit.Limiter
	Producer *mykafka.Producer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	producer, err := mykafka.NewProducer(nil)
	require.NoError(t, err)

	env := &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Tokens:   token.NewService([]byte("test-secret"), time.Hour),
		Guard:    ratelimit.New(),
		Producer: producer,
	}

	router.Register(env.E, router.Deps{
		DB:          db,
		Tokens:      env.Tokens,
		Guard:       env.Guard,
		Producer:    producer,
		NoticeIndex: "notices",
	})

	return env
}

func (env *testEnv) authHandler() *handlers.AuthHandler {
	return &handlers.AuthHandler{
		DB:       env.DB,
		Tokens:   env.Tokens,
		Guard:    env.Guard,
		Producer: env.Producer,
	}
}

func withToken(tok string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
}

func withIP(ip string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set(echo.HeaderXForwardedFor, ip)
	}
}

// doJSON drives a request through the full router so route middleware runs.
func (env *testEnv) doJSON(method, path string, body any, mods ...func(*http.Request)) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, m := range mods {
		m(req)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

// directRequest builds an echo context aimed at a bare handler, skipping
// the router and its middleware.
func (env *testEnv) directRequest(method, path string, body any, mods ...func(*http.Request)) (*httptest.ResponseRecorder, echo.Context) {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, m := range mods {
		m(req)
	}

	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func seedUser(t *testing.T, env *testEnv, username, password, role, status string) *models.AdminUser {
	t.Helper()

	hashed, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := &models.AdminUser{
		Username:     username,
		Email:        username + "@school.test",
		Name:         username,
		PasswordHash: hashed,
		Role:         role,
		Status:       status,
	}
	require.NoError(t, env.DB.Create(user).Error)
	return user
}

// loginAs seeds an account and returns a bearer token for it.
func loginAs(t *testing.T, env *testEnv, username, role string) string {
	t.Helper()

	seedUser(t, env, username, "password123", role, "active")

	rec := env.doJSON(http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	tok, _ := body["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}
