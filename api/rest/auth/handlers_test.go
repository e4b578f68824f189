package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/internal/odm"
	"codeberg.org/starterkit/server/storefront/users"
)

// user repository without a collection; requests under test never reach the store
func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	model, err := odm.NewRegistry(nil).Register(users.Schema())
	require.NoError(t, err)

	d := errors.NewDispatcher(errors.ModeDevelopment, nil)

	r := gin.New()
	r.Use(d.Recovery(io.Discard), d.Middleware())
	RegisterRoutes(r.Group("/api/v1"), users.NewRepository(model, nil), "admin", "secret")

	return r
}

func post(r *gin.Engine, path, body string, withAuth bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if withAuth {
		req.SetBasicAuth("admin", "secret")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var env struct {
		Response map[string]any `json:"response"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	return env.Response
}

func TestLogin_RequiresBasicAuth(t *testing.T) {
	w := post(newRouter(t), "/api/v1/auth/login", `{"email":"a@b.co","password":"x"}`, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_EmptyBody(t *testing.T) {
	w := post(newRouter(t), "/api/v1/auth/login", "", true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "request body is required", decodeResponse(t, w)["message"])
}

func TestLogin_BindingValidation(t *testing.T) {
	w := post(newRouter(t), "/api/v1/auth/login", `{"email":"nope","password":"x"}`, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	fields := decodeResponse(t, w)
	require.Contains(t, fields, "Email")
	assert.Equal(t, "email", fields["Email"].(map[string]any)["kind"])
}

func TestLogin_MalformedJSON(t *testing.T) {
	r := newRouter(t)

	w := post(r, "/api/v1/auth/login", `{"email" "x"}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/api/v1/auth/login", `{"email":`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "malformed request body", decodeResponse(t, w)["message"])
}

func TestRegister_SchemaValidation(t *testing.T) {
	w := post(newRouter(t), "/api/v1/auth/register", `{"name":"x","email":"ada@example.com","password":"secret1","address":{"zip":"nope"}}`, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	fields := decodeResponse(t, w)
	assert.Contains(t, fields, "name")
	assert.Equal(t, "Invalid ZIP code", fields["address.zip"].(map[string]any)["message"])
}
