package users

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/starterkit/server/internal/auth"
	"codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/internal/odm"
	"codeberg.org/starterkit/server/internal/storage"
	"codeberg.org/starterkit/server/storefront/users"
)

const (
	testSecret = "test-secret-key-for-testing"
	ownerID    = "65f000000000000000000001"
	otherID    = "65f000000000000000000002"
)

// user repository without a collection; requests under test never reach the store
func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", testSecret)

	model, err := odm.NewRegistry(nil).Register(users.Schema())
	require.NoError(t, err)

	store, err := storage.NewClient(storage.Config{Endpoint: "localhost:9000", Bucket: "uploads"})
	require.NoError(t, err)

	d := errors.NewDispatcher(errors.ModeDevelopment, nil)

	r := gin.New()
	r.Use(d.Recovery(io.Discard), d.Middleware())
	RegisterRoutes(r.Group("/api/v1"), users.NewRepository(model, nil), store, "admin", "secret")

	return r
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()

	token, err := auth.GenerateJWT(userID, "someone@example.com", role)
	require.NoError(t, err)

	return "Bearer " + token
}

func do(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func jsonRequest(method, path, body, authorization string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	return req
}

func responseField(t *testing.T, w *httptest.ResponseRecorder) any {
	t.Helper()

	var env struct {
		Response any `json:"response"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	return env.Response
}

func TestListUsers(t *testing.T) {
	r := newRouter(t)

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?role=root", nil)
	req.SetBasicAuth("admin", "secret")
	w = do(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUser_InvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/123", nil)
	req.SetBasicAuth("admin", "secret")

	w := do(newRouter(t), req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid _id format: 123", responseField(t, w))
}

func TestCreateUser(t *testing.T) {
	r := newRouter(t)

	w := do(r, jsonRequest(http.MethodPost, "/api/v1/users", `{}`, bearer(t, ownerID, auth.RoleUser)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, jsonRequest(http.MethodPost, "/api/v1/users", `{"name":"Ada","email":"nope","password":"secret1"}`, bearer(t, ownerID, auth.RoleAdmin)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, responseField(t, w), "Email")
}

func TestUpdateUser_Ownership(t *testing.T) {
	r := newRouter(t)

	w := do(r, jsonRequest(http.MethodPatch, "/api/v1/users/"+otherID, `{"name":"Grace"}`, bearer(t, ownerID, auth.RoleUser)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, jsonRequest(http.MethodPatch, "/api/v1/users/"+ownerID, `{"role":"admin"}`, bearer(t, ownerID, auth.RoleUser)))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateUser_SchemaValidation(t *testing.T) {
	r := newRouter(t)

	w := do(r, jsonRequest(http.MethodPatch, "/api/v1/users/"+ownerID, `{"name":"x"}`, bearer(t, ownerID, auth.RoleUser)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, responseField(t, w), "name")
}

func TestDeleteUser_Forbidden(t *testing.T) {
	// a secret left over in the environment must not leak into the token
	t.Setenv("JWT_SECRET", "stale-secret")

	r := newRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/"+otherID, nil)
	req.Header.Set("Authorization", bearer(t, ownerID, auth.RoleUser))

	w := do(r, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"statusCode":403`)
}

func multipartRequest(t *testing.T, path, filename string, size int) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)

		_, err = part.Write(bytes.Repeat([]byte{0x89}, size))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", bearer(t, ownerID, auth.RoleUser))

	return req
}

func TestUploadProfileImage_Rejections(t *testing.T) {
	r := newRouter(t)
	path := "/api/v1/users/" + ownerID + "/profile-image"

	tests := []struct {
		name     string
		filename string
		size     int
		message  string
	}{
		{"missing file", "", 0, "No file uploaded"},
		{"not an image", "notes.gif", 10, "Only image files are allowed"},
		{"too large", "photo.png", maxProfileImageSize + 1, "File too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, multipartRequest(t, path, tt.filename, tt.size))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, responseField(t, w).(map[string]any)["message"])
		})
	}
}
