package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/starterkit/server/internal/errors"
)

func TestJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/orders?x=1", nil)

	JSON(c, http.StatusCreated, Message{Message: "ok"})

	var body struct {
		Success    bool    `json:"success"`
		StatusCode int     `json:"statusCode"`
		Timestamp  string  `json:"timestamp"`
		Path       string  `json:"path"`
		Data       Message `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, http.StatusCreated, body.StatusCode)
	assert.Equal(t, "/api/v1/orders?x=1", body.Path)
	assert.Equal(t, "ok", body.Data.Message)

	_, err := time.Parse(errors.TimestampLayout, body.Timestamp)
	assert.NoError(t, err)
}
