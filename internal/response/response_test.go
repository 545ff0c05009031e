package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc, reqID string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", h)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if reqID != "" {
		req.Header.Set(HeaderRequestID, reqID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRequestIDPropagation(t *testing.T) {
	ok := func(c *gin.Context) { Success(c, http.StatusOK, nil) }

	w, body := serve(t, ok, "trace-123")
	assert.Equal(t, "trace-123", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "trace-123", body.Metadata.RequestID)

	for _, bad := range []string{"has space", "<script>", strings.Repeat("a", maxRequestIDLen+1)} {
		w, body = serve(t, ok, bad)
		assert.NotEqual(t, bad, body.Metadata.RequestID)
		assert.Len(t, body.Metadata.RequestID, 36)
		assert.Equal(t, body.Metadata.RequestID, w.Header().Get(HeaderRequestID))
	}
}

func TestFailEnvelope(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"teacherId": "teacherId is a required field"})
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, http.StatusBadRequest, body.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrValidation, body.Error.Code)
	assert.Equal(t, GetMessage(ErrValidation), body.Message)
	assert.Contains(t, body.Error.Fields, "teacherId")
	assert.NotEmpty(t, body.Metadata.Timestamp)
}

func TestAbortFailStopsChain(t *testing.T) {
	r := gin.New()
	reached := false
	r.GET("/", func(c *gin.Context) { AbortFail(c, http.StatusUnauthorized, ErrTokenRequired) }, func(c *gin.Context) { reached = true })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
}

func TestSuccessMessageDefaultsToStatusText(t *testing.T) {
	_, body := serve(t, func(c *gin.Context) { Success(c, http.StatusCreated, gin.H{"ok": true}) }, "")
	assert.True(t, body.Success)
	assert.Equal(t, "Created", body.Message)
	assert.Nil(t, body.Error)
}
