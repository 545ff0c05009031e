package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/repository"
	"github.com/stemsi/attendance-backend/internal/response"
	"github.com/stemsi/attendance-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newGate(t *testing.T) (*gin.Engine, *service.TokenService, *clock) {
	t.Helper()
	mem := repository.NewMemory()
	require.NoError(t, mem.Teachers().Create(context.Background(),
		&model.Teacher{ID: "ref-1", TeacherID: "T1", Name: "Asha", Class: "5A"}))

	clk := &clock{t: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	tokens := service.NewTokenService("secret", time.Hour).WithClock(clk.Now)

	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	r.POST("/me", RequireTeacher(tokens, mem.Teachers()), func(c *gin.Context) {
		teacher := CurrentTeacher(c)
		response.Success(c, http.StatusOK, gin.H{"teacherId": teacher.TeacherID, "ref": GetClaims(c).Ref})
	})
	return r, tokens, clk
}

func call(r *gin.Engine, authorization string) (*httptest.ResponseRecorder, response.Response) {
	req := httptest.NewRequest(http.MethodPost, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRequireTeacherAcceptsUntilExpiry(t *testing.T) {
	r, tokens, clk := newGate(t)
	token, _, err := tokens.Issue("T1", "ref-1")
	require.NoError(t, err)

	w, body := call(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, map[string]interface{}{"teacherId": "T1", "ref": "ref-1"}, body.Data)

	clk.t = clk.t.Add(time.Hour + time.Second)
	w, body = call(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, response.ErrTokenExpired, body.Error.Code)
}

func TestRequireTeacherRejections(t *testing.T) {
	r, tokens, clk := newGate(t)

	foreign, _, err := service.NewTokenService("other", time.Hour).WithClock(clk.Now).Issue("T1", "ref-1")
	require.NoError(t, err)
	orphan, _, err := tokens.Issue("T9", "ref-gone")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		code   response.ErrCode
	}{
		{"missing header", "", http.StatusUnauthorized, response.ErrTokenRequired},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, response.ErrTokenRequired},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized, response.ErrTokenInvalid},
		{"foreign key", "Bearer " + foreign, http.StatusUnauthorized, response.ErrTokenInvalid},
		{"teacher gone", "Bearer " + orphan, http.StatusNotFound, response.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := call(r, tc.header)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.status, body.StatusCode)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestSourceIP(t *testing.T) {
	newCtx := func(remote, forwarded string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
		c.Request.RemoteAddr = remote
		if forwarded != "" {
			c.Request.Header.Set("X-Forwarded-For", forwarded)
		}
		return c
	}

	assert.Equal(t, "192.168.1.20", SourceIP(newCtx("192.168.1.20:51234", "")))
	assert.Equal(t, "203.0.113.9", SourceIP(newCtx("192.168.1.20:51234", "203.0.113.9")))
	// The raw header is used verbatim, including proxy chains.
	assert.Equal(t, "203.0.113.9, 10.0.0.1", SourceIP(newCtx("10.0.0.1:80", "203.0.113.9, 10.0.0.1")))
}
