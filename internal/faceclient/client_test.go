package faceclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/compare", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://cdn/ref.jpg", body["image_url_1"])
		assert.Equal(t, "https://cdn/probe.jpg", body["image_url_2"])
		_, _ = w.Write([]byte(`{"similarity":0.91,"match":true,"threshold":0.5}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL+"/").Compare(context.Background(), "https://cdn/ref.jpg", "https://cdn/probe.jpg")
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.InDelta(t, 0.91, res.Similarity, 1e-9)
}

func TestCompareUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no face detected", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Compare(context.Background(), "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no face detected")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL).Health(context.Background()))
}
