package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
)

func TestExplain_SendsGenerateRequest(t *testing.T) {
	var got GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"mistral","response":"Check the coolant.","done":true}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL+"/api/generate", "")
	reply, err := c.Explain(context.Background(), "why overheat?")
	require.NoError(t, err)

	assert.Equal(t, "Check the coolant.", reply)
	assert.Equal(t, GenerateRequest{Model: "mistral", Prompt: "why overheat?", Stream: false}, got)
	assert.Equal(t, "ollama/mistral", c.Name())
}

func TestExplain_MissingResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model":"mistral","done":true}`))
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "mistral").Explain(context.Background(), "p")
	require.ErrorIs(t, err, entity.ErrMalformedResponse)
}

func TestExplain_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "mistral").Explain(context.Background(), "p")
	require.ErrorIs(t, err, entity.ErrMalformedResponse)
}

func TestExplain_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "mistral").Explain(context.Background(), "p")
	require.ErrorIs(t, err, entity.ErrServiceUnavailable)
}

func TestExplain_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewOllamaClient(url, "mistral").Explain(context.Background(), "p")
	require.ErrorIs(t, err, entity.ErrServiceUnavailable)
}

func TestExplain_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewOllamaClient(srv.URL, "mistral").Explain(ctx, "p")
	require.ErrorIs(t, err, entity.ErrServiceUnavailable)
}
