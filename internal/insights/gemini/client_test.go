package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamwise/streamwise/internal/config"
	"github.com/streamwise/streamwise/internal/testutil"
)

func newTestClient(t *testing.T, handler http.Handler, models []string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.GeneratorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Models:  models,
	}, testutil.NopLogger())
}

func textResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestGenerate_NotConfigured(t *testing.T) {
	client := NewClient(config.GeneratorConfig{}, testutil.NopLogger())

	_, err := client.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}

func TestGenerate_FirstModelSucceeds(t *testing.T) {
	var requestedModel string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedModel = r.URL.Path
		w.Write([]byte(textResponse("output text")))
	}), []string{"model-a", "model-b"})

	text, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "output text", text)
	assert.True(t, strings.Contains(requestedModel, "model-a"))
}

func TestGenerate_QuotaExhaustedAdvancesToNextModel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "model-a") {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"code":429,"status":"RESOURCE_EXHAUSTED","message":"quota"}}`))
			return
		}
		w.Write([]byte(textResponse("from fallback")))
	}), []string{"model-a", "model-b"})

	text, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "from fallback", text)
}

func TestGenerate_RetiredModelAdvancesToNextModel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "model-old") {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":404,"status":"NOT_FOUND","message":"unknown model"}}`))
			return
		}
		w.Write([]byte(textResponse("current model")))
	}), []string{"model-old", "model-new"})

	text, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "current model", text)
}

func TestGenerate_AllModelsExhausted(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"status":"RESOURCE_EXHAUSTED","message":"quota"}}`))
	}), []string{"model-a", "model-b"})

	_, err := client.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrAllModelsExhausted)
}

func TestGenerate_OtherErrorsStopTheChain(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"bad prompt"}}`))
	}), []string{"model-a", "model-b"})

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAllModelsExhausted)
	assert.Equal(t, 1, calls)
}

func TestGenerate_EmptyResponseStopsTheChain(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}), []string{"model-a", "model-b"})

	_, err := client.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestDefaultModelChain(t *testing.T) {
	client := NewClient(config.GeneratorConfig{APIKey: "k"}, testutil.NopLogger())
	assert.Equal(t, defaultModels, client.Models())
}
