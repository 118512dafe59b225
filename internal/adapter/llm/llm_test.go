package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAIServer(t *testing.T, path string, respond func(w http.ResponseWriter, body map[string]interface{})) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		respond(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIProviderGenerateJSON(t *testing.T) {
	var seen map[string]interface{}
	srv := newOpenAIServer(t, "/v1/chat/completions", func(w http.ResponseWriter, body map[string]interface{}) {
		seen = body
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"title\":\"T\",\"content\":\"<p>x</p>\"}"}, "finish_reason": "stop"}]
		}`))
	})

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)

	out, err := p.GenerateJSON(context.Background(), "write about tides")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"T","content":"<p>x</p>"}`, out)

	assert.Equal(t, DefaultOpenAIModel, seen["model"])
	format, ok := seen["response_format"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
	messages, ok := seen["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "write about tides", messages[1].(map[string]interface{})["content"])
}

func TestOpenAIProviderErrors(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{})
	assert.Error(t, err)

	empty := newOpenAIServer(t, "/v1/chat/completions", func(w http.ResponseWriter, body map[string]interface{}) {
		w.Write([]byte(`{"id": "chatcmpl-2", "choices": []}`))
	})
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: empty.URL + "/v1"})
	require.NoError(t, err)
	_, err = p.GenerateJSON(context.Background(), "prompt")
	assert.ErrorIs(t, err, errEmptyResponse)

	failing := newOpenAIServer(t, "/v1/chat/completions", func(w http.ResponseWriter, body map[string]interface{}) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited", "type": "requests"}}`))
	})
	p, err = NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: failing.URL + "/v1"})
	require.NoError(t, err)
	_, err = p.GenerateJSON(context.Background(), "prompt")
	assert.ErrorContains(t, err, "rate limited")
}

func TestOpenAIImageGenerator(t *testing.T) {
	var seen map[string]interface{}
	srv := newOpenAIServer(t, "/v1/images/generations", func(w http.ResponseWriter, body map[string]interface{}) {
		seen = body
		w.Write([]byte(`{"created": 1, "data": [{"url": "https://images.test/tides.png"}]}`))
	})

	g, err := NewOpenAIImageGenerator(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	u, err := g.GenerateImage(context.Background(), "a tidal pool at dawn")
	require.NoError(t, err)
	assert.Equal(t, "https://images.test/tides.png", u)
	assert.Equal(t, "a tidal pool at dawn", seen["prompt"])
	assert.Equal(t, DefaultOpenAIImageModel, seen["model"])
	assert.Equal(t, "1792x1024", seen["size"])
}

func TestGeminiRequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), "", "")
	assert.Error(t, err)
}

func TestGeminiResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"title":`), genai.Text(`"T"}`)}},
		}},
	}

	out, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"T"}`, out)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, errEmptyResponse)

	_, err = responseText(nil)
	assert.ErrorIs(t, err, errEmptyResponse)
}
