package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/prompteval-2025.net/internal/config"
	"gitlab.com/prompteval-2025.net/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Warn(msg string, args ...interface{})  {}

type staticResolver struct {
	backend *domain.BackendConfig
}

func (r *staticResolver) Resolve(ctx context.Context) (*domain.BackendConfig, error) {
	return r.backend, nil
}

type memorySettings struct {
	values map[string]string
}

func (m *memorySettings) GetSetting(ctx context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memorySettings) SaveSetting(ctx context.Context, key, value string) error {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func testLLMConfig() *config.LLMConfig {
	return &config.LLMConfig{
		HostedBaseURL:    "https://openrouter.ai/api",
		HostedAPIKey:     "hosted-key",
		SourceLanguage:   "Dutch",
		PivotLanguage:    "English",
		TranslationModel: "openai/gpt-4.1",
		JudgeModel:       "openai/gpt-4.1",
	}
}

type capturedChatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// chatServer serves one canned chat completion and records the request
func chatServer(t *testing.T, content string, captured *capturedChatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"model":   captured.Model,
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 9, "completion_tokens": 5, "total_tokens": 14},
		})
	}))
}

func clientAgainst(server *httptest.Server) *Client {
	resolver := &staticResolver{backend: &domain.BackendConfig{BaseURL: server.URL, APIKey: "test-key"}}
	return NewClient(resolver, testLLMConfig(), nopLogger{})
}

func TestCompleteBuildsMessages(t *testing.T) {
	var captured capturedChatRequest
	server := chatServer(t, "het antwoord", &captured)
	defer server.Close()

	client := clientAgainst(server)
	tc := domain.NewTestCase("t", "You are terse.", "Summarize this", "a long article", "")

	out, err := client.Complete(context.Background(), tc, "openai/gpt-4.1")
	require.NoError(t, err)

	assert.Equal(t, "het antwoord", out.Output)
	assert.Equal(t, 14, out.TokensUsed)
	assert.GreaterOrEqual(t, out.LatencyMs, int64(0))

	assert.Equal(t, "openai/gpt-4.1", captured.Model)
	assert.InDelta(t, 0.7, captured.Temperature, 0.001)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "You are terse.", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "Summarize this\n\nSource text:\na long article", captured.Messages[1].Content)
}

func TestCompleteWithoutSystemPromptOrSourceText(t *testing.T) {
	var captured capturedChatRequest
	server := chatServer(t, "ok", &captured)
	defer server.Close()

	client := clientAgainst(server)
	tc := domain.NewTestCase("t", "", "Just answer", "", "")

	_, err := client.Complete(context.Background(), tc, "m")
	require.NoError(t, err)

	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "Just answer", captured.Messages[0].Content)
}

func TestCompleteBackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "model overloaded"}}`, http.StatusBadGateway)
	}))
	defer server.Close()

	client := clientAgainst(server)
	tc := domain.NewTestCase("t", "", "prompt", "", "")

	_, err := client.Complete(context.Background(), tc, "broken-model")
	require.Error(t, err)

	var invErr *domain.InvocationError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, "broken-model", invErr.ModelID)
	assert.Contains(t, err.Error(), "failed to run test with broken-model")
}

func TestTranslatePromptUsesTranslationTemperature(t *testing.T) {
	var captured capturedChatRequest
	server := chatServer(t, "Summarize the text", &captured)
	defer server.Close()

	client := clientAgainst(server)
	out, err := client.TranslatePrompt(context.Background(), "Vat de tekst samen", "", "translator")
	require.NoError(t, err)

	assert.Equal(t, "Summarize the text", out.UserPrompt)
	assert.Empty(t, out.SourceText)
	assert.InDelta(t, 0.3, captured.Temperature, 0.001)

	require.Len(t, captured.Messages, 1)
	assert.Contains(t, captured.Messages[0].Content, "Translate the following Dutch text to English. Maintain the exact meaning and tone.")
	assert.Contains(t, captured.Messages[0].Content, "Dutch text: Vat de tekst samen")
	assert.NotContains(t, captured.Messages[0].Content, "Source material:")
}

func TestTranslatePromptSplitsSourceMaterial(t *testing.T) {
	var captured capturedChatRequest
	server := chatServer(t, "Summarize the text\nSource material: the article body", &captured)
	defer server.Close()

	client := clientAgainst(server)
	out, err := client.TranslatePrompt(context.Background(), "Vat de tekst samen", "de artikeltekst", "translator")
	require.NoError(t, err)

	assert.Equal(t, "Summarize the text", out.UserPrompt)
	assert.Equal(t, "the article body", out.SourceText)
	assert.Contains(t, captured.Messages[0].Content, "Source material: de artikeltekst")
}

func TestTranslateBackSwapsLanguages(t *testing.T) {
	var captured capturedChatRequest
	server := chatServer(t, "  het vertaalde antwoord  ", &captured)
	defer server.Close()

	client := clientAgainst(server)
	out, err := client.TranslateBack(context.Background(), "the answer", "translator")
	require.NoError(t, err)

	assert.Equal(t, "het vertaalde antwoord", out)
	assert.Contains(t, captured.Messages[0].Content, "Translate the following English text to Dutch.")
	assert.Contains(t, captured.Messages[0].Content, "English text: the answer")
}

func TestJudgeCompletionReturnsRawText(t *testing.T) {
	var captured capturedChatRequest
	server := chatServer(t, "Score: 91\nFeedback: Excellent", &captured)
	defer server.Close()

	client := clientAgainst(server)
	out, err := client.JudgeCompletion(context.Background(), "evaluate this", "judge")
	require.NoError(t, err)

	assert.Equal(t, "Score: 91\nFeedback: Excellent", out)
	assert.InDelta(t, 0.3, captured.Temperature, 0.001)
}

func TestListHostedModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "Bearer hosted-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{
					"id": "openai/gpt-4.1",
					"name": "GPT-4.1",
					"description": "flagship",
					"context_length": 128000,
					"pricing": {"prompt": "0.000002", "completion": "0.000008"}
				},
				{"id": "nameless/model", "context_length": 8192, "pricing": {"prompt": "0", "completion": "0"}}
			]
		}`))
	}))
	defer server.Close()

	resolver := &staticResolver{backend: &domain.BackendConfig{BaseURL: server.URL, APIKey: "hosted-key"}}
	client := NewClient(resolver, testLLMConfig(), nopLogger{})

	models, err := client.ListModels(context.Background(), "gguf", 100)
	require.NoError(t, err)
	require.Len(t, models, 2)

	assert.Equal(t, "openai/gpt-4.1", models[0].ID)
	assert.Equal(t, "GPT-4.1", models[0].Name)
	assert.Equal(t, 128000, models[0].ContextLength)
	assert.Equal(t, "0.000002", models[0].Pricing.Prompt)
	assert.Equal(t, "0.000008", models[0].Pricing.Completion)

	// Name falls back to the id when the backend omits it.
	assert.Equal(t, "nameless/model", models[1].Name)
}

func TestListSelfHostedModelsFlattensGGUFFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/models/search", r.URL.Path)
		assert.Equal(t, "llama", r.URL.Query().Get("q"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"models": [
				{
					"author": "bartowski",
					"downloads": 5400,
					"likes": 12,
					"tags": ["llama", "chat"],
					"ggufFiles": [
						{"suggestedModelID": "hf.co/bartowski/llama-3-8b:Q4_K_M", "quantization": "Q4_K_M", "isSplit": false, "filename": "llama-3-8b.Q4_K_M.gguf"},
						{"suggestedModelID": "hf.co/bartowski/llama-3-8b:Q4_K_M", "quantization": "Q4_K_M", "isSplit": false, "filename": "dup.gguf"},
						{"suggestedModelID": "", "quantization": "Q8_0", "isSplit": false, "filename": "skipped.gguf"}
					]
				},
				{
					"author": "other",
					"downloadCount": 77,
					"ggufFiles": [
						{"suggestedModelID": "plain-model", "quantization": "Q5_K_S", "isSplit": true, "filename": "plain.gguf"}
					]
				}
			]
		}`))
	}))
	defer server.Close()

	resolver := &staticResolver{backend: &domain.BackendConfig{BaseURL: server.URL, SelfHosted: true}}
	client := NewClient(resolver, testLLMConfig(), nopLogger{})

	models, err := client.ListModels(context.Background(), "llama", 25)
	require.NoError(t, err)
	require.Len(t, models, 2)

	first := models[0]
	assert.Equal(t, "hf.co/bartowski/llama-3-8b:Q4_K_M", first.ID)
	assert.Equal(t, "bartowski/bartowski", first.Name)
	assert.Equal(t, "Q4_K_M - bartowski - 5400 downloads", first.Description)
	assert.Equal(t, -1, first.ContextLength)
	assert.Equal(t, "0", first.Pricing.Prompt)
	assert.Equal(t, 5400, first.Downloads)
	assert.Equal(t, 12, first.Likes)
	assert.Equal(t, []string{"llama", "chat"}, first.Tags)
	assert.False(t, first.IsSplit)
	assert.Equal(t, "llama-3-8b.Q4_K_M.gguf", first.Filename)

	second := models[1]
	assert.Equal(t, "plain-model", second.ID)
	assert.Equal(t, "plain-model", second.Name)
	assert.Equal(t, 77, second.Downloads)
	assert.True(t, second.IsSplit)
}

func TestSelfHostedModelName(t *testing.T) {
	tests := []struct {
		id     string
		author string
		want   string
	}{
		// Variant ids collapse to the author plus the second path segment.
		{"hf.co/bartowski/llama-3-8b:Q4_K_M", "bartowski", "bartowski/bartowski"},
		{"repo/model:Q8_0", "author", "author/model:Q8_0"},
		// No variant marker, or nothing after it, keeps the id as-is.
		{"plain-model", "author", "plain-model"},
		{"repo/model:", "author", "repo/model:"},
		{"no-slash:Q4", "author", "no-slash:Q4"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, selfHostedModelName(tt.id, tt.author), "id %q", tt.id)
	}
}

func TestListModelsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	resolver := &staticResolver{backend: &domain.BackendConfig{BaseURL: server.URL}}
	client := NewClient(resolver, testLLMConfig(), nopLogger{})

	_, err := client.ListModels(context.Background(), "gguf", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch available models")
}

func TestResolveUsesSelfHostedOnlyWhenToggledWithEndpoint(t *testing.T) {
	cfg := testLLMConfig()

	tests := []struct {
		name       string
		values     map[string]string
		selfHosted bool
		baseURL    string
	}{
		{
			name:       "toggle on with endpoint",
			values:     map[string]string{SettingSelfHostedEnabled: "true", SettingSelfHostedPath: "http://localhost:11434"},
			selfHosted: true,
			baseURL:    "http://localhost:11434",
		},
		{
			name:    "toggle on without endpoint",
			values:  map[string]string{SettingSelfHostedEnabled: "true"},
			baseURL: cfg.HostedBaseURL,
		},
		{
			name:    "toggle off with endpoint",
			values:  map[string]string{SettingSelfHostedEnabled: "false", SettingSelfHostedPath: "http://localhost:11434"},
			baseURL: cfg.HostedBaseURL,
		},
		{
			name:    "nothing stored",
			values:  map[string]string{},
			baseURL: cfg.HostedBaseURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewSettingsBackendResolver(&memorySettings{values: tt.values}, cfg, nopLogger{})

			backend, err := resolver.Resolve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.selfHosted, backend.SelfHosted)
			assert.Equal(t, tt.baseURL, backend.BaseURL)
			if !tt.selfHosted {
				assert.Equal(t, cfg.HostedAPIKey, backend.APIKey)
			}
		})
	}
}

func TestResolverPicksUpLiveToggle(t *testing.T) {
	cfg := testLLMConfig()
	settings := &memorySettings{values: map[string]string{}}
	resolver := NewSettingsBackendResolver(settings, cfg, nopLogger{})

	backend, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.False(t, backend.SelfHosted)

	require.NoError(t, settings.SaveSetting(context.Background(), SettingSelfHostedEnabled, "true"))
	require.NoError(t, settings.SaveSetting(context.Background(), SettingSelfHostedPath, "http://localhost:11434"))

	backend, err = resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.True(t, backend.SelfHosted)
	assert.Equal(t, "http://localhost:11434", backend.BaseURL)
}
