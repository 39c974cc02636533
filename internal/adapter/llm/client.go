// package llm contains the client for the remote model backends: the hosted
// multi-tenant API and a self-hosted endpoint, selected per call.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"gitlab.com/prompteval-2025.net/internal/config"
	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
	"gitlab.com/prompteval-2025.net/internal/domain"
)

const (
	completionTemperature  = 0.7
	translationTemperature = 0.3
	judgeTemperature       = 0.3
)

// Client implements the InvocationClient interface over OpenAI-compatible
// chat completion backends
type Client struct {
	resolver   secondary.BackendResolver
	cfg        *config.LLMConfig
	httpClient *http.Client
	logger     primary.Logger
}

var _ secondary.InvocationClient = (*Client)(nil)

// NewClient creates a new invocation client
func NewClient(resolver secondary.BackendResolver, cfg *config.LLMConfig, logger primary.Logger) *Client {
	return &Client{
		resolver: resolver,
		cfg:      cfg,
		// No client-side timeout: slow local models are expected to run to
		// completion or failure.
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// chatClient builds a go-openai client for the resolved backend. The
// self-hosted endpoint is unauthenticated.
func (c *Client) chatClient(backend *domain.BackendConfig) *openai.Client {
	conf := openai.DefaultConfig(backend.APIKey)
	conf.BaseURL = strings.TrimSuffix(backend.BaseURL, "/") + "/v1"
	conf.HTTPClient = c.httpClient
	return openai.NewClientWithConfig(conf)
}

// Complete runs a single chat completion built from the test case's prompts
func (c *Client) Complete(ctx context.Context, tc *domain.TestCase, modelID string) (*domain.CompletionOutput, error) {
	backend, err := c.resolver.Resolve(ctx)
	if err != nil {
		return nil, &domain.InvocationError{ModelID: modelID, Err: err}
	}

	start := time.Now()
	resp, err := c.chatClient(backend).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       modelID,
		Messages:    buildMessages(tc),
		Temperature: completionTemperature,
	})
	if err != nil {
		c.logger.Error("Chat completion failed", "modelId", modelID, "error", err)
		return nil, &domain.InvocationError{ModelID: modelID, Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &domain.InvocationError{ModelID: modelID, Err: fmt.Errorf("backend returned no choices")}
	}

	return &domain.CompletionOutput{
		Output:     resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// TranslatePrompt translates a user prompt and optional source text from the
// source language to the pivot language
func (c *Client) TranslatePrompt(ctx context.Context, userPrompt, sourceText, modelID string) (*domain.TranslatedPrompt, error) {
	prompt := fmt.Sprintf(`Translate the following %s text to %s. Maintain the exact meaning and tone.

%s text: %s
%s
Provide only the %s translation without any explanation.`,
		c.cfg.SourceLanguage, c.cfg.PivotLanguage,
		c.cfg.SourceLanguage, userPrompt,
		sourceMaterialBlock(sourceText),
		c.cfg.PivotLanguage)

	translation, err := c.rawCompletion(ctx, prompt, modelID, translationTemperature)
	if err != nil {
		return nil, err
	}

	if sourceText != "" {
		parts := strings.SplitN(translation, "\nSource material:", 2)
		translated := &domain.TranslatedPrompt{UserPrompt: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			translated.SourceText = strings.TrimSpace(parts[1])
		}
		return translated, nil
	}

	return &domain.TranslatedPrompt{UserPrompt: strings.TrimSpace(translation)}, nil
}

// TranslateBack translates model output from the pivot language back to the
// source language
func (c *Client) TranslateBack(ctx context.Context, text, modelID string) (string, error) {
	prompt := fmt.Sprintf(`Translate the following %s text to %s. Maintain the exact meaning and tone.

%s text: %s

Provide only the %s translation without any explanation.`,
		c.cfg.PivotLanguage, c.cfg.SourceLanguage,
		c.cfg.PivotLanguage, text,
		c.cfg.SourceLanguage)

	translation, err := c.rawCompletion(ctx, prompt, modelID, translationTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(translation), nil
}

// JudgeCompletion runs an evaluation prompt against a judge model and returns
// the raw response text
func (c *Client) JudgeCompletion(ctx context.Context, prompt, modelID string) (string, error) {
	return c.rawCompletion(ctx, prompt, modelID, judgeTemperature)
}

func (c *Client) rawCompletion(ctx context.Context, prompt, modelID string, temperature float32) (string, error) {
	backend, err := c.resolver.Resolve(ctx)
	if err != nil {
		return "", &domain.InvocationError{ModelID: modelID, Err: err}
	}

	resp, err := c.chatClient(backend).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		c.logger.Error("Chat completion failed", "modelId", modelID, "error", err)
		return "", &domain.InvocationError{ModelID: modelID, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.InvocationError{ModelID: modelID, Err: fmt.Errorf("backend returned no choices")}
	}
	return resp.Choices[0].Message.Content, nil
}

// buildMessages assembles the outgoing message sequence: optional system
// message, then the user prompt with a labeled source text block appended
// when present
func buildMessages(tc *domain.TestCase) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage

	if tc.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: tc.SystemPrompt,
		})
	}

	userContent := tc.UserPrompt
	if tc.SourceText != "" {
		userContent = fmt.Sprintf("%s\n\nSource text:\n%s", tc.UserPrompt, tc.SourceText)
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userContent,
	})

	return messages
}

func sourceMaterialBlock(sourceText string) string {
	if sourceText == "" {
		return ""
	}
	return fmt.Sprintf("\nSource material: %s\n", sourceText)
}

// hostedModelsResponse mirrors the hosted backend's /v1/models payload
type hostedModelsResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Description   string `json:"description"`
		ContextLength int    `json:"context_length"`
		Pricing       struct {
			Prompt     string `json:"prompt"`
			Completion string `json:"completion"`
		} `json:"pricing"`
	} `json:"data"`
}

// selfHostedSearchResponse mirrors the self-hosted /api/models/search payload
type selfHostedSearchResponse struct {
	Models []struct {
		Author        string   `json:"author"`
		Downloads     int      `json:"downloads"`
		DownloadCount int      `json:"downloadCount"`
		Likes         int      `json:"likes"`
		Tags          []string `json:"tags"`
		GGUFFiles     []struct {
			SuggestedModelID string `json:"suggestedModelID"`
			Quantization     string `json:"quantization"`
			IsSplit          bool   `json:"isSplit"`
			Filename         string `json:"filename"`
		} `json:"ggufFiles"`
	} `json:"models"`
}

// ListModels lists available models from the resolved backend, normalized to
// uniform descriptors
func (c *Client) ListModels(ctx context.Context, query string, limit int) ([]domain.ModelDescriptor, error) {
	backend, err := c.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backend: %w", err)
	}

	if backend.SelfHosted {
		return c.listSelfHostedModels(ctx, backend, query, limit)
	}
	return c.listHostedModels(ctx, backend)
}

func (c *Client) listHostedModels(ctx context.Context, backend *domain.BackendConfig) ([]domain.ModelDescriptor, error) {
	endpoint := strings.TrimSuffix(backend.BaseURL, "/") + "/v1/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build models request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+backend.APIKey)
	req.Header.Set("Content-Type", "application/json")

	var payload hostedModelsResponse
	if err := c.doJSON(req, &payload); err != nil {
		c.logger.Error("Failed to fetch hosted models", "error", err)
		return nil, fmt.Errorf("failed to fetch available models: %w", err)
	}

	models := make([]domain.ModelDescriptor, 0, len(payload.Data))
	for _, m := range payload.Data {
		name := m.Name
		if name == "" {
			name = m.ID
		}
		models = append(models, domain.ModelDescriptor{
			ID:            m.ID,
			Name:          name,
			Description:   m.Description,
			ContextLength: m.ContextLength,
			Pricing: domain.ModelPricing{
				Prompt:     m.Pricing.Prompt,
				Completion: m.Pricing.Completion,
			},
		})
	}
	return models, nil
}

func (c *Client) listSelfHostedModels(ctx context.Context, backend *domain.BackendConfig, query string, limit int) ([]domain.ModelDescriptor, error) {
	endpoint := fmt.Sprintf("%s/api/models/search?q=%s&limit=%s",
		strings.TrimSuffix(backend.BaseURL, "/"),
		url.QueryEscape(query),
		strconv.Itoa(limit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build model search request: %w", err)
	}

	var payload selfHostedSearchResponse
	if err := c.doJSON(req, &payload); err != nil {
		c.logger.Error("Failed to search self-hosted models", "error", err)
		return nil, fmt.Errorf("failed to fetch available models: %w", err)
	}

	// One search hit may carry several GGUF files; flatten to unique
	// descriptors keyed by suggested model id.
	seen := make(map[string]bool)
	var models []domain.ModelDescriptor
	for _, m := range payload.Models {
		downloads := m.Downloads
		if downloads == 0 {
			downloads = m.DownloadCount
		}
		for _, gguf := range m.GGUFFiles {
			id := gguf.SuggestedModelID
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			models = append(models, domain.ModelDescriptor{
				ID:            id,
				Name:          selfHostedModelName(id, m.Author),
				Description:   fmt.Sprintf("%s - %s - %d downloads", gguf.Quantization, m.Author, downloads),
				ContextLength: -1,
				Pricing:       domain.ModelPricing{Prompt: "0", Completion: "0"},
				Quantization:  gguf.Quantization,
				Author:        m.Author,
				Downloads:     downloads,
				Likes:         m.Likes,
				Tags:          m.Tags,
				IsSplit:       gguf.IsSplit,
				Filename:      gguf.Filename,
			})
		}
	}
	return models, nil
}

// selfHostedModelName shortens ids with a quantization variant to the author
// plus the id's second path segment, and leaves everything else as-is
func selfHostedModelName(id, author string) string {
	if idx := strings.Index(id, ":"); idx < 0 || idx == len(id)-1 {
		return id
	}
	parts := strings.Split(id, "/")
	if len(parts) < 2 {
		return id
	}
	return author + "/" + parts[1]
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
