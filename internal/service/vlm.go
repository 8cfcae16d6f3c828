package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/promptgen/internal/apperr"
	"github.com/timmy/promptgen/internal/prompts"
)

// ErrUnsupportedMimeType is returned before any network call when the
// provider cannot accept the image's mime type.
var ErrUnsupportedMimeType = errors.New("unsupported image mime type")

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultOpenAIModel   = "gpt-4o-mini"
)

var supportedMimeTypes = map[string]map[string]bool{
	ProviderGemini: {
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
		"image/heic": true,
		"image/heif": true,
	},
	ProviderOpenAI: {
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	},
}

// VLMService generates image descriptions using Vision Language Models.
type VLMService struct {
	client    *resty.Client
	provider  string
	model     string
	baseURL   string
	maxTokens int
}

// VLMConfig holds configuration for VLM service.
type VLMConfig struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
}

// NewVLMService creates a new VLM service.
// Parameters:
//   - cfg: VLM configuration including provider, model, and API key.
//
// Returns:
//   - *VLMService: initialized VLM client wrapper.
func NewVLMService(cfg *VLMConfig) *VLMService {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = ProviderGemini
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	// Set timeout to prevent hanging requests
	client.SetTimeout(timeout)

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	model := cfg.Model
	switch provider {
	case ProviderOpenAI:
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		if model == "" {
			model = defaultOpenAIModel
		}
	default:
		client.SetHeader("x-goog-api-key", cfg.APIKey)
		if baseURL == "" {
			baseURL = defaultGeminiBaseURL
		}
		if model == "" {
			model = defaultGeminiModel
		}
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &VLMService{
		client:    client,
		provider:  provider,
		model:     model,
		baseURL:   baseURL,
		maxTokens: maxTokens,
	}
}

// GetModel returns the model name being used.
func (s *VLMService) GetModel() string {
	return s.model
}

// Provider returns the configured provider name.
func (s *VLMService) Provider() string {
	return s.provider
}

// Supports reports whether the provider accepts images of mimeType.
func (s *VLMService) Supports(mimeType string) bool {
	return supportedMimeTypes[s.provider][mimeType]
}

// DescribeImage generates a prompt that recreates a similar image.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - imageData: raw image bytes.
//   - mimeType: sniffed mime type of imageData.
//
// Returns:
//   - string: generated prompt, trimmed and non-empty.
//   - error: AI service error if the mime type is unsupported or the request fails.
func (s *VLMService) DescribeImage(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	if !s.Supports(mimeType) {
		return "", apperr.AIService("unsupported image type",
			fmt.Errorf("%w: %s for provider %s", ErrUnsupportedMimeType, mimeType, s.provider))
	}

	var (
		text string
		err  error
	)
	switch s.provider {
	case ProviderOpenAI:
		text, err = s.describeOpenAI(ctx, imageData, mimeType)
	default:
		text, err = s.describeGemini(ctx, imageData, mimeType)
	}
	if err != nil {
		return "", apperr.AIService("AI service request failed", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.AIService("AI service returned an empty description", errors.New("empty response text"))
	}
	return text, nil
}

// Ping sends a minimal text request and returns the model's answer.
func (s *VLMService) Ping(ctx context.Context) (string, error) {
	var (
		text string
		err  error
	)
	switch s.provider {
	case ProviderOpenAI:
		text, err = s.completeOpenAI(ctx, openAIRequest{
			Model:     s.model,
			Messages:  []openAIMessage{{Role: "user", Content: prompts.PingPrompt}},
			MaxTokens: 16,
		})
	default:
		text, err = s.generateGemini(ctx, geminiRequest{
			Contents: []geminiContent{{Parts: []geminiPart{{Text: prompts.PingPrompt}}}},
		})
	}
	if err != nil {
		return "", apperr.AIService("AI service is unreachable", err)
	}
	return strings.TrimSpace(text), nil
}

// ============================================================================
// OpenAI-compatible Chat Completion API
// ============================================================================

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string for system, []interface{} for user with images
}

type openAITextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type openAIImageContent struct {
	Type     string         `json:"type"`
	ImageURL openAIImageURL `json:"image_url"`
}

type openAIImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (s *VLMService) describeOpenAI(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))

	return s.completeOpenAI(ctx, openAIRequest{
		Model: s.model,
		Messages: []openAIMessage{
			{
				Role:    "system",
				Content: prompts.VLMSystemPrompt,
			},
			{
				Role: "user",
				Content: []interface{}{
					openAITextContent{
						Type: "text",
						Text: prompts.DescribeImagePrompt,
					},
					openAIImageContent{
						Type: "image_url",
						ImageURL: openAIImageURL{
							URL:    dataURL,
							Detail: "auto",
						},
					},
				},
			},
		},
		MaxTokens: s.maxTokens,
	})
}

func (s *VLMService) completeOpenAI(ctx context.Context, req openAIRequest) (string, error) {
	var resp openAIResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(s.baseURL + "/chat/completions")

	if err != nil {
		return "", fmt.Errorf("failed to call VLM API: %w", err)
	}

	// Check HTTP status code
	if httpResp.IsError() {
		if resp.Error != nil {
			return "", fmt.Errorf("VLM API returned error: HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return "", fmt.Errorf("VLM API returned error: HTTP %d: %s", httpResp.StatusCode(), truncateBody(httpResp.Body()))
	}

	if resp.Error != nil {
		return "", fmt.Errorf("VLM API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in VLM API response (status: %d)", httpResp.StatusCode())
	}

	return resp.Choices[0].Message.Content, nil
}

// ============================================================================
// Gemini generateContent API
// ============================================================================

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func (s *VLMService) describeGemini(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	return s.generateGemini(ctx, geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: prompts.DescribeImagePrompt},
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(imageData),
				}},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{MaxOutputTokens: s.maxTokens},
	})
}

func (s *VLMService) generateGemini(ctx context.Context, req geminiRequest) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, url.PathEscape(s.model))

	var resp geminiResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(endpoint)

	if err != nil {
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}

	if httpResp.IsError() {
		if resp.Error != nil {
			return "", fmt.Errorf("Gemini API returned error: HTTP %d: %s %s", httpResp.StatusCode(), resp.Error.Status, resp.Error.Message)
		}
		return "", fmt.Errorf("Gemini API returned error: HTTP %d: %s", httpResp.StatusCode(), truncateBody(httpResp.Body()))
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("Gemini API blocked the request: %s", resp.PromptFeedback.BlockReason)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in Gemini API response (status: %d)", httpResp.StatusCode())
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
