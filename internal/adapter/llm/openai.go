// internal/adapter/llm/openai.go

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Model defaults
const (
	DefaultOpenAIModel      = openai.GPT4oMini
	DefaultOpenAIImageModel = openai.CreateImageModelDallE3
)

var errEmptyResponse = errors.New("empty response from model")

// OpenAIConfig contains configuration for the OpenAI providers
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string
}

func newOpenAIClient(cfg OpenAIConfig) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is not set")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return openai.NewClientWithConfig(clientCfg), nil
}

// OpenAIProvider generates JSON documents with a chat completion model
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI text provider
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	client, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIProvider{
		client: client,
		model:  model,
	}, nil
}

// GenerateJSON implements article.TextGenerator
func (p *OpenAIProvider) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a professional blog writer. You always answer with a single valid JSON object.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// OpenAIImageGenerator creates featured images with an image model
type OpenAIImageGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIImageGenerator creates a new OpenAI image generator
func NewOpenAIImageGenerator(cfg OpenAIConfig) (*OpenAIImageGenerator, error) {
	client, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}

	model := cfg.ImageModel
	if model == "" {
		model = DefaultOpenAIImageModel
	}

	return &OpenAIImageGenerator{
		client: client,
		model:  model,
	}, nil
}

// GenerateImage implements article.ImageGenerator
func (g *OpenAIImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          g.model,
		N:              1,
		Size:           openai.CreateImageSize1792x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errEmptyResponse
	}
	return resp.Data[0].URL, nil
}
