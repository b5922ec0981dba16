package ai

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"
)

// Provider is the slice of the Gemini API the service relies on.
type Provider interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
	ListModels(ctx context.Context) ([]RemoteModel, error)
	// GetModel 只用于校验凭证是否被接受。
	GetModel(ctx context.Context, model string) error
}

// RemoteModel 是 models.list 返回的模型元数据中我们关心的部分。
type RemoteModel struct {
	Name             string
	DisplayName      string
	Description      string
	SupportedActions []string
}

// ClientOptions binds a provider to one credential and endpoint.
type ClientOptions struct {
	APIKey     string
	BaseURL    string
	APIVersion string
}

// ProviderFactory builds a provider for the given options.
type ProviderFactory func(ctx context.Context, opts ClientOptions) (Provider, error)

type genaiProvider struct {
	client *genai.Client
}

// NewGenAIProvider builds a Provider backed by the Gemini Developer API.
func NewGenAIProvider(ctx context.Context, opts ClientOptions) (Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    opts.BaseURL,
			APIVersion: opts.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &genaiProvider{client: client}, nil
}

func (p *genaiProvider) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return p.client.Models.GenerateContent(ctx, model, contents, cfg)
}

func (p *genaiProvider) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return p.client.Models.GenerateContentStream(ctx, model, contents, cfg)
}

func (p *genaiProvider) ListModels(ctx context.Context) ([]RemoteModel, error) {
	var out []RemoteModel
	for m, err := range p.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		if m == nil {
			continue
		}
		out = append(out, RemoteModel{
			Name:             m.Name,
			DisplayName:      m.DisplayName,
			Description:      m.Description,
			SupportedActions: m.SupportedActions,
		})
	}
	return out, nil
}

func (p *genaiProvider) GetModel(ctx context.Context, model string) error {
	if _, err := p.client.Models.Get(ctx, model, nil); err != nil {
		return fmt.Errorf("failed to get model %s: %w", model, err)
	}
	return nil
}
