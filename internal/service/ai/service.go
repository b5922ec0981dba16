package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/zhouzirui/ai-interviewer/backend/internal/config"
	"github.com/zhouzirui/ai-interviewer/backend/internal/requestctx"
)

// Credential identifies which API key served a call.
type Credential string

const (
	// CredentialDefault 服务端配置的默认凭证。
	CredentialDefault Credential = "default"
	// CredentialOverride 请求头携带的用户凭证。
	CredentialOverride Credential = "override"
)

const jsonMIMEType = "application/json"

// ModelOptions configures one model handle.
type ModelOptions struct {
	SystemInstruction string
	ResponseSchema    *genai.Schema
	// ResponseMIMEType 默认在设置 ResponseSchema 时为 application/json。
	ResponseMIMEType string
	MaxOutputTokens  int32
	APIVersion       string
	BaseURL          string
}

// ValidationResult is the outcome of a credential check.
type ValidationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Service resolves credentials and builds model handles for the rest of the app.
type Service struct {
	cfg             config.AIConfig
	factory         ProviderFactory
	defaultProvider Provider
	logger          *zap.Logger
}

// NewService builds the process-wide default provider. It is created once and
// only read afterwards.
func NewService(ctx context.Context, cfg config.AIConfig, factory ProviderFactory, logger *zap.Logger) (*Service, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, config.ErrMissingAPIKey
	}
	if factory == nil {
		factory = NewGenAIProvider
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{cfg: cfg, factory: factory, logger: logger}
	provider, err := factory(ctx, s.clientOptions(cfg.APIKey, ModelOptions{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create default provider: %w", err)
	}
	s.defaultProvider = provider
	return s, nil
}

// Config returns the AI configuration the service was built with.
func (s *Service) Config() config.AIConfig {
	return s.cfg
}

// ResolveClient returns a provider bound to the request's override key when
// present, otherwise the default provider. Override providers are never cached.
func (s *Service) ResolveClient(ctx context.Context) (Provider, Credential, error) {
	return s.resolve(ctx, ModelOptions{})
}

func (s *Service) resolve(ctx context.Context, opts ModelOptions) (Provider, Credential, error) {
	values, _ := requestctx.From(ctx)

	if values.HasAPIKey() {
		provider, err := s.factory(ctx, s.clientOptions(values.APIKey, opts))
		if err != nil {
			return nil, CredentialOverride, fmt.Errorf("failed to create provider for override key: %w", err)
		}
		return provider, CredentialOverride, nil
	}

	if !s.customEndpoint(opts) {
		return s.defaultProvider, CredentialDefault, nil
	}

	provider, err := s.factory(ctx, s.clientOptions(s.cfg.APIKey, opts))
	if err != nil {
		return nil, CredentialDefault, fmt.Errorf("failed to create provider: %w", err)
	}
	return provider, CredentialDefault, nil
}

// ResolveModelID picks the explicit ID, then the request's preferred model,
// then the configured default.
func (s *Service) ResolveModelID(ctx context.Context, modelID string) string {
	if id := TrimModelName(modelID); id != "" {
		return id
	}
	if values, ok := requestctx.From(ctx); ok {
		if id := TrimModelName(values.ModelID); id != "" {
			return id
		}
	}
	return TrimModelName(s.cfg.DefaultModel)
}

// Model returns a handle for modelID configured with opts.
func (s *Service) Model(ctx context.Context, modelID string, opts ModelOptions) (*ChatModel, error) {
	provider, credential, err := s.resolve(ctx, opts)
	if err != nil {
		return nil, err
	}

	cfg := genai.GenerateContentConfig{
		MaxOutputTokens:  opts.MaxOutputTokens,
		ResponseMIMEType: opts.ResponseMIMEType,
		ResponseSchema:   opts.ResponseSchema,
	}
	if cfg.ResponseSchema != nil && cfg.ResponseMIMEType == "" {
		cfg.ResponseMIMEType = jsonMIMEType
	}

	return &ChatModel{
		provider:   provider,
		modelID:    s.ResolveModelID(ctx, modelID),
		credential: credential,
		system:     strings.TrimSpace(opts.SystemInstruction),
		config:     cfg,
	}, nil
}

// ListModels returns the models usable for content generation. With the
// default credential only the configured low-cost family is listed. Provider
// failures fall back to a built-in list.
func (s *Service) ListModels(ctx context.Context) []ModelInfo {
	provider, credential, err := s.ResolveClient(ctx)
	if err != nil {
		s.logger.Warn("list models: resolve client failed, using fallback", zap.Error(err))
		return FallbackModels()
	}

	remote, err := provider.ListModels(ctx)
	if err != nil {
		s.logger.Warn("list models failed, using fallback",
			zap.String("credential", string(credential)),
			zap.Error(err),
		)
		return FallbackModels()
	}

	out := make([]ModelInfo, 0, len(remote))
	for _, m := range remote {
		if !supportsGenerate(m) {
			continue
		}
		id := TrimModelName(m.Name)
		if credential == CredentialDefault && !inFamily(id, s.cfg.ModelFamily, s.cfg.ModelVersions) {
			continue
		}
		out = append(out, ModelInfo{
			ID:          id,
			DisplayName: m.DisplayName,
			Description: m.Description,
		})
	}
	return out
}

// ValidateCredential checks whether the provider accepts key. It never returns
// an error; failures are reported in the result.
func (s *Service) ValidateCredential(ctx context.Context, key string) ValidationResult {
	key = strings.TrimSpace(key)
	if key == "" {
		return ValidationResult{Success: false, Message: "API Key 不能为空"}
	}

	provider, err := s.factory(ctx, s.clientOptions(key, ModelOptions{}))
	if err != nil {
		s.logger.Debug("validate key: create provider failed", zap.Error(err))
		return ValidationResult{Success: false, Message: "无法创建客户端，请检查 API Key"}
	}

	if err := provider.GetModel(ctx, TrimModelName(s.cfg.DefaultModel)); err != nil {
		s.logger.Debug("validate key: provider rejected key", zap.Error(err))
		return ValidationResult{Success: false, Message: "API Key 无效或没有访问权限"}
	}
	return ValidationResult{Success: true, Message: "API Key 验证成功"}
}

func (s *Service) clientOptions(key string, opts ModelOptions) ClientOptions {
	out := ClientOptions{
		APIKey:     strings.TrimSpace(key),
		BaseURL:    s.cfg.BaseURL,
		APIVersion: s.cfg.APIVersion,
	}
	if opts.BaseURL != "" {
		out.BaseURL = opts.BaseURL
	}
	if opts.APIVersion != "" {
		out.APIVersion = opts.APIVersion
	}
	return out
}

func (s *Service) customEndpoint(opts ModelOptions) bool {
	return (opts.BaseURL != "" && opts.BaseURL != s.cfg.BaseURL) ||
		(opts.APIVersion != "" && opts.APIVersion != s.cfg.APIVersion)
}
