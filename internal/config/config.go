package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// 支持的运行环境。
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// 会话记录存储驱动。
const (
	StoreDriverBolt     = "bolt"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
	StoreDriverNone     = "none"
)

// ErrMissingAPIKey 表示缺少服务端默认的 Gemini 凭证，服务无法启动。
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not defined in environment variables")

// Config 聚合整个服务的配置项。
type Config struct {
	Env    string `envconfig:"APP_ENV" default:"development"`
	Server ServerConfig
	AI     AIConfig
	Store  StoreConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port           string        `envconfig:"PORT" default:"3000"`
	AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// AIConfig 描述 Gemini 相关配置。
type AIConfig struct {
	APIKey          string   `envconfig:"GEMINI_API_KEY"`
	BaseURL         string   `envconfig:"GEMINI_BASE_URL"`
	APIVersion      string   `envconfig:"GEMINI_API_VERSION" default:"v1beta"`
	DefaultModel    string   `envconfig:"GEMINI_DEFAULT_MODEL" default:"gemini-2.5-flash"`
	EvaluationModel string   `envconfig:"GEMINI_EVALUATION_MODEL" default:"gemini-2.5-flash"`
	ModelFamily     string   `envconfig:"GEMINI_MODEL_FAMILY" default:"flash"`
	ModelVersions   []string `envconfig:"GEMINI_MODEL_VERSIONS" default:"2.5,3.0"`
	MaxOutputTokens int32    `envconfig:"GEMINI_MAX_OUTPUT_TOKENS" default:"1000"`
}

// StoreConfig 描述面试记录的服务端存储。
type StoreConfig struct {
	Driver      string `envconfig:"STORE_DRIVER" default:"bolt"`
	BoltPath    string `envconfig:"STORE_BOLT_PATH" default:"data/interviews.bolt"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.Server.Port = strings.TrimSpace(c.Server.Port)
	c.AI.APIKey = strings.TrimSpace(c.AI.APIKey)
	c.AI.BaseURL = strings.TrimRight(strings.TrimSpace(c.AI.BaseURL), "/")
	c.AI.ModelVersions = trimAll(c.AI.ModelVersions)
	c.Server.AllowedOrigins = trimAll(c.Server.AllowedOrigins)
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
}

// Validate 校验配置的合法性。
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("invalid environment: %s (must be one of: development, production, test)", c.Env)
	}

	if c.AI.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.AI.DefaultModel == "" {
		return fmt.Errorf("GEMINI_DEFAULT_MODEL must not be empty")
	}
	if c.AI.MaxOutputTokens < 1 {
		return fmt.Errorf("GEMINI_MAX_OUTPUT_TOKENS must be at least 1")
	}

	if _, err := c.Server.Addr(); err != nil {
		return err
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	switch c.Store.Driver {
	case StoreDriverNone, StoreDriverMemory:
	case StoreDriverBolt:
		if strings.TrimSpace(c.Store.BoltPath) == "" {
			return fmt.Errorf("STORE_BOLT_PATH is required for the bolt store")
		}
	case StoreDriverPostgres:
		if strings.TrimSpace(c.Store.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER: %s (must be one of: bolt, postgres, memory, none)", c.Store.Driver)
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Addr 解析服务器监听地址。
func (c ServerConfig) Addr() (string, error) {
	port := c.Port
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3000" 或 "127.0.0.1:3000"。
		return port, nil
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}
	return ":" + port, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
