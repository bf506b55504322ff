package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	Inference ServerConfig
	Client    ClientConfig
	App       AppConfig
	AI        AIConfig
	LogLevel  string
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig("PORT", "8080")
	if err != nil {
		return nil, err
	}

	inference, err := loadServerConfig("INFERENCE_PORT", "8081")
	if err != nil {
		return nil, err
	}

	client, err := loadClientConfig()
	if err != nil {
		return nil, err
	}

	app, err := loadAppConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		Inference: inference,
		Client:    client,
		App:       app,
		AI:        ai,
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(key, defaultPort string) (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv(key))
	if port == "" {
		port = defaultPort
	}

	origins := splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid %s value: %q", key, port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// ClientConfig 描述推理接口的调用配置。
type ClientConfig struct {
	BaseURL  string
	Endpoint string
	// Timeout 为 0 表示不设超时，请求只受 context 约束。
	Timeout time.Duration
}

func loadClientConfig() (ClientConfig, error) {
	timeout, err := parseDurationEnv("API_TIMEOUT", 0)
	if err != nil {
		return ClientConfig{}, err
	}
	if timeout < 0 {
		return ClientConfig{}, fmt.Errorf("invalid API_TIMEOUT value %s: must not be negative", timeout)
	}

	endpoint := getEnvOrDefault("API_ENDPOINT", "", "NEXT_PUBLIC_API_ENDPOINT")
	if endpoint == "" {
		endpoint = "/get"
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	return ClientConfig{
		BaseURL:  getEnvOrDefault("API_BASE_URL", "http://localhost:8081", "NEXT_PUBLIC_API_BASE_URL"),
		Endpoint: endpoint,
		Timeout:  timeout,
	}, nil
}

// AppConfig 描述界面展示用的应用信息。
type AppConfig struct {
	Name             string
	Description      string
	MaxMessageLength int
	// SessionIdleTTL 为无连接会话的保留时长。
	SessionIdleTTL   time.Duration
}

func loadAppConfig() (AppConfig, error) {
	maxLength := 1000
	if override, err := parseOptionalIntEnv("MAX_MESSAGE_LENGTH"); err != nil {
		return AppConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AppConfig{}, fmt.Errorf("invalid MAX_MESSAGE_LENGTH value %d: must be positive", *override)
		}
		maxLength = *override
	}

	ttl, err := parseDurationEnv("SESSION_IDLE_TTL", 30*time.Minute)
	if err != nil {
		return AppConfig{}, err
	}
	if ttl <= 0 {
		return AppConfig{}, fmt.Errorf("invalid SESSION_IDLE_TTL value %s: must be positive", ttl)
	}

	return AppConfig{
		Name:             getEnvOrDefault("APP_NAME", "", "NEXT_PUBLIC_APP_NAME"),
		Description:      getEnvOrDefault("APP_DESCRIPTION", "", "NEXT_PUBLIC_APP_DESCRIPTION"),
		MaxMessageLength: maxLength,
		SessionIdleTTL:   ttl,
	}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	Version     string
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Version:     getEnvOrDefault("APP_VERSION", "1.0.0"),
	}, nil
}

// getEnvOrDefault 依次读取 key 与别名，全部为空时返回默认值。
func getEnvOrDefault(key, defaultValue string, aliases ...string) string {
	for _, k := range append([]string{key}, aliases...) {
		if value := strings.TrimSpace(os.Getenv(k)); value != "" {
			return value
		}
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
