package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client LLM 文本补全客户端接口。
// 规划是单轮调用，接口只保留文本生成；模型与 Key 启动时定死，运行期不可变。
type Client interface {
	// Generate 生成文本
	Generate(prompt string, options GenerateOptions) (string, error)
	// GenerateWithContext 使用上下文生成文本（超时/取消由调用方控制）
	GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error)
	// Model 返回模型名称
	Model() string
	// Provider 返回提供商名称
	Provider() string
}

// GenerateOptions 生成选项
type GenerateOptions struct {
	Temperature float64  `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
	TopP        float64  `json:"top_p"`
	Stop        []string `json:"stop"`
}

// ClientConfig 客户端构造参数
type ClientConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string        // ollama 地址或 OpenAI 兼容端点；空则用各 Provider 默认
	Timeout  time.Duration // 单次调用超时；<=0 用各 Provider 默认
}

// NewClient 按配置创建 LLM 客户端；provider 为闭集，未知值报错
func NewClient(cfg ClientConfig) (Client, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaClient(cfg.Model, cfg.BaseURL, cfg.Timeout)
	case "openai":
		return NewOpenAIClient(cfg.Model, cfg.APIKey, cfg.BaseURL, cfg.Timeout)
	case "anthropic":
		return NewAnthropicClient(cfg.Model, cfg.APIKey, cfg.Timeout)
	case "gemini":
		return NewGeminiClient(cfg.Model, cfg.APIKey, cfg.Timeout)
	default:
		return nil, fmt.Errorf("未知 LLM provider: %q", cfg.Provider)
	}
}

// newRestyClient 各 Provider 共用的 HTTP 客户端设置
func newRestyClient(timeout time.Duration) *resty.Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(1 * time.Second)
	client.SetRetryMaxWaitTime(5 * time.Second)
	return client
}
