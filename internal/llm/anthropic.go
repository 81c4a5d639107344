package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// AnthropicClient Anthropic 客户端
type AnthropicClient struct {
	provider string
	model    string
	apiKey   string
	baseURL  string
	client   *resty.Client
}

// NewAnthropicClient 创建 Anthropic 客户端
func NewAnthropicClient(model, apiKey string, timeout time.Duration) (*AnthropicClient, error) {
	if model == "" {
		model = "claude-3-haiku-20240307"
	}
	baseURL := "https://api.anthropic.com/v1"
	if envURL := os.Getenv("ANTHROPIC_BASE_URL"); envURL != "" {
		baseURL = envURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &AnthropicClient{
		provider: "anthropic",
		model:    model,
		apiKey:   apiKey,
		baseURL:  baseURL,
		client:   newRestyClient(timeout),
	}, nil
}

// Generate 生成文本
func (c *AnthropicClient) Generate(prompt string, options GenerateOptions) (string, error) {
	return c.GenerateWithContext(context.Background(), prompt, options)
}

// GenerateWithContext 使用上下文生成文本
func (c *AnthropicClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	// 构建请求
	request := map[string]interface{}{
		"model":       c.model,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"temperature": options.Temperature,
		"max_tokens":  options.MaxTokens,
	}
	if len(options.Stop) > 0 {
		request["stop_sequences"] = options.Stop
	}

	// 发送请求
	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", c.apiKey).
		SetHeader("anthropic-version", "2023-06-01").
		SetBody(request).
		Post(c.baseURL + "/messages")

	if err != nil {
		return "", fmt.Errorf("调用 Anthropic API 失败: %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("Anthropic API 返回错误: %s", response.String())
	}

	// 解析响应
	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", fmt.Errorf("解析 Anthropic 响应失败: %w", err)
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("Anthropic API 没有返回结果")
	}
	return result.Content[0].Text, nil
}

// Model 返回模型名称
func (c *AnthropicClient) Model() string {
	return c.model
}

// Provider 返回提供商名称
func (c *AnthropicClient) Provider() string {
	return c.provider
}
