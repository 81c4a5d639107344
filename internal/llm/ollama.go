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

// OllamaClient 本地 Ollama 客户端（原生 /api/generate 接口）
type OllamaClient struct {
	provider string
	model    string
	baseURL  string
	client   *resty.Client
}

// NewOllamaClient 创建 Ollama 客户端；baseURL 空时用默认或 OLLAMA_BASE_URL
func NewOllamaClient(model, baseURL string, timeout time.Duration) (*OllamaClient, error) {
	if model == "" {
		model = "qwen2.5:7b"
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
		if envURL := os.Getenv("OLLAMA_BASE_URL"); envURL != "" {
			baseURL = envURL
		}
	}
	if timeout <= 0 {
		// 本地推理比云端慢，默认超时放宽
		timeout = 60 * time.Second
	}

	return &OllamaClient{
		provider: "ollama",
		model:    model,
		baseURL:  baseURL,
		client:   newRestyClient(timeout),
	}, nil
}

// Generate 生成文本
func (c *OllamaClient) Generate(prompt string, options GenerateOptions) (string, error) {
	return c.GenerateWithContext(context.Background(), prompt, options)
}

// GenerateWithContext 使用上下文生成文本
func (c *OllamaClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	request := map[string]interface{}{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": options.Temperature,
			"num_predict": options.MaxTokens,
			"top_p":       options.TopP,
			"stop":        options.Stop,
		},
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		Post(c.baseURL + "/api/generate")

	if err != nil {
		return "", fmt.Errorf("调用 Ollama API 失败: %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("Ollama API 返回错误: %s", response.String())
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", fmt.Errorf("解析 Ollama 响应失败: %w", err)
	}
	if result.Response == "" {
		return "", fmt.Errorf("Ollama API 没有返回结果")
	}
	return result.Response, nil
}

// Model 返回模型名称
func (c *OllamaClient) Model() string {
	return c.model
}

// Provider 返回提供商名称
func (c *OllamaClient) Provider() string {
	return c.provider
}
