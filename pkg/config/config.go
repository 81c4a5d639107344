// Copyright 2026 billkhiz-bit
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "data/config.json"

// 支持的 LLM Provider（闭集，启动时校验）
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config 应用配置结构体；进程启动时加载一次，运行期间不可变
type Config struct {
	Provider  string `mapstructure:"provider"`
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	OllamaURL string `mapstructure:"ollama_url"`

	API        APIConfig        `mapstructure:"api"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Log        LogConfig        `mapstructure:"log"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	RateLimits RateLimitsConfig `mapstructure:"rate_limits"`
}

// APIConfig API 服务配置
type APIConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Timeout string `mapstructure:"timeout"`
}

// AgentConfig 规划与执行相关配置
type AgentConfig struct {
	MaxWaitSeconds float64 `mapstructure:"max_wait_seconds"` // wait 步骤参数上限，<=0 使用默认 30
	StepDelay      string  `mapstructure:"step_delay"`       // 步骤之间的间隔，如 "200ms"
	LLMTimeout     string  `mapstructure:"llm_timeout"`      // 规划调用超时，如 "30s"
	ScreenshotDir  string  `mapstructure:"screenshot_dir"`   // 截图目录，空则默认 ~/Desktop/screenshots
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig Prometheus 配置
type PrometheusConfig struct {
	Enable bool `mapstructure:"enable"`
}

// RateLimitsConfig 限流配置（LLM Provider 维度）
type RateLimitsConfig struct {
	LLM map[string]LLMRateLimitConfig `mapstructure:"llm"`
}

// LLMRateLimitConfig 单个 LLM Provider 的限流配置
type LLMRateLimitConfig struct {
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	MaxConcurrent     int     `mapstructure:"max_concurrent"`
}

// LoadConfig 加载配置文件；文件不存在时使用默认值并应用环境变量覆盖
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath == "" {
		configPath = DefaultConfigPath
	}
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("无法读取配置文件: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	applyEnvOverrides(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// setDefaults 默认值与原始行为保持一致
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderOllama)
	v.SetDefault("model", "qwen2.5:7b")
	v.SetDefault("ollama_url", "http://localhost:11434")
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 5001)
	v.SetDefault("agent.max_wait_seconds", 30)
	v.SetDefault("agent.step_delay", "200ms")
	v.SetDefault("agent.llm_timeout", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// applyEnvOverrides 环境变量覆盖；携带 Key 的环境变量同时隐含对应 Provider
func applyEnvOverrides(config *Config) {
	if p := os.Getenv("LLM_PROVIDER"); p != "" {
		config.Provider = p
	}
	if m := os.Getenv("LLM_MODEL"); m != "" {
		config.Model = m
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.APIKey = key
		config.Provider = ProviderOpenAI
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.APIKey = key
		config.Provider = ProviderAnthropic
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.APIKey = key
		config.Provider = ProviderGemini
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		config.APIKey = key
		config.Provider = ProviderGemini
	}
}

// Validate 启动时校验：Provider 必须在闭集内，云端 Provider 必须带 API Key
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOllama:
		// 本地 Provider，无需 Key
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("provider %q 需要 api_key（配置文件或环境变量）", c.Provider)
		}
	default:
		return fmt.Errorf("未知 provider: %q（可选 ollama/openai/anthropic/gemini）", c.Provider)
	}
	return nil
}

// Sanitized 返回可对外暴露的配置副本，API Key 做掩码处理
func (c *Config) Sanitized() map[string]interface{} {
	apiKey := ""
	if c.APIKey != "" {
		apiKey = "***hidden***"
	}
	return map[string]interface{}{
		"provider":   c.Provider,
		"model":      c.Model,
		"api_key":    apiKey,
		"ollama_url": c.OllamaURL,
	}
}
