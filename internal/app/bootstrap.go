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

package app

import (
	"fmt"
	"time"

	"github.com/billkhiz-bit/desktop-automation-agent/internal/action"
	"github.com/billkhiz-bit/desktop-automation-agent/internal/automation"
	"github.com/billkhiz-bit/desktop-automation-agent/internal/executor"
	"github.com/billkhiz-bit/desktop-automation-agent/internal/llm"
	"github.com/billkhiz-bit/desktop-automation-agent/internal/orchestrator"
	"github.com/billkhiz-bit/desktop-automation-agent/internal/plan"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/config"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/log"
)

// Bootstrap 装配好的应用依赖；配置在此处读取一次，之后各组件只持有只读引用
type Bootstrap struct {
	Config       *config.Config
	Logger       *log.Logger
	Orchestrator *orchestrator.Orchestrator
}

// NewBootstrap 按配置装配全部组件
func NewBootstrap(cfg *config.Config) (*Bootstrap, error) {
	logger, err := log.NewLogger(&log.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	client, err := newLLMClient(cfg)
	if err != nil {
		return nil, err
	}

	validator := action.NewValidator(cfg.Agent.MaxWaitSeconds)
	parser := plan.NewParser(validator, logger)

	auto := automation.NewDesktop(cfg.Agent.ScreenshotDir)
	exec := executor.NewExecutor(auto, logger, parseDuration(cfg.Agent.StepDelay, executor.DefaultStepDelay))

	orc := orchestrator.New(client, parser, exec, logger)

	logger.Info("组件装配完成",
		"provider", cfg.Provider,
		"model", cfg.Model,
	)
	return &Bootstrap{
		Config:       cfg,
		Logger:       logger,
		Orchestrator: orc,
	}, nil
}

// newLLMClient 创建 LLM 客户端并按配置套上限流层
func newLLMClient(cfg *config.Config) (llm.Client, error) {
	client, err := llm.NewClient(llm.ClientConfig{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.OllamaURL,
		Timeout:  parseDuration(cfg.Agent.LLMTimeout, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("创建 LLM 客户端失败: %w", err)
	}

	if len(cfg.RateLimits.LLM) == 0 {
		return client, nil
	}
	limits := make(map[string]llm.LimitConfig, len(cfg.RateLimits.LLM))
	for provider, rl := range cfg.RateLimits.LLM {
		limits[provider] = llm.LimitConfig{
			RequestsPerMinute: rl.RequestsPerMinute,
			MaxConcurrent:     rl.MaxConcurrent,
		}
	}
	limiter := llm.NewRateLimiter(limits, llm.LimitConfig{})
	return llm.NewRateLimitedClient(client, limiter), nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
