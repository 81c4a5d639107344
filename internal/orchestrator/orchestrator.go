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

// Package orchestrator 负责端到端的任务处理：
// 任务文本 → 规划提示词 → LLM → 计划解析 → 顺序执行 → 结果汇总。
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/billkhiz-bit/desktop-automation-agent/internal/action"
	"github.com/billkhiz-bit/desktop-automation-agent/internal/executor"
	"github.com/billkhiz-bit/desktop-automation-agent/internal/llm"
	"github.com/billkhiz-bit/desktop-automation-agent/internal/plan"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/errors"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/log"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/metrics"
)

// Result 一次任务运行的最终产出：计划 + 执行报告
type Result struct {
	Plan    *plan.Plan      `json:"plan"`
	Report  executor.Report `json:"report"`
	Message string          `json:"message,omitempty"` // NoOp 即答内容
}

// Orchestrator 规划编排器；规划失败（LLM/解析）时不触发任何 OS 副作用
type Orchestrator struct {
	client llm.Client
	parser *plan.Parser
	exec   *executor.Executor
	logger *log.Logger
}

// New 创建编排器
func New(client llm.Client, parser *plan.Parser, exec *executor.Executor, logger *log.Logger) *Orchestrator {
	return &Orchestrator{client: client, parser: parser, exec: exec, logger: logger}
}

// Run 处理一条任务。LLM 调用失败返回 ErrPlanning，解析失败返回
// ErrPlanFormat/ErrPlanEmpty，三者都发生在任何桌面动作之前；
// 执行阶段的单步失败只体现在报告里，不作为 error 返回。
func (o *Orchestrator) Run(ctx context.Context, task string) (*Result, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, errors.Wrap(errors.ErrInvalidArg, "任务内容为空")
	}

	runID := uuid.NewString()
	start := time.Now()
	logger := o.logger
	if logger != nil {
		logger.Info("收到任务", "run_id", runID, "task", task)
	}

	// 简单指令直接构造计划，不经过 LLM
	if p := o.quickPlan(task); p != nil {
		if p.NoOp {
			return &Result{Plan: p, Report: executor.Report{}, Message: p.Message}, nil
		}
		report := o.exec.Execute(ctx, p)
		o.finish(runID, start, report)
		return &Result{Plan: p, Report: report}, nil
	}

	prompt := BuildPlanPrompt(task)
	llmStart := time.Now()
	reply, err := o.client.GenerateWithContext(ctx, prompt, llm.GenerateOptions{
		Temperature: 0.1,
		MaxTokens:   1024,
	})
	metrics.LLMDuration.WithLabelValues(o.client.Provider()).Observe(time.Since(llmStart).Seconds())
	if err != nil {
		metrics.TaskTotal.WithLabelValues("planning_error").Inc()
		if logger != nil {
			logger.Error("LLM 规划调用失败", "run_id", runID, "provider", o.client.Provider(), "error", err)
		}
		return nil, errors.Wrapf(errors.ErrPlanning, "LLM 调用失败: %v", err)
	}

	p, err := o.parser.Parse(reply)
	if err != nil {
		metrics.TaskTotal.WithLabelValues(errors.Kind(err)).Inc()
		if logger != nil {
			logger.Warn("计划解析失败", "run_id", runID, "error", err)
		}
		return nil, err
	}
	if logger != nil {
		logger.Info("计划生成完成", "run_id", runID, "steps", p.Len())
	}

	report := o.exec.Execute(ctx, p)
	o.finish(runID, start, report)
	return &Result{Plan: p, Report: report}, nil
}

// finish 任务收尾：指标与日志
func (o *Orchestrator) finish(runID string, start time.Time, report executor.Report) {
	outcome := "completed"
	if !report.Succeeded() {
		outcome = "partial"
	}
	metrics.TaskTotal.WithLabelValues(outcome).Inc()
	metrics.TaskDuration.WithLabelValues(o.client.Provider()).Observe(time.Since(start).Seconds())
	if o.logger != nil {
		succeeded, failed, skipped := report.Counts()
		o.logger.Info("任务执行结束", "run_id", runID, "outcome", outcome,
			"succeeded", succeeded, "failed", failed, "skipped", skipped)
	}
}

// quickPlan 无需 LLM 的快捷指令；不匹配时返回 nil 走常规规划
func (o *Orchestrator) quickPlan(task string) *plan.Plan {
	lower := strings.ToLower(task)
	switch {
	case lower == "help" || lower == "?" || lower == "hi" || lower == "hello":
		return plan.NewNoOp(helpMessage(o.client.Provider()))
	case strings.HasPrefix(lower, "open ") && !strings.Contains(lower, " and "):
		name := strings.TrimSpace(task[len("open "):])
		if name == "" {
			return nil
		}
		return plan.New([]action.Action{{Kind: action.KindOpenApp, Name: name}})
	case lower == "screenshot" || lower == "take a screenshot":
		return plan.New([]action.Action{{Kind: action.KindScreenshot}})
	}
	return nil
}

// helpMessage 即答的使用说明
func helpMessage(provider string) string {
	return `DESKTOP AUTOMATION AGENT

Just describe what you want to do:

  "Open calculator"
  "Open notepad and type Hello World"
  "Take a screenshot"

The agent will plan and execute the steps automatically.

Powered by: ` + strings.ToUpper(provider)
}
