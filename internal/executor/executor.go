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

// Package executor 顺序执行 Plan 并产出执行报告。
// 桌面动作天然串行：同一时刻只能有一个任务驱动鼠标键盘，
// 跨任务的互斥由 Executor 内部锁保证。
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/billkhiz-bit/desktop-automation-agent/internal/action"
	"github.com/billkhiz-bit/desktop-automation-agent/internal/automation"
	"github.com/billkhiz-bit/desktop-automation-agent/internal/plan"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/log"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/metrics"
)

// DefaultStepDelay 步骤之间的静置时间（给桌面 UI 反应的余量）
const DefaultStepDelay = 200 * time.Millisecond

// Executor 按 Plan 顺序驱动 Automation 能力。
// 已完成步骤的 OS 副作用不可回滚，后续失败不影响先前记录；部分完成是合法终态。
type Executor struct {
	auto      automation.Automation
	logger    *log.Logger
	stepDelay time.Duration

	// mu 串行化整机的自动化调用；并发任务在此排队
	mu sync.Mutex
}

// NewExecutor 创建执行器；stepDelay<=0 使用默认值
func NewExecutor(auto automation.Automation, logger *log.Logger, stepDelay time.Duration) *Executor {
	if stepDelay <= 0 {
		stepDelay = DefaultStepDelay
	}
	return &Executor{auto: auto, logger: logger, stepDelay: stepDelay}
}

// Execute 顺序执行全部步骤：上一步完全结束（成功或失败）后才开始下一步。
// 阻塞步骤失败后剩余步骤全部记 skipped；可继续步骤失败仅记录并继续。
// 单步失败永远不以 error 上抛，全部体现在报告里。
func (e *Executor) Execute(ctx context.Context, p *plan.Plan) Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := make(Report, 0, p.Len())
	aborted := false

	for i, a := range p.Actions {
		if aborted || ctx.Err() != nil {
			report = append(report, StepResult{Action: a, Status: StatusSkipped, At: time.Now()})
			metrics.StepTotal.WithLabelValues(string(a.Kind), string(StatusSkipped)).Inc()
			continue
		}

		start := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, a.Timeout())
		output, err := e.dispatch(stepCtx, a)
		cancel()
		metrics.StepDuration.WithLabelValues(string(a.Kind)).Observe(time.Since(start).Seconds())

		if err != nil {
			if stepCtx.Err() == context.DeadlineExceeded {
				err = fmt.Errorf("步骤超时（%s）: %w", a.Timeout(), err)
			}
			report = append(report, StepResult{Action: a, Status: StatusFailed, Error: err.Error(), At: time.Now()})
			metrics.StepTotal.WithLabelValues(string(a.Kind), string(StatusFailed)).Inc()
			if e.logger != nil {
				e.logger.Warn("步骤执行失败", "index", i, "action", a.String(), "error", err)
			}
			if a.Kind.Blocking() {
				// 后续步骤大概率依赖本步结果（如应用已打开），直接中止
				aborted = true
			}
			continue
		}

		report = append(report, StepResult{Action: a, Status: StatusSucceeded, Output: output, At: time.Now()})
		metrics.StepTotal.WithLabelValues(string(a.Kind), string(StatusSucceeded)).Inc()
		if e.logger != nil {
			e.logger.Debug("步骤执行成功", "index", i, "action", a.String())
		}

		if i < p.Len()-1 {
			select {
			case <-time.After(e.stepDelay):
			case <-ctx.Done():
			}
		}
	}
	return report
}

// dispatch 按动作类型调用对应能力
func (e *Executor) dispatch(ctx context.Context, a action.Action) (string, error) {
	switch a.Kind {
	case action.KindOpenApp:
		return "", e.auto.OpenApplication(ctx, a.Name)
	case action.KindTypeText:
		return "", e.auto.TypeText(ctx, a.Text)
	case action.KindKeyPress:
		return "", e.auto.SendKeyCombo(ctx, a.Combo)
	case action.KindClick:
		return "", e.auto.Click(ctx, a.X, a.Y)
	case action.KindWait:
		return "", e.auto.Wait(ctx, a.Seconds)
	case action.KindScreenshot:
		return e.auto.CaptureScreenshot(ctx)
	default:
		return "", fmt.Errorf("未知动作类型: %s", a.Kind)
	}
}
