package executor

import (
	"time"

	"github.com/billkhiz-bit/desktop-automation-agent/internal/action"
)

// StepStatus 单步执行状态
type StepStatus string

const (
	StatusSucceeded StepStatus = "succeeded"
	StatusFailed    StepStatus = "failed"
	StatusSkipped   StepStatus = "skipped"
)

// StepResult 执行报告中的一条记录；执行结束后不再变更
type StepResult struct {
	Action action.Action `json:"action"`
	Status StepStatus    `json:"status"`
	Error  string        `json:"error,omitempty"`
	Output string        `json:"output,omitempty"` // screenshot 等步骤的产出（文件路径）
	At     time.Time     `json:"at"`
}

// Report 一次任务运行的有序执行报告：每个被到达的步骤恰好一条记录，
// 顺序与 Plan 一致；阻塞步骤失败后剩余步骤以 skipped 记录。
type Report []StepResult

// Succeeded 是否全部步骤成功
func (r Report) Succeeded() bool {
	for _, s := range r {
		if s.Status != StatusSucceeded {
			return false
		}
	}
	return true
}

// Counts 按状态统计
func (r Report) Counts() (succeeded, failed, skipped int) {
	for _, s := range r {
		switch s.Status {
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return
}
