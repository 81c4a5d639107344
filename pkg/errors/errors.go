// Package errors 提供统一错误辅助与任务级错误分类，不依赖 internal
package errors

import (
	"errors"
	"fmt"
)

// 任务级哨兵错误：命中任一即整个任务在执行前失败（见 HTTP 层映射）。
// 单步执行失败（StepExecutionError）只记录在执行报告里，永远不会以 error 形式上抛。
var (
	// ErrPlanning LLM 不可达 / 未授权 / Provider 返回异常
	ErrPlanning = errors.New("planning error")
	// ErrPlanFormat 模型输出无法解码为结构化计划
	ErrPlanFormat = errors.New("plan format error")
	// ErrPlanEmpty 解码成功但过滤后没有任何合法步骤
	ErrPlanEmpty = errors.New("plan empty error")
	// ErrInvalidArg 参数非法（校验失败时的底层错误）
	ErrInvalidArg = errors.New("invalid argument")
)

// Kind 返回错误对应的 wire 层分类标识，未知错误返回 "internal_error"
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrPlanFormat):
		return "plan_format_error"
	case errors.Is(err, ErrPlanEmpty):
		return "plan_empty_error"
	case errors.Is(err, ErrPlanning):
		return "planning_error"
	case errors.Is(err, ErrInvalidArg):
		return "invalid_argument"
	default:
		return "internal_error"
	}
}

// Wrap 包装错误并附加消息
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf 带格式的 Wrap
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
