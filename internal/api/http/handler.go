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

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/billkhiz-bit/desktop-automation-agent/internal/orchestrator"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/config"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/errors"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/log"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/metrics"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/utils"
)

// TaskRunner 任务入口；由 orchestrator 实现，测试时可替换
type TaskRunner interface {
	Run(ctx context.Context, task string) (*orchestrator.Result, error)
}

// Handler HTTP 处理器
type Handler struct {
	runner TaskRunner
	cfg    *config.Config
	logger *log.Logger
}

// NewHandler 创建 HTTP 处理器
func NewHandler(runner TaskRunner, cfg *config.Config, logger *log.Logger) *Handler {
	return &Handler{runner: runner, cfg: cfg, logger: logger}
}

// AgentRequest POST /agent 请求体；task/query/message 三个字段任取其一
type AgentRequest struct {
	Task    string `json:"task"`
	Query   string `json:"query"`
	Message string `json:"message"`
}

// HealthCheck 健康检查
// GET /health
func (h *Handler) HealthCheck(c context.Context, ctx *app.RequestContext) {
	resp := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	}
	if h.cfg != nil {
		resp["provider"] = h.cfg.Provider
		resp["model"] = h.cfg.Model
	}
	ctx.JSON(consts.StatusOK, resp)
}

// GetConfig 对外暴露脱敏后的配置
// GET /config
func (h *Handler) GetConfig(c context.Context, ctx *app.RequestContext) {
	if h.cfg == nil {
		ctx.JSON(consts.StatusInternalServerError, map[string]string{
			"error":   "internal_error",
			"message": "配置未加载",
		})
		return
	}
	ctx.JSON(consts.StatusOK, h.cfg.Sanitized())
}

// Metrics Prometheus 文本格式指标
// GET /metrics
func (h *Handler) Metrics(c context.Context, ctx *app.RequestContext) {
	var buf bytes.Buffer
	if err := metrics.WritePrometheus(&buf); err != nil {
		ctx.JSON(consts.StatusInternalServerError, map[string]string{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}
	ctx.Data(consts.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}

// Agent 接收任务并执行
// POST /agent
func (h *Handler) Agent(c context.Context, ctx *app.RequestContext) {
	var req AgentRequest
	if err := json.Unmarshal(ctx.Request.Body(), &req); err != nil {
		ctx.JSON(consts.StatusBadRequest, map[string]string{
			"error":   "invalid_argument",
			"message": "请求体不是合法 JSON",
		})
		return
	}
	task := utils.CoalesceString(req.Task, req.Query, req.Message)
	if task == "" {
		ctx.JSON(consts.StatusBadRequest, map[string]string{
			"error":   "invalid_argument",
			"message": "task 不能为空",
		})
		return
	}

	result, err := h.runner.Run(c, task)
	if err != nil {
		kind := errors.Kind(err)
		ctx.JSON(statusForKind(kind), map[string]string{
			"error":   kind,
			"message": err.Error(),
		})
		return
	}

	// 部分完成也是 200：报告里如实反映各步骤结局
	resp := map[string]interface{}{
		"plan":   result.Plan,
		"report": result.Report,
	}
	if result.Message != "" {
		resp["message"] = result.Message
	}
	ctx.JSON(consts.StatusOK, resp)
}

// statusForKind 错误分类到 HTTP 状态码的映射
func statusForKind(kind string) int {
	switch kind {
	case "invalid_argument":
		return consts.StatusBadRequest
	case "plan_empty_error":
		return consts.StatusUnprocessableEntity
	case "planning_error", "plan_format_error":
		return consts.StatusBadGateway
	default:
		return consts.StatusInternalServerError
	}
}
