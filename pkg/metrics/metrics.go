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

package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，由 API 进程注册与暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		TaskDuration, TaskTotal,
		StepTotal, StepDuration,
		LLMDuration, RateLimitWaitSeconds,
	)
}

// TaskDuration 任务端到端耗时（秒）
var TaskDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "deskagent_task_duration_seconds",
		Help:    "任务端到端耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"provider"},
)

// TaskTotal 任务总数（按结果）
var TaskTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "deskagent_task_total",
		Help: "任务总数（按结果）",
	},
	[]string{"outcome"}, // completed | partial | planning_error | plan_format_error | plan_empty_error
)

// StepTotal 自动化步骤总数（按动作类型与状态）
var StepTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "deskagent_step_total",
		Help: "自动化步骤总数（按动作类型与状态）",
	},
	[]string{"action", "status"}, // status: succeeded | failed | skipped
)

// StepDuration 单步执行耗时（秒）
var StepDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "deskagent_step_duration_seconds",
		Help:    "单步执行耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"action"},
)

// LLMDuration LLM 规划调用耗时（秒）
var LLMDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "deskagent_llm_duration_seconds",
		Help:    "LLM 规划调用耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"provider"},
)

// RateLimitWaitSeconds 限流等待耗时（秒）
var RateLimitWaitSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "deskagent_rate_limit_wait_seconds",
		Help:    "限流等待耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"scope", "provider"},
)

// WritePrometheus 将 Prometheus 文本格式写入 w（供 Hertz 等复用）
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
