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

package plan

import (
	"encoding/json"

	"github.com/billkhiz-bit/desktop-automation-agent/internal/action"
)

// Plan 一次任务的有序动作序列；解析完成后不可变，执行后即丢弃。
// Actions 为空仅在 NoOp 显式置位时合法（如 help 类即答响应）。
type Plan struct {
	Actions []action.Action
	NoOp    bool
	Message string // NoOp 响应携带的说明文字
}

// New 由已校验的动作序列构造 Plan
func New(actions []action.Action) *Plan {
	return &Plan{Actions: actions}
}

// NewNoOp 构造无步骤的即答 Plan
func NewNoOp(message string) *Plan {
	return &Plan{NoOp: true, Message: message}
}

// Len 步骤数
func (p *Plan) Len() int {
	return len(p.Actions)
}

// MarshalJSON Plan 在 wire 层序列化为动作数组
func (p *Plan) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Actions)
}
