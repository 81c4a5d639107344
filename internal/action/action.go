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

// Package action 定义桌面自动化的原语闭集与校验。
// 模型输出永远不直接映射到可执行类型：先宽松解码为 RawStep，再经 Validator 收敛为 Action。
package action

import (
	"fmt"
	"strings"
	"time"

	"github.com/billkhiz-bit/desktop-automation-agent/pkg/errors"
)

// Kind 动作类型（闭集）
type Kind string

const (
	KindOpenApp    Kind = "open_app"
	KindTypeText   Kind = "type_text"
	KindKeyPress   Kind = "key_press"
	KindClick      Kind = "click"
	KindWait       Kind = "wait"
	KindScreenshot Kind = "screenshot"
)

// Kinds 全部合法动作类型，按稳定顺序（供 Prompt 词表生成）
func Kinds() []Kind {
	return []Kind{KindOpenApp, KindTypeText, KindKeyPress, KindClick, KindWait, KindScreenshot}
}

// Valid 是否属于闭集
func (k Kind) Valid() bool {
	switch k {
	case KindOpenApp, KindTypeText, KindKeyPress, KindClick, KindWait, KindScreenshot:
		return true
	}
	return false
}

// Blocking 阻塞性动作：失败后后续步骤失去意义，执行器整体中止并标记 skipped。
// wait 与 screenshot 是可继续动作，失败只记录不中止。
func (k Kind) Blocking() bool {
	switch k {
	case KindOpenApp, KindTypeText, KindKeyPress, KindClick:
		return true
	}
	return false
}

// baseTimeout 各动作类型的静态超时；wait 在 Action.Timeout 里按参数另算
func (k Kind) baseTimeout() time.Duration {
	switch k {
	case KindOpenApp:
		return 15 * time.Second
	case KindTypeText:
		return 10 * time.Second
	case KindKeyPress, KindClick:
		return 3 * time.Second
	case KindScreenshot:
		return 10 * time.Second
	default:
		return 5 * time.Second
	}
}

// Description 供 Prompt 词表使用的动作说明
func (k Kind) Description() string {
	switch k {
	case KindOpenApp:
		return `open_app{"name"}: open an application (notepad, chrome, calculator, ...)`
	case KindTypeText:
		return `type_text{"text"}: type text on the keyboard`
	case KindKeyPress:
		return `key_press{"combo"}: press a key or shortcut (enter, tab, ctrl+c, ...)`
	case KindClick:
		return `click{"x","y"}: click at a screen position`
	case KindWait:
		return `wait{"seconds"}: wait for an app to load`
	case KindScreenshot:
		return `screenshot{}: capture the screen to verify`
	default:
		return string(k)
	}
}

// Action 校验后的单个自动化步骤；只携带该类型所需的参数
type Action struct {
	Kind        Kind    `json:"action"`
	Name        string  `json:"name,omitempty"`
	Text        string  `json:"text,omitempty"`
	Combo       string  `json:"combo,omitempty"`
	X           int     `json:"x,omitempty"`
	Y           int     `json:"y,omitempty"`
	Seconds     float64 `json:"seconds,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Timeout 该步骤的执行超时；wait 为参数秒数加固定余量
func (a Action) Timeout() time.Duration {
	if a.Kind == KindWait {
		return time.Duration(a.Seconds*float64(time.Second)) + 2*time.Second
	}
	return a.Kind.baseTimeout()
}

// String 日志展示
func (a Action) String() string {
	switch a.Kind {
	case KindOpenApp:
		return fmt.Sprintf("open_app(%s)", a.Name)
	case KindTypeText:
		return fmt.Sprintf("type_text(%q)", a.Text)
	case KindKeyPress:
		return fmt.Sprintf("key_press(%s)", a.Combo)
	case KindClick:
		return fmt.Sprintf("click(%d,%d)", a.X, a.Y)
	case KindWait:
		return fmt.Sprintf("wait(%gs)", a.Seconds)
	default:
		return string(a.Kind)
	}
}

// RawStep 模型输出中的候选步骤（宽松解码，未知字段忽略）。
// 同时兼容扁平字段与原始实现的嵌套 params 形式。
type RawStep struct {
	Action      string                 `json:"action"`
	Name        string                 `json:"name,omitempty"`
	Text        string                 `json:"text,omitempty"`
	Combo       string                 `json:"combo,omitempty"`
	Key         string                 `json:"key,omitempty"`
	X           *float64               `json:"x,omitempty"`
	Y           *float64               `json:"y,omitempty"`
	Seconds     *float64               `json:"seconds,omitempty"`
	Description string                 `json:"description,omitempty"`
	Params      map[string]interface{} `json:"params,omitempty"`
}

// DefaultMaxWaitSeconds wait 参数上限默认值，防止幻觉计划长期挂起
const DefaultMaxWaitSeconds = 30

// Validator 原语校验器；纯函数，无副作用
type Validator struct {
	MaxWaitSeconds float64
}

// NewValidator 创建校验器，maxWaitSeconds<=0 时使用默认上限
func NewValidator(maxWaitSeconds float64) Validator {
	if maxWaitSeconds <= 0 {
		maxWaitSeconds = DefaultMaxWaitSeconds
	}
	return Validator{MaxWaitSeconds: maxWaitSeconds}
}

// Validate 将候选步骤收敛为类型完备的 Action；失败时指明出错字段
func (v Validator) Validate(raw RawStep) (Action, error) {
	kind := normalizeKind(raw.Action)
	if !kind.Valid() {
		return Action{}, errors.Wrapf(errors.ErrInvalidArg, "未知动作类型 %q", raw.Action)
	}

	raw = mergeParams(raw)
	a := Action{Kind: kind, Description: raw.Description}

	switch kind {
	case KindOpenApp:
		if strings.TrimSpace(raw.Name) == "" {
			return Action{}, errors.Wrap(errors.ErrInvalidArg, "open_app 缺少 name")
		}
		a.Name = strings.TrimSpace(raw.Name)
	case KindTypeText:
		if raw.Text == "" {
			return Action{}, errors.Wrap(errors.ErrInvalidArg, "type_text 缺少 text")
		}
		a.Text = raw.Text
	case KindKeyPress:
		combo := raw.Combo
		if combo == "" {
			combo = raw.Key
		}
		if strings.TrimSpace(combo) == "" {
			return Action{}, errors.Wrap(errors.ErrInvalidArg, "key_press 缺少 combo")
		}
		a.Combo = strings.ToLower(strings.TrimSpace(combo))
	case KindClick:
		if raw.X == nil || raw.Y == nil {
			return Action{}, errors.Wrap(errors.ErrInvalidArg, "click 缺少 x/y 坐标")
		}
		if *raw.X < 0 || *raw.Y < 0 {
			return Action{}, errors.Wrapf(errors.ErrInvalidArg, "click 坐标越界 (%g,%g)", *raw.X, *raw.Y)
		}
		a.X = int(*raw.X)
		a.Y = int(*raw.Y)
	case KindWait:
		if raw.Seconds == nil {
			return Action{}, errors.Wrap(errors.ErrInvalidArg, "wait 缺少 seconds")
		}
		if *raw.Seconds < 0 {
			return Action{}, errors.Wrapf(errors.ErrInvalidArg, "wait.seconds 为负数 (%g)", *raw.Seconds)
		}
		if *raw.Seconds > v.MaxWaitSeconds {
			return Action{}, errors.Wrapf(errors.ErrInvalidArg, "wait.seconds 超出上限 %g (%g)", v.MaxWaitSeconds, *raw.Seconds)
		}
		a.Seconds = *raw.Seconds
	case KindScreenshot:
		// 无参数
	}
	return a, nil
}

// normalizeKind 归一化动作名；原始实现的词表（type/press/hotkey）映射到闭集
func normalizeKind(name string) Kind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "type":
		return KindTypeText
	case "press", "hotkey":
		return KindKeyPress
	default:
		return Kind(strings.ToLower(strings.TrimSpace(name)))
	}
}

// mergeParams 将嵌套 params 中的字段并入扁平字段（扁平字段优先）
func mergeParams(raw RawStep) RawStep {
	if raw.Params == nil {
		return raw
	}
	if raw.Name == "" {
		raw.Name, _ = raw.Params["name"].(string)
	}
	if raw.Text == "" {
		raw.Text, _ = raw.Params["text"].(string)
	}
	if raw.Combo == "" {
		raw.Combo, _ = raw.Params["combo"].(string)
	}
	if raw.Key == "" {
		if k, ok := raw.Params["key"].(string); ok {
			raw.Key = k
		} else if ks, ok := raw.Params["keys"].(string); ok {
			parts := strings.Split(ks, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			raw.Key = strings.Join(parts, "+")
		} else if list, ok := raw.Params["keys"].([]interface{}); ok {
			parts := make([]string, 0, len(list))
			for _, it := range list {
				if s, ok := it.(string); ok {
					parts = append(parts, s)
				}
			}
			raw.Key = strings.Join(parts, "+")
		}
	}
	if raw.X == nil {
		raw.X = paramNumber(raw.Params["x"])
	}
	if raw.Y == nil {
		raw.Y = paramNumber(raw.Params["y"])
	}
	if raw.Seconds == nil {
		raw.Seconds = paramNumber(raw.Params["seconds"])
	}
	return raw
}

// paramNumber JSON 反序列化后的数字统一为 float64
func paramNumber(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	}
	return nil
}
