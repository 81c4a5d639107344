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
	"strings"

	"github.com/billkhiz-bit/desktop-automation-agent/internal/action"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/errors"
	"github.com/billkhiz-bit/desktop-automation-agent/pkg/log"
)

// Parser 将模型的自由文本输出解析为 Plan。
// 模型经常在计划外包裹解释性文字或 markdown 代码块，解析前先剥离；
// 单个非法步骤只丢弃并记日志，不拖垮整个计划。
type Parser struct {
	validator action.Validator
	logger    *log.Logger
}

// NewParser 创建解析器；logger 可为 nil（丢弃步骤时静默）
func NewParser(validator action.Validator, logger *log.Logger) *Parser {
	return &Parser{validator: validator, logger: logger}
}

// Parse 自由文本 → 严格解码 → 闭集校验。
// 定位不到负载或解码失败返回 ErrPlanFormat（不产出部分计划）；
// 过滤后没有任何合法步骤返回 ErrPlanEmpty。
// 前后缀文字里可能混着无关的可解码数组（如字面 "[]"），
// 按出现顺序逐个候选数组试校验，取第一个产出合法步骤的。
func (p *Parser) Parse(raw string) (*Plan, error) {
	arrays := decodeSteps(raw)
	if arrays == nil {
		return nil, errors.Wrap(errors.ErrPlanFormat, "模型输出中找不到可解码的步骤数组")
	}

	total := 0
	for _, candidates := range arrays {
		total += len(candidates)
		actions := make([]action.Action, 0, len(candidates))
		for i, candidate := range candidates {
			a, err := p.validator.Validate(candidate)
			if err != nil {
				if p.logger != nil {
					p.logger.Warn("丢弃非法步骤", "index", i, "action", candidate.Action, "error", err)
				}
				continue
			}
			actions = append(actions, a)
		}
		if len(actions) > 0 {
			return New(actions), nil
		}
	}

	return nil, errors.Wrapf(errors.ErrPlanEmpty, "过滤后无合法步骤（候选 %d 条）", total)
}

// decodeSteps 从包含任意前后缀文字的文本中解出全部候选步骤数组。
// 先剥 markdown 围栏，再对每个配平的 '['...']' 片段按出现顺序尝试解码；
// 没有任何片段可解码时返回 nil。
func decodeSteps(raw string) [][]action.RawStep {
	s := stripFences(strings.TrimSpace(raw))
	var out [][]action.RawStep
	for _, payload := range balancedArrays(s) {
		var candidates []action.RawStep
		if err := json.Unmarshal([]byte(payload), &candidates); err == nil {
			out = append(out, candidates)
		}
	}
	return out
}

// balancedArrays 返回文本中所有括号配平的顶层数组片段，按起始位置排序。
// 配平扫描跳过 JSON 字符串内部的括号。
func balancedArrays(s string) []string {
	var out []string
	for i := 0; i < len(s); i++ {
		if s[i] != '[' {
			continue
		}
		if end := matchBracket(s, i); end > i {
			out = append(out, s[i:end+1])
			i = end
		}
	}
	return out
}

// matchBracket 从 start 处的 '[' 扫描到配对的 ']'，找不到返回 -1
func matchBracket(s string, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// stripFences 剥离 ```json ... ``` 形式的代码块围栏
func stripFences(s string) string {
	idx := strings.Index(s, "```")
	if idx < 0 {
		return s
	}
	rest := s[idx+3:]
	// 跳过语言标记行（如 "json"）
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		head := strings.TrimSpace(rest[:nl])
		if head == "json" || head == "" {
			rest = rest[nl+1:]
		}
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
