package orchestrator

import (
	"fmt"
	"strings"

	"github.com/billkhiz-bit/desktop-automation-agent/internal/action"
)

// planPromptTemplate 规划提示词：把模型出口收窄到动作闭集 + 纯 JSON 数组。
// 词表由 action 包生成，新增原语时提示词自动跟上。
const planPromptTemplate = `You are a desktop automation agent. Create a step-by-step plan to accomplish this task.

TASK: %q

AVAILABLE ACTIONS:
%s

Return a JSON array of steps. Each step is an object with an "action" field plus that action's parameters, and an optional "description".

Example for "Open notepad and type hello":
[
  {"action": "open_app", "name": "notepad", "description": "Open Notepad"},
  {"action": "wait", "seconds": 1, "description": "Wait for Notepad to load"},
  {"action": "type_text", "text": "hello", "description": "Type hello"}
]

Return ONLY the JSON array, no other text.`

// BuildPlanPrompt 纯函数：任务文本 → 完整规划提示词
func BuildPlanPrompt(task string) string {
	var vocab strings.Builder
	for _, k := range action.Kinds() {
		vocab.WriteString("- ")
		vocab.WriteString(k.Description())
		vocab.WriteString("\n")
	}
	return fmt.Sprintf(planPromptTemplate, task, strings.TrimRight(vocab.String(), "\n"))
}
