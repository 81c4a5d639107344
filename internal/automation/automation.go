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

// Package automation 提供执行器消费的桌面自动化能力集。
// 所有方法接受 context，超时与取消由调用方（执行器）控制；
// 失败均可恢复，按执行器的 per-step 策略处理。
package automation

import "context"

// Automation 桌面自动化能力集
type Automation interface {
	// OpenApplication 按名称打开应用
	OpenApplication(ctx context.Context, name string) error
	// TypeText 模拟键盘输入文本
	TypeText(ctx context.Context, text string) error
	// SendKeyCombo 按下按键或组合键（如 "enter"、"ctrl+c"）
	SendKeyCombo(ctx context.Context, combo string) error
	// Click 点击屏幕坐标
	Click(ctx context.Context, x, y int) error
	// Wait 等待指定秒数（可被 ctx 取消）
	Wait(ctx context.Context, seconds float64) error
	// CaptureScreenshot 截屏并返回保存路径
	CaptureScreenshot(ctx context.Context) (string, error)
}
