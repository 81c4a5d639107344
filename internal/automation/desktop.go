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

package automation

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// command 待执行的系统命令（构造与执行分离，构造函数可单测）
type command struct {
	Name string
	Args []string
}

// runner 执行系统命令；测试中可替换
type runner func(ctx context.Context, cmd command) error

// Desktop 基于系统命令的 Automation 实现。
// linux 依赖 xdotool/gnome-screenshot，darwin 依赖 osascript/cliclick/screencapture，
// windows 走 powershell SendKeys。
type Desktop struct {
	goos          string
	screenshotDir string
	launchSettle  time.Duration // 应用启动后的静置时间
	run           runner
}

var _ Automation = (*Desktop)(nil)

// NewDesktop 创建当前平台的桌面自动化实现；screenshotDir 为空时默认 ~/Desktop/screenshots
func NewDesktop(screenshotDir string) *Desktop {
	if screenshotDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			screenshotDir = filepath.Join(home, "Desktop", "screenshots")
		} else {
			screenshotDir = "screenshots"
		}
	}
	return &Desktop{
		goos:          runtime.GOOS,
		screenshotDir: screenshotDir,
		launchSettle:  1500 * time.Millisecond,
		run:           runCommand,
	}
}

// runCommand 默认 runner
func runCommand(ctx context.Context, cmd command) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	out, err := c.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s: %v (%s)", cmd.Name, err, msg)
		}
		return fmt.Errorf("%s: %v", cmd.Name, err)
	}
	return nil
}

// OpenApplication 实现 Automation；启动后静置等窗口出现
func (d *Desktop) OpenApplication(ctx context.Context, name string) error {
	cmd := openAppCommand(d.goos, resolveApp(d.goos, name))
	if err := d.run(ctx, cmd); err != nil {
		return fmt.Errorf("打开应用 %q 失败: %w", name, err)
	}
	select {
	case <-time.After(d.launchSettle):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// TypeText 实现 Automation
func (d *Desktop) TypeText(ctx context.Context, text string) error {
	cmd, err := typeTextCommand(d.goos, text)
	if err != nil {
		return err
	}
	return d.run(ctx, cmd)
}

// SendKeyCombo 实现 Automation
func (d *Desktop) SendKeyCombo(ctx context.Context, combo string) error {
	cmd, err := keyComboCommand(d.goos, combo)
	if err != nil {
		return err
	}
	return d.run(ctx, cmd)
}

// Click 实现 Automation
func (d *Desktop) Click(ctx context.Context, x, y int) error {
	cmd, err := clickCommand(d.goos, x, y)
	if err != nil {
		return err
	}
	return d.run(ctx, cmd)
}

// Wait 实现 Automation；纯等待，随 ctx 取消
func (d *Desktop) Wait(ctx context.Context, seconds float64) error {
	select {
	case <-time.After(time.Duration(seconds * float64(time.Second))):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CaptureScreenshot 实现 Automation；文件名带时间戳，目录不存在时创建
func (d *Desktop) CaptureScreenshot(ctx context.Context) (string, error) {
	if err := os.MkdirAll(d.screenshotDir, 0o755); err != nil {
		return "", fmt.Errorf("创建截图目录失败: %w", err)
	}
	path := filepath.Join(d.screenshotDir, "screenshot_"+time.Now().Format("20060102_150405")+".png")
	cmd, err := screenshotCommand(d.goos, path)
	if err != nil {
		return "", err
	}
	if err := d.run(ctx, cmd); err != nil {
		return "", fmt.Errorf("截屏失败: %w", err)
	}
	return path, nil
}

// --- 各平台命令构造（纯函数） ---

func openAppCommand(goos, exe string) command {
	switch goos {
	case "windows":
		return command{Name: "cmd", Args: []string{"/c", "start", "", exe}}
	case "darwin":
		return command{Name: "open", Args: []string{"-a", exe}}
	default:
		return command{Name: "sh", Args: []string{"-c", shellQuote(exe) + " >/dev/null 2>&1 &"}}
	}
}

func typeTextCommand(goos, text string) (command, error) {
	switch goos {
	case "windows":
		script := fmt.Sprintf(`$w = New-Object -ComObject WScript.Shell; $w.SendKeys(%s)`, psQuote(escapeSendKeys(text)))
		return command{Name: "powershell", Args: []string{"-NoProfile", "-Command", script}}, nil
	case "darwin":
		script := fmt.Sprintf(`tell application "System Events" to keystroke %s`, osaQuote(text))
		return command{Name: "osascript", Args: []string{"-e", script}}, nil
	default:
		return command{Name: "xdotool", Args: []string{"type", "--delay", "20", "--", text}}, nil
	}
}

func keyComboCommand(goos, combo string) (command, error) {
	keys := strings.Split(combo, "+")
	switch goos {
	case "windows":
		seq, err := sendKeysCombo(keys)
		if err != nil {
			return command{}, err
		}
		script := fmt.Sprintf(`$w = New-Object -ComObject WScript.Shell; $w.SendKeys(%s)`, psQuote(seq))
		return command{Name: "powershell", Args: []string{"-NoProfile", "-Command", script}}, nil
	case "darwin":
		script, err := osaKeyCombo(keys)
		if err != nil {
			return command{}, err
		}
		return command{Name: "osascript", Args: []string{"-e", script}}, nil
	default:
		return command{Name: "xdotool", Args: []string{"key", "--", xdoKeyName(keys)}}, nil
	}
}

func clickCommand(goos string, x, y int) (command, error) {
	switch goos {
	case "windows":
		script := fmt.Sprintf(
			`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.Cursor]::Position = New-Object System.Drawing.Point(%d, %d); `+
				`$sig = '[DllImport("user32.dll")] public static extern void mouse_event(int f, int x, int y, int d, int e);'; `+
				`$m = Add-Type -MemberDefinition $sig -Name M -Namespace W -PassThru; $m::mouse_event(2, 0, 0, 0, 0); $m::mouse_event(4, 0, 0, 0, 0)`,
			x, y)
		return command{Name: "powershell", Args: []string{"-NoProfile", "-Command", script}}, nil
	case "darwin":
		return command{Name: "cliclick", Args: []string{fmt.Sprintf("c:%d,%d", x, y)}}, nil
	default:
		return command{Name: "xdotool", Args: []string{"mousemove", strconv.Itoa(x), strconv.Itoa(y), "click", "1"}}, nil
	}
}

func screenshotCommand(goos, path string) (command, error) {
	switch goos {
	case "windows":
		script := fmt.Sprintf(
			`Add-Type -AssemblyName System.Windows.Forms,System.Drawing; `+
				`$b = [System.Windows.Forms.Screen]::PrimaryScreen.Bounds; `+
				`$bmp = New-Object System.Drawing.Bitmap($b.Width, $b.Height); `+
				`$g = [System.Drawing.Graphics]::FromImage($bmp); $g.CopyFromScreen($b.Location, [System.Drawing.Point]::Empty, $b.Size); `+
				`$bmp.Save(%s)`, psQuote(path))
		return command{Name: "powershell", Args: []string{"-NoProfile", "-Command", script}}, nil
	case "darwin":
		return command{Name: "screencapture", Args: []string{"-x", path}}, nil
	default:
		return command{Name: "gnome-screenshot", Args: []string{"-f", path}}, nil
	}
}

// --- 键名与转义辅助 ---

// xdoKeyName xdotool 的键名与常用叫法的映射
func xdoKeyName(keys []string) string {
	mapped := make([]string, len(keys))
	for i, k := range keys {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "enter", "return":
			mapped[i] = "Return"
		case "esc", "escape":
			mapped[i] = "Escape"
		case "tab":
			mapped[i] = "Tab"
		case "space":
			mapped[i] = "space"
		case "backspace":
			mapped[i] = "BackSpace"
		case "delete", "del":
			mapped[i] = "Delete"
		case "up":
			mapped[i] = "Up"
		case "down":
			mapped[i] = "Down"
		case "left":
			mapped[i] = "Left"
		case "right":
			mapped[i] = "Right"
		case "win", "cmd", "super", "meta":
			mapped[i] = "super"
		default:
			mapped[i] = strings.ToLower(strings.TrimSpace(k))
		}
	}
	return strings.Join(mapped, "+")
}

// sendKeysCombo Windows SendKeys 语法：修饰键为前缀符号（^ctrl %alt +shift）
func sendKeysCombo(keys []string) (string, error) {
	prefix := ""
	var rest []string
	for _, k := range keys {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "ctrl", "control":
			prefix += "^"
		case "alt":
			prefix += "%"
		case "shift":
			prefix += "+"
		case "enter", "return":
			rest = append(rest, "{ENTER}")
		case "esc", "escape":
			rest = append(rest, "{ESC}")
		case "tab":
			rest = append(rest, "{TAB}")
		case "backspace":
			rest = append(rest, "{BACKSPACE}")
		case "delete", "del":
			rest = append(rest, "{DELETE}")
		case "up":
			rest = append(rest, "{UP}")
		case "down":
			rest = append(rest, "{DOWN}")
		case "left":
			rest = append(rest, "{LEFT}")
		case "right":
			rest = append(rest, "{RIGHT}")
		default:
			rest = append(rest, strings.ToLower(strings.TrimSpace(k)))
		}
	}
	if len(rest) == 0 {
		return "", fmt.Errorf("组合键 %v 缺少非修饰键", keys)
	}
	return prefix + strings.Join(rest, ""), nil
}

// osaKeyCombo macOS System Events 的 key code / keystroke 语法
func osaKeyCombo(keys []string) (string, error) {
	var modifiers []string
	main := ""
	for _, k := range keys {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "cmd", "command":
			modifiers = append(modifiers, "command down")
		case "ctrl", "control":
			modifiers = append(modifiers, "control down")
		case "alt", "option":
			modifiers = append(modifiers, "option down")
		case "shift":
			modifiers = append(modifiers, "shift down")
		default:
			main = strings.ToLower(strings.TrimSpace(k))
		}
	}
	if main == "" {
		return "", fmt.Errorf("组合键 %v 缺少非修饰键", keys)
	}
	// esc 没有 keystroke 表示，走 System Events 的 key code 命令
	cmd := "keystroke " + osaQuote(main)
	switch main {
	case "enter", "return":
		cmd = "keystroke return"
	case "esc", "escape":
		cmd = "key code 53"
	case "tab":
		cmd = "keystroke tab"
	}
	script := `tell application "System Events" to ` + cmd
	if len(modifiers) > 0 {
		script += " using {" + strings.Join(modifiers, ", ") + "}"
	}
	return script, nil
}

// escapeSendKeys SendKeys 的保留字符需要花括号包裹
func escapeSendKeys(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch r {
		case '+', '^', '%', '~', '(', ')', '{', '}', '[', ']':
			b.WriteRune('{')
			b.WriteRune(r)
			b.WriteRune('}')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func osaQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
