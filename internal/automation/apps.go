package automation

import "strings"

// 常用应用别名表；模型给的是人类叫法，这里映射到各平台的真实可执行名。
// 未命中的名字原样透传（用户可能直接给可执行名）。
var windowsApps = map[string]string{
	"notepad":    "notepad.exe",
	"calculator": "calc.exe",
	"chrome":     "chrome.exe",
	"firefox":    "firefox.exe",
	"edge":       "msedge.exe",
	"explorer":   "explorer.exe",
	"word":       "winword.exe",
	"excel":      "excel.exe",
	"powerpoint": "powerpnt.exe",
	"outlook":    "outlook.exe",
	"vscode":     "code",
	"terminal":   "wt.exe",
	"cmd":        "cmd.exe",
	"powershell": "powershell.exe",
}

var darwinApps = map[string]string{
	"notepad":    "TextEdit",
	"calculator": "Calculator",
	"chrome":     "Google Chrome",
	"firefox":    "Firefox",
	"finder":     "Finder",
	"vscode":     "Visual Studio Code",
	"terminal":   "Terminal",
	"safari":     "Safari",
}

var linuxApps = map[string]string{
	"notepad":    "gedit",
	"calculator": "gnome-calculator",
	"chrome":     "google-chrome",
	"firefox":    "firefox",
	"vscode":     "code",
	"terminal":   "gnome-terminal",
	"files":      "nautilus",
}

// resolveApp 将别名解析为平台可执行名
func resolveApp(goos, name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	var table map[string]string
	switch goos {
	case "windows":
		table = windowsApps
	case "darwin":
		table = darwinApps
	default:
		table = linuxApps
	}
	if exe, ok := table[key]; ok {
		return exe
	}
	return strings.TrimSpace(name)
}
