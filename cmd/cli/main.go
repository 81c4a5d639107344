package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const wakeWord = "hey agent"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}
	cmd := os.Args[1]
	args := os.Args[2:]
	switch cmd {
	case "version":
		fmt.Println("deskagent cli 0.1.0")
	case "health":
		runHealth()
	case "config":
		runConfig()
	case "run":
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: deskagent run \"<task>\"")
			os.Exit(1)
		}
		runOnce(strings.Join(args, " "))
	case "repl":
		runRepl()
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: deskagent <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  health          服务健康检查")
	fmt.Println("  config          查看服务配置（Key 脱敏）")
	fmt.Println("  run \"<task>\"    提交一条自然语言任务")
	fmt.Println("  repl            进入交互模式")
	fmt.Println("  version         版本号")
}

func runHealth() {
	out, err := getHealth()
	if err != nil {
		fmt.Fprintf(os.Stderr, "健康检查失败: %v\n", err)
		os.Exit(1)
	}
	printJSON(out)
}

func runConfig() {
	out, err := getConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取配置失败: %v\n", err)
		os.Exit(1)
	}
	printJSON(out)
}

func runOnce(task string) {
	out, err := runTask(task)
	if err != nil {
		fmt.Fprintf(os.Stderr, "任务失败: %v\n", err)
		os.Exit(1)
	}
	printJSON(out)
}

// runRepl 交互模式；支持唤醒词前缀，exit/quit 退出
func runRepl() {
	fmt.Printf("交互模式：输入任务（可带 %q 前缀），exit 退出\n", wakeWord)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}
		task := stripWakeWord(line)
		if task == "" {
			fmt.Println("我在听，请说任务内容")
			continue
		}
		out, err := runTask(task)
		if err != nil {
			fmt.Fprintf(os.Stderr, "任务失败: %v\n", err)
			continue
		}
		printJSON(out)
	}
}

func stripWakeWord(line string) string {
	lower := strings.ToLower(line)
	if strings.HasPrefix(lower, wakeWord) {
		return strings.TrimSpace(line[len(wakeWord):])
	}
	return line
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(data))
}
