package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/billkhiz-bit/desktop-automation-agent/internal/action"
	"github.com/billkhiz-bit/desktop-automation-agent/internal/plan"
)

// fakeAutomation 记录调用序列，可按动作类型注入失败
type fakeAutomation struct {
	mu    sync.Mutex
	calls []string
	fail  map[action.Kind]error
	block map[action.Kind]time.Duration // 指定类型的动作卡住指定时长
}

func newFakeAutomation() *fakeAutomation {
	return &fakeAutomation{fail: map[action.Kind]error{}, block: map[action.Kind]time.Duration{}}
}

func (f *fakeAutomation) record(ctx context.Context, kind action.Kind, desc string) error {
	f.mu.Lock()
	f.calls = append(f.calls, desc)
	f.mu.Unlock()
	if d, ok := f.block[kind]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.fail[kind]
}

func (f *fakeAutomation) OpenApplication(ctx context.Context, name string) error {
	return f.record(ctx, action.KindOpenApp, "open:"+name)
}

func (f *fakeAutomation) TypeText(ctx context.Context, text string) error {
	return f.record(ctx, action.KindTypeText, "type:"+text)
}

func (f *fakeAutomation) SendKeyCombo(ctx context.Context, combo string) error {
	return f.record(ctx, action.KindKeyPress, "key:"+combo)
}

func (f *fakeAutomation) Click(ctx context.Context, x, y int) error {
	return f.record(ctx, action.KindClick, fmt.Sprintf("click:%d,%d", x, y))
}

func (f *fakeAutomation) Wait(ctx context.Context, seconds float64) error {
	return f.record(ctx, action.KindWait, fmt.Sprintf("wait:%g", seconds))
}

func (f *fakeAutomation) CaptureScreenshot(ctx context.Context) (string, error) {
	err := f.record(ctx, action.KindScreenshot, "screenshot")
	return "/tmp/shot.png", err
}

func newTestExecutor(auto *fakeAutomation) *Executor {
	return NewExecutor(auto, nil, time.Millisecond)
}

func TestExecutor_Execute_AllSucceed(t *testing.T) {
	auto := newFakeAutomation()
	e := newTestExecutor(auto)

	p := plan.New([]action.Action{
		{Kind: action.KindOpenApp, Name: "notepad"},
		{Kind: action.KindTypeText, Text: "hello"},
		{Kind: action.KindKeyPress, Combo: "enter"},
	})
	report := e.Execute(context.Background(), p)

	if len(report) != 3 {
		t.Fatalf("report length = %d, want 3", len(report))
	}
	if !report.Succeeded() {
		t.Errorf("report should be all-succeeded: %+v", report)
	}
	want := []string{"open:notepad", "type:hello", "key:enter"}
	for i, w := range want {
		if auto.calls[i] != w {
			t.Errorf("call %d = %q, want %q", i, auto.calls[i], w)
		}
	}
}

func TestExecutor_Execute_BlockingFailureAborts(t *testing.T) {
	auto := newFakeAutomation()
	auto.fail[action.KindOpenApp] = errors.New("no such app")
	e := newTestExecutor(auto)

	p := plan.New([]action.Action{
		{Kind: action.KindOpenApp, Name: "ghost"},
		{Kind: action.KindTypeText, Text: "never typed"},
		{Kind: action.KindScreenshot},
	})
	report := e.Execute(context.Background(), p)

	if len(report) != 3 {
		t.Fatalf("report length = %d, want 3", len(report))
	}
	if report[0].Status != StatusFailed {
		t.Errorf("step 0 status = %s, want failed", report[0].Status)
	}
	if report[0].Error == "" {
		t.Error("failed step should carry error text")
	}
	for i := 1; i < 3; i++ {
		if report[i].Status != StatusSkipped {
			t.Errorf("step %d status = %s, want skipped", i, report[i].Status)
		}
	}
	// 被中止的步骤绝不触达自动化层
	if len(auto.calls) != 1 {
		t.Errorf("automation calls = %v, want only the failing open", auto.calls)
	}
}

func TestExecutor_Execute_ContinuableFailureKeepsGoing(t *testing.T) {
	auto := newFakeAutomation()
	auto.fail[action.KindScreenshot] = errors.New("no display")
	e := newTestExecutor(auto)

	p := plan.New([]action.Action{
		{Kind: action.KindScreenshot},
		{Kind: action.KindOpenApp, Name: "notepad"},
	})
	report := e.Execute(context.Background(), p)

	if report[0].Status != StatusFailed {
		t.Errorf("step 0 status = %s, want failed", report[0].Status)
	}
	if report[1].Status != StatusSucceeded {
		t.Errorf("step 1 status = %s, want succeeded (continuable failure must not abort)", report[1].Status)
	}
}

func TestExecutor_Execute_StepTimeout(t *testing.T) {
	auto := newFakeAutomation()
	auto.block[action.KindClick] = 10 * time.Second // click 超时上限 3s
	e := newTestExecutor(auto)

	p := plan.New([]action.Action{
		{Kind: action.KindClick, X: 1, Y: 1},
		{Kind: action.KindTypeText, Text: "after"},
	})

	// 用短祖先上下文加速测试：步骤超时取 min(步骤上限, 剩余上下文)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	report := e.Execute(ctx, p)

	if report[0].Status != StatusFailed {
		t.Errorf("step 0 status = %s, want failed on timeout", report[0].Status)
	}
	if report[1].Status != StatusSkipped {
		t.Errorf("step 1 status = %s, want skipped after blocking timeout", report[1].Status)
	}
}

func TestExecutor_Execute_ScreenshotOutput(t *testing.T) {
	auto := newFakeAutomation()
	e := newTestExecutor(auto)

	p := plan.New([]action.Action{{Kind: action.KindScreenshot}})
	report := e.Execute(context.Background(), p)

	if report[0].Status != StatusSucceeded {
		t.Fatalf("status = %s", report[0].Status)
	}
	if report[0].Output != "/tmp/shot.png" {
		t.Errorf("output = %q, want screenshot path", report[0].Output)
	}
}

func TestExecutor_Execute_SerializesConcurrentPlans(t *testing.T) {
	auto := newFakeAutomation()
	auto.block[action.KindTypeText] = 20 * time.Millisecond
	e := newTestExecutor(auto)

	p := plan.New([]action.Action{
		{Kind: action.KindTypeText, Text: "a"},
		{Kind: action.KindTypeText, Text: "b"},
	})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Execute(context.Background(), p)
		}()
	}
	wg.Wait()

	// 互斥锁保证整计划成对出现，不交错
	for i := 0; i+1 < len(auto.calls); i += 2 {
		if auto.calls[i] != "type:a" || auto.calls[i+1] != "type:b" {
			t.Fatalf("interleaved calls: %v", auto.calls)
		}
	}
}

func TestReport_Counts(t *testing.T) {
	r := Report{
		{Status: StatusSucceeded},
		{Status: StatusFailed},
		{Status: StatusSkipped},
		{Status: StatusSkipped},
	}
	s, f, k := r.Counts()
	if s != 1 || f != 1 || k != 2 {
		t.Errorf("Counts = (%d,%d,%d), want (1,1,2)", s, f, k)
	}
	if r.Succeeded() {
		t.Error("mixed report should not be Succeeded")
	}
}
