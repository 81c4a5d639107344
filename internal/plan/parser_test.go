package plan

import (
	"errors"
	"testing"

	"github.com/billkhiz-bit/desktop-automation-agent/internal/action"
	pkgerrors "github.com/billkhiz-bit/desktop-automation-agent/pkg/errors"
)

func newTestParser() *Parser {
	return NewParser(action.NewValidator(0), nil)
}

func TestParser_Parse_PlainArray(t *testing.T) {
	p := newTestParser()
	raw := `[{"action":"open_app","name":"notepad"},{"action":"type_text","text":"hi"}]`
	plan, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if plan.Len() != 2 {
		t.Fatalf("plan length = %d, want 2", plan.Len())
	}
	if plan.Actions[0].Kind != action.KindOpenApp || plan.Actions[1].Kind != action.KindTypeText {
		t.Errorf("plan order wrong: %+v", plan.Actions)
	}
}

func TestParser_Parse_ProseWrapped(t *testing.T) {
	p := newTestParser()
	raw := "Sure! Here is the plan you asked for:\n" +
		`[{"action":"open_app","name":"calculator"}]` +
		"\nLet me know if you need anything else."
	plan, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if plan.Len() != 1 || plan.Actions[0].Name != "calculator" {
		t.Errorf("got %+v", plan.Actions)
	}
}

func TestParser_Parse_MarkdownFences(t *testing.T) {
	p := newTestParser()
	raw := "```json\n[{\"action\":\"screenshot\"}]\n```"
	plan, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if plan.Len() != 1 || plan.Actions[0].Kind != action.KindScreenshot {
		t.Errorf("got %+v", plan.Actions)
	}
}

func TestParser_Parse_StrayBracketInProse(t *testing.T) {
	p := newTestParser()
	// 前缀文字里带一个孤立 '['，不能让它破坏负载定位
	raw := "Note [1]: see docs.\n" +
		`[{"action":"wait","seconds":1}]`
	plan, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if plan.Len() != 1 || plan.Actions[0].Kind != action.KindWait {
		t.Errorf("got %+v", plan.Actions)
	}
}

func TestParser_Parse_DecoyArrayInProse(t *testing.T) {
	p := newTestParser()
	// 前缀文字里的可解码数组（字面 "[]"）不能遮蔽后面的真实计划
	raw := "Options []: none apply here.\n" +
		`[{"action":"open_app","name":"notepad"}]`
	plan, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if plan.Len() != 1 || plan.Actions[0].Name != "notepad" {
		t.Errorf("got %+v", plan.Actions)
	}

	// 全是非法步骤的数组同样不算负载
	raw = `[{}] and then the real plan: [{"action":"screenshot"}]`
	plan, err = p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if plan.Len() != 1 || plan.Actions[0].Kind != action.KindScreenshot {
		t.Errorf("got %+v", plan.Actions)
	}
}

func TestParser_Parse_NoArray(t *testing.T) {
	p := newTestParser()
	_, err := p.Parse("I'm sorry, I can't help with that.")
	if !errors.Is(err, pkgerrors.ErrPlanFormat) {
		t.Errorf("err = %v, want ErrPlanFormat", err)
	}
}

func TestParser_Parse_MalformedJSON(t *testing.T) {
	p := newTestParser()
	_, err := p.Parse(`[{"action":"open_app","name":}]`)
	if !errors.Is(err, pkgerrors.ErrPlanFormat) {
		t.Errorf("err = %v, want ErrPlanFormat", err)
	}
}

func TestParser_Parse_DropInvalidKeepValid(t *testing.T) {
	p := newTestParser()
	raw := `[
		{"action":"open_app","name":"notepad"},
		{"action":"fly_to_moon"},
		{"action":"type_text","text":"hello"}
	]`
	plan, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if plan.Len() != 2 {
		t.Fatalf("plan length = %d, want 2 (invalid step dropped)", plan.Len())
	}
	if plan.Actions[0].Kind != action.KindOpenApp || plan.Actions[1].Kind != action.KindTypeText {
		t.Errorf("surviving order wrong: %+v", plan.Actions)
	}
}

func TestParser_Parse_AllInvalid(t *testing.T) {
	p := newTestParser()
	_, err := p.Parse(`[{"action":"fly"},{"action":"teleport"}]`)
	if !errors.Is(err, pkgerrors.ErrPlanEmpty) {
		t.Errorf("err = %v, want ErrPlanEmpty", err)
	}
}

func TestParser_Parse_EmptyArray(t *testing.T) {
	p := newTestParser()
	_, err := p.Parse(`[]`)
	if !errors.Is(err, pkgerrors.ErrPlanEmpty) {
		t.Errorf("err = %v, want ErrPlanEmpty", err)
	}
}

func TestParser_Parse_NestedParamsShape(t *testing.T) {
	p := newTestParser()
	raw := `[{"action":"press","params":{"keys":"ctrl, c"}}]`
	plan, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if plan.Actions[0].Combo != "ctrl+c" {
		t.Errorf("combo = %q", plan.Actions[0].Combo)
	}
}

func TestParser_Parse_UnknownFieldsIgnored(t *testing.T) {
	p := newTestParser()
	raw := `[{"action":"open_app","name":"chrome","confidence":0.97,"reasoning":"user asked"}]`
	plan, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if plan.Actions[0].Name != "chrome" {
		t.Errorf("got %+v", plan.Actions[0])
	}
}
