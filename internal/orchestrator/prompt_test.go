package orchestrator

import (
	"strings"
	"testing"

	"github.com/billkhiz-bit/desktop-automation-agent/internal/action"
)

func TestBuildPlanPrompt_ContainsTask(t *testing.T) {
	prompt := BuildPlanPrompt("open notepad and type hi")
	if !strings.Contains(prompt, `"open notepad and type hi"`) {
		t.Errorf("prompt missing task text:\n%s", prompt)
	}
}

func TestBuildPlanPrompt_ContainsVocabulary(t *testing.T) {
	prompt := BuildPlanPrompt("anything")
	for _, k := range action.Kinds() {
		if !strings.Contains(prompt, string(k)) {
			t.Errorf("prompt missing action %q", k)
		}
	}
}

func TestBuildPlanPrompt_DemandsJSONOnly(t *testing.T) {
	prompt := BuildPlanPrompt("anything")
	if !strings.Contains(prompt, "ONLY the JSON array") {
		t.Error("prompt should demand a bare JSON array")
	}
}
