package gemini

import (
	"testing"

	"google.golang.org/genai"

	"github.com/bobmcallan/riskgate/internal/interfaces"
	"github.com/bobmcallan/riskgate/internal/models"
)

func TestFragmentsFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "Your BTC share is high. "},
				{Text: "internal reasoning", Thought: true},
				{ExecutableCode: &genai.ExecutableCode{Code: "print(60*60)"}},
				{CodeExecutionResult: &genai.CodeExecutionResult{Output: "3600"}},
				{FunctionCall: &genai.FunctionCall{Name: "rebalance"}},
				{Text: ""},
				nil,
			}},
		}},
	}

	got := fragmentsFromResponse(resp)
	want := []models.Fragment{
		{Origin: models.OriginAdvisory, Text: "Your BTC share is high. "},
		{Origin: models.OriginTool, Text: "print(60*60)"},
		{Origin: models.OriginTool, Text: "3600"},
		{Origin: models.OriginTool, Text: "rebalance()"},
	}

	if len(got) != len(want) {
		t.Fatalf("got %d fragments, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fragment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFragmentsFromResponse_Empty(t *testing.T) {
	if got := fragmentsFromResponse(nil); got != nil {
		t.Errorf("nil response: got %+v", got)
	}
	if got := fragmentsFromResponse(&genai.GenerateContentResponse{}); got != nil {
		t.Errorf("no candidates: got %+v", got)
	}
	if got := fragmentsFromResponse(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}); got != nil {
		t.Errorf("nil content: got %+v", got)
	}
}

func TestDescribeCall(t *testing.T) {
	got := describeCall(&genai.FunctionCall{Name: "lookup", Args: map[string]any{"symbol": "ETH"}})
	if got != "lookup(symbol=ETH)" {
		t.Errorf("describeCall = %q", got)
	}
}

func TestContentConfig(t *testing.T) {
	c := &Client{temperature: 0.2}

	cfg := c.contentConfig(interfaces.SessionConfig{SystemInstruction: "advise", CodeExecution: true})
	if cfg.Temperature == nil || *cfg.Temperature != 0.2 {
		t.Errorf("Temperature = %v", cfg.Temperature)
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "advise" {
		t.Errorf("SystemInstruction = %+v", cfg.SystemInstruction)
	}
	if len(cfg.Tools) != 1 || cfg.Tools[0].CodeExecution == nil {
		t.Errorf("Tools = %+v", cfg.Tools)
	}

	bare := c.contentConfig(interfaces.SessionConfig{})
	if bare.SystemInstruction != nil || bare.Tools != nil {
		t.Errorf("bare config carries extras: %+v", bare)
	}
}
