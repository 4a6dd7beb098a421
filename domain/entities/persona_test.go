package entities

import (
	"strings"
	"testing"
)

func TestParseTone(t *testing.T) {
	for _, value := range []string{"kind", "calm", "bright"} {
		tone, err := ParseTone(value)
		if err != nil {
			t.Errorf("ParseTone(%q) failed: %v", value, err)
		}
		if string(tone) != value {
			t.Errorf("ParseTone(%q) = %q", value, tone)
		}
	}

	if _, err := ParseTone("angry"); err == nil {
		t.Error("Expected error for unknown tone")
	}
}

func TestNewPersonaContextRelationshipFallback(t *testing.T) {
	persona := NewPersonaContext("김영희", "공원에서 산책", "  ", "보호자", ToneKind)
	if persona.Relationship != "보호자" {
		t.Errorf("Expected fallback relationship '보호자', got %q", persona.Relationship)
	}

	persona = NewPersonaContext("김영희", "공원에서 산책", "딸", "보호자", ToneKind)
	if persona.Relationship != "딸" {
		t.Errorf("Expected explicit relationship '딸', got %q", persona.Relationship)
	}
}

func TestBuildGenerationRequestFraming(t *testing.T) {
	persona := NewPersonaContext("김영희", "공원에서 산책하던 날", "딸", "보호자", ToneCalm)
	request := BuildGenerationRequest(persona)

	// Role framing first, output-format contract last.
	if !strings.HasPrefix(request.Instructions, "너는 경증 치매 환자의") {
		t.Errorf("Instructions must begin with role framing, got %q", request.Instructions[:30])
	}
	if !strings.HasSuffix(request.Instructions, "(정답 선택지)") {
		t.Error("Instructions must end with the output-format contract")
	}

	for _, label := range []string{LabelReminiscence, LabelQuestion, LabelOptions, LabelAnswer} {
		if !strings.Contains(request.Instructions, label) {
			t.Errorf("Instructions missing field label %q", label)
		}
	}

	if !strings.Contains(request.Instructions, "딸") {
		t.Error("Instructions must inject the relationship string")
	}
	if !strings.Contains(request.Instructions, "차분하게") {
		t.Error("Instructions must carry the calm tone rubric")
	}
	if !strings.Contains(request.Content, "김영희") || !strings.Contains(request.Content, "공원에서 산책하던 날") {
		t.Errorf("Content must carry patient name and scene, got %q", request.Content)
	}
}

func TestBuildGenerationRequestDeterministic(t *testing.T) {
	persona := NewPersonaContext("김영희", "바닷가", "아버지", "보호자", ToneBright)
	first := BuildGenerationRequest(persona)
	second := BuildGenerationRequest(persona)
	if first != second {
		t.Error("Instruction derivation must be deterministic for the same persona")
	}
}

func TestToneRubricTableCoversAllTones(t *testing.T) {
	for _, tone := range []Tone{ToneKind, ToneCalm, ToneBright} {
		rubric, ok := toneRubrics[tone]
		if !ok {
			t.Errorf("No rubric for tone %q", tone)
			continue
		}
		if rubric.Adverb == "" || rubric.Register == "" || rubric.Example == "" {
			t.Errorf("Incomplete rubric for tone %q: %+v", tone, rubric)
		}
	}
}
