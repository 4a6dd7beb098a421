package entities

import (
	"fmt"
	"strings"
)

// Tone selects the emotional register the generated sentences are written
// in. Values match the literals the client sends.
type Tone string

const (
	ToneKind   Tone = "kind"
	ToneCalm   Tone = "calm"
	ToneBright Tone = "bright"
)

// ParseTone validates a tone literal from the request form.
func ParseTone(value string) (Tone, error) {
	switch Tone(value) {
	case ToneKind, ToneCalm, ToneBright:
		return Tone(value), nil
	}
	return "", fmt.Errorf("unknown tone %q", value)
}

// toneRubric is the static style rubric attached to the instruction text
// for one tone. Adding a tone is a table change, not a code change.
type toneRubric struct {
	Adverb   string // Korean adverb describing the delivery
	Register string // emotional register and sentence-ending guidance
	Example  string // one worked example sentence
}

var toneRubrics = map[Tone]toneRubric{
	ToneKind: {
		Adverb:   "다정하게",
		Register: "따뜻하고 친근한 말투로, 환자를 격려하거나 칭찬하면서 존댓말을 사용해. 말 끝은 '…'이나 쉼표로 부드럽게 마무리해줘.",
		Example:  "아버지, 오늘은 날씨가 참 좋았죠…",
	},
	ToneCalm: {
		Adverb:   "차분하게",
		Register: "천천히 또박또박, 안정감을 주는 낮은 호흡의 존댓말로 말해줘. 한 문장에 너무 많은 정보를 담지 말고 짧게 나눠줘.",
		Example:  "어머니, 그날 바닷가는 참 고요했어요…",
	},
	ToneBright: {
		Adverb:   "밝게",
		Register: "생기 있고 경쾌한 존댓말로, 즐거웠던 기억이 떠오르도록 기분 좋게 말해줘. 말 끝은 자연스럽게 이어지도록 해줘.",
		Example:  "할머니, 그 공원에서 참 많이 웃으셨죠!",
	},
}

// Field labels the generator is instructed to emit and the parser scans
// for. The vocabulary is fixed; both sides share these constants.
const (
	LabelReminiscence = "회상 문장:"
	LabelQuestion     = "퀴즈 문제:"
	LabelOptions      = "선택지:"
	LabelAnswer       = "정답:"
)

// PersonaContext carries the caregiver-supplied inputs one generation is
// conditioned on. Immutable once built; constructed per request.
type PersonaContext struct {
	PatientName      string
	SceneDescription string
	Relationship     string // free text, e.g. "딸", "아버지"
	Tone             Tone
}

// NewPersonaContext builds a context, applying the configured relationship
// fallback when the form omitted one.
func NewPersonaContext(patientName, sceneDescription, relationship, fallbackRelationship string, tone Tone) PersonaContext {
	if strings.TrimSpace(relationship) == "" {
		relationship = fallbackRelationship
	}
	return PersonaContext{
		PatientName:      strings.TrimSpace(patientName),
		SceneDescription: strings.TrimSpace(sceneDescription),
		Relationship:     strings.TrimSpace(relationship),
		Tone:             tone,
	}
}

// GenerationRequest is the fully assembled provider request: instruction
// text plus user content. Never mutated after construction.
type GenerationRequest struct {
	Instructions string
	Content      string
}

// BuildGenerationRequest derives the deterministic instruction block from
// the persona. The instruction always begins with the role framing and ends
// with the output-format contract naming the four labeled fields.
func BuildGenerationRequest(persona PersonaContext) GenerationRequest {
	rubric := toneRubrics[persona.Tone]

	var b strings.Builder
	b.WriteString("너는 경증 치매 환자의 기억을 상기시키고 정서적 안정을 돕는 회상 도우미야. ")
	fmt.Fprintf(&b, "사용자는 환자의 %s(이)야. ", persona.Relationship)
	fmt.Fprintf(&b, "생성되는 문장은 %s의 말투와 어조를 반영해서, 마치 %s이(가) 직접 말하듯 자연스럽게 환자에게 건네는 말이어야 해. ",
		persona.Relationship, persona.Relationship)
	fmt.Fprintf(&b, "전체 분위기는 %s 유지해줘. %s ", rubric.Adverb, rubric.Register)
	fmt.Fprintf(&b, "예를 들어 '%s'처럼 생성해줘. ", rubric.Example)
	b.WriteString("기억을 자극할 수 있는 소중한 순간이나 장소, 감정을 담고, 회상 문장에 이어 그 기억을 확인하는 간단한 객관식 퀴즈를 하나 만들어줘. ")
	b.WriteString("반드시 아래 형식 그대로, 네 개의 항목을 각각 한 줄씩 출력해:\n")
	fmt.Fprintf(&b, "%s (회상 문장)\n", LabelReminiscence)
	fmt.Fprintf(&b, "%s (퀴즈 질문)\n", LabelQuestion)
	fmt.Fprintf(&b, "%s\n1번, (첫 번째 선택지)\n2번, (두 번째 선택지)\n", LabelOptions)
	fmt.Fprintf(&b, "%s 1번, (정답 선택지)", LabelAnswer)

	content := fmt.Sprintf("환자 이름: %s\n사진 설명: %s", persona.PatientName, persona.SceneDescription)

	return GenerationRequest{
		Instructions: b.String(),
		Content:      content,
	}
}
