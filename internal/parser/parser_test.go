package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/carelink/reminisce/server/domain"
	"github.com/carelink/reminisce/server/domain/entities"
)

func joinLines(lines ...string) string {
	return strings.Join(lines, "\n")
}

func TestParseCanonicalResponse(t *testing.T) {
	raw := joinLines(
		"회상 문장: 오늘은 날씨가 좋았죠…",
		"퀴즈 문제: 어디였을까요?",
		"선택지:",
		"1번, 공원",
		"2번, 바다",
		"정답: 1번, 공원",
	)

	record, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if record.ReminiscenceText != "오늘은 날씨가 좋았죠…" {
		t.Errorf("Unexpected reminiscence text: %q", record.ReminiscenceText)
	}
	if record.QuizQuestion != "어디였을까요?" {
		t.Errorf("Unexpected quiz question: %q", record.QuizQuestion)
	}
	wantOptions := []entities.QuizOption{
		{Ordinal: 1, Text: "공원"},
		{Ordinal: 2, Text: "바다"},
	}
	if !reflect.DeepEqual(record.Options, wantOptions) {
		t.Errorf("Unexpected options: %+v", record.Options)
	}
	if record.AnswerText != "공원" {
		t.Errorf("Expected answer '공원', got %q", record.AnswerText)
	}
}

func TestParseAnswerFallbackWithoutOrdinal(t *testing.T) {
	raw := joinLines(
		"회상 문장: 오늘은 날씨가 좋았죠…",
		"퀴즈 문제: 어디였을까요?",
		"선택지:",
		"1번, 공원",
		"2번, 바다",
		"정답: 공원",
	)

	record, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if record.AnswerText != "공원" {
		t.Errorf("Expected verbatim fallback answer '공원', got %q", record.AnswerText)
	}
}

func TestParseMissingAnswerLabel(t *testing.T) {
	raw := joinLines(
		"회상 문장: 오늘은 날씨가 좋았죠…",
		"퀴즈 문제: 어디였을까요?",
		"선택지:",
		"1번, 공원",
	)

	_, err := Parse(raw)
	if !errors.Is(err, domain.ErrMissingAnswer) {
		t.Errorf("Expected ErrMissingAnswer, got %v", err)
	}
}

func TestParseEmptyAnswerRemainder(t *testing.T) {
	raw := joinLines(
		"회상 문장: 오늘은 날씨가 좋았죠…",
		"퀴즈 문제: 어디였을까요?",
		"선택지:",
		"1번, 공원",
		"정답:",
	)

	_, err := Parse(raw)
	if !errors.Is(err, domain.ErrMissingAnswer) {
		t.Errorf("Expected ErrMissingAnswer for empty remainder, got %v", err)
	}
}

func TestParseEmptyOptionsBlock(t *testing.T) {
	raw := joinLines(
		"회상 문장: 오늘은 날씨가 좋았죠…",
		"퀴즈 문제: 어디였을까요?",
		"선택지:",
		"정답: 공원",
	)

	_, err := Parse(raw)
	if !errors.Is(err, domain.ErrMalformedStructure) {
		t.Errorf("Expected ErrMalformedStructure for empty options, got %v", err)
	}
}

func TestParseReorderedLabels(t *testing.T) {
	raw := joinLines(
		"퀴즈 문제: 어디였을까요?",
		"정답: 2번, 바다",
		"선택지:",
		"1번, 공원",
		"2번, 바다",
		"회상 문장: 오늘은 바닷가에 갔었죠…",
	)

	record, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed on reordered labels: %v", err)
	}
	if record.AnswerText != "바다" {
		t.Errorf("Expected answer '바다', got %q", record.AnswerText)
	}
	if len(record.Options) != 2 {
		t.Errorf("Expected 2 options, got %d", len(record.Options))
	}
	if record.ReminiscenceText != "오늘은 바닷가에 갔었죠…" {
		t.Errorf("Unexpected reminiscence text: %q", record.ReminiscenceText)
	}
}

func TestParseFirstLabelOccurrenceWins(t *testing.T) {
	raw := joinLines(
		"회상 문장: 첫 번째 문장이에요…",
		"회상 문장: 두 번째 문장이에요…",
		"퀴즈 문제: 어디였을까요?",
		"선택지:",
		"1번, 공원",
		"정답: 1번, 공원",
	)

	record, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if record.ReminiscenceText != "첫 번째 문장이에요…" {
		t.Errorf("Expected first occurrence to win, got %q", record.ReminiscenceText)
	}
}

func TestParseOptionsOnLabelLine(t *testing.T) {
	raw := joinLines(
		"회상 문장: 오늘은 날씨가 좋았죠…",
		"퀴즈 문제: 어디였을까요?",
		"선택지: 1번, 공원 2번, 바다",
		"정답: 1번, 공원",
	)

	record, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed on inline options: %v", err)
	}
	wantOptions := []entities.QuizOption{
		{Ordinal: 1, Text: "공원"},
		{Ordinal: 2, Text: "바다"},
	}
	if !reflect.DeepEqual(record.Options, wantOptions) {
		t.Errorf("Unexpected options: %+v", record.Options)
	}
}

func TestParseIgnoresStrayLines(t *testing.T) {
	raw := joinLines(
		"물론이죠! 아래와 같이 만들어 보았어요.",
		"회상 문장: 오늘은 날씨가 좋았죠…",
		"퀴즈 문제: 어디였을까요?",
		"선택지:",
		"다음 중에서 골라보세요.",
		"1번, 공원",
		"2번, 바다",
		"정답: 1번, 공원",
		"도움이 되었길 바라요!",
	)

	record, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed with stray lines: %v", err)
	}
	if len(record.Options) != 2 {
		t.Errorf("Expected stray lines to be skipped, got %d options", len(record.Options))
	}
}

func TestParseRenumbersSourceOrdinals(t *testing.T) {
	raw := joinLines(
		"회상 문장: 오늘은 날씨가 좋았죠…",
		"퀴즈 문제: 어디였을까요?",
		"선택지:",
		"3번. 공원",
		"7번, 바다",
		"정답: 7번, 바다",
	)

	record, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	wantOptions := []entities.QuizOption{
		{Ordinal: 1, Text: "공원"},
		{Ordinal: 2, Text: "바다"},
	}
	if !reflect.DeepEqual(record.Options, wantOptions) {
		t.Errorf("Expected sequence-order renumbering, got %+v", record.Options)
	}
}

func TestParseAnswerNotAmongOptions(t *testing.T) {
	raw := joinLines(
		"회상 문장: 오늘은 날씨가 좋았죠…",
		"퀴즈 문제: 어디였을까요?",
		"선택지:",
		"1번, 공원",
		"2번, 바다",
		"정답: 산",
	)

	_, err := Parse(raw)
	if !errors.Is(err, domain.ErrMalformedStructure) {
		t.Errorf("Expected ErrMalformedStructure when answer matches no option, got %v", err)
	}
}

func TestParseIdempotent(t *testing.T) {
	raw := joinLines(
		"회상 문장: 오늘은 날씨가 좋았죠…",
		"퀴즈 문제: 어디였을까요?",
		"선택지:",
		"1번, 공원",
		"2번, 바다",
		"정답: 1번, 공원",
	)

	first, err := Parse(raw)
	if err != nil {
		t.Fatalf("First parse failed: %v", err)
	}
	second, err := Parse(raw)
	if err != nil {
		t.Fatalf("Second parse failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parsing the same response twice diverged: %+v vs %+v", first, second)
	}
}

func TestParseWhitespaceAndCarriageReturns(t *testing.T) {
	raw := "  회상 문장: 오늘은 날씨가 좋았죠…  \r\n퀴즈 문제: 어디였을까요?\r\n선택지:\r\n 1번, 공원 \r\n정답: 1번, 공원\r"

	record, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed on padded input: %v", err)
	}
	if record.AnswerText != "공원" {
		t.Errorf("Expected answer '공원', got %q", record.AnswerText)
	}
}
