package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// QuizOption is one answer choice. Ordinal is the 1-based position the
// option was found at; display and read-back both follow this order.
type QuizOption struct {
	Ordinal int    `bson:"ordinal" json:"ordinal"`
	Text    string `bson:"text" json:"text"`
}

// ReminiscenceRecord is the canonical persisted unit of one successful
// generation: the sentence spoken to the patient plus the recall quiz.
type ReminiscenceRecord struct {
	ReminiscenceText string       `bson:"reminder_text" json:"reminder_text"`
	QuizQuestion     string       `bson:"quiz_question" json:"quiz_question"`
	Options          []QuizOption `bson:"quiz_options" json:"quiz_options"`
	AnswerText       string       `bson:"quiz_answer" json:"quiz_answer"`
}

// ReminderDocument is what actually lands in the document store: the record
// plus artifact locators and ownership keys. Assembled in full before the
// single write call.
type ReminderDocument struct {
	ReminiscenceRecord `bson:",inline"`

	ReminderURL string    `bson:"tts_url" json:"tts_url"`
	QuizURL     string    `bson:"quiz_tts_url" json:"quiz_tts_url"`
	VoiceID     string    `bson:"voice_id" json:"voice_id"`
	GuardianID  string    `bson:"guardian_id" json:"guardian_id"`
	PatientID   string    `bson:"patient_id" json:"patient_id"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// normalizeAnswer is the normalization applied before comparing the answer
// against option texts.
func normalizeAnswer(s string) string {
	return strings.TrimSpace(s)
}

// Validate enforces the record invariants: all four fields present and the
// answer equal, after normalization, to the text of exactly one option.
func (r *ReminiscenceRecord) Validate() error {
	if strings.TrimSpace(r.ReminiscenceText) == "" {
		return errors.New("reminiscence text is empty")
	}
	if strings.TrimSpace(r.QuizQuestion) == "" {
		return errors.New("quiz question is empty")
	}
	if len(r.Options) == 0 {
		return errors.New("quiz has no options")
	}
	answer := normalizeAnswer(r.AnswerText)
	if answer == "" {
		return errors.New("quiz answer is empty")
	}

	matches := 0
	for _, opt := range r.Options {
		if normalizeAnswer(opt.Text) == answer {
			matches++
		}
	}
	if matches != 1 {
		return fmt.Errorf("answer %q matches %d options, want exactly 1", answer, matches)
	}
	return nil
}

// spokenOrdinals maps option positions to the ordinal words read back in
// the quiz audio, independent of how the source model labeled them.
var spokenOrdinals = map[int]string{
	1: "첫 번째",
	2: "두 번째",
	3: "세 번째",
	4: "네 번째",
	5: "다섯 번째",
}

// SpokenOrdinal returns the ordinal word for a 1-based position.
func SpokenOrdinal(n int) string {
	if word, ok := spokenOrdinals[n]; ok {
		return word
	}
	return fmt.Sprintf("%d번째", n)
}

// SpokenQuizScript composes the text the quiz audio is synthesized from:
// the question followed by each option with its spoken ordinal, in the
// original option order.
func (r *ReminiscenceRecord) SpokenQuizScript() string {
	lines := make([]string, 0, len(r.Options)+1)
	lines = append(lines, r.QuizQuestion)
	for i, opt := range r.Options {
		lines = append(lines, fmt.Sprintf("%s, %s", SpokenOrdinal(i+1), opt.Text))
	}
	return strings.Join(lines, "\n")
}
