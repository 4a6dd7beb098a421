// Package parser turns the generator's free-form response text into a
// structured reminiscence record. The source model does not reliably
// respect field order or ordinal formatting, so the parse is a tolerant
// single forward pass: stray lines are skipped, never fatal. The one hard
// failure is a missing quiz answer, because quiz scoring has no sensible
// default for it.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/carelink/reminisce/server/domain"
	"github.com/carelink/reminisce/server/domain/entities"
)

// state of the line scan. Inside the options block every line is a
// candidate option until the answer label closes it.
type state int

const (
	stateSeeking state = iota
	stateCollectingOptions
)

// ordinalLine matches an option or answer remainder led by an ordinal
// marker such as "1번," or "2번." with the option text captured after it.
var ordinalLine = regexp.MustCompile(`^(\d+)번[.,]?\s*(.+)$`)

// ordinalMarker locates markers inside a single line, for responses that
// put the whole options block on the label line itself.
var ordinalMarker = regexp.MustCompile(`\d+번[.,]?\s*`)

// Parse scans the raw model response and extracts the reminiscence
// sentence, quiz question, ordered options and answer.
//
// Label detection always runs before ordinal detection within a line, so a
// line that carries both is treated as the label it starts with. The first
// occurrence of the reminiscence and question labels wins; later duplicates
// are ignored.
func Parse(raw string) (*entities.ReminiscenceRecord, error) {
	record := &entities.ReminiscenceRecord{}
	current := stateSeeking
	answerSeen := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, entities.LabelReminiscence):
			if record.ReminiscenceText == "" {
				record.ReminiscenceText = strings.TrimSpace(strings.TrimPrefix(line, entities.LabelReminiscence))
			}

		case strings.HasPrefix(line, entities.LabelQuestion):
			if record.QuizQuestion == "" {
				record.QuizQuestion = strings.TrimSpace(strings.TrimPrefix(line, entities.LabelQuestion))
			}

		case strings.HasPrefix(line, entities.LabelOptions):
			current = stateCollectingOptions
			// Some responses put the options on the label line itself
			// instead of the following lines; consume both layouts.
			rest := strings.TrimSpace(strings.TrimPrefix(line, entities.LabelOptions))
			for _, text := range splitInlineOptions(rest) {
				appendOption(record, text)
			}

		case strings.HasPrefix(line, entities.LabelAnswer):
			current = stateSeeking
			answerSeen = true
			rest := strings.TrimSpace(strings.TrimPrefix(line, entities.LabelAnswer))
			if m := ordinalLine.FindStringSubmatch(rest); m != nil {
				record.AnswerText = strings.TrimSpace(m[2])
			} else {
				// Fallback: the model answered without an ordinal marker;
				// take the remainder verbatim.
				record.AnswerText = rest
			}

		default:
			if current == stateCollectingOptions {
				if m := ordinalLine.FindStringSubmatch(line); m != nil {
					appendOption(record, m[2])
				}
				// Non-matching lines inside the block are stray text; skip.
			}
		}
	}

	if !answerSeen || strings.TrimSpace(record.AnswerText) == "" {
		return nil, domain.ErrMissingAnswer
	}
	if record.ReminiscenceText == "" {
		return nil, fmt.Errorf("%w: no reminiscence sentence", domain.ErrMalformedStructure)
	}
	if record.QuizQuestion == "" {
		return nil, fmt.Errorf("%w: no quiz question", domain.ErrMalformedStructure)
	}
	if len(record.Options) == 0 {
		return nil, fmt.Errorf("%w: answer present but no options", domain.ErrMalformedStructure)
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedStructure, err)
	}

	return record, nil
}

// appendOption adds an option at the next sequence position. Ordinals are
// renumbered 1..N in the order found; the spoken read-back uses these, not
// whatever numerals the model emitted.
func appendOption(record *entities.ReminiscenceRecord, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	record.Options = append(record.Options, entities.QuizOption{
		Ordinal: len(record.Options) + 1,
		Text:    text,
	})
}

// splitInlineOptions extracts option texts from an options-label suffix
// like "1번, 공원 2번, 바다". Returns nil when the suffix carries no
// ordinal markers.
func splitInlineOptions(rest string) []string {
	if rest == "" {
		return nil
	}
	marks := ordinalMarker.FindAllStringIndex(rest, -1)
	if len(marks) == 0 {
		return nil
	}
	var options []string
	for i, mark := range marks {
		end := len(rest)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		text := strings.TrimSpace(rest[mark[1]:end])
		text = strings.TrimRight(text, ",.")
		if text = strings.TrimSpace(text); text != "" {
			options = append(options, text)
		}
	}
	return options
}
