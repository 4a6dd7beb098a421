package api

import "github.com/carelink/reminisce/server/domain/entities"

// GenerateAndReadResponse is the payload returned after a full pipeline
// run: the generated content plus the rendered artifact URLs.
type GenerateAndReadResponse struct {
	ReminderText string               `json:"reminder"`
	QuizQuestion string               `json:"question"`
	QuizOptions  []entities.QuizOption `json:"quiz_options"`
	QuizAnswer   string               `json:"quiz_answer"`
	ReminderURL  string               `json:"tts_url"`
	QuizURL      string               `json:"quiz_tts_url"`
	VoiceID      string               `json:"voice_id"`
	DocumentID   string               `json:"document_id"`
}

// RegisterVoiceResponse is the payload returned after a voice sample has
// been cleaned and registered.
type RegisterVoiceResponse struct {
	VoiceID    string `json:"voice_id"`
	GuardianID string `json:"guardian_id"`
}

// ReminderListResponse wraps the persisted reminders for one patient.
type ReminderListResponse struct {
	Reminders []*entities.ReminderDocument `json:"reminders"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
