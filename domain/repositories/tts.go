package repositories

import (
	"context"
	"io"
)

// VoiceCloner registers a cleaned caregiver sample with the voice-cloning
// provider and returns the opaque voice handle.
type VoiceCloner interface {
	RegisterVoice(ctx context.Context, name string, sample io.Reader, fileName string) (string, error)
}

// SpeechSynthesizer turns text into compressed audio bytes spoken with the
// given cloned voice.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, voiceID string) ([]byte, error)
}
