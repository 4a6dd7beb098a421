package usecase

import (
	"context"
	"errors"
	"os"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/carelink/reminisce/server/domain"
	"github.com/carelink/reminisce/server/internal/audio"
)

type fakeSynthesizer struct {
	speech []byte
	err    error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, _, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.speech, nil
}

func TestRenderSynthesisFailure(t *testing.T) {
	synth := &fakeSynthesizer{err: errors.New("provider 500")}
	processor := audio.NewProcessor("/nonexistent/ffmpeg", zaptest.NewLogger(t))
	renderer := NewSpeechRenderer(synth, processor, zaptest.NewLogger(t))

	ws := newTestWorkspace(t)
	_, err := renderer.Render(context.Background(), ws, "안녕하세요", "voice-1", 0.83, "reminder")
	if !errors.Is(err, domain.ErrSynthesisFailed) {
		t.Fatalf("Expected ErrSynthesisFailed, got %v", err)
	}
}

func TestRenderTempoFailureRemovesRawArtifact(t *testing.T) {
	synth := &fakeSynthesizer{speech: []byte("mp3 bytes")}
	processor := audio.NewProcessor("/nonexistent/ffmpeg", zaptest.NewLogger(t))
	renderer := NewSpeechRenderer(synth, processor, zaptest.NewLogger(t))

	ws := newTestWorkspace(t)
	_, err := renderer.Render(context.Background(), ws, "안녕하세요", "voice-1", 0.83, "reminder")
	if !errors.Is(err, domain.ErrTempoAdjustmentFailed) {
		t.Fatalf("Expected ErrTempoAdjustmentFailed, got %v", err)
	}

	entries, readErr := os.ReadDir(ws.Path(""))
	if readErr != nil {
		t.Fatalf("ReadDir failed: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("Expected the raw artifact to be removed, found %d entries", len(entries))
	}
}
