package usecase

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/carelink/reminisce/server/domain"
	"github.com/carelink/reminisce/server/domain/repositories"
	"github.com/carelink/reminisce/server/internal/audio"
)

// Renderer produces one finished speech artifact inside the request
// workspace and returns its path.
type Renderer interface {
	Render(ctx context.Context, ws *audio.Workspace, text, voiceID string, tempo float64, prefix string) (string, error)
}

// SpeechRenderer converts text into a tempo-adjusted speech file using the
// synthesis provider and the local audio processor.
type SpeechRenderer struct {
	synthesizer repositories.SpeechSynthesizer
	processor   *audio.Processor
	logger      *zap.Logger
}

var _ Renderer = (*SpeechRenderer)(nil)

// NewSpeechRenderer creates a new speech renderer.
func NewSpeechRenderer(synthesizer repositories.SpeechSynthesizer, processor *audio.Processor, logger *zap.Logger) *SpeechRenderer {
	return &SpeechRenderer{
		synthesizer: synthesizer,
		processor:   processor,
		logger:      logger,
	}
}

// Render synthesizes the text at the given voice handle, then
// time-stretches the result to the target tempo. The stretch replaces the
// raw audio atomically; on failure the partial artifact is removed so no
// half-finished file survives.
func (r *SpeechRenderer) Render(ctx context.Context, ws *audio.Workspace, text, voiceID string, tempo float64, prefix string) (string, error) {
	speech, err := r.synthesizer.Synthesize(ctx, text, voiceID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err)
	}

	path := ws.UniquePath(prefix, ".mp3")
	if err := os.WriteFile(path, speech, 0o644); err != nil {
		return "", fmt.Errorf("%w: write raw audio: %v", domain.ErrSynthesisFailed, err)
	}

	if err := r.processor.AdjustTempo(ctx, path, tempo); err != nil {
		ws.Remove(path)
		return "", err
	}

	r.logger.Debug("Rendered speech artifact",
		zap.String("path", path),
		zap.Float64("tempo", tempo))
	return path, nil
}
