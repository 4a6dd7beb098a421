package audio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/carelink/reminisce/server/domain"
)

func TestValidateTempo(t *testing.T) {
	for _, ratio := range []float64{0.5, 0.83, 1.0, 2.0} {
		if err := ValidateTempo(ratio); err != nil {
			t.Errorf("ValidateTempo(%v) should pass, got %v", ratio, err)
		}
	}
	for _, ratio := range []float64{0, -0.5, 2.01, 3} {
		if err := ValidateTempo(ratio); err == nil {
			t.Errorf("ValidateTempo(%v) should fail", ratio)
		}
	}
}

func TestTempoFilter(t *testing.T) {
	if got := tempoFilter(0.83); got != "atempo=0.83" {
		t.Errorf("tempoFilter(0.83) = %q", got)
	}
	if got := tempoFilter(1); got != "atempo=1" {
		t.Errorf("tempoFilter(1) = %q", got)
	}
}

func TestAdjustTempoRejectsInvalidRatio(t *testing.T) {
	logger := zaptest.NewLogger(t)
	proc := NewProcessor("", logger)

	err := proc.AdjustTempo(context.Background(), filepath.Join(t.TempDir(), "a.mp3"), 2.5)
	if !errors.Is(err, domain.ErrTempoAdjustmentFailed) {
		t.Errorf("Expected ErrTempoAdjustmentFailed for out-of-range ratio, got %v", err)
	}
}

func TestAdjustTempoLeavesOriginalOnFailure(t *testing.T) {
	logger := zaptest.NewLogger(t)
	// Nonexistent binary makes every invocation fail.
	proc := NewProcessor(filepath.Join(t.TempDir(), "no-such-ffmpeg"), logger)

	dir := t.TempDir()
	path := filepath.Join(dir, "speech.mp3")
	if err := encodeWaveform(path, testWaveform(0, CanonicalSampleRate/10, 0)); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}

	err := proc.AdjustTempo(context.Background(), path, 0.83)
	if !errors.Is(err, domain.ErrTempoAdjustmentFailed) {
		t.Fatalf("Expected ErrTempoAdjustmentFailed, got %v", err)
	}

	// Original must be untouched and no temp siblings left behind.
	entries, globErr := filepath.Glob(filepath.Join(dir, "*"))
	if globErr != nil {
		t.Fatalf("Glob failed: %v", globErr)
	}
	if len(entries) != 1 || entries[0] != path {
		t.Errorf("Expected only the original file to remain, got %v", entries)
	}
}
