package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/reminisce/server/domain"
)

// ValidateTempo checks a tempo ratio against the supported (0, 2] range.
// Ratios below 1 slow speech down for comprehension.
func ValidateTempo(ratio float64) error {
	if ratio <= 0 || ratio > 2 {
		return fmt.Errorf("tempo ratio %v outside supported range (0, 2]", ratio)
	}
	return nil
}

// tempoFilter renders the atempo filter argument for a ratio.
func tempoFilter(ratio float64) string {
	return "atempo=" + strconv.FormatFloat(ratio, 'f', -1, 64)
}

// AdjustTempo time-stretches the audio file at path to the given tempo
// ratio, replacing it in place. The stretched audio is written to a
// temporary sibling first and renamed over the original only on success,
// so a failure never leaves a partial file behind.
func (p *Processor) AdjustTempo(ctx context.Context, path string, ratio float64) error {
	if err := ValidateTempo(ratio); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTempoAdjustmentFailed, err)
	}

	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "tempo_"+strings.ReplaceAll(uuid.NewString(), "-", "")+filepath.Ext(path))

	err := p.runFFmpeg(ctx,
		"-i", path,
		"-filter:a", tempoFilter(ratio),
		tmp,
	)
	if err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil && !os.IsNotExist(removeErr) {
			p.logger.Warn("Failed to remove partial tempo output", zap.String("path", tmp), zap.Error(removeErr))
		}
		return fmt.Errorf("%w: %v", domain.ErrTempoAdjustmentFailed, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: replace original: %v", domain.ErrTempoAdjustmentFailed, err)
	}
	return nil
}
