// Package audio implements the local audio stages of the pipeline:
// canonical transcoding, denoising, voice-activity trimming and tempo
// adjustment. External transcoding runs through ffmpeg; trimming is done
// in-process on decoded WAV frames.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

const defaultFFmpegPath = "ffmpeg"

// Processor runs the local audio transformations. One instance is shared
// across requests; it holds no per-request state.
type Processor struct {
	ffmpegPath string
	logger     *zap.Logger
}

// NewProcessor creates a Processor. ffmpegPath may be empty to use the
// binary from PATH.
func NewProcessor(ffmpegPath string, logger *zap.Logger) *Processor {
	if ffmpegPath == "" {
		ffmpegPath = defaultFFmpegPath
	}
	return &Processor{
		ffmpegPath: ffmpegPath,
		logger:     logger,
	}
}

// NewProcessorFromEnv creates a Processor configured from FFMPEG_PATH.
func NewProcessorFromEnv(logger *zap.Logger) *Processor {
	return NewProcessor(os.Getenv("FFMPEG_PATH"), logger)
}

// runFFmpeg executes one ffmpeg invocation, capturing the tail of stderr
// for error reporting.
func (p *Processor) runFFmpeg(ctx context.Context, args ...string) error {
	full := append([]string{"-hide_banner", "-loglevel", "error", "-y"}, args...)
	cmd := exec.CommandContext(ctx, p.ffmpegPath, full...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	p.logger.Debug("Running ffmpeg", zap.Strings("args", full))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg aborted: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg exited with code %d: %s",
			cmd.ProcessState.ExitCode(), truncateTail(stderr.String(), 512))
	}
	return nil
}

// truncateTail keeps at most n bytes from the end of s.
func truncateTail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "…" + s[len(s)-n:]
}
