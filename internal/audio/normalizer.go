package audio

import (
	"context"
	"fmt"
	"strconv"

	"github.com/carelink/reminisce/server/domain"
)

// Canonical waveform parameters every downstream stage assumes: mono,
// 22.05 kHz, signed 16-bit PCM.
const (
	CanonicalSampleRate = 22050
	CanonicalChannels   = 1
	CanonicalBitDepth   = 16
)

// ToCanonicalWaveform transcodes an arbitrary input audio file into the
// canonical WAV format at outputPath.
func (p *Processor) ToCanonicalWaveform(ctx context.Context, inputPath, outputPath string) error {
	err := p.runFFmpeg(ctx,
		"-i", inputPath,
		"-ac", strconv.Itoa(CanonicalChannels),
		"-ar", strconv.Itoa(CanonicalSampleRate),
		"-c:a", "pcm_s16le",
		outputPath,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTranscodeFailed, err)
	}
	return nil
}

// EncodeVoiceSample compresses a trimmed waveform into the mono mp3 the
// cloning provider receives, band-passed to the voice range.
func (p *Processor) EncodeVoiceSample(ctx context.Context, inputPath, outputPath string) error {
	err := p.runFFmpeg(ctx,
		"-i", inputPath,
		"-af", "highpass=f=300, lowpass=f=3000",
		"-ar", strconv.Itoa(CanonicalSampleRate),
		"-ac", strconv.Itoa(CanonicalChannels),
		"-b:a", "64k",
		outputPath,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPreprocessingFailed, err)
	}
	return nil
}
