package audio

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
	"go.uber.org/zap"

	"github.com/carelink/reminisce/server/domain"
)

const (
	// silenceThresholdDB is the energy floor below which a window counts
	// as non-speech, relative to digital full scale.
	silenceThresholdDB = -40.0

	// trimWindowMillis is the RMS analysis window length.
	trimWindowMillis = 20

	// trimPaddingMillis of audio kept on each side of the detected voiced
	// region so the trim does not clip soft onsets.
	trimPaddingMillis = 100
)

// Denoise applies the one-shot restorative pass over a canonical waveform.
// No streaming; the whole file is filtered in a single invocation.
func (p *Processor) Denoise(ctx context.Context, inputPath, outputPath string) error {
	err := p.runFFmpeg(ctx,
		"-i", inputPath,
		"-af", "afftdn=nf=-25",
		"-c:a", "pcm_s16le",
		outputPath,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPreprocessingFailed, err)
	}
	return nil
}

// TrimSilence removes leading and trailing non-speech energy from a
// canonical waveform using an amplitude-based voice-activity boundary
// scan. Input and output are both 16-bit mono WAV.
func (p *Processor) TrimSilence(inputPath, outputPath string) error {
	buf, err := decodeWaveform(inputPath)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPreprocessingFailed, err)
	}

	start, end, ok := voicedBounds(buf.Data, buf.Format.SampleRate)
	if !ok {
		return fmt.Errorf("%w: no voiced audio detected in sample", domain.ErrPreprocessingFailed)
	}

	trimmed := &audio.Float32Buffer{
		Format:         buf.Format,
		SourceBitDepth: buf.SourceBitDepth,
		Data:           buf.Data[start:end],
	}
	if err := encodeWaveform(outputPath, trimmed); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPreprocessingFailed, err)
	}

	p.logger.Debug("Trimmed voice sample",
		zap.Int("totalSamples", len(buf.Data)),
		zap.Int("voicedSamples", end-start))
	return nil
}

// voicedBounds returns the [start, end) sample range containing speech
// energy, padded on both sides. ok is false when every window is below the
// silence threshold.
func voicedBounds(data []float32, sampleRate int) (start, end int, ok bool) {
	if len(data) == 0 || sampleRate <= 0 {
		return 0, 0, false
	}

	window := sampleRate * trimWindowMillis / 1000
	if window < 1 {
		window = 1
	}

	firstVoiced, lastVoiced := -1, -1
	for offset := 0; offset < len(data); offset += window {
		limit := offset + window
		if limit > len(data) {
			limit = len(data)
		}
		if windowLevelDB(data[offset:limit]) >= silenceThresholdDB {
			if firstVoiced < 0 {
				firstVoiced = offset
			}
			lastVoiced = limit
		}
	}
	if firstVoiced < 0 {
		return 0, 0, false
	}

	padding := sampleRate * trimPaddingMillis / 1000
	start = firstVoiced - padding
	if start < 0 {
		start = 0
	}
	end = lastVoiced + padding
	if end > len(data) {
		end = len(data)
	}
	return start, end, true
}

// windowLevelDB computes the RMS level of one window in dBFS. Samples are
// already normalized to [-1, 1] by the decoder.
func windowLevelDB(window []float32) float64 {
	if len(window) == 0 {
		return math.Inf(-1)
	}
	var sum float64
	for _, s := range window {
		v := float64(s)
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(window)))
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms)
}

func decodeWaveform(path string) (*audio.Float32Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels != CanonicalChannels {
		return nil, fmt.Errorf("expected mono canonical waveform, got %+v", buf.Format)
	}
	return buf, nil
}

func encodeWaveform(path string, buf *audio.Float32Buffer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	enc := wav.NewEncoder(f, buf.Format.SampleRate, CanonicalBitDepth, buf.Format.NumChannels, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return enc.Close()
}
