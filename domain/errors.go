package domain

import (
	"errors"
	"fmt"
)

// Stage identifies where in the reminder pipeline a request currently is.
// Failed is terminal and reachable from every non-terminal stage.
type Stage string

const (
	StageReceived         Stage = "received"
	StageVoiceReady       Stage = "voice_ready"
	StageContentGenerated Stage = "content_generated"
	StageParsed           Stage = "parsed"
	StageAudioRendered    Stage = "audio_rendered"
	StageUploaded         Stage = "uploaded"
	StagePersisted        Stage = "persisted"
	StageDone             Stage = "done"
	StageFailed           Stage = "failed"
)

// Failure taxonomy for the pipeline. Compare with errors.Is.
var (
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrMissingAnswer         = errors.New("quiz answer missing from model response")
	ErrMalformedStructure    = errors.New("model response structure malformed")
	ErrTranscodeFailed       = errors.New("audio transcode failed")
	ErrPreprocessingFailed   = errors.New("voice preprocessing failed")
	ErrSynthesisFailed       = errors.New("speech synthesis failed")
	ErrTempoAdjustmentFailed = errors.New("tempo adjustment failed")
	ErrUploadFailed          = errors.New("artifact upload failed")
	ErrPersistFailed         = errors.New("record persistence failed")
)

// StageError wraps a pipeline failure with the stage that was being entered
// when it happened. The whole request aborts on the first StageError; no
// automatic retries.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailAt builds the terminal error for a request that could not reach the
// given stage.
func FailAt(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
