package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/carelink/reminisce/server/domain"
	"github.com/carelink/reminisce/server/domain/entities"
	"github.com/carelink/reminisce/server/domain/repositories"
	"github.com/carelink/reminisce/server/internal/audio"
	"github.com/carelink/reminisce/server/internal/parser"
)

const defaultSpeechTempo = 0.83

// ReminderServiceConfig carries the caller-configurable pipeline values.
type ReminderServiceConfig struct {
	// SpeechTempo is the tempo ratio applied to every rendered artifact;
	// below 1 slows speech down for comprehension.
	SpeechTempo float64
	// DefaultRelationship substitutes a missing relationship field.
	DefaultRelationship string
	// WorkDir is the base directory for per-request workspaces; empty
	// means the system temp directory.
	WorkDir string
}

// NewReminderServiceConfigFromEnv reads the pipeline configuration from
// TTS_SPEECH_TEMPO, DEFAULT_RELATIONSHIP and CARELINK_WORK_DIR.
func NewReminderServiceConfigFromEnv() ReminderServiceConfig {
	config := ReminderServiceConfig{
		SpeechTempo:         defaultSpeechTempo,
		DefaultRelationship: "보호자",
		WorkDir:             os.Getenv("CARELINK_WORK_DIR"),
	}
	if s := os.Getenv("TTS_SPEECH_TEMPO"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			config.SpeechTempo = v
		}
	}
	if s := os.Getenv("DEFAULT_RELATIONSHIP"); s != "" {
		config.DefaultRelationship = s
	}
	return config
}

// GenerateInput is one end-to-end pipeline request.
type GenerateInput struct {
	GuardianID       string
	PatientID        string
	VoiceID          string // optional: explicit handle from the client
	GuardianName     string
	PatientName      string
	SceneDescription string
	Relationship     string
	Tone             entities.Tone
	SamplePath       string // optional: local path of an uploaded voice sample
}

// GenerateOutput is the result of one completed pipeline run.
type GenerateOutput struct {
	Record      *entities.ReminiscenceRecord
	ReminderURL string
	QuizURL     string
	VoiceID     string
	DocumentID  string
}

// ReminderService is the pipeline orchestrator. One call to Run executes
// the whole state machine for a single request:
//
//	Received → VoiceReady → ContentGenerated → Parsed → AudioRendered →
//	Uploaded → Persisted → Done
//
// with Failed(stage, reason) reachable from every non-terminal state. No
// automatic retries anywhere; the caller resubmits if it wants one.
type ReminderService struct {
	generator repositories.TextGenerator
	voices    VoiceResolver
	renderer  Renderer
	blob      repositories.BlobStore
	reminders repositories.ReminderRepository
	config    ReminderServiceConfig
	logger    *zap.Logger
}

// NewReminderService creates the orchestrator with all collaborators
// injected.
func NewReminderService(
	generator repositories.TextGenerator,
	voices VoiceResolver,
	renderer Renderer,
	blob repositories.BlobStore,
	reminders repositories.ReminderRepository,
	config ReminderServiceConfig,
	logger *zap.Logger,
) *ReminderService {
	if config.SpeechTempo == 0 {
		config.SpeechTempo = defaultSpeechTempo
	}
	return &ReminderService{
		generator: generator,
		voices:    voices,
		renderer:  renderer,
		blob:      blob,
		reminders: reminders,
		config:    config,
		logger:    logger,
	}
}

// Run executes the pipeline for one request.
func (s *ReminderService) Run(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
	ws, err := audio.NewWorkspace(s.config.WorkDir, s.logger)
	if err != nil {
		return nil, domain.FailAt(domain.StageReceived, err)
	}
	// Local artifacts never outlive the request; cleanup failures are
	// logged inside and never escalated.
	defer ws.Cleanup()

	// Received → VoiceReady
	voiceID, err := s.voices.ResolveVoice(ctx, ws, input.GuardianID, input.VoiceID, input.GuardianName, input.SamplePath)
	if err != nil {
		return nil, domain.FailAt(domain.StageVoiceReady, err)
	}
	s.transition(input, domain.StageVoiceReady)

	// VoiceReady → ContentGenerated
	persona := entities.NewPersonaContext(
		input.PatientName, input.SceneDescription, input.Relationship,
		s.config.DefaultRelationship, input.Tone)
	raw, err := s.generator.Generate(ctx, entities.BuildGenerationRequest(persona))
	if err != nil {
		return nil, domain.FailAt(domain.StageContentGenerated,
			fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err))
	}
	s.transition(input, domain.StageContentGenerated)

	// ContentGenerated → Parsed. A missing answer or structural failure
	// aborts here; generation is never retried automatically.
	record, err := parser.Parse(raw)
	if err != nil {
		return nil, domain.FailAt(domain.StageParsed, err)
	}
	s.transition(input, domain.StageParsed)

	// Parsed → AudioRendered. The two artifacts have no data dependency
	// on each other, so they render concurrently; everything else in the
	// pipeline is strictly ordered.
	reminderPath, quizPath, err := s.renderBoth(ctx, ws, record, voiceID)
	if err != nil {
		return nil, domain.FailAt(domain.StageAudioRendered, err)
	}
	s.transition(input, domain.StageAudioRendered)

	// AudioRendered → Uploaded. Uploads are independent: a failure of the
	// second leaves the first as an accepted orphan, not rolled back.
	reminderURL, err := s.uploadArtifact(ctx, input, reminderPath)
	if err != nil {
		return nil, domain.FailAt(domain.StageUploaded, err)
	}
	quizURL, err := s.uploadArtifact(ctx, input, quizPath)
	if err != nil {
		s.logger.Warn("Quiz upload failed after reminder upload; orphan accepted",
			zap.String("reminderURL", reminderURL))
		return nil, domain.FailAt(domain.StageUploaded, err)
	}
	s.transition(input, domain.StageUploaded)

	// Uploaded → Persisted. The document is fully assembled before the
	// single write call.
	doc := &entities.ReminderDocument{
		ReminiscenceRecord: *record,
		ReminderURL:        reminderURL,
		QuizURL:            quizURL,
		VoiceID:            voiceID,
		GuardianID:         input.GuardianID,
		PatientID:          input.PatientID,
		CreatedAt:          time.Now(),
	}
	documentID, err := s.reminders.Create(ctx, doc)
	if err != nil {
		return nil, domain.FailAt(domain.StagePersisted,
			fmt.Errorf("%w: %v", domain.ErrPersistFailed, err))
	}
	s.transition(input, domain.StagePersisted)

	// Persisted → Done; the deferred workspace cleanup handles the local
	// artifacts.
	s.transition(input, domain.StageDone)

	return &GenerateOutput{
		Record:      record,
		ReminderURL: reminderURL,
		QuizURL:     quizURL,
		VoiceID:     voiceID,
		DocumentID:  documentID,
	}, nil
}

// renderBoth renders the reminiscence sentence and the spoken quiz script
// concurrently and returns both artifact paths.
func (s *ReminderService) renderBoth(ctx context.Context, ws *audio.Workspace, record *entities.ReminiscenceRecord, voiceID string) (string, string, error) {
	var (
		wg           sync.WaitGroup
		reminderPath string
		quizPath     string
		reminderErr  error
		quizErr      error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		reminderPath, reminderErr = s.renderer.Render(ctx, ws, record.ReminiscenceText, voiceID, s.config.SpeechTempo, "reminder")
	}()
	go func() {
		defer wg.Done()
		quizPath, quizErr = s.renderer.Render(ctx, ws, record.SpokenQuizScript(), voiceID, s.config.SpeechTempo, "quiz")
	}()
	wg.Wait()

	if reminderErr != nil {
		return "", "", reminderErr
	}
	if quizErr != nil {
		return "", "", quizErr
	}
	return reminderPath, quizPath, nil
}

// uploadArtifact puts one rendered file under the per-patient prefix.
func (s *ReminderService) uploadArtifact(ctx context.Context, input GenerateInput, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open artifact: %v", domain.ErrUploadFailed, err)
	}
	defer f.Close()

	objectPath := fmt.Sprintf("tts/%s/%s/%s", input.GuardianID, input.PatientID, filepath.Base(path))
	url, err := s.blob.Put(ctx, objectPath, f, "audio/mpeg")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	return url, nil
}

func (s *ReminderService) transition(input GenerateInput, stage domain.Stage) {
	s.logger.Info("Pipeline stage reached",
		zap.String("stage", string(stage)),
		zap.String("guardianID", input.GuardianID),
		zap.String("patientID", input.PatientID))
}
