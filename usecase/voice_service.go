package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/carelink/reminisce/server/domain"
	"github.com/carelink/reminisce/server/domain/entities"
	"github.com/carelink/reminisce/server/domain/repositories"
	"github.com/carelink/reminisce/server/internal/audio"
)

// ErrNoVoiceAvailable is returned when a request carries neither a usable
// voice handle nor a sample to register one from.
var ErrNoVoiceAvailable = errors.New("no voice handle cached and no sample provided")

// VoiceResolver supplies a usable voice handle for a guardian.
type VoiceResolver interface {
	ResolveVoice(ctx context.Context, ws *audio.Workspace, guardianID, explicitVoiceID, displayName, samplePath string) (string, error)
}

// VoiceService runs the voice registration pipeline and caches the
// resulting handles per guardian.
type VoiceService struct {
	processor *audio.Processor
	cloner    repositories.VoiceCloner
	blob      repositories.BlobStore
	profiles  repositories.VoiceProfileRepository
	logger    *zap.Logger
}

var _ VoiceResolver = (*VoiceService)(nil)

// NewVoiceService creates a new voice service.
func NewVoiceService(
	processor *audio.Processor,
	cloner repositories.VoiceCloner,
	blob repositories.BlobStore,
	profiles repositories.VoiceProfileRepository,
	logger *zap.Logger,
) *VoiceService {
	return &VoiceService{
		processor: processor,
		cloner:    cloner,
		blob:      blob,
		profiles:  profiles,
		logger:    logger,
	}
}

// ResolveVoice returns a voice handle for the guardian, in order of
// preference: the explicit handle from the request, the cached profile, or
// a fresh registration from the provided sample. Recreating a clone is
// expensive, so the cache is always consulted before registering.
func (s *VoiceService) ResolveVoice(ctx context.Context, ws *audio.Workspace, guardianID, explicitVoiceID, displayName, samplePath string) (string, error) {
	if explicitVoiceID != "" {
		return explicitVoiceID, nil
	}

	profile, err := s.profiles.GetByGuardianID(ctx, guardianID)
	if err != nil {
		return "", fmt.Errorf("voice profile lookup: %w", err)
	}
	if profile != nil && profile.VoiceID != "" {
		s.logger.Info("Reusing cached voice handle",
			zap.String("guardianID", guardianID),
			zap.String("voiceID", profile.VoiceID))
		return profile.VoiceID, nil
	}

	if samplePath == "" {
		return "", ErrNoVoiceAvailable
	}

	return s.RegisterVoice(ctx, ws, guardianID, displayName, samplePath)
}

// RegisterVoice turns a raw caregiver sample into a cloned voice:
// normalize, denoise, trim, compress, upload the cleaned copy, register
// with the provider, cache the handle. Each intermediate file is deleted
// as soon as the next stage has consumed it. The pipeline never falls back
// to the unclean sample.
func (s *VoiceService) RegisterVoice(ctx context.Context, ws *audio.Workspace, guardianID, displayName, samplePath string) (string, error) {
	normalized := ws.UniquePath("normalized", ".wav")
	if err := s.processor.ToCanonicalWaveform(ctx, samplePath, normalized); err != nil {
		return "", err
	}

	denoised := ws.UniquePath("denoised", ".wav")
	if err := s.processor.Denoise(ctx, normalized, denoised); err != nil {
		return "", err
	}
	ws.Remove(normalized)

	voiced := ws.UniquePath("voiced", ".wav")
	if err := s.processor.TrimSilence(denoised, voiced); err != nil {
		return "", err
	}
	ws.Remove(denoised)

	cleaned := ws.UniquePath("cleaned", ".mp3")
	if err := s.processor.EncodeVoiceSample(ctx, voiced, cleaned); err != nil {
		return "", err
	}
	ws.Remove(voiced)

	sampleURL, err := s.uploadCleanedSample(ctx, guardianID, cleaned)
	if err != nil {
		return "", err
	}

	f, err := os.Open(cleaned)
	if err != nil {
		return "", fmt.Errorf("%w: open cleaned sample: %v", domain.ErrPreprocessingFailed, err)
	}
	defer f.Close()

	voiceID, err := s.cloner.RegisterVoice(ctx, displayName, f, filepath.Base(cleaned))
	if err != nil {
		return "", fmt.Errorf("voice registration: %w", err)
	}

	// Cache the handle for later requests. A cache write failure is not
	// worth failing a successful registration over; the next registration
	// will overwrite it anyway (last-writer-wins).
	profile := &entities.VoiceProfile{
		GuardianID: guardianID,
		VoiceID:    voiceID,
		Name:       displayName,
		SampleURL:  sampleURL,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		s.logger.Warn("Failed to cache voice handle",
			zap.String("guardianID", guardianID),
			zap.Error(err))
	}

	s.logger.Info("Voice registered",
		zap.String("guardianID", guardianID),
		zap.String("voiceID", voiceID))
	return voiceID, nil
}

func (s *VoiceService) uploadCleanedSample(ctx context.Context, guardianID, cleanedPath string) (string, error) {
	f, err := os.Open(cleanedPath)
	if err != nil {
		return "", fmt.Errorf("%w: open cleaned sample: %v", domain.ErrPreprocessingFailed, err)
	}
	defer f.Close()

	objectPath := fmt.Sprintf("cleaned_voice/%s/%s", guardianID, filepath.Base(cleanedPath))
	url, err := s.blob.Put(ctx, objectPath, f, "audio/mpeg")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	return url, nil
}
