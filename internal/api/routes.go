package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/carelink/reminisce/server/domain"
	"github.com/carelink/reminisce/server/domain/entities"
	"github.com/carelink/reminisce/server/domain/repositories"
	"github.com/carelink/reminisce/server/internal/audio"
	"github.com/carelink/reminisce/server/internal/auth"
	"github.com/carelink/reminisce/server/usecase"
)

// InitRoutes initializes all API routes. When jwtSecret is non-empty the
// v1 group requires a guardian bearer token.
func InitRoutes(
	e *echo.Echo,
	reminders *usecase.ReminderService,
	voices *usecase.VoiceService,
	reminderRepo repositories.ReminderRepository,
	workDir string,
	jwtSecret []byte,
	logger *zap.Logger,
) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "carelink-reminisce",
		})
	})

	v1 := e.Group("/api/v1")
	if len(jwtSecret) > 0 {
		v1.Use(auth.Middleware(jwtSecret))
	} else {
		logger.Warn("JWT_SECRET not set, API authentication disabled")
	}

	v1.POST("/generate-and-read", func(c echo.Context) error {
		return generateAndRead(c, reminders, logger)
	})
	v1.POST("/register-voice", func(c echo.Context) error {
		return registerVoice(c, voices, workDir, logger)
	})
	v1.GET("/reminders", func(c echo.Context) error {
		return listReminders(c, reminderRepo, logger)
	})
}

func generateAndRead(c echo.Context, reminders *usecase.ReminderService, logger *zap.Logger) error {
	tone := entities.ToneKind
	if v := c.FormValue("tone"); v != "" {
		parsed, err := entities.ParseTone(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_tone",
				Message: err.Error(),
			})
		}
		tone = parsed
	}

	input := usecase.GenerateInput{
		GuardianID:       guardianID(c),
		PatientID:        c.FormValue("patient_uid"),
		VoiceID:          c.FormValue("voice_id"),
		GuardianName:     c.FormValue("guardian_name"),
		PatientName:      c.FormValue("patient_name"),
		SceneDescription: c.FormValue("photo_description"),
		Relationship:     c.FormValue("relationship"),
		Tone:             tone,
	}

	if input.GuardianID == "" || input.PatientID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "guardian_uid and patient_uid are required",
		})
	}
	if input.PatientName == "" || input.SceneDescription == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "patient_name and photo_description are required",
		})
	}

	// An attached sample is optional; it is only consumed when no voice
	// handle is available for the guardian.
	samplePath, cleanup, err := saveUpload(c, "file")
	if err != nil {
		logger.Error("Failed to receive voice sample", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_upload",
			Message: "Could not read the attached voice sample",
		})
	}
	defer cleanup()
	input.SamplePath = samplePath

	output, err := reminders.Run(c.Request().Context(), input)
	if err != nil {
		logger.Error("Pipeline run failed",
			zap.String("guardian_id", input.GuardianID),
			zap.String("patient_id", input.PatientID),
			zap.Error(err))
		return pipelineError(c, err)
	}

	return c.JSON(http.StatusOK, GenerateAndReadResponse{
		ReminderText: output.Record.ReminiscenceText,
		QuizQuestion: output.Record.QuizQuestion,
		QuizOptions:  output.Record.Options,
		QuizAnswer:   output.Record.AnswerText,
		ReminderURL:  output.ReminderURL,
		QuizURL:      output.QuizURL,
		VoiceID:      output.VoiceID,
		DocumentID:   output.DocumentID,
	})
}

func registerVoice(c echo.Context, voices *usecase.VoiceService, workDir string, logger *zap.Logger) error {
	gid := guardianID(c)
	if gid == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "guardian_uid is required",
		})
	}

	samplePath, cleanup, err := saveUpload(c, "file")
	if err != nil || samplePath == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_sample",
			Message: "A voice sample file is required",
		})
	}
	defer cleanup()

	ws, err := audio.NewWorkspace(workDir, logger)
	if err != nil {
		logger.Error("Failed to create workspace", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Could not prepare a working directory",
		})
	}
	defer ws.Cleanup()

	voiceID, err := voices.RegisterVoice(c.Request().Context(), ws, gid, c.FormValue("name"), samplePath)
	if err != nil {
		logger.Error("Voice registration failed",
			zap.String("guardian_id", gid),
			zap.Error(err))
		return pipelineError(c, err)
	}

	return c.JSON(http.StatusOK, RegisterVoiceResponse{
		VoiceID:    voiceID,
		GuardianID: gid,
	})
}

func listReminders(c echo.Context, reminderRepo repositories.ReminderRepository, logger *zap.Logger) error {
	gid := guardianID(c)
	patientID := c.QueryParam("patient_uid")
	if gid == "" || patientID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "guardian_uid and patient_uid are required",
		})
	}

	docs, err := reminderRepo.ListByPatient(c.Request().Context(), gid, patientID)
	if err != nil {
		logger.Error("Failed to list reminders",
			zap.String("guardian_id", gid),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Could not load reminders",
		})
	}

	return c.JSON(http.StatusOK, ReminderListResponse{Reminders: docs})
}

// guardianID prefers the authenticated identity over the form value.
func guardianID(c echo.Context) string {
	if v, ok := c.Get(auth.ContextKeyGuardianID).(string); ok && v != "" {
		return v
	}
	if v := c.FormValue("guardian_uid"); v != "" {
		return v
	}
	return c.QueryParam("guardian_uid")
}

// saveUpload copies the named multipart file to a temporary path. A missing
// file is not an error; the returned path is empty then.
func saveUpload(c echo.Context, field string) (string, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", noop, nil
		}
		return "", noop, err
	}

	src, err := fh.Open()
	if err != nil {
		return "", noop, err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "upload_*"+filepath.Ext(fh.Filename))
	if err != nil {
		return "", noop, err
	}
	cleanup := func() { os.Remove(dst.Name()) }

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		cleanup()
		return "", noop, err
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", noop, err
	}
	return dst.Name(), cleanup, nil
}

// pipelineError maps pipeline failures onto HTTP statuses: unusable input
// or unusable generated content is the caller's 400, provider outages are
// 502, everything else is 500.
func pipelineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrNoVoiceAvailable):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "no_voice",
			Message: "No cached voice handle and no sample provided",
		})
	case errors.Is(err, domain.ErrMissingAnswer), errors.Is(err, domain.ErrMalformedStructure):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "unusable_generation",
			Message: "The generated content could not be parsed",
		})
	case errors.Is(err, domain.ErrTranscodeFailed), errors.Is(err, domain.ErrPreprocessingFailed):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_audio",
			Message: "The voice sample could not be processed",
		})
	case errors.Is(err, domain.ErrGenerationUnavailable), errors.Is(err, domain.ErrSynthesisFailed):
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "provider_unavailable",
			Message: "An upstream provider failed",
		})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "The request could not be completed",
		})
	}
}
