package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/carelink/reminisce/server/adapters/llm"
	"github.com/carelink/reminisce/server/domain/entities"
	"github.com/carelink/reminisce/server/internal/audio"
	"github.com/carelink/reminisce/server/usecase"
)

type stubCloner struct{}

func (stubCloner) RegisterVoice(_ context.Context, _ string, sample io.Reader, _ string) (string, error) {
	_, err := io.ReadAll(sample)
	return "voice-new", err
}

type stubSynthesizer struct{}

func (stubSynthesizer) Synthesize(_ context.Context, _, _ string) ([]byte, error) {
	return []byte("audio"), nil
}

type stubBlob struct{}

func (stubBlob) Put(_ context.Context, objectPath string, r io.Reader, _ string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	return "https://storage.googleapis.com/test-bucket/" + objectPath, nil
}

type stubProfiles struct{}

func (stubProfiles) GetByGuardianID(_ context.Context, _ string) (*entities.VoiceProfile, error) {
	return nil, nil
}

func (stubProfiles) Upsert(_ context.Context, _ *entities.VoiceProfile) error {
	return nil
}

type stubReminders struct{}

func (stubReminders) Create(_ context.Context, _ *entities.ReminderDocument) (string, error) {
	return "doc-1", nil
}

func (stubReminders) ListByPatient(_ context.Context, _, _ string) ([]*entities.ReminderDocument, error) {
	return nil, nil
}

// newTestServer wires the routes with stub collaborators and a processor
// pointing at a nonexistent ffmpeg binary, so any request that reaches the
// audio chain fails deterministically.
func newTestServer(t *testing.T, workDir string) *echo.Echo {
	t.Helper()
	logger := zaptest.NewLogger(t)
	processor := audio.NewProcessor("/nonexistent/ffmpeg", logger)
	voices := usecase.NewVoiceService(processor, stubCloner{}, stubBlob{}, stubProfiles{}, logger)
	renderer := usecase.NewSpeechRenderer(stubSynthesizer{}, processor, logger)
	reminders := usecase.NewReminderService(
		llm.NewMockGenerator(),
		voices,
		renderer,
		stubBlob{},
		stubReminders{},
		usecase.ReminderServiceConfig{WorkDir: workDir},
		logger,
	)

	e := echo.New()
	InitRoutes(e, reminders, voices, stubReminders{}, workDir, nil, logger)
	return e
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		if _, err := fw.Write(fileData); err != nil {
			t.Fatalf("Write file part failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close writer failed: %v", err)
	}
	return body, w.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestServer(t, t.TempDir())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
}

func TestGenerateAndReadMissingFields(t *testing.T) {
	e := newTestServer(t, t.TempDir())

	body, contentType := multipartBody(t, map[string]string{
		"guardian_uid": "guardian-1",
	}, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-and-read", body)
	req.Header.Set(echo.HeaderContentType, contentType)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Response is not an error envelope: %v", err)
	}
	if errResp.Error != "missing_fields" {
		t.Errorf("Expected missing_fields, got %q", errResp.Error)
	}
}

func TestRegisterVoiceUsesConfiguredWorkDir(t *testing.T) {
	// Point the work dir at a regular file; workspace creation under it
	// must fail, proving the handler uses the injected directory.
	blocked := filepath.Join(t.TempDir(), "not_a_dir")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	e := newTestServer(t, blocked)

	body, contentType := multipartBody(t, map[string]string{
		"guardian_uid": "guardian-1",
		"name":         "김보호",
	}, "file", "sample.m4a", []byte("not audio"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register-voice", body)
	req.Header.Set(echo.HeaderContentType, contentType)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterVoiceCleansWorkDir(t *testing.T) {
	workDir := t.TempDir()
	e := newTestServer(t, workDir)

	body, contentType := multipartBody(t, map[string]string{
		"guardian_uid": "guardian-1",
		"name":         "김보호",
	}, "file", "sample.m4a", []byte("not audio"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register-voice", body)
	req.Header.Set(echo.HeaderContentType, contentType)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	// The stub processor cannot run ffmpeg, so cleaning fails as a bad
	// sample.
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Response is not an error envelope: %v", err)
	}
	if errResp.Error != "invalid_audio" {
		t.Errorf("Expected invalid_audio, got %q", errResp.Error)
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected workspace removed from work dir, found %d entries", len(entries))
	}
}
