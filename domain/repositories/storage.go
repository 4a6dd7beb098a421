package repositories

import (
	"context"
	"io"

	"github.com/carelink/reminisce/server/domain/entities"
)

// BlobStore uploads artifacts to external storage and returns their public
// URL. Each put is independent; a failed later upload never rolls back an
// earlier one.
type BlobStore interface {
	Put(ctx context.Context, objectPath string, r io.Reader, contentType string) (string, error)
}

// ReminderRepository persists the canonical reminder documents. One
// document per successful pipeline run; no partial document is ever
// written.
type ReminderRepository interface {
	Create(ctx context.Context, doc *entities.ReminderDocument) (string, error)
	ListByPatient(ctx context.Context, guardianID, patientID string) ([]*entities.ReminderDocument, error)
}

// VoiceProfileRepository caches voice handles per guardian. Upsert is
// last-writer-wins.
type VoiceProfileRepository interface {
	GetByGuardianID(ctx context.Context, guardianID string) (*entities.VoiceProfile, error)
	Upsert(ctx context.Context, profile *entities.VoiceProfile) error
}
