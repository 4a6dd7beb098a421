package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carelink/reminisce/server/domain/entities"
	"github.com/carelink/reminisce/server/domain/repositories"
)

type ReminderRepository struct {
	collection *mongo.Collection
}

// NewReminderRepository creates a new MongoDB reminder repository
func NewReminderRepository(db *mongo.Database) repositories.ReminderRepository {
	return &ReminderRepository{
		collection: db.Collection("reminders"),
	}
}

// Create implements repositories.ReminderRepository. The document is fully
// assembled by the caller; this is one logical write, never partial.
func (r *ReminderRepository) Create(ctx context.Context, doc *entities.ReminderDocument) (string, error) {
	if doc == nil {
		return "", errors.New("reminder document cannot be nil")
	}
	if doc.GuardianID == "" || doc.PatientID == "" {
		return "", errors.New("reminder document requires guardian and patient IDs")
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create reminder: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprintf("%v", result.InsertedID), nil
}

// ListByPatient implements repositories.ReminderRepository
func (r *ReminderRepository) ListByPatient(ctx context.Context, guardianID, patientID string) ([]*entities.ReminderDocument, error) {
	if guardianID == "" || patientID == "" {
		return nil, errors.New("guardian and patient IDs cannot be empty")
	}

	filter := bson.M{"guardian_id": guardianID, "patient_id": patientID}
	opts := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders for patient %s: %w", patientID, err)
	}
	defer cursor.Close(ctx)

	var docs []*entities.ReminderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}
	return docs, nil
}
