package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carelink/reminisce/server/domain/entities"
	"github.com/carelink/reminisce/server/domain/repositories"
)

type VoiceProfileRepository struct {
	collection *mongo.Collection
}

// NewVoiceProfileRepository creates a new MongoDB voice profile repository
func NewVoiceProfileRepository(db *mongo.Database) repositories.VoiceProfileRepository {
	return &VoiceProfileRepository{
		collection: db.Collection("voice_profiles"),
	}
}

// GetByGuardianID implements repositories.VoiceProfileRepository
func (r *VoiceProfileRepository) GetByGuardianID(ctx context.Context, guardianID string) (*entities.VoiceProfile, error) {
	if guardianID == "" {
		return nil, errors.New("guardian ID cannot be empty")
	}

	var profile entities.VoiceProfile
	err := r.collection.FindOne(ctx, bson.M{"guardian_id": guardianID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // No cached handle, return nil without error
		}
		return nil, fmt.Errorf("failed to get voice profile for guardian %s: %w", guardianID, err)
	}

	return &profile, nil
}

// Upsert implements repositories.VoiceProfileRepository. Last-writer-wins:
// one profile per guardian, replaced wholesale on re-registration.
func (r *VoiceProfileRepository) Upsert(ctx context.Context, profile *entities.VoiceProfile) error {
	if profile == nil {
		return errors.New("voice profile cannot be nil")
	}
	if profile.GuardianID == "" || profile.VoiceID == "" {
		return errors.New("voice profile requires guardian and voice IDs")
	}
	profile.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"voice_id":   profile.VoiceID,
			"name":       profile.Name,
			"sample_url": profile.SampleURL,
			"updated_at": profile.UpdatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, bson.M{"guardian_id": profile.GuardianID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert voice profile: %w", err)
	}
	return nil
}
