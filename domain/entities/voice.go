package entities

import "time"

// VoiceProfile caches the provider-issued voice handle for one guardian.
// Recreating a cloned voice is expensive; the profile lets later requests
// reuse the handle without re-registering. Writes are last-writer-wins.
type VoiceProfile struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	GuardianID string    `bson:"guardian_id" json:"guardian_id"`
	VoiceID    string    `bson:"voice_id" json:"voice_id"`
	Name       string    `bson:"name" json:"name"`
	SampleURL  string    `bson:"sample_url,omitempty" json:"sample_url,omitempty"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}
