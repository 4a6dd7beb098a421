package repositories

import (
	"context"

	"github.com/carelink/reminisce/server/domain/entities"
)

// TextGenerator abstracts the generative-text provider. The returned text
// is free-form and untrusted; the response parser downstream deals with
// missing or reordered fields.
type TextGenerator interface {
	Generate(ctx context.Context, request entities.GenerationRequest) (string, error)
}
