package pedagogy

import (
	"context"

	"cartable/internal/domain/models/pedagogy"
)

// ProgressionRepository is the upstream store of progressions.
// Every call carries the caller's bearer token.
type ProgressionRepository interface {
	// ListProgressions returns the caller's progressions
	ListProgressions(ctx context.Context, token string) ([]pedagogy.Progression, error)

	// GetProgression retrieves a progression by ID
	GetProgression(ctx context.Context, id, token string) (*pedagogy.Progression, error)

	// CreateProgression creates a progression and returns it with its ID
	CreateProgression(ctx context.Context, in *pedagogy.ProgressionInput, token string) (*pedagogy.Progression, error)

	// UpdateProgression replaces a progression's title and description
	UpdateProgression(ctx context.Context, id string, in *pedagogy.ProgressionInput, token string) (*pedagogy.Progression, error)

	// DeleteProgression deletes a progression with its sequences and sessions
	DeleteProgression(ctx context.Context, id, token string) error
}
