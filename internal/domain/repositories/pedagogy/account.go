package pedagogy

import (
	"context"

	"cartable/internal/domain/models/pedagogy"
)

// AccountRepository resolves the user behind a token.
type AccountRepository interface {
	Me(ctx context.Context, token string) (*pedagogy.User, error)
}

// Assistant answers chat messages given the prior conversation.
type Assistant interface {
	Chat(ctx context.Context, message string, history []pedagogy.ChatMessage, token string) (*pedagogy.ChatResponse, error)
}
