package services

import (
	"context"

	"cartable/internal/domain/models/pedagogy"
)

// Caller identifies who a service call is made for.
type Caller struct {
	UserKey string // stable per-user key, used to find the user's tree
	Token   string // bearer token forwarded upstream
}

// ProgressionRequest is the create/update request for a progression.
type ProgressionRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// CreateResourceRequest is the create request for a resource.
// IDs are the normalized string form; UserID defaults to the caller's account.
type CreateResourceRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	TypeID      string   `json:"type_id"`
	SubTypeID   string   `json:"sub_type_id"`
	SourceType  string   `json:"source_type"`
	SessionIDs  []string `json:"session_ids,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
}

// UpdateResourceRequest is a partial update; nil fields are left untouched.
type UpdateResourceRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	TypeID      *string  `json:"type_id,omitempty"`
	SubTypeID   *string  `json:"sub_type_id,omitempty"`
	SessionIDs  []string `json:"session_ids,omitempty"`
}

// ProgressionService defines progression operations. Mutations reload the
// caller's tree from the top.
type ProgressionService interface {
	ListProgressions(ctx context.Context, caller Caller) ([]pedagogy.Progression, error)
	GetProgression(ctx context.Context, caller Caller, id string) (*pedagogy.Progression, error)
	CreateProgression(ctx context.Context, caller Caller, req *ProgressionRequest) (*pedagogy.Progression, error)
	UpdateProgression(ctx context.Context, caller Caller, id string, req *ProgressionRequest) (*pedagogy.Progression, error)
	DeleteProgression(ctx context.Context, caller Caller, id string) error
}

// ResourceService defines resource operations. Mutations reload the sessions
// the resource is (or was) attached to, when those are resolved in the tree.
type ResourceService interface {
	ListResources(ctx context.Context, caller Caller) ([]pedagogy.Resource, error)
	GetResource(ctx context.Context, caller Caller, id string) (*pedagogy.Resource, error)
	CreateResource(ctx context.Context, caller Caller, req *CreateResourceRequest) (*pedagogy.Resource, error)
	UpdateResource(ctx context.Context, caller Caller, id string, req *UpdateResourceRequest) (*pedagogy.Resource, error)
	DeleteResource(ctx context.Context, caller Caller, id string) error
	ListResourceTypes(ctx context.Context, caller Caller) ([]pedagogy.ResourceType, error)
	ListResourceSubTypes(ctx context.Context, caller Caller, typeID string) ([]pedagogy.ResourceSubType, error)
}

// Conversation is a snapshot of one assistant conversation.
type Conversation struct {
	ID      string                 `json:"id"`
	History []pedagogy.ChatMessage `json:"history"`
}

// ChatService keeps assistant conversations and relays messages.
// A conversation belongs to the user key that started it; other callers see
// domain.ErrNotFound.
type ChatService interface {
	// Start opens an empty conversation for caller and returns its ID
	Start(caller Caller) string

	// Send posts message with the conversation's history and records both turns
	// on success. History is left untouched on failure.
	Send(ctx context.Context, caller Caller, conversationID, message string) (*pedagogy.ChatMessage, error)

	// Conversation returns a copy of the conversation
	Conversation(caller Caller, conversationID string) (*Conversation, error)

	// Reset clears a conversation's history
	Reset(caller Caller, conversationID string) error
}
