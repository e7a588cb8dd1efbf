package pedagogy

import (
	"context"

	"cartable/internal/domain/models/pedagogy"
)

// ResourceRepository is the upstream store of resources and their types.
type ResourceRepository interface {
	ListResources(ctx context.Context, token string) ([]pedagogy.Resource, error)
	GetResource(ctx context.Context, id, token string) (*pedagogy.Resource, error)
	CreateResource(ctx context.Context, in *pedagogy.ResourceCreate, token string) (*pedagogy.Resource, error)
	UpdateResource(ctx context.Context, id string, in *pedagogy.ResourceUpdate, token string) (*pedagogy.Resource, error)
	DeleteResource(ctx context.Context, id, token string) error

	ListResourceTypes(ctx context.Context, token string) ([]pedagogy.ResourceType, error)
	ListResourceSubTypes(ctx context.Context, typeID, token string) ([]pedagogy.ResourceSubType, error)
}
