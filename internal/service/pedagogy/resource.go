package pedagogy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cartable/internal/domain"
	"cartable/internal/domain/models/pedagogy"
	pedagogyRepo "cartable/internal/domain/repositories/pedagogy"
	"cartable/internal/domain/services"
)

// resourceService implements the ResourceService interface
type resourceService struct {
	repo     pedagogyRepo.ResourceRepository
	accounts pedagogyRepo.AccountRepository
	refresh  *treeRefresher
	logger   *slog.Logger
}

// NewResourceService creates a new resource service.
// trees may be nil.
func NewResourceService(
	repo pedagogyRepo.ResourceRepository,
	accounts pedagogyRepo.AccountRepository,
	trees services.TreeSessions,
	logger *slog.Logger,
) services.ResourceService {
	return &resourceService{
		repo:     repo,
		accounts: accounts,
		refresh:  &treeRefresher{trees: trees, logger: logger},
		logger:   logger,
	}
}

// ListResources retrieves the caller's resources
func (s *resourceService) ListResources(ctx context.Context, caller services.Caller) ([]pedagogy.Resource, error) {
	return s.repo.ListResources(ctx, caller.Token)
}

// GetResource retrieves a resource by ID
func (s *resourceService) GetResource(ctx context.Context, caller services.Caller, id string) (*pedagogy.Resource, error) {
	return s.repo.GetResource(ctx, id, caller.Token)
}

// CreateResource creates a resource owned by the caller unless req names a user
func (s *resourceService) CreateResource(ctx context.Context, caller services.Caller, req *services.CreateResourceRequest) (*pedagogy.Resource, error) {
	if err := validateCreateResource(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	userID := req.UserID
	if userID == "" {
		me, err := s.accounts.Me(ctx, caller.Token)
		if err != nil {
			return nil, err
		}
		userID = me.ID.String()
		if err := fitsInt64(userID); err != nil {
			return nil, &domain.FormatError{Op: "GET /auth/me", Err: fmt.Errorf("user id %v", err)}
		}
	}

	resource, err := s.repo.CreateResource(ctx, &pedagogy.ResourceCreate{
		Title:       strings.TrimSpace(req.Title),
		Description: trimmed(req.Description),
		TypeID:      toInt64(req.TypeID),
		SubTypeID:   toInt64(req.SubTypeID),
		SourceType:  req.SourceType,
		SessionIDs:  toInt64s(req.SessionIDs),
		UserID:      toInt64(userID),
	}, caller.Token)
	if err != nil {
		return nil, err
	}

	s.logger.Info("resource created",
		"id", resource.ID,
		"title", resource.Title,
		"sessions", len(resource.Sessions),
		"user", caller.UserKey,
	)

	s.refresh.reloadSessions(ctx, caller, union(req.SessionIDs, resource.SessionIDs()))
	return resource, nil
}

// UpdateResource applies a partial update. Sessions the resource leaves and
// joins are both reloaded.
func (s *resourceService) UpdateResource(ctx context.Context, caller services.Caller, id string, req *services.UpdateResourceRequest) (*pedagogy.Resource, error) {
	if err := validateUpdateResource(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	existing, err := s.repo.GetResource(ctx, id, caller.Token)
	if err != nil {
		return nil, err
	}

	resource, err := s.repo.UpdateResource(ctx, id, &pedagogy.ResourceUpdate{
		Title:       trimmed(req.Title),
		Description: trimmed(req.Description),
		TypeID:      optionalInt64(req.TypeID),
		SubTypeID:   optionalInt64(req.SubTypeID),
		SessionIDs:  toInt64s(req.SessionIDs),
	}, caller.Token)
	if err != nil {
		return nil, err
	}

	s.logger.Info("resource updated",
		"id", id,
		"title", resource.Title,
		"user", caller.UserKey,
	)

	s.refresh.reloadSessions(ctx, caller, union(existing.SessionIDs(), resource.SessionIDs()))
	return resource, nil
}

// DeleteResource deletes a resource and reloads the sessions it was attached to
func (s *resourceService) DeleteResource(ctx context.Context, caller services.Caller, id string) error {
	// Verify resource exists first (and learn its sessions)
	existing, err := s.repo.GetResource(ctx, id, caller.Token)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteResource(ctx, id, caller.Token); err != nil {
		return err
	}

	s.logger.Info("resource deleted",
		"id", id,
		"user", caller.UserKey,
	)

	s.refresh.reloadSessions(ctx, caller, existing.SessionIDs())
	return nil
}

// ListResourceTypes lists the resource classifications
func (s *resourceService) ListResourceTypes(ctx context.Context, caller services.Caller) ([]pedagogy.ResourceType, error) {
	return s.repo.ListResourceTypes(ctx, caller.Token)
}

// ListResourceSubTypes lists the sub-types of a resource type
func (s *resourceService) ListResourceSubTypes(ctx context.Context, caller services.Caller, typeID string) ([]pedagogy.ResourceSubType, error) {
	if !numericID.MatchString(typeID) {
		return nil, &domain.ValidationError{Message: "type_id must be numeric"}
	}
	if err := fitsInt64(typeID); err != nil {
		return nil, &domain.ValidationError{Message: "type_id " + err.Error()}
	}
	return s.repo.ListResourceSubTypes(ctx, typeID, caller.Token)
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
