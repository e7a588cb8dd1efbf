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

// progressionService implements the ProgressionService interface
type progressionService struct {
	repo    pedagogyRepo.ProgressionRepository
	refresh *treeRefresher
	logger  *slog.Logger
}

// NewProgressionService creates a new progression service.
// trees may be nil.
func NewProgressionService(
	repo pedagogyRepo.ProgressionRepository,
	trees services.TreeSessions,
	logger *slog.Logger,
) services.ProgressionService {
	return &progressionService{
		repo:    repo,
		refresh: &treeRefresher{trees: trees, logger: logger},
		logger:  logger,
	}
}

// ListProgressions retrieves the caller's progressions
func (s *progressionService) ListProgressions(ctx context.Context, caller services.Caller) ([]pedagogy.Progression, error) {
	return s.repo.ListProgressions(ctx, caller.Token)
}

// GetProgression retrieves a progression by ID
func (s *progressionService) GetProgression(ctx context.Context, caller services.Caller, id string) (*pedagogy.Progression, error) {
	return s.repo.GetProgression(ctx, id, caller.Token)
}

// CreateProgression creates a progression and reloads the caller's tree
func (s *progressionService) CreateProgression(ctx context.Context, caller services.Caller, req *services.ProgressionRequest) (*pedagogy.Progression, error) {
	if err := validateProgression(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	progression, err := s.repo.CreateProgression(ctx, toProgressionInput(req), caller.Token)
	if err != nil {
		return nil, err
	}

	s.logger.Info("progression created",
		"id", progression.ID,
		"title", progression.Title,
		"user", caller.UserKey,
	)

	s.refresh.reloadRoot(ctx, caller)
	return progression, nil
}

// UpdateProgression replaces a progression's title and description
func (s *progressionService) UpdateProgression(ctx context.Context, caller services.Caller, id string, req *services.ProgressionRequest) (*pedagogy.Progression, error) {
	if err := validateProgression(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	progression, err := s.repo.UpdateProgression(ctx, id, toProgressionInput(req), caller.Token)
	if err != nil {
		return nil, err
	}

	s.logger.Info("progression updated",
		"id", id,
		"title", progression.Title,
		"user", caller.UserKey,
	)

	s.refresh.reloadRoot(ctx, caller)
	return progression, nil
}

// DeleteProgression deletes a progression and reloads the caller's tree
func (s *progressionService) DeleteProgression(ctx context.Context, caller services.Caller, id string) error {
	if err := s.repo.DeleteProgression(ctx, id, caller.Token); err != nil {
		return err
	}

	s.logger.Info("progression deleted",
		"id", id,
		"user", caller.UserKey,
	)

	s.refresh.reloadRoot(ctx, caller)
	return nil
}

func toProgressionInput(req *services.ProgressionRequest) *pedagogy.ProgressionInput {
	return &pedagogy.ProgressionInput{
		Title:       strings.TrimSpace(req.Title),
		Description: trimmed(req.Description),
	}
}
