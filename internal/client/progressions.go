package client

import (
	"context"
	"net/http"
	"net/url"

	"cartable/internal/domain/models/pedagogy"
)

// ListProgressions returns the current user's progressions.
func (c *Client) ListProgressions(ctx context.Context, token string) ([]pedagogy.Progression, error) {
	var progressions []pedagogy.Progression
	if err := c.getList(ctx, "progressions.list", "/progressions/", token, &progressions); err != nil {
		return nil, err
	}
	return progressions, nil
}

// GetProgression fetches one progression.
func (c *Client) GetProgression(ctx context.Context, id, token string) (*pedagogy.Progression, error) {
	var p pedagogy.Progression
	if err := c.doJSON(ctx, "progressions.get", http.MethodGet, "/progressions/"+url.PathEscape(id), token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProgression creates a progression owned by the token's user.
func (c *Client) CreateProgression(ctx context.Context, in *pedagogy.ProgressionInput, token string) (*pedagogy.Progression, error) {
	var p pedagogy.Progression
	if err := c.doJSON(ctx, "progressions.create", http.MethodPost, "/progressions/", token, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProgression replaces a progression's title and description.
func (c *Client) UpdateProgression(ctx context.Context, id string, in *pedagogy.ProgressionInput, token string) (*pedagogy.Progression, error) {
	var p pedagogy.Progression
	if err := c.doJSON(ctx, "progressions.update", http.MethodPut, "/progressions/"+url.PathEscape(id), token, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProgression deletes a progression and, upstream, everything below it.
func (c *Client) DeleteProgression(ctx context.Context, id, token string) error {
	return c.doJSON(ctx, "progressions.delete", http.MethodDelete, "/progressions/"+url.PathEscape(id), token, nil, nil)
}
