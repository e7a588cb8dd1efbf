package client

import (
	"context"
	"net/http"
	"net/url"

	"cartable/internal/domain/models/pedagogy"
)

// ListResources returns every resource visible to the user.
func (c *Client) ListResources(ctx context.Context, token string) ([]pedagogy.Resource, error) {
	var resources []pedagogy.Resource
	if err := c.getList(ctx, "resources.list", "/resources/", token, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

// GetResource fetches one resource with its type and sessions.
func (c *Client) GetResource(ctx context.Context, id, token string) (*pedagogy.Resource, error) {
	var r pedagogy.Resource
	if err := c.doJSON(ctx, "resources.get", http.MethodGet, "/resources/"+url.PathEscape(id), token, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateResource creates a resource and links it to its sessions.
func (c *Client) CreateResource(ctx context.Context, in *pedagogy.ResourceCreate, token string) (*pedagogy.Resource, error) {
	var r pedagogy.Resource
	if err := c.doJSON(ctx, "resources.create", http.MethodPost, "/resources/", token, in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateResource applies a partial update.
func (c *Client) UpdateResource(ctx context.Context, id string, in *pedagogy.ResourceUpdate, token string) (*pedagogy.Resource, error) {
	var r pedagogy.Resource
	if err := c.doJSON(ctx, "resources.update", http.MethodPut, "/resources/"+url.PathEscape(id), token, in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteResource deletes a resource.
func (c *Client) DeleteResource(ctx context.Context, id, token string) error {
	return c.doJSON(ctx, "resources.delete", http.MethodDelete, "/resources/"+url.PathEscape(id), token, nil, nil)
}

// ListResourceTypes returns the resource type catalog.
func (c *Client) ListResourceTypes(ctx context.Context, token string) ([]pedagogy.ResourceType, error) {
	var types []pedagogy.ResourceType
	if err := c.getList(ctx, "resource_types.list", "/resource-types/types", token, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// ListResourceSubTypes returns subtypes, restricted to typeID when it is not empty.
func (c *Client) ListResourceSubTypes(ctx context.Context, typeID, token string) ([]pedagogy.ResourceSubType, error) {
	path := "/resource-types/subtypes"
	if typeID != "" {
		path += "?" + url.Values{"type_id": {typeID}}.Encode()
	}

	var subtypes []pedagogy.ResourceSubType
	if err := c.getList(ctx, "resource_subtypes.list", path, token, &subtypes); err != nil {
		return nil, err
	}
	return subtypes, nil
}
