package client

import (
	"context"
	"fmt"
	"net/url"

	"cartable/internal/domain"
	"cartable/internal/domain/models/pedagogy"
	"cartable/internal/domain/models/tree"
)

// childrenPath maps a parent kind onto the endpoint listing its children.
func childrenPath(kind tree.Kind, parentID string) (string, error) {
	id := url.PathEscape(parentID)
	switch kind {
	case tree.KindRoot:
		return "/progressions/", nil
	case tree.KindProgression:
		return "/sequences/by_progression/" + id, nil
	case tree.KindSequence:
		return "/sessions/by_sequence/" + id, nil
	case tree.KindSession:
		return "/resources/by_session/" + id, nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrNotExpandable, kind)
}

// FetchChildren lists the records below parentID, a node of the given kind.
// KindRoot lists the user's progressions; parentID is ignored for it.
// Asking for the children of a resource (or a sentinel) is a caller error.
func (c *Client) FetchChildren(ctx context.Context, kind tree.Kind, parentID, token string) ([]pedagogy.Record, error) {
	path, err := childrenPath(kind, parentID)
	if err != nil {
		return nil, err
	}

	var records []pedagogy.Record
	if err := c.getList(ctx, "children."+string(kind), path, token, &records); err != nil {
		return nil, err
	}
	return records, nil
}
