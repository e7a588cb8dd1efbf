package services

import (
	"context"

	"cartable/internal/domain/models/pedagogy"
	"cartable/internal/domain/models/tree"
)

// HierarchyClient fetches one level of the remote hierarchy.
type HierarchyClient interface {
	// FetchChildren lists the records below parentID, a node of the given kind.
	// The token is passed on every call; an empty token fails with
	// domain.ErrUnauthenticated before any network I/O.
	FetchChildren(ctx context.Context, kind tree.Kind, parentID, token string) ([]pedagogy.Record, error)
}

// TreeController is the lazy tree synchronizer for one user.
type TreeController interface {
	// Load (re)fetches the progressions under the root and resets expansion.
	Load(ctx context.Context) error

	// Loaded reports whether the root has been fetched successfully once.
	Loaded() bool

	// Snapshot returns the current consistent view of the tree.
	Snapshot() tree.Snapshot

	// SetExpanded replaces the expanded-id set and resolves the single newly
	// expanded node, if any.
	SetExpanded(ctx context.Context, ids []string) (tree.ExpandResult, error)

	// Expand adds id to the expanded set.
	Expand(ctx context.Context, id string) (tree.ExpandResult, error)

	// Collapse removes id from the expanded set; children are kept.
	Collapse(id string) tree.Snapshot

	// Reload re-fetches the children of an already resolved container.
	Reload(ctx context.Context, id string) (tree.ExpandResult, error)

	// LoadSubtree resolves depth levels below id.
	LoadSubtree(ctx context.Context, id string, depth int) error

	// Subscribe streams snapshots, latest first; call the returned func to stop.
	Subscribe() (<-chan tree.Snapshot, func())
}

// TreeSessions hands out one TreeController per user.
type TreeSessions interface {
	// Get returns the user's controller, creating and loading it on first use.
	// The controller is returned even when the initial load fails so callers
	// can show its error banner.
	Get(ctx context.Context, userKey, token string) (TreeController, error)

	// Lookup returns the user's controller without creating one.
	Lookup(userKey string) (TreeController, bool)

	// Drop forgets the user's controller.
	Drop(userKey string)
}
