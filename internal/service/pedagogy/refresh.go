package pedagogy

import (
	"context"
	"log/slog"

	"cartable/internal/domain/models/tree"
	"cartable/internal/domain/services"
	servicetree "cartable/internal/service/tree"
)

// treeRefresher brings a caller's tree back in line after a mutation.
// Refresh failures are logged only: the mutation itself already succeeded.
type treeRefresher struct {
	trees  services.TreeSessions // nil when no tree is kept (CLI one-shots)
	logger *slog.Logger
}

// reloadRoot refetches the progressions of the caller's tree, if any.
func (r *treeRefresher) reloadRoot(ctx context.Context, caller services.Caller) {
	ctrl, ok := r.lookup(caller)
	if !ok {
		return
	}
	if err := ctrl.Load(ctx); err != nil {
		r.logger.Warn("tree reload failed", "user", caller.UserKey, "error", err)
	}
}

// reloadSessions refetches the resources of each listed session that is
// already resolved in the caller's tree. Gated sessions fetch on expand anyway.
func (r *treeRefresher) reloadSessions(ctx context.Context, caller services.Caller, sessionIDs []string) {
	ctrl, ok := r.lookup(caller)
	if !ok || len(sessionIDs) == 0 {
		return
	}

	root := ctrl.Snapshot().Root
	seen := make(map[string]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		n := servicetree.FindNode(root, id)
		if n == nil || n.Kind != tree.KindSession || n.IsLoadingGate() {
			continue
		}
		if _, err := ctrl.Reload(ctx, id); err != nil {
			r.logger.Warn("session reload failed", "user", caller.UserKey, "session_id", id, "error", err)
		}
	}
}

func (r *treeRefresher) lookup(caller services.Caller) (services.TreeController, bool) {
	if r.trees == nil || caller.UserKey == "" {
		return nil, false
	}
	return r.trees.Lookup(caller.UserKey)
}
