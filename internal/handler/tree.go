package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"cartable/internal/config"
	"cartable/internal/domain"
	"cartable/internal/domain/models/tree"
	"cartable/internal/domain/services"
	"cartable/internal/handler/sse"
	"cartable/internal/httputil"
)

// TreeHandler serves the caller's synchronized tree
type TreeHandler struct {
	sessions  services.TreeSessions
	sseConfig *sse.Config
	logger    *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(sessions services.TreeSessions, sseConfig *sse.Config, logger *slog.Logger) *TreeHandler {
	if sseConfig == nil {
		sseConfig = sse.DefaultConfig()
	}
	return &TreeHandler{
		sessions:  sessions,
		sseConfig: sseConfig,
		logger:    logger,
	}
}

// treeResponse pairs an expand outcome with the tree it produced
type treeResponse struct {
	Result *tree.ExpandResult `json:"result,omitempty"`
	Tree   tree.Snapshot      `json:"tree"`
}

// controller returns the caller's controller, loading it on first use.
// A failed first load still yields a controller carrying the error banner.
func (h *TreeHandler) controller(w http.ResponseWriter, r *http.Request) (services.TreeController, bool) {
	caller := callerFrom(r)
	ctrl, err := h.sessions.Get(r.Context(), caller.UserKey, caller.Token)
	if ctrl == nil || errors.Is(err, domain.ErrUnauthenticated) {
		if err == nil {
			err = domain.ErrUnauthenticated
		}
		handleError(w, err)
		return nil, false
	}
	return ctrl, true
}

// GetTree handles GET /api/tree
// Optional ?depth=N eagerly resolves N levels below the root.
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	depth, err := httputil.QueryInt(r, "depth", 0)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if depth > config.MaxTreeDepth {
		depth = config.MaxTreeDepth
	}

	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	if depth > 0 {
		if err := ctrl.LoadSubtree(r.Context(), tree.RootID, depth); err != nil {
			handleError(w, err)
			return
		}
	}

	httputil.RespondJSON(w, http.StatusOK, treeResponse{Tree: ctrl.Snapshot()})
}

// RefreshTree handles POST /api/tree/refresh
// Upstream failures are reported through the snapshot's error banner.
func (h *TreeHandler) RefreshTree(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	if err := ctrl.Load(r.Context()); errors.Is(err, domain.ErrUnauthenticated) {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, treeResponse{Tree: ctrl.Snapshot()})
}

// SetExpanded handles PUT /api/tree/expanded
func (h *TreeHandler) SetExpanded(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Expanded []string `json:"expanded"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	result, err := ctrl.SetExpanded(r.Context(), req.Expanded)
	h.respondResult(w, ctrl, result, err)
}

// ExpandNode handles POST /api/tree/nodes/{id}/expand
func (h *TreeHandler) ExpandNode(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	result, err := ctrl.Expand(r.Context(), r.PathValue("id"))
	h.respondResult(w, ctrl, result, err)
}

// CollapseNode handles POST /api/tree/nodes/{id}/collapse
func (h *TreeHandler) CollapseNode(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	httputil.RespondJSON(w, http.StatusOK, treeResponse{Tree: ctrl.Collapse(r.PathValue("id"))})
}

// ReloadNode handles POST /api/tree/nodes/{id}/reload
func (h *TreeHandler) ReloadNode(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	result, err := ctrl.Reload(r.Context(), r.PathValue("id"))
	h.respondResult(w, ctrl, result, err)
}

func (h *TreeHandler) respondResult(w http.ResponseWriter, ctrl services.TreeController, result tree.ExpandResult, err error) {
	if err != nil && errors.Is(err, domain.ErrUnauthenticated) {
		handleError(w, err)
		return
	}
	if result.Outcome == tree.OutcomeNotFound {
		httputil.RespondErrorWithExtras(w, http.StatusNotFound, "node not found", map[string]interface{}{
			"node_id": result.NodeID,
		})
		return
	}
	httputil.RespondJSON(w, http.StatusOK, treeResponse{Result: &result, Tree: ctrl.Snapshot()})
}

// Events handles GET /api/tree/events
// Streams a "tree" event carrying the full snapshot after every change.
func (h *TreeHandler) Events(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	stream, err := sse.NewStream(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	updates, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	keepAlive := sse.NewTickerKeepAlive(h.sseConfig.KeepAliveInterval)
	keepAliveDone := keepAlive.Start(stream, h.logger)
	defer keepAlive.Stop()

	userKey := httputil.GetUserKey(r)
	h.logger.Debug("tree stream opened", "user", userKey)

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("tree stream closed by client", "user", userKey)
			return
		case <-keepAliveDone:
			return
		case snap, open := <-updates:
			if !open {
				return
			}
			if err := stream.WriteEvent("tree", strconv.FormatUint(snap.Version, 10), snap); err != nil {
				h.logger.Debug("tree stream write failed", "user", userKey, "error", err)
				return
			}
		}
	}
}
