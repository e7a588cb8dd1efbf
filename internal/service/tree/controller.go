package tree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"cartable/internal/domain"
	"cartable/internal/domain/models/tree"
	"cartable/internal/domain/services"
	"cartable/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// DefaultFetchConcurrency bounds parallel fetches during LoadSubtree.
const DefaultFetchConcurrency = 4

// Option configures a Controller.
type Option func(*Controller)

// WithFetchConcurrency sets how many fetches LoadSubtree runs at once.
func WithFetchConcurrency(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// Controller keeps one user's tree in sync with the remote hierarchy.
//
// The tree is never mutated in place. Every change swaps c.root for a new
// value built by ReplaceChildren, so a Snapshot taken at any time is
// internally consistent. Network calls run outside the lock.
type Controller struct {
	client      services.HierarchyClient
	tokens      services.TokenSource
	format      *Formatter
	labels      Labels
	logger      *slog.Logger
	concurrency int

	mu          sync.Mutex
	root        *tree.Node
	expanded    map[string]struct{}
	inflight    map[string]uint64 // node id -> generation that started the fetch
	generation  uint64            // bumped by Load; stale fetches are dropped
	rootLoading bool
	rootErr     string
	loaded      bool
	version     uint64
	subs        map[int]chan tree.Snapshot
	nextSub     int
}

// NewController creates a controller with an empty root. Call Load to fetch
// the progressions.
func NewController(
	client services.HierarchyClient,
	tokens services.TokenSource,
	labels Labels,
	logger *slog.Logger,
	opts ...Option,
) *Controller {
	format := NewFormatter(labels)
	c := &Controller{
		client:      client,
		tokens:      tokens,
		format:      format,
		labels:      labels,
		logger:      logger,
		concurrency: DefaultFetchConcurrency,
		root:        format.Root([]*tree.Node{}),
		expanded:    make(map[string]struct{}),
		inflight:    make(map[string]uint64),
		subs:        make(map[int]chan tree.Snapshot),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the progressions and replaces the whole tree.
// Expansion state is reset and fetches still in flight are discarded.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.rootLoading = true
	c.rootErr = ""
	c.expanded = make(map[string]struct{})
	c.inflight = make(map[string]uint64)
	c.commitLocked()
	c.mu.Unlock()

	records, err := c.client.FetchChildren(ctx, tree.KindRoot, tree.RootID, c.tokens.Token())

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		// A newer Load owns the tree now.
		return err
	}
	c.rootLoading = false

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		c.commitLocked()
		return err
	case err != nil:
		c.logger.Warn("failed to load progressions", "error", err)
		c.rootErr = c.labels.RootLoadError()
		c.root = c.format.Root([]*tree.Node{})
		c.commitLocked()
		return err
	}

	c.root = c.format.Root(c.format.Format(tree.KindProgression, records))
	c.loaded = true
	c.commitLocked()

	c.logger.Debug("progressions loaded", "count", len(records))
	return nil
}

// Loaded reports whether the root has been fetched successfully at least once.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() tree.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetExpanded replaces the expanded set with ids. When exactly one id is
// newly expanded it is resolved, fetching its children if they are still
// gated; any other change (collapse, bulk expand) performs no I/O.
func (c *Controller) SetExpanded(ctx context.Context, ids []string) (tree.ExpandResult, error) {
	c.mu.Lock()
	next := make(map[string]struct{}, len(ids))
	var added []string
	for _, id := range ids {
		if _, dup := next[id]; dup {
			continue
		}
		next[id] = struct{}{}
		if _, was := c.expanded[id]; !was {
			added = append(added, id)
		}
	}
	changed := len(added) > 0 || len(next) != len(c.expanded)
	c.expanded = next
	if changed {
		c.commitLocked()
	}
	c.mu.Unlock()

	if len(added) != 1 {
		return tree.ExpandResult{Outcome: tree.OutcomeNone}, nil
	}
	return c.resolve(ctx, added[0], false)
}

// Expand adds id to the expanded set and resolves it. Expanding a node that
// is already expanded still resolves it, which retries a failed fetch.
func (c *Controller) Expand(ctx context.Context, id string) (tree.ExpandResult, error) {
	c.mu.Lock()
	if FindNode(c.root, id) == nil {
		c.mu.Unlock()
		metrics.ObserveExpansion(metrics.OutcomeNotFound)
		return tree.ExpandResult{NodeID: id, Outcome: tree.OutcomeNotFound}, nil
	}
	if _, ok := c.expanded[id]; !ok {
		c.expanded[id] = struct{}{}
		c.commitLocked()
	}
	c.mu.Unlock()

	return c.resolve(ctx, id, false)
}

// Collapse removes id from the expanded set. Children are kept, so
// expanding it again costs no network call.
func (c *Controller) Collapse(id string) tree.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.expanded[id]; ok {
		delete(c.expanded, id)
		c.commitLocked()
	}
	return c.snapshotLocked()
}

// Reload re-fetches the children of id even when they are already resolved.
// Reloading the root is a full Load.
func (c *Controller) Reload(ctx context.Context, id string) (tree.ExpandResult, error) {
	if id == tree.RootID {
		if err := c.Load(ctx); err != nil {
			return tree.ExpandResult{NodeID: id, Outcome: tree.OutcomeFailed, Error: err.Error(), Err: err}, err
		}
		return tree.ExpandResult{NodeID: id, Outcome: tree.OutcomeFetched}, nil
	}
	return c.resolve(ctx, id, true)
}

// LoadSubtree resolves depth levels below id, fetching each level with at
// most the configured number of concurrent requests. The expanded set is not
// touched. Fetch failures become error sentinels; only an authentication
// failure aborts the walk.
func (c *Controller) LoadSubtree(ctx context.Context, id string, depth int) error {
	if id == tree.RootID && !c.Loaded() {
		if err := c.Load(ctx); err != nil {
			return err
		}
	}

	c.mu.Lock()
	start := FindNode(c.root, id)
	c.mu.Unlock()
	if start == nil {
		return fmt.Errorf("%w: node %s", domain.ErrNotFound, id)
	}

	level := []string{id}
	if start.Kind == tree.KindRoot {
		level = childIDs(start)
		depth--
	}

	for d := 0; d < depth && len(level) > 0; d++ {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)
		for _, nodeID := range level {
			g.Go(func() error {
				_, err := c.resolve(gctx, nodeID, false)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		c.mu.Lock()
		var next []string
		for _, nodeID := range level {
			if n := FindNode(c.root, nodeID); n != nil {
				next = append(next, childIDs(n)...)
			}
		}
		c.mu.Unlock()
		level = next
	}
	return nil
}

func childIDs(n *tree.Node) []string {
	ids := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		if child.Kind.Expandable() {
			ids = append(ids, child.ID)
		}
	}
	return ids
}

// resolve fetches the children of id when they are gated (or always, with
// force) and patches the result in. The returned error is non-nil only when
// nothing could be attempted: no token. Fetch failures are reported through
// the result and an error sentinel in the tree.
func (c *Controller) resolve(ctx context.Context, id string, force bool) (tree.ExpandResult, error) {
	result := tree.ExpandResult{NodeID: id}

	c.mu.Lock()
	node := FindNode(c.root, id)
	switch {
	case node == nil:
		c.mu.Unlock()
		metrics.ObserveExpansion(metrics.OutcomeNotFound)
		result.Outcome = tree.OutcomeNotFound
		return result, nil
	case !node.Kind.Expandable(), !force && !node.NeedsFetch():
		c.mu.Unlock()
		metrics.ObserveExpansion(metrics.OutcomeCached)
		result.Outcome = tree.OutcomeResolved
		return result, nil
	}
	if _, busy := c.inflight[id]; busy {
		c.mu.Unlock()
		metrics.ObserveExpansion(metrics.OutcomeInFlight)
		result.Outcome = tree.OutcomeInFlight
		return result, nil
	}
	gen := c.generation
	kind := node.Kind
	c.inflight[id] = gen
	c.commitLocked()
	c.mu.Unlock()

	records, err := c.client.FetchChildren(ctx, kind, id, c.tokens.Token())

	c.mu.Lock()
	defer c.mu.Unlock()

	if owner, ok := c.inflight[id]; ok && owner == gen {
		delete(c.inflight, id)
	}

	if errors.Is(err, domain.ErrUnauthenticated) {
		// Keep the loading sentinel; the node resolves once a token exists.
		c.commitLocked()
		result.Outcome = tree.OutcomeFailed
		result.Error = err.Error()
		result.Err = err
		return result, err
	}

	var children []*tree.Node
	if err != nil {
		c.logger.Warn("failed to fetch children",
			"node_id", id,
			"kind", kind,
			"error", err,
		)
		children = []*tree.Node{c.format.ErrorSentinel(kind, id)}
		result.Outcome = tree.OutcomeFailed
		result.Error = err.Error()
		result.Err = err
	} else {
		children = c.format.Format(kind.ChildKind(), records)
		result.Outcome = tree.OutcomeFetched
	}

	if gen != c.generation {
		c.logger.Debug("dropping patch from a previous load", "node_id", id)
		metrics.ObserveExpansion(metrics.OutcomePatchDropped)
		c.commitLocked()
		result.Outcome = tree.OutcomeNotFound
		return result, nil
	}

	patched, ok := ReplaceChildren(c.root, id, children)
	if !ok {
		c.logger.Debug("node vanished before its fetch completed", "node_id", id)
		metrics.ObserveExpansion(metrics.OutcomePatchDropped)
		c.commitLocked()
		result.Outcome = tree.OutcomeNotFound
		return result, nil
	}
	c.root = patched
	if force {
		c.pruneExpandedLocked()
	}
	c.commitLocked()

	if err != nil {
		metrics.ObserveExpansion(metrics.OutcomeFailed)
	} else {
		metrics.ObserveExpansion(metrics.OutcomeFetched)
	}
	return result, nil
}

// pruneExpandedLocked drops expanded ids whose nodes were excised or reset
// to a gate by a reload.
func (c *Controller) pruneExpandedLocked() {
	for id := range c.expanded {
		n := FindNode(c.root, id)
		if n == nil || n.IsLoadingGate() {
			delete(c.expanded, id)
		}
	}
}

// Subscribe returns a channel receiving a snapshot after every change.
// Slow readers only see the latest snapshot. The channel is closed by the
// returned cancel func.
func (c *Controller) Subscribe() (<-chan tree.Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan tree.Snapshot, 1)
	ch <- c.snapshotLocked()
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
}

// Watched reports whether any subscriber is attached.
func (c *Controller) Watched() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs) > 0
}

// commitLocked bumps the version and fans the new snapshot out.
func (c *Controller) commitLocked() {
	c.version++
	if len(c.subs) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (c *Controller) snapshotLocked() tree.Snapshot {
	return tree.Snapshot{
		Root:     c.root,
		Expanded: sortedKeys(c.expanded),
		Pending:  sortedKeys(c.inflight),
		Loading:  c.rootLoading,
		Error:    c.rootErr,
		Version:  c.version,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
