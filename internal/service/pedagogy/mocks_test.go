package pedagogy

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"cartable/internal/domain"
	"cartable/internal/domain/models/pedagogy"
	"cartable/internal/domain/models/tree"
	"cartable/internal/domain/services"
)

type mockRepo struct {
	mu          sync.Mutex
	progCreated []*pedagogy.ProgressionInput
	resCreated  []*pedagogy.ResourceCreate
	resUpdated  []*pedagogy.ResourceUpdate
	deleted     []string
	resources   map[string]*pedagogy.Resource
	err         error
}

func newMockRepo() *mockRepo {
	return &mockRepo{resources: make(map[string]*pedagogy.Resource)}
}

func (m *mockRepo) ListProgressions(ctx context.Context, token string) ([]pedagogy.Progression, error) {
	return []pedagogy.Progression{{ID: "1", Title: "P1"}}, m.err
}

func (m *mockRepo) GetProgression(ctx context.Context, id, token string) (*pedagogy.Progression, error) {
	return &pedagogy.Progression{ID: pedagogy.ID(id)}, m.err
}

func (m *mockRepo) CreateProgression(ctx context.Context, in *pedagogy.ProgressionInput, token string) (*pedagogy.Progression, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.progCreated = append(m.progCreated, in)
	return &pedagogy.Progression{ID: "10", Title: in.Title, Description: in.Description}, nil
}

func (m *mockRepo) UpdateProgression(ctx context.Context, id string, in *pedagogy.ProgressionInput, token string) (*pedagogy.Progression, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &pedagogy.Progression{ID: pedagogy.ID(id), Title: in.Title}, nil
}

func (m *mockRepo) DeleteProgression(ctx context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockRepo) ListResources(ctx context.Context, token string) ([]pedagogy.Resource, error) {
	return nil, m.err
}

func (m *mockRepo) GetResource(ctx context.Context, id, token string) (*pedagogy.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resources[id]
	if !ok {
		return nil, &domain.TransportError{Op: "GET /resources/" + id, Status: 404}
	}
	return r, nil
}

func (m *mockRepo) CreateResource(ctx context.Context, in *pedagogy.ResourceCreate, token string) (*pedagogy.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.resCreated = append(m.resCreated, in)
	r := &pedagogy.Resource{ID: "50", Title: in.Title, SourceType: in.SourceType}
	for _, sid := range in.SessionIDs {
		r.Sessions = append(r.Sessions, pedagogy.SessionRef{ID: pedagogy.ID(itoa(sid))})
	}
	return r, nil
}

func (m *mockRepo) UpdateResource(ctx context.Context, id string, in *pedagogy.ResourceUpdate, token string) (*pedagogy.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.resUpdated = append(m.resUpdated, in)
	r := &pedagogy.Resource{ID: pedagogy.ID(id)}
	for _, sid := range in.SessionIDs {
		r.Sessions = append(r.Sessions, pedagogy.SessionRef{ID: pedagogy.ID(itoa(sid))})
	}
	return r, nil
}

func (m *mockRepo) DeleteResource(ctx context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockRepo) ListResourceTypes(ctx context.Context, token string) ([]pedagogy.ResourceType, error) {
	return []pedagogy.ResourceType{{ID: "1", Key: "document"}}, m.err
}

func (m *mockRepo) ListResourceSubTypes(ctx context.Context, typeID, token string) ([]pedagogy.ResourceSubType, error) {
	return []pedagogy.ResourceSubType{{ID: "2", TypeID: pedagogy.ID(typeID)}}, m.err
}

type mockAccounts struct {
	calls int
}

func (m *mockAccounts) Me(ctx context.Context, token string) (*pedagogy.User, error) {
	m.calls++
	return &pedagogy.User{ID: "77"}, nil
}

// mockTree records refreshes and serves a fixed snapshot.
type mockTree struct {
	mu       sync.Mutex
	root     *tree.Node
	loads    int
	reloaded []string
}

func (m *mockTree) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	return nil
}

func (m *mockTree) Loaded() bool { return true }

func (m *mockTree) Snapshot() tree.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return tree.Snapshot{Root: m.root}
}

func (m *mockTree) SetExpanded(ctx context.Context, ids []string) (tree.ExpandResult, error) {
	return tree.ExpandResult{Outcome: tree.OutcomeNone}, nil
}

func (m *mockTree) Expand(ctx context.Context, id string) (tree.ExpandResult, error) {
	return tree.ExpandResult{NodeID: id, Outcome: tree.OutcomeResolved}, nil
}

func (m *mockTree) Collapse(id string) tree.Snapshot { return m.Snapshot() }

func (m *mockTree) Reload(ctx context.Context, id string) (tree.ExpandResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloaded = append(m.reloaded, id)
	return tree.ExpandResult{NodeID: id, Outcome: tree.OutcomeFetched}, nil
}

func (m *mockTree) LoadSubtree(ctx context.Context, id string, depth int) error { return nil }

func (m *mockTree) Subscribe() (<-chan tree.Snapshot, func()) {
	ch := make(chan tree.Snapshot)
	return ch, func() {}
}

type mockSessions struct {
	trees map[string]*mockTree
}

func (m *mockSessions) Get(ctx context.Context, userKey, token string) (services.TreeController, error) {
	return m.trees[userKey], nil
}

func (m *mockSessions) Lookup(userKey string) (services.TreeController, bool) {
	t, ok := m.trees[userKey]
	return t, ok
}

func (m *mockSessions) Drop(userKey string) { delete(m.trees, userKey) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
