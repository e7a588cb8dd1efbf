package tree

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"cartable/internal/domain"
	"cartable/internal/domain/models/pedagogy"
	"cartable/internal/domain/models/tree"
	"cartable/internal/i18n"
)

// fakeHierarchy is an in-memory HierarchyClient keyed by "kind/id".
type fakeHierarchy struct {
	mu       sync.Mutex
	children map[string][]pedagogy.Record
	errs     map[string]error
	calls    map[string]int
	tokens   []string
	gates    map[string]chan struct{}
	started  chan string
}

func newFakeHierarchy() *fakeHierarchy {
	return &fakeHierarchy{
		children: make(map[string][]pedagogy.Record),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
		gates:    make(map[string]chan struct{}),
		started:  make(chan string, 16),
	}
}

func fakeKey(kind tree.Kind, id string) string {
	return string(kind) + "/" + id
}

func (f *fakeHierarchy) set(kind tree.Kind, id string, records ...pedagogy.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.children[fakeKey(kind, id)] = records
}

func (f *fakeHierarchy) fail(kind tree.Kind, id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, fakeKey(kind, id))
		return
	}
	f.errs[fakeKey(kind, id)] = err
}

// block makes the next fetches of kind/id wait until the returned func is called.
func (f *fakeHierarchy) block(kind tree.Kind, id string) func() {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[fakeKey(kind, id)] = gate
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.gates, fakeKey(kind, id))
		f.mu.Unlock()
		close(gate)
	}
}

func (f *fakeHierarchy) callCount(kind tree.Kind, id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[fakeKey(kind, id)]
}

func (f *fakeHierarchy) lastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokens) == 0 {
		return ""
	}
	return f.tokens[len(f.tokens)-1]
}

func (f *fakeHierarchy) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeHierarchy) FetchChildren(ctx context.Context, kind tree.Kind, parentID, token string) ([]pedagogy.Record, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	key := fakeKey(kind, parentID)

	f.mu.Lock()
	f.calls[key]++
	f.tokens = append(f.tokens, token)
	gate := f.gates[key]
	f.mu.Unlock()

	if gate != nil {
		f.started <- key
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.children[key], nil
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rec(id, title string) pedagogy.Record {
	return pedagogy.Record{ID: pedagogy.ID(id), Title: title}
}

func newTestController(f *fakeHierarchy, token string, opts ...Option) *Controller {
	return NewController(f, staticToken(token), i18n.MustCatalog("fr"), discardLogger(), opts...)
}
