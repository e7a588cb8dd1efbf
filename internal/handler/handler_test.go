package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cartable/internal/domain"
	"cartable/internal/domain/models/pedagogy"
	"cartable/internal/domain/models/tree"
	"cartable/internal/httputil"
	"cartable/internal/i18n"
	servicetree "cartable/internal/service/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubHierarchy serves a fixed hierarchy keyed by "kind/id".
type stubHierarchy struct {
	mu       sync.Mutex
	children map[string][]pedagogy.Record
	errs     map[string]error
}

func (s *stubHierarchy) FetchChildren(ctx context.Context, kind tree.Kind, parentID, token string) ([]pedagogy.Record, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := string(kind) + "/" + parentID
	if err := s.errs[key]; err != nil {
		return nil, err
	}
	return s.children[key], nil
}

func newTreeServer(h *stubHierarchy) http.Handler {
	registry := servicetree.NewRegistry(h, i18n.MustCatalog("fr"), discardLogger())
	th := NewTreeHandler(registry, nil, discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tree", th.GetTree)
	mux.HandleFunc("POST /api/tree/refresh", th.RefreshTree)
	mux.HandleFunc("PUT /api/tree/expanded", th.SetExpanded)
	mux.HandleFunc("POST /api/tree/nodes/{id}/expand", th.ExpandNode)
	mux.HandleFunc("POST /api/tree/nodes/{id}/collapse", th.CollapseNode)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, httputil.WithCaller(r, "alice", "tok"))
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, reader))

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func firstChild(t *testing.T, node interface{}) map[string]interface{} {
	t.Helper()
	children := node.(map[string]interface{})["children"].([]interface{})
	require.NotEmpty(t, children)
	return children[0].(map[string]interface{})
}

func TestTreeHandler_GetAndExpand(t *testing.T) {
	h := &stubHierarchy{children: map[string][]pedagogy.Record{
		"root/root":     {{ID: "5", Title: "P1"}},
		"progression/5": {{ID: "7", Title: "Séquence A"}},
	}}
	srv := newTreeServer(h)

	w, body := doJSON(t, srv, http.MethodGet, "/api/tree", "")
	require.Equal(t, http.StatusOK, w.Code)
	p1 := firstChild(t, body["tree"].(map[string]interface{})["root"])
	assert.Equal(t, "5", p1["id"])
	assert.Equal(t, "loading-ses-5", firstChild(t, p1)["id"])

	w, body = doJSON(t, srv, http.MethodPost, "/api/tree/nodes/5/expand", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fetched", body["result"].(map[string]interface{})["outcome"])
	p1 = firstChild(t, body["tree"].(map[string]interface{})["root"])
	seq := firstChild(t, p1)
	assert.Equal(t, "7", seq["id"])
	assert.Equal(t, "Séquence A", seq["name"])
	assert.Equal(t, "sequence", seq["kind"])
	assert.Equal(t, []interface{}{"5"}, body["tree"].(map[string]interface{})["expanded"])

	w, body = doJSON(t, srv, http.MethodPost, "/api/tree/nodes/5/collapse", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["tree"].(map[string]interface{})["expanded"])
}

func TestTreeHandler_ExpandFailureBecomesErrorSentinel(t *testing.T) {
	h := &stubHierarchy{
		children: map[string][]pedagogy.Record{"root/root": {{ID: "5", Title: "P1"}}},
		errs:     map[string]error{"progression/5": &domain.TransportError{Op: "GET", Status: 500}},
	}
	srv := newTreeServer(h)

	w, body := doJSON(t, srv, http.MethodPost, "/api/tree/nodes/5/expand", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "failed", body["result"].(map[string]interface{})["outcome"])
	sentinel := firstChild(t, firstChild(t, body["tree"].(map[string]interface{})["root"]))
	assert.Equal(t, "error-seq-5", sentinel["id"])
	assert.Equal(t, "Erreur chargement séquences", sentinel["name"])
}

func TestTreeHandler_RootFailureShowsBanner(t *testing.T) {
	h := &stubHierarchy{errs: map[string]error{"root/root": &domain.TransportError{Op: "GET", Status: 503}}}
	srv := newTreeServer(h)

	w, body := doJSON(t, srv, http.MethodGet, "/api/tree", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Impossible de charger les progressions.", body["tree"].(map[string]interface{})["error"])
}

func TestTreeHandler_UnknownNode(t *testing.T) {
	h := &stubHierarchy{children: map[string][]pedagogy.Record{"root/root": {{ID: "5", Title: "P1"}}}}
	srv := newTreeServer(h)

	w, body := doJSON(t, srv, http.MethodPost, "/api/tree/nodes/99/expand", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "99", body["node_id"])
}

func TestTreeHandler_SetExpandedRejectsBadBody(t *testing.T) {
	srv := newTreeServer(&stubHierarchy{})

	w, _ := doJSON(t, srv, http.MethodPut, "/api/tree/expanded", `{"expand":["5"]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTreeHandler_InvalidDepth(t *testing.T) {
	srv := newTreeServer(&stubHierarchy{})

	w, _ := doJSON(t, srv, http.MethodGet, "/api/tree?depth=-1", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"upstream 404", &domain.TransportError{Op: "GET", Status: 404}, http.StatusNotFound},
		{"upstream 500", &domain.TransportError{Op: "GET", Status: 500}, http.StatusBadGateway},
		{"network", &domain.TransportError{Op: "GET", Err: errors.New("refused")}, http.StatusBadGateway},
		{"format", &domain.FormatError{Op: "GET", Err: errors.New("not an array")}, http.StatusBadGateway},
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"not found", &domain.NotFoundError{Message: "conversation not found"}, http.StatusNotFound},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handleError(w, tt.err)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
		})
	}
}
