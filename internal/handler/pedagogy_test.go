package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"cartable/internal/domain"
	"cartable/internal/domain/models/pedagogy"
	"cartable/internal/domain/services"
	"cartable/internal/httputil"
	serviceChat "cartable/internal/service/chat"
	servicePedagogy "cartable/internal/service/pedagogy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryAPI is an in-memory stand-in for the upstream repositories.
type memoryAPI struct {
	mu           sync.Mutex
	progressions map[string]pedagogy.Progression
	resources    map[string]pedagogy.Resource
	lastUpdate   *pedagogy.ResourceUpdate
	lastCreate   *pedagogy.ResourceCreate
	tokens       []string
}

func newMemoryAPI() *memoryAPI {
	return &memoryAPI{
		progressions: map[string]pedagogy.Progression{
			"1": {ID: "1", Title: "Maths"},
		},
		resources: map[string]pedagogy.Resource{
			"9": {ID: "9", Title: "Vidéo", TypeID: "2", SourceType: "file"},
		},
	}
}

func (m *memoryAPI) seen(token string) {
	m.mu.Lock()
	m.tokens = append(m.tokens, token)
	m.mu.Unlock()
}

func (m *memoryAPI) ListProgressions(ctx context.Context, token string) ([]pedagogy.Progression, error) {
	m.seen(token)
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]pedagogy.Progression, 0, len(m.progressions))
	for _, p := range m.progressions {
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryAPI) GetProgression(ctx context.Context, id, token string) (*pedagogy.Progression, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.progressions[id]
	if !ok {
		return nil, &domain.TransportError{Op: "GET /progressions/" + id, Status: http.StatusNotFound}
	}
	return &p, nil
}

func (m *memoryAPI) CreateProgression(ctx context.Context, in *pedagogy.ProgressionInput, token string) (*pedagogy.Progression, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := pedagogy.Progression{ID: "2", Title: in.Title, Description: in.Description}
	m.progressions["2"] = p
	return &p, nil
}

func (m *memoryAPI) UpdateProgression(ctx context.Context, id string, in *pedagogy.ProgressionInput, token string) (*pedagogy.Progression, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := pedagogy.Progression{ID: pedagogy.ID(id), Title: in.Title, Description: in.Description}
	m.progressions[id] = p
	return &p, nil
}

func (m *memoryAPI) DeleteProgression(ctx context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.progressions, id)
	return nil
}

func (m *memoryAPI) ListResources(ctx context.Context, token string) ([]pedagogy.Resource, error) {
	return []pedagogy.Resource{m.resources["9"]}, nil
}

func (m *memoryAPI) GetResource(ctx context.Context, id, token string) (*pedagogy.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resources[id]
	if !ok {
		return nil, &domain.TransportError{Op: "GET /resources/" + id, Status: http.StatusNotFound}
	}
	return &r, nil
}

func (m *memoryAPI) CreateResource(ctx context.Context, in *pedagogy.ResourceCreate, token string) (*pedagogy.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCreate = in
	return &pedagogy.Resource{ID: "10", Title: in.Title, SourceType: in.SourceType}, nil
}

func (m *memoryAPI) UpdateResource(ctx context.Context, id string, in *pedagogy.ResourceUpdate, token string) (*pedagogy.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUpdate = in
	r := m.resources[id]
	return &r, nil
}

func (m *memoryAPI) DeleteResource(ctx context.Context, id, token string) error {
	return nil
}

func (m *memoryAPI) ListResourceTypes(ctx context.Context, token string) ([]pedagogy.ResourceType, error) {
	return []pedagogy.ResourceType{{ID: "2", Key: "video", Value: "Vidéo"}}, nil
}

func (m *memoryAPI) ListResourceSubTypes(ctx context.Context, typeID, token string) ([]pedagogy.ResourceSubType, error) {
	return []pedagogy.ResourceSubType{{ID: "5", Key: "short", Value: "Courte", TypeID: pedagogy.ID(typeID)}}, nil
}

func (m *memoryAPI) Me(ctx context.Context, token string) (*pedagogy.User, error) {
	if token != "tok" {
		return nil, &domain.TransportError{Op: "GET /auth/me", Status: http.StatusUnauthorized}
	}
	return &pedagogy.User{ID: "7", Email: "ada@example.com"}, nil
}

func (m *memoryAPI) Login(ctx context.Context, email, password string) (*pedagogy.Token, error) {
	if password != "pw" {
		return nil, &domain.TransportError{Op: "POST /auth/token", Status: http.StatusUnauthorized}
	}
	return &pedagogy.Token{AccessToken: "tok", TokenType: "bearer"}, nil
}

func (m *memoryAPI) Register(ctx context.Context, in *pedagogy.RegisterInput) (*pedagogy.User, error) {
	return &pedagogy.User{ID: "8", Email: in.Email}, nil
}

func (m *memoryAPI) ForgotPassword(ctx context.Context, email string) error {
	return nil
}

func (m *memoryAPI) Chat(ctx context.Context, message string, history []pedagogy.ChatMessage, token string) (*pedagogy.ChatResponse, error) {
	return &pedagogy.ChatResponse{Response: "echo: " + message}, nil
}

// droppedSessions records Drop calls.
type droppedSessions struct {
	services.TreeSessions
	dropped []string
}

func (d *droppedSessions) Lookup(userKey string) (services.TreeController, bool) { return nil, false }
func (d *droppedSessions) Drop(userKey string)                                   { d.dropped = append(d.dropped, userKey) }

func newAPIServer(api *memoryAPI, sessions *droppedSessions) http.Handler {
	logger := discardLogger()
	ph := NewProgressionHandler(servicePedagogy.NewProgressionService(api, sessions, logger), logger)
	rh := NewResourceHandler(servicePedagogy.NewResourceService(api, api, sessions, logger), logger)
	ch := NewChatHandler(serviceChat.NewService(api, 0, logger), logger)
	ah := NewAuthHandler(api, sessions, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/progressions", ph.ListProgressions)
	mux.HandleFunc("POST /api/progressions", ph.CreateProgression)
	mux.HandleFunc("GET /api/progressions/{id}", ph.GetProgression)
	mux.HandleFunc("PUT /api/progressions/{id}", ph.UpdateProgression)
	mux.HandleFunc("DELETE /api/progressions/{id}", ph.DeleteProgression)
	mux.HandleFunc("POST /api/resources", rh.CreateResource)
	mux.HandleFunc("GET /api/resources/{id}", rh.GetResource)
	mux.HandleFunc("PUT /api/resources/{id}", rh.UpdateResource)
	mux.HandleFunc("GET /api/resource-types", rh.ListResourceTypes)
	mux.HandleFunc("GET /api/resource-types/{id}/subtypes", rh.ListResourceSubTypes)
	mux.HandleFunc("POST /api/chat", ch.SendMessage)
	mux.HandleFunc("GET /api/chat/{id}", ch.GetConversation)
	mux.HandleFunc("DELETE /api/chat/{id}", ch.ResetConversation)
	mux.HandleFunc("POST /api/auth/login", ah.Login)
	mux.HandleFunc("GET /api/auth/me", ah.Me)
	mux.HandleFunc("POST /api/auth/logout", ah.Logout)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, httputil.WithCaller(r, "alice", "tok"))
	})
}

func TestProgressionHandler(t *testing.T) {
	api := newMemoryAPI()
	h := newAPIServer(api, &droppedSessions{})

	w, body := doJSON(t, h, http.MethodPost, "/api/progressions", `{"title": "Histoire"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Histoire", body["title"])

	w, body = doJSON(t, h, http.MethodPost, "/api/progressions", `{"title": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])

	w, body = doJSON(t, h, http.MethodGet, "/api/progressions/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Maths", body["title"])

	w, _ = doJSON(t, h, http.MethodGet, "/api/progressions/404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = doJSON(t, h, http.MethodPut, "/api/progressions/1", `{"title": "Maths 6e"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Maths 6e", body["title"])

	w, _ = doJSON(t, h, http.MethodDelete, "/api/progressions/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httpGet(h, "/api/progressions")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Maths")
	assert.Contains(t, api.tokens, "tok", "the caller's token is forwarded")
}

func TestProgressionHandler_UnknownField(t *testing.T) {
	h := newAPIServer(newMemoryAPI(), &droppedSessions{})

	w, _ := doJSON(t, h, http.MethodPost, "/api/progressions", `{"title": "x", "owner": 3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResourceHandler_Create(t *testing.T) {
	api := newMemoryAPI()
	h := newAPIServer(api, &droppedSessions{})

	w, body := doJSON(t, h, http.MethodPost, "/api/resources",
		`{"title": "Fiche", "type_id": "2", "sub_type_id": "5", "source_type": "file", "session_ids": ["100"]}`)
	require.Equal(t, http.StatusCreated, w.Code, body)
	assert.Equal(t, "Fiche", body["title"])
	require.NotNil(t, api.lastCreate)
	assert.Equal(t, int64(7), api.lastCreate.UserID, "owner defaults to /auth/me")
	assert.Equal(t, []int64{100}, api.lastCreate.SessionIDs)

	w, _ = doJSON(t, h, http.MethodPost, "/api/resources",
		`{"title": "Fiche", "type_id": "video", "sub_type_id": "5", "source_type": "file"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResourceHandler_UpdateDescription(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected *string
	}{
		{"absent leaves it", `{"title": "Vidéo 2"}`, nil},
		{"null clears it", `{"description": null}`, ptr("")},
		{"value sets it", `{"description": "https://example.com"}`, ptr("https://example.com")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newMemoryAPI()
			h := newAPIServer(api, &droppedSessions{})

			w, _ := doJSON(t, h, http.MethodPut, "/api/resources/9", tt.body)
			require.Equal(t, http.StatusOK, w.Code)
			require.NotNil(t, api.lastUpdate)
			assert.Equal(t, tt.expected, api.lastUpdate.Description)
		})
	}
}

func TestResourceHandler_Types(t *testing.T) {
	h := newAPIServer(newMemoryAPI(), &droppedSessions{})

	w := httpGet(h, "/api/resource-types/2/subtypes")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id": "5", "key": "short", "value": "Courte", "type_id": "2"}]`, w.Body.String())
}

func TestChatHandler(t *testing.T) {
	h := newAPIServer(newMemoryAPI(), &droppedSessions{})

	w, body := doJSON(t, h, http.MethodPost, "/api/chat", `{"message": "bonjour"}`)
	require.Equal(t, http.StatusOK, w.Code)
	id, _ := body["conversation_id"].(string)
	require.NotEmpty(t, id)
	reply := body["reply"].(map[string]interface{})
	assert.Equal(t, "assistant", reply["role"])
	assert.Equal(t, "echo: bonjour", reply["content"])

	w, body = doJSON(t, h, http.MethodGet, "/api/chat/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["history"], 2)

	w, _ = doJSON(t, h, http.MethodDelete, "/api/chat/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, body = doJSON(t, h, http.MethodGet, "/api/chat/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["history"])

	w, _ = doJSON(t, h, http.MethodPost, "/api/chat", `{"message": "  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler(t *testing.T) {
	sessions := &droppedSessions{}
	h := newAPIServer(newMemoryAPI(), sessions)

	w, body := doJSON(t, h, http.MethodPost, "/api/auth/login", `{"email": "ada@example.com", "password": "pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", body["access_token"])

	w, _ = doJSON(t, h, http.MethodPost, "/api/auth/login", `{"email": "ada@example.com", "password": "bad"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, h, http.MethodPost, "/api/auth/login", `{"email": "", "password": "pw"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = doJSON(t, h, http.MethodGet, "/api/auth/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@example.com", body["email"])

	w, _ = doJSON(t, h, http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"alice"}, sessions.dropped)
}

func httpGet(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func ptr(s string) *string { return &s }

func TestChatHandler_OtherUsersConversationIsHidden(t *testing.T) {
	ch := NewChatHandler(serviceChat.NewService(newMemoryAPI(), 0, discardLogger()), discardLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", ch.SendMessage)
	mux.HandleFunc("GET /api/chat/{id}", ch.GetConversation)
	mux.HandleFunc("DELETE /api/chat/{id}", ch.ResetConversation)
	as := func(userKey string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mux.ServeHTTP(w, httputil.WithCaller(r, userKey, "tok-"+userKey))
		})
	}

	w, body := doJSON(t, as("alice"), http.MethodPost, "/api/chat", `{"message": "bonjour"}`)
	require.Equal(t, http.StatusOK, w.Code)
	id := body["conversation_id"].(string)

	w, _ = doJSON(t, as("bob"), http.MethodGet, "/api/chat/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doJSON(t, as("bob"), http.MethodPost, "/api/chat", `{"conversation_id": "`+id+`", "message": "salut"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doJSON(t, as("bob"), http.MethodDelete, "/api/chat/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = doJSON(t, as("alice"), http.MethodGet, "/api/chat/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["history"], 2)
}
