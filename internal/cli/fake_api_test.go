package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"cartable/internal/auth"
	"cartable/internal/config"
	"cartable/internal/domain/models/pedagogy"

	"github.com/stretchr/testify/require"
)

const testToken = "tok-1"

// fakeAPI is an in-memory pedagogy API.
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	requests []string
	bodies   map[string][]byte
	expired  bool // every authenticated call answers 401
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{t: t, bodies: make(map[string][]byte)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("username") != "ada@example.com" || r.PostForm.Get("password") != "s3cret" {
			http.Error(w, `{"detail":"Incorrect email or password"}`, http.StatusUnauthorized)
			return
		}
		f.json(w, map[string]string{"access_token": testToken, "token_type": "bearer"})
	})
	mux.HandleFunc("GET /api/v1/auth/me", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.json(w, map[string]interface{}{
			"id": 7, "email": "ada@example.com", "first_name": "Ada", "last_name": "Lovelace", "role": "teacher",
		})
	}))
	mux.HandleFunc("GET /api/v1/progressions/{$}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.json(w, []map[string]interface{}{
			{"id": 1, "title": "Maths", "description": "Cycle 3"},
			{"id": 2, "title": "Français"},
		})
	}))
	mux.HandleFunc("POST /api/v1/progressions/{$}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		var in pedagogy.ProgressionInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		f.json(w, map[string]interface{}{"id": 3, "title": in.Title})
	}))
	mux.HandleFunc("DELETE /api/v1/progressions/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("GET /api/v1/sequences/by_progression/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "1" {
			f.json(w, []map[string]interface{}{{"id": 10, "title": "Fractions", "progression_id": 1}})
			return
		}
		f.json(w, []interface{}{})
	}))
	mux.HandleFunc("GET /api/v1/sessions/by_sequence/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.json(w, []map[string]interface{}{{"id": 100, "title": "Séance 1", "sequence_id": 10}})
	}))
	mux.HandleFunc("GET /api/v1/resources/by_session/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.json(w, []map[string]interface{}{
			{"id": 9, "title": "Vidéo fractions", "description": "https://example.com/v", "type": map[string]interface{}{"id": 2, "key": "video", "value": "Vidéo"}},
		})
	}))
	mux.HandleFunc("POST /api/v1/resources/{$}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		var in pedagogy.ResourceCreate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		f.json(w, map[string]interface{}{"id": 9, "title": in.Title, "type_id": in.TypeID, "user_id": in.UserID, "source_type": in.SourceType, "sessions": []interface{}{}})
	}))
	mux.HandleFunc("GET /api/v1/resources/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.json(w, map[string]interface{}{
			"id": 9, "title": "Vidéo fractions", "type_id": 2, "user_id": 7, "source_type": "file",
			"type":     map[string]interface{}{"id": 2, "key": "video", "value": "Vidéo"},
			"sessions": []map[string]interface{}{{"id": 100}, {"id": 101}},
		})
	}))
	mux.HandleFunc("GET /api/v1/resource-types/types", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.json(w, []map[string]interface{}{{"id": 2, "key": "video", "value": "Vidéo"}})
	}))
	mux.HandleFunc("POST /api/v1/ai/chat", f.authed(func(w http.ResponseWriter, r *http.Request) {
		var in pedagogy.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		f.json(w, map[string]string{"response": "Bonjour, " + in.Message})
	}))

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		f.mu.Lock()
		key := r.Method + " " + r.URL.Path
		f.requests = append(f.requests, key)
		f.bodies[key] = body
		f.mu.Unlock()

		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		expired := f.expired
		f.mu.Unlock()
		if expired || r.Header.Get("Authorization") != "Bearer "+testToken {
			http.Error(w, `{"detail":"Could not validate credentials"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (f *fakeAPI) json(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(f.t, json.NewEncoder(w).Encode(v))
}

func (f *fakeAPI) expire() {
	f.mu.Lock()
	f.expired = true
	f.mu.Unlock()
}

func (f *fakeAPI) called(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeAPI) body(key string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func (f *fakeAPI) config(t *testing.T) *config.Config {
	return &config.Config{
		APIBaseURL:       f.srv.URL,
		Locale:           "en",
		HTTPTimeout:      5 * time.Second,
		FetchConcurrency: 2,
		ChatHistoryLimit: 20,
		SessionFile:      filepath.Join(t.TempDir(), "session.yaml"),
	}
}

// loggedIn stores a valid session in cfg's session file.
func loggedIn(t *testing.T, cfg *config.Config) {
	t.Helper()
	user := &pedagogy.User{ID: "7", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}
	require.NoError(t, auth.NewFileStore(cfg.SessionFile).Save(auth.NewSession(testToken, user)))
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, cfg *config.Config, args ...string) result {
	t.Helper()
	cmd := NewRootCommand(Options{Config: cfg, LogOutput: io.Discard})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// newTestApp builds an initialized App for tests that bypass cobra.
func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app := &App{opts: Options{Config: cfg, LogOutput: io.Discard}}
	require.NoError(t, app.init(io.Discard))
	return app
}
