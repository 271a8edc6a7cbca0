package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/msomdec/code-journal/internal/handler"
	"github.com/msomdec/code-journal/internal/repository/blob"
	"github.com/msomdec/code-journal/internal/repository/userstore"
	"github.com/msomdec/code-journal/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	blobs, err := blob.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	users, err := userstore.New(context.Background(), blobs)
	if err != nil {
		t.Fatalf("userstore.New: %v", err)
	}

	limiter := service.NewLoginLimiter(100, 100)
	t.Cleanup(func() {
		limiter.Close()
		blobs.Close()
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		Users:    users,
		Auth:     service.NewAuthService(users, testJWTSecret, 4),
		Sessions: service.NewSessionService(users),
		Projects: service.NewProjectService(users),
		Stats:    service.NewStatsService(users),
		Limiter:  limiter,
	})

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return srv
}

// client wraps an httptest server with a cookie-carrying HTTP client.
type client struct {
	t    *testing.T
	srv  *httptest.Server
	http *http.Client
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	c := srv.Client()
	c.Jar = jar
	return &client{t: t, srv: srv, http: c}
}

func (c *client) do(method, path string, body any) (*http.Response, map[string]any) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, c.srv.URL+path, &buf)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			c.t.Fatalf("decode response of %s %s: %v", method, path, err)
		}
	}
	return resp, decoded
}

func (c *client) register(username string) map[string]any {
	c.t.Helper()
	resp, body := c.do("POST", "/api/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("register %s: status %d body %v", username, resp.StatusCode, body)
	}
	return body
}

func (c *client) login(username string) map[string]any {
	c.t.Helper()
	resp, body := c.do("POST", "/api/login", map[string]string{
		"username": username,
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login %s: status %d body %v", username, resp.StatusCode, body)
	}
	return body
}

func TestAPI_RegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)

	body := c.register("alice")
	user := body["user"].(map[string]any)
	if user["username"] != "alice" {
		t.Fatalf("expected username alice, got %v", user["username"])
	}
	if user["xp"].(float64) != 50 {
		t.Fatalf("expected welcome XP 50, got %v", user["xp"])
	}

	// Duplicate registration is rejected.
	resp, _ := c.do("POST", "/api/register", map[string]string{
		"username": "alice", "email": "a2@example.com", "password": "password123",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", resp.StatusCode)
	}

	c.login("alice")

	// The cookie authenticates /api/me.
	resp, body = c.do("GET", "/api/me", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status %d", resp.StatusCode)
	}
	if body["user"].(map[string]any)["username"] != "alice" {
		t.Fatalf("unexpected me response: %v", body)
	}
}

func TestAPI_RequiresAuth(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)

	for _, path := range []string{"/api/me", "/api/stats", "/api/projects"} {
		resp, _ := c.do("GET", path, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, resp.StatusCode)
		}
	}
}

func TestAPI_SessionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)
	c.register("alice")
	c.login("alice")

	resp, body := c.do("POST", "/api/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start session: status %d body %v", resp.StatusCode, body)
	}
	sessionID := body["sessionId"].(string)

	// A second active session is rejected.
	resp, _ = c.do("POST", "/api/sessions", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for second session, got %d", resp.StatusCode)
	}

	// Successful run awards XP.
	resp, body = c.do("POST", fmt.Sprintf("/api/sessions/%s/runs", sessionID), map[string]any{
		"lineCount": map[string]int{"html": 2, "js": 5, "total": 7},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("run: status %d body %v", resp.StatusCode, body)
	}
	if body["xpGained"].(float64) != 15 {
		t.Fatalf("expected xpGained 15, got %v", body["xpGained"])
	}

	// Errors cost XP.
	resp, body = c.do("POST", fmt.Sprintf("/api/sessions/%s/errors", sessionID), map[string]any{
		"errors": []map[string]any{
			{"message": "x is not defined", "category": "ReferenceError", "line": 3},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("errors: status %d body %v", resp.StatusCode, body)
	}
	if body["xpLost"].(float64) != 5 {
		t.Fatalf("expected xpLost 5, got %v", body["xpLost"])
	}

	// An error report without errors is rejected.
	resp, _ = c.do("POST", fmt.Sprintf("/api/sessions/%s/errors", sessionID), map[string]any{})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty error report, got %d", resp.StatusCode)
	}

	// End the session.
	resp, body = c.do("POST", fmt.Sprintf("/api/sessions/%s/end", sessionID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end: status %d body %v", resp.StatusCode, body)
	}
	session := body["session"].(map[string]any)
	if session["status"] != "completed" {
		t.Fatalf("expected completed session, got %v", session["status"])
	}

	// Completed sessions are immutable.
	resp, _ = c.do("POST", fmt.Sprintf("/api/sessions/%s/runs", sessionID), map[string]any{})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for run on completed session, got %d", resp.StatusCode)
	}

	// Detail view still works.
	resp, body = c.do("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("detail: status %d", resp.StatusCode)
	}
	if body["totalExecutions"].(float64) != 2 {
		t.Fatalf("expected 2 executions, got %v", body["totalExecutions"])
	}
}

func TestAPI_ProjectsAndStats(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)
	c.register("alice")
	c.login("alice")

	resp, body := c.do("POST", "/api/projects", map[string]any{
		"name": "landing page",
		"html": "<h1>Hi</h1>",
		"js":   "console.log('hi')",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save project: status %d body %v", resp.StatusCode, body)
	}
	project := body["project"].(map[string]any)
	if project["name"] != "landing page" {
		t.Fatalf("unexpected project: %v", project)
	}

	// Blank name rejected.
	resp, _ = c.do("POST", "/api/projects", map[string]any{"name": "  "})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for blank name, got %d", resp.StatusCode)
	}

	resp, body = c.do("GET", "/api/projects", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list projects: status %d", resp.StatusCode)
	}
	if projects := body["projects"].([]any); len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}

	resp, body = c.do("GET", "/api/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: status %d", resp.StatusCode)
	}
	if body["lastProject"] == nil {
		t.Fatal("expected lastProject in stats")
	}

	resp, body = c.do("GET", "/api/leaderboard", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leaderboard: status %d", resp.StatusCode)
	}
	if rows := body["leaderboard"].([]any); len(rows) != 1 {
		t.Fatalf("expected 1 leaderboard row, got %d", len(rows))
	}
}

func TestAPI_Healthz(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)

	resp, body := c.do("GET", "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: status %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health response: %v", body)
	}

	// Security headers apply to every response.
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected nosniff header")
	}
}
