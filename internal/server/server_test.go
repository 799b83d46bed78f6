package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/srivaari-capital/backend/internal/config"
	"github.com/srivaari-capital/backend/internal/logging"
)

const testAdminPass = "letmein"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})

	cfg := config.Config{
		AppName:        "srivaari-test",
		AppEnv:         "test",
		Port:           "0",
		DataFile:       filepath.Join(t.TempDir(), "data.json"),
		AdminPass:      testAdminPass,
		FrontendOrigin: "http://localhost:3000",
		SessionCookie:  "srivaari.sid",
		SessionTTL:     time.Hour,
		ShutdownPeriod: time.Second,
	}

	srv, err := New(cfg, nil, cache, logging.Discard())
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	return srv
}

func request(t *testing.T, srv *Server, method, path, body string, cookie *http.Cookie, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := srv.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("%s %s: invalid json %q: %v", method, path, raw, err)
		}
	}
	return resp, decoded
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "srivaari.sid" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func signup(t *testing.T, srv *Server, email string) (*http.Cookie, int64) {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Test User","phone":"+919800000001","email":%q,"password":"hunter22"}`, email)
	resp, decoded := request(t, srv, fiber.MethodPost, "/api/signup", body, nil, nil)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("signup status %d body %v", resp.StatusCode, decoded)
	}
	if decoded["success"] != true {
		t.Fatalf("signup body: %v", decoded)
	}
	return sessionCookie(t, resp), int64(decoded["id"].(float64))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, decoded := request(t, srv, fiber.MethodGet, "/api/health", "", nil, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if decoded["ok"] != true {
		t.Fatalf("body: %v", decoded)
	}
	if ts, ok := decoded["ts"].(float64); !ok || ts <= 0 {
		t.Fatalf("expected epoch-ms ts, got %v", decoded["ts"])
	}
}

func TestSignupLoginAndWhoami(t *testing.T) {
	srv := newTestServer(t)

	cookie, id := signup(t, srv, "flow@example.com")

	resp, decoded := request(t, srv, fiber.MethodGet, "/api/me", "", cookie, nil)
	if resp.StatusCode != fiber.StatusOK || decoded["loggedIn"] != true {
		t.Fatalf("me after signup: status %d body %v", resp.StatusCode, decoded)
	}
	if decoded["email"] != "flow@example.com" || int64(decoded["id"].(float64)) != id {
		t.Fatalf("me identity mismatch: %v", decoded)
	}

	// Anonymous browser sees loggedIn:false, never an error.
	resp, decoded = request(t, srv, fiber.MethodGet, "/api/me", "", nil, nil)
	if resp.StatusCode != fiber.StatusOK || decoded["loggedIn"] != false {
		t.Fatalf("anonymous me: status %d body %v", resp.StatusCode, decoded)
	}

	// Same email differing only in case is a duplicate.
	resp, decoded = request(t, srv, fiber.MethodPost, "/api/signup",
		`{"phone":"+919800000002","email":"FLOW@Example.com","password":"other"}`, nil, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("duplicate signup status %d", resp.StatusCode)
	}
	if _, ok := decoded["error"]; !ok {
		t.Fatalf("duplicate signup body: %v", decoded)
	}

	resp, decoded = request(t, srv, fiber.MethodPost, "/api/login",
		`{"email":"flow@example.com","password":"hunter22"}`, nil, nil)
	if resp.StatusCode != fiber.StatusOK || decoded["success"] != true {
		t.Fatalf("login: status %d body %v", resp.StatusCode, decoded)
	}
	if int64(decoded["id"].(float64)) != id || decoded["name"] != "Test User" {
		t.Fatalf("login body: %v", decoded)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "real@example.com")

	respWrong, bodyWrong := request(t, srv, fiber.MethodPost, "/api/login",
		`{"email":"real@example.com","password":"nope"}`, nil, nil)
	respGhost, bodyGhost := request(t, srv, fiber.MethodPost, "/api/login",
		`{"email":"ghost@example.com","password":"nope"}`, nil, nil)

	if respWrong.StatusCode != fiber.StatusUnauthorized || respGhost.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("statuses: %d %d", respWrong.StatusCode, respGhost.StatusCode)
	}
	if bodyWrong["error"] != bodyGhost["error"] {
		t.Fatalf("enumeration signal: %v vs %v", bodyWrong, bodyGhost)
	}
}

func TestApplyRequiresSession(t *testing.T) {
	srv := newTestServer(t)

	resp, decoded := request(t, srv, fiber.MethodPost, "/api/apply",
		`{"name":"X","phone":"1","loan_amount":1000}`, nil, nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status %d body %v", resp.StatusCode, decoded)
	}

	// No record may have been created.
	resp, decoded = request(t, srv, fiber.MethodGet, "/api/admin/applications", "", nil,
		map[string]string{"X-Admin-Pass": testAdminPass})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("admin list status %d", resp.StatusCode)
	}
	if apps := decoded["applications"].([]any); len(apps) != 0 {
		t.Fatalf("expected no applications, got %d", len(apps))
	}
}

func TestApplyAndAdminList(t *testing.T) {
	srv := newTestServer(t)
	cookie, userID := signup(t, srv, "borrower@example.com")

	resp, decoded := request(t, srv, fiber.MethodPost, "/api/apply",
		`{"name":"Borrower","phone":"+919800000001","loan_amount":250000,"purpose":"tractor","monthly_income":40000}`,
		cookie, nil)
	if resp.StatusCode != fiber.StatusCreated || decoded["success"] != true {
		t.Fatalf("apply: status %d body %v", resp.StatusCode, decoded)
	}

	resp, decoded = request(t, srv, fiber.MethodGet, "/api/admin/applications", "", nil,
		map[string]string{"X-Admin-Pass": testAdminPass})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("admin list status %d", resp.StatusCode)
	}
	apps := decoded["applications"].([]any)
	if len(apps) != 1 {
		t.Fatalf("expected exactly one application, got %d", len(apps))
	}
	app := apps[0].(map[string]any)
	if int64(app["user_id"].(float64)) != userID {
		t.Fatalf("application not tagged with session user: %v", app)
	}
	if app["loan_amount"].(float64) != 250000 {
		t.Fatalf("loan amount mismatch: %v", app)
	}
}

func TestApplyValidation(t *testing.T) {
	srv := newTestServer(t)
	cookie, _ := signup(t, srv, "validate@example.com")

	// Missing loan_amount.
	resp, _ := request(t, srv, fiber.MethodPost, "/api/apply",
		`{"name":"X","phone":"1"}`, cookie, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("missing amount: status %d", resp.StatusCode)
	}

	// Non-numeric loan_amount must be rejected, never stored as a sentinel.
	resp, _ = request(t, srv, fiber.MethodPost, "/api/apply",
		`{"name":"X","phone":"1","loan_amount":"lots"}`, cookie, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad amount: status %d", resp.StatusCode)
	}

	resp, decoded := request(t, srv, fiber.MethodGet, "/api/admin/applications", "", nil,
		map[string]string{"X-Admin-Pass": testAdminPass})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("admin list status %d", resp.StatusCode)
	}
	if apps := decoded["applications"].([]any); len(apps) != 0 {
		t.Fatalf("rejected applications persisted: %d", len(apps))
	}
}

func TestAdminListRejectsBadSecret(t *testing.T) {
	srv := newTestServer(t)

	resp, decoded := request(t, srv, fiber.MethodGet, "/api/admin/applications", "", nil, nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("missing secret: status %d", resp.StatusCode)
	}
	if _, leaked := decoded["applications"]; leaked {
		t.Fatalf("data leaked without secret: %v", decoded)
	}

	resp, decoded = request(t, srv, fiber.MethodGet, "/api/admin/applications", "", nil,
		map[string]string{"X-Admin-Pass": "wrong"})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("wrong secret: status %d", resp.StatusCode)
	}
	if _, leaked := decoded["applications"]; leaked {
		t.Fatalf("data leaked with wrong secret: %v", decoded)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	srv := newTestServer(t)
	cookie, _ := signup(t, srv, "bye@example.com")

	resp, decoded := request(t, srv, fiber.MethodPost, "/api/logout", "", cookie, nil)
	if resp.StatusCode != fiber.StatusOK || decoded["success"] != true {
		t.Fatalf("logout: status %d body %v", resp.StatusCode, decoded)
	}

	resp, decoded = request(t, srv, fiber.MethodGet, "/api/me", "", cookie, nil)
	if resp.StatusCode != fiber.StatusOK || decoded["loggedIn"] != false {
		t.Fatalf("me after logout: status %d body %v", resp.StatusCode, decoded)
	}

	// Logout is session-guarded: without a live session it is rejected.
	resp, _ = request(t, srv, fiber.MethodPost, "/api/logout", "", cookie, nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("second logout: status %d", resp.StatusCode)
	}
}

func TestLoginRateLimit(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "limited@example.com")

	var last int
	for i := 0; i < 6; i++ {
		resp, _ := request(t, srv, fiber.MethodPost, "/api/login",
			`{"email":"limited@example.com","password":"wrong"}`, nil, nil)
		last = resp.StatusCode
	}
	if last != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 on sixth attempt, got %d", last)
	}
}
