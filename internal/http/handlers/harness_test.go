package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/mockapi"
	"storefront/internal/repos"
)

type testApp struct {
	t     *testing.T
	app   *fiber.App
	mock  *mockapi.Server
	carts *cart.Manager
	jar   map[string]string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	mock := mockapi.New()
	srv := mockapi.Serve(mock)
	t.Cleanup(srv.Close)

	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{APITimeout: 3 * time.Second, TaxRate: 0.10}
	carts := cart.NewManager(cart.Options{Storage: repos.NewStateRepo(db)})
	t.Cleanup(carts.Flush)
	d := handlers.NewDeps(cfg, api.New(srv.URL, cfg.APITimeout), db, carts)
	return &testApp{t: t, app: handlers.NewApp(d), mock: mock, carts: carts, jar: map[string]string{}}
}

type result struct {
	Status   int
	Location string
	Body     string
	Cookies  map[string]string
}

// do sends one request carrying the jar's cookies and folds Set-Cookie back in.
func (a *testApp) do(method, path string, form url.Values) result {
	a.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range a.jar {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := a.app.Test(req, 10000)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	set := map[string]string{}
	for _, c := range resp.Cookies() {
		set[c.Name] = c.Value
		if c.Value == "" {
			delete(a.jar, c.Name)
			continue
		}
		a.jar[c.Name] = c.Value
	}
	return result{Status: resp.StatusCode, Location: resp.Header.Get("Location"), Body: string(b), Cookies: set}
}

func (a *testApp) get(path string) result { return a.do("GET", path, nil) }

// post adds the CSRF token the way the rendered forms do.
func (a *testApp) post(path string, form url.Values) result {
	if form == nil {
		form = url.Values{}
	}
	if _, ok := a.jar["csrf_"]; !ok {
		a.get("/login")
	}
	form.Set("csrf", a.jar["csrf_"])
	return a.do("POST", path, form)
}

func (a *testApp) login(email, password string) result {
	a.t.Helper()
	a.get("/login")
	return a.post("/login", url.Values{"email": {email}, "password": {password}})
}

func (a *testApp) loginAlice() {
	a.t.Helper()
	r := a.login("alice@market.test", mockapi.DemoPassword)
	if r.Status != http.StatusFound || r.Location != "/products" {
		a.t.Fatalf("login failed: %d %s\n%s", r.Status, r.Location, r.Body)
	}
}

func mustContain(t *testing.T, body string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(body, p) {
			t.Fatalf("body missing %q\n%s", p, body)
		}
	}
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs collects the JSON log lines written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	mu.Lock()
	defer mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func hasAction(entries []logEntry, level, action string) bool {
	for _, e := range entries {
		if e.Level == level && e.Action == action {
			return true
		}
	}
	return false
}
