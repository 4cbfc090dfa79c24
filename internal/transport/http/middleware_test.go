package http

import (
	"net/http"
	"testing"
	"time"
)

func TestCORSPreflight(t *testing.T) {
	env := startTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, env.server.URL+"/api/run", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := env.server.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow origin: %q", got)
	}

	req, _ = http.NewRequest(http.MethodGet, env.server.URL+"/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = env.server.Client().Do(req)
	if err != nil {
		t.Fatalf("health failed: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2)
	rl.now = func() time.Time { return now }

	if !rl.allow() || !rl.allow() {
		t.Fatalf("first two events should pass")
	}
	if rl.allow() {
		t.Fatalf("third event in window should be dropped")
	}

	now = now.Add(time.Minute)
	if !rl.allow() {
		t.Fatalf("new window should reset the counter")
	}

	if !newRateLimiter(0).allow() {
		t.Fatalf("zero limit means unlimited")
	}
}

func TestAcceptOptions(t *testing.T) {
	opts := acceptOptions([]string{"http://localhost:5173", "https://app.example.com", "::bad"})
	if len(opts.OriginPatterns) != 2 || opts.OriginPatterns[0] != "localhost:5173" {
		t.Fatalf("unexpected patterns: %v", opts.OriginPatterns)
	}
	if !acceptOptions([]string{"*"}).InsecureSkipVerify {
		t.Fatalf("wildcard should skip origin checks")
	}
}
