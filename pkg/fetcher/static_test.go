package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestStaticFetcher_Fetch(t *testing.T) {
	var gotUserAgent, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Test")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>PO Number</body></html>"))
	}))
	defer srv.Close()

	f := NewStatic(StaticConfig{})
	defer f.Close()

	content, err := f.Fetch(context.Background(), srv.URL, Options{
		Headers: map[string]string{"X-Test": "yes"},
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if content.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", content.StatusCode)
	}
	if !strings.Contains(content.HTML, "PO Number") {
		t.Errorf("HTML = %q, want body content", content.HTML)
	}
	if !strings.Contains(content.ContentType, "text/html") {
		t.Errorf("ContentType = %q, want text/html", content.ContentType)
	}
	if gotUserAgent != defaultUserAgent {
		t.Errorf("User-Agent = %q, want default %q", gotUserAgent, defaultUserAgent)
	}
	if gotHeader != "yes" {
		t.Errorf("custom header not sent, got %q", gotHeader)
	}
	if content.URL != srv.URL {
		t.Errorf("URL = %q, want %q", content.URL, srv.URL)
	}
}

func TestStaticFetcher_FetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewStatic(StaticConfig{})
	defer f.Close()

	content, err := f.Fetch(context.Background(), srv.URL, Options{})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if content.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", content.StatusCode)
	}
}

func TestStaticFetcher_Defaults(t *testing.T) {
	f := NewStatic(StaticConfig{})
	if f.config.UserAgent != defaultUserAgent {
		t.Errorf("UserAgent = %q, want %q", f.config.UserAgent, defaultUserAgent)
	}
	if f.config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", f.config.Timeout)
	}
	if f.Type() != "static" {
		t.Errorf("Type = %q, want static", f.Type())
	}
}
