package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestFetcherReturnsBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(2*time.Second, zap.NewNop())

	result := fetcher.Fetch(context.Background(), server.URL)
	if !result.OK() {
		t.Fatalf("expected ok result, got %s", result.Reason())
	}

	if result.Body == "" {
		t.Fatalf("expected body to be populated")
	}

	if result.URL != server.URL {
		t.Fatalf("unexpected result url: %s", result.URL)
	}
}

func TestFetcherCapturesHTTPFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(2*time.Second, zap.NewNop())

	result := fetcher.Fetch(context.Background(), server.URL)
	if result.OK() {
		t.Fatalf("expected failure result")
	}

	if result.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", result.HTTPStatus)
	}

	if result.Err != nil {
		t.Fatalf("http failure must not carry a transport error: %v", result.Err)
	}
}

func TestFetcherCapturesTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := NewFetcher(time.Second, zap.NewNop())

	result := fetcher.Fetch(context.Background(), url)
	if result.OK() {
		t.Fatalf("expected failure result")
	}

	if result.Err == nil {
		t.Fatalf("expected transport error to be captured")
	}

	if result.Reason() == "" {
		t.Fatalf("expected a reason for the failure")
	}
}

func TestFetcherFollowsRedirects(t *testing.T) {
	t.Parallel()

	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("final"))
	}))
	defer target.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer redirecting.Close()

	fetcher := NewFetcher(2*time.Second, zap.NewNop())

	result := fetcher.Fetch(context.Background(), redirecting.URL)
	if !result.OK() {
		t.Fatalf("expected ok result, got %s", result.Reason())
	}

	if result.Body != "final" {
		t.Fatalf("expected redirect target body, got %q", result.Body)
	}

	// The result keeps the original source URL, not the redirect target.
	if result.URL != redirecting.URL {
		t.Fatalf("unexpected result url: %s", result.URL)
	}
}
