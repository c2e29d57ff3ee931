package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"anchor", `<html><body><a href="/channel/x">c</a><a href="/watch?v=vZ734NWnAHA&pp=1">t</a></body></html>`, "vZ734NWnAHA"},
		{"script data", `<html><script>var ytInitialData = {"url":"/watch?v=1g3_CFmnU7k"};</script></html>`, "1g3_CFmnU7k"},
		{"first wins", `<a href="/watch?v=AAAAAAAAAAA">a</a><a href="/watch?v=BBBBBBBBBBB">b</a>`, "AAAAAAAAAAA"},
		{"too short", `<a href="/watch?v=short">a</a>`, ""},
		{"none", `<html><body>no results</body></html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractVideoID([]byte(tt.page)); got != tt.want {
				t.Errorf("extractVideoID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestYouTubeService_FindTrailer(t *testing.T) {
	var gotQuery atomic.Value
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gotQuery.Store(r.URL.Query().Get("search_query"))
		w.Write([]byte(`<html><script>{"url":"/watch?v=vZ734NWnAHA"}</script></html>`))
	}))
	defer srv.Close()

	svc := NewYouTubeService(newTestClient(t), "Star Wars")
	svc.baseURL = srv.URL

	link, err := svc.FindTrailer(context.Background(), "A New Hope")
	if err != nil {
		t.Fatalf("FindTrailer: %v", err)
	}
	if link != "https://www.youtube.com/watch?v=vZ734NWnAHA" {
		t.Errorf("link = %q", link)
	}
	if q, _ := gotQuery.Load().(string); q != "Star Wars: A New Hope trailer" {
		t.Errorf("search_query = %q", q)
	}

	svc.FindTrailer(context.Background(), "A New Hope")
	if calls.Load() != 1 {
		t.Errorf("upstream calls = %d, want 1 (cached)", calls.Load())
	}
}

func TestYouTubeService_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>nothing here</body></html>`))
	}))
	defer srv.Close()

	svc := NewYouTubeService(newTestClient(t), "Star Wars")
	svc.baseURL = srv.URL

	link, err := svc.FindTrailer(context.Background(), "Unknown")
	if err != nil || link != TrailerNotFound {
		t.Errorf("FindTrailer = %q, %v; want sentinel", link, err)
	}
}
