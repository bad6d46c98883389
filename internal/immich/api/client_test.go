package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fastRetry keeps test runs quick while still exercising the retry loop.
var fastRetry = RetryPolicy{MaxAttempts: 3, Delays: []time.Duration{0}}

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		ImmichAPIEndpoint: srv.URL,
		ImmichAPIKey:      "test-key",
		Retry:             fastRetry,
	})
}

func TestValidateToken(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/auth/validateToken" {
				t.Fatalf("unexpected path %q", r.URL.Path)
			}
			if r.Header.Get("x-api-key") != "test-key" {
				t.Fatal("missing API key header")
			}
			json.NewEncoder(w).Encode(map[string]bool{"authStatus": true})
		})
		ok, err := client.ValidateToken(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatal("expected token to be accepted")
		}
	})

	t.Run("rejected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]bool{"authStatus": false})
		})
		ok, err := client.ValidateToken(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Fatal("expected token to be rejected")
		}
	})

	t.Run("unauthorized status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		ok, err := client.ValidateToken(context.Background())
		if err != nil {
			t.Fatalf("a rejected key is not a connectivity error: %v", err)
		}
		if ok {
			t.Fatal("expected token to be rejected")
		}
	})

	t.Run("missing endpoint", func(t *testing.T) {
		client := NewClient(Config{Retry: fastRetry})
		if _, err := client.ValidateToken(context.Background()); err == nil {
			t.Fatal("expected a connectivity error for a missing endpoint")
		}
	})
}

func TestSearchRandom_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var req SearchRandomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Type != "IMAGE" {
			t.Fatalf(`expected type "IMAGE", got %q`, req.Type)
		}
		json.NewEncoder(w).Encode([]SearchAsset{{ID: "asset-1", Type: "IMAGE"}})
	})

	assets, err := client.SearchRandom(context.Background(), SearchRandomRequest{Type: "IMAGE", Count: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(assets) != 1 || assets[0].ID != "asset-1" {
		t.Fatalf("unexpected assets %v", assets)
	}
}

func TestSearchRandom_ExhaustedRetries(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := client.SearchRandom(context.Background(), SearchRandomRequest{}); err == nil {
		t.Fatal("expected an error after exhausted retries")
	}
	if calls != fastRetry.MaxAttempts {
		t.Fatalf("expected %d attempts, got %d", fastRetry.MaxAttempts, calls)
	}
}

func TestGetAssetInfo_NotFound(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	})

	info, err := client.GetAssetInfo(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info != nil {
		t.Fatalf("expected nil info, got %+v", info)
	}
	if calls != 1 {
		t.Fatalf("404 should not be retried, got %d attempts", calls)
	}
}

func TestDownloadAsset(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/assets/asset-1/original" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	})

	data, err := client.DownloadAsset(context.Background(), "asset-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected data %q", data)
	}
}

func TestDownloadAsset_RejectsNonImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>proxy error</html>"))
	})

	if _, err := client.DownloadAsset(context.Background(), "asset-1"); err == nil {
		t.Fatal("expected an error for a non-image response")
	}
}

func TestGetMemories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "on_this_day" {
			t.Fatalf("unexpected type query %q", got)
		}
		if got := r.URL.Query().Get("for"); got != "2025-06-15" {
			t.Fatalf("unexpected for query %q", got)
		}
		json.NewEncoder(w).Encode([]Memory{
			{Data: MemoryData{Year: 2020}, Assets: []SearchAsset{{ID: "asset-1", Type: "IMAGE"}}},
		})
	})

	forDate := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	memories, err := client.GetMemories(context.Background(), forDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(memories) != 1 || memories[0].Data.Year != 2020 {
		t.Fatalf("unexpected memories %+v", memories)
	}
}

func TestConfigBaseURL(t *testing.T) {
	conf := Config{ImmichAPIEndpoint: "http://immich.local:2283/api"}
	if got := conf.BaseURL(); got != "http://immich.local:2283" {
		t.Fatalf("unexpected base URL %q", got)
	}
	conf = Config{ImmichAPIEndpoint: "https://photos.example.com"}
	if got := conf.BaseURL(); got != "https://photos.example.com" {
		t.Fatalf("unexpected base URL %q", got)
	}
}
